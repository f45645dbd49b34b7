package models

import "time"

// HealthMetric is a per-user daily activity snapshot. Records are append-only.
type HealthMetric struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"index;not null" json:"userId"`
	Date           time.Time `gorm:"index;not null" json:"date"`
	Steps          int       `gorm:"not null;default:0" json:"steps"`
	ActiveMinutes  int       `gorm:"not null;default:0" json:"activeMinutes"`
	CaloriesBurned int       `gorm:"not null;default:0" json:"caloriesBurned"`
	SleepMinutes   int       `gorm:"not null;default:0" json:"sleepMinutes"`
}
