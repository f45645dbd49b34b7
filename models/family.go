package models

import "time"

// Family groups users who share dashboards and challenges.
type Family struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
