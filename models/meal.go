package models

import "time"

// Meal is a logged food entry.
type Meal struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"userId"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Calories  int       `gorm:"not null;default:0" json:"calories"`
	Protein   int       `gorm:"not null;default:0" json:"protein"` // grams
	Timestamp time.Time `gorm:"index;not null" json:"timestamp"`
	MealType  string    `gorm:"size:32" json:"mealType"` // breakfast|lunch|dinner|snack
}
