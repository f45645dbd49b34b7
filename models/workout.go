package models

import "time"

// Workout is a reusable activity template, independent of any user.
type Workout struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Title         string     `gorm:"size:255;not null" json:"title"`
	Description   string     `gorm:"type:text" json:"description"`
	Duration      int        `gorm:"not null" json:"duration"` // minutes
	Intensity     string     `gorm:"size:32" json:"intensity"`
	ImageURL      string     `gorm:"size:512" json:"imageUrl"`
	ScheduledTime *time.Time `json:"scheduledTime"`
}

// UserWorkout assigns a Workout to a User at a scheduled time.
type UserWorkout struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"index;not null" json:"userId"`
	WorkoutID    uint       `gorm:"index;not null" json:"workoutId"`
	ScheduledFor *time.Time `gorm:"index" json:"scheduledFor"`
	Completed    bool       `gorm:"not null;default:false" json:"completed"`
	CompletedAt  *time.Time `json:"completedAt"`
}
