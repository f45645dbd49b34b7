package models

import "time"

// Challenge defines a goal that family members can join.
type Challenge struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	StartDate   time.Time `gorm:"index;not null" json:"startDate"`
	EndDate     time.Time `gorm:"index;not null" json:"endDate"`
	GoalType    string    `gorm:"size:32;not null" json:"goalType"` // steps|workouts|active_minutes|...
	GoalValue   int       `gorm:"not null" json:"goalValue"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ActiveAt reports whether t falls within the challenge window, bounds inclusive.
func (c Challenge) ActiveAt(t time.Time) bool {
	return !t.Before(c.StartDate) && !t.After(c.EndDate)
}

// UserChallenge records a user's participation and progress in a Challenge.
type UserChallenge struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"userId"`
	ChallengeID uint      `gorm:"index;not null" json:"challengeId"`
	Progress    int       `gorm:"not null;default:0" json:"progress"`
	Completed   bool      `gorm:"not null;default:false" json:"completed"`
	JoinedAt    time.Time `json:"joinedAt"`
}

// ApplyProgress sets progress and recomputes the derived completion flag.
func (uc *UserChallenge) ApplyProgress(progress int, c Challenge) {
	uc.Progress = progress
	uc.Completed = progress >= c.GoalValue
}
