// Package store keeps the family fitness entities. Store is implemented by an
// in-memory backend (Memory) and a MySQL backend (Gorm).
package store

import (
	"context"
	"errors"
	"time"

	"github.com/cppla/famfit/models"
)

var (
	// ErrNotFound is returned when a referenced id does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidReference is returned by reference-checked stores when a foreign key points nowhere.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrConflict is returned when a unique field such as a username is already taken.
	ErrConflict = errors.New("already exists")
)

// Store is the persistence contract used by the HTTP layer.
//
// Create methods assign the id (and creation timestamps where the entity has
// them) and write them back into the argument.
type Store interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	ListUsersByFamily(ctx context.Context, familyID uint) ([]models.User, error)
	UpdateUser(ctx context.Context, id uint, patch models.UserPatch) (*models.User, error)

	CreateFamily(ctx context.Context, f *models.Family) error
	GetFamily(ctx context.Context, id uint) (*models.Family, error)
	ListFamilies(ctx context.Context) ([]models.Family, error)

	CreateHealthMetric(ctx context.Context, m *models.HealthMetric) error
	// ListHealthMetrics returns the user's metrics newest first. Zero from/to disable that bound.
	ListHealthMetrics(ctx context.Context, userID uint, from, to time.Time) ([]models.HealthMetric, error)
	LatestHealthMetric(ctx context.Context, userID uint) (*models.HealthMetric, error)

	CreateWorkout(ctx context.Context, w *models.Workout) error
	GetWorkout(ctx context.Context, id uint) (*models.Workout, error)
	ListWorkouts(ctx context.Context) ([]models.Workout, error)

	CreateUserWorkout(ctx context.Context, uw *models.UserWorkout) error
	GetUserWorkout(ctx context.Context, id uint) (*models.UserWorkout, error)
	ListUserWorkouts(ctx context.Context, userID uint) ([]models.UserWorkout, error)
	// ListUpcomingUserWorkouts returns incomplete assignments scheduled after now, soonest first.
	ListUpcomingUserWorkouts(ctx context.Context, userID uint, now time.Time) ([]models.UserWorkout, error)
	CompleteUserWorkout(ctx context.Context, id uint, at time.Time) (*models.UserWorkout, error)

	CreateMeal(ctx context.Context, m *models.Meal) error
	ListMeals(ctx context.Context, userID uint) ([]models.Meal, error)
	// ListMealsByDate returns meals within the calendar day of day (in day's location), oldest first.
	ListMealsByDate(ctx context.Context, userID uint, day time.Time) ([]models.Meal, error)
	RecentMeals(ctx context.Context, userID uint, limit int) ([]models.Meal, error)

	CreateChallenge(ctx context.Context, c *models.Challenge) error
	GetChallenge(ctx context.Context, id uint) (*models.Challenge, error)
	ListChallenges(ctx context.Context) ([]models.Challenge, error)
	ListActiveChallenges(ctx context.Context, now time.Time) ([]models.Challenge, error)

	CreateUserChallenge(ctx context.Context, uc *models.UserChallenge) error
	GetUserChallenge(ctx context.Context, id uint) (*models.UserChallenge, error)
	ListUserChallenges(ctx context.Context, userID uint) ([]models.UserChallenge, error)
	// UpdateUserChallengeProgress fails with ErrNotFound if the participation or its challenge is missing.
	UpdateUserChallengeProgress(ctx context.Context, id uint, progress int) (*models.UserChallenge, error)

	CreateConversation(ctx context.Context, c *models.AIConversation) error
	GetConversation(ctx context.Context, id uint) (*models.AIConversation, error)
	ListConversations(ctx context.Context, userID uint) ([]models.AIConversation, error)
	AppendConversationMessages(ctx context.Context, id uint, msgs ...models.Message) (*models.AIConversation, error)
}

// DayBounds returns the first and last instant of t's calendar day in t's location.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1).Add(-time.Nanosecond)
}
