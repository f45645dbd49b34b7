package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cppla/famfit/models"
)

// openTestGorm connects to FAMFIT_TEST_MYSQL_DSN and recreates the schema.
func openTestGorm(t *testing.T) *Gorm {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping MySQL test in short mode")
	}
	dsn := os.Getenv("FAMFIT_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("FAMFIT_TEST_MYSQL_DSN not set")
	}
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.Migrator().DropTable(AllModels()...))
	require.NoError(t, db.AutoMigrate(AllModels()...))
	t.Cleanup(func() {
		_ = db.Migrator().DropTable(AllModels()...)
	})
	return NewGorm(db)
}

func TestGormChallengeProgress(t *testing.T) {
	s := openTestGorm(t)
	ctx := context.Background()

	c := &models.Challenge{
		Title:     "10K Steps Week",
		StartDate: time.Now().Add(-time.Hour),
		EndDate:   time.Now().Add(time.Hour),
		GoalType:  "steps",
		GoalValue: 10000,
	}
	require.NoError(t, s.CreateChallenge(ctx, c))
	uc := &models.UserChallenge{UserID: 1, ChallengeID: c.ID, Progress: 7500}
	require.NoError(t, s.CreateUserChallenge(ctx, uc))
	assert.False(t, uc.Completed)

	got, err := s.UpdateUserChallengeProgress(ctx, uc.ID, 10500)
	require.NoError(t, err)
	assert.True(t, got.Completed)

	_, err = s.UpdateUserChallengeProgress(ctx, 9999, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	active, err := s.ListActiveChallenges(ctx, time.Now())
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestGormConversationMessages(t *testing.T) {
	s := openTestGorm(t)
	ctx := context.Background()

	c := &models.AIConversation{UserID: 1}
	require.NoError(t, s.CreateConversation(ctx, c))

	got, err := s.AppendConversationMessages(ctx, c.ID,
		models.Message{Role: models.RoleUser, Content: "hi"},
		models.Message{Role: models.RoleAssistant, Content: "hello"},
	)
	require.NoError(t, err)
	assert.Len(t, got.Messages, 2)

	stored, err := s.GetConversation(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, stored.Messages, 2)
	assert.Equal(t, "hello", stored.Messages[1].Content)

	_, err = s.GetConversation(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormMealsAndWorkouts(t *testing.T) {
	s := openTestGorm(t)
	ctx := context.Background()
	now := time.Now().Truncate(time.Second)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.CreateMeal(ctx, &models.Meal{UserID: 1, Name: string(rune('a' + i)), Timestamp: now.Add(-time.Duration(i) * time.Minute)}))
	}
	recent, err := s.RecentMeals(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "a", recent[0].Name)

	w := &models.Workout{Title: "Yoga", Duration: 20}
	require.NoError(t, s.CreateWorkout(ctx, w))
	soon := now.Add(time.Hour)
	uw := &models.UserWorkout{UserID: 1, WorkoutID: w.ID, ScheduledFor: &soon}
	require.NoError(t, s.CreateUserWorkout(ctx, uw))

	upcoming, err := s.ListUpcomingUserWorkouts(ctx, 1, now)
	require.NoError(t, err)
	assert.Len(t, upcoming, 1)

	_, err = s.CompleteUserWorkout(ctx, uw.ID, now)
	require.NoError(t, err)
	upcoming, err = s.ListUpcomingUserWorkouts(ctx, 1, now)
	require.NoError(t, err)
	assert.Empty(t, upcoming)
}

func TestGormDuplicateUsername(t *testing.T) {
	s := openTestGorm(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, &models.User{Username: "sarah", Name: "Sarah"}))
	err := s.CreateUser(ctx, &models.User{Username: "sarah", Name: "Other"})
	assert.ErrorIs(t, err, ErrConflict)
}
