package store

import (
	"context"
	"fmt"
	"time"

	"github.com/cppla/famfit/models"
)

// Seed fills an empty store with a demo family so the dashboards have content
// on first start. It is a no-op when users already exist.
func Seed(ctx context.Context, s Store, passwordHash string, now time.Time) error {
	existing, err := s.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("seed: list users: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	family := &models.Family{Name: "The Johnsons"}
	if err := s.CreateFamily(ctx, family); err != nil {
		return fmt.Errorf("seed: family: %w", err)
	}

	parent := &models.User{Username: "sarah", PasswordHash: passwordHash, Name: "Sarah Johnson", Role: "parent", FamilyID: &family.ID}
	child := &models.User{Username: "emma", PasswordHash: passwordHash, Name: "Emma Johnson", Role: "child", FamilyID: &family.ID}
	for _, u := range []*models.User{parent, child} {
		if err := s.CreateUser(ctx, u); err != nil {
			return fmt.Errorf("seed: user %s: %w", u.Username, err)
		}
	}

	workouts := []*models.Workout{
		{Title: "Morning Yoga Flow", Description: "Gentle stretches to start the day.", Duration: 20, Intensity: "low", ImageURL: "/images/yoga.jpg"},
		{Title: "Family Bike Ride", Description: "An easy ride around the neighborhood.", Duration: 45, Intensity: "medium", ImageURL: "/images/bike.jpg"},
		{Title: "HIIT Circuit", Description: "Short bursts of high-intensity intervals.", Duration: 30, Intensity: "high", ImageURL: "/images/hiit.jpg"},
	}
	for _, w := range workouts {
		if err := s.CreateWorkout(ctx, w); err != nil {
			return fmt.Errorf("seed: workout: %w", err)
		}
	}

	tomorrow := now.Add(24 * time.Hour)
	later := now.Add(48 * time.Hour)
	assignments := []*models.UserWorkout{
		{UserID: parent.ID, WorkoutID: workouts[0].ID, ScheduledFor: &tomorrow},
		{UserID: parent.ID, WorkoutID: workouts[2].ID, ScheduledFor: &later},
		{UserID: child.ID, WorkoutID: workouts[1].ID, ScheduledFor: &tomorrow},
	}
	for _, uw := range assignments {
		if err := s.CreateUserWorkout(ctx, uw); err != nil {
			return fmt.Errorf("seed: user workout: %w", err)
		}
	}

	for i, u := range []*models.User{parent, child} {
		m := &models.HealthMetric{
			UserID:         u.ID,
			Date:           now,
			Steps:          8200 - i*1500,
			ActiveMinutes:  42 - i*10,
			CaloriesBurned: 2100 - i*400,
			SleepMinutes:   420 + i*60,
		}
		if err := s.CreateHealthMetric(ctx, m); err != nil {
			return fmt.Errorf("seed: health metric: %w", err)
		}
	}

	day, _ := DayBounds(now)
	meals := []*models.Meal{
		{UserID: parent.ID, Name: "Oatmeal with berries", Calories: 320, Protein: 10, Timestamp: day.Add(8 * time.Hour), MealType: "breakfast"},
		{UserID: parent.ID, Name: "Grilled chicken salad", Calories: 450, Protein: 35, Timestamp: day.Add(12*time.Hour + 30*time.Minute), MealType: "lunch"},
		{UserID: child.ID, Name: "Peanut butter toast", Calories: 280, Protein: 9, Timestamp: day.Add(7*time.Hour + 45*time.Minute), MealType: "breakfast"},
	}
	for _, m := range meals {
		if err := s.CreateMeal(ctx, m); err != nil {
			return fmt.Errorf("seed: meal: %w", err)
		}
	}

	challenges := []*models.Challenge{
		{Title: "10K Steps Week", Description: "Hit 10,000 steps every day this week.", StartDate: day, EndDate: day.AddDate(0, 0, 7), GoalType: "steps", GoalValue: 10000},
		{Title: "Workout Streak", Description: "Complete 5 workouts this month.", StartDate: day, EndDate: day.AddDate(0, 1, 0), GoalType: "workouts", GoalValue: 5},
	}
	for _, c := range challenges {
		if err := s.CreateChallenge(ctx, c); err != nil {
			return fmt.Errorf("seed: challenge: %w", err)
		}
	}
	for _, uc := range []*models.UserChallenge{
		{UserID: parent.ID, ChallengeID: challenges[0].ID, Progress: 7500},
		{UserID: child.ID, ChallengeID: challenges[1].ID, Progress: 2},
	} {
		if err := s.CreateUserChallenge(ctx, uc); err != nil {
			return fmt.Errorf("seed: user challenge: %w", err)
		}
	}
	return nil
}
