package ai

import (
	"fmt"
	"strings"

	"github.com/cppla/famfit/models"
)

// maxRecentMeals caps how much meal history goes into a prompt.
const maxRecentMeals = 5

const coachPersona = `You are FitFam Coach, a friendly and encouraging family fitness and nutrition assistant.
Give practical, safe, family-friendly advice about workouts, healthy eating, sleep and daily activity.
Keep answers concise (under 200 words), use plain language, and suggest consulting a healthcare
professional for medical concerns.`

const mealSystemPrompt = `You are a nutrition expert who recommends healthy, family-friendly meals.
Respond ONLY with a JSON object of the form:
{"meals":[{"name":string,"description":string,"foods":[string],"calories":number,"protein":number,"mealType":"breakfast"|"lunch"|"dinner"|"snack"}]}
Recommend exactly three meals.`

const workoutSystemPrompt = `You are a certified personal trainer who designs safe, effective workouts.
Respond ONLY with a JSON object of the form:
{"title":string,"description":string,"duration":number,"intensity":"low"|"medium"|"high",
"exercises":[{"name":string,"sets":number,"reps":string,"rest":string}]}`

// WorkoutRequest carries the optional parameters of a workout recommendation.
type WorkoutRequest struct {
	FitnessLevel string   `json:"fitnessLevel"`
	Goals        []string `json:"goals"`
	Duration     int      `json:"duration"` // minutes; 0 means the default
	Equipment    []string `json:"equipment"`
}

func displayName(u *models.User) string {
	if u == nil {
		return "there"
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

func mealUserPrompt(u *models.User, recent []string, preferences, restrictions string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Suggest three meals for %s.\n", displayName(u))
	if len(recent) > maxRecentMeals {
		recent = recent[:maxRecentMeals]
	}
	if len(recent) > 0 {
		fmt.Fprintf(&b, "Recent meals (most recent first): %s.\n", strings.Join(recent, ", "))
	} else {
		b.WriteString("No recent meals have been logged.\n")
	}
	if p := strings.TrimSpace(preferences); p != "" {
		fmt.Fprintf(&b, "Preferences: %s.\n", p)
	}
	if r := strings.TrimSpace(restrictions); r != "" {
		fmt.Fprintf(&b, "Dietary restrictions: %s.\n", r)
	}
	b.WriteString("Vary the meals from the recent ones and keep them balanced.")
	return b.String()
}

func workoutUserPrompt(u *models.User, req WorkoutRequest, latest *models.HealthMetric) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Design a %d-minute workout for %s.\n", req.Duration, displayName(u))
	level := req.FitnessLevel
	if level == "" {
		level = "beginner"
	}
	fmt.Fprintf(&b, "Fitness level: %s.\n", level)
	if len(req.Goals) > 0 {
		fmt.Fprintf(&b, "Goals: %s.\n", strings.Join(req.Goals, ", "))
	}
	if len(req.Equipment) > 0 {
		fmt.Fprintf(&b, "Available equipment: %s.\n", strings.Join(req.Equipment, ", "))
	} else {
		b.WriteString("No equipment available; use bodyweight exercises.\n")
	}
	if latest != nil {
		fmt.Fprintf(&b, "Latest activity: %d steps, %d active minutes, %d minutes of sleep.\n",
			latest.Steps, latest.ActiveMinutes, latest.SleepMinutes)
	}
	return b.String()
}

func chatMessages(history []models.Message, message string) []ChatMessage {
	out := make([]ChatMessage, 0, len(history)+2)
	out = append(out, ChatMessage{Role: models.RoleSystem, Content: coachPersona})
	for _, m := range history {
		if m.Role != models.RoleUser && m.Role != models.RoleAssistant {
			continue
		}
		out = append(out, ChatMessage{Role: m.Role, Content: m.Content})
	}
	return append(out, ChatMessage{Role: models.RoleUser, Content: message})
}
