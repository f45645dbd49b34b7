package ai

import "strings"

// PostWorkoutPrompt is answered with the canned post-workout reply without calling the API.
const PostWorkoutPrompt = "Can you suggest a good post-workout meal?"

const (
	postWorkoutReply = "Great question! A good post-workout meal combines protein to repair muscles with carbohydrates to refill your energy stores. " +
		"Try grilled chicken with brown rice and vegetables, a Greek yogurt parfait with berries and granola, or a smoothie made with banana, " +
		"spinach, protein powder and almond milk. Aim to eat within 45 minutes of finishing your workout, and don't forget to drink plenty of water to rehydrate!"

	workoutReply = "Staying active as a family is a wonderful goal! For a balanced routine, aim for at least 150 minutes of moderate activity each week, " +
		"mixing cardio (brisk walks, bike rides, dancing), strength work (squats, push-ups, lunges) two or three times a week, and some stretching or yoga for flexibility. " +
		"Start at a comfortable level, warm up for five minutes first, and increase intensity gradually. Would you like me to suggest a specific workout plan?"

	nutritionReply = "Good nutrition is the foundation of a healthy family! Fill half your plate with vegetables and fruits, a quarter with lean protein " +
		"(chicken, fish, beans or tofu), and a quarter with whole grains. Limit sugary drinks and processed snacks, and keep healthy options like nuts, " +
		"yogurt and cut fruit easy to grab. Would you like some specific meal ideas for your family?"

	genericReply = "I'm here to help with your family's fitness and nutrition goals! Could you tell me a bit more about what you're looking for? " +
		"For example, I can suggest workouts, meal ideas, tips for better sleep, or ways to stay active together as a family."
)

var nutritionKeywords = []string{"nutrition", "diet", "food", "eat", "meal", "calorie", "protein"}

// fallbackChatReply picks a canned reply by keyword. The post-workout meal
// match wins over the generic workout match.
func fallbackChatReply(message string) string {
	text := strings.ToLower(message)
	switch {
	case strings.Contains(text, "post-workout meal"):
		return postWorkoutReply
	case strings.Contains(text, "workout"):
		return workoutReply
	}
	for _, kw := range nutritionKeywords {
		if strings.Contains(text, kw) {
			return nutritionReply
		}
	}
	return genericReply
}

// fallbackMeals returns the static three-meal plan. A restriction mentioning
// "vegetarian" swaps the chicken lunch for a chickpea one.
func fallbackMeals(dietaryRestrictions string) MealRecommendations {
	lunch := MealSuggestion{
		Name:        "Grilled Chicken Quinoa Bowl",
		Description: "Lean grilled chicken over quinoa with roasted vegetables and a lemon-herb dressing.",
		Foods:       []string{"Grilled chicken", "Quinoa", "Roasted bell peppers", "Zucchini", "Lemon-herb dressing"},
		Calories:    520,
		Protein:     38,
		MealType:    "lunch",
	}
	if strings.Contains(strings.ToLower(dietaryRestrictions), "vegetarian") {
		lunch = MealSuggestion{
			Name:        "Chickpea Quinoa Bowl",
			Description: "Crispy roasted chickpeas over quinoa with roasted vegetables and a lemon-tahini dressing.",
			Foods:       []string{"Chickpeas", "Quinoa", "Roasted bell peppers", "Zucchini", "Lemon-tahini dressing"},
			Calories:    490,
			Protein:     19,
			MealType:    "lunch",
		}
	}

	return MealRecommendations{
		Meals: []MealSuggestion{
			{
				Name:        "Berry Protein Oatmeal",
				Description: "Rolled oats cooked with milk, topped with mixed berries, chia seeds and a spoon of nut butter.",
				Foods:       []string{"Rolled oats", "Milk", "Mixed berries", "Chia seeds", "Almond butter"},
				Calories:    410,
				Protein:     18,
				MealType:    "breakfast",
			},
			lunch,
			{
				Name:        "Baked Salmon with Sweet Potato",
				Description: "Oven-baked salmon fillet with roasted sweet potato wedges and steamed broccoli.",
				Foods:       []string{"Salmon fillet", "Sweet potato", "Broccoli", "Olive oil"},
				Calories:    580,
				Protein:     36,
				MealType:    "dinner",
			},
		},
		Fallback: true,
	}
}

// fallbackWorkout returns the static full-body routine with the requested duration echoed back.
func fallbackWorkout(duration int) WorkoutRecommendation {
	return WorkoutRecommendation{
		Title:       "Full-Body Family Workout",
		Description: "A balanced bodyweight routine everyone can do together. Warm up for 5 minutes and cool down with light stretching.",
		Duration:    duration,
		Intensity:   "medium",
		Exercises: []Exercise{
			{Name: "Jumping jacks", Sets: 3, Reps: "45 seconds", Rest: "15 seconds"},
			{Name: "Bodyweight squats", Sets: 3, Reps: "15", Rest: "30 seconds"},
			{Name: "Push-ups (knees if needed)", Sets: 3, Reps: "10", Rest: "30 seconds"},
			{Name: "Reverse lunges", Sets: 3, Reps: "10 per leg", Rest: "30 seconds"},
			{Name: "Plank hold", Sets: 3, Reps: "30 seconds", Rest: "30 seconds"},
			{Name: "Mountain climbers", Sets: 2, Reps: "30 seconds", Rest: "30 seconds"},
		},
		Fallback: true,
	}
}
