// Package ai turns user context into prompts for a chat-completion API and
// degrades to static content whenever that API cannot answer.
package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cppla/famfit/metrics"
	"github.com/cppla/famfit/models"
)

// DefaultWorkoutDuration is used when a workout request leaves duration unset.
const DefaultWorkoutDuration = 30

// MealSuggestion is one recommended meal.
type MealSuggestion struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Foods       []string `json:"foods"`
	Calories    int      `json:"calories"`
	Protein     int      `json:"protein"`
	MealType    string   `json:"mealType"`
}

// MealRecommendations is the meal gateway payload.
type MealRecommendations struct {
	Meals    []MealSuggestion `json:"meals"`
	Fallback bool             `json:"fallback"`
}

// Exercise is one entry of a workout plan.
type Exercise struct {
	Name string `json:"name"`
	Sets int    `json:"sets"`
	Reps string `json:"reps"`
	Rest string `json:"rest"`
}

// WorkoutRecommendation is the workout gateway payload.
type WorkoutRecommendation struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Duration    int        `json:"duration"`
	Intensity   string     `json:"intensity"`
	Exercises   []Exercise `json:"exercises"`
	Fallback    bool       `json:"fallback"`
}

// Cache stores successful recommendation payloads.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// Gateway produces recommendations and coach replies. It never returns the
// completion API's errors: failures are logged and answered with fallback content.
type Gateway struct {
	client   Completer
	cache    Cache
	cacheTTL time.Duration
	timeout  time.Duration
	logger   *zap.Logger
}

// Option customizes a Gateway.
type Option func(*Gateway)

// WithCache enables caching of successful recommendation payloads.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(g *Gateway) {
		g.cache = c
		g.cacheTTL = ttl
	}
}

// WithTimeout bounds every completion call.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// NewGateway creates a gateway. A nil client makes every call use fallback content.
func NewGateway(client Completer, logger *zap.Logger, opts ...Option) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Gateway{client: client, logger: logger, timeout: defaultTimeout}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

var errNoClient = errors.New("completion client not configured")

func (g *Gateway) complete(ctx context.Context, req CompletionRequest) (string, error) {
	if g.client == nil {
		return "", errNoClient
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.client.Complete(ctx, req)
}

func (g *Gateway) fallback(op string, err error, fields ...zap.Field) {
	metrics.AIFallbacks.WithLabelValues(op).Inc()
	if errors.Is(err, errNoClient) {
		g.logger.Debug("ai gateway using fallback", append(fields, zap.String("operation", op))...)
		return
	}
	g.logger.Warn("ai gateway call failed, using fallback",
		append(fields, zap.String("operation", op), zap.Error(err))...)
}

func cacheKey(op string, parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "cache:ai:" + op + ":" + hex.EncodeToString(sum[:])
}

// completeJSON runs a JSON-mode completion through the cache and decodes it into out.
func (g *Gateway) completeJSON(ctx context.Context, op, system, user string, out interface{}) error {
	key := cacheKey(op, system, user)
	if g.cache != nil {
		if b, ok := g.cache.Get(ctx, key); ok && json.Unmarshal(b, out) == nil {
			metrics.AICacheHits.WithLabelValues(op).Inc()
			return nil
		}
	}
	text, err := g.complete(ctx, CompletionRequest{
		Messages: []ChatMessage{
			{Role: models.RoleSystem, Content: system},
			{Role: models.RoleUser, Content: user},
		},
		JSON:        true,
		Temperature: 0.7,
		MaxTokens:   1200,
	})
	if err != nil {
		return err
	}
	text = stripCodeFence(text)
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	if g.cache != nil {
		if b, err := json.Marshal(out); err == nil {
			g.cache.Set(ctx, key, b, g.cacheTTL)
		}
	}
	return nil
}

// stripCodeFence removes a markdown ```json fence some models wrap JSON in.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// RecommendMeals suggests three meals from the user's recent history
// (most recent first) and optional free-text preferences and restrictions.
func (g *Gateway) RecommendMeals(ctx context.Context, user *models.User, recentMeals []string, preferences, dietaryRestrictions string) MealRecommendations {
	var out MealRecommendations
	err := g.completeJSON(ctx, "meals", mealSystemPrompt,
		mealUserPrompt(user, recentMeals, preferences, dietaryRestrictions), &out)
	if err == nil && len(out.Meals) == 0 {
		err = errors.New("no meals in response")
	}
	if err != nil {
		g.fallback("meals", err, zap.Bool("restricted", dietaryRestrictions != ""))
		return fallbackMeals(dietaryRestrictions)
	}
	out.Fallback = false
	return out
}

// RecommendWorkout designs one workout. Duration defaults to DefaultWorkoutDuration minutes.
func (g *Gateway) RecommendWorkout(ctx context.Context, user *models.User, req WorkoutRequest, latest *models.HealthMetric) WorkoutRecommendation {
	if req.Duration <= 0 {
		req.Duration = DefaultWorkoutDuration
	}
	var out WorkoutRecommendation
	err := g.completeJSON(ctx, "workout", workoutSystemPrompt, workoutUserPrompt(user, req, latest), &out)
	if err == nil && len(out.Exercises) == 0 {
		err = errors.New("no exercises in response")
	}
	if err != nil {
		g.fallback("workout", err, zap.Int("duration", req.Duration))
		return fallbackWorkout(req.Duration)
	}
	if out.Duration <= 0 {
		out.Duration = req.Duration
	}
	out.Fallback = false
	return out
}

// Chat answers message given the prior turns of the conversation.
func (g *Gateway) Chat(ctx context.Context, user *models.User, history []models.Message, message string) string {
	if strings.TrimSpace(message) == PostWorkoutPrompt {
		return postWorkoutReply
	}
	reply, err := g.complete(ctx, CompletionRequest{
		Messages:    chatMessages(history, message),
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		var uid uint
		if user != nil {
			uid = user.ID
		}
		g.fallback("chat", err, zap.Uint("user_id", uid))
		return fallbackChatReply(message)
	}
	return strings.TrimSpace(reply)
}
