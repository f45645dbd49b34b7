package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/famfit/ai"
	"github.com/cppla/famfit/models"
	"github.com/cppla/famfit/store"
	"github.com/cppla/famfit/utils"
)

const recentMealLimit = 5

// AIController exposes the recommendation gateway. Gateway failures are answered
// with fallback content, so these endpoints only fail on bad input or unknown ids.
type AIController struct {
	store         store.Store
	gateway       *ai.Gateway
	conversations *ConversationController
	logger        *zap.Logger
}

// NewAIController creates an AIController.
func NewAIController(s store.Store, gateway *ai.Gateway, logger *zap.Logger) *AIController {
	return &AIController{
		store:         s,
		gateway:       gateway,
		conversations: NewConversationController(s, gateway, logger),
		logger:        orNop(logger),
	}
}

type mealRecommendationRequest struct {
	UserID              uint   `json:"userId" binding:"required"`
	Preferences         string `json:"preferences" binding:"max=1000"`
	DietaryRestrictions string `json:"dietaryRestrictions" binding:"max=1000"`
}

// MealRecommendations suggests meals from the user's recent history.
func (a *AIController) MealRecommendations(ctx *gin.Context) {
	var req mealRecommendationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationError(ctx, 40001, err)
		return
	}
	user, err := a.store.GetUser(ctx, req.UserID)
	if err != nil {
		handleStoreErr(ctx, a.logger, err, "get user")
		return
	}
	recent, err := a.store.RecentMeals(ctx, user.ID, recentMealLimit)
	if err != nil {
		handleStoreErr(ctx, a.logger, err, "list recent meals")
		return
	}
	names := make([]string, 0, len(recent))
	for _, m := range recent {
		names = append(names, m.Name)
	}

	recs := a.gateway.RecommendMeals(ctx.Request.Context(), user, names,
		utils.SanitizeText(req.Preferences), utils.SanitizeText(req.DietaryRestrictions))
	utils.Success(ctx, recs)
}

type workoutRecommendationRequest struct {
	UserID       uint     `json:"userId" binding:"required"`
	FitnessLevel string   `json:"fitnessLevel" binding:"omitempty,max=64"`
	Goals        []string `json:"goals" binding:"omitempty,max=20,dive,max=200"`
	Duration     int      `json:"duration" binding:"gte=0,lte=240"`
	Equipment    []string `json:"equipment" binding:"omitempty,max=20,dive,max=200"`
}

// WorkoutRecommendations designs a workout, taking the user's latest metric into account when present.
func (a *AIController) WorkoutRecommendations(ctx *gin.Context) {
	var req workoutRecommendationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationError(ctx, 40001, err)
		return
	}
	user, err := a.store.GetUser(ctx, req.UserID)
	if err != nil {
		handleStoreErr(ctx, a.logger, err, "get user")
		return
	}
	latest, err := a.store.LatestHealthMetric(ctx, user.ID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			handleStoreErr(ctx, a.logger, err, "get latest health metric")
			return
		}
		latest = nil
	}

	rec := a.gateway.RecommendWorkout(ctx.Request.Context(), user, ai.WorkoutRequest{
		FitnessLevel: utils.SanitizeText(req.FitnessLevel),
		Goals:        sanitizeAll(req.Goals),
		Duration:     req.Duration,
		Equipment:    sanitizeAll(req.Equipment),
	}, latest)
	utils.Success(ctx, rec)
}

type chatRequest struct {
	UserID         uint   `json:"userId" binding:"required"`
	Message        string `json:"message" binding:"required,max=4000"`
	ConversationID *uint  `json:"conversationId" binding:"omitempty,gt=0"`
}

type chatResponse struct {
	Reply        string                 `json:"reply"`
	Conversation *models.AIConversation `json:"conversation,omitempty"`
}

// Chat answers a coach message. With a conversationId the exchange is appended to that conversation
// and its history is sent along.
func (a *AIController) Chat(ctx *gin.Context) {
	var req chatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationError(ctx, 40001, err)
		return
	}
	message := utils.SanitizeText(req.Message)
	if message == "" {
		utils.Error(ctx, http.StatusBadRequest, 40002, "message cannot be empty")
		return
	}
	user, err := a.store.GetUser(ctx, req.UserID)
	if err != nil {
		handleStoreErr(ctx, a.logger, err, "get user")
		return
	}

	if req.ConversationID == nil {
		reply := a.gateway.Chat(ctx.Request.Context(), user, nil, message)
		utils.Success(ctx, chatResponse{Reply: reply})
		return
	}

	conv, err := a.store.GetConversation(ctx, *req.ConversationID)
	if err != nil {
		handleStoreErr(ctx, a.logger, err, "get conversation")
		return
	}
	if conv.UserID != user.ID {
		utils.Error(ctx, http.StatusBadRequest, 40021, "conversation belongs to another user")
		return
	}
	conv, reply, err := a.conversations.continueConversation(ctx, conv, message)
	if err != nil {
		handleStoreErr(ctx, a.logger, err, "append messages")
		return
	}
	utils.Success(ctx, chatResponse{Reply: reply, Conversation: conv})
}

func sanitizeAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = utils.SanitizeText(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
