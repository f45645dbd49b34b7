package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/famfit/ai"
	"github.com/cppla/famfit/models"
	"github.com/cppla/famfit/store"
	"github.com/cppla/famfit/utils"
)

// ConversationController stores coach conversations and continues them through the gateway.
type ConversationController struct {
	store   store.Store
	gateway *ai.Gateway
	logger  *zap.Logger
	now     func() time.Time
}

// NewConversationController creates a ConversationController.
func NewConversationController(s store.Store, gateway *ai.Gateway, logger *zap.Logger) *ConversationController {
	return &ConversationController{store: s, gateway: gateway, logger: orNop(logger), now: time.Now}
}

type messageInput struct {
	Role      string     `json:"role" binding:"required,oneof=user assistant"`
	Content   string     `json:"content" binding:"required,max=4000"`
	Timestamp *time.Time `json:"timestamp"`
}

type createConversationRequest struct {
	UserID   uint           `json:"userId" binding:"required"`
	Messages []messageInput `json:"messages" binding:"omitempty,dive"`
}

// CreateConversation starts a conversation, optionally seeded with prior turns.
func (c *ConversationController) CreateConversation(ctx *gin.Context) {
	var req createConversationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationError(ctx, 40001, err)
		return
	}
	now := c.now()
	conv := models.AIConversation{UserID: req.UserID, Messages: make([]models.Message, 0, len(req.Messages))}
	for _, m := range req.Messages {
		ts := now
		if m.Timestamp != nil {
			ts = *m.Timestamp
		}
		conv.Messages = append(conv.Messages, models.Message{
			Role:      m.Role,
			Content:   utils.SanitizeText(m.Content),
			Timestamp: ts,
		})
	}
	if err := c.store.CreateConversation(ctx, &conv); err != nil {
		handleStoreErr(ctx, c.logger, err, "create conversation")
		return
	}
	utils.Created(ctx, conv)
}

// ListConversations returns a user's conversations.
func (c *ConversationController) ListConversations(ctx *gin.Context) {
	userID, ok := queryUserID(ctx)
	if !ok {
		return
	}
	list, err := c.store.ListConversations(ctx, userID)
	if err != nil {
		handleStoreErr(ctx, c.logger, err, "list conversations")
		return
	}
	utils.Success(ctx, list)
}

// GetConversation returns one conversation with its messages.
func (c *ConversationController) GetConversation(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	conv, err := c.store.GetConversation(ctx, id)
	if err != nil {
		handleStoreErr(ctx, c.logger, err, "get conversation")
		return
	}
	utils.Success(ctx, conv)
}

// PostMessage adds a user message, asks the coach, and appends both turns.
func (c *ConversationController) PostMessage(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req struct {
		Message string `json:"message" binding:"required,max=4000"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationError(ctx, 40001, err)
		return
	}
	message := utils.SanitizeText(req.Message)
	if message == "" {
		utils.Error(ctx, http.StatusBadRequest, 40002, "message cannot be empty")
		return
	}

	conv, err := c.store.GetConversation(ctx, id)
	if err != nil {
		handleStoreErr(ctx, c.logger, err, "get conversation")
		return
	}
	conv, _, err = c.continueConversation(ctx, conv, message)
	if err != nil {
		handleStoreErr(ctx, c.logger, err, "append messages")
		return
	}
	utils.Success(ctx, conv)
}

// continueConversation asks the gateway for a reply to message and appends the user
// and assistant turns to conv.
func (c *ConversationController) continueConversation(ctx *gin.Context, conv *models.AIConversation, message string) (*models.AIConversation, string, error) {
	user, err := c.store.GetUser(ctx, conv.UserID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, "", err
	}

	asked := c.now()
	reply := c.gateway.Chat(ctx.Request.Context(), user, conv.Messages, message)
	updated, err := c.store.AppendConversationMessages(ctx, conv.ID,
		models.Message{Role: models.RoleUser, Content: message, Timestamp: asked},
		models.Message{Role: models.RoleAssistant, Content: reply, Timestamp: c.now()},
	)
	if err != nil {
		return nil, "", err
	}
	return updated, reply, nil
}
