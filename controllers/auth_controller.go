package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/famfit/middleware"
	"github.com/cppla/famfit/store"
	"github.com/cppla/famfit/utils"
)

// AuthController issues and inspects login tokens.
type AuthController struct {
	store         store.Store
	logger        *zap.Logger
	secret        string
	tokenLifetime time.Duration
}

// NewAuthController creates an AuthController signing tokens with secret.
func NewAuthController(s store.Store, logger *zap.Logger, secret string, tokenLifetime time.Duration) *AuthController {
	if tokenLifetime <= 0 {
		tokenLifetime = 72 * time.Hour
	}
	return &AuthController{store: s, logger: orNop(logger), secret: secret, tokenLifetime: tokenLifetime}
}

// Login authenticates a user with username and password.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationError(ctx, 40003, err)
		return
	}

	user, err := a.store.GetUserByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid username or password")
			return
		}
		handleStoreErr(ctx, a.logger, err, "look up user")
		return
	}
	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid username or password")
		return
	}

	token, err := utils.GenerateToken(a.secret, user.ID, user.Username, a.tokenLifetime)
	if err != nil {
		a.logger.Error("generate token failed", zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{
		"token":     token,
		"expiresIn": int(a.tokenLifetime.Seconds()),
		"user":      user,
	})
}

// Me returns the authenticated user's profile.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}
	user, err := a.store.GetUser(ctx, userID)
	if err != nil {
		handleStoreErr(ctx, a.logger, err, "get user")
		return
	}
	utils.Success(ctx, user)
}
