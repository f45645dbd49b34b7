package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/famfit/models"
	"github.com/cppla/famfit/store"
	"github.com/cppla/famfit/utils"
)

// UserController manages family members.
type UserController struct {
	store  store.Store
	logger *zap.Logger
}

// NewUserController creates a UserController.
func NewUserController(s store.Store, logger *zap.Logger) *UserController {
	return &UserController{store: s, logger: orNop(logger)}
}

type createUserRequest struct {
	Username string  `json:"username" binding:"required,min=2,max=64"`
	Password string  `json:"password" binding:"required,min=6,max=72"`
	Name     string  `json:"name" binding:"required,max=128"`
	Role     string  `json:"role" binding:"max=32"`
	Avatar   *string `json:"avatar" binding:"omitempty,max=512"`
	FamilyID *uint   `json:"familyId" binding:"omitempty,gt=0"`
}

// CreateUser registers a user. The password is stored as a bcrypt hash.
func (u *UserController) CreateUser(ctx *gin.Context) {
	var req createUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationError(ctx, 40001, err)
		return
	}

	username := utils.SanitizeText(req.Username)
	name := utils.SanitizeText(req.Name)
	if username == "" || name == "" {
		utils.Error(ctx, http.StatusBadRequest, 40002, "username and name cannot be empty")
		return
	}

	if _, err := u.store.GetUserByUsername(ctx, username); err == nil {
		utils.Error(ctx, http.StatusConflict, 40901, "username already exists")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		handleStoreErr(ctx, u.logger, err, "look up username")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		u.logger.Error("hash password failed", zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to create user")
		return
	}

	role := strings.ToLower(utils.SanitizeText(req.Role))
	if role == "" {
		role = "parent"
	}

	user := models.User{
		Username:     username,
		PasswordHash: hash,
		Name:         name,
		Role:         role,
		Avatar:       req.Avatar,
		FamilyID:     req.FamilyID,
	}
	if err := u.store.CreateUser(ctx, &user); err != nil {
		handleStoreErr(ctx, u.logger, err, "create user")
		return
	}
	utils.Created(ctx, user)
}

// ListUsers returns every user, optionally narrowed by familyId.
func (u *UserController) ListUsers(ctx *gin.Context) {
	var (
		users []models.User
		err   error
	)
	if raw := strings.TrimSpace(ctx.Query("familyId")); raw != "" {
		familyID, perr := strconv.ParseUint(raw, 10, 64)
		if perr != nil || familyID == 0 {
			utils.Error(ctx, http.StatusBadRequest, 40011, "invalid familyId")
			return
		}
		users, err = u.store.ListUsersByFamily(ctx, uint(familyID))
	} else {
		users, err = u.store.ListUsers(ctx)
	}
	if err != nil {
		handleStoreErr(ctx, u.logger, err, "list users")
		return
	}
	utils.Success(ctx, users)
}

// GetUser returns one user.
func (u *UserController) GetUser(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	user, err := u.store.GetUser(ctx, id)
	if err != nil {
		handleStoreErr(ctx, u.logger, err, "get user")
		return
	}
	utils.Success(ctx, user)
}

type updateUserRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1,max=128"`
	Role     *string `json:"role" binding:"omitempty,max=32"`
	Avatar   *string `json:"avatar" binding:"omitempty,max=512"`
	FamilyID *uint   `json:"familyId" binding:"omitempty,gt=0"`
	Password *string `json:"password" binding:"omitempty,min=6,max=72"`
}

// UpdateUser merges a partial update onto a user.
func (u *UserController) UpdateUser(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req updateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationError(ctx, 40003, err)
		return
	}

	patch := models.UserPatch{Avatar: req.Avatar, FamilyID: req.FamilyID}
	if req.Name != nil {
		name := utils.SanitizeText(*req.Name)
		if name == "" {
			utils.Error(ctx, http.StatusBadRequest, 40002, "name cannot be empty")
			return
		}
		patch.Name = &name
	}
	if req.Role != nil {
		role := strings.ToLower(utils.SanitizeText(*req.Role))
		patch.Role = &role
	}
	if req.Password != nil {
		hash, err := utils.HashPassword(*req.Password)
		if err != nil {
			u.logger.Error("hash password failed", zap.Error(err))
			utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to update user")
			return
		}
		patch.PasswordHash = &hash
	}

	user, err := u.store.UpdateUser(ctx, id, patch)
	if err != nil {
		handleStoreErr(ctx, u.logger, err, "update user")
		return
	}
	utils.Success(ctx, user)
}
