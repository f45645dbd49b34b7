package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/famfit/models"
	"github.com/cppla/famfit/store"
	"github.com/cppla/famfit/utils"
)

// ChallengeController manages family challenges and user participation.
type ChallengeController struct {
	store  store.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewChallengeController creates a ChallengeController.
func NewChallengeController(s store.Store, logger *zap.Logger) *ChallengeController {
	return &ChallengeController{store: s, logger: orNop(logger), now: time.Now}
}

type createChallengeRequest struct {
	Title       string    `json:"title" binding:"required,max=255"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"startDate" binding:"required"`
	EndDate     time.Time `json:"endDate" binding:"required"`
	GoalType    string    `json:"goalType" binding:"required,max=32"`
	GoalValue   int       `json:"goalValue" binding:"required,gt=0"`
}

// CreateChallenge stores a challenge. The window must not end before it starts.
func (c *ChallengeController) CreateChallenge(ctx *gin.Context) {
	var req createChallengeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationError(ctx, 40001, err)
		return
	}
	title := utils.SanitizeText(req.Title)
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40002, "title cannot be empty")
		return
	}
	if req.EndDate.Before(req.StartDate) {
		utils.Error(ctx, http.StatusBadRequest, 40004, "endDate must not be before startDate")
		return
	}
	challenge := models.Challenge{
		Title:       title,
		Description: utils.Sanitize(strings.TrimSpace(req.Description)),
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		GoalType:    utils.SanitizeText(req.GoalType),
		GoalValue:   req.GoalValue,
	}
	if err := c.store.CreateChallenge(ctx, &challenge); err != nil {
		handleStoreErr(ctx, c.logger, err, "create challenge")
		return
	}
	utils.Created(ctx, challenge)
}

// ListChallenges returns all challenges, or only the running ones with active=true.
func (c *ChallengeController) ListChallenges(ctx *gin.Context) {
	var (
		list []models.Challenge
		err  error
	)
	if ctx.Query("active") == "true" {
		list, err = c.store.ListActiveChallenges(ctx, c.now())
	} else {
		list, err = c.store.ListChallenges(ctx)
	}
	if err != nil {
		handleStoreErr(ctx, c.logger, err, "list challenges")
		return
	}
	utils.Success(ctx, list)
}

// GetChallenge returns one challenge.
func (c *ChallengeController) GetChallenge(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	challenge, err := c.store.GetChallenge(ctx, id)
	if err != nil {
		handleStoreErr(ctx, c.logger, err, "get challenge")
		return
	}
	utils.Success(ctx, challenge)
}

type joinChallengeRequest struct {
	UserID      uint `json:"userId" binding:"required"`
	ChallengeID uint `json:"challengeId" binding:"required"`
	Progress    int  `json:"progress" binding:"gte=0"`
}

// JoinChallenge enrolls a user in a challenge.
func (c *ChallengeController) JoinChallenge(ctx *gin.Context) {
	var req joinChallengeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationError(ctx, 40001, err)
		return
	}
	uc := models.UserChallenge{
		UserID:      req.UserID,
		ChallengeID: req.ChallengeID,
		Progress:    req.Progress,
	}
	if err := c.store.CreateUserChallenge(ctx, &uc); err != nil {
		handleStoreErr(ctx, c.logger, err, "join challenge")
		return
	}
	utils.Created(ctx, uc)
}

// ListUserChallenges returns a user's participations.
func (c *ChallengeController) ListUserChallenges(ctx *gin.Context) {
	userID, ok := queryUserID(ctx)
	if !ok {
		return
	}
	list, err := c.store.ListUserChallenges(ctx, userID)
	if err != nil {
		handleStoreErr(ctx, c.logger, err, "list user challenges")
		return
	}
	utils.Success(ctx, list)
}

type progressRequest struct {
	Progress *int `json:"progress" binding:"required,gte=0"`
}

// UpdateProgress sets a participation's progress and recomputes completion against the goal.
func (c *ChallengeController) UpdateProgress(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req progressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationError(ctx, 40001, err)
		return
	}
	uc, err := c.store.UpdateUserChallengeProgress(ctx, id, *req.Progress)
	if err != nil {
		handleStoreErr(ctx, c.logger, err, "update progress")
		return
	}
	utils.Success(ctx, uc)
}
