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

// WorkoutController manages workout templates and their assignment to users.
type WorkoutController struct {
	store  store.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewWorkoutController creates a WorkoutController.
func NewWorkoutController(s store.Store, logger *zap.Logger) *WorkoutController {
	return &WorkoutController{store: s, logger: orNop(logger), now: time.Now}
}

type createWorkoutRequest struct {
	Title         string     `json:"title" binding:"required,max=255"`
	Description   string     `json:"description"`
	Duration      int        `json:"duration" binding:"required,gt=0,lte=600"`
	Intensity     string     `json:"intensity" binding:"omitempty,oneof=low medium high"`
	ImageURL      string     `json:"imageUrl" binding:"omitempty,url,max=512"`
	ScheduledTime *time.Time `json:"scheduledTime"`
}

// CreateWorkout stores a workout template.
func (w *WorkoutController) CreateWorkout(ctx *gin.Context) {
	var req createWorkoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationError(ctx, 40001, err)
		return
	}
	title := utils.SanitizeText(req.Title)
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40002, "title cannot be empty")
		return
	}
	workout := models.Workout{
		Title:         title,
		Description:   utils.Sanitize(strings.TrimSpace(req.Description)),
		Duration:      req.Duration,
		Intensity:     req.Intensity,
		ImageURL:      req.ImageURL,
		ScheduledTime: req.ScheduledTime,
	}
	if err := w.store.CreateWorkout(ctx, &workout); err != nil {
		handleStoreErr(ctx, w.logger, err, "create workout")
		return
	}
	utils.Created(ctx, workout)
}

// ListWorkouts returns all workout templates.
func (w *WorkoutController) ListWorkouts(ctx *gin.Context) {
	workouts, err := w.store.ListWorkouts(ctx)
	if err != nil {
		handleStoreErr(ctx, w.logger, err, "list workouts")
		return
	}
	utils.Success(ctx, workouts)
}

// GetWorkout returns one workout template.
func (w *WorkoutController) GetWorkout(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	workout, err := w.store.GetWorkout(ctx, id)
	if err != nil {
		handleStoreErr(ctx, w.logger, err, "get workout")
		return
	}
	utils.Success(ctx, workout)
}

type assignWorkoutRequest struct {
	UserID       uint       `json:"userId" binding:"required"`
	WorkoutID    uint       `json:"workoutId" binding:"required"`
	ScheduledFor *time.Time `json:"scheduledFor"`
}

// AssignWorkout schedules a workout for a user.
func (w *WorkoutController) AssignWorkout(ctx *gin.Context) {
	var req assignWorkoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationError(ctx, 40001, err)
		return
	}
	uw := models.UserWorkout{
		UserID:       req.UserID,
		WorkoutID:    req.WorkoutID,
		ScheduledFor: req.ScheduledFor,
	}
	if err := w.store.CreateUserWorkout(ctx, &uw); err != nil {
		handleStoreErr(ctx, w.logger, err, "assign workout")
		return
	}
	utils.Created(ctx, uw)
}

// ListUserWorkouts returns a user's assignments. upcoming=true keeps only incomplete
// ones scheduled in the future, soonest first.
func (w *WorkoutController) ListUserWorkouts(ctx *gin.Context) {
	userID, ok := queryUserID(ctx)
	if !ok {
		return
	}
	var (
		list []models.UserWorkout
		err  error
	)
	if ctx.Query("upcoming") == "true" {
		list, err = w.store.ListUpcomingUserWorkouts(ctx, userID, w.now())
	} else {
		list, err = w.store.ListUserWorkouts(ctx, userID)
	}
	if err != nil {
		handleStoreErr(ctx, w.logger, err, "list user workouts")
		return
	}
	utils.Success(ctx, list)
}

// CompleteUserWorkout marks an assignment done now.
func (w *WorkoutController) CompleteUserWorkout(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	uw, err := w.store.CompleteUserWorkout(ctx, id, w.now())
	if err != nil {
		handleStoreErr(ctx, w.logger, err, "complete workout")
		return
	}
	utils.Success(ctx, uw)
}
