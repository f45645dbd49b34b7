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

// HealthMetricController records daily activity snapshots.
type HealthMetricController struct {
	store  store.Store
	logger *zap.Logger
}

// NewHealthMetricController creates a HealthMetricController.
func NewHealthMetricController(s store.Store, logger *zap.Logger) *HealthMetricController {
	return &HealthMetricController{store: s, logger: orNop(logger)}
}

type createHealthMetricRequest struct {
	UserID         uint       `json:"userId" binding:"required"`
	Date           *time.Time `json:"date"`
	Steps          int        `json:"steps" binding:"gte=0"`
	ActiveMinutes  int        `json:"activeMinutes" binding:"gte=0"`
	CaloriesBurned int        `json:"caloriesBurned" binding:"gte=0"`
	SleepMinutes   int        `json:"sleepMinutes" binding:"gte=0"`
}

// CreateHealthMetric appends a metric. A missing date means now.
func (h *HealthMetricController) CreateHealthMetric(ctx *gin.Context) {
	var req createHealthMetricRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationError(ctx, 40001, err)
		return
	}
	metric := models.HealthMetric{
		UserID:         req.UserID,
		Steps:          req.Steps,
		ActiveMinutes:  req.ActiveMinutes,
		CaloriesBurned: req.CaloriesBurned,
		SleepMinutes:   req.SleepMinutes,
	}
	if req.Date != nil {
		metric.Date = *req.Date
	}
	if err := h.store.CreateHealthMetric(ctx, &metric); err != nil {
		handleStoreErr(ctx, h.logger, err, "create health metric")
		return
	}
	utils.Created(ctx, metric)
}

// ListHealthMetrics returns a user's metrics newest first, optionally within [from, to].
// A date-only "to" covers the whole day.
func (h *HealthMetricController) ListHealthMetrics(ctx *gin.Context) {
	userID, ok := queryUserID(ctx)
	if !ok {
		return
	}
	from, err := parseTimeQuery(ctx.Query("from"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40012, "invalid from")
		return
	}
	rawTo := strings.TrimSpace(ctx.Query("to"))
	to, err := parseTimeQuery(rawTo)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40013, "invalid to")
		return
	}
	if len(rawTo) == len(dateLayout) {
		_, to = store.DayBounds(to)
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		utils.Error(ctx, http.StatusBadRequest, 40014, "to must not be before from")
		return
	}

	metrics, err := h.store.ListHealthMetrics(ctx, userID, from, to)
	if err != nil {
		handleStoreErr(ctx, h.logger, err, "list health metrics")
		return
	}
	utils.Success(ctx, metrics)
}

// LatestHealthMetric returns the user's most recent metric, 404 when none is recorded.
func (h *HealthMetricController) LatestHealthMetric(ctx *gin.Context) {
	userID, ok := queryUserID(ctx)
	if !ok {
		return
	}
	metric, err := h.store.LatestHealthMetric(ctx, userID)
	if err != nil {
		handleStoreErr(ctx, h.logger, err, "get latest health metric")
		return
	}
	utils.Success(ctx, metric)
}
