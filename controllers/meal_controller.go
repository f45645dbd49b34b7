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

// MealController logs meals.
type MealController struct {
	store  store.Store
	logger *zap.Logger
}

// NewMealController creates a MealController.
func NewMealController(s store.Store, logger *zap.Logger) *MealController {
	return &MealController{store: s, logger: orNop(logger)}
}

type createMealRequest struct {
	UserID    uint       `json:"userId" binding:"required"`
	Name      string     `json:"name" binding:"required,max=255"`
	Calories  int        `json:"calories" binding:"gte=0"`
	Protein   int        `json:"protein" binding:"gte=0"`
	Timestamp *time.Time `json:"timestamp"`
	MealType  string     `json:"mealType" binding:"omitempty,oneof=breakfast lunch dinner snack"`
}

// CreateMeal logs a meal. A missing timestamp means now.
func (m *MealController) CreateMeal(ctx *gin.Context) {
	var req createMealRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationError(ctx, 40001, err)
		return
	}
	name := utils.SanitizeText(req.Name)
	if name == "" {
		utils.Error(ctx, http.StatusBadRequest, 40002, "name cannot be empty")
		return
	}
	meal := models.Meal{
		UserID:   req.UserID,
		Name:     name,
		Calories: req.Calories,
		Protein:  req.Protein,
		MealType: req.MealType,
	}
	if req.Timestamp != nil {
		meal.Timestamp = *req.Timestamp
	}
	if err := m.store.CreateMeal(ctx, &meal); err != nil {
		handleStoreErr(ctx, m.logger, err, "create meal")
		return
	}
	utils.Created(ctx, meal)
}

// ListMeals returns a user's meals oldest first. date=YYYY-MM-DD keeps one local calendar day.
func (m *MealController) ListMeals(ctx *gin.Context) {
	userID, ok := queryUserID(ctx)
	if !ok {
		return
	}
	var (
		meals []models.Meal
		err   error
	)
	if raw := strings.TrimSpace(ctx.Query("date")); raw != "" {
		day, perr := time.ParseInLocation(dateLayout, raw, time.Local)
		if perr != nil {
			utils.Error(ctx, http.StatusBadRequest, 40012, "date must be YYYY-MM-DD")
			return
		}
		meals, err = m.store.ListMealsByDate(ctx, userID, day)
	} else {
		meals, err = m.store.ListMeals(ctx, userID)
	}
	if err != nil {
		handleStoreErr(ctx, m.logger, err, "list meals")
		return
	}
	utils.Success(ctx, meals)
}
