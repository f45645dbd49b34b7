package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cppla/famfit/ai"
	"github.com/cppla/famfit/config"
	"github.com/cppla/famfit/controllers"
	"github.com/cppla/famfit/middleware"
	"github.com/cppla/famfit/store"
	"github.com/cppla/famfit/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
// accessLogger receives gin access and panic logs; nil disables access logging.
func SetupRouter(cfg config.AppConfig, s store.Store, gateway *ai.Gateway, logger, accessLogger *zap.Logger) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	if accessLogger != nil {
		r.Use(utils.Ginzap(accessLogger, middleware.ContextRequestIDKey))
		r.Use(utils.RecoveryWithZap(accessLogger, true))
	} else {
		r.Use(utils.RecoveryWithZap(logger, true))
	}
	r.Use(middleware.Metrics())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	userController := controllers.NewUserController(s, logger)
	familyController := controllers.NewFamilyController(s, logger)
	metricController := controllers.NewHealthMetricController(s, logger)
	workoutController := controllers.NewWorkoutController(s, logger)
	mealController := controllers.NewMealController(s, logger)
	challengeController := controllers.NewChallengeController(s, logger)
	conversationController := controllers.NewConversationController(s, gateway, logger)
	aiController := controllers.NewAIController(s, gateway, logger)
	statsController := controllers.NewStatsController(s, logger)
	authController := controllers.NewAuthController(s, logger, cfg.JWTSecret, time.Duration(cfg.TokenLifetimeHours)*time.Hour)

	api := r.Group("/api")
	api.Use(middleware.RateLimitMiddleware(cfg.RateLimitPerMinute))

	authGroup := api.Group("/auth")
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/me", middleware.AuthRequired(cfg.JWTSecret), authController.Me)

	protected := api.Group("")
	if cfg.AuthRequired {
		protected.Use(middleware.AuthRequired(cfg.JWTSecret))
	} else {
		protected.Use(middleware.OptionalAuth(cfg.JWTSecret))
	}

	protected.GET("/users", userController.ListUsers)
	protected.POST("/users", userController.CreateUser)
	protected.GET("/users/:id", userController.GetUser)
	protected.PATCH("/users/:id", userController.UpdateUser)

	protected.GET("/families", familyController.ListFamilies)
	protected.POST("/families", familyController.CreateFamily)
	protected.GET("/families/:id", familyController.GetFamily)
	protected.GET("/families/:id/users", familyController.ListFamilyUsers)
	protected.GET("/families/:id/stats", statsController.GetFamilyStats)

	protected.GET("/health-metrics", metricController.ListHealthMetrics)
	protected.POST("/health-metrics", metricController.CreateHealthMetric)
	protected.GET("/health-metrics/latest", metricController.LatestHealthMetric)

	protected.GET("/workouts", workoutController.ListWorkouts)
	protected.POST("/workouts", workoutController.CreateWorkout)
	protected.GET("/workouts/:id", workoutController.GetWorkout)
	protected.GET("/user-workouts", workoutController.ListUserWorkouts)
	protected.POST("/user-workouts", workoutController.AssignWorkout)
	protected.PUT("/user-workouts/:id/complete", workoutController.CompleteUserWorkout)

	protected.GET("/meals", mealController.ListMeals)
	protected.POST("/meals", mealController.CreateMeal)

	protected.GET("/challenges", challengeController.ListChallenges)
	protected.POST("/challenges", challengeController.CreateChallenge)
	protected.GET("/challenges/:id", challengeController.GetChallenge)
	protected.GET("/user-challenges", challengeController.ListUserChallenges)
	protected.POST("/user-challenges", challengeController.JoinChallenge)
	protected.PUT("/user-challenges/:id/progress", challengeController.UpdateProgress)

	protected.GET("/ai-conversations", conversationController.ListConversations)
	protected.POST("/ai-conversations", conversationController.CreateConversation)
	protected.GET("/ai-conversations/:id", conversationController.GetConversation)

	// tighter per-IP bucket for endpoints that call the completion API
	aiGroup := protected.Group("")
	aiGroup.Use(middleware.RateLimitMiddleware(cfg.AIRateLimitPerMinute))
	aiGroup.POST("/ai-conversations/:id/messages", conversationController.PostMessage)
	aiGroup.POST("/ai/meal-recommendations", aiController.MealRecommendations)
	aiGroup.POST("/ai/workout-recommendations", aiController.WorkoutRecommendations)
	aiGroup.POST("/ai/chat", aiController.Chat)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		utils.Error(ctx, http.StatusNotFound, 40400, "not found")
	})

	return r
}
