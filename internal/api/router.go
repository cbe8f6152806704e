package api

import (
	"github.com/gin-gonic/gin"
	"github.com/slowpost-labs/slowpost-api/internal/api/handlers"
	apimiddleware "github.com/slowpost-labs/slowpost-api/internal/api/middleware"
	"github.com/slowpost-labs/slowpost-api/internal/config"
	"github.com/slowpost-labs/slowpost-api/internal/generation"
	"github.com/slowpost-labs/slowpost-api/internal/llm"
	"github.com/slowpost-labs/slowpost-api/internal/metrics"
	"github.com/slowpost-labs/slowpost-api/internal/middleware"
	"github.com/slowpost-labs/slowpost-api/internal/services"
	"gorm.io/gorm"
)

func SetupRouter(db *gorm.DB, cfg *config.Config, metricsClient *metrics.Client, version string) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking())

	// CORS middleware
	router.Use(apimiddleware.CORS())

	// Health check
	healthHandler := handlers.NewHealthHandler(db)
	router.GET("/health", healthHandler.HealthCheck)

	// Version/uptime endpoint
	metricsHandler := handlers.NewMetricsHandler(version)
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	letterService := services.NewLetterService(db)
	providerFactory := llm.NewProviderFactory(cfg.OpenAIAPIKey, cfg.GeminiAPIKey)
	generationService := generation.NewService(providerFactory, letterService, cfg.DefaultModel)

	// Auth routes (public)
	authHandler := handlers.NewAuthHandler(db, cfg)
	auth := router.Group("/api/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
	}

	// Protected API routes v1 (require JWT)
	v1 := router.Group("/api/v1")
	v1.Use(middleware.JWTAuth(db, cfg))
	{
		v1.GET("/me", authHandler.Me)

		// Generation endpoints
		generationHandler := handlers.NewGenerationHandler(generationService, letterService, metricsClient)
		v1.POST("/generate", generationHandler.Generate)
		v1.POST("/letters/:id/reflection-question", generationHandler.ReflectionQuestion)
		v1.POST("/prompts/writing", generationHandler.WritingPrompts)
		v1.POST("/affirmation", generationHandler.Affirmation)
		v1.GET("/generation/stats", generationHandler.GenerationStats)

		// Letter endpoints
		letterHandler := handlers.NewLetterHandler(letterService)
		v1.POST("/letters", letterHandler.Create)
		v1.GET("/letters", letterHandler.List)
		v1.GET("/letters/:id", letterHandler.Get)
		v1.PATCH("/letters/:id", letterHandler.Update)
		v1.DELETE("/letters/:id", letterHandler.Delete)
		v1.PATCH("/letters/:id/goals/:goal_id", letterHandler.UpdateGoal)

		// Usage stats
		v1.GET("/usage/stats", letterHandler.UsageStats)
	}

	return router
}
