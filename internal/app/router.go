package app

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/malharwork/agneez-poc/internal/config"
	"github.com/malharwork/agneez-poc/internal/middleware"
	"github.com/malharwork/agneez-poc/pkg/monitoring"
	"github.com/malharwork/agneez-poc/pkg/security"
)

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(monitoring.MetricsMiddleware())

	if cfg.RateLimit.MaxRequests > 0 {
		window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
		if window == 0 {
			window = time.Minute
		}
		router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, window))
	}
}

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.Health)
	router.GET("/health/knowledge-base", c.health.KnowledgeBase)

	api := router.Group("/api/v1")

	// Public: the catalog and student registration.
	api.GET("/topics", c.topic.ListTopics)
	api.POST("/students", c.progress.Register)

	authed := api.Group("")
	authed.Use(middleware.StudentAuth(cfg.JWT.Secret))
	{
		authed.GET("/students/me", c.progress.Me)
		authed.PUT("/students/me", c.progress.UpdateProfile)

		tutor := authed.Group("/tutor")
		{
			tutor.POST("/chat", c.tutor.Chat)
			tutor.POST("/adaptive-content", c.tutor.AdaptiveContent)
			tutor.POST("/method-content", c.tutor.MethodContent)
			tutor.POST("/prerequisite-content", c.tutor.PrerequisiteContent)
			tutor.POST("/performance-update", c.tutor.PerformanceUpdate)
		}

		progress := authed.Group("/progress")
		{
			progress.POST("/interactions", c.progress.RecordInteraction)
			progress.GET("/mastery/:topic", c.progress.Mastery)
			progress.GET("/summary", c.progress.Summary)
			progress.GET("/recommendations", c.progress.Recommendations)
			progress.GET("/analytics", c.progress.Analytics)
		}

		sessions := authed.Group("/sessions")
		{
			sessions.POST("", c.progress.StartSession)
			sessions.POST("/:id/end", c.progress.EndSession)
			sessions.GET("", c.progress.ListSessions)
		}

		authed.POST("/learning-path", c.topic.LearningPath)
	}
}
