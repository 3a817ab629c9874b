package api

import (
	"github.com/gin-gonic/gin"

	"github.com/quillcheck/engine/internal/checker"
	"github.com/quillcheck/engine/internal/config"
	"github.com/quillcheck/engine/internal/engine"
)

func SetupRoutes(
	cfg *config.Config,
	checkSvc *checker.Service,
	manager *engine.Manager,
) *gin.Engine {
	router := gin.Default()

	// Create handler
	handler := NewHandler(cfg, checkSvc, manager)

	// Create rate limiter
	rateLimiter := NewRateLimiter(cfg.RateLimitRPS, int(cfg.RateLimitRPS*2))

	// Middleware
	router.Use(ErrorHandlerMiddleware())
	router.Use(MetricsMiddleware())

	// Health endpoint (no auth)
	router.GET("/health", handler.Health)

	// API routes (with auth and rate limiting)
	api := router.Group("/api/v1")
	api.Use(JWTAuthMiddleware(cfg.JWTSecret))
	api.Use(RateLimitMiddleware(rateLimiter))
	{
		api.POST("/check", handler.Check)
		api.GET("/results/:documentId", handler.GetResult)
		api.DELETE("/documents/:id", handler.EvictDocument)
	}

	return router
}
