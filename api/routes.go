package api

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/killallgit/resume-api/api/health"
	"github.com/killallgit/resume-api/api/progression"
	"github.com/killallgit/resume-api/api/types"
	"github.com/killallgit/resume-api/api/version"
	"github.com/killallgit/resume-api/api/video"
	_ "github.com/killallgit/resume-api/docs/swagger"
)

// RegisterRoutes registers all API routes
func RegisterRoutes(engine *gin.Engine, deps *types.Dependencies, rateLimiters *sync.Map, cleanupStop chan struct{}, cleanupInitialized *sync.Once) error {
	if deps == nil || deps.ProgressService == nil {
		return fmt.Errorf("progress service is not configured")
	}

	// Register public routes (no rate limiting)
	health.RegisterRoutes(engine, deps)
	version.RegisterRoutes(engine)

	// Register Swagger documentation route
	engine.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/docs/index.html")
	})
	docsGroup := engine.Group("/docs")
	docsGroup.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Setup 404 handler
	engine.NoRoute(NotFoundHandler())

	// Progress routes share one per-client limiter
	progressGroup := engine.Group("")
	if deps.Config != nil && deps.Config.RateLimiting.Enabled {
		rl := deps.Config.RateLimiting
		progressGroup.Use(PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, rl.RequestsPerSecond, rl.Burst))
	}
	video.RegisterRoutes(progressGroup, deps)
	progression.RegisterRoutes(progressGroup, deps)

	return nil
}

// NotFoundHandler handles 404 errors
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"status":  types.StatusError,
			"message": "The requested endpoint was not found",
			"path":    c.Request.URL.Path,
		})
	}
}
