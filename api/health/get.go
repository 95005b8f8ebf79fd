package health

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/resume-api/api/types"
)

// Get handles health check requests
// @Summary Health check
// @Description Reports service status and database connectivity
// @Tags health
// @Produce json
// @Success 200 {object} types.HealthResponse
// @Failure 503 {object} types.HealthResponse
// @Router /health [get]
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := types.HealthResponse{
			Status:    "ok",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Database:  getDatabaseStatus(deps),
		}

		status := http.StatusOK
		if response.Database["status"] == "unhealthy" {
			response.Status = "degraded"
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, response)
	}
}

// getDatabaseStatus returns the database connection status
func getDatabaseStatus(deps *types.Dependencies) map[string]interface{} {
	if deps == nil || deps.DB == nil {
		return gin.H{"status": "not configured"}
	}

	if err := deps.DB.HealthCheck(); err != nil {
		return gin.H{"status": "unhealthy", "error": err.Error()}
	}

	return gin.H{"status": "healthy"}
}
