package version

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/resume-api/api/types"
)

// Version is set at build time with -ldflags
var Version = "1.0.0"

// Get handles version requests
// @Summary API version
// @Tags health
// @Produce json
// @Success 200 {object} types.VersionResponse
// @Router / [get]
func Get() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, types.VersionResponse{
			Name:        "Resume API",
			Version:     Version,
			Description: "API for resuming video playback and tracking watched progress",
			Status:      "running",
		})
	}
}
