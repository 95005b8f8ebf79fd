package video

import (
	"github.com/gin-gonic/gin"
	"github.com/killallgit/resume-api/api/types"
)

// RegisterRoutes registers video routes
func RegisterRoutes(router gin.IRoutes, deps *types.Dependencies) {
	// GET /video?videoName=&userId=
	router.GET("/video", Get(deps))
}
