package progression

import (
	"github.com/gin-gonic/gin"
	"github.com/killallgit/resume-api/api/types"
)

// RegisterRoutes registers progression routes
func RegisterRoutes(router gin.IRoutes, deps *types.Dependencies) {
	// POST /progressionSync
	router.POST("/progressionSync", PostSync(deps))
}
