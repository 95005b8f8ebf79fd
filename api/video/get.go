package video

import (
	"github.com/gin-gonic/gin"
	"github.com/killallgit/resume-api/api/types"
	apperrors "github.com/killallgit/resume-api/pkg/errors"
	"github.com/killallgit/resume-api/pkg/playback"
)

// Get returns the playable URL and resume state of a video for a user.
// The state is created on first access.
// @Summary Get video resume state
// @Description Returns the video URL, the saved cursor, the watched intervals and the progress percentage
// @Tags video
// @Produce json
// @Param videoName query string true "Registered video name" example(Sintel-blender-demo)
// @Param userId query string false "User id, the default user when omitted"
// @Success 200 {object} playback.VideoResponse
// @Failure 404 {object} types.ErrorResponse "Video not found"
// @Failure 429 {object} types.ErrorResponse "Rate limit exceeded"
// @Failure 500 {object} types.ErrorResponse "Storage failure"
// @Router /video [get]
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := types.Logger(c, deps)
		videoName := c.Query("videoName")
		userID := c.Query("userId")

		view, err := deps.ProgressService.Get(c.Request.Context(), userID, videoName)
		if err != nil {
			log.Warnw("video lookup failed", "video", videoName, "user_id", userID, "code", apperrors.GetCode(err), "error", err)
			types.SendError(c, err)
			return
		}

		types.SendSuccess(c, playback.VideoResponse{
			URL:            view.Video.URL,
			CursorLocation: view.State.CursorLocation,
			Progress:       view.State.Progress,
			Intervals:      view.State.WatchedIntervals(),
			Duration:       view.State.Duration,
		})
	}
}
