package progression

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/resume-api/api/types"
	"github.com/killallgit/resume-api/internal/services/progress"
	apperrors "github.com/killallgit/resume-api/pkg/errors"
	"github.com/killallgit/resume-api/pkg/playback"
)

// PostSync merges newly watched segments into the stored state of a video
// @Summary Sync watched segments
// @Description Merges the pushed gaps into the stored intervals, saves the cursor and recomputes progress
// @Tags progression
// @Accept json
// @Produce json
// @Param request body playback.SyncRequest true "Watched segments keyed by start, with the current cursor"
// @Success 200 {object} playback.SyncResponse
// @Failure 400 {object} types.ErrorResponse "Unparseable body"
// @Failure 404 {object} types.ErrorResponse "User or video not found"
// @Failure 429 {object} types.ErrorResponse "Rate limit exceeded"
// @Failure 500 {object} types.ErrorResponse "Storage failure"
// @Router /progressionSync [post]
func PostSync(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := types.Logger(c, deps)

		var req playback.SyncRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		segments, dropped := req.Gaps.Segments()
		if dropped > 0 {
			log.Debugw("ignoring malformed gaps",
				"video", req.VideoName,
				"user_id", req.UserID,
				"error", apperrors.ValidationError("gaps", fmt.Sprintf("%d malformed segments", dropped)),
			)
		}

		result, err := deps.ProgressService.Sync(c.Request.Context(), progress.SyncInput{
			UserID:         req.UserID,
			VideoName:      req.VideoName,
			Segments:       segments,
			CursorLocation: req.CursorLocation,
		})
		if err != nil {
			log.Warnw("progression sync failed", "video", req.VideoName, "user_id", req.UserID, "code", apperrors.GetCode(err), "error", err)
			types.SendError(c, err)
			return
		}

		types.SendSuccess(c, playback.SyncResponse{
			Success:        true,
			Progress:       result.Progress,
			CursorLocation: result.CursorLocation,
		})
	}
}
