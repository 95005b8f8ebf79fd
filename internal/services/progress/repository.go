package progress

import (
	"context"
	"errors"
	"fmt"

	"github.com/killallgit/resume-api/internal/models"
	apperrors "github.com/killallgit/resume-api/pkg/errors"
	"github.com/killallgit/resume-api/pkg/intervals"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// repository implements Store on top of gorm
type repository struct {
	db *gorm.DB
}

// NewRepository creates a gorm backed progress store
func NewRepository(db *gorm.DB) Store {
	return &repository{db: db}
}

// GetOrCreate inserts the default record if absent, then reads it back.
// The unique (user_id, video_id) index turns a racing insert into a no-op.
func (r *repository) GetOrCreate(ctx context.Context, userID, videoID string, duration float64) (*models.WatchState, error) {
	fresh := models.NewWatchState(userID, videoID, duration)

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "video_id"}},
			DoNothing: true,
		}).
		Create(fresh).Error
	if err != nil {
		return nil, apperrors.DatabaseError("get_or_create", fmt.Errorf("inserting watch state: %w", err))
	}

	state, err := r.find(ctx, userID, videoID)
	if err != nil {
		return nil, apperrors.DatabaseError("get_or_create", err)
	}
	return state, nil
}

// Save applies a full replace of the fields present in update
func (r *repository) Save(ctx context.Context, userID, videoID string, update Update) (*models.WatchState, error) {
	updates := map[string]interface{}{}
	if update.Intervals != nil {
		updates["intervals"] = datatypes.JSONSlice[intervals.Interval](update.Intervals)
	}
	if update.CursorLocation != nil {
		updates["cursor_location"] = *update.CursorLocation
	}
	if update.Progress != nil {
		updates["progress"] = *update.Progress
	}
	if update.Duration != nil {
		updates["duration"] = *update.Duration
	}

	if len(updates) > 0 {
		result := r.db.WithContext(ctx).
			Model(&models.WatchState{}).
			Where("user_id = ? AND video_id = ?", userID, videoID).
			Updates(updates)
		if result.Error != nil {
			return nil, apperrors.DatabaseError("save", fmt.Errorf("updating watch state: %w", result.Error))
		}
		if result.RowsAffected == 0 {
			return nil, apperrors.DatabaseError("save", ErrStateNotFound)
		}
	}

	state, err := r.find(ctx, userID, videoID)
	if err != nil {
		return nil, apperrors.DatabaseError("save", err)
	}
	return state, nil
}

func (r *repository) find(ctx context.Context, userID, videoID string) (*models.WatchState, error) {
	var state models.WatchState
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND video_id = ?", userID, videoID).
		First(&state).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStateNotFound
		}
		return nil, fmt.Errorf("getting watch state: %w", err)
	}
	return &state, nil
}
