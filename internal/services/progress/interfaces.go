package progress

import (
	"context"

	"github.com/killallgit/resume-api/internal/models"
	"github.com/killallgit/resume-api/internal/services/videos"
	"github.com/killallgit/resume-api/pkg/intervals"
)

// Store persists one WatchState per (user, video) pair
type Store interface {
	// GetOrCreate returns the record for the pair, inserting the default
	// record first if none exists. Concurrent first calls create at most one.
	GetOrCreate(ctx context.Context, userID, videoID string, duration float64) (*models.WatchState, error)

	// Save replaces every field set in update and returns the stored record.
	// The last writer wins.
	Save(ctx context.Context, userID, videoID string, update Update) (*models.WatchState, error)
}

// Update lists the fields replaced by Store.Save. Nil fields are left untouched.
type Update struct {
	Intervals      []intervals.Interval
	CursorLocation *float64
	Progress       *float64
	Duration       *float64
}

// Service implements the read and sync paths of the progress protocol
type Service interface {
	// Get returns the resume state of a video for a user, creating it on first access
	Get(ctx context.Context, userID, videoName string) (*View, error)

	// Sync merges newly watched segments into the stored state and recomputes progress
	Sync(ctx context.Context, input SyncInput) (*SyncResult, error)
}

// View is the read-path result
type View struct {
	Video videos.Video
	State *models.WatchState
}

// SyncInput is a parsed sync push
type SyncInput struct {
	UserID         string
	VideoName      string
	Segments       []intervals.Interval
	CursorLocation *float64 // nil keeps the stored cursor
}

// SyncResult is the outcome of a sync push
type SyncResult struct {
	Progress       float64
	CursorLocation float64
	Intervals      []intervals.Interval
}
