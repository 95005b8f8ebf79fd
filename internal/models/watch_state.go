package models

import (
	"github.com/google/uuid"
	"github.com/killallgit/resume-api/pkg/intervals"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// WatchState is the persisted resume and progress record of one user for one video
type WatchState struct {
	gorm.Model
	UUID           string                                  `json:"uuid" gorm:"uniqueIndex"`
	UserID         string                                  `json:"user_id" gorm:"not null;uniqueIndex:idx_watch_user_video"`
	VideoID        string                                  `json:"video_id" gorm:"not null;uniqueIndex:idx_watch_user_video"`
	Intervals      datatypes.JSONSlice[intervals.Interval] `json:"intervals"`
	CursorLocation float64                                 `json:"cursor_location" gorm:"not null;default:0"` // Seconds
	Progress       float64                                 `json:"progress" gorm:"not null;default:0"`        // Percent, 0-100
	Duration       float64                                 `json:"duration" gorm:"not null"`                  // Seconds
}

// NewWatchState returns the default record created on first access
func NewWatchState(userID, videoID string, duration float64) *WatchState {
	return &WatchState{
		UUID:      uuid.New().String(),
		UserID:    userID,
		VideoID:   videoID,
		Intervals: datatypes.JSONSlice[intervals.Interval]{},
		Duration:  duration,
	}
}

// BeforeCreate generates a UUID before creating a new record
func (w *WatchState) BeforeCreate(tx *gorm.DB) error {
	if w.UUID == "" {
		w.UUID = uuid.New().String()
	}
	return nil
}

// TableName returns the table name for the WatchState model
func (WatchState) TableName() string {
	return "watch_states"
}

// WatchedIntervals returns the stored intervals as a non-nil slice
func (w *WatchState) WatchedIntervals() []intervals.Interval {
	out := make([]intervals.Interval, len(w.Intervals))
	copy(out, w.Intervals)
	return out
}

// AllModels lists every model managed by auto-migration
func AllModels() []any {
	return []any{&WatchState{}}
}
