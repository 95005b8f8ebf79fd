package progress

import (
	"context"
	"errors"
	"math"

	"github.com/killallgit/resume-api/internal/services/videos"
	apperrors "github.com/killallgit/resume-api/pkg/errors"
	"github.com/killallgit/resume-api/pkg/intervals"
	"github.com/killallgit/resume-api/pkg/logger"
	"go.uber.org/zap"
)

// service implements Service
type service struct {
	store        Store
	registry     videos.Registry
	gapTolerance float64
	defaultUser  string
	log          *zap.SugaredLogger
}

// Option configures the service
type Option func(*service)

// WithGapTolerance sets the merge gap tolerance in seconds
func WithGapTolerance(gap float64) Option {
	return func(s *service) {
		if gap >= 0 {
			s.gapTolerance = gap
		}
	}
}

// WithDefaultUser sets the user id used by the read path when none is given
func WithDefaultUser(userID string) Option {
	return func(s *service) {
		if userID != "" {
			s.defaultUser = userID
		}
	}
}

// WithLogger injects a logger
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *service) {
		s.log = logger.OrNop(l)
	}
}

// NewService creates a progress service
func NewService(store Store, registry videos.Registry, opts ...Option) Service {
	s := &service{
		store:        store,
		registry:     registry,
		gapTolerance: intervals.DefaultGapTolerance,
		defaultUser:  "anonymous",
		log:          logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the resume state, creating the default record on first access
func (s *service) Get(ctx context.Context, userID, videoName string) (*View, error) {
	if userID == "" {
		userID = s.defaultUser
	}

	video, err := s.lookup(videoName)
	if err != nil {
		return nil, err
	}

	state, err := s.store.GetOrCreate(ctx, userID, video.Name, video.Duration)
	if err != nil {
		s.log.Errorw("loading watch state failed", "user_id", userID, "video", video.Name, "error", err)
		return nil, err
	}

	return &View{Video: video, State: state}, nil
}

// Sync merges the pushed segments with the stored intervals, recomputes
// progress against the stored duration and replaces the record.
func (s *service) Sync(ctx context.Context, input SyncInput) (*SyncResult, error) {
	s.log.Infow("syncing progression",
		"user_id", input.UserID,
		"video", input.VideoName,
		"segments", len(input.Segments),
	)

	if input.UserID == "" {
		return nil, apperrors.NotFound("user", "")
	}

	video, err := s.lookup(input.VideoName)
	if err != nil {
		return nil, err
	}

	state, err := s.store.GetOrCreate(ctx, input.UserID, video.Name, video.Duration)
	if err != nil {
		s.log.Errorw("loading watch state failed", "user_id", input.UserID, "video", video.Name, "error", err)
		return nil, err
	}

	segments := intervals.Filter(input.Segments)
	if dropped := len(input.Segments) - len(segments); dropped > 0 {
		s.log.Debugw("dropped malformed segments", "user_id", input.UserID, "video", video.Name, "dropped", dropped)
	}

	merged := intervals.Merge(state.WatchedIntervals(), segments, s.gapTolerance)

	duration := state.Duration
	if duration <= 0 {
		duration = 1
	}
	pct := intervals.Percent(intervals.Covered(merged), duration)

	cursor := state.CursorLocation
	if input.CursorLocation != nil {
		cursor = sanitizeCursor(*input.CursorLocation)
	}

	saved, err := s.store.Save(ctx, input.UserID, video.Name, Update{
		Intervals:      merged,
		CursorLocation: &cursor,
		Progress:       &pct,
		Duration:       &duration,
	})
	if err != nil {
		s.log.Errorw("saving watch state failed", "user_id", input.UserID, "video", video.Name, "error", err)
		return nil, err
	}

	s.log.Debugw("progression synced",
		"user_id", input.UserID,
		"video", video.Name,
		"intervals", len(merged),
		"progress", pct,
		"cursor_location", cursor,
	)

	return &SyncResult{
		Progress:       saved.Progress,
		CursorLocation: saved.CursorLocation,
		Intervals:      saved.WatchedIntervals(),
	}, nil
}

func (s *service) lookup(videoName string) (videos.Video, error) {
	video, err := s.registry.Lookup(videoName)
	if err != nil {
		if errors.Is(err, videos.ErrVideoNotFound) {
			return videos.Video{}, apperrors.NotFound("video", videoName).WithCause(err)
		}
		return videos.Video{}, err
	}
	return video, nil
}

func sanitizeCursor(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
