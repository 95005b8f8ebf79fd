package progress

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/killallgit/resume-api/internal/models"
	apperrors "github.com/killallgit/resume-api/pkg/errors"
)

// PostgresStore implements Store with lib/pq and plain SQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a postgres backed progress store
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// InitSchema creates the watch_states table if needed
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS watch_states (
			id BIGSERIAL PRIMARY KEY,
			uuid TEXT NOT NULL UNIQUE,
			user_id TEXT NOT NULL,
			video_id TEXT NOT NULL,
			intervals JSONB NOT NULL DEFAULT '[]',
			cursor_location DOUBLE PRECISION NOT NULL DEFAULT 0,
			progress DOUBLE PRECISION NOT NULL DEFAULT 0,
			duration DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (user_id, video_id)
		);
	`)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseMigration, "creating watch_states table")
	}
	return nil
}

// GetOrCreate inserts the default record if absent, then reads it back
func (s *PostgresStore) GetOrCreate(ctx context.Context, userID, videoID string, duration float64) (*models.WatchState, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO watch_states (uuid, user_id, video_id, intervals, duration)
		VALUES ($1, $2, $3, '[]', $4)
		ON CONFLICT (user_id, video_id) DO NOTHING
	`, uuid.New().String(), userID, videoID, duration)
	if err != nil {
		return nil, apperrors.DatabaseError("get_or_create", fmt.Errorf("inserting watch state: %w", err))
	}

	state, err := s.find(ctx, userID, videoID)
	if err != nil {
		return nil, apperrors.DatabaseError("get_or_create", err)
	}
	return state, nil
}

// Save applies a full replace of the fields present in update
func (s *PostgresStore) Save(ctx context.Context, userID, videoID string, update Update) (*models.WatchState, error) {
	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Intervals != nil {
		// lib/pq sends []byte as bytea, so JSONB goes over as text
		raw, err := json.Marshal(update.Intervals)
		if err != nil {
			return nil, apperrors.DatabaseError("save", fmt.Errorf("encoding intervals: %w", err))
		}
		set("intervals", string(raw))
	}
	if update.CursorLocation != nil {
		set("cursor_location", *update.CursorLocation)
	}
	if update.Progress != nil {
		set("progress", *update.Progress)
	}
	if update.Duration != nil {
		set("duration", *update.Duration)
	}

	if len(sets) > 0 {
		sets = append(sets, "updated_at = NOW()")
		args = append(args, userID, videoID)
		query := fmt.Sprintf("UPDATE watch_states SET %s WHERE user_id = $%d AND video_id = $%d",
			strings.Join(sets, ", "), len(args)-1, len(args))

		res, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, apperrors.DatabaseError("save", fmt.Errorf("updating watch state: %w", err))
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return nil, apperrors.DatabaseError("save", ErrStateNotFound)
		}
	}

	state, err := s.find(ctx, userID, videoID)
	if err != nil {
		return nil, apperrors.DatabaseError("save", err)
	}
	return state, nil
}

func (s *PostgresStore) find(ctx context.Context, userID, videoID string) (*models.WatchState, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, uuid, user_id, video_id, intervals, cursor_location, progress, duration, created_at, updated_at
		FROM watch_states
		WHERE user_id = $1 AND video_id = $2
	`, userID, videoID)

	var state models.WatchState
	err := row.Scan(&state.ID, &state.UUID, &state.UserID, &state.VideoID, &state.Intervals,
		&state.CursorLocation, &state.Progress, &state.Duration, &state.CreatedAt, &state.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting watch state: %w", err)
	}
	return &state, nil
}
