package playback

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/killallgit/resume-api/pkg/intervals"
	"github.com/killallgit/resume-api/pkg/logger"
	"go.uber.org/zap"
)

// Pusher delivers closed segments and the cursor to the server
type Pusher interface {
	Push(ctx context.Context, segments []intervals.Interval, cursor float64)
}

// PusherFunc adapts a function to Pusher
type PusherFunc func(ctx context.Context, segments []intervals.Interval, cursor float64)

// Push calls f
func (f PusherFunc) Push(ctx context.Context, segments []intervals.Interval, cursor float64) {
	f(ctx, segments, cursor)
}

// Player is sampled by Run on every tick
type Player interface {
	// Position returns the playback position and whether playback is advancing
	Position() (t float64, playing bool)
	Rate() float64
}

// Tracker classifies sampled playback positions as continuous viewing or
// jumps. Continuous samples extend the current segment in place; a jump
// closes the segment, pushes it and starts a new one at the new position.
type Tracker struct {
	mu        sync.Mutex
	pusher    Pusher
	log       *zap.SugaredLogger
	rate      float64
	started   bool
	last      float64
	cursor    float64
	current   intervals.Interval
	confirmed *intervals.Set
}

// TrackerOption configures a Tracker
type TrackerOption func(*Tracker)

// WithRate sets the initial playback rate
func WithRate(rate float64) TrackerOption {
	return func(t *Tracker) {
		if rate > 0 {
			t.rate = rate
		}
	}
}

// WithTrackerGapTolerance sets the gap tolerance of the local overlay
func WithTrackerGapTolerance(gap float64) TrackerOption {
	return func(t *Tracker) {
		t.confirmed = intervals.NewSet(gap)
	}
}

// WithTrackerLogger injects a logger
func WithTrackerLogger(l *zap.SugaredLogger) TrackerOption {
	return func(t *Tracker) {
		t.log = logger.OrNop(l)
	}
}

// NewTracker creates a tracker pushing through p
func NewTracker(p Pusher, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		pusher:    p,
		log:       logger.Nop(),
		rate:      1,
		confirmed: intervals.NewSet(intervals.DefaultGapTolerance),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Seed loads the server state returned by the read path. The last stored
// interval becomes the current segment when the cursor lies inside it.
func (t *Tracker) Seed(view *VideoResponse) {
	if view == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.confirmed.Replace(view.Intervals)
	t.cursor = math.Max(0, view.CursorLocation)
	t.last = t.cursor
	t.started = true
	t.current = intervals.Interval{Start: t.cursor, End: t.cursor}

	if last, ok := t.confirmed.Last(); ok && last.Start <= t.cursor && t.cursor <= last.End {
		t.current = intervals.Interval{Start: last.Start, End: t.cursor}
	}
}

// SetRate updates the expected position advance per tick. Non-positive
// rates are ignored.
func (t *Tracker) SetRate(rate float64) {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return
	}
	t.mu.Lock()
	t.rate = rate
	t.mu.Unlock()
}

// OnTick feeds the playback position observed at one sampling tick
func (t *Tracker) OnTick(ctx context.Context, pos float64) {
	if math.IsNaN(pos) || math.IsInf(pos, 0) || pos < 0 {
		return
	}

	t.mu.Lock()
	t.cursor = pos

	if !t.started {
		t.started = true
		t.last = pos
		t.current = intervals.Interval{Start: pos, End: pos}
		t.mu.Unlock()
		return
	}

	delta := pos - t.last
	t.last = pos

	if math.Round(delta) <= math.Round(t.rate) && pos >= t.current.Start {
		t.current.End = math.Max(t.current.End, pos)
		t.mu.Unlock()
		return
	}

	closed := t.current
	t.current = intervals.Interval{Start: pos, End: pos}
	var segments []intervals.Interval
	if closed.Length() > 0 {
		segments = []intervals.Interval{closed}
		t.confirmed.Add(closed)
	}
	t.mu.Unlock()

	t.log.Debugw("playback jump", "from", closed.End, "to", pos, "delta", delta)
	if len(segments) > 0 {
		t.pusher.Push(ctx, segments, pos)
	}
}

// OnSessionEnd flushes the current segment and the final cursor. It always
// pushes so the cursor is saved even when nothing new was watched.
func (t *Tracker) OnSessionEnd(ctx context.Context, pos float64) {
	t.mu.Lock()
	if !math.IsNaN(pos) && !math.IsInf(pos, 0) && pos >= 0 {
		t.cursor = pos
	}
	cursor := t.cursor

	var segments []intervals.Interval
	if t.current.Length() > 0 {
		segments = []intervals.Interval{t.current}
		t.confirmed.Add(t.current)
	}
	t.current = intervals.Interval{Start: cursor, End: cursor}
	t.last = cursor
	t.mu.Unlock()

	t.log.Debugw("session end flush", "segments", len(segments), "cursor", cursor)
	t.pusher.Push(ctx, segments, cursor)
}

// Overlay returns the confirmed intervals merged with the live segment
func (t *Tracker) Overlay() []intervals.Interval {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current.Length() > 0 {
		return t.confirmed.With(t.current)
	}
	return t.confirmed.Intervals()
}

// Percent is the watched percentage of the overlay against duration
func (t *Tracker) Percent(duration float64) float64 {
	return intervals.Percent(intervals.Covered(t.Overlay()), duration)
}

// Cursor returns the last observed position
func (t *Tracker) Cursor() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cursor
}

// Run samples player on every tick until ctx is done, then flushes the
// session. Ticks while the player is paused are skipped.
func (t *Tracker) Run(ctx context.Context, ticks <-chan time.Time, player Player) {
	for {
		select {
		case <-ctx.Done():
			pos, _ := player.Position()
			t.OnSessionEnd(context.WithoutCancel(ctx), pos)
			return
		case _, ok := <-ticks:
			if !ok {
				pos, _ := player.Position()
				t.OnSessionEnd(ctx, pos)
				return
			}
			pos, playing := player.Position()
			if !playing {
				continue
			}
			t.SetRate(player.Rate())
			t.OnTick(ctx, pos)
		}
	}
}
