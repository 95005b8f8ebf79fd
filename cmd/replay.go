package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/killallgit/resume-api/pkg/intervals"
	"github.com/killallgit/resume-api/pkg/playback"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// replayCmd drives the playback tracker from a scripted list of positions
var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a scripted viewing session against a server",
	Long: `Replay a viewing session without a browser.

The script is a list of playback positions in seconds, one per tick,
separated by commas or newlines. An entry "rate:<n>" changes the playback
rate for the following ticks. The session resumes from the stored cursor,
syncs every jump and flushes on exit, then prints the watched bar.

Example:
  resume-api replay --positions 0,1,2,3,60,61,62
  resume-api replay --file session.txt --user u1 --tick 100ms`,
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().String("base-url", "", "server base URL (overrides config)")
	replayCmd.Flags().String("video", "", "video name (defaults to the first configured video)")
	replayCmd.Flags().String("user", "", "user id (overrides the user file)")
	replayCmd.Flags().String("user-file", "", "JSON file holding {\"uid\": ...} (overrides config)")
	replayCmd.Flags().String("positions", "", "comma separated playback positions")
	replayCmd.Flags().String("file", "", "file holding the playback script")
	replayCmd.Flags().Float64("rate", 1, "initial playback rate")
	replayCmd.Flags().Duration("tick", 0, "delay between samples (overrides config)")
	replayCmd.Flags().Int("width", 60, "width of the printed progress bar")
	replayCmd.Flags().Bool("async", false, "send syncs without waiting for each response")
}

// sample is one scripted tick
type sample struct {
	pos  float64
	rate float64
}

// parseScript reads positions and rate changes. Rate entries apply to every
// following sample.
func parseScript(script string, rate float64) ([]sample, error) {
	fields := strings.FieldsFunc(script, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r' || r == ' ' || r == '\t'
	})

	var samples []sample
	for _, f := range fields {
		if v, ok := strings.CutPrefix(f, "rate:"); ok {
			r, err := strconv.ParseFloat(v, 64)
			if err != nil || r <= 0 {
				return nil, fmt.Errorf("invalid rate %q", v)
			}
			rate = r
			continue
		}
		pos, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid position %q", f)
		}
		samples = append(samples, sample{pos: pos, rate: rate})
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("script has no positions")
	}
	return samples, nil
}

// scriptPlayer plays back samples, one per Position call
type scriptPlayer struct {
	mu      sync.Mutex
	samples []sample
	idx     int
	rate    float64
}

func (p *scriptPlayer) Position() (float64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.idx >= len(p.samples) {
		return p.samples[len(p.samples)-1].pos, false
	}
	s := p.samples[p.idx]
	p.idx++
	p.rate = s.rate
	return s.pos, true
}

func (p *scriptPlayer) Rate() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rate
}

// scriptTicks emits n ticks spaced by interval, then closes the channel
func scriptTicks(ctx context.Context, n int, interval time.Duration) <-chan time.Time {
	ticks := make(chan time.Time)
	go func() {
		defer close(ticks)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for i := 0; i < n; i++ {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				select {
				case ticks <- now:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ticks
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	flags := cmd.Flags()
	script, _ := flags.GetString("positions")
	if file, _ := flags.GetString("file"); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading script: %w", err)
		}
		script = string(data)
	}
	rate, _ := flags.GetFloat64("rate")
	samples, err := parseScript(script, rate)
	if err != nil {
		return err
	}

	videoName, _ := flags.GetString("video")
	if videoName == "" && len(cfg.Videos) > 0 {
		videoName = cfg.Videos[0].Name
	}

	userID, _ := flags.GetString("user")
	if userID == "" {
		userFile, _ := flags.GetString("user-file")
		if userFile == "" {
			userFile = cfg.Client.UserFile
		}
		if userID, err = playback.LoadUserID(userFile); err != nil {
			return err
		}
	}

	baseURL, _ := flags.GetString("base-url")
	if baseURL == "" {
		baseURL = cfg.Client.BaseURL
	}
	tick, _ := flags.GetDuration("tick")
	if tick <= 0 {
		tick = cfg.Client.TickInterval
	}
	if tick <= 0 {
		tick = time.Second
	}

	client := playback.NewClient(playback.Config{
		BaseURL:       baseURL,
		Timeout:       cfg.Client.Timeout,
		RetryAttempts: cfg.Client.RetryAttempts,
		RetryDelay:    cfg.Client.RetryDelay,
		Logger:        log.Named("client"),
	})

	ctx := cmd.Context()
	view, err := client.FetchVideo(ctx, videoName, userID)
	if err != nil {
		return fmt.Errorf("loading video %s: %w", videoName, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Video: %s (%s)\n", videoName, view.URL)
	fmt.Fprintf(out, "User: %s\n", userID)
	fmt.Fprintf(out, "Resuming at %.2fs, %.2f%% watched\n", view.CursorLocation, view.Progress)

	async, _ := flags.GetBool("async")
	var pusher playback.Pusher
	var asyncPusher *playback.AsyncPusher
	if async {
		asyncPusher = playback.NewAsyncPusher(client, videoName, userID, log.Named("sync"))
		pusher = asyncPusher
	} else {
		pusher = syncPusher(client, videoName, userID, log.Named("sync"))
	}

	tracker := playback.NewTracker(pusher,
		playback.WithRate(rate),
		playback.WithTrackerGapTolerance(cfg.Progress.GapTolerance),
		playback.WithTrackerLogger(log.Named("tracker")),
	)
	tracker.Seed(view)

	player := &scriptPlayer{samples: samples, rate: rate}
	tracker.Run(ctx, scriptTicks(ctx, len(samples), tick), player)
	if asyncPusher != nil {
		asyncPusher.Wait()
		if last := asyncPusher.Last(); last != nil {
			fmt.Fprintf(out, "Last sync: %.2f%% at %.2fs\n", last.Progress, last.CursorLocation)
		}
	}

	fmt.Fprintf(out, "Local:  %s %6.2f%%\n", playback.Bar(tracker.Overlay(), view.Duration, barWidth(cmd)), tracker.Percent(view.Duration))

	// Read back what the server kept
	final, err := client.FetchVideo(context.WithoutCancel(ctx), videoName, userID)
	if err != nil {
		return fmt.Errorf("reloading video %s: %w", videoName, err)
	}
	fmt.Fprintf(out, "Server: %s %6.2f%%\n", playback.Bar(final.Intervals, final.Duration, barWidth(cmd)), final.Progress)
	fmt.Fprint(out, playback.Describe(final.Intervals))
	fmt.Fprintf(out, "Cursor: %.2fs\n", final.CursorLocation)
	return nil
}

func barWidth(cmd *cobra.Command) int {
	w, _ := cmd.Flags().GetInt("width")
	return w
}

// syncPusher waits for each sync so later pushes see the earlier merge
func syncPusher(client *playback.Client, videoName, userID string, log *zap.SugaredLogger) playback.Pusher {
	return playback.PusherFunc(func(ctx context.Context, segments []intervals.Interval, cursor float64) {
		ctx, cancel := client.Detach(ctx)
		defer cancel()

		resp, err := client.Sync(ctx, playback.SyncRequest{
			VideoName:      videoName,
			UserID:         userID,
			Gaps:           playback.GapsFrom(segments...),
			CursorLocation: &cursor,
		})
		if err != nil {
			log.Warnw("sync push dropped", "video", videoName, "user_id", userID, "error", err)
			return
		}
		log.Debugw("synced", "progress", resp.Progress, "cursor", resp.CursorLocation)
	})
}
