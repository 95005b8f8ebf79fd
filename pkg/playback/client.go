package playback

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	apperrors "github.com/killallgit/resume-api/pkg/errors"
	"github.com/killallgit/resume-api/pkg/intervals"
	"github.com/killallgit/resume-api/pkg/logger"
	"go.uber.org/zap"
)

const serviceName = "resume-api"

// StatusError is returned for non-2xx responses
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server returned status %d", e.StatusCode)
}

// Client talks to the resume API
type Client struct {
	httpClient    *http.Client
	baseURL       string
	retryAttempts int
	retryDelay    time.Duration
	timeout       time.Duration
	log           *zap.SugaredLogger
}

// Config holds configuration for the playback client
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	RetryAttempts int           // total attempts per sync, at least 1
	RetryDelay    time.Duration // first backoff, doubled per retry
	Logger        *zap.SugaredLogger
	HTTPClient    *http.Client
}

// NewClient creates a new playback client
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:3000"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RetryAttempts < 1 {
		cfg.RetryAttempts = 1
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		httpClient:    httpClient,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		retryAttempts: cfg.RetryAttempts,
		retryDelay:    cfg.RetryDelay,
		timeout:       cfg.Timeout,
		log:           logger.OrNop(cfg.Logger),
	}
}

// Detach returns a context that outlives ctx's cancellation, bounded by the
// worst case of one Sync: every attempt timing out plus every backoff.
func (c *Client) Detach(ctx context.Context) (context.Context, context.CancelFunc) {
	budget := c.timeout * time.Duration(c.retryAttempts)
	for i, delay := 1, c.retryDelay; i < c.retryAttempts; i, delay = i+1, delay*2 {
		budget += delay
	}
	return context.WithTimeout(context.WithoutCancel(ctx), budget)
}

// FetchVideo loads the playable URL and resume state of a video
func (c *Client) FetchVideo(ctx context.Context, videoName, userID string) (*VideoResponse, error) {
	params := url.Values{}
	params.Set("videoName", videoName)
	if userID != "" {
		params.Set("userId", userID)
	}

	var out VideoResponse
	if err := c.do(ctx, http.MethodGet, "/video?"+params.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Sync pushes watched segments. Transport failures and 5xx responses are
// retried with exponential backoff; other statuses fail immediately.
func (c *Client) Sync(ctx context.Context, req SyncRequest) (*SyncResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding sync request: %w", err)
	}

	delay := c.retryDelay
	var lastErr error
	for attempt := 1; attempt <= c.retryAttempts; attempt++ {
		var out SyncResponse
		lastErr = c.do(ctx, http.MethodPost, "/progressionSync", body, &out)
		if lastErr == nil {
			return &out, nil
		}
		if !retryable(lastErr) || attempt == c.retryAttempts {
			break
		}

		c.log.Debugw("sync attempt failed, retrying", "attempt", attempt, "delay", delay, "error", lastErr)
		select {
		case <-ctx.Done():
			return nil, apperrors.NetworkError(serviceName, ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}

	var statusErr *StatusError
	if errors.As(lastErr, &statusErr) && statusErr.StatusCode < 500 {
		return nil, lastErr
	}
	return nil, apperrors.NetworkError(serviceName, lastErr)
}

func retryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, result interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&errResp)
		return &StatusError{StatusCode: resp.StatusCode, Message: errResp.Message}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// AsyncPusher sends each push on its own goroutine so the tick path never
// waits on the network. Failed pushes are logged and dropped.
type AsyncPusher struct {
	client    *Client
	videoName string
	userID    string
	log       *zap.SugaredLogger
	wg        sync.WaitGroup

	mu   sync.Mutex
	last *SyncResponse
}

// NewAsyncPusher creates a pusher bound to one video and user
func NewAsyncPusher(client *Client, videoName, userID string, log *zap.SugaredLogger) *AsyncPusher {
	return &AsyncPusher{
		client:    client,
		videoName: videoName,
		userID:    userID,
		log:       logger.OrNop(log),
	}
}

// Push implements Pusher
func (p *AsyncPusher) Push(ctx context.Context, segments []intervals.Interval, cursor float64) {
	req := SyncRequest{
		VideoName:      p.videoName,
		UserID:         p.userID,
		Gaps:           GapsFrom(segments...),
		CursorLocation: &cursor,
	}

	// The push must survive the end of the session that produced it
	pushCtx, cancel := p.client.Detach(ctx)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer cancel()
		resp, err := p.client.Sync(pushCtx, req)
		if err != nil {
			p.log.Warnw("sync push dropped",
				"video", p.videoName,
				"user_id", p.userID,
				"segments", len(segments),
				"error", err,
			)
			return
		}
		p.mu.Lock()
		p.last = resp
		p.mu.Unlock()
	}()
}

// Wait blocks until every in-flight push has finished
func (p *AsyncPusher) Wait() {
	p.wg.Wait()
}

// Last returns the most recent successful sync response, if any
func (p *AsyncPusher) Last() *SyncResponse {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}
