package playback

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/killallgit/resume-api/pkg/errors"
	"github.com/killallgit/resume-api/pkg/intervals"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return NewClient(Config{
		BaseURL:       url,
		Timeout:       time.Second,
		RetryAttempts: 3,
		RetryDelay:    time.Millisecond,
	})
}

func TestClient_FetchVideo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/video", r.URL.Path)
		assert.Equal(t, "Sintel-blender-demo", r.URL.Query().Get("videoName"))
		assert.Equal(t, "u1", r.URL.Query().Get("userId"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"url":"http://example.com/s.mp4","cursor_location":100,"progress":11.26,"intervals":[{"start":0,"end":100}],"duration":888}`))
	}))
	defer server.Close()

	view, err := newTestClient(server.URL).FetchVideo(context.Background(), "Sintel-blender-demo", "u1")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/s.mp4", view.URL)
	assert.Equal(t, 100.0, view.CursorLocation)
	assert.Equal(t, 11.26, view.Progress)
	assert.Equal(t, []intervals.Interval{{Start: 0, End: 100}}, view.Intervals)
	assert.Equal(t, 888.0, view.Duration)
}

func TestClient_FetchVideo_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status":404,"message":"Video not found"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchVideo(context.Background(), "nope", "")
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, "Video not found", statusErr.Message)
}

func TestClient_Sync(t *testing.T) {
	tests := []struct {
		name         string
		statuses     []int
		wantErr      bool
		wantCode     apperrors.ErrorCode
		wantAttempts int32
	}{
		{name: "success first try", statuses: []int{200}, wantAttempts: 1},
		{name: "retries server errors", statuses: []int{503, 500, 200}, wantAttempts: 3},
		{name: "gives up after max attempts", statuses: []int{500, 500, 500, 500}, wantErr: true, wantCode: apperrors.ErrCodeExternalService, wantAttempts: 3},
		{name: "client errors are not retried", statuses: []int{404, 200}, wantErr: true, wantCode: apperrors.ErrCodeInternal, wantAttempts: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempts int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := atomic.AddInt32(&attempts, 1)
				assert.Equal(t, "/progressionSync", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				status := tt.statuses[n-1]
				w.WriteHeader(status)
				if status == http.StatusOK {
					_, _ = w.Write([]byte(`{"success":true,"progress":11.26,"cursor_location":100}`))
				}
			}))
			defer server.Close()

			cursor := 100.0
			resp, err := newTestClient(server.URL).Sync(context.Background(), SyncRequest{
				VideoName:      "Sintel-blender-demo",
				UserID:         "u1",
				Gaps:           GapsFrom(intervals.Interval{Start: 0, End: 100}),
				CursorLocation: &cursor,
			})

			assert.Equal(t, tt.wantAttempts, atomic.LoadInt32(&attempts))
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, apperrors.GetCode(err))
				return
			}
			require.NoError(t, err)
			assert.True(t, resp.Success)
			assert.Equal(t, 11.26, resp.Progress)
		})
	}
}

func TestClient_Sync_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestClient(url).Sync(context.Background(), SyncRequest{VideoName: "v", UserID: "u"})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeExternalService))
}

func TestAsyncPusher(t *testing.T) {
	received := make(chan SyncRequest, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req SyncRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		received <- req
		_, _ = w.Write([]byte(`{"success":true,"progress":11.26,"cursor_location":100}`))
	}))
	defer server.Close()

	pusher := NewAsyncPusher(newTestClient(server.URL), "Sintel-blender-demo", "u1", nil)
	pusher.Push(context.Background(), []intervals.Interval{{Start: 0, End: 100}}, 100)
	pusher.Wait()

	req := <-received
	assert.Equal(t, "Sintel-blender-demo", req.VideoName)
	assert.Equal(t, "u1", req.UserID)
	segments, dropped := req.Gaps.Segments()
	assert.Zero(t, dropped)
	assert.Equal(t, []intervals.Interval{{Start: 0, End: 100}}, segments)
	require.NotNil(t, req.CursorLocation)
	assert.Equal(t, 100.0, *req.CursorLocation)

	require.NotNil(t, pusher.Last())
	assert.Equal(t, 11.26, pusher.Last().Progress)
}

func TestAsyncPusher_DropsFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	pusher := NewAsyncPusher(newTestClient(server.URL), "v", "u", nil)
	pusher.Push(context.Background(), nil, 5)
	pusher.Wait()

	assert.Nil(t, pusher.Last())
}

func TestAsyncPusher_OutlivesSessionContext(t *testing.T) {
	var mu sync.Mutex
	var completed [][]intervals.Interval
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req SyncRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		select {
		case <-time.After(100 * time.Millisecond):
		case <-r.Context().Done():
			return
		}

		segments, _ := req.Gaps.Segments()
		mu.Lock()
		completed = append(completed, segments)
		mu.Unlock()
		_, _ = w.Write([]byte(`{"success":true,"progress":0.56,"cursor_location":300}`))
	}))
	defer server.Close()

	pusher := NewAsyncPusher(newTestClient(server.URL), "Sintel-blender-demo", "u1", nil)
	tr := NewTracker(pusher)

	ctx, cancel := context.WithCancel(context.Background())
	for _, pos := range []float64{0, 1, 2, 3, 4, 5, 300} {
		tr.OnTick(ctx, pos)
	}

	// The session ends while the jump push is still in flight
	time.Sleep(10 * time.Millisecond)
	cancel()
	pusher.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, completed, 1)
	assert.Equal(t, []intervals.Interval{{Start: 0, End: 5}}, completed[0])
	require.NotNil(t, pusher.Last())
	assert.Equal(t, 300.0, pusher.Last().CursorLocation)
}

func TestClient_Detach(t *testing.T) {
	client := NewClient(Config{Timeout: time.Second, RetryAttempts: 3, RetryDelay: 100 * time.Millisecond})

	parent, cancel := context.WithCancel(context.Background())
	ctx, release := client.Detach(parent)
	defer release()
	cancel()

	assert.NoError(t, ctx.Err())
	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(3*time.Second+300*time.Millisecond), deadline, 200*time.Millisecond)
}
