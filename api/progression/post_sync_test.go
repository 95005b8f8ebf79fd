package progression

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/resume-api/api/types"
	"github.com/killallgit/resume-api/internal/database"
	"github.com/killallgit/resume-api/internal/models"
	"github.com/killallgit/resume-api/internal/services/progress"
	"github.com/killallgit/resume-api/internal/services/videos"
	"github.com/killallgit/resume-api/pkg/config"
	apperrors "github.com/killallgit/resume-api/pkg/errors"
	"github.com/killallgit/resume-api/pkg/intervals"
	"github.com/killallgit/resume-api/pkg/playback"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type testEnv struct {
	router *gin.Engine
	store  progress.Store
	logs   *observer.ObservedLogs
}

func setupTestEnv(t *testing.T) *testEnv {
	gin.SetMode(gin.TestMode)

	db, err := database.Initialize(":memory:", database.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.AutoMigrate(models.AllModels()...))

	store := progress.NewRepository(db.DB)
	registry := videos.NewRegistry([]config.VideoConfig{
		{Name: "Sintel-blender-demo", URL: "http://example.com/Sintel.mp4", Duration: 888},
	})

	core, logs := observer.New(zap.DebugLevel)
	router := gin.New()
	RegisterRoutes(router, &types.Dependencies{
		DB:              db,
		ProgressService: progress.NewService(store, registry),
		Logger:          zap.New(core).Sugar(),
	})
	return &testEnv{router: router, store: store, logs: logs}
}

func (e *testEnv) post(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/progressionSync", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	e.router.ServeHTTP(w, req)
	return w
}

func TestPostSync(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedResp   *playback.SyncResponse
	}{
		{
			name:           "first sync",
			body:           `{"videoName":"Sintel-blender-demo","userId":"u1","gaps":{"0":[100]},"cursor_location":100}`,
			expectedStatus: http.StatusOK,
			expectedResp:   &playback.SyncResponse{Success: true, Progress: 11.26, CursorLocation: 100},
		},
		{
			name:           "plain number gap",
			body:           `{"videoName":"Sintel-blender-demo","userId":"u2","gaps":{"0":100},"cursor_location":100}`,
			expectedStatus: http.StatusOK,
			expectedResp:   &playback.SyncResponse{Success: true, Progress: 11.26, CursorLocation: 100},
		},
		{
			name:           "missing user",
			body:           `{"videoName":"Sintel-blender-demo","gaps":{"0":[100]}}`,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "unknown video",
			body:           `{"videoName":"nope","userId":"u1","gaps":{}}`,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "unparseable body",
			body:           `{"videoName":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "gaps of the wrong type",
			body:           `{"videoName":"Sintel-blender-demo","userId":"u1","gaps":[1,2]}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnv(t)
			w := env.post(t, tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedResp != nil {
				var resp playback.SyncResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, *tt.expectedResp, resp)
			}
		})
	}
}

func TestPostSync_MalformedGapsAreNotPersisted(t *testing.T) {
	env := setupTestEnv(t)

	w := env.post(t, `{"videoName":"Sintel-blender-demo","userId":"u1","gaps":{"abc":"xyz","10":"5","200":[250]},"cursor_location":250}`)
	require.Equal(t, http.StatusOK, w.Code)

	state, err := env.store.GetOrCreate(context.Background(), "u1", "Sintel-blender-demo", 888)
	require.NoError(t, err)
	assert.Equal(t, []intervals.Interval{{Start: 200, End: 250}}, state.WatchedIntervals())
	assert.Equal(t, 250.0, state.CursorLocation)

	entries := env.logs.FilterMessage("ignoring malformed gaps").All()
	require.Len(t, entries, 1)
	logged := entries[0].ContextMap()["error"]
	assert.Equal(t, apperrors.ValidationError("gaps", "2 malformed segments").Error(), logged)
}

func TestPostSync_LogsErrorCode(t *testing.T) {
	env := setupTestEnv(t)

	w := env.post(t, `{"videoName":"unknown","userId":"u1","gaps":{},"cursor_location":0}`)
	require.Equal(t, http.StatusNotFound, w.Code)

	entries := env.logs.FilterMessage("progression sync failed").All()
	require.Len(t, entries, 1)
	assert.EqualValues(t, apperrors.ErrCodeNotFound, entries[0].ContextMap()["code"])
}

func TestPostSync_MergesAcrossPushes(t *testing.T) {
	env := setupTestEnv(t)

	require.Equal(t, http.StatusOK, env.post(t, `{"videoName":"Sintel-blender-demo","userId":"u1","gaps":{"0":[50]},"cursor_location":70}`).Code)
	w := env.post(t, `{"videoName":"Sintel-blender-demo","userId":"u1","gaps":{"70":[120]},"cursor_location":120}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp playback.SyncResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 13.51, resp.Progress)

	state, err := env.store.GetOrCreate(context.Background(), "u1", "Sintel-blender-demo", 888)
	require.NoError(t, err)
	assert.Equal(t, []intervals.Interval{{Start: 0, End: 120}}, state.WatchedIntervals())
}

func TestPostSync_NoCursorKeepsStoredCursor(t *testing.T) {
	env := setupTestEnv(t)

	require.Equal(t, http.StatusOK, env.post(t, `{"videoName":"Sintel-blender-demo","userId":"u1","gaps":{},"cursor_location":42}`).Code)
	w := env.post(t, `{"videoName":"Sintel-blender-demo","userId":"u1","gaps":{"0":[10]}}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp playback.SyncResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 42.0, resp.CursorLocation)
}
