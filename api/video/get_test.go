package video

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/resume-api/api/types"
	"github.com/killallgit/resume-api/internal/models"
	"github.com/killallgit/resume-api/internal/services/progress"
	"github.com/killallgit/resume-api/internal/services/videos"
	apperrors "github.com/killallgit/resume-api/pkg/errors"
	"github.com/killallgit/resume-api/pkg/intervals"
	"github.com/killallgit/resume-api/pkg/playback"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

// MockProgressService is a mock implementation of progress.Service
type MockProgressService struct {
	mock.Mock
}

func (m *MockProgressService) Get(ctx context.Context, userID, videoName string) (*progress.View, error) {
	args := m.Called(ctx, userID, videoName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*progress.View), args.Error(1)
}

func (m *MockProgressService) Sync(ctx context.Context, input progress.SyncInput) (*progress.SyncResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*progress.SyncResult), args.Error(1)
}

func setupRouter(svc progress.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterRoutes(router, &types.Dependencies{ProgressService: svc})
	return router
}

func TestGet(t *testing.T) {
	sintel := videos.Video{Name: "Sintel-blender-demo", URL: "http://example.com/Sintel.mp4", Duration: 888}

	saved := models.NewWatchState("u1", sintel.Name, 888)
	saved.CursorLocation = 100
	saved.Progress = 11.26
	saved.Intervals = datatypes.JSONSlice[intervals.Interval]{{Start: 0, End: 100}}

	tests := []struct {
		name           string
		query          string
		setupMock      func(m *MockProgressService)
		expectedStatus int
		validate       func(t *testing.T, body []byte)
	}{
		{
			name:  "fresh state",
			query: "?videoName=Sintel-blender-demo",
			setupMock: func(m *MockProgressService) {
				m.On("Get", mock.Anything, "", "Sintel-blender-demo").
					Return(&progress.View{Video: sintel, State: models.NewWatchState("anonymous", sintel.Name, 888)}, nil)
			},
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, body []byte) {
				assert.JSONEq(t, `{"url":"http://example.com/Sintel.mp4","cursor_location":0,"progress":0,"intervals":[],"duration":888}`, string(body))
			},
		},
		{
			name:  "saved state",
			query: "?videoName=Sintel-blender-demo&userId=u1",
			setupMock: func(m *MockProgressService) {
				m.On("Get", mock.Anything, "u1", "Sintel-blender-demo").
					Return(&progress.View{Video: sintel, State: saved}, nil)
			},
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, body []byte) {
				var resp playback.VideoResponse
				require.NoError(t, json.Unmarshal(body, &resp))
				assert.Equal(t, 100.0, resp.CursorLocation)
				assert.Equal(t, 11.26, resp.Progress)
				assert.Equal(t, []intervals.Interval{{Start: 0, End: 100}}, resp.Intervals)
			},
		},
		{
			name:  "unknown video",
			query: "?videoName=nope&userId=u1",
			setupMock: func(m *MockProgressService) {
				m.On("Get", mock.Anything, "u1", "nope").
					Return(nil, apperrors.NotFound("video", "nope").WithCause(videos.ErrVideoNotFound))
			},
			expectedStatus: http.StatusNotFound,
			validate: func(t *testing.T, body []byte) {
				var resp types.ErrorResponse
				require.NoError(t, json.Unmarshal(body, &resp))
				assert.Equal(t, "video not found", resp.Message)
				assert.Equal(t, "NOT_FOUND", resp.Error)
			},
		},
		{
			name:  "storage failure",
			query: "?videoName=Sintel-blender-demo&userId=u1",
			setupMock: func(m *MockProgressService) {
				m.On("Get", mock.Anything, "u1", "Sintel-blender-demo").
					Return(nil, apperrors.DatabaseError("get_or_create", errors.New("database is locked")))
			},
			expectedStatus: http.StatusInternalServerError,
			validate: func(t *testing.T, body []byte) {
				assert.NotContains(t, string(body), "locked")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockProgressService)
			tt.setupMock(svc)
			router := setupRouter(svc)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/video"+tt.query, nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			tt.validate(t, w.Body.Bytes())
			svc.AssertExpectations(t)
		})
	}
}
