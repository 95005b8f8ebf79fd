package playback

import (
	"encoding/json"
	"testing"

	"github.com/killallgit/resume-api/pkg/intervals"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGaps_Segments(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		want        []intervals.Interval
		wantDropped int
	}{
		{
			name: "browser form wraps the end in an array",
			body: `{"0":[100]}`,
			want: []intervals.Interval{{Start: 0, End: 100}},
		},
		{
			name: "plain numbers and numeric strings",
			body: `{"200":"250","300":350,"12.5":40.25}`,
			want: []intervals.Interval{{Start: 12.5, End: 40.25}, {Start: 200, End: 250}, {Start: 300, End: 350}},
		},
		{
			name:        "malformed entries are dropped",
			body:        `{"abc":"xyz","10":"5","20":[1,2],"30":null,"40":{"end":50},"-5":3,"50":[[60]],"60":70}`,
			want:        []intervals.Interval{{Start: 60, End: 70}},
			wantDropped: 7,
		},
		{
			name: "empty object",
			body: `{}`,
			want: []intervals.Interval{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var g Gaps
			require.NoError(t, json.Unmarshal([]byte(tt.body), &g))

			got, dropped := g.Segments()
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantDropped, dropped)
		})
	}
}

func TestGaps_NilIsEmpty(t *testing.T) {
	var g Gaps
	got, dropped := g.Segments()
	assert.Empty(t, got)
	assert.Zero(t, dropped)
}

func TestGapsFrom(t *testing.T) {
	g := GapsFrom(intervals.Interval{Start: 0, End: 100}, intervals.Interval{Start: 12.5, End: 20})

	raw, err := json.Marshal(g)
	require.NoError(t, err)
	assert.JSONEq(t, `{"0":100,"12.5":20}`, string(raw))

	var decoded Gaps
	require.NoError(t, json.Unmarshal(raw, &decoded))
	got, _ := decoded.Segments()
	assert.Equal(t, []intervals.Interval{{Start: 0, End: 100}, {Start: 12.5, End: 20}}, got)
}

func TestSyncRequest_JSON(t *testing.T) {
	body := `{"videoName":"Sintel-blender-demo","userId":"u1","gaps":{"0":[100]},"cursor_location":100}`

	var req SyncRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	assert.Equal(t, "Sintel-blender-demo", req.VideoName)
	assert.Equal(t, "u1", req.UserID)
	require.NotNil(t, req.CursorLocation)
	assert.Equal(t, 100.0, *req.CursorLocation)

	t.Run("missing cursor stays nil", func(t *testing.T) {
		var req SyncRequest
		require.NoError(t, json.Unmarshal([]byte(`{"videoName":"v","userId":"u"}`), &req))
		assert.Nil(t, req.CursorLocation)
		assert.Nil(t, req.Gaps)
	})
}
