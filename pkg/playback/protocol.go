// Package playback holds the client side of the resume protocol: the wire
// types shared with the server, the continuity tracker that turns playback
// positions into watched segments, and the HTTP client that pushes them.
package playback

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/killallgit/resume-api/pkg/intervals"
)

// VideoResponse is the body of GET /video
type VideoResponse struct {
	URL            string               `json:"url" example:"http://commondatastorage.googleapis.com/gtv-videos-bucket/sample/Sintel.mp4"`
	CursorLocation float64              `json:"cursor_location" example:"100"`
	Progress       float64              `json:"progress" example:"11.26"`
	Intervals      []intervals.Interval `json:"intervals"`
	Duration       float64              `json:"duration" example:"888"`
}

// SyncRequest is the body of POST /progressionSync
type SyncRequest struct {
	VideoName      string   `json:"videoName" example:"Sintel-blender-demo"`
	UserID         string   `json:"userId" example:"user-123"`
	Gaps           Gaps     `json:"gaps" swaggertype:"object"`
	CursorLocation *float64 `json:"cursor_location,omitempty" example:"100"`
}

// SyncResponse is the body returned by a successful sync
type SyncResponse struct {
	Success        bool    `json:"success" example:"true"`
	Progress       float64 `json:"progress" example:"11.26"`
	CursorLocation float64 `json:"cursor_location" example:"100"`
}

// Gaps maps a segment start (as a JSON object key) to its end. The end may be
// a number, a numeric string or a one element array holding either.
type Gaps map[string]any

// GapsFrom encodes segments in the Gaps wire form
func GapsFrom(segments ...intervals.Interval) Gaps {
	g := make(Gaps, len(segments))
	for _, s := range segments {
		g[strconv.FormatFloat(s.Start, 'f', -1, 64)] = s.End
	}
	return g
}

// Segments decodes the valid entries, sorted by start. Malformed entries are
// skipped; the second return value counts them.
func (g Gaps) Segments() ([]intervals.Interval, int) {
	out := make([]intervals.Interval, 0, len(g))
	dropped := 0
	for key, value := range g {
		start, ok := parseNumber(key)
		if !ok {
			dropped++
			continue
		}
		end, ok := parseEnd(value)
		if !ok {
			dropped++
			continue
		}
		iv := intervals.Interval{Start: start, End: end}
		if !iv.Valid() {
			dropped++
			continue
		}
		out = append(out, iv)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start == out[j].Start {
			return out[i].End < out[j].End
		}
		return out[i].Start < out[j].Start
	})
	return out, dropped
}

func parseEnd(v any) (float64, bool) {
	switch val := v.(type) {
	case []any:
		if len(val) != 1 {
			return 0, false
		}
		if _, nested := val[0].([]any); nested {
			return 0, false
		}
		return parseEnd(val[0])
	case float64:
		return val, !math.IsNaN(val) && !math.IsInf(val, 0)
	case int:
		return float64(val), true
	case json.Number:
		return parseNumber(val.String())
	case string:
		return parseNumber(val)
	default:
		return 0, false
	}
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
