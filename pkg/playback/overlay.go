package playback

import (
	"fmt"
	"math"
	"strings"

	"github.com/killallgit/resume-api/pkg/intervals"
)

// Band is one watched range positioned on a progress bar, in percent of the
// video duration
type Band struct {
	Left  float64
	Width float64
}

// Bands positions watched intervals on a bar. A non-positive duration is
// treated as 1. Bands are clipped to the bar.
func Bands(ivs []intervals.Interval, duration float64) []Band {
	if duration <= 0 || math.IsNaN(duration) || math.IsInf(duration, 0) {
		duration = 1
	}

	bands := make([]Band, 0, len(ivs))
	for _, iv := range ivs {
		if !iv.Valid() || iv.Start >= duration {
			continue
		}
		end := math.Min(iv.End, duration)
		bands = append(bands, Band{
			Left:  iv.Start / duration * 100,
			Width: (end - iv.Start) / duration * 100,
		})
	}
	return bands
}

// Bar renders a text progress bar of the given width where watched cells
// are '#' and unwatched cells are '-'
func Bar(ivs []intervals.Interval, duration float64, width int) string {
	if width <= 0 {
		return ""
	}

	cells := make([]byte, width)
	for i := range cells {
		cells[i] = '-'
	}
	for _, b := range Bands(ivs, duration) {
		from := int(math.Floor(b.Left / 100 * float64(width)))
		to := int(math.Ceil((b.Left + b.Width) / 100 * float64(width)))
		if to > width {
			to = width
		}
		for i := from; i < to; i++ {
			cells[i] = '#'
		}
	}
	return "[" + string(cells) + "]"
}

// Describe lists the watched intervals one per line
func Describe(ivs []intervals.Interval) string {
	var sb strings.Builder
	for _, iv := range ivs {
		fmt.Fprintf(&sb, "From: %.2fs -> To: %.2fs\n", iv.Start, iv.End)
	}
	return sb.String()
}
