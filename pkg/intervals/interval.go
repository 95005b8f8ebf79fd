// Package intervals implements the watched-range bookkeeping shared by the
// server (persisted progress) and the playback client (live overlay).
package intervals

import (
	"math"
	"sort"
)

// DefaultGapTolerance is the largest gap, in seconds, between two watched
// ranges that still causes them to be coalesced.
const DefaultGapTolerance = 30.0

// Interval is a contiguous range [Start, End) of video time, in seconds.
type Interval struct {
	Start float64 `json:"start" example:"0"`
	End   float64 `json:"end" example:"100"`
}

// Valid reports whether the interval can take part in a merge.
func (i Interval) Valid() bool {
	if math.IsNaN(i.Start) || math.IsNaN(i.End) || math.IsInf(i.Start, 0) || math.IsInf(i.End, 0) {
		return false
	}
	return i.Start >= 0 && i.End > i.Start
}

// Length returns End-Start, or zero for an invalid interval.
func (i Interval) Length() float64 {
	if !i.Valid() {
		return 0
	}
	return i.End - i.Start
}

// Filter returns the valid intervals of in, preserving order.
func Filter(in []Interval) []Interval {
	out := make([]Interval, 0, len(in))
	for _, iv := range in {
		if iv.Valid() {
			out = append(out, iv)
		}
	}
	return out
}

// Merge combines existing and incoming into a sorted list in which no two
// intervals are within gapTolerance of each other. Malformed intervals are
// dropped first. Neither input slice is modified.
func Merge(existing, incoming []Interval, gapTolerance float64) []Interval {
	if gapTolerance < 0 || math.IsNaN(gapTolerance) {
		gapTolerance = 0
	}

	all := Filter(append(append(make([]Interval, 0, len(existing)+len(incoming)), existing...), incoming...))
	if len(all) == 0 {
		return []Interval{}
	}

	sort.Slice(all, func(a, b int) bool {
		if all[a].Start == all[b].Start {
			return all[a].End < all[b].End
		}
		return all[a].Start < all[b].Start
	})

	merged := make([]Interval, 0, len(all))
	acc := all[0]
	for _, next := range all[1:] {
		if next.Start-acc.End <= gapTolerance {
			acc.End = math.Max(acc.End, next.End)
			continue
		}
		merged = append(merged, acc)
		acc = next
	}
	return append(merged, acc)
}
