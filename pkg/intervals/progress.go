package intervals

import "math"

// Covered returns the total duration spanned by the valid intervals.
// Callers are expected to pass a merged list; overlapping input is counted twice.
func Covered(in []Interval) float64 {
	total := 0.0
	for _, iv := range in {
		total += iv.Length()
	}
	return total
}

// Percent converts a covered duration into a completion percentage in
// [0, 100], rounded to two decimals. A non-positive total is treated as 1.
func Percent(covered, total float64) float64 {
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		total = 1
	}
	if covered <= 0 || math.IsNaN(covered) {
		return 0
	}

	pct := Round2(covered / total * 100)
	return math.Min(100, pct)
}

// Round2 rounds v to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
