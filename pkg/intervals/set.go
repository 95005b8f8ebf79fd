package intervals

import "sync"

// Set is a merged, sorted collection of intervals with a fixed gap tolerance.
// It is safe for concurrent use.
type Set struct {
	mu           sync.RWMutex
	items        []Interval
	gapTolerance float64
}

// NewSet creates an empty set coalescing ranges up to gapTolerance apart.
func NewSet(gapTolerance float64) *Set {
	return &Set{items: []Interval{}, gapTolerance: gapTolerance}
}

// Add merges the given intervals into the set.
func (s *Set) Add(in ...Interval) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = Merge(s.items, in, s.gapTolerance)
}

// Replace discards the current contents and merges in.
func (s *Set) Replace(in []Interval) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = Merge(nil, in, s.gapTolerance)
}

// Intervals returns a copy of the merged intervals.
func (s *Set) Intervals() []Interval {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Interval, len(s.items))
	copy(out, s.items)
	return out
}

// With returns the set's intervals merged with extra, leaving the set unchanged.
func (s *Set) With(extra ...Interval) []Interval {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Merge(s.items, extra, s.gapTolerance)
}

// Last returns the interval with the greatest start, if any.
func (s *Set) Last() (Interval, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.items) == 0 {
		return Interval{}, false
	}
	return s.items[len(s.items)-1], true
}

// Len returns the number of merged intervals.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Covered returns the total watched duration.
func (s *Set) Covered() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Covered(s.items)
}

// Percent returns the watched percentage of a video of the given duration.
func (s *Set) Percent(duration float64) float64 {
	return Percent(s.Covered(), duration)
}
