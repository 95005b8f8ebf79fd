package videos

import (
	"errors"
	"sort"

	"github.com/killallgit/resume-api/pkg/config"
)

// ErrVideoNotFound is returned for names missing from the registry
var ErrVideoNotFound = errors.New("video not found")

// Video is a playable entry of the static registry
type Video struct {
	Name     string
	URL      string
	Duration float64 // Seconds, the reference used for progress
}

// Registry resolves video names to playable URLs and reference durations
type Registry interface {
	Lookup(name string) (Video, error)
	Names() []string
}

type registry struct {
	videos map[string]Video
}

// NewRegistry builds an immutable registry from configuration entries
func NewRegistry(entries []config.VideoConfig) Registry {
	videos := make(map[string]Video, len(entries))
	for _, e := range entries {
		videos[e.Name] = Video{Name: e.Name, URL: e.URL, Duration: e.Duration}
	}
	return &registry{videos: videos}
}

// Lookup returns the video registered under name
func (r *registry) Lookup(name string) (Video, error) {
	if name == "" {
		return Video{}, ErrVideoNotFound
	}
	v, ok := r.videos[name]
	if !ok {
		return Video{}, ErrVideoNotFound
	}
	return v, nil
}

// Names returns the registered names in sorted order
func (r *registry) Names() []string {
	names := make([]string, 0, len(r.videos))
	for name := range r.videos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
