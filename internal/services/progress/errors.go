package progress

import "errors"

var (
	// ErrStateNotFound is returned by Save when the pair has no record
	ErrStateNotFound = errors.New("watch state not found")
)
