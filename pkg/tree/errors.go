package tree

import "errors"

var (
	// ErrNotFound indicates the requested item or document does not exist
	// (or no longer exists) on the backend.
	ErrNotFound = errors.New("tree: item not found")

	// ErrUnavailable indicates the backend could not be reached or returned
	// an unexpected response. Callers retry on the next natural trigger.
	ErrUnavailable = errors.New("tree: backend unavailable")
)
