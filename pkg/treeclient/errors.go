package treeclient

import (
	"fmt"
	"net/http"

	"github.com/marmos91/dittoview/pkg/tree"
)

// StatusError reports a non-success HTTP status from the backend.
type StatusError struct {
	// Op is the client operation that failed (get_item, probe, ...)
	Op string

	// StatusCode is the HTTP status returned by the backend
	StatusCode int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
}

// Is maps 404/410 to tree.ErrNotFound and everything else to
// tree.ErrUnavailable.
func (e *StatusError) Is(target error) bool {
	switch target {
	case tree.ErrNotFound:
		return e.StatusCode == http.StatusNotFound || e.StatusCode == http.StatusGone
	case tree.ErrUnavailable:
		return e.StatusCode != http.StatusNotFound && e.StatusCode != http.StatusGone
	}
	return false
}
