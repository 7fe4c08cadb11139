package browser

import (
	"context"

	"github.com/marmos91/dittoview/pkg/tree"
)

// SessionID identifies one open-document session. Ids are allocated from a
// monotonically increasing counter and never reused.
type SessionID uint64

// Point is a scroll offset in engine coordinates.
type Point struct {
	X float64
	Y float64
}

// Backend is the request surface the controller needs from the tree
// backend. *treeclient.Client satisfies it.
type Backend interface {
	GetItem(ctx context.Context, id string) *tree.Item
	GetChildIDs(ctx context.Context, id string) []string
	GetBatch(ctx context.Context, ids []string) map[string]*tree.Item
	Search(ctx context.Context, query string) tree.SearchResponse
	Generation(ctx context.Context) (tree.Generation, error)
	ProbeModified(ctx context.Context, docURL string) (string, error)
}

// Engine is the rendering engine capability surface.
//
// Commands name the session they target; the engine must ignore commands
// for sessions it no longer knows. Events flow back through the EventSink
// registered with Subscribe.
type Engine interface {
	// Subscribe registers the receiver of page-change and layout-ready
	// events. Called once by New.
	Subscribe(sink EventSink)

	// Open loads url under session id.
	Open(ctx context.Context, id SessionID, url string) error

	// Close tears down a session.
	Close(id SessionID)

	// ScrollToPage scrolls to a 1-indexed page.
	ScrollToPage(id SessionID, page int)

	// Search runs a full-document text search and surfaces its results panel.
	Search(id SessionID, term string)

	// ZoomLevel returns the current zoom level, if the session has one.
	ZoomLevel(id SessionID) (float64, bool)

	// RequestZoom asks for a zoom level. The engine relays out the document
	// and signals layout-ready again once done.
	RequestZoom(id SessionID, level float64)

	// ScrollOffset returns the current scroll offset, if known.
	ScrollOffset(id SessionID) (Point, bool)

	// SetScrollOffset applies a scroll offset.
	SetScrollOffset(id SessionID, offset Point)
}

// EventSink receives engine events. *Controller implements it.
//
// Events naming a session that is no longer current are discarded.
type EventSink interface {
	HandlePageChange(id SessionID, page int)
	HandleLayoutReady(id SessionID)
}
