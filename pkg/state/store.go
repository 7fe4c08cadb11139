// Package state defines the durable key-value record that lets the browser
// resume after a restart: last folder, sort preference and the open document.
//
// Every key has a defined fallback when it is absent, invalid or points at an
// item that no longer resolves; callers treat a missing key and a store error
// the same way.
package state

import (
	"context"
	"errors"
)

// Key names a persisted value.
type Key string

const (
	// KeyLastFolder is the id of the last browsed folder. Fallback: root.
	KeyLastFolder Key = "lastFolder"

	// KeySortField is the selected sort field. Fallback: modified.
	KeySortField Key = "sortField"

	// KeySortDirection is "asc" or "desc". Fallback (absent or any other
	// value): desc.
	KeySortDirection Key = "sortDirection"

	// KeyOpenItem is the item id of the open document. Fallback: no viewer.
	KeyOpenItem Key = "openItem"

	// KeyOpenPage is the last page of the open document. Fallback: page 1.
	KeyOpenPage Key = "openPage"
)

// Keys lists every persisted key.
var Keys = []Key{KeyLastFolder, KeySortField, KeySortDirection, KeyOpenItem, KeyOpenPage}

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("state: store closed")

// Store is a durable string key-value store.
//
// Writes are last-writer-wins. Implementations must be safe for concurrent
// use.
type Store interface {
	// Get returns the value of key and whether it was present.
	Get(ctx context.Context, key Key) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key Key, value string) error

	// Delete removes keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...Key) error

	// Close releases resources. It is idempotent: a second Close returns
	// nil, while Get, Set and Delete on a closed store return ErrClosed.
	Close() error
}
