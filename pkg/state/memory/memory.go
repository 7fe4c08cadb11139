// Package memory provides an in-process state.Store. State is lost when the
// process exits.
package memory

import (
	"context"
	"sync"

	"github.com/marmos91/dittoview/pkg/state"
)

// Store is a map-backed state.Store.
type Store struct {
	mu     sync.RWMutex
	values map[state.Key]string
	closed bool
}

// New creates an empty store.
func New() *Store {
	return &Store{values: make(map[state.Key]string)}
}

func (s *Store) Get(ctx context.Context, key state.Key) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return "", false, state.ErrClosed
	}
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *Store) Set(ctx context.Context, key state.Key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return state.ErrClosed
	}
	s.values[key] = value
	return nil
}

func (s *Store) Delete(ctx context.Context, keys ...state.Key) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return state.ErrClosed
	}
	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
