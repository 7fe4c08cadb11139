// Package badger provides a state.Store persisted with BadgerDB, so browsing
// state survives process restarts.
package badger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/marmos91/dittoview/internal/logger"
	"github.com/marmos91/dittoview/pkg/state"
)

// keyPrefix namespaces state keys inside the database.
const keyPrefix = "state:"

// Config holds BadgerDB store configuration.
type Config struct {
	// DBPath is the directory holding the database files.
	DBPath string

	// InMemory runs Badger without touching disk (tests).
	InMemory bool
}

// Store is a BadgerDB-backed state.Store.
//
// Thread safety:
// BadgerDB transactions are safe for concurrent use; mu only guards Close.
type Store struct {
	mu     sync.RWMutex
	db     *badger.DB
	closed bool
}

// New opens (or creates) the database described by cfg.
//
// Parameters:
//   - ctx: Cancelled contexts abort before the database is opened
//   - cfg: Database location
//
// Returns:
//   - *Store: Open store, to be closed by the caller
//   - error: If the database cannot be opened
func New(ctx context.Context, cfg Config) (*Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.DBPath == "" {
			return nil, fmt.Errorf("badger state store: db_path is required")
		}
		opts = badger.DefaultOptions(cfg.DBPath)
	}

	// A handful of tiny keys: keep logs quiet and skip compression.
	opts = opts.WithLoggingLevel(badger.WARNING).WithCompression(options.None)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB at %s: %w", cfg.DBPath, err)
	}

	logger.Debug("state: opened badger store at %q (in-memory=%v)", cfg.DBPath, cfg.InMemory)
	return &Store{db: db}, nil
}

func dbKey(key state.Key) []byte {
	return []byte(keyPrefix + string(key))
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

	var value string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(dbKey(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) Set(ctx context.Context, key state.Key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return state.ErrClosed
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(dbKey(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, keys ...state.Key) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return state.ErrClosed
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		for _, k := range keys {
			if err := txn.Delete(dbKey(k)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete keys: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close BadgerDB: %w", err)
	}
	return nil
}
