// Package badgerstore persists state snapshots in a BadgerDB key-value store.
package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/goliatone/go-navigator/pkg/state"
)

// Config controls how Open creates the database.
type Config struct {
	Path       string
	InMemory   bool
	SyncWrites bool
	Logger     *slog.Logger
	// Prefix is prepended to every key. Defaults to "nav/".
	Prefix string
}

// Store is a state.Store backed by BadgerDB. Values are JSON envelopes.
type Store[T any] struct {
	db     *badger.DB
	prefix string
	owned  bool
}

var _ state.Store[struct{}] = (*Store[struct{}])(nil)

type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Open creates a database from cfg and wraps it. Close releases it.
func Open[T any](cfg Config) (*Store[T], error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("badgerstore: path is required for a persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("badgerstore: create directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badgerstore: open: %w", err)
	}
	store := New[T](db, cfg.Prefix)
	store.owned = true
	return store, nil
}

// New wraps an open database. The caller keeps ownership of db.
func New[T any](db *badger.DB, prefix string) *Store[T] {
	if prefix == "" {
		prefix = "nav/"
	}
	return &Store[T]{db: db, prefix: prefix}
}

// Close closes the database when Open created it.
func (s *Store[T]) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

func (s *Store[T]) key(ref state.Ref) ([]byte, error) {
	id, err := ref.Identifier()
	if err != nil {
		return nil, err
	}
	return []byte(s.prefix + id), nil
}

func (s *Store[T]) Load(_ context.Context, ref state.Ref) (T, state.Meta, bool, error) {
	var zero T
	key, err := s.key(ref)
	if err != nil {
		return zero, state.Meta{}, false, err
	}

	var envelope state.Envelope[T]
	found := false
	err = s.db.View(func(txn *badger.Txn) error {
		current, ok, err := read[T](txn, key)
		envelope, found = current, ok
		return err
	})
	if err != nil || !found {
		return zero, state.Meta{}, false, err
	}
	return envelope.Snapshot, envelope.Meta, true, nil
}

func (s *Store[T]) Save(_ context.Context, ref state.Ref, snapshot T, meta state.Meta) (state.Meta, error) {
	key, err := s.key(ref)
	if err != nil {
		return state.Meta{}, err
	}

	var saved state.Meta
	err = s.db.Update(func(txn *badger.Txn) error {
		current, ok, err := read[T](txn, key)
		if err != nil {
			return err
		}
		var previous *state.Envelope[T]
		if ok {
			previous = &current
		}
		data, out, err := state.EncodeEnvelope(previous, snapshot, meta)
		saved = out
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
	return saved, err
}

// Delete drops the snapshot stored for ref.
func (s *Store[T]) Delete(_ context.Context, ref state.Ref) error {
	key, err := s.key(ref)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

func read[T any](txn *badger.Txn, key []byte) (state.Envelope[T], bool, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return state.Envelope[T]{}, false, nil
	}
	if err != nil {
		return state.Envelope[T]{}, false, fmt.Errorf("badgerstore: get %s: %w", key, err)
	}
	var envelope state.Envelope[T]
	err = item.Value(func(val []byte) error {
		decoded, err := state.DecodeEnvelope[T](val)
		envelope = decoded
		return err
	})
	if err != nil {
		return state.Envelope[T]{}, false, err
	}
	return envelope, true, nil
}
