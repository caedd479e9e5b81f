// Package sqlitestore persists state snapshots in a SQLite table.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"github.com/goliatone/go-navigator/pkg/state"
	_ "modernc.org/sqlite"
)

// DefaultTable is the table snapshots are kept in.
const DefaultTable = "nav_snapshots"

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store is a state.Store backed by one SQLite table. Values are JSON
// envelopes keyed by Ref.Identifier().
type Store[T any] struct {
	db    *sql.DB
	table string
	owned bool
}

var _ state.Store[struct{}] = (*Store[struct{}])(nil)

// Open opens the database at dsn (":memory:" works) and creates the table.
func Open[T any](ctx context.Context, dsn string) (*Store[T], error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: open %s: %w", dsn, err)
	}
	// An in-memory database lives as long as its single connection.
	db.SetMaxOpenConns(1)
	store, err := New[T](ctx, db, DefaultTable)
	if err != nil {
		db.Close()
		return nil, err
	}
	store.owned = true
	return store, nil
}

// New uses db and creates table when missing. The caller keeps ownership of
// db.
func New[T any](ctx context.Context, db *sql.DB, table string) (*Store[T], error) {
	if table == "" {
		table = DefaultTable
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("sqlitestore: invalid table name %q", table)
	}
	schema := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id         TEXT PRIMARY KEY,
		etag       TEXT NOT NULL,
		payload    BLOB NOT NULL,
		updated_at TEXT NOT NULL
	)`, table)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("sqlitestore: create table %s: %w", table, err)
	}
	return &Store[T]{db: db, table: table}, nil
}

// Close closes the database when Open created it.
func (s *Store[T]) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

func (s *Store[T]) Load(ctx context.Context, ref state.Ref) (T, state.Meta, bool, error) {
	var zero T
	id, err := ref.Identifier()
	if err != nil {
		return zero, state.Meta{}, false, err
	}
	envelope, ok, err := s.read(ctx, s.db, id)
	if err != nil || !ok {
		return zero, state.Meta{}, false, err
	}
	return envelope.Snapshot, envelope.Meta, true, nil
}

func (s *Store[T]) Save(ctx context.Context, ref state.Ref, snapshot T, meta state.Meta) (state.Meta, error) {
	id, err := ref.Identifier()
	if err != nil {
		return state.Meta{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return state.Meta{}, fmt.Errorf("sqlitestore: begin: %w", err)
	}
	defer tx.Rollback()

	current, ok, err := s.read(ctx, tx, id)
	if err != nil {
		return state.Meta{}, err
	}
	var previous *state.Envelope[T]
	if ok {
		previous = &current
	}
	data, saved, err := state.EncodeEnvelope(previous, snapshot, meta)
	if err != nil {
		return saved, err
	}

	query := fmt.Sprintf(`INSERT INTO %s (id, etag, payload, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET etag = excluded.etag, payload = excluded.payload, updated_at = excluded.updated_at`, s.table)
	if _, err := tx.ExecContext(ctx, query, id, saved.ETag, data, saved.UpdatedAt.Format("2006-01-02T15:04:05.000000000Z07:00")); err != nil {
		return state.Meta{}, fmt.Errorf("sqlitestore: save %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return state.Meta{}, fmt.Errorf("sqlitestore: commit: %w", err)
	}
	return saved, nil
}

// Delete drops the snapshot stored for ref.
func (s *Store[T]) Delete(ctx context.Context, ref state.Ref) error {
	id, err := ref.Identifier()
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, s.table), id); err != nil {
		return fmt.Errorf("sqlitestore: delete %s: %w", id, err)
	}
	return nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store[T]) read(ctx context.Context, q querier, id string) (state.Envelope[T], bool, error) {
	var payload []byte
	err := q.QueryRowContext(ctx, fmt.Sprintf(`SELECT payload FROM %s WHERE id = ?`, s.table), id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return state.Envelope[T]{}, false, nil
	}
	if err != nil {
		return state.Envelope[T]{}, false, fmt.Errorf("sqlitestore: load %s: %w", id, err)
	}
	envelope, err := state.DecodeEnvelope[T](payload)
	if err != nil {
		return state.Envelope[T]{}, false, err
	}
	return envelope, true, nil
}
