package state

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store keyed by Ref.Identifier(). Every save
// gets a fresh snapshot id and etag; a save carrying an etag must match the
// stored one.
type MemoryStore[T any] struct {
	mu      sync.RWMutex
	records map[string]memoryRecord[T]
	version int
}

type memoryRecord[T any] struct {
	snapshot T
	meta     Meta
}

func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{records: map[string]memoryRecord[T]{}}
}

func (s *MemoryStore[T]) Load(_ context.Context, ref Ref) (T, Meta, bool, error) {
	var zero T
	key, err := ref.Identifier()
	if err != nil {
		return zero, Meta{}, false, err
	}

	s.mu.RLock()
	record, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return zero, Meta{}, false, nil
	}
	return record.snapshot, cloneMeta(record.meta), true, nil
}

func (s *MemoryStore[T]) Save(_ context.Context, ref Ref, snapshot T, meta Meta) (Meta, error) {
	key, err := ref.Identifier()
	if err != nil {
		return Meta{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.records[key]; ok && meta.ETag != "" && meta.ETag != current.meta.ETag {
		return cloneMeta(current.meta), fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, meta.ETag, current.meta.ETag)
	}

	s.version++
	saved := cloneMeta(meta)
	saved.SnapshotID = uuid.NewString()
	saved.ETag = fmt.Sprintf("v%d", s.version)
	if saved.UpdatedAt.IsZero() {
		saved.UpdatedAt = time.Now().UTC()
	}
	if s.records == nil {
		s.records = map[string]memoryRecord[T]{}
	}
	s.records[key] = memoryRecord[T]{snapshot: snapshot, meta: saved}
	return cloneMeta(saved), nil
}

// Delete drops the snapshot stored for ref.
func (s *MemoryStore[T]) Delete(_ context.Context, ref Ref) error {
	key, err := ref.Identifier()
	if err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.records, key)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored snapshots.
func (s *MemoryStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func cloneMeta(meta Meta) Meta {
	out := meta
	if meta.Extra == nil {
		return out
	}
	out.Extra = make(map[string]string, len(meta.Extra))
	for k, v := range meta.Extra {
		out.Extra[k] = v
	}
	return out
}
