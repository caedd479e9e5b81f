package state

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrInvalidRef = errors.New("state: invalid ref")

var ErrETagMismatch = errors.New("state: etag mismatch")

// Ref identifies one persisted snapshot: a domain plus the browser session it
// belongs to, optionally namespaced by tenant.
type Ref struct {
	Domain    string
	SessionID string
	TenantID  string
}

// Meta is storage-owned metadata used for audit and concurrency control.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	ETag       string            `json:"etag,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Store loads/saves one snapshot for a single reference.
type Store[T any] interface {
	Load(ctx context.Context, ref Ref) (snapshot T, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, snapshot T, meta Meta) (Meta, error)
}

type Mutator[T any] func(*T) error

// Identifier returns the canonical storage key of r.
func (r Ref) Identifier() (string, error) {
	if r.Domain == "" {
		return "", fmt.Errorf("%w: domain is required", ErrInvalidRef)
	}
	if r.SessionID == "" {
		return "", fmt.Errorf("%w: session id is required", ErrInvalidRef)
	}
	if r.TenantID != "" {
		return fmt.Sprintf("tenant/%s/%s/%s", r.TenantID, r.Domain, r.SessionID), nil
	}
	return fmt.Sprintf("session/%s/%s", r.Domain, r.SessionID), nil
}

// Mutate loads one snapshot, applies fn and saves the result. A non-empty
// meta.ETag must match the stored one.
func Mutate[T any](ctx context.Context, store Store[T], ref Ref, meta Meta, fn Mutator[T]) (T, Meta, error) {
	var zero T
	if store == nil {
		return zero, Meta{}, fmt.Errorf("state: store is required")
	}
	if fn == nil {
		return zero, Meta{}, fmt.Errorf("state: mutator is required")
	}
	if _, err := ref.Identifier(); err != nil {
		return zero, Meta{}, err
	}

	snapshot, loadedMeta, ok, err := store.Load(ctx, ref)
	if err != nil {
		return zero, Meta{}, fmt.Errorf("state: load %q for session %q: %w", ref.Domain, ref.SessionID, err)
	}
	if !ok {
		snapshot = zero
		loadedMeta = Meta{}
	}

	if meta.ETag != "" && loadedMeta.ETag != "" && meta.ETag != loadedMeta.ETag {
		return zero, loadedMeta, fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, meta.ETag, loadedMeta.ETag)
	}

	if err := fn(&snapshot); err != nil {
		return zero, loadedMeta, err
	}

	savedMeta, err := store.Save(ctx, ref, snapshot, mergeMeta(loadedMeta, meta))
	if err != nil {
		return zero, loadedMeta, fmt.Errorf("state: save %q for session %q: %w", ref.Domain, ref.SessionID, err)
	}
	return snapshot, savedMeta, nil
}

func mergeMeta(base, override Meta) Meta {
	out := base
	if override.SnapshotID != "" {
		out.SnapshotID = override.SnapshotID
	}
	if override.ETag != "" {
		out.ETag = override.ETag
	}
	if !override.UpdatedAt.IsZero() {
		out.UpdatedAt = override.UpdatedAt
	}
	if override.Extra != nil {
		out.Extra = override.Extra
	}
	return out
}
