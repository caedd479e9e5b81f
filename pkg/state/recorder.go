package state

import (
	"context"
	"fmt"

	nav "github.com/goliatone/go-navigator"
)

// DefaultHistoryDomain is the domain history snapshots are stored under.
const DefaultHistoryDomain = "navigation.history"

// Recorder persists navigator history snapshots in a Store. It implements
// nav.HistoryPersister.
type Recorder struct {
	Store    Store[nav.HistorySnapshot]
	Domain   string
	TenantID string
}

// NewRecorder returns a recorder over store using the default domain.
func NewRecorder(store Store[nav.HistorySnapshot]) *Recorder {
	return &Recorder{Store: store, Domain: DefaultHistoryDomain}
}

// SaveHistory implements nav.HistoryPersister.
func (r *Recorder) SaveHistory(ctx context.Context, snapshot nav.HistorySnapshot) error {
	if r == nil || r.Store == nil {
		return fmt.Errorf("state: store is required")
	}
	meta := Meta{UpdatedAt: snapshot.SavedAt}
	if _, err := r.Store.Save(ctx, r.ref(snapshot.SessionID), snapshot, meta); err != nil {
		return fmt.Errorf("state: save history %q: %w", snapshot.SessionID, err)
	}
	return nil
}

// LoadHistory implements nav.HistoryPersister.
func (r *Recorder) LoadHistory(ctx context.Context, sessionID string) (nav.HistorySnapshot, bool, error) {
	if r == nil || r.Store == nil {
		return nav.HistorySnapshot{}, false, fmt.Errorf("state: store is required")
	}
	snapshot, _, ok, err := r.Store.Load(ctx, r.ref(sessionID))
	if err != nil {
		return nav.HistorySnapshot{}, false, fmt.Errorf("state: load history %q: %w", sessionID, err)
	}
	return snapshot, ok, nil
}

func (r *Recorder) ref(sessionID string) Ref {
	domain := r.Domain
	if domain == "" {
		domain = DefaultHistoryDomain
	}
	return Ref{Domain: domain, SessionID: sessionID, TenantID: r.TenantID}
}

var _ nav.HistoryPersister = (*Recorder)(nil)
