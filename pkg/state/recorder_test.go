package state_test

import (
	"context"
	"testing"

	nav "github.com/goliatone/go-navigator"
	"github.com/goliatone/go-navigator/pkg/memhost"
	"github.com/goliatone/go-navigator/pkg/state"
	"github.com/goliatone/go-navigator/tree"
)

func routes() []tree.Route {
	return []tree.Route{
		{Name: "home"},
		{Name: "settings", Children: []tree.Route{{Name: "profile", SubRoute: true}}},
	}
}

func TestRecorderRoundTrip(t *testing.T) {
	store := state.NewMemoryStore[nav.HistorySnapshot]()
	recorder := &state.Recorder{Store: store, Domain: "history", TenantID: "acme"}
	ctx := context.Background()

	snapshot := nav.HistorySnapshot{
		SessionID: "s1",
		Records:   []nav.HistoryRecord{{State: nav.State{Page: "home"}, SessionID: "s1"}},
	}
	if err := recorder.SaveHistory(ctx, snapshot); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, ok, err := recorder.LoadHistory(ctx, "s1")
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if !loaded.Valid() || loaded.Records[0].State.Page != "home" {
		t.Fatalf("unexpected snapshot %+v", loaded)
	}
	if _, ok, _ := recorder.LoadHistory(ctx, "other"); ok {
		t.Fatalf("expected no snapshot for another session")
	}
}

func TestRecorderRestoresStackAfterReload(t *testing.T) {
	host := memhost.New("/")
	recorder := state.NewRecorder(state.NewMemoryStore[nav.HistorySnapshot]())
	opts := []nav.Option{
		nav.WithRoutes(routes()...),
		nav.WithHistoryPersister(recorder),
		nav.WithSessionRestore(true),
	}

	first, err := nav.New(host, opts...)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := first.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := first.Go("settings", nil); err != nil {
		t.Fatalf("go: %v", err)
	}
	if err := first.Go("settings.profile", nav.RouteParams{"id": "1"}); err != nil {
		t.Fatalf("go: %v", err)
	}
	session := first.SessionID()
	if err := first.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}

	reloaded, err := nav.New(host, opts...)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := reloaded.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if reloaded.SessionID() != session {
		t.Fatalf("expected session %q, got %q", session, reloaded.SessionID())
	}
	if len(reloaded.History()) != 3 || reloaded.Pointer() != 2 {
		t.Fatalf("expected restored stack, len=%d pointer=%d", len(reloaded.History()), reloaded.Pointer())
	}

	host.Back()
	if s := reloaded.State(); s.Page != "settings" || s.Modal != "" {
		t.Fatalf("expected host back to reach a restored entry, got %+v", s)
	}
}
