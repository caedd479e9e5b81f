package nav_test

import (
	"errors"
	"slices"
	"testing"

	nav "github.com/goliatone/go-navigator"
	"github.com/goliatone/go-navigator/tree"
)

func TestNamedTreesSwitchResolution(t *testing.T) {
	n, host := startNavigator(t, "/")

	err := n.AddTree("admin",
		tree.Route{Name: "dashboard"},
		tree.Route{Name: "users", Params: []string{"page"}},
	)
	if err != nil {
		t.Fatalf("add tree: %v", err)
	}
	if got := n.Trees(); !slices.Equal(got, []string{"admin", nav.DefaultTree}) {
		t.Fatalf("unexpected trees %v", got)
	}
	if n.ActiveTree() != nav.DefaultTree {
		t.Fatalf("added tree must not activate, active=%q", n.ActiveTree())
	}
	if err := n.Go("dashboard", nil); !errors.Is(err, nav.ErrRouteNotRegistered) {
		t.Fatalf("expected dashboard to be unknown before the switch, got %v", err)
	}

	if err := n.SetActiveTree("admin"); err != nil {
		t.Fatalf("set active tree: %v", err)
	}
	mustGo(t, n, "users", nav.RouteParams{"page": "2"})
	if host.Location() != "?p=users&users.page=2" {
		t.Fatalf("unexpected url %q", host.Location())
	}
	if n.Tree().Len() != 2 {
		t.Fatalf("expected admin tree, got %d routes", n.Tree().Len())
	}
	if err := n.Go("settings", nil); !errors.Is(err, nav.ErrRouteNotRegistered) {
		t.Fatalf("expected settings to be unknown in the admin tree, got %v", err)
	}

	if err := n.SetActiveTree(nav.DefaultTree); err != nil {
		t.Fatalf("set default tree: %v", err)
	}
	mustGo(t, n, "settings", nil)
	if host.Location() != "?p=settings" {
		t.Fatalf("unexpected url %q", host.Location())
	}
}

func TestNamedTreeErrors(t *testing.T) {
	n, _ := startNavigator(t, "/")

	if err := n.AddTree(nav.DefaultTree, tree.Route{Name: "x"}); !errors.Is(err, nav.ErrTreeExists) {
		t.Fatalf("expected ErrTreeExists, got %v", err)
	}
	if err := n.AddTree("", tree.Route{Name: "x"}); !errors.Is(err, nav.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if err := n.AddTree("dup", tree.Route{Name: "x"}, tree.Route{Name: "x"}); !errors.Is(err, nav.ErrDuplicateRoute) {
		t.Fatalf("expected ErrDuplicateRoute, got %v", err)
	}
	if slices.Contains(n.Trees(), "dup") {
		t.Fatalf("invalid tree was registered: %v", n.Trees())
	}

	err := n.SetActiveTree("missing")
	if !errors.Is(err, nav.ErrTreeNotFound) {
		t.Fatalf("expected ErrTreeNotFound, got %v", err)
	}
	var navErr *nav.NavigationError
	if !errors.As(err, &navErr) || navErr.Op != "set_active_tree" || navErr.Route != "missing" {
		t.Fatalf("expected NavigationError, got %#v", err)
	}
	if n.ActiveTree() != nav.DefaultTree {
		t.Fatalf("active tree changed to %q", n.ActiveTree())
	}

	if err := n.RemoveTree(nav.DefaultTree); !errors.Is(err, nav.ErrTreeActive) {
		t.Fatalf("expected ErrTreeActive, got %v", err)
	}
	if err := n.RemoveTree("missing"); !errors.Is(err, nav.ErrTreeNotFound) {
		t.Fatalf("expected ErrTreeNotFound, got %v", err)
	}
	if err := n.AddTree("spare", tree.Route{Name: "x"}); err != nil {
		t.Fatalf("add tree: %v", err)
	}
	if err := n.RemoveTree("spare"); err != nil {
		t.Fatalf("remove tree: %v", err)
	}
	if err := n.SetActiveTree("spare"); !errors.Is(err, nav.ErrTreeNotFound) {
		t.Fatalf("expected removed tree to be gone, got %v", err)
	}
}
