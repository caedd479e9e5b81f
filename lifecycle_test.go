package nav_test

import (
	"errors"
	"slices"
	"testing"

	nav "github.com/goliatone/go-navigator"
	"github.com/goliatone/go-navigator/pkg/activity"
	"github.com/goliatone/go-navigator/tree"
)

type recorder struct {
	pages *[]string
}

func (r recorder) OnTransition(t nav.Transition) {
	*r.pages = append(*r.pages, t.ToState.Page)
}

func TestSubscribeRejectsDuplicates(t *testing.T) {
	n, _ := startNavigator(t, "/")
	var pages []string
	sub := recorder{pages: &pages}

	unsubscribe, err := n.Subscribe(sub)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if _, err := n.Subscribe(sub); !errors.Is(err, nav.ErrAlreadySubscribed) {
		t.Fatalf("expected ErrAlreadySubscribed, got %v", err)
	}

	mustGo(t, n, "settings", nil)
	unsubscribe()
	mustGo(t, n, "home", nil)

	if !slices.Equal(pages, []string{"home", "settings"}) {
		t.Fatalf("unexpected deliveries %v", pages)
	}
}

func TestUnsubscribeAndRemoveAll(t *testing.T) {
	n, _ := startNavigator(t, "/")
	var pages []string
	sub := recorder{pages: &pages}
	if _, err := n.Subscribe(sub); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if !n.Unsubscribe(sub) {
		t.Fatalf("expected subscriber to be removed")
	}
	if n.Unsubscribe(sub) {
		t.Fatalf("expected second removal to report false")
	}

	calls := 0
	n.SubscribeFunc(func(nav.Transition) { calls++ })
	n.RemoveAllSubscribers()
	mustGo(t, n, "settings", nil)
	if calls != 1 || len(pages) != 1 {
		t.Fatalf("expected only immediate deliveries, calls=%d pages=%v", calls, pages)
	}
}

func TestTransitionCarriesHistory(t *testing.T) {
	n, _ := startNavigator(t, "/")
	var last nav.Transition
	n.SubscribeFunc(func(tr nav.Transition) { last = tr })
	mustGo(t, n, "settings", nil)

	if last.FromState.Page != "home" || last.ToState.Page != "settings" {
		t.Fatalf("unexpected transition %+v", last)
	}
	if len(last.History) != 2 || last.Pointer != 1 {
		t.Fatalf("unexpected history %+v pointer %d", last.History, last.Pointer)
	}
}

func TestCanActivateRedirectReplaces(t *testing.T) {
	n, host := startNavigator(t, "/")
	var seen []string
	n.SubscribeFunc(func(tr nav.Transition) { seen = append(seen, tr.ToState.Page) })

	calls := 0
	remove, err := n.CanActivate("settings", func(next, prev nav.State, done func(nav.Done)) {
		calls++
		if next.Page != "settings" || prev.Page != "home" {
			t.Fatalf("unexpected handler states next=%+v prev=%+v", next, prev)
		}
		done(nav.Done{Redirect: &nav.Redirect{Name: "a", Params: nav.RouteParams{"id": "2"}}})
	})
	if err != nil {
		t.Fatalf("can activate: %v", err)
	}

	mustGo(t, n, "settings", nil)
	state := n.State()
	if state.Page != "a" || state.Params.Get("a", "id") != "2" {
		t.Fatalf("expected redirect to a, got %+v", state)
	}
	if slices.Contains(seen, "settings") {
		t.Fatalf("redirected state was broadcast: %v", seen)
	}
	if len(n.History()) != 2 || host.Len() != 2 {
		t.Fatalf("expected redirect to replace, history=%d host=%d", len(n.History()), host.Len())
	}

	remove()
	mustGo(t, n, "settings", nil)
	if calls != 1 || n.State().Page != "settings" {
		t.Fatalf("expected removed handler, calls=%d state=%+v", calls, n.State())
	}
}

func TestCanActivateUnknownRoute(t *testing.T) {
	n, _ := startNavigator(t, "/")
	if _, err := n.CanActivate("missing", func(nav.State, nav.State, func(nav.Done)) {}); !errors.Is(err, nav.ErrRouteNotRegistered) {
		t.Fatalf("expected ErrRouteNotRegistered, got %v", err)
	}
}

func TestRedirectLoopIsCapped(t *testing.T) {
	n, _ := startNavigator(t, "/", nav.WithMaxRedirects(3))
	bounce := func(to string) nav.Handler {
		return func(_, _ nav.State, done func(nav.Done)) {
			done(nav.Done{Redirect: &nav.Redirect{Name: to}})
		}
	}
	if _, err := n.CanActivate("settings", bounce("home")); err != nil {
		t.Fatalf("can activate: %v", err)
	}
	if _, err := n.CanActivate("home", bounce("settings")); err != nil {
		t.Fatalf("can activate: %v", err)
	}

	err := n.Go("settings", nil)
	if !errors.Is(err, nav.ErrRedirectLimit) {
		t.Fatalf("expected ErrRedirectLimit, got %v", err)
	}
}

func TestGuardRedirectsOnRejection(t *testing.T) {
	routes := nav.WithRoutes(tree.Route{
		Name:     "admin",
		Guard:    `args.role == "admin" && data.level > 1`,
		Redirect: "settings",
		Data:     map[string]any{"level": 2},
	})

	var events []nav.GuardLogEvent
	logger := nav.WithGuardLogger(nav.GuardLoggerFunc(func(e nav.GuardLogEvent) { events = append(events, e) }))

	n, _ := startNavigator(t, "/", routes, logger, nav.WithGuardArgs(map[string]any{"role": "guest"}))
	mustGo(t, n, "admin", nil)
	if n.State().Page != "settings" {
		t.Fatalf("expected guard redirect, got %+v", n.State())
	}
	if len(events) != 1 || events[0].Allowed || events[0].Engine != "expr" || events[0].Route != "admin" {
		t.Fatalf("unexpected guard log %+v", events)
	}

	allowed, _ := startNavigator(t, "/", routes, nav.WithGuardArgs(map[string]any{"role": "admin"}))
	mustGo(t, allowed, "admin", nil)
	if allowed.State().Page != "admin" {
		t.Fatalf("expected admin, got %+v", allowed.State())
	}
}

func TestGuardRedirectToEntryBelowPops(t *testing.T) {
	routes := nav.WithRoutes(tree.Route{Name: "admin", Guard: "false", Redirect: "home"})
	n, host := startNavigator(t, "/", routes)

	var seen []string
	n.SubscribeFunc(func(tr nav.Transition) { seen = append(seen, tr.ToState.Page) })

	mustGo(t, n, "admin", nil)
	if n.State().Page != "home" {
		t.Fatalf("expected home, got %+v", n.State())
	}
	if len(n.History()) != 1 || n.Pointer() != 0 {
		t.Fatalf("expected pop to root, got len=%d pointer=%d", len(n.History()), n.Pointer())
	}
	if host.Index() != 0 {
		t.Fatalf("expected host back on the root entry, index=%d", host.Index())
	}
	if slices.Contains(seen, "admin") {
		t.Fatalf("rejected state was broadcast: %v", seen)
	}

	if err := n.Back(1); err != nil {
		t.Fatalf("back: %v", err)
	}
	if n.State().Page != "home" || host.Index() != 0 {
		t.Fatalf("back at root moved: %+v index=%d", n.State(), host.Index())
	}
}

func TestGuardErrorFallsBackToDefaultRoute(t *testing.T) {
	routes := nav.WithRoutes(tree.Route{Name: "broken", Guard: `"not a bool"`})
	n, _ := startNavigator(t, "/", routes)
	mustGo(t, n, "settings", nil)
	mustGo(t, n, "broken", nil)
	if n.State().Page != "home" {
		t.Fatalf("expected default route, got %+v", n.State())
	}
}

func TestGuardUsesCELEngine(t *testing.T) {
	routes := nav.WithRoutes(tree.Route{
		Name:  "beta",
		Guard: `args.beta == true && page == "beta"`,
	})
	n, _ := startNavigator(t, "/", routes,
		nav.WithConfig(nav.Config{GuardEngine: nav.EngineCEL}),
		nav.WithGuardArgs(map[string]any{"beta": true}),
	)
	mustGo(t, n, "beta", nil)
	if n.State().Page != "beta" {
		t.Fatalf("expected beta, got %+v", n.State())
	}
}

func TestGuardFunctions(t *testing.T) {
	routes := nav.WithRoutes(tree.Route{Name: "gated", Guard: `allowed(page)`})
	fn := nav.WithGuardFunction("allowed", func(args ...any) (any, error) {
		return args[0] == "gated", nil
	})
	n, _ := startNavigator(t, "/", routes, fn)
	mustGo(t, n, "gated", nil)
	if n.State().Page != "gated" {
		t.Fatalf("expected gated, got %+v", n.State())
	}
}

func TestActivityEvents(t *testing.T) {
	capture := &activity.CaptureHook{}
	n, _ := startNavigator(t, "/",
		nav.WithActivityHooks(capture),
		nav.WithIdentity(nav.Identity{ActorID: "user-1"}),
	)
	if _, err := n.CanActivate("settings", func(_, _ nav.State, done func(nav.Done)) {
		done(nav.Done{Redirect: &nav.Redirect{Name: "home"}})
	}); err != nil {
		t.Fatalf("can activate: %v", err)
	}
	mustGo(t, n, "a", nav.RouteParams{"id": "1"})
	mustGo(t, n, "settings", nil)

	verbs := capture.Verbs()
	want := []string{
		activity.VerbFallback,
		activity.VerbCommitted,
		activity.VerbCommitted,
		activity.VerbRedirected,
		activity.VerbCommitted,
	}
	if !slices.Equal(verbs, want) {
		t.Fatalf("expected %v, got %v", want, verbs)
	}
	event := capture.Events[1]
	if event.ActorID != "user-1" || event.ObjectID != "session-1" || event.Channel != activity.DefaultChannel {
		t.Fatalf("unexpected event %+v", event)
	}
	if event.Metadata["page"] != "home" {
		t.Fatalf("unexpected metadata %+v", event.Metadata)
	}
}

func TestIsActive(t *testing.T) {
	n, _ := startNavigator(t, "/")
	mustGo(t, n, "settings", nil)
	mustGo(t, n, "settings.profile", nav.RouteParams{"id": "1"})

	cases := []struct {
		name   string
		route  string
		params nav.RouteParams
		opts   []nav.IsActiveOption
		want   bool
	}{
		{name: "exact", route: "settings.profile", params: nav.RouteParams{"id": "1"}, want: true},
		{name: "other params", route: "settings.profile", params: nav.RouteParams{"id": "2"}, want: false},
		{name: "ancestor strict", route: "settings", want: false},
		{name: "ancestor non strict", route: "settings", opts: []nav.IsActiveOption{nav.NonStrict()}, want: true},
		{name: "ignored query params", route: "settings.profile", params: nav.RouteParams{"id": "1", "tab": "x"}, opts: []nav.IsActiveOption{nav.IgnoreQueryParams()}, want: true},
		{name: "unrelated", route: "home", opts: []nav.IsActiveOption{nav.NonStrict()}, want: false},
		{name: "unknown", route: "missing", want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := n.IsActive(tc.route, tc.params, tc.opts...); got != tc.want {
				t.Fatalf("IsActive(%q, %v) = %v, want %v", tc.route, tc.params, got, tc.want)
			}
		})
	}
}

func TestBuildURL(t *testing.T) {
	n, _ := startNavigator(t, "/", nav.WithBase("/app"), nav.WithHashMode(true))
	mustGo(t, n, "settings", nil)

	url, err := n.BuildURL("settings.profile", nav.RouteParams{"id": "1"})
	if err != nil {
		t.Fatalf("build url: %v", err)
	}
	if url != "/app#?p=settings&m=settings.profile&settings.profile.id=1" {
		t.Fatalf("unexpected url %q", url)
	}
	if _, err := n.BuildURL("missing", nil); !errors.Is(err, nav.ErrRouteNotRegistered) {
		t.Fatalf("expected ErrRouteNotRegistered, got %v", err)
	}
}
