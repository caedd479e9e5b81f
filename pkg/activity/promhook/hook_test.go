package promhook_test

import (
	"context"
	"testing"

	nav "github.com/goliatone/go-navigator"
	"github.com/goliatone/go-navigator/pkg/activity"
	"github.com/goliatone/go-navigator/pkg/activity/promhook"
	"github.com/goliatone/go-navigator/pkg/memhost"
	"github.com/goliatone/go-navigator/tree"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHookCountsEvents(t *testing.T) {
	hook := promhook.New(prometheus.NewRegistry(), "")
	ctx := context.Background()

	event := activity.BuildCommittedEvent(activity.NavigationEventInput{
		SessionID: "s1",
		Source:    "go",
		Route:     "settings",
		To:        activity.StateSnapshot{Page: "settings"},
	})
	for range 2 {
		if err := hook.Notify(ctx, event); err != nil {
			t.Fatalf("notify: %v", err)
		}
	}
	if err := hook.Notify(ctx, activity.Event{}); err != nil {
		t.Fatalf("notify invalid: %v", err)
	}

	if got := testutil.ToFloat64(hook.Events().WithLabelValues(activity.VerbCommitted, "settings", "go")); got != 2 {
		t.Fatalf("expected 2 committed events, got %v", got)
	}
	if got := testutil.CollectAndCount(hook.Events()); got != 1 {
		t.Fatalf("expected one series, got %d", got)
	}
}

func TestHookObservesNavigator(t *testing.T) {
	hook := promhook.New(prometheus.NewRegistry(), "app")
	n, err := nav.New(memhost.New("/"),
		nav.WithRoutes(tree.Route{Name: "home"}, tree.Route{Name: "settings"}),
		nav.WithActivityHooks(hook),
	)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := n.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := n.Go("settings", nil); err != nil {
		t.Fatalf("go: %v", err)
	}

	if got := testutil.ToFloat64(hook.Events().WithLabelValues(activity.VerbCommitted, "settings", "go")); got != 1 {
		t.Fatalf("expected one committed settings event, got %v", got)
	}
	if got := testutil.ToFloat64(hook.Events().WithLabelValues(activity.VerbFallback, "home", "default")); got != 1 {
		t.Fatalf("expected one fallback event, got %v", got)
	}
}
