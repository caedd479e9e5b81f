package memhost

import (
	"testing"

	nav "github.com/goliatone/go-navigator"
)

func TestPushDiscardsForwardEntries(t *testing.T) {
	h := New("/")
	h.PushState(nav.Payload{Counter: 1}, "", "/?p=a")
	h.PushState(nav.Payload{Counter: 2}, "", "/?p=b")
	h.Go(-1)
	h.PushState(nav.Payload{Counter: 3}, "", "/?p=c")

	if h.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", h.Len())
	}
	if h.Location() != "/?p=c" {
		t.Fatalf("unexpected location %q", h.Location())
	}
	if h.Pushes() != 3 {
		t.Fatalf("expected 3 pushes, got %d", h.Pushes())
	}
}

func TestGoDeliversPayloadSynchronously(t *testing.T) {
	h := New("/")
	h.ReplaceState(nav.Payload{Counter: 0, SessionID: "s"}, "", "/?p=a")
	h.PushState(nav.Payload{Counter: 1, SessionID: "s"}, "", "/?p=b")

	var got []nav.Payload
	unsubscribe := h.SubscribeToPositionChange(func(p nav.Payload, ok bool) {
		if !ok {
			t.Fatalf("expected payload")
		}
		got = append(got, p)
	})
	h.Back()
	if len(got) != 1 || got[0].Counter != 0 {
		t.Fatalf("unexpected deliveries %+v", got)
	}

	unsubscribe()
	h.Forward()
	if len(got) != 1 {
		t.Fatalf("expected no delivery after unsubscribe, got %+v", got)
	}
}

func TestGoIgnoresMovesPastTheEnds(t *testing.T) {
	h := New("/")
	calls := 0
	h.SubscribeToPositionChange(func(nav.Payload, bool) { calls++ })
	h.Go(-1)
	h.Go(1)
	if calls != 0 || h.Index() != 0 {
		t.Fatalf("expected no move, got calls=%d index=%d", calls, h.Index())
	}
}

func TestDeferredDeliveryQueuesUntilFlush(t *testing.T) {
	h := New("/", WithDeferredDelivery())
	h.PushState(nav.Payload{Counter: 1}, "", "/?p=b")
	calls := 0
	h.SubscribeToPositionChange(func(nav.Payload, bool) { calls++ })

	h.Back()
	if calls != 0 || h.Pending() != 1 {
		t.Fatalf("expected queued delivery, calls=%d pending=%d", calls, h.Pending())
	}
	if h.Index() != 0 {
		t.Fatalf("expected index to move immediately, got %d", h.Index())
	}
	if delivered := h.Flush(); delivered != 1 || calls != 1 {
		t.Fatalf("expected one delivery, got delivered=%d calls=%d", delivered, calls)
	}
}

func TestVisitReportsEntryWithoutPayload(t *testing.T) {
	h := New("/")
	var hasPayload = true
	h.SubscribeToPositionChange(func(_ nav.Payload, ok bool) { hasPayload = ok })
	h.Visit("/?p=x")
	if hasPayload {
		t.Fatalf("expected entry without payload")
	}
	if _, ok := h.CurrentPayload(); ok {
		t.Fatalf("expected no current payload")
	}
}

func TestActivateUsesInterceptor(t *testing.T) {
	h := New("/")
	var dispatched nav.State
	h.SubscribeToLinkActivation(func(href string) (nav.State, bool) {
		if href == "/external" {
			return nav.State{}, false
		}
		return nav.State{Page: "home"}, true
	}, func(s nav.State) { dispatched = s })

	if h.Activate("/external") {
		t.Fatalf("expected external link to be left to the host")
	}
	if !h.Activate("/?p=home") || dispatched.Page != "home" {
		t.Fatalf("expected dispatch to home, got %+v", dispatched)
	}
}
