package activity

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"
)

// Event describes a navigation occurrence fanned out to hooks. IDs are
// strings so call sites are not tied to a specific UUID type.
type Event struct {
	Verb       string
	ActorID    string
	UserID     string
	TenantID   string
	ObjectType string
	ObjectID   string
	Channel    string
	// Route is the dotted route the event concerns: the committed modal or
	// page, or the redirect target.
	Route string
	// Source is the state source (default, url, go, popstate).
	Source     string
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivityHook receives normalized activity events.
type ActivityHook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc allows plain functions to satisfy ActivityHook.
type HookFunc func(ctx context.Context, event Event) error

// Notify dispatches to the underlying function.
func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Hooks fans out events to zero or more hooks.
type Hooks []ActivityHook

// Enabled reports whether there are any hooks to notify.
func (h Hooks) Enabled() bool {
	return len(h) > 0
}

// Notify normalizes the event and forwards it to every hook, joining hook
// errors. Events missing a verb, object type or object id are dropped.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	if len(h) == 0 {
		return nil
	}

	normalized := NormalizeEvent(event)
	if !normalized.Valid() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, normalized); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Only wraps hook so it sees just the listed verbs. No verbs means all.
func Only(hook ActivityHook, verbs ...string) ActivityHook {
	if hook == nil || len(verbs) == 0 {
		return hook
	}
	return HookFunc(func(ctx context.Context, event Event) error {
		if !slices.Contains(verbs, strings.TrimSpace(event.Verb)) {
			return nil
		}
		return hook.Notify(ctx, event)
	})
}

// Valid reports whether the event carries the fields hooks key on.
func (e Event) Valid() bool {
	return e.Verb != "" && e.ObjectType != "" && e.ObjectID != ""
}

// NormalizeEvent trims identifiers, clones metadata and stamps OccurredAt when
// missing.
func NormalizeEvent(event Event) Event {
	normalized := event
	normalized.Verb = strings.TrimSpace(event.Verb)
	normalized.ActorID = strings.TrimSpace(event.ActorID)
	normalized.UserID = strings.TrimSpace(event.UserID)
	normalized.TenantID = strings.TrimSpace(event.TenantID)
	normalized.ObjectType = strings.TrimSpace(event.ObjectType)
	normalized.ObjectID = strings.TrimSpace(event.ObjectID)
	normalized.Channel = strings.TrimSpace(event.Channel)
	normalized.Route = strings.TrimSpace(event.Route)
	normalized.Source = strings.TrimSpace(event.Source)
	normalized.Metadata = cloneMap(event.Metadata)
	if normalized.OccurredAt.IsZero() {
		normalized.OccurredAt = time.Now()
	}
	return normalized
}

func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
