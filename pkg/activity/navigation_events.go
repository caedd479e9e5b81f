package activity

import (
	"strings"
	"time"
)

// Navigation verbs.
const (
	VerbCommitted     = "navigation.committed"
	VerbRedirected    = "navigation.redirected"
	VerbGuardRejected = "navigation.guard.rejected"
	VerbFallback      = "navigation.fallback"
)

// ObjectTypeSession is the object type of navigation events. The object id is
// the browser session id.
const ObjectTypeSession = "navigation.session"

// StateSnapshot is the activity view of a navigator state.
type StateSnapshot struct {
	Page   string
	Modal  string
	Params map[string]map[string]string
}

func (s StateSnapshot) route() string {
	if s.Modal != "" {
		return s.Modal
	}
	return s.Page
}

// NavigationEventInput describes the common fields of navigation events.
type NavigationEventInput struct {
	ActorID    string
	UserID     string
	TenantID   string
	SessionID  string
	Channel    string
	Metadata   map[string]any
	Source     string
	Pointer    int
	To         StateSnapshot
	From       StateSnapshot
	Route      string
	Reason     string
	OccurredAt time.Time
}

// BuildCommittedEvent describes a committed state transition.
func BuildCommittedEvent(input NavigationEventInput) Event {
	return buildNavigationEvent(VerbCommitted, input)
}

// BuildRedirectedEvent describes a redirect issued by a lifecycle handler.
// Route names the redirect target.
func BuildRedirectedEvent(input NavigationEventInput) Event {
	return buildNavigationEvent(VerbRedirected, input)
}

// BuildGuardRejectedEvent describes a route guard that refused activation.
func BuildGuardRejectedEvent(input NavigationEventInput) Event {
	return buildNavigationEvent(VerbGuardRejected, input)
}

// BuildFallbackEvent describes a fall back to the root or default state.
func BuildFallbackEvent(input NavigationEventInput) Event {
	return buildNavigationEvent(VerbFallback, input)
}

func buildNavigationEvent(verb string, input NavigationEventInput) Event {
	metadata := cloneMap(input.Metadata)
	set := func(key string, value any) {
		if metadata == nil {
			metadata = map[string]any{}
		}
		metadata[key] = value
	}

	if input.To.Page != "" {
		set("page", input.To.Page)
	}
	if input.To.Modal != "" {
		set("modal", input.To.Modal)
	}
	if len(input.To.Params) > 0 {
		set("params", cloneParams(input.To.Params))
	}
	if input.From.Page != "" {
		set("from_page", input.From.Page)
	}
	if input.From.Modal != "" {
		set("from_modal", input.From.Modal)
	}
	if input.Source != "" {
		set("source", input.Source)
	}
	if input.Route != "" {
		set("route", input.Route)
	}
	if input.Reason != "" {
		set("reason", input.Reason)
	}
	set("pointer", input.Pointer)

	route := input.Route
	if route == "" {
		route = input.To.route()
	}

	objectID := strings.TrimSpace(input.SessionID)
	if objectID == "" {
		objectID = "anonymous"
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: ObjectTypeSession,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Route:      route,
		Source:     input.Source,
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func cloneParams(src map[string]map[string]string) map[string]map[string]string {
	out := make(map[string]map[string]string, len(src))
	for route, slice := range src {
		copied := make(map[string]string, len(slice))
		for key, value := range slice {
			copied[key] = value
		}
		out[route] = copied
	}
	return out
}
