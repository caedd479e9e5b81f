package nav

// Payload is the opaque value stored with every host history entry written
// by the navigator.
type Payload struct {
	// Counter is the history stack index of the entry.
	Counter int `json:"counter"`
	// Depth counts the entries written by this session behind this one.
	Depth     int    `json:"depth"`
	SessionID string `json:"sessionId"`
	Page      string `json:"page,omitempty"`
	Modal     string `json:"modal,omitempty"`
	Params    Params `json:"params,omitempty"`
}

// Host is the session history of the environment the navigator runs in.
// Implementations are driven from a single event loop.
type Host interface {
	// Location returns the current path and query, hash-mode aware.
	Location() string
	PushState(payload Payload, title, url string)
	ReplaceState(payload Payload, title, url string)
	// Go moves the host position by delta entries. The move is reported
	// later through the position change subscription.
	Go(delta int)
	// CurrentPayload returns the payload of the current entry, if any.
	CurrentPayload() (Payload, bool)
	// SubscribeToPositionChange registers fn for user or programmatic moves
	// within host history. fn receives false when the entry has no payload.
	SubscribeToPositionChange(fn func(payload Payload, ok bool)) (unsubscribe func())
}

// LinkInterceptor is implemented by hosts that can capture in-app link
// activation. resolve maps an href to a state; dispatch navigates to it.
type LinkInterceptor interface {
	SubscribeToLinkActivation(resolve func(href string) (State, bool), dispatch func(State)) (unsubscribe func())
}
