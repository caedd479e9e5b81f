// Package memhost is an in-memory session history implementing nav.Host and
// nav.LinkInterceptor. It backs tests, examples and headless hosts.
//
// Position changes are delivered synchronously from Go by default. With
// WithDeferredDelivery they queue until Flush, the way a browser delivers
// popstate on a later turn.
package memhost

import (
	"slices"

	nav "github.com/goliatone/go-navigator"
)

// Entry is one host history entry.
type Entry struct {
	Payload    nav.Payload
	HasPayload bool
	Title      string
	URL        string
}

// Option configures a Host.
type Option func(*Host)

// WithDeferredDelivery queues position changes until Flush.
func WithDeferredDelivery() Option {
	return func(h *Host) {
		h.deferred = true
	}
}

type positionListener struct {
	id int
	fn func(nav.Payload, bool)
}

type linkListener struct {
	id       int
	resolve  func(string) (nav.State, bool)
	dispatch func(nav.State)
}

// Host is a linear history with a current index. The zero value is not
// usable; call New.
type Host struct {
	entries  []Entry
	index    int
	deferred bool
	queue    []Entry

	nextID    int
	positions []positionListener
	links     []linkListener

	pushes   int
	replaces int
}

// New returns a host whose single entry is location, without payload.
func New(location string, opts ...Option) *Host {
	h := &Host{entries: []Entry{{URL: location}}}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Location implements nav.Host.
func (h *Host) Location() string {
	return h.entries[h.index].URL
}

// PushState implements nav.Host. Forward entries are discarded.
func (h *Host) PushState(payload nav.Payload, title, url string) {
	h.entries = append(h.entries[:h.index+1], Entry{Payload: payload, HasPayload: true, Title: title, URL: url})
	h.index++
	h.pushes++
}

// ReplaceState implements nav.Host.
func (h *Host) ReplaceState(payload nav.Payload, title, url string) {
	h.entries[h.index] = Entry{Payload: payload, HasPayload: true, Title: title, URL: url}
	h.replaces++
}

// Go implements nav.Host. Moves beyond either end are ignored, like in a
// browser.
func (h *Host) Go(delta int) {
	target := h.index + delta
	if delta == 0 || target < 0 || target >= len(h.entries) {
		return
	}
	h.index = target
	h.notify(h.entries[h.index])
}

// Back moves one entry back, as the user would.
func (h *Host) Back() { h.Go(-1) }

// Forward moves one entry forward, as the user would.
func (h *Host) Forward() { h.Go(1) }

// Visit appends an entry without payload, like a user editing the URL in
// place, and reports the move.
func (h *Host) Visit(url string) {
	h.entries = append(h.entries[:h.index+1], Entry{URL: url})
	h.index++
	h.notify(h.entries[h.index])
}

// CurrentPayload implements nav.Host.
func (h *Host) CurrentPayload() (nav.Payload, bool) {
	entry := h.entries[h.index]
	return entry.Payload, entry.HasPayload
}

// SubscribeToPositionChange implements nav.Host.
func (h *Host) SubscribeToPositionChange(fn func(nav.Payload, bool)) func() {
	h.nextID++
	id := h.nextID
	h.positions = append(h.positions, positionListener{id: id, fn: fn})
	return func() {
		h.positions = slices.DeleteFunc(h.positions, func(l positionListener) bool { return l.id == id })
	}
}

// SubscribeToLinkActivation implements nav.LinkInterceptor.
func (h *Host) SubscribeToLinkActivation(resolve func(string) (nav.State, bool), dispatch func(nav.State)) func() {
	h.nextID++
	id := h.nextID
	h.links = append(h.links, linkListener{id: id, resolve: resolve, dispatch: dispatch})
	return func() {
		h.links = slices.DeleteFunc(h.links, func(l linkListener) bool { return l.id == id })
	}
}

// Activate simulates a click on an in-app link. It reports whether an
// interceptor resolved href; unresolved links are left to the host.
func (h *Host) Activate(href string) bool {
	for _, l := range slices.Clone(h.links) {
		if state, ok := l.resolve(href); ok {
			l.dispatch(state)
			return true
		}
	}
	return false
}

// Flush delivers queued position changes and returns how many were
// delivered.
func (h *Host) Flush() int {
	delivered := 0
	for len(h.queue) > 0 {
		entry := h.queue[0]
		h.queue = h.queue[1:]
		h.deliver(entry)
		delivered++
	}
	return delivered
}

// Pending returns the number of queued position changes.
func (h *Host) Pending() int {
	return len(h.queue)
}

// Entries returns a copy of the history.
func (h *Host) Entries() []Entry {
	return slices.Clone(h.entries)
}

// Index returns the current entry index.
func (h *Host) Index() int {
	return h.index
}

// Len returns the number of entries.
func (h *Host) Len() int {
	return len(h.entries)
}

// Pushes returns the number of PushState calls.
func (h *Host) Pushes() int {
	return h.pushes
}

// Replaces returns the number of ReplaceState calls.
func (h *Host) Replaces() int {
	return h.replaces
}

func (h *Host) notify(entry Entry) {
	if h.deferred {
		h.queue = append(h.queue, entry)
		return
	}
	h.deliver(entry)
}

func (h *Host) deliver(entry Entry) {
	for _, l := range slices.Clone(h.positions) {
		l.fn(entry.Payload, entry.HasPayload)
	}
}

var (
	_ nav.Host            = (*Host)(nil)
	_ nav.LinkInterceptor = (*Host)(nil)
)
