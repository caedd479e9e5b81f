package nav

import "slices"

// Redirect names a replacing navigation requested by a lifecycle handler.
type Redirect struct {
	Name   string
	Params RouteParams
}

// Done is passed to a handler's done callback.
type Done struct {
	Redirect *Redirect
}

// Handler runs after a state naming its route commits and before the
// transition is broadcast. Calling done with a redirect replaces the new state
// once the handler returns.
type Handler func(next, prev State, done func(Done))

type handlerEntry struct {
	id int
	fn Handler
}

// CanActivate registers handler for route. Handlers run for the active route:
// the modal when an overlay is open, else the page.
func (n *Navigator) CanActivate(route string, handler Handler) (remove func(), err error) {
	node, err := n.tree.GetRouteNode(route)
	if err != nil {
		return func() {}, n.fail("can_activate", route, err)
	}
	if handler == nil {
		return func() {}, nil
	}
	n.nextHandler++
	id := n.nextHandler
	path := node.Path
	n.handlers[path] = append(n.handlers[path], handlerEntry{id: id, fn: handler})
	return func() {
		n.handlers[path] = slices.DeleteFunc(n.handlers[path], func(h handlerEntry) bool {
			return h.id == id
		})
		if len(n.handlers[path]) == 0 {
			delete(n.handlers, path)
		}
	}, nil
}

// runHandlers invokes the handlers of route for the current commit. The first
// redirect requested wins and stops the remaining handlers.
func (n *Navigator) runHandlers(route string) (Redirect, bool) {
	entries := slices.Clone(n.handlers[route])
	if len(entries) == 0 {
		return Redirect{}, false
	}
	var pending *Redirect
	done := func(d Done) {
		if d.Redirect != nil && pending == nil {
			redirect := *d.Redirect
			pending = &redirect
		}
	}
	next, prev := n.state.Clone(), n.prev.Clone()
	for _, entry := range entries {
		entry.fn(next, prev, done)
		if pending != nil {
			return *pending, true
		}
	}
	return Redirect{}, false
}
