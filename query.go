package nav

import (
	"github.com/goliatone/go-navigator/tree"
	"github.com/goliatone/go-navigator/urlcodec"
)

// State returns a copy of the current state.
func (n *Navigator) State() State {
	return n.state.Clone()
}

// PrevState returns a copy of the state before the last commit.
func (n *Navigator) PrevState() State {
	return n.prev.Clone()
}

// History returns a copy of the history stack.
func (n *Navigator) History() []HistoryRecord {
	return n.stack.list()
}

// Pointer returns the index of the current history record.
func (n *Navigator) Pointer() int {
	return n.stack.pointer
}

// SessionID returns the browser session id, empty before Start.
func (n *Navigator) SessionID() string {
	return n.stack.session
}

// Started reports whether Start succeeded and Stop has not been called.
func (n *Navigator) Started() bool {
	return n.started
}

// Tree exposes the route tree for read access.
func (n *Navigator) Tree() *tree.Tree {
	return n.tree
}

// Add registers routes under parent, or at the top level when parent is
// empty.
func (n *Navigator) Add(parent string, routes ...tree.Route) error {
	if err := n.tree.AddRoutes(routes, parent); err != nil {
		return n.fail("add", parent, err)
	}
	return nil
}

// Remove unregisters route and its subtree. The current state is left as is.
func (n *Navigator) Remove(route string) error {
	if err := n.tree.Remove(route); err != nil {
		return n.fail("remove", route, err)
	}
	return nil
}

// BuildURL returns the URL the navigator would write for a navigation to
// route with params from the current state.
func (n *Navigator) BuildURL(route string, params RouteParams) (string, error) {
	res, err := n.makeState(route, params, n.state)
	if err != nil {
		return "", n.fail("build_url", route, err)
	}
	return n.urlFor(res.State), nil
}

// ResolveLink maps an in-app href to a state. Links without a registered page
// do not resolve.
func (n *Navigator) ResolveLink(href string) (State, bool) {
	query, err := n.codec.Decode(urlcodec.ExtractQuery(href, n.cfg.UseHash))
	if err != nil {
		return State{}, false
	}
	page, err := n.tree.GetRouteNode(query.Page)
	if err != nil {
		return State{}, false
	}
	state := State{Page: page.Path, Params: query.Params, Meta: Meta{Source: SourceURL}}
	if query.Modal != "" {
		modal, err := n.tree.GetRouteNode(query.Modal)
		if err != nil {
			return State{}, false
		}
		state.Modal = modal.Path
	}
	return state.Clone(), true
}

// dispatchLink navigates to a resolved link. The page is reached first when
// it differs from the current one; an overlay then opens over it.
func (n *Navigator) dispatchLink(state State) {
	if !n.started {
		return
	}
	if state.Page != n.state.Page || state.Modal == "" {
		if err := n.Go(state.Page, n.flatten(state.Page, state.Params)); err != nil {
			n.logger.Warn("link dispatch failed", "route", state.Page, "error", err)
			return
		}
	}
	if state.Modal != "" {
		if err := n.Go(state.Modal, state.Params.Route(state.Modal)); err != nil {
			n.logger.Warn("link dispatch failed", "route", state.Modal, "error", err)
		}
	}
}

// flatten folds the slices of route's active chain into one explicit param
// set, deeper routes winning.
func (n *Navigator) flatten(route string, params Params) RouteParams {
	chain, err := n.tree.ActiveNodes(route)
	if err != nil {
		return params.Route(route)
	}
	out := RouteParams{}
	for _, node := range chain {
		for key, value := range params[node.Path] {
			out[key] = value
		}
	}
	return out
}
