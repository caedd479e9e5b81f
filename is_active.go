package nav

import "slices"

// IsActiveOption tunes IsActive.
type IsActiveOption func(*isActiveOptions)

type isActiveOptions struct {
	strict            bool
	ignoreQueryParams bool
}

// NonStrict also matches when route is an active ancestor of the current
// state, or an active route whose params are contained in the state.
func NonStrict() IsActiveOption {
	return func(o *isActiveOptions) {
		o.strict = false
	}
}

// IgnoreQueryParams compares only the required params of route.
func IgnoreQueryParams() IsActiveOption {
	return func(o *isActiveOptions) {
		o.ignoreQueryParams = true
	}
}

// IsActive reports whether navigating to route with params would land on the
// current state. Unknown routes are never active.
func (n *Navigator) IsActive(route string, params RouteParams, opts ...IsActiveOption) bool {
	options := isActiveOptions{strict: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	node, err := n.tree.GetRouteNode(route)
	if err != nil {
		return false
	}
	compare := params
	if options.ignoreQueryParams {
		required := n.tree.RequiredParams(node)
		compare = RouteParams{}
		for key, value := range params {
			if slices.Contains(required, key) {
				compare[key] = value
			}
		}
	}

	res, err := n.makeState(route, compare, n.state)
	if err != nil {
		return false
	}
	same := n.state.Equal(res.State)
	if options.strict {
		return same
	}
	if same {
		return true
	}

	active := n.activeNode(node.Path)
	if len(compare) == 0 {
		return active
	}
	return active && n.stateCarries(res.State.Params)
}

// activeNode reports whether path is on the active chain of the page or the
// modal.
func (n *Navigator) activeNode(path string) bool {
	for _, route := range []string{n.state.Page, n.state.Modal} {
		if route == "" {
			continue
		}
		chain, err := n.tree.ActiveNodes(route)
		if err != nil {
			continue
		}
		for _, node := range chain {
			if node.Path == path {
				return true
			}
		}
	}
	return false
}

// stateCarries reports whether every param in want is present with the same
// value in the current state.
func (n *Navigator) stateCarries(want Params) bool {
	for route, slice := range want {
		for key, value := range slice {
			if n.state.Params.Get(route, key) != value {
				return false
			}
		}
	}
	return true
}
