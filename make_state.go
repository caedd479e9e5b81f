package nav

import (
	"fmt"
	"slices"
	"strings"

	"github.com/goliatone/go-navigator/layering"
	"github.com/goliatone/go-navigator/tree"
)

// resolution is a navigation intent turned into a full state.
type resolution struct {
	State       State
	Node        *tree.Node
	ActiveNodes []*tree.Node
	Encode      tree.ParamsCodec
	Decode      tree.ParamsCodec
}

// makeState builds the state reached by navigating to route with params from
// prev. Required params of the active chain are inherited from prev for
// nested targets; explicit params win. Subroutes open as a modal over the
// previous page and keep its params.
func (n *Navigator) makeState(route string, params RouteParams, prev State) (resolution, error) {
	if err := checkParamKeys(route, params); err != nil {
		return resolution{}, err
	}
	node, err := n.tree.GetRouteNode(route)
	if err != nil {
		return resolution{}, err
	}
	chain, err := n.tree.ActiveNodes(node.Path)
	if err != nil {
		return resolution{}, err
	}

	explicit := scopeExplicit(node, chain, params)
	var inherited layering.Params
	if !node.TopLevel() {
		picks := make([]layering.Params, 0, len(chain))
		for _, active := range chain {
			picks = append(picks, layering.Pick(prev.Params, active.Path, active.RequiredParams))
		}
		inherited = layering.Merge(picks...)
	}

	next := State{}
	if node.SubRoute {
		next.Page = prev.Page
		next.Modal = node.Path
		next.Params = layering.NewChain(
			layering.Layer{Source: layering.SourceExplicit, Params: explicit},
			layering.Layer{Source: layering.SourceInherited, Params: inherited},
			layering.Layer{Source: layering.SourcePrevious, Params: prev.Params},
		).Merge()
		if next.Page == "" {
			// A subroute reached without a page underneath opens over its
			// parent.
			if parent := n.tree.Parent(node); parent != nil {
				next.Page = parent.Path
			}
		}
	} else {
		next.Page = node.Path
		next.Params = layering.Merge(explicit, inherited)
	}
	next.Params = next.Params.Clone()

	return resolution{
		State:       next,
		Node:        node,
		ActiveNodes: chain,
		Encode:      node.EncodeParams,
		Decode:      node.DecodeParams,
	}, nil
}

// checkParamKeys rejects keys the URL codec cannot round-trip: dots separate
// the route path from the key.
func checkParamKeys(route string, params RouteParams) error {
	for key := range params {
		if key == "" || strings.Contains(key, ".") {
			return fmt.Errorf("%w: route %s param %q", ErrInvalidParams, route, key)
		}
	}
	return nil
}

// scopeExplicit assigns explicit params to routes. Subroutes own everything
// passed to them; otherwise each key goes to the deepest chain node requiring
// it, falling back to the target.
func scopeExplicit(node *tree.Node, chain []*tree.Node, params RouteParams) layering.Params {
	out := layering.Params{}
	for key, value := range params {
		owner := node.Path
		if !node.SubRoute {
			for i := len(chain) - 1; i >= 0; i-- {
				if slices.Contains(chain[i].RequiredParams, key) {
					owner = chain[i].Path
					break
				}
			}
		}
		if out[owner] == nil {
			out[owner] = map[string]string{}
		}
		out[owner][key] = value
	}
	return out
}
