package nav

import (
	"fmt"
	"maps"
	"slices"

	"github.com/goliatone/go-navigator/tree"
	"github.com/goliatone/go-navigator/urlcodec"
)

// DefaultTree names the tree built from the routes given to New.
const DefaultTree = "default"

// AddTree builds a named route tree next to the active one. The tree is not
// used until SetActiveTree selects it.
func (n *Navigator) AddTree(name string, routes ...tree.Route) error {
	if name == "" {
		return n.fail("add_tree", name, fmt.Errorf("%w: tree name is required", ErrInvalidConfig))
	}
	if _, ok := n.trees[name]; ok {
		return n.fail("add_tree", name, ErrTreeExists)
	}
	t, err := tree.Build(routes, tree.WithLogger(n.logger))
	if err != nil {
		return n.fail("add_tree", name, err)
	}
	n.trees[name] = t
	return nil
}

// SetActiveTree switches route resolution and URL coding to the named tree.
// The current state is left as is; the next navigation resolves against the
// new tree.
func (n *Navigator) SetActiveTree(name string) error {
	t, ok := n.trees[name]
	if !ok {
		return n.fail("set_active_tree", name, ErrTreeNotFound)
	}
	if name == n.activeTree {
		return nil
	}
	n.tree = t
	n.codec = urlcodec.New(t, urlcodec.WithLogger(n.logger))
	n.logger.Info("route tree activated", "tree", name, "previous", n.activeTree, "routes", t.Len())
	n.activeTree = name
	return nil
}

// RemoveTree drops a named tree. The active tree cannot be removed.
func (n *Navigator) RemoveTree(name string) error {
	if _, ok := n.trees[name]; !ok {
		return n.fail("remove_tree", name, ErrTreeNotFound)
	}
	if name == n.activeTree {
		return n.fail("remove_tree", name, ErrTreeActive)
	}
	delete(n.trees, name)
	return nil
}

// ActiveTree returns the name of the tree routes resolve against.
func (n *Navigator) ActiveTree() string {
	return n.activeTree
}

// Trees lists the registered tree names in order.
func (n *Navigator) Trees() []string {
	return slices.Sorted(maps.Keys(n.trees))
}
