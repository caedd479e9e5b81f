// Package tree implements the route registry used by the navigator. Routes
// form a forest under a synthetic root and are addressed by dotted paths
// ("settings.profile"), one segment per level.
//
// Nodes are stored in an arena and reference each other by index, so the
// parent link used for upward traversal never owns the parent. All traversals
// use explicit worklists.
package tree

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

const rootIndex = 0

var (
	// ErrRouteNotRegistered indicates a lookup for an unknown route.
	ErrRouteNotRegistered = errors.New("tree: route is not registered")
	// ErrParentNotFound indicates the parent of an add/remove is unknown.
	ErrParentNotFound = errors.New("tree: parent does not exist")
	// ErrNodeNotFound indicates the node to remove is not a child of its parent.
	ErrNodeNotFound = errors.New("tree: node to remove does not exist")
	// ErrDuplicateRoute indicates a sibling with the same name already exists.
	ErrDuplicateRoute = errors.New("tree: route already registered under parent")
	// ErrInvalidRoute indicates a malformed route definition.
	ErrInvalidRoute = errors.New("tree: invalid route definition")
	// ErrReservedParam indicates a route name collides with a reserved URL key.
	ErrReservedParam = errors.New("tree: name collides with a reserved url key")
	// ErrInvalidParams indicates a malformed required parameter key.
	ErrInvalidParams = errors.New("tree: invalid route params")
)

// ReservedKeys are the query keys owned by the navigator (page and modal).
var ReservedKeys = []string{"p", "m"}

// Tree is the route arena. The zero value is not usable; call New.
type Tree struct {
	nodes  []*Node
	logger *slog.Logger
}

// Option configures a Tree.
type Option func(*Tree)

// WithLogger routes tree diagnostics (shadowed names, rejected routes) to
// logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tree) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// New returns an empty tree holding only the synthetic root.
func New(opts ...Option) *Tree {
	t := &Tree{
		nodes:  []*Node{{index: rootIndex, parent: -1}},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

// Build creates a tree from a route table, adding routes in definition order.
func Build(routes []Route, opts ...Option) (*Tree, error) {
	t := New(opts...)
	if err := t.AddRoutes(routes, ""); err != nil {
		return t, err
	}
	return t, nil
}

// AddRoutes adds routes in order under parentName, stopping at the first
// failure.
func (t *Tree) AddRoutes(routes []Route, parentName string) error {
	for _, route := range routes {
		if err := t.Add(route, parentName); err != nil {
			return err
		}
	}
	return nil
}

type pending struct {
	route  Route
	parent *Node
}

// Add inserts route, including its children, under parentName. An empty
// parentName inserts under the synthetic root. The whole definition is
// validated before anything is inserted.
func (t *Tree) Add(route Route, parentName string) error {
	parent := t.root()
	if parentName != "" {
		node, err := t.GetRouteNode(parentName)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrParentNotFound, parentName)
		}
		parent = node
	}
	if err := t.validate(route, parent); err != nil {
		t.logger.Error("route rejected", "route", route.Name, "parent", parent.Path, "error", err)
		return err
	}

	queue := []pending{{route: route, parent: parent}}
	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		if shadowed := t.findByName(item.route.Name); shadowed != nil {
			t.logger.Warn("route name shadows an existing route, use the dotted path to address it",
				"route", item.route.Name,
				"existing", shadowed.Path,
			)
		}

		node := newNode(item.route, item.parent, len(t.nodes))
		t.nodes = append(t.nodes, node)
		item.parent.children = append(item.parent.children, node.index)

		for _, child := range item.route.Children {
			queue = append(queue, pending{route: child, parent: node})
		}
	}
	return nil
}

func (t *Tree) validate(route Route, parent *Node) error {
	if t.child(parent, route.Name) != nil {
		return fmt.Errorf("%w: %s", ErrDuplicateRoute, joinPath(parent.Path, route.Name))
	}
	type check struct {
		route    Route
		topLevel bool
		path     string
	}
	stack := []check{{route: route, topLevel: parent.index == rootIndex, path: joinPath(parent.Path, route.Name)}}
	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		name := item.route.Name
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: empty name under %q", ErrInvalidRoute, parent.Path)
		}
		if strings.Contains(name, ".") {
			return fmt.Errorf("%w: name %q must not contain '.'", ErrInvalidRoute, name)
		}
		if item.topLevel && isReserved(name) {
			return fmt.Errorf("%w: %s", ErrReservedParam, name)
		}
		for _, key := range item.route.Params {
			if key == "" || strings.Contains(key, ".") {
				return fmt.Errorf("%w: route %s param %q", ErrInvalidParams, item.path, key)
			}
		}

		seen := make(map[string]struct{}, len(item.route.Children))
		for _, child := range item.route.Children {
			if _, ok := seen[child.Name]; ok {
				return fmt.Errorf("%w: %s", ErrDuplicateRoute, joinPath(item.path, child.Name))
			}
			seen[child.Name] = struct{}{}
			stack = append(stack, check{route: child, path: joinPath(item.path, child.Name)})
		}
	}
	return nil
}

// Remove deletes the named node and its subtree.
func (t *Tree) Remove(name string) error {
	parent := t.root()
	segment := name
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		node, err := t.GetRouteNode(name[:idx])
		if err != nil {
			return fmt.Errorf("%w: %s", ErrParentNotFound, name[:idx])
		}
		parent = node
		segment = name[idx+1:]
	} else if node := t.findByName(name); node != nil {
		parent = t.nodes[node.parent]
	}

	target := t.child(parent, segment)
	if target == nil {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, name)
	}

	kept := parent.children[:0]
	for _, idx := range parent.children {
		if idx != target.index {
			kept = append(kept, idx)
		}
	}
	parent.children = kept

	stack := []int{target.index}
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		stack = append(stack, t.nodes[idx].children...)
		t.nodes[idx] = nil
	}
	return nil
}

// GetRouteNode resolves name to a node. Dotted names are matched one segment
// per level; plain names return the first depth-first match in the tree.
func (t *Tree) GetRouteNode(name string) (*Node, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty route name", ErrRouteNotRegistered)
	}
	if !strings.Contains(name, ".") {
		if node := t.findByName(name); node != nil {
			return node, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrRouteNotRegistered, name)
	}

	current := t.root()
	for _, segment := range strings.Split(name, ".") {
		current = t.child(current, segment)
		if current == nil {
			return nil, fmt.Errorf("%w: %s", ErrRouteNotRegistered, name)
		}
	}
	return current, nil
}

// Has reports whether name resolves to a registered route.
func (t *Tree) Has(name string) bool {
	_, err := t.GetRouteNode(name)
	return err == nil
}

// ActiveNodes returns the chain from the top-level ancestor down to the node
// resolved by name. The synthetic root is excluded.
func (t *Tree) ActiveNodes(name string) ([]*Node, error) {
	node, err := t.GetRouteNode(name)
	if err != nil {
		return nil, err
	}
	var chain []*Node
	for current := node; current != nil && current.index != rootIndex; current = t.nodes[current.parent] {
		chain = append(chain, current)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// RequiredParams concatenates the required params of node and all of its
// ancestors, ordered leaf to root.
func (t *Tree) RequiredParams(node *Node) []string {
	var keys []string
	for current := node; current != nil && current.index != rootIndex; current = t.nodes[current.parent] {
		keys = append(keys, current.RequiredParams...)
	}
	return keys
}

// Parent returns the parent of node, or nil for top-level nodes.
func (t *Tree) Parent(node *Node) *Node {
	if node == nil || node.parent <= rootIndex {
		return nil
	}
	return t.nodes[node.parent]
}

// Children returns the children of node in insertion order. A nil node
// returns the top-level routes.
func (t *Tree) Children(node *Node) []*Node {
	if node == nil {
		node = t.root()
	}
	out := make([]*Node, 0, len(node.children))
	for _, idx := range node.children {
		out = append(out, t.nodes[idx])
	}
	return out
}

// First returns the first top-level route, or nil when the tree is empty.
func (t *Tree) First() *Node {
	root := t.root()
	if len(root.children) == 0 {
		return nil
	}
	return t.nodes[root.children[0]]
}

// Len returns the number of registered routes.
func (t *Tree) Len() int {
	count := 0
	t.Walk(func(*Node) bool {
		count++
		return true
	})
	return count
}

// Walk visits every node depth-first in insertion order until fn returns
// false.
func (t *Tree) Walk(fn func(*Node) bool) {
	root := t.root()
	stack := reversed(root.children)
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := t.nodes[idx]
		if !fn(node) {
			return
		}
		stack = append(stack, reversed(node.children)...)
	}
}

func (t *Tree) root() *Node {
	return t.nodes[rootIndex]
}

func (t *Tree) child(parent *Node, name string) *Node {
	for _, idx := range parent.children {
		if node := t.nodes[idx]; node != nil && node.Name == name {
			return node
		}
	}
	return nil
}

func (t *Tree) findByName(name string) *Node {
	var found *Node
	t.Walk(func(node *Node) bool {
		if node.Name == name {
			found = node
			return false
		}
		return true
	})
	return found
}

func reversed(indexes []int) []int {
	out := make([]int, len(indexes))
	for i, idx := range indexes {
		out[len(indexes)-1-i] = idx
	}
	return out
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

func isReserved(name string) bool {
	for _, key := range ReservedKeys {
		if key == name {
			return true
		}
	}
	return false
}
