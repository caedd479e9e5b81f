package tree

import (
	"errors"
	"testing"
)

func sampleRoutes() []Route {
	return []Route{
		{Name: "home"},
		{
			Name:   "a",
			Params: []string{"x"},
			Children: []Route{
				{
					Name:   "b",
					Params: []string{"y"},
					Children: []Route{
						{Name: "c"},
					},
				},
				{Name: "d", SubRoute: true, UpdateURL: Bool(false)},
			},
		},
	}
}

func mustBuild(t *testing.T, routes []Route) *Tree {
	t.Helper()
	tr, err := Build(routes)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return tr
}

func TestGetRouteNodeResolvesDottedAndPlainNames(t *testing.T) {
	tr := mustBuild(t, sampleRoutes())

	node, err := tr.GetRouteNode("a.b.c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if node.Path != "a.b.c" || node.Name != "c" {
		t.Fatalf("unexpected node %+v", node)
	}

	plain, err := tr.GetRouteNode("c")
	if err != nil {
		t.Fatalf("plain lookup: %v", err)
	}
	if plain != node {
		t.Fatalf("expected plain lookup to return the same node")
	}

	if _, err := tr.GetRouteNode("a.c"); !errors.Is(err, ErrRouteNotRegistered) {
		t.Fatalf("expected ErrRouteNotRegistered for skipped level, got %v", err)
	}
	if _, err := tr.GetRouteNode(""); !errors.Is(err, ErrRouteNotRegistered) {
		t.Fatalf("expected ErrRouteNotRegistered for empty name, got %v", err)
	}
}

func TestPlainNameReturnsFirstDepthFirstMatch(t *testing.T) {
	tr := mustBuild(t, []Route{
		{Name: "left", Children: []Route{{Name: "item"}}},
		{Name: "right", Children: []Route{{Name: "item"}}},
	})
	node, err := tr.GetRouteNode("item")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if node.Path != "left.item" {
		t.Fatalf("expected first depth-first match left.item, got %s", node.Path)
	}
	right, err := tr.GetRouteNode("right.item")
	if err != nil || right.Path != "right.item" {
		t.Fatalf("expected dotted path to disambiguate, got %v %v", right, err)
	}
}

func TestActiveNodesRootToLeaf(t *testing.T) {
	tr := mustBuild(t, sampleRoutes())
	chain, err := tr.ActiveNodes("a.b.c")
	if err != nil {
		t.Fatalf("active nodes: %v", err)
	}
	want := []string{"a", "a.b", "a.b.c"}
	if len(chain) != len(want) {
		t.Fatalf("expected %d nodes, got %d", len(want), len(chain))
	}
	for i, path := range want {
		if chain[i].Path != path {
			t.Fatalf("chain[%d] = %s, want %s", i, chain[i].Path, path)
		}
	}
}

func TestRequiredParamsLeafToRoot(t *testing.T) {
	tr := mustBuild(t, sampleRoutes())
	node, _ := tr.GetRouteNode("a.b.c")
	got := tr.RequiredParams(node)
	if len(got) != 2 || got[0] != "y" || got[1] != "x" {
		t.Fatalf("expected [y x], got %v", got)
	}
}

func TestNodeFlagsAndParent(t *testing.T) {
	tr := mustBuild(t, sampleRoutes())
	d, _ := tr.GetRouteNode("a.d")
	if !d.SubRoute || d.UpdateURL {
		t.Fatalf("expected subroute without url updates, got %+v", d)
	}
	if parent := tr.Parent(d); parent == nil || parent.Path != "a" {
		t.Fatalf("expected parent a, got %+v", parent)
	}
	a, _ := tr.GetRouteNode("a")
	if !a.TopLevel() || tr.Parent(a) != nil {
		t.Fatalf("expected a to be top-level")
	}
	home, _ := tr.GetRouteNode("home")
	if !home.UpdateURL {
		t.Fatalf("expected UpdateURL to default to true")
	}
}

func TestAddUnderParent(t *testing.T) {
	tr := mustBuild(t, sampleRoutes())
	if err := tr.Add(Route{Name: "e"}, "a.b"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if !tr.Has("a.b.e") {
		t.Fatalf("expected a.b.e to be registered")
	}
	if err := tr.Add(Route{Name: "z"}, "missing"); !errors.Is(err, ErrParentNotFound) {
		t.Fatalf("expected ErrParentNotFound, got %v", err)
	}
	if err := tr.Add(Route{Name: "e"}, "a.b"); !errors.Is(err, ErrDuplicateRoute) {
		t.Fatalf("expected ErrDuplicateRoute, got %v", err)
	}
}

func TestAddRejectsInvalidDefinitions(t *testing.T) {
	cases := []struct {
		name  string
		route Route
		want  error
	}{
		{"empty", Route{}, ErrInvalidRoute},
		{"dotted", Route{Name: "a.b"}, ErrInvalidRoute},
		{"reserved page", Route{Name: "p"}, ErrReservedParam},
		{"reserved modal", Route{Name: "m"}, ErrReservedParam},
		{"dotted param", Route{Name: "x", Params: []string{"a.b"}}, ErrInvalidParams},
		{"duplicate children", Route{Name: "x", Children: []Route{{Name: "y"}, {Name: "y"}}}, ErrDuplicateRoute},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := New()
			if err := tr.Add(tc.route, ""); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if tr.Len() != 0 {
				t.Fatalf("expected nothing inserted, got %d nodes", tr.Len())
			}
		})
	}
}

func TestReservedNamesAllowedBelowTopLevel(t *testing.T) {
	tr := New()
	if err := tr.Add(Route{Name: "x", Children: []Route{{Name: "p"}}}, ""); err != nil {
		t.Fatalf("expected nested p to be accepted, got %v", err)
	}
}

func TestRemove(t *testing.T) {
	tr := mustBuild(t, sampleRoutes())

	if err := tr.Remove("a.b"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if tr.Has("a.b") || tr.Has("a.b.c") || tr.Has("c") {
		t.Fatalf("expected subtree a.b removed")
	}
	if !tr.Has("a.d") {
		t.Fatalf("expected sibling a.d to remain")
	}

	if err := tr.Remove("missing.child"); !errors.Is(err, ErrParentNotFound) {
		t.Fatalf("expected ErrParentNotFound, got %v", err)
	}
	if err := tr.Remove("a.nope"); !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("expected ErrNodeNotFound, got %v", err)
	}
	if err := tr.Remove("nope"); !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("expected ErrNodeNotFound, got %v", err)
	}
	if err := tr.Remove("home"); err != nil {
		t.Fatalf("remove top-level: %v", err)
	}
	if first := tr.First(); first == nil || first.Path != "a" {
		t.Fatalf("expected a to become first route, got %+v", first)
	}
}

func TestWalkOrderAndLen(t *testing.T) {
	tr := mustBuild(t, sampleRoutes())
	var paths []string
	tr.Walk(func(n *Node) bool {
		paths = append(paths, n.Path)
		return true
	})
	want := []string{"home", "a", "a.b", "a.b.c", "a.d"}
	if len(paths) != len(want) {
		t.Fatalf("expected %v, got %v", want, paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, paths)
		}
	}
	if tr.Len() != 5 {
		t.Fatalf("expected 5 nodes, got %d", tr.Len())
	}
	if len(tr.Children(nil)) != 2 {
		t.Fatalf("expected two top-level routes")
	}
}

func TestNodeDataIsCopied(t *testing.T) {
	data := map[string]any{"panel": true}
	tr := mustBuild(t, []Route{{Name: "x", Data: data}})
	data["panel"] = false
	node, _ := tr.GetRouteNode("x")
	if node.Data["panel"] != true {
		t.Fatalf("expected node data to be detached from the definition")
	}
}
