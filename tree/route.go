package tree

// ParamsCodec converts a route's parameter slice to or from a custom URL
// representation. Implementations must be pure and must not retain the map.
type ParamsCodec func(params map[string]string) map[string]string

// Route is the declarative definition of a route node. Route tables are
// written as nested Route values and can be decoded from JSON, YAML or TOML.
type Route struct {
	Name      string         `json:"name" yaml:"name" toml:"name" jsonschema:"required"`
	Params    []string       `json:"params,omitempty" yaml:"params,omitempty" toml:"params,omitempty"`
	SubRoute  bool           `json:"subRoute,omitempty" yaml:"subRoute,omitempty" toml:"subRoute,omitempty"`
	UpdateURL *bool          `json:"updateUrl,omitempty" yaml:"updateUrl,omitempty" toml:"updateUrl,omitempty"`
	Title     string         `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty"`
	Guard     string         `json:"guard,omitempty" yaml:"guard,omitempty" toml:"guard,omitempty"`
	Redirect  string         `json:"redirect,omitempty" yaml:"redirect,omitempty" toml:"redirect,omitempty"`
	Data      map[string]any `json:"data,omitempty" yaml:"data,omitempty" toml:"data,omitempty"`
	Children  []Route        `json:"children,omitempty" yaml:"children,omitempty" toml:"children,omitempty"`

	EncodeParams ParamsCodec `json:"-" yaml:"-" toml:"-"`
	DecodeParams ParamsCodec `json:"-" yaml:"-" toml:"-"`
}

// Node is a registered route. Nodes live in the tree arena and reference
// their parent and children by arena index.
type Node struct {
	Name           string
	Path           string
	RequiredParams []string
	SubRoute       bool
	UpdateURL      bool
	Title          string
	Guard          string
	Redirect       string
	Data           map[string]any
	EncodeParams   ParamsCodec
	DecodeParams   ParamsCodec

	index    int
	parent   int
	children []int
}

// Index returns the arena slot of the node.
func (n *Node) Index() int {
	return n.index
}

// TopLevel reports whether the node hangs directly off the synthetic root.
func (n *Node) TopLevel() bool {
	return n.parent == rootIndex
}

func newNode(route Route, parent *Node, index int) *Node {
	path := route.Name
	if parent != nil && parent.Path != "" {
		path = parent.Path + "." + route.Name
	}
	updateURL := true
	if route.UpdateURL != nil {
		updateURL = *route.UpdateURL
	}
	parentIndex := rootIndex
	if parent != nil {
		parentIndex = parent.index
	}
	return &Node{
		Name:           route.Name,
		Path:           path,
		RequiredParams: append([]string(nil), route.Params...),
		SubRoute:       route.SubRoute,
		UpdateURL:      updateURL,
		Title:          route.Title,
		Guard:          route.Guard,
		Redirect:       route.Redirect,
		Data:           copyData(route.Data),
		EncodeParams:   route.EncodeParams,
		DecodeParams:   route.DecodeParams,
		index:          index,
		parent:         parentIndex,
	}
}

func copyData(data map[string]any) map[string]any {
	if len(data) == 0 {
		return nil
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

// Bool returns a pointer to v, handy for Route.UpdateURL literals.
func Bool(v bool) *bool {
	return &v
}
