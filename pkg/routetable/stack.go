package routetable

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/goliatone/go-navigator/tree"
)

const (
	// Recommended priorities for common route table layers. Higher numbers win.
	PriorityDefaults = 100
	PriorityApp      = 200
	PriorityTenant   = 300
	PriorityLocal    = 400
)

var (
	// ErrSourceRequired indicates a layer without a source label.
	ErrSourceRequired = errors.New("routetable: layer source must be provided")
	// ErrDuplicateSource indicates two layers share a source label.
	ErrDuplicateSource = errors.New("routetable: layer sources must be unique")
	// ErrPriorityOrder indicates two layers share a priority.
	ErrPriorityOrder = errors.New("routetable: layer priorities must be strictly ordered")
	// ErrEmptyStack indicates Merge was called without layers.
	ErrEmptyStack = errors.New("routetable: stack must include at least one layer")
)

// Layer is a route table tagged with where it came from and how strong it is.
type Layer struct {
	Source   string
	Priority int
	Table    Table
}

// Stack orders layers from strongest to weakest.
type Stack struct {
	layers []Layer
}

// NewStack validates and sorts layers so the highest priority comes first.
func NewStack(layers ...Layer) (*Stack, error) {
	seen := make(map[string]struct{}, len(layers))
	copied := make([]Layer, len(layers))
	for i, layer := range layers {
		if layer.Source == "" {
			return nil, ErrSourceRequired
		}
		if _, ok := seen[layer.Source]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSource, layer.Source)
		}
		seen[layer.Source] = struct{}{}
		copied[i] = layer
	}

	sort.SliceStable(copied, func(i, j int) bool {
		return copied[i].Priority > copied[j].Priority
	})
	for i := 1; i < len(copied); i++ {
		if copied[i-1].Priority == copied[i].Priority {
			return nil, fmt.Errorf("%w: %d", ErrPriorityOrder, copied[i].Priority)
		}
	}
	return &Stack{layers: copied}, nil
}

// LoadStack loads paths as layers of increasing priority.
func LoadStack(paths ...string) (*Stack, error) {
	layers := make([]Layer, 0, len(paths))
	for i, path := range paths {
		table, err := Load(path)
		if err != nil {
			return nil, err
		}
		layers = append(layers, Layer{Source: path, Priority: (i + 1) * PriorityDefaults, Table: table})
	}
	return NewStack(layers...)
}

// Layers returns the layers, strongest first.
func (s *Stack) Layers() []Layer {
	if s == nil {
		return nil
	}
	return append([]Layer(nil), s.layers...)
}

// Len returns the number of layers.
func (s *Stack) Len() int {
	if s == nil {
		return 0
	}
	return len(s.layers)
}

// Merge resolves the stack into a single table and validates it.
func (s *Stack) Merge() (Table, error) {
	if s.Len() == 0 {
		return Table{}, ErrEmptyStack
	}
	tables := make([]Table, len(s.layers))
	for i, layer := range s.layers {
		tables[len(s.layers)-1-i] = layer.Table
	}
	merged := Merge(tables...)
	if err := merged.Validate(); err != nil {
		return Table{}, err
	}
	return merged, nil
}

// Trace reports which layers define the top-level route name, strongest
// first. The first found entry is the definition Merge keeps.
func (s *Stack) Trace(name string) Trace {
	trace := Trace{Route: name}
	if s == nil {
		return trace
	}
	for _, layer := range s.layers {
		entry := Provenance{Source: layer.Source, Priority: layer.Priority}
		for _, route := range layer.Table.Routes {
			if route.Name == name {
				def := route
				entry.Found = true
				entry.Definition = &def
				break
			}
		}
		trace.Layers = append(trace.Layers, entry)
	}
	return trace
}

// Trace captures provenance for a top-level route across the stack.
type Trace struct {
	Route  string       `json:"route"`
	Layers []Provenance `json:"layers"`
}

// Provenance details how one layer contributed to a traced route.
type Provenance struct {
	Source     string      `json:"source"`
	Priority   int         `json:"priority"`
	Found      bool        `json:"found"`
	Definition *tree.Route `json:"definition,omitempty"`
}

// Winner returns the source whose definition is in effect, if any.
func (t Trace) Winner() (string, bool) {
	for _, layer := range t.Layers {
		if layer.Found {
			return layer.Source, true
		}
	}
	return "", false
}

// ToJSON serialises the trace for logging or transport.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON decodes a payload produced by ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}
