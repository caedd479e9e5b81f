package nav

import "maps"

// Source tags how a state was reached. It is bookkeeping only and never
// takes part in state equality.
type Source string

const (
	SourceDefault  Source = "default"
	SourceURL      Source = "url"
	SourceGo       Source = "go"
	SourcePopstate Source = "popstate"
)

// Meta carries transition bookkeeping.
type Meta struct {
	Source Source `json:"source,omitempty"`
}

// RouteParams is the parameter slice of a single route.
type RouteParams = map[string]string

// Params maps a full route path ("settings.profile") to its parameter slice.
type Params map[string]RouteParams

// Clone returns a deep copy with empty values and empty slices dropped.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for route, slice := range p {
		copied := make(RouteParams, len(slice))
		for key, value := range slice {
			if value != "" {
				copied[key] = value
			}
		}
		if len(copied) > 0 {
			out[route] = copied
		}
	}
	return out
}

// Get returns the value of key in route's slice.
func (p Params) Get(route, key string) string {
	return p[route][key]
}

// Route returns a copy of route's slice.
func (p Params) Route(route string) RouteParams {
	return maps.Clone(p[route])
}

// Equal compares two parameter sets after normalization.
func (p Params) Equal(other Params) bool {
	a, b := p.Clone(), other.Clone()
	if len(a) != len(b) {
		return false
	}
	for route, slice := range a {
		if !maps.Equal(slice, b[route]) {
			return false
		}
	}
	return true
}

// State is the canonical navigator state. Page and Modal hold full dotted
// route paths; an empty Modal means no overlay is open.
type State struct {
	Page   string `json:"page"`
	Modal  string `json:"modal,omitempty"`
	Params Params `json:"params,omitempty"`
	Meta   Meta   `json:"meta"`
}

// Equal reports structural equality, ignoring Meta.
func (s State) Equal(other State) bool {
	return s.Page == other.Page && s.Modal == other.Modal && s.Params.Equal(other.Params)
}

// Clone returns a deep copy with normalized params.
func (s State) Clone() State {
	s.Params = s.Params.Clone()
	return s
}

// Route returns the active route: the modal when one is open, else the page.
func (s State) Route() string {
	if s.Modal != "" {
		return s.Modal
	}
	return s.Page
}

// IsZero reports whether the state names no page.
func (s State) IsZero() bool {
	return s.Page == ""
}

func (s State) withSource(source Source) State {
	s = s.Clone()
	s.Meta.Source = source
	return s
}
