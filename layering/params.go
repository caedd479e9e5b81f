package layering

import "slices"

// Params maps a route path to that route's parameter slice.
type Params = map[string]map[string]string

// Source identifies where a parameter layer came from. Higher sources win.
type Source int

const (
	// SourceUnknown marks a layer without provenance; it is ignored.
	SourceUnknown Source = iota
	// SourcePrevious holds the slices of the state being navigated away from.
	SourcePrevious
	// SourceInherited holds required keys folded from the active route chain.
	SourceInherited
	// SourceExplicit holds the params passed with the navigation call.
	SourceExplicit
)

func (s Source) String() string {
	switch s {
	case SourcePrevious:
		return "previous"
	case SourceInherited:
		return "inherited"
	case SourceExplicit:
		return "explicit"
	default:
		return "unknown"
	}
}

// ParseSource converts a string into a Source.
func ParseSource(value string) Source {
	switch value {
	case "previous", "PREVIOUS":
		return SourcePrevious
	case "inherited", "INHERITED":
		return SourceInherited
	case "explicit", "EXPLICIT":
		return SourceExplicit
	default:
		return SourceUnknown
	}
}

// Layer is one parameter snapshot tagged with its source.
type Layer struct {
	Source Source
	Params Params
}

// Chain orders layers from strongest to weakest. Only the first layer of each
// source is kept.
type Chain struct {
	ordered []Layer
}

// NewChain builds a chain from layers given in any order.
func NewChain(layers ...Layer) Chain {
	filtered := make([]Layer, 0, len(layers))
	seen := map[Source]struct{}{}
	for _, layer := range layers {
		if layer.Source == SourceUnknown {
			continue
		}
		if _, ok := seen[layer.Source]; ok {
			continue
		}
		seen[layer.Source] = struct{}{}
		filtered = append(filtered, layer)
	}
	slices.SortStableFunc(filtered, func(a, b Layer) int {
		return int(b.Source) - int(a.Source)
	})
	return Chain{ordered: filtered}
}

// Layers returns the chain from strongest to weakest.
func (c Chain) Layers() []Layer {
	return slices.Clone(c.ordered)
}

// Merge collapses the chain. See Merge.
func (c Chain) Merge() Params {
	params := make([]Params, len(c.ordered))
	for i, layer := range c.ordered {
		params[i] = layer.Params
	}
	return Merge(params...)
}

// Merge deep merges route parameter maps ordered from strongest to weakest.
// Route slices merge key by key. An empty value in a stronger layer clears the
// key, and routes left without keys are dropped.
func Merge(layers ...Params) Params {
	out := make(Params)
	for i := len(layers) - 1; i >= 0; i-- {
		for route, slice := range layers[i] {
			if slice == nil {
				continue
			}
			merged, ok := out[route]
			if !ok {
				merged = make(map[string]string, len(slice))
				out[route] = merged
			}
			for key, value := range slice {
				if value == "" {
					delete(merged, key)
					continue
				}
				merged[key] = value
			}
		}
	}
	for route, slice := range out {
		if len(slice) == 0 {
			delete(out, route)
		}
	}
	return out
}

// Pick copies keys of route's slice in source into a new single-route layer.
// Missing or empty keys are skipped.
func Pick(source Params, route string, keys []string) Params {
	slice := source[route]
	picked := make(map[string]string, len(keys))
	for _, key := range keys {
		if value := slice[key]; value != "" {
			picked[key] = value
		}
	}
	if len(picked) == 0 {
		return Params{}
	}
	return Params{route: picked}
}
