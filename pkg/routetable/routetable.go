// Package routetable loads navigator route tables and settings from JSON,
// YAML or TOML documents.
//
// A document has two top-level keys: "config" (nav.Config) and "routes"
// (a list of tree.Route). Several documents can be layered: settings of later
// documents win field by field, and a top-level route redefined by a later
// document replaces the earlier definition.
package routetable

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	nav "github.com/goliatone/go-navigator"
	"github.com/goliatone/go-navigator/internal/hydrate"
	"github.com/goliatone/go-navigator/layering"
	"github.com/goliatone/go-navigator/tree"
	"gopkg.in/yaml.v3"
)

// Supported formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

var (
	ErrUnknownFormat = hydrate.ErrUnknownFormat
	ErrEmptyDocument = hydrate.ErrEmptyDocument
)

// Table is a decoded route table document.
type Table struct {
	Config nav.Config   `json:"config" yaml:"config" toml:"config"`
	Routes []tree.Route `json:"routes" yaml:"routes" toml:"routes"`
}

// Options returns the navigator options carrying the table.
func (t Table) Options() []nav.Option {
	return []nav.Option{nav.WithConfig(t.Config), nav.WithRoutes(t.Routes...)}
}

// Validate checks the settings and builds a throwaway tree to check the
// route definitions.
func (t Table) Validate() error {
	if err := t.Config.Validate(); err != nil {
		return fmt.Errorf("routetable: %w", err)
	}
	if _, err := tree.Build(t.Routes); err != nil {
		return fmt.Errorf("routetable: %w", err)
	}
	return nil
}

// Load reads the document at path. The format follows the file extension.
func Load(path string) (Table, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Table{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("routetable: read %q: %w", path, err)
	}
	return Parse(data, format, path)
}

// LoadLayered loads paths in order and layers them. Later documents win.
func LoadLayered(paths ...string) (Table, error) {
	stack, err := LoadStack(paths...)
	if err != nil {
		return Table{}, err
	}
	return stack.Merge()
}

// FormatOf maps a file extension to a format.
func FormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, path)
	}
}

// Parse decodes data written in format. source labels errors.
func Parse(data []byte, format, source string) (Table, error) {
	return tableDecoder.DecodeBytes(hydrate.Context{Source: source, Format: format}, data)
}

var tableDecoder = hydrate.NewDecoder(
	hydrate.WithFormat[Table](FormatYAML, parseYAML),
	hydrate.WithFormat[Table](FormatTOML, parseTOML),
	hydrate.WithPreHook[Table](normalizeRoutes),
	hydrate.WithStrict[Table](),
	hydrate.WithPostHook[Table](validateTable),
)

func parseYAML(data []byte) (map[string]any, error) {
	doc := map[string]any{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func parseTOML(data []byte) (map[string]any, error) {
	doc := map[string]any{}
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// normalizeRoutes accepts a comma separated string for params and a map of
// name to definition for children, both common in hand written YAML and TOML.
func normalizeRoutes(_ hydrate.Context, payload map[string]any) (map[string]any, error) {
	routes, err := normalizeList(payload["routes"])
	if err != nil {
		return nil, err
	}
	if routes != nil {
		payload["routes"] = routes
	}
	return payload, nil
}

func normalizeList(value any) ([]any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []any:
		out := make([]any, 0, len(v))
		for _, item := range v {
			route, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("route must be a table, got %T", item)
			}
			normalized, err := normalizeRoute(route)
			if err != nil {
				return nil, err
			}
			out = append(out, normalized)
		}
		return out, nil
	case map[string]any:
		names := sortedKeys(v)
		items := make([]any, 0, len(names))
		for _, name := range names {
			route, ok := v[name].(map[string]any)
			if !ok {
				route = map[string]any{}
			}
			if _, set := route["name"]; !set {
				route["name"] = name
			}
			items = append(items, route)
		}
		return normalizeList(items)
	default:
		return nil, fmt.Errorf("routes must be a list or a table, got %T", value)
	}
}

func normalizeRoute(route map[string]any) (map[string]any, error) {
	if params, ok := route["params"].(string); ok {
		var keys []any
		for _, key := range strings.Split(params, ",") {
			if key = strings.TrimSpace(key); key != "" {
				keys = append(keys, key)
			}
		}
		route["params"] = keys
	}
	children, err := normalizeList(route["children"])
	if err != nil {
		return nil, fmt.Errorf("route %v: %w", route["name"], err)
	}
	if children != nil {
		route["children"] = children
	}
	return route, nil
}

func validateTable(ctx hydrate.Context, table *Table) error {
	if len(table.Routes) == 0 {
		return fmt.Errorf("%w: %q declares no routes", nav.ErrNoRoutesConfigured, ctx.Source)
	}
	return table.Validate()
}

// Merge layers tables from weakest to strongest.
func Merge(tables ...Table) Table {
	if len(tables) == 0 {
		return Table{}
	}
	configs := make([]nav.Config, len(tables))
	for i, table := range tables {
		configs[len(tables)-1-i] = table.Config
	}

	out := Table{Config: layering.MergeLayers(configs...)}
	index := map[string]int{}
	for _, table := range tables {
		for _, route := range table.Routes {
			if at, ok := index[route.Name]; ok {
				out.Routes[at] = route
				continue
			}
			index[route.Name] = len(out.Routes)
			out.Routes = append(out.Routes, route)
		}
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
