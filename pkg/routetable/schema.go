package routetable

import (
	"encoding/json"
	"reflect"

	"github.com/goliatone/go-navigator/pkg/activity"
	"github.com/goliatone/go-navigator/tree"
	"github.com/invopop/jsonschema"
)

var activityPkg = reflect.TypeOf(activity.Config{}).PkgPath()

// Schema returns a JSON Schema describing route table documents. Editors can
// use it to validate YAML, TOML or JSON tables before they reach Load.
func Schema() *jsonschema.Schema {
	reflector := &jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		Namer: func(t reflect.Type) string {
			if t.PkgPath() == activityPkg {
				return "Activity" + t.Name()
			}
			return t.Name()
		},
	}
	schema := reflector.Reflect(&Table{})

	// Parse also accepts the shorthand forms normalizeRoute rewrites.
	if route, ok := schema.Definitions[reflect.TypeOf(tree.Route{}).Name()]; ok && route.Properties != nil {
		ref := &jsonschema.Schema{Ref: "#/$defs/Route"}
		route.Properties.Set("params", &jsonschema.Schema{OneOf: []*jsonschema.Schema{
			{Type: "array", Items: &jsonschema.Schema{Type: "string"}},
			{Type: "string", Description: "comma separated parameter names"},
		}})
		route.Properties.Set("children", &jsonschema.Schema{OneOf: []*jsonschema.Schema{
			{Type: "array", Items: ref},
			{Type: "object", AdditionalProperties: ref, Description: "routes keyed by name"},
		}})
	}
	return schema
}

// SchemaJSON renders Schema as indented JSON.
func SchemaJSON() ([]byte, error) {
	return json.MarshalIndent(Schema(), "", "  ")
}
