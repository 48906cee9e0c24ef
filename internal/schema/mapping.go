// Package schema derives a JSON Schema from an index doc mapping and
// validates search hits against it.
package schema

import (
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/usestring/quickwit-mcp/pkg/client"
)

// FromFieldMappings builds an object schema with one property per mapped
// field. Hits may omit fields and carry unmapped ones (dynamic mode), so no
// property is required and additional properties are allowed.
func FromFieldMappings(fields []client.FieldMapping) *jsonschema.Schema {
	s := &jsonschema.Schema{
		Type:       "object",
		Properties: jsonschema.NewProperties(),
	}
	for _, f := range fields {
		s.Properties.Set(f.Name, fieldSchema(f.Type))
	}
	return s
}

// fieldSchema maps a Quickwit field type to a schema. Unknown types match
// anything.
func fieldSchema(typ string) *jsonschema.Schema {
	if inner, ok := strings.CutPrefix(typ, "array<"); ok {
		return &jsonschema.Schema{
			Type:  "array",
			Items: fieldSchema(strings.TrimSuffix(inner, ">")),
		}
	}

	switch typ {
	case "text", "ip", "bytes":
		return &jsonschema.Schema{Type: "string"}
	case "i64", "u64":
		return &jsonschema.Schema{Type: "integer"}
	case "f64":
		return &jsonschema.Schema{Type: "number"}
	case "bool":
		return &jsonschema.Schema{Type: "boolean"}
	case "datetime":
		// Rendered as RFC 3339 or as an epoch number depending on the
		// output format of the field.
		return &jsonschema.Schema{AnyOf: []*jsonschema.Schema{
			{Type: "string"},
			{Type: "integer"},
		}}
	case "json", "object":
		return &jsonschema.Schema{Type: "object"}
	default:
		return &jsonschema.Schema{}
	}
}
