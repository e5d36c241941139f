package blueprint

import (
	"github.com/jarch-dev/blueprint/jsonschema"
)

// JSONSchema exports the registry as a JSON Schema. Dynamic rules are
// resolved against snapshot, so the field-type enum lists the entity names
// it holds; a nil snapshot exports the primitives only.
func (r *Registry) JSONSchema(snapshot *Node) *jsonschema.Schema {
	s := r.schemaAt(Path{}, snapshot)
	s.SchemaURI = jsonschema.Draft
	s.Title = r.name
	return s
}

// JSONSchema exports the schema of d's kind resolved against d.
func (d *Document) JSONSchema() *jsonschema.Schema {
	return d.kind.Registry().JSONSchema(d.root)
}

func (r *Registry) schemaAt(p Path, snapshot *Node) *jsonschema.Schema {
	spec, ok := r.Lookup(p, snapshot)
	if !ok {
		return &jsonschema.Schema{}
	}
	switch spec.Kind {
	case KindObject:
		out := &jsonschema.Schema{Type: "object", Properties: map[string]*jsonschema.Schema{}, AdditionalProperties: false}
		for _, k := range spec.Keys {
			out.Properties[k] = r.schemaAt(p.Field(k), snapshot)
			if cs, _ := r.Lookup(p.Field(k), snapshot); !cs.Optional && (cs.Required || !cs.Assignable()) {
				out.Required = append(out.Required, k)
			}
		}
		return out
	case KindArray:
		return &jsonschema.Schema{Type: "array", Items: r.schemaAt(p.Index(0), snapshot)}
	case KindEnum:
		out := &jsonschema.Schema{Type: "string", Description: spec.EnumName}
		for _, v := range spec.Values {
			out.Enum = append(out.Enum, v)
		}
		if !spec.Required {
			out.Enum = append(out.Enum, "")
		}
		return out
	case KindNumber:
		out := &jsonschema.Schema{Type: "number", Minimum: spec.Min, Maximum: spec.Max}
		if spec.Integer {
			out.Type = "integer"
		}
		return out
	case KindBoolean:
		return &jsonschema.Schema{Type: "boolean"}
	}
	out := &jsonschema.Schema{Type: "string"}
	if spec.Pattern != nil {
		out.Pattern = spec.Pattern.String()
	}
	if spec.Required {
		out.MinLength = jsonschema.IntPtr(1)
	}
	return out
}
