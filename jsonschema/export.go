package jsonschema

import (
	"fmt"
	"slices"
	"strconv"

	gojson "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/reoring/wirejson/internal/ir"
)

// Export returns the schema of the named type. Every type it references is
// placed under $defs.
func Export(set *ir.Set, typeName string) (*Schema, error) {
	if set.Lookup(typeName) == nil {
		return nil, fmt.Errorf("jsonschema: unknown type %q", typeName)
	}
	x := newExporter(set)
	x.define(typeName)
	root := &Schema{
		SchemaURI: Draft,
		Ref:       ref(typeName),
		Defs:      x.defs,
	}
	return root, nil
}

// ExportAll returns a document whose $defs hold every type of set.
func ExportAll(set *ir.Set) *Schema {
	x := newExporter(set)
	for _, t := range set.Types {
		x.define(t.Name)
	}
	return &Schema{SchemaURI: Draft, Title: set.Package, Defs: x.defs}
}

// Marshal renders s as indented JSON, or as YAML when format is "yaml".
func Marshal(s *Schema, format string) ([]byte, error) {
	switch format {
	case "", "json":
		return gojson.MarshalIndent(s, "", "  ")
	case "yaml", "yml":
		return yaml.Marshal(s)
	}
	return nil, fmt.Errorf("jsonschema: unsupported output format %q", format)
}

type exporter struct {
	set  *ir.Set
	defs map[string]*Schema
}

func newExporter(set *ir.Set) *exporter {
	return &exporter{set: set, defs: map[string]*Schema{}}
}

func ref(name string) string { return "#/$defs/" + name }

// define adds the definition of name and everything reachable from it.
func (x *exporter) define(name string) {
	if _, done := x.defs[name]; done {
		return
	}
	t := x.set.Lookup(name)
	if t == nil {
		return
	}
	s := &Schema{Type: "object", Title: name, Properties: map[string]*Schema{}}
	x.defs[name] = s
	if v := t.Variant; v != nil {
		s.Properties[v.Family.Key] = &Schema{Type: "string", Const: v.Discriminator}
		s.Required = append(s.Required, v.Family.Key)
	}
	for _, f := range t.Fields {
		p := x.shape(f.Shape)
		if f.Nullable && !ir.Nilable(f.Shape) {
			p = nullable(p)
		}
		if f.Default != "" {
			p.Default = literal(f.Default)
		}
		s.Properties[f.WireName] = p
		if f.Required {
			s.Required = append(s.Required, f.WireName)
		}
	}
}

func (x *exporter) shape(s ir.Shape) *Schema {
	switch v := s.(type) {
	case *ir.Primitive:
		return primitive(v.Prim)
	case *ir.Boxed:
		return nullable(primitive(v.Prim))
	case *ir.Text:
		return &Schema{Type: "string"}
	case *ir.Sequence:
		return nullable(&Schema{Type: "array", Items: x.shape(v.Elem)})
	case *ir.Mapping:
		return nullable(&Schema{Type: "object", AdditionalProperties: x.shape(v.Value)})
	case *ir.Nested:
		x.define(v.Type)
		if v.Pointer {
			return nullable(&Schema{Ref: ref(v.Type)})
		}
		return &Schema{Ref: ref(v.Type)}
	case *ir.AdapterBacked:
		if v.Adapter == nil {
			return &Schema{Description: "custom encoding"}
		}
		return wire(v.Adapter.Wire)
	case *ir.Dispatch:
		var variants []string
		for _, t := range x.set.Types {
			if t.Variant != nil && t.Variant.Family == v.Family {
				variants = append(variants, t.Name)
			}
		}
		slices.Sort(variants)
		u := &Schema{Description: v.Family.Interface}
		for _, name := range variants {
			x.define(name)
			u.OneOf = append(u.OneOf, &Schema{Ref: ref(name)})
		}
		return nullable(u)
	}
	return &Schema{}
}

func nullable(s *Schema) *Schema {
	return &Schema{OneOf: []*Schema{s, {Type: "null"}}}
}

func primitive(k ir.PrimitiveKind) *Schema {
	switch k {
	case ir.Bool:
		return &Schema{Type: "boolean"}
	case ir.Int32:
		return &Schema{Type: "integer", Format: "int32"}
	case ir.Int, ir.Int64:
		return &Schema{Type: "integer", Format: "int64"}
	case ir.Float32:
		return &Schema{Type: "number", Format: "float"}
	}
	return &Schema{Type: "number", Format: "double"}
}

func wire(k ir.WireKind) *Schema {
	switch k {
	case ir.WireString:
		return &Schema{Type: "string"}
	case ir.WireBool:
		return primitive(ir.Bool)
	case ir.WireInt32:
		return primitive(ir.Int32)
	case ir.WireInt, ir.WireInt64:
		return primitive(ir.Int64)
	case ir.WireFloat32:
		return primitive(ir.Float32)
	}
	return primitive(ir.Float64)
}

// literal converts a Go literal default to its JSON value. Identifiers are
// kept as their source text.
func literal(src string) any {
	if s, err := strconv.Unquote(src); err == nil {
		return s
	}
	if b, err := strconv.ParseBool(src); err == nil {
		return b
	}
	if n, err := strconv.ParseInt(src, 0, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(src, 64); err == nil {
		return f
	}
	return src
}
