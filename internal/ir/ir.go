// Package ir defines the resolved descriptor model the code generator works
// from. A Set is built once by the resolver and never mutated afterwards.
package ir

import "strings"

// ShapeKind identifies a Shape variant.
type ShapeKind int

const (
	ShapePrimitive ShapeKind = iota
	ShapeBoxed
	ShapeText
	ShapeSequence
	ShapeMapping
	ShapeNested
	ShapeAdapter
	ShapeDispatch
)

var shapeNames = [...]string{"primitive", "boxed", "text", "sequence", "mapping", "nested", "adapter", "dispatch"}

func (k ShapeKind) String() string { return shapeNames[k] }

// Shape is the wire-level category of a field or element type.
type Shape interface {
	Kind() ShapeKind
	// GoType renders the Go type of a non-nullable value of this shape.
	GoType() string
}

// PrimitiveKind enumerates the scalar kinds that map to JSON numbers and
// booleans.
type PrimitiveKind int

const (
	Bool PrimitiveKind = iota
	Int
	Int32
	Int64
	Float32
	Float64
)

var primitiveNames = map[string]PrimitiveKind{
	"bool":    Bool,
	"int":     Int,
	"int32":   Int32,
	"int64":   Int64,
	"float32": Float32,
	"float64": Float64,
}

// LookupPrimitive maps a Go identifier to a primitive kind.
func LookupPrimitive(name string) (PrimitiveKind, bool) {
	k, ok := primitiveNames[name]
	return k, ok
}

func (k PrimitiveKind) String() string {
	switch k {
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Float32:
		return "float32"
	default:
		return "float64"
	}
}

// IsInteger reports whether k is an integer kind.
func (k PrimitiveKind) IsInteger() bool { return k == Int || k == Int32 || k == Int64 }

// IsFloat reports whether k is a floating point kind.
func (k PrimitiveKind) IsFloat() bool { return k == Float32 || k == Float64 }

// Primitive is a non-nullable scalar.
type Primitive struct{ Prim PrimitiveKind }

func (p *Primitive) Kind() ShapeKind { return ShapePrimitive }
func (p *Primitive) GoType() string  { return p.Prim.String() }

// Boxed is a nullable scalar held behind a pointer.
type Boxed struct{ Prim PrimitiveKind }

func (b *Boxed) Kind() ShapeKind { return ShapeBoxed }
func (b *Boxed) GoType() string  { return "*" + b.Prim.String() }

// Text is a string.
type Text struct{}

func (t *Text) Kind() ShapeKind { return ShapeText }
func (t *Text) GoType() string  { return "string" }

// Sequence is a slice of Elem.
type Sequence struct{ Elem Shape }

func (s *Sequence) Kind() ShapeKind { return ShapeSequence }
func (s *Sequence) GoType() string  { return "[]" + s.Elem.GoType() }

// Mapping is a map with string keys.
type Mapping struct{ Value Shape }

func (m *Mapping) Kind() ShapeKind { return ShapeMapping }
func (m *Mapping) GoType() string  { return "map[string]" + m.Value.GoType() }

// Nested references another schema type, by pointer or by value.
type Nested struct {
	Type    string
	Pointer bool
}

func (n *Nested) Kind() ShapeKind { return ShapeNested }
func (n *Nested) GoType() string {
	if n.Pointer {
		return "*" + n.Type
	}
	return n.Type
}

// AdapterBacked is converted by a bound Adapter or written by a raw Template.
// Exactly one of Adapter and Template is set.
type AdapterBacked struct {
	Adapter  *Adapter
	Template *Template
	// Declared is the Go type as written in the schema.
	Declared string
}

func (a *AdapterBacked) Kind() ShapeKind { return ShapeAdapter }
func (a *AdapterBacked) GoType() string  { return a.Declared }

// Dispatch is a polymorphic value resolved through a registry.
type Dispatch struct{ Family *Family }

func (d *Dispatch) Kind() ShapeKind { return ShapeDispatch }
func (d *Dispatch) GoType() string  { return d.Family.Interface }

// Nilable reports whether values of s can be nil in Go, which is how absent
// values are represented inside containers.
func Nilable(s Shape) bool {
	switch v := s.(type) {
	case *Boxed, *Sequence, *Mapping, *Dispatch:
		return true
	case *Nested:
		return v.Pointer
	}
	return false
}

// WireKind is the JSON representation an adapter converts to.
type WireKind int

const (
	WireString WireKind = iota
	WireBool
	WireInt
	WireInt32
	WireInt64
	WireFloat32
	WireFloat64
)

var wireNames = map[string]WireKind{
	"string":  WireString,
	"bool":    WireBool,
	"int":     WireInt,
	"int32":   WireInt32,
	"int64":   WireInt64,
	"float32": WireFloat32,
	"float64": WireFloat64,
}

// LookupWire maps a Go identifier to a wire kind.
func LookupWire(name string) (WireKind, bool) {
	k, ok := wireNames[name]
	return k, ok
}

func (w WireKind) String() string {
	for name, k := range wireNames {
		if k == w {
			return name
		}
	}
	return "invalid"
}

// Adapter is a validated pair of conversion functions for one Go type.
type Adapter struct {
	Name     string
	Type     string
	Wire     WireKind
	FromWire string
	// ToWire is empty when no serializers are generated.
	ToWire string
}

// Template markers.
const (
	MarkerReader   = "reader"
	MarkerWriter   = "writer"
	MarkerWireName = "wire_name"
	MarkerObject   = "object"
	MarkerValue    = "value"
)

// Template holds raw Go statements for one field. Markers of the form
// ${name} are substituted at emission.
type Template struct {
	Parse     string
	Serialize string
}

// Expand substitutes markers in body.
func Expand(body string, vars map[string]string) string {
	pairs := make([]string, 0, 2*len(vars))
	for k, v := range vars {
		pairs = append(pairs, "${"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(body)
}

// Family is a polymorphic family: an interface and the registry resolving
// its variants.
type Family struct {
	Interface string
	Registry  string
	Key       string
	Declare   bool
}

// Variant records that a type is registered in a family.
type Variant struct {
	Family        *Family
	Discriminator string
}

// Mapping modes.
type MappingMode int

const (
	Coerced MappingMode = iota
	Exact
)

// FieldDescriptor is one resolved field.
type FieldDescriptor struct {
	Name       string
	WireName   string
	Alternates []string
	Shape      Shape
	Nullable   bool
	Required   bool
	Mapping    MappingMode
	Default    string
	Index      int
}

// GoType renders the declared Go type of the field.
func (f *FieldDescriptor) GoType() string {
	switch s := f.Shape.(type) {
	case *Text, *Primitive:
		if f.Nullable {
			return "*" + s.GoType()
		}
	case *AdapterBacked:
		if s.Adapter != nil && f.Nullable {
			return "*" + s.GoType()
		}
	}
	return f.Shape.GoType()
}

// WireNames returns the primary wire name followed by the alternates.
func (f *FieldDescriptor) WireNames() []string {
	return append([]string{f.WireName}, f.Alternates...)
}

// SchemaType is one resolved struct type.
type SchemaType struct {
	Name        string
	Fields      []*FieldDescriptor
	Strict      bool
	Postprocess bool
	Serializer  bool
	Variant     *Variant
}

// RequiredFields returns the fields tracked by strict validation, in
// declaration order.
func (t *SchemaType) RequiredFields() []*FieldDescriptor {
	var out []*FieldDescriptor
	for _, f := range t.Fields {
		if f.Required {
			out = append(out, f)
		}
	}
	return out
}

// Opaque is a non-struct type that was declared with its adapter.
type Opaque struct {
	Name    string
	Adapter *Adapter
}

// Set is the resolved content of one schema file.
type Set struct {
	Package  string
	Types    []*SchemaType
	Families []*Family
	Opaque   []*Opaque
	// EmitTypes requests Go declarations for the types and families.
	EmitTypes bool
	// Warnings counts the non-fatal diagnostics raised while resolving.
	Warnings int
}

// Lookup returns the type named name.
func (s *Set) Lookup(name string) *SchemaType {
	for _, t := range s.Types {
		if t.Name == name {
			return t
		}
	}
	return nil
}
