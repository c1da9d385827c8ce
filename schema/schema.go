// Package schema holds the declarative description of the types to generate
// codecs for, as read from schema files or annotated Go source.
package schema

// Field type mappings.
const (
	MappingCoerced = "coerced"
	MappingExact   = "exact"
)

// Adapter function roles.
const (
	RoleFromWire = "from_wire"
	RoleToWire   = "to_wire"
)

// File is one schema document; it describes the types of a single Go package.
type File struct {
	Package  string         `yaml:"package" json:"package" toml:"package" validate:"required,goident"`
	Options  Options        `yaml:"options" json:"options" toml:"options"`
	Types    []TypeDecl     `yaml:"types" json:"types" toml:"types" validate:"dive"`
	Opaque   []OpaqueDecl   `yaml:"opaque" json:"opaque" toml:"opaque" validate:"dive"`
	Adapters []AdapterDecl  `yaml:"adapters" json:"adapters" toml:"adapters" validate:"dive"`
	Dispatch []DispatchDecl `yaml:"dispatch" json:"dispatch" toml:"dispatch" validate:"dive"`
}

// Options are file-wide generation switches.
type Options struct {
	// EmitTypes also emits the Go declarations of the described types.
	EmitTypes bool `yaml:"emit_types" json:"emit_types" toml:"emit_types"`
	// Serializers controls whether serialize routines are generated; types
	// may override it. Defaults to true.
	Serializers *bool `yaml:"serializers" json:"serializers" toml:"serializers"`
}

// TypeDecl declares one struct type.
type TypeDecl struct {
	Name        string       `yaml:"name" json:"name" toml:"name" validate:"required,goident"`
	Strict      bool         `yaml:"strict" json:"strict" toml:"strict"`
	Postprocess bool         `yaml:"postprocess" json:"postprocess" toml:"postprocess"`
	Serializer  *bool        `yaml:"serializer" json:"serializer" toml:"serializer"`
	Variant     *VariantDecl `yaml:"variant" json:"variant" toml:"variant"`
	Fields      []FieldDecl  `yaml:"fields" json:"fields" toml:"fields" validate:"dive"`
}

// GeneratesSerializer resolves the type override against the file option.
func (t *TypeDecl) GeneratesSerializer(o Options) bool {
	if t.Serializer != nil {
		return *t.Serializer
	}
	return o.Serializers == nil || *o.Serializers
}

// VariantDecl registers a type as one variant of a polymorphic family.
type VariantDecl struct {
	Dispatch string `yaml:"dispatch" json:"dispatch" toml:"dispatch" validate:"required,goident"`
	Name     string `yaml:"name" json:"name" toml:"name"`
}

// FieldDecl declares one field of a type.
type FieldDecl struct {
	Name       string        `yaml:"name" json:"name" toml:"name" validate:"required,goident"`
	Wire       string        `yaml:"wire" json:"wire" toml:"wire"`
	Type       string        `yaml:"type" json:"type" toml:"type" validate:"required"`
	Alternates []string      `yaml:"alternates" json:"alternates" toml:"alternates" validate:"dive,required"`
	Nullable   bool          `yaml:"nullable" json:"nullable" toml:"nullable"`
	Required   *bool         `yaml:"required" json:"required" toml:"required"`
	Mapping    string        `yaml:"mapping" json:"mapping" toml:"mapping" validate:"omitempty,oneof=exact coerced"`
	Adapter    string        `yaml:"adapter" json:"adapter" toml:"adapter"`
	Default    string        `yaml:"default" json:"default" toml:"default"`
	Template   *TemplateDecl `yaml:"template" json:"template" toml:"template"`
}

// TemplateDecl carries raw Go statements emitted verbatim for one field.
type TemplateDecl struct {
	Parse     string `yaml:"parse" json:"parse" toml:"parse" validate:"required"`
	Serialize string `yaml:"serialize" json:"serialize" toml:"serialize"`
}

// OpaqueDecl names a non-struct Go type that needs an adapter to go on the
// wire (enums, time values, identifiers).
type OpaqueDecl struct {
	Name    string `yaml:"name" json:"name" toml:"name" validate:"required,goident"`
	Adapter string `yaml:"adapter" json:"adapter" toml:"adapter"`
}

// AdapterDecl lists the candidate conversion functions for one adapted type.
type AdapterDecl struct {
	Name  string     `yaml:"name" json:"name" toml:"name" validate:"required,goident"`
	Type  string     `yaml:"type" json:"type" toml:"type" validate:"required"`
	Funcs []FuncDecl `yaml:"funcs" json:"funcs" toml:"funcs" validate:"dive"`
}

// FuncDecl is the signature of a candidate adapter function.
type FuncDecl struct {
	Name    string   `yaml:"name" json:"name" toml:"name" validate:"required"`
	Role    string   `yaml:"role" json:"role" toml:"role" validate:"required,oneof=from_wire to_wire"`
	Params  []string `yaml:"params" json:"params" toml:"params"`
	Results []string `yaml:"results" json:"results" toml:"results"`
}

// DispatchDecl declares a polymorphic family: an interface type and the
// registry variable that resolves its variants.
type DispatchDecl struct {
	Name     string `yaml:"name" json:"name" toml:"name" validate:"required,goident"`
	Registry string `yaml:"registry" json:"registry" toml:"registry" validate:"omitempty,goident"`
	Key      string `yaml:"key" json:"key" toml:"key"`
	// Declare emits the registry variable into the generated file.
	Declare bool `yaml:"declare" json:"declare" toml:"declare"`
}
