package resolve_test

import (
	"fmt"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/wirejson/internal/diag"
	"github.com/reoring/wirejson/internal/ir"
	"github.com/reoring/wirejson/internal/resolve"
	"github.com/reoring/wirejson/schema"
)

func load(t *testing.T, doc string) *schema.File {
	t.Helper()
	f, err := schema.Parse([]byte(doc), schema.FormatYAML)
	require.NoError(t, err)
	return f
}

func mustResolve(t *testing.T, doc string) (*ir.Set, *diag.Diagnostics) {
	t.Helper()
	set, diags, err := resolve.Resolve(load(t, doc))
	require.NoError(t, err, "diagnostics: %s", spew.Sdump(diags))
	require.NotNil(t, set)
	return set, diags
}

func failResolve(t *testing.T, doc, code string) *diag.Diagnostics {
	t.Helper()
	set, diags, err := resolve.Resolve(load(t, doc))
	require.Error(t, err)
	assert.Nil(t, set)
	se, ok := diag.AsSchemaError(err)
	require.True(t, ok)
	assert.NotEmpty(t, se.Diagnostics)
	assert.True(t, diags.HasCode(code), "want %s in %s", code, spew.Sdump(diags.Errors))
	return diags
}

const zoo = `
package: zoo
dispatch:
  - name: Animal
    declare: true
opaque:
  - name: Color
    adapter: ColorAdapter
adapters:
  - name: ColorAdapter
    type: Color
    funcs:
      - {name: ColorFromWire, role: from_wire, params: [string], results: [Color]}
      - {name: ColorToWire, role: to_wire, params: [Color], results: [string]}
types:
  - name: Person
    fields:
      - {name: Name, type: string}
  - name: Pet
    strict: true
    fields:
      - {name: Name, type: string, alternates: [pet_name]}
      - {name: Age, type: "*int32"}
      - {name: Weight, type: float32, mapping: exact}
      - {name: Owner, type: "*Person"}
      - {name: Friends, type: "[]*Person"}
      - {name: Tags, type: "map[string][]string"}
      - {name: Color, type: Color}
      - {name: Nick, type: "*string"}
      - {name: Pets, type: "[]Animal"}
  - name: Dog
    variant: {dispatch: Animal, name: dog}
    fields:
      - {name: Breed, type: string, required: true}
`

func TestResolve_Shapes(t *testing.T) {
	set, diags := mustResolve(t, zoo)
	assert.Empty(t, diags.Warnings)

	pet := set.Lookup("Pet")
	require.NotNil(t, pet, spew.Sdump(set))
	byName := map[string]*ir.FieldDescriptor{}
	for _, f := range pet.Fields {
		byName[f.Name] = f
	}

	assert.Equal(t, &ir.Text{}, byName["Name"].Shape)
	assert.Equal(t, []string{"name", "pet_name"}, byName["Name"].WireNames())
	assert.Equal(t, &ir.Boxed{Prim: ir.Int32}, byName["Age"].Shape)
	assert.True(t, byName["Age"].Nullable)
	assert.Equal(t, ir.Exact, byName["Weight"].Mapping)
	assert.Equal(t, &ir.Nested{Type: "Person", Pointer: true}, byName["Owner"].Shape)
	assert.Equal(t, &ir.Sequence{Elem: &ir.Nested{Type: "Person", Pointer: true}}, byName["Friends"].Shape)
	assert.Equal(t, &ir.Mapping{Value: &ir.Sequence{Elem: &ir.Text{}}}, byName["Tags"].Shape)
	assert.Equal(t, "*string", byName["Nick"].GoType())

	color, ok := byName["Color"].Shape.(*ir.AdapterBacked)
	require.True(t, ok)
	assert.Equal(t, "ColorFromWire", color.Adapter.FromWire)
	assert.Equal(t, "ColorToWire", color.Adapter.ToWire)
	assert.Equal(t, ir.WireString, color.Adapter.Wire)

	seq := byName["Pets"].Shape.(*ir.Sequence)
	d, ok := seq.Elem.(*ir.Dispatch)
	require.True(t, ok)
	assert.Equal(t, "AnimalRegistry", d.Family.Registry)
	assert.Equal(t, "type", d.Family.Key)

	dog := set.Lookup("Dog")
	require.NotNil(t, dog.Variant)
	assert.Equal(t, "dog", dog.Variant.Discriminator)
	assert.Same(t, d.Family, dog.Variant.Family)
}

func TestResolve_RequiredDerivation(t *testing.T) {
	set, _ := mustResolve(t, zoo)

	var required []string
	for _, f := range set.Lookup("Pet").RequiredFields() {
		required = append(required, f.Name)
	}
	// Strict types require every non-nullable field.
	assert.Equal(t, []string{"Name", "Weight", "Friends", "Tags", "Color", "Pets"}, required)

	// Non-strict types honour an explicit override.
	assert.Len(t, set.Lookup("Dog").RequiredFields(), 1)
	assert.Empty(t, set.Lookup("Person").RequiredFields())
}

func TestResolve_DuplicateWireNames(t *testing.T) {
	failResolve(t, `
package: p
types:
  - name: T
    fields:
      - {name: A, type: string, wire: x}
      - {name: B, type: string, wire: x}
`, diag.CodeDuplicateWireName)

	failResolve(t, `
package: p
types:
  - name: T
    fields:
      - {name: A, type: string, alternates: [b]}
      - {name: B, type: string}
`, diag.CodeDuplicateWireName)
}

func TestResolve_UnsupportedTypes(t *testing.T) {
	cases := map[string]string{
		"chan int":        diag.CodeUnsupportedType,
		"[3]int":          diag.CodeUnsupportedType,
		"map[int]string":  diag.CodeNonStringMapKey,
		"[]map[int]bool":  diag.CodeNonStringMapKey,
		"Unknown":         diag.CodeUnsupportedType,
		"**int":           diag.CodeUnsupportedType,
		"[]*string":       diag.CodeUnsupportedType,
		"time.Time":       diag.CodeUnsupportedType,
		"func()":          diag.CodeUnsupportedType,
		"struct{ A int }": diag.CodeUnsupportedType,
	}
	for typ, code := range cases {
		t.Run(typ, func(t *testing.T) {
			failResolve(t, `
package: p
types:
  - name: T
    fields:
      - name: F
        type: "`+typ+`"
`, code)
		})
	}
}

func TestResolve_Templates(t *testing.T) {
	set, _ := mustResolve(t, `
package: p
types:
  - name: T
    fields:
      - name: Nick
        type: string
        template:
          parse: "${value} = ${reader}.Text()"
          serialize: "${writer}.WriteFieldName(\"${wire_name}\"); ${writer}.WriteString(${object}.Nick)"
`)
	f := set.Lookup("T").Fields[0]
	ab, ok := f.Shape.(*ir.AdapterBacked)
	require.True(t, ok)
	require.NotNil(t, ab.Template)
	assert.Nil(t, ab.Adapter)

	failResolve(t, `
package: p
types:
  - name: T
    fields:
      - name: Nick
        type: string
        template: {parse: "${value} = ${bogus}", serialize: "${writer}.WriteNull()"}
`, diag.CodeUnknownTemplateMarker)

	failResolve(t, `
package: p
types:
  - name: T
    fields:
      - name: Nick
        type: string
        template: {parse: "${writer}.WriteNull()", serialize: "${writer}.WriteNull()"}
`, diag.CodeTemplateMarkerDirection)

	failResolve(t, `
package: p
types:
  - name: T
    fields:
      - name: Nick
        type: string
        template: {parse: "${value} = ${reader}.Text()"}
`, diag.CodeMissingTemplate)

	// Without serializers only the parse template is needed.
	mustResolve(t, `
package: p
options: {serializers: false}
types:
  - name: T
    fields:
      - name: Nick
        type: string
        template: {parse: "${value} = ${reader}.Text()"}
`)
}

func TestResolve_TemplateWinsOverAdapter(t *testing.T) {
	set, _ := mustResolve(t, `
package: p
opaque: [{name: Color, adapter: CA}]
adapters:
  - name: CA
    type: Color
    funcs:
      - {name: CFrom, role: from_wire, params: [string], results: [Color]}
      - {name: CTo, role: to_wire, params: [Color], results: [string]}
types:
  - name: T
    fields:
      - name: C
        type: Color
        template: {parse: "${value} = Color(${reader}.Text())", serialize: "${writer}.WriteString(string(${value}))"}
`)
	ab := set.Lookup("T").Fields[0].Shape.(*ir.AdapterBacked)
	assert.Nil(t, ab.Adapter)
	assert.NotNil(t, ab.Template)
}

const badAdapter = `
package: p
opaque: [{name: Color, adapter: CA}]
adapters:
  - name: CA
    type: Color
    funcs:
%s
types:
  - name: T
    fields:
      - {name: Label, type: string}
`

func TestResolve_AdapterWarnings(t *testing.T) {
	cases := []struct {
		name  string
		funcs string
		code  string
	}{
		{"no from-wire", `      - {name: CTo, role: to_wire, params: [Color], results: [string]}`, diag.CodeFromWireMissing},
		{"two from-wire", `      - {name: A, role: from_wire, params: [string], results: [Color]}
      - {name: B, role: from_wire, params: [string], results: [Color]}
      - {name: CTo, role: to_wire, params: [Color], results: [string]}`, diag.CodeFromWireAmbiguous},
		{"from-wire arity", `      - {name: A, role: from_wire, params: [string, int], results: [Color]}
      - {name: CTo, role: to_wire, params: [Color], results: [string]}`, diag.CodeAdapterArity},
		{"from-wire takes non-wire", `      - {name: A, role: from_wire, params: ["[]byte"], results: [Color]}
      - {name: CTo, role: to_wire, params: [Color], results: [string]}`, diag.CodeAdapterWireType},
		{"from-wire returns pointer", `      - {name: A, role: from_wire, params: [string], results: ["*Color"]}
      - {name: CTo, role: to_wire, params: [Color], results: [string]}`, diag.CodeAdapterReturnType},
		{"no to-wire", `      - {name: A, role: from_wire, params: [string], results: [Color]}`, diag.CodeToWireMissing},
		{"to-wire mismatched wire", `      - {name: A, role: from_wire, params: [string], results: [Color]}
      - {name: CTo, role: to_wire, params: [Color], results: [int]}`, diag.CodeAdapterReturnType},
		{"to-wire parameter", `      - {name: A, role: from_wire, params: [string], results: [Color]}
      - {name: CTo, role: to_wire, params: ["*Color"], results: [string]}`, diag.CodeAdapterParameterType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := fmt.Sprintf(badAdapter, tc.funcs)
			set, diags := mustResolve(t, doc)
			assert.True(t, diags.HasCode(tc.code), spew.Sdump(diags.Warnings))
			assert.Empty(t, set.Opaque, "invalid adapters are not bound")
		})
	}
}

func TestResolve_InvalidAdapterFallsBackToStructuralRules(t *testing.T) {
	doc := `
package: p
opaque: [{name: Color, adapter: CA}]
adapters:
  - name: CA
    type: Color
    funcs:
      - {name: A, role: from_wire, params: [string], results: ["*Color"]}
types:
  - name: T
    fields:
      - {name: C, type: Color}
`
	diags := failResolve(t, doc, diag.CodeUnsupportedType)
	assert.True(t, diags.HasCode(diag.CodeAdapterReturnType))
}

func TestResolve_ToWireNotCheckedWithoutSerializers(t *testing.T) {
	set, diags := mustResolve(t, `
package: p
options: {serializers: false}
opaque: [{name: Color, adapter: CA}]
adapters:
  - name: CA
    type: Color
    funcs:
      - {name: CFrom, role: from_wire, params: [int], results: [Color]}
types:
  - name: T
    fields:
      - {name: C, type: "*Color"}
`)
	assert.Empty(t, diags.Warnings)
	f := set.Lookup("T").Fields[0]
	assert.True(t, f.Nullable)
	assert.Equal(t, "*Color", f.GoType())
	assert.Equal(t, ir.WireInt, f.Shape.(*ir.AdapterBacked).Adapter.Wire)
}

func TestResolve_FieldAdapterOverride(t *testing.T) {
	set, diags := mustResolve(t, `
package: p
adapters:
  - name: Upper
    type: string
    funcs:
      - {name: FromUpper, role: from_wire, params: [string], results: [string]}
      - {name: ToUpper, role: to_wire, params: [string], results: [string]}
types:
  - name: T
    fields:
      - {name: Code, type: string, adapter: Upper}
`)
	assert.False(t, diags.HasCode(diag.CodeAdapterUnused))
	ab := set.Lookup("T").Fields[0].Shape.(*ir.AdapterBacked)
	assert.Equal(t, "FromUpper", ab.Adapter.FromWire)

	failResolve(t, `
package: p
types:
  - name: T
    fields:
      - {name: Code, type: string, adapter: Nope}
`, diag.CodeUnknownAdapter)
}

func TestResolve_AdapterWinsOverSchemaType(t *testing.T) {
	set, _ := mustResolve(t, `
package: p
opaque: [{name: Money, adapter: MoneyJSON}]
adapters:
  - name: MoneyJSON
    type: Money
    funcs:
      - {name: MoneyFromWire, role: from_wire, params: [string], results: [Money]}
      - {name: MoneyToWire, role: to_wire, params: [Money], results: [string]}
types:
  - name: Money
    fields:
      - {name: Cents, type: int64}
  - name: Order
    fields:
      - {name: Total, type: Money}
      - {name: Refund, type: "*Money"}
      - {name: Items, type: "[]Money"}
`)
	order := set.Lookup("Order")
	require.NotNil(t, order)

	for _, f := range order.Fields[:2] {
		a, ok := f.Shape.(*ir.AdapterBacked)
		require.True(t, ok, "%s: %s", f.Name, spew.Sdump(f.Shape))
		assert.Equal(t, "MoneyFromWire", a.Adapter.FromWire)
	}
	seq, ok := order.Fields[2].Shape.(*ir.Sequence)
	require.True(t, ok)
	assert.IsType(t, &ir.AdapterBacked{}, seq.Elem)
	assert.NotNil(t, set.Lookup("Money"), "the schema type keeps its own codec")
}

func TestResolve_UnusedAdapterIsInfo(t *testing.T) {
	_, diags := mustResolve(t, `
package: p
adapters:
  - name: Spare
    type: Color
    funcs:
      - {name: F, role: from_wire, params: [string], results: [Color]}
      - {name: G, role: to_wire, params: [Color], results: [string]}
types:
  - name: T
`)
	require.Len(t, diags.Infos, 1)
	assert.Equal(t, diag.CodeAdapterUnused, diags.Infos[0].Code)
}

func TestResolve_OpaqueWithoutAdapter(t *testing.T) {
	set, diags := mustResolve(t, `
package: p
opaque: [{name: Color}]
types:
  - name: T
`)
	assert.True(t, diags.HasCode(diag.CodeAdapterMissing))
	assert.Equal(t, len(diags.Warnings), set.Warnings)
	assert.Positive(t, set.Warnings)
}

func TestResolve_References(t *testing.T) {
	failResolve(t, `
package: p
types:
  - name: Inner
    serializer: false
  - name: Outer
    fields:
      - {name: In, type: "[]Inner"}
`, diag.CodeUnknownNestedSerializer)

	failResolve(t, `
package: p
types:
  - name: Dog
    variant: {dispatch: Animal}
`, diag.CodeUnknownRegistry)

	_, diags := mustResolve(t, `
package: p
dispatch: [{name: Shape, registry: Shapes, key: kind}]
types:
  - name: T
    fields:
      - {name: S, type: Shape}
`)
	assert.True(t, diags.HasCode(diag.CodeVariantWithoutRegistry))
}

func TestResolve_DuplicateTypes(t *testing.T) {
	failResolve(t, `
package: p
types:
  - name: T
  - name: T
`, diag.CodeDuplicateType)

	failResolve(t, `
package: p
dispatch: [{name: T}]
types:
  - name: T
`, diag.CodeDuplicateType)
}

func TestResolve_Defaults(t *testing.T) {
	set, _ := mustResolve(t, `
package: p
types:
  - name: T
    fields:
      - {name: Level, type: int, default: "3"}
      - {name: Neg, type: float64, default: "-1.5"}
      - {name: Name, type: string, default: '"anon"'}
      - {name: On, type: bool, default: "true"}
`)
	assert.Equal(t, `"anon"`, set.Lookup("T").Fields[2].Default)

	for _, bad := range []string{
		`{name: P, type: "*int", default: "3"}`,
		`{name: L, type: "[]int", default: "nil"}`,
		`{name: X, type: int, default: "f()"}`,
		`{name: X, type: int, default: "3 +"}`,
	} {
		failResolve(t, "package: p\ntypes:\n  - name: T\n    fields:\n      - "+bad+"\n", diag.CodeInvalidDefault)
	}
}

func TestResolve_SerializerToggle(t *testing.T) {
	set, _ := mustResolve(t, `
package: p
options: {serializers: false}
types:
  - name: A
  - name: B
    serializer: true
`)
	assert.False(t, set.Lookup("A").Serializer)
	assert.True(t, set.Lookup("B").Serializer)
}
