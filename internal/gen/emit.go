package gen

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/reoring/wirejson/internal/ir"
)

// emitter accumulates the body of one generated file. Output is not
// indented; imports.Process formats it afterwards.
type emitter struct {
	set *ir.Set
	buf bytes.Buffer
	std map[string]bool
	n   int
}

func newEmitter(set *ir.Set) *emitter {
	return &emitter{set: set, std: map[string]bool{}}
}

func (e *emitter) p(format string, args ...any) {
	fmt.Fprintf(&e.buf, format, args...)
	e.buf.WriteByte('\n')
}

// tmp returns a fresh local name.
func (e *emitter) tmp(prefix string) string {
	e.n++
	return fmt.Sprintf("%s%d", prefix, e.n)
}

func (e *emitter) file() {
	for _, fam := range e.set.Families {
		if fam.Declare {
			e.registry(fam)
		}
	}
	if e.set.EmitTypes {
		e.declarations()
	}
	for _, t := range e.set.Types {
		if t.Serializer {
			e.serializer(t)
		}
		e.parser(t)
		if t.Variant != nil {
			e.variantAdapter(t)
		}
		if t.Serializer {
			e.p("")
			e.p("// %sCodec bundles the %s routines.", t.Name, t.Name)
			e.p("var %sCodec = wirejson.Codec[*%s]{Serialize: Serialize%s, Parse: Parse%s}", t.Name, t.Name, t.Name, t.Name)
		}
	}
	for _, fam := range e.set.Families {
		e.registerVariants(fam)
	}
}

func (e *emitter) registry(fam *ir.Family) {
	e.p("")
	e.p("// %s resolves %s variants by their %q field.", fam.Registry, fam.Interface, fam.Key)
	e.p("var %s = wirejson.NewRegistry[%s](%q, %q)", fam.Registry, fam.Interface, fam.Interface, fam.Key)
}

func (e *emitter) declarations() {
	for _, fam := range e.set.Families {
		e.p("")
		e.p("type %s interface {", fam.Interface)
		e.p("wirejson.Discriminated")
		e.p("}")
	}
	for _, t := range e.set.Types {
		e.p("")
		e.p("type %s struct {", t.Name)
		for _, f := range t.Fields {
			e.p("%s %s `wire:%q`", f.Name, f.GoType(), wireTag(f))
		}
		e.p("}")
		if t.Variant != nil {
			e.p("")
			e.p("func (*%s) TypeName() string { return %q }", t.Name, t.Variant.Discriminator)
		}
	}
}

func wireTag(f *ir.FieldDescriptor) string {
	parts := []string{f.WireName}
	if len(f.Alternates) > 0 {
		parts = append(parts, "alt="+strings.Join(f.Alternates, "|"))
	}
	if f.Mapping == ir.Exact {
		parts = append(parts, "exact")
	}
	if f.Required {
		parts = append(parts, "required")
	}
	return strings.Join(parts, ",")
}

func (e *emitter) serializer(t *ir.SchemaType) {
	n := t.Name
	e.p("")
	e.p("// Serialize%s writes v as a JSON object. A nil v is written as null.", n)
	e.p("func Serialize%s(w wirejson.Writer, v *%s) error {", n, n)
	e.p("if v == nil {")
	e.p("w.WriteNull()")
	e.p("return w.Err()")
	e.p("}")
	e.p("w.WriteStartObject()")
	e.p("if err := serialize%sFields(w, v); err != nil {", n)
	e.p("return err")
	e.p("}")
	e.p("w.WriteEndObject()")
	e.p("return w.Err()")
	e.p("}")

	e.n = 0
	e.p("")
	e.p("// serialize%sFields writes the fields of v without the enclosing braces.", n)
	e.p("func serialize%sFields(w wirejson.Writer, v *%s) error {", n, n)
	for _, f := range t.Fields {
		e.writeField(f)
	}
	e.p("return w.Err()")
	e.p("}")

	e.p("")
	e.p("// Marshal%s returns the JSON encoding of v.", n)
	e.p("func Marshal%s(v *%s) ([]byte, error) {", n, n)
	e.p("return wirejson.Marshal(v, Serialize%s)", n)
	e.p("}")
}

func (e *emitter) writeField(f *ir.FieldDescriptor) {
	value := "v." + f.Name
	if a, ok := f.Shape.(*ir.AdapterBacked); ok && a.Template != nil {
		e.p("%s", ir.Expand(a.Template.Serialize, map[string]string{
			ir.MarkerWriter:   "w",
			ir.MarkerObject:   "v",
			ir.MarkerValue:    value,
			ir.MarkerWireName: f.WireName,
		}))
		return
	}

	nilable := ir.Nilable(f.Shape) || f.GoType() != f.Shape.GoType()
	if !nilable {
		e.p("w.WriteFieldName(%q)", f.WireName)
		e.writeValue(f.Shape, value, true)
		return
	}
	e.p("if %s != nil {", value)
	e.p("w.WriteFieldName(%q)", f.WireName)
	switch f.Shape.(type) {
	case *ir.Boxed, *ir.Nested, *ir.Sequence, *ir.Mapping, *ir.Dispatch:
		e.writeValue(f.Shape, value, true)
	default:
		e.writeValue(f.Shape, "*"+value, true)
	}
	e.p("}")
}

// writeValue emits statements writing expr, a value of Go type s.GoType().
// nonNil skips the null branch for nilable shapes.
func (e *emitter) writeValue(s ir.Shape, expr string, nonNil bool) {
	switch v := s.(type) {
	case *ir.Primitive:
		e.writePrimitive(v.Prim, expr)
	case *ir.Boxed:
		if nonNil {
			e.writePrimitive(v.Prim, "*"+expr)
			return
		}
		e.p("if %s == nil {", expr)
		e.p("w.WriteNull()")
		e.p("} else {")
		e.writePrimitive(v.Prim, "*"+expr)
		e.p("}")
	case *ir.Text:
		e.p("w.WriteString(%s)", expr)
	case *ir.Nested:
		target := expr
		if !v.Pointer {
			target = "&" + expr
		}
		e.p("if err := Serialize%s(w, %s); err != nil {", v.Type, target)
		e.p("return err")
		e.p("}")
	case *ir.AdapterBacked:
		e.writeWire(v.Adapter.Wire, v.Adapter.ToWire+"("+expr+")")
	case *ir.Dispatch:
		if !nonNil {
			e.p("if %s == nil {", expr)
			e.p("w.WriteNull()")
			e.p("} else if err := %s.Serialize(w, %s); err != nil {", v.Family.Registry, expr)
			e.p("return err")
			e.p("}")
			return
		}
		e.p("if err := %s.Serialize(w, %s); err != nil {", v.Family.Registry, expr)
		e.p("return err")
		e.p("}")
	case *ir.Sequence:
		if !nonNil {
			e.p("if %s == nil {", expr)
			e.p("w.WriteNull()")
			e.p("} else {")
		}
		elem := e.tmp("e")
		e.p("w.WriteStartArray()")
		e.p("for _, %s := range %s {", elem, expr)
		e.writeValue(v.Elem, elem, false)
		e.p("}")
		e.p("w.WriteEndArray()")
		if !nonNil {
			e.p("}")
		}
	case *ir.Mapping:
		if !nonNil {
			e.p("if %s == nil {", expr)
			e.p("w.WriteNull()")
			e.p("} else {")
		}
		e.std["maps"] = true
		e.std["slices"] = true
		key, elem := e.tmp("k"), e.tmp("e")
		e.p("w.WriteStartObject()")
		e.p("for _, %s := range slices.Sorted(maps.Keys(%s)) {", key, expr)
		e.p("%s := %s[%s]", elem, expr, key)
		e.p("w.WriteFieldName(%s)", key)
		e.writeValue(v.Value, elem, false)
		e.p("}")
		e.p("w.WriteEndObject()")
		if !nonNil {
			e.p("}")
		}
	}
}

func (e *emitter) writePrimitive(k ir.PrimitiveKind, expr string) {
	switch {
	case k == ir.Bool:
		e.p("w.WriteBool(%s)", expr)
	case k.IsInteger():
		e.p("w.WriteInt(int64(%s))", expr)
	case k == ir.Float32:
		e.p("w.WriteFloat(float64(%s), 32)", expr)
	default:
		e.p("w.WriteFloat(float64(%s), 64)", expr)
	}
}

func (e *emitter) writeWire(k ir.WireKind, expr string) {
	switch k {
	case ir.WireString:
		e.p("w.WriteString(%s)", expr)
	case ir.WireBool:
		e.p("w.WriteBool(%s)", expr)
	case ir.WireFloat32:
		e.p("w.WriteFloat(float64(%s), 32)", expr)
	case ir.WireFloat64:
		e.p("w.WriteFloat(float64(%s), 64)", expr)
	default:
		e.p("w.WriteInt(int64(%s))", expr)
	}
}

func (e *emitter) parser(t *ir.SchemaType) {
	n := t.Name
	e.p("")
	e.p("// Parse%s reads a %s from r, which must be positioned on the value's", n, n)
	e.p("// first token. JSON null and non-object values yield nil.")
	e.p("func Parse%s(r wirejson.Reader) (*%s, error) {", n, n)
	e.p("if r.CurrentToken() != wirejson.TokenBeginObject {")
	e.p("r.SkipChildren()")
	e.p("return nil, r.Err()")
	e.p("}")
	e.p("return parse%sFields(r)", n)
	e.p("}")

	e.n = 0
	required := t.RequiredFields()
	seen := map[*ir.FieldDescriptor]int{}
	for i, f := range required {
		seen[f] = i
	}

	e.p("")
	e.p("// parse%sFields reads the remaining fields of an object whose opening", n)
	e.p("// brace has been consumed, up to and including the closing brace.")
	e.p("func parse%sFields(r wirejson.Reader) (*%s, error) {", n, n)
	var defaults []string
	for _, f := range t.Fields {
		if f.Default != "" {
			defaults = append(defaults, f.Name+": "+f.Default)
		}
	}
	e.p("v := &%s{%s}", n, strings.Join(defaults, ", "))
	if len(required) > 0 {
		e.p("var seen [%d]bool", len(required))
	}
	e.p("for r.NextField() {")
	e.p("name := r.CurrentName()")
	e.p("r.NextToken()")
	e.p("switch name {")
	for _, f := range t.Fields {
		quoted := make([]string, 0, 1+len(f.Alternates))
		for _, w := range f.WireNames() {
			quoted = append(quoted, fmt.Sprintf("%q", w))
		}
		e.p("case %s:", strings.Join(quoted, ", "))
		idx, tracked := seen[f]
		if !tracked {
			idx = -1
		}
		e.readField(f, idx)
	}
	e.p("}")
	e.p("r.SkipChildren()")
	e.p("}")
	e.p("if err := r.Err(); err != nil {")
	e.p("return nil, err")
	e.p("}")
	for i, f := range required {
		e.p("if !seen[%d] {", i)
		e.p("if err := r.OnUnexpectedNull(%q, %q); err != nil {", f.WireName, n)
		e.p("return nil, err")
		e.p("}")
		e.p("}")
	}
	if t.Postprocess {
		e.p("if err := v.Postprocess(); err != nil {")
		e.p("return nil, err")
		e.p("}")
	}
	e.p("return v, nil")
	e.p("}")

	e.p("")
	e.p("// Unmarshal%s parses data as a single %s.", n, n)
	e.p("func Unmarshal%s(data []byte, opts ...wirejson.ReaderOption) (*%s, error) {", n, n)
	e.p("return wirejson.Unmarshal(data, Parse%s, opts...)", n)
	e.p("}")
}

// readField emits the case body of one field. seen is the field's index in
// the required-field tracker, or -1.
func (e *emitter) readField(f *ir.FieldDescriptor, seen int) {
	target := "v." + f.Name
	mark := func() {
		if seen >= 0 {
			e.p("seen[%d] = true", seen)
		}
	}
	if a, ok := f.Shape.(*ir.AdapterBacked); ok && a.Template != nil {
		if seen >= 0 {
			e.p("if r.CurrentToken() != wirejson.TokenNull {")
			mark()
			e.p("}")
		}
		e.p("%s", ir.Expand(a.Template.Parse, map[string]string{
			ir.MarkerReader:   "r",
			ir.MarkerObject:   "v",
			ir.MarkerValue:    target,
			ir.MarkerWireName: f.WireName,
		}))
		return
	}
	pointer := f.GoType() != f.Shape.GoType()
	e.readValue(f.Shape, f.Mapping, pointer, func(x string) {
		e.p("%s = %s", target, x)
		mark()
	})
}

func mappingExpr(m ir.MappingMode) string {
	if m == ir.Exact {
		return "wirejson.Exact"
	}
	return "wirejson.Coerced"
}

// readValue emits statements reading the current token as a value of shape
// s and calls assign with an expression of type s.GoType(), or a pointer to
// it when pointer is set. Nothing is assigned for null or mismatched tokens.
func (e *emitter) readValue(s ir.Shape, m ir.MappingMode, pointer bool, assign func(string)) {
	mode := mappingExpr(m)
	switch v := s.(type) {
	case *ir.Primitive:
		x := e.tmp("x")
		e.p("%s, err := %s(r, %s)", x, readFunc(v.Prim), mode)
		e.p("if err != nil {")
		e.p("return nil, err")
		e.p("}")
		e.p("if %s != nil {", x)
		if pointer {
			assign(x)
		} else {
			assign("*" + x)
		}
		e.p("}")
	case *ir.Boxed:
		x := e.tmp("x")
		e.p("if %s := %s(r, %s); %s != nil {", x, valueFunc(v.Prim), mode, x)
		assign(x)
		e.p("}")
	case *ir.Text:
		x := e.tmp("x")
		e.p("if %s := wirejson.StringValue(r, %s); %s != nil {", x, mode, x)
		if pointer {
			assign(x)
		} else {
			assign("*" + x)
		}
		e.p("}")
	case *ir.Nested:
		x := e.tmp("x")
		e.p("%s, err := Parse%s(r)", x, v.Type)
		e.p("if err != nil {")
		e.p("return nil, err")
		e.p("}")
		e.p("if %s != nil {", x)
		if v.Pointer {
			assign(x)
		} else {
			assign("*" + x)
		}
		e.p("}")
	case *ir.AdapterBacked:
		raw, x := e.tmp("raw"), e.tmp("x")
		e.p("if %s := %s(r, %s); %s != nil {", raw, wireValueFunc(v.Adapter.Wire), mode, raw)
		e.p("%s := %s(*%s)", x, v.Adapter.FromWire, raw)
		if pointer {
			assign("&" + x)
		} else {
			assign(x)
		}
		e.p("}")
	case *ir.Dispatch:
		x, ok := e.tmp("x"), e.tmp("ok")
		e.p("%s, %s, err := %s.Parse(r)", x, ok, v.Family.Registry)
		e.p("if err != nil {")
		e.p("return nil, err")
		e.p("}")
		e.p("if %s {", ok)
		assign(x)
		e.p("}")
	case *ir.Sequence:
		l := e.tmp("l")
		e.p("if r.CurrentToken() == wirejson.TokenBeginArray {")
		e.p("%s := make(%s, 0)", l, v.GoType())
		e.p("for r.NextElement() {")
		e.p("if r.CurrentToken() == wirejson.TokenNull {")
		if ir.Nilable(v.Elem) {
			e.p("%s = append(%s, nil)", l, l)
		}
		e.p("continue")
		e.p("}")
		e.readValue(v.Elem, m, false, func(x string) {
			e.p("%s = append(%s, %s)", l, l, x)
		})
		e.p("r.SkipChildren()")
		e.p("}")
		assign(l)
		e.p("}")
	case *ir.Mapping:
		mp, k := e.tmp("m"), e.tmp("k")
		e.p("if r.CurrentToken() == wirejson.TokenBeginObject {")
		e.p("%s := make(%s)", mp, v.GoType())
		e.p("for r.NextField() {")
		e.p("%s := r.CurrentName()", k)
		e.p("r.NextToken()")
		e.p("if r.CurrentToken() == wirejson.TokenNull {")
		if ir.Nilable(v.Value) {
			e.p("%s[%s] = nil", mp, k)
		}
		e.p("continue")
		e.p("}")
		e.readValue(v.Value, m, false, func(x string) {
			e.p("%s[%s] = %s", mp, k, x)
		})
		e.p("r.SkipChildren()")
		e.p("}")
		assign(mp)
		e.p("}")
	}
}

func readFunc(k ir.PrimitiveKind) string {
	switch {
	case k == ir.Bool:
		return "wirejson.ReadBool"
	case k.IsInteger():
		return "wirejson.ReadInt[" + k.String() + "]"
	default:
		return "wirejson.ReadFloat[" + k.String() + "]"
	}
}

func valueFunc(k ir.PrimitiveKind) string {
	switch {
	case k == ir.Bool:
		return "wirejson.BoolValue"
	case k.IsInteger():
		return "wirejson.IntValue[" + k.String() + "]"
	default:
		return "wirejson.FloatValue[" + k.String() + "]"
	}
}

func wireValueFunc(k ir.WireKind) string {
	switch k {
	case ir.WireString:
		return "wirejson.StringValue"
	case ir.WireBool:
		return "wirejson.BoolValue"
	case ir.WireFloat32, ir.WireFloat64:
		return "wirejson.FloatValue[" + k.String() + "]"
	default:
		return "wirejson.IntValue[" + k.String() + "]"
	}
}

func (e *emitter) variantAdapter(t *ir.SchemaType) {
	fam := t.Variant.Family
	e.p("")
	e.p("// %sTypeAdapter returns the %s adapter for %s, registered under %q.", t.Name, fam.Interface, t.Name, t.Variant.Discriminator)
	e.p("func %sTypeAdapter() wirejson.TypeAdapter[%s] {", t.Name, fam.Interface)
	if t.Serializer {
		e.p("return wirejson.VariantAdapter[%s](parse%sFields, serialize%sFields)", fam.Interface, t.Name, t.Name)
	} else {
		e.p("return wirejson.VariantAdapter[%s, *%s](parse%sFields, nil)", fam.Interface, t.Name, t.Name)
	}
	e.p("}")
}

// registerVariants emits a helper registering every variant of fam declared
// in this set.
func (e *emitter) registerVariants(fam *ir.Family) {
	var variants []*ir.SchemaType
	for _, t := range e.set.Types {
		if t.Variant != nil && t.Variant.Family == fam {
			variants = append(variants, t)
		}
	}
	if len(variants) == 0 {
		return
	}
	e.p("")
	e.p("// Register%sVariants registers the %s variants declared alongside it.", fam.Interface, fam.Interface)
	e.p("func Register%sVariants(reg *wirejson.Registry[%s]) error {", fam.Interface, fam.Interface)
	for _, t := range variants {
		e.p("if err := reg.Register(%q, %sTypeAdapter()); err != nil {", t.Variant.Discriminator, t.Name)
		e.p("return err")
		e.p("}")
	}
	e.p("return nil")
	e.p("}")
}
