// Package resolve turns a schema.File into an immutable ir.Set: it
// classifies every field's shape, binds adapters and polymorphic families,
// and enforces the schema invariants.
package resolve

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"log/slog"
	"strings"

	"github.com/reoring/wirejson/internal/diag"
	"github.com/reoring/wirejson/internal/ir"
	"github.com/reoring/wirejson/schema"
)

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger for warnings and debug output.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// Resolver holds the state of one resolution.
type Resolver struct {
	file   *schema.File
	logger *slog.Logger
	diags  *diag.Diagnostics

	needToWire bool
	adapters   map[string]*ir.Adapter // by adapter name; nil when invalid
	cls        classifier
	set        *ir.Set
}

// Resolve validates f and builds its descriptor set. Warnings never stop
// resolution; when any error is found the set is nil and the returned error
// is a *diag.SchemaError.
func Resolve(f *schema.File, opts ...Option) (*ir.Set, *diag.Diagnostics, error) {
	r := &Resolver{
		file:     f,
		logger:   slog.Default(),
		diags:    &diag.Diagnostics{},
		adapters: map[string]*ir.Adapter{},
		cls: classifier{
			types:    map[string]bool{},
			families: map[string]*ir.Family{},
			opaque:   map[string]*ir.Adapter{},
		},
		set: &ir.Set{Package: f.Package, EmitTypes: f.Options.EmitTypes},
	}
	for _, o := range opts {
		o(r)
	}
	r.logger.Debug("resolving schema", "package", f.Package, "types", len(f.Types))

	r.indexTypes()
	r.bindFamilies()
	r.bindAdapters()
	for i := range f.Types {
		if t := r.resolveType(&f.Types[i]); t != nil {
			r.set.Types = append(r.set.Types, t)
		}
	}
	r.checkReferences()

	r.diags.Log(r.logger)
	if err := r.diags.Err(); err != nil {
		return nil, r.diags, err
	}
	r.set.Warnings = len(r.diags.Warnings)
	return r.set, r.diags, nil
}

func (r *Resolver) indexTypes() {
	for _, t := range r.file.Types {
		if r.cls.types[t.Name] {
			r.diags.AddError(diag.CodeDuplicateType, fmt.Sprintf("type %s declared more than once", t.Name), t.Name, "")
		}
		r.cls.types[t.Name] = true
		if t.GeneratesSerializer(r.file.Options) {
			r.needToWire = true
		}
	}
}

func (r *Resolver) bindFamilies() {
	for _, d := range r.file.Dispatch {
		if r.cls.families[d.Name] != nil || r.cls.types[d.Name] {
			r.diags.AddError(diag.CodeDuplicateType, fmt.Sprintf("dispatch interface %s clashes with another declaration", d.Name), d.Name, "")
			continue
		}
		fam := &ir.Family{Interface: d.Name, Registry: d.Registry, Key: d.Key, Declare: d.Declare}
		r.cls.families[d.Name] = fam
		r.set.Families = append(r.set.Families, fam)
	}
}

func (r *Resolver) bindAdapters() {
	for _, a := range r.file.Adapters {
		r.adapters[a.Name] = r.bindAdapter(a)
	}
	used := map[string]bool{}
	for _, o := range r.file.Opaque {
		if o.Adapter == "" {
			r.diags.AddWarning(diag.CodeAdapterMissing,
				fmt.Sprintf("type %s has no adapter; fields of this type fall back to structural rules", o.Name), o.Name, "")
			continue
		}
		a, declared := r.adapters[o.Adapter]
		if !declared {
			r.diags.AddError(diag.CodeUnknownAdapter, fmt.Sprintf("adapter %s is not declared", o.Adapter), o.Name, "")
			continue
		}
		used[o.Adapter] = true
		if a == nil {
			continue
		}
		if a.Type != o.Name {
			r.diags.AddWarning(diag.CodeAdapterParameterType,
				fmt.Sprintf("adapter %s converts %s, not %s", a.Name, a.Type, o.Name), o.Name, "")
			continue
		}
		r.cls.opaque[o.Name] = a
		r.set.Opaque = append(r.set.Opaque, &ir.Opaque{Name: o.Name, Adapter: a})
	}
	for _, t := range r.file.Types {
		for _, f := range t.Fields {
			if f.Adapter != "" {
				used[f.Adapter] = true
			}
		}
	}
	for _, a := range r.file.Adapters {
		if !used[a.Name] {
			r.diags.AddInfo(diag.CodeAdapterUnused, fmt.Sprintf("adapter %s is not referenced", a.Name), a.Name, "")
		}
	}
}

func (r *Resolver) resolveType(decl *schema.TypeDecl) *ir.SchemaType {
	t := &ir.SchemaType{
		Name:        decl.Name,
		Strict:      decl.Strict,
		Postprocess: decl.Postprocess,
		Serializer:  decl.GeneratesSerializer(r.file.Options),
	}
	if v := decl.Variant; v != nil {
		fam := r.cls.families[v.Dispatch]
		if fam == nil {
			r.diags.AddError(diag.CodeUnknownRegistry, fmt.Sprintf("variant of undeclared dispatch interface %s", v.Dispatch), decl.Name, "")
		} else {
			t.Variant = &ir.Variant{Family: fam, Discriminator: v.Name}
		}
	}

	failed := false
	owners := map[string]string{}
	for i := range decl.Fields {
		fd := &decl.Fields[i]
		f := r.resolveField(t, fd, i)
		if f == nil {
			failed = true
			continue
		}
		for _, name := range f.WireNames() {
			if prev, dup := owners[name]; dup {
				r.diags.AddError(diag.CodeDuplicateWireName,
					fmt.Sprintf("wire name %q is used by both %s and %s", name, prev, f.Name), t.Name, f.Name)
				failed = true
				continue
			}
			owners[name] = f.Name
		}
		t.Fields = append(t.Fields, f)
	}
	if failed {
		return nil
	}
	return t
}

func (r *Resolver) resolveField(t *ir.SchemaType, fd *schema.FieldDecl, index int) *ir.FieldDescriptor {
	f := &ir.FieldDescriptor{
		Name:       fd.Name,
		WireName:   fd.Wire,
		Alternates: fd.Alternates,
		Default:    fd.Default,
		Index:      index,
	}
	if fd.Mapping == schema.MappingExact {
		f.Mapping = ir.Exact
	}

	switch {
	case fd.Template != nil:
		// A field-level template wins over any adapter, including the one
		// bound to the field's type.
		r.checkTemplate(fd.Template.Parse, "parse", t.Name, fd.Name)
		if t.Serializer {
			if strings.TrimSpace(fd.Template.Serialize) == "" {
				r.diags.AddError(diag.CodeMissingTemplate, "serialize template required when serializers are generated", t.Name, fd.Name)
				return nil
			}
			r.checkTemplate(fd.Template.Serialize, "serialize", t.Name, fd.Name)
		}
		f.Shape = &ir.AdapterBacked{
			Template: &ir.Template{Parse: fd.Template.Parse, Serialize: fd.Template.Serialize},
			Declared: fd.Type,
		}
		f.Nullable = fd.Nullable || strings.HasPrefix(strings.TrimSpace(fd.Type), "*")
	default:
		var override *ir.Adapter
		if fd.Adapter != "" {
			a, declared := r.adapters[fd.Adapter]
			if !declared {
				r.diags.AddError(diag.CodeUnknownAdapter, fmt.Sprintf("adapter %s is not declared", fd.Adapter), t.Name, fd.Name)
				return nil
			}
			override = a
		}
		shape, pointer, err := r.cls.field(fd.Type, override)
		if err != nil {
			var ce *classifyError
			code := diag.CodeUnsupportedType
			if errors.As(err, &ce) {
				code = ce.code
			}
			msg := err.Error()
			if ce == nil || ce.expr != fd.Type {
				msg += " (declared as " + fd.Type + ")"
			}
			r.diags.AddError(code, msg, t.Name, fd.Name)
			return nil
		}
		f.Shape = shape
		f.Nullable = pointer || fd.Nullable
	}

	if fd.Required != nil {
		f.Required = *fd.Required
	} else {
		f.Required = t.Strict && !f.Nullable
	}

	if f.Default != "" && !r.checkDefault(t, f) {
		return nil
	}
	return f
}

// checkDefault accepts Go literal defaults on non-nullable scalar fields.
func (r *Resolver) checkDefault(t *ir.SchemaType, f *ir.FieldDescriptor) bool {
	switch f.Shape.(type) {
	case *ir.Primitive, *ir.Text:
		if f.Nullable {
			break
		}
		e, err := parser.ParseExpr(f.Default)
		if err != nil {
			r.diags.AddError(diag.CodeInvalidDefault, fmt.Sprintf("default %q is not a Go expression", f.Default), t.Name, f.Name)
			return false
		}
		switch e.(type) {
		case *ast.BasicLit, *ast.Ident, *ast.UnaryExpr:
			return true
		}
		r.diags.AddError(diag.CodeInvalidDefault, fmt.Sprintf("default %q must be a literal", f.Default), t.Name, f.Name)
		return false
	}
	r.diags.AddError(diag.CodeInvalidDefault, "defaults are only supported on non-nullable scalar fields", t.Name, f.Name)
	return false
}

// checkReferences verifies that every nested type a serializer calls also
// has a serializer, and notes families nothing is registered in.
func (r *Resolver) checkReferences() {
	byName := map[string]*ir.SchemaType{}
	for _, t := range r.set.Types {
		byName[t.Name] = t
	}
	populated := map[*ir.Family]bool{}
	for _, t := range r.set.Types {
		if t.Variant != nil {
			populated[t.Variant.Family] = true
		}
		if !t.Serializer {
			continue
		}
		for _, f := range t.Fields {
			for _, name := range nestedTypes(f.Shape) {
				if n := byName[name]; n != nil && !n.Serializer {
					r.diags.AddError(diag.CodeUnknownNestedSerializer,
						fmt.Sprintf("%s is serialized but nested type %s has no serializer", t.Name, name), t.Name, f.Name)
				}
			}
		}
	}
	for _, fam := range r.set.Families {
		if !populated[fam] {
			r.diags.AddInfo(diag.CodeVariantWithoutRegistry,
				fmt.Sprintf("no schema type is declared as a variant of %s; register adapters manually", fam.Interface), fam.Interface, "")
		}
	}
}

func nestedTypes(s ir.Shape) []string {
	switch v := s.(type) {
	case *ir.Nested:
		return []string{v.Type}
	case *ir.Sequence:
		return nestedTypes(v.Elem)
	case *ir.Mapping:
		return nestedTypes(v.Value)
	}
	return nil
}
