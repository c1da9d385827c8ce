package wirejson

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
)

// Discriminated is implemented by every polymorphic variant. TypeName returns
// the discriminator the value is written under.
type Discriminated interface {
	TypeName() string
}

// TypeAdapter reads and writes the fields of one variant. The registry owns
// the surrounding braces and the discriminator field; adapters see the rest.
type TypeAdapter[T any] interface {
	// Parse reads the remaining fields of an object whose discriminator was
	// already consumed, including the closing brace.
	Parse(r Reader) (T, error)
	// Serialize writes the variant's own fields.
	Serialize(w Writer, v T) error
}

// Registry maps discriminator strings to variant adapters for the
// polymorphic family T.
//
// Registration belongs to program initialization. Lookups are lock-free and
// see a consistent snapshot even while Register runs; Freeze marks the end of
// registration, after which Register and Unregister fail.
type Registry[T Discriminated] struct {
	name string
	key  string

	mu       sync.Mutex
	adapters atomic.Pointer[map[string]TypeAdapter[T]]
	frozen   atomic.Bool
}

// NewRegistry returns an empty registry. name labels the family in errors and
// signals; key is the discriminator field name, "type" when empty.
func NewRegistry[T Discriminated](name, key string) *Registry[T] {
	if key == "" {
		key = "type"
	}
	g := &Registry[T]{name: name, key: key}
	empty := map[string]TypeAdapter[T]{}
	g.adapters.Store(&empty)
	return g
}

// Name returns the family label.
func (g *Registry[T]) Name() string { return g.name }

// Key returns the discriminator field name.
func (g *Registry[T]) Key() string { return g.key }

// Register binds discriminator to a. A later registration of the same
// discriminator replaces the earlier one.
func (g *Registry[T]) Register(discriminator string, a TypeAdapter[T]) error {
	if a == nil {
		return fmt.Errorf("wirejson: nil adapter for %s variant %q", g.name, discriminator)
	}
	if err := g.update(func(m map[string]TypeAdapter[T]) { m[discriminator] = a }); err != nil {
		return err
	}
	emitVariantRegistered(g.name, discriminator)
	return nil
}

// MustRegister is Register for package initialization; it panics on error.
func (g *Registry[T]) MustRegister(discriminator string, a TypeAdapter[T]) {
	if err := g.Register(discriminator, a); err != nil {
		panic(err)
	}
}

// Unregister removes the binding for discriminator, if any.
func (g *Registry[T]) Unregister(discriminator string) error {
	return g.update(func(m map[string]TypeAdapter[T]) { delete(m, discriminator) })
}

func (g *Registry[T]) update(fn func(map[string]TypeAdapter[T])) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.frozen.Load() {
		return fmt.Errorf("%w: %s", ErrRegistryFrozen, g.name)
	}
	cur := *g.adapters.Load()
	next := make(map[string]TypeAdapter[T], len(cur)+1)
	for k, v := range cur {
		next[k] = v
	}
	fn(next)
	g.adapters.Store(&next)
	return nil
}

// Freeze ends registration.
func (g *Registry[T]) Freeze() { g.frozen.Store(true) }

// Frozen reports whether Freeze was called.
func (g *Registry[T]) Frozen() bool { return g.frozen.Load() }

// Variants returns the registered discriminators in sorted order.
func (g *Registry[T]) Variants() []string {
	m := *g.adapters.Load()
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// ResolveForParse returns the adapter bound to discriminator.
func (g *Registry[T]) ResolveForParse(discriminator string) (TypeAdapter[T], bool) {
	a, ok := (*g.adapters.Load())[discriminator]
	return a, ok
}

// ResolveForSerialize asks v for its discriminator and returns it together
// with the bound adapter.
func (g *Registry[T]) ResolveForSerialize(v T) (string, TypeAdapter[T], bool) {
	if any(v) == nil {
		return "", nil, false
	}
	name := v.TypeName()
	a, ok := g.ResolveForParse(name)
	return name, a, ok
}

// Parse reads one polymorphic object. The reader must be positioned on the
// object's first token, and the discriminator must be the object's first
// field. Objects with a missing or unknown discriminator are skipped and
// reported as unset (ok == false) without error.
func (g *Registry[T]) Parse(r Reader) (v T, ok bool, err error) {
	if r.CurrentToken() != TokenBeginObject {
		r.SkipChildren()
		return v, false, r.Err()
	}
	if !r.NextField() {
		return v, false, r.Err()
	}
	if r.CurrentName() != g.key {
		r.NextToken()
		r.SkipChildren()
		skipFields(r)
		emitVariantUnknown(g.name, "")
		return v, false, r.Err()
	}
	if r.NextToken() != TokenString {
		r.SkipChildren()
		skipFields(r)
		emitVariantUnknown(g.name, "")
		return v, false, r.Err()
	}
	discriminator := r.Text()
	a, found := g.ResolveForParse(discriminator)
	if !found {
		skipFields(r)
		emitVariantUnknown(g.name, discriminator)
		return v, false, r.Err()
	}
	v, err = a.Parse(r)
	if err != nil {
		return v, false, err
	}
	return v, true, nil
}

// skipFields consumes the rest of the current object including its end.
func skipFields(r Reader) {
	for r.NextField() {
		r.NextToken()
		r.SkipChildren()
	}
}

// Serialize writes v as a flat object led by its discriminator.
func (g *Registry[T]) Serialize(w Writer, v T) error {
	discriminator, a, ok := g.ResolveForSerialize(v)
	if !ok {
		emitVariantUnregistered(g.name, discriminator)
		return fmt.Errorf("%w: %s %q", ErrUnregisteredVariant, g.name, discriminator)
	}
	w.WriteStartObject()
	w.WriteFieldName(g.key)
	w.WriteString(discriminator)
	if err := a.Serialize(w, v); err != nil {
		return err
	}
	w.WriteEndObject()
	return w.Err()
}

// VariantAdapter builds a TypeAdapter for the family T from the field-level
// routines of the concrete variant V.
func VariantAdapter[T any, V any](parse func(Reader) (V, error), fields func(Writer, V) error) TypeAdapter[T] {
	return variantAdapter[T, V]{parse: parse, fields: fields}
}

type variantAdapter[T any, V any] struct {
	parse  func(Reader) (V, error)
	fields func(Writer, V) error
}

func (a variantAdapter[T, V]) Parse(r Reader) (T, error) {
	var zero T
	v, err := a.parse(r)
	if err != nil {
		return zero, err
	}
	t, ok := any(v).(T)
	if !ok {
		return zero, fmt.Errorf("%w: parsed %T", ErrVariantMismatch, v)
	}
	return t, nil
}

func (a variantAdapter[T, V]) Serialize(w Writer, v T) error {
	vv, ok := any(v).(V)
	if !ok {
		return fmt.Errorf("%w: got %T", ErrVariantMismatch, v)
	}
	if a.fields == nil {
		return fmt.Errorf("%w: %T has no serializer", ErrVariantMismatch, v)
	}
	return a.fields(w, vv)
}
