package resolve

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/types"

	"github.com/reoring/wirejson/internal/diag"
	"github.com/reoring/wirejson/internal/ir"
)

// classifyError reports the innermost type expression that has no shape.
type classifyError struct {
	code   string
	expr   string
	reason string
}

func (e *classifyError) Error() string {
	if e.reason != "" {
		return fmt.Sprintf("unsupported type %s: %s", e.expr, e.reason)
	}
	return "unsupported type " + e.expr
}

func unsupported(e ast.Expr, reason string) error {
	return &classifyError{code: diag.CodeUnsupportedType, expr: types.ExprString(e), reason: reason}
}

// classifier assigns shapes to declared Go type expressions.
type classifier struct {
	types    map[string]bool
	families map[string]*ir.Family
	opaque   map[string]*ir.Adapter
}

// field classifies a field's declared type. override is a field-level
// adapter, which skips structural inspection. The returned bool reports
// whether the declaration was a pointer.
func (c *classifier) field(declared string, override *ir.Adapter) (ir.Shape, bool, error) {
	e, err := parser.ParseExpr(declared)
	if err != nil {
		return nil, false, &classifyError{code: diag.CodeUnsupportedType, expr: declared, reason: "not a Go type expression"}
	}
	base, pointer := e, false
	if star, ok := e.(*ast.StarExpr); ok {
		base, pointer = star.X, true
	}

	if override != nil {
		id, ok := base.(*ast.Ident)
		if !ok || id.Name != override.Type {
			return nil, false, &classifyError{
				code:   diag.CodeUnsupportedType,
				expr:   declared,
				reason: fmt.Sprintf("adapter %s converts %s", override.Name, override.Type),
			}
		}
		return &ir.AdapterBacked{Adapter: override, Declared: override.Type}, pointer, nil
	}

	if !pointer {
		s, err := c.shape(e)
		return s, false, err
	}
	id, ok := base.(*ast.Ident)
	if !ok {
		return nil, false, unsupported(e, "pointers are only supported to named types")
	}
	switch {
	case id.Name == "string":
		return &ir.Text{}, true, nil
	case c.opaque[id.Name] != nil:
		return &ir.AdapterBacked{Adapter: c.opaque[id.Name], Declared: id.Name}, true, nil
	}
	s, err := c.shape(e)
	return s, true, err
}

// shape classifies a type expression in any position.
func (c *classifier) shape(e ast.Expr) (ir.Shape, error) {
	switch t := e.(type) {
	case *ast.Ident:
		return c.ident(t, false)
	case *ast.ParenExpr:
		return c.shape(t.X)
	case *ast.StarExpr:
		id, ok := t.X.(*ast.Ident)
		if !ok {
			return nil, unsupported(e, "pointers are only supported to named types")
		}
		return c.ident(id, true)
	case *ast.ArrayType:
		if t.Len != nil {
			return nil, unsupported(e, "fixed-length arrays are not supported")
		}
		elem, err := c.shape(t.Elt)
		if err != nil {
			return nil, err
		}
		return &ir.Sequence{Elem: elem}, nil
	case *ast.MapType:
		if k, ok := t.Key.(*ast.Ident); !ok || k.Name != "string" {
			return nil, &classifyError{code: diag.CodeNonStringMapKey, expr: types.ExprString(e), reason: "map keys must be string"}
		}
		v, err := c.shape(t.Value)
		if err != nil {
			return nil, err
		}
		return &ir.Mapping{Value: v}, nil
	}
	return nil, unsupported(e, "")
}

func (c *classifier) ident(id *ast.Ident, pointer bool) (ir.Shape, error) {
	name := id.Name
	if k, ok := ir.LookupPrimitive(name); ok {
		if pointer {
			return &ir.Boxed{Prim: k}, nil
		}
		return &ir.Primitive{Prim: k}, nil
	}
	var e ast.Expr = id
	if pointer {
		e = &ast.StarExpr{X: id}
	}
	// A bound adapter takes precedence over a schema type of the same name.
	switch {
	case c.opaque[name] != nil:
		if pointer {
			return nil, unsupported(e, "nullable adapted values are only supported as fields")
		}
		return &ir.AdapterBacked{Adapter: c.opaque[name], Declared: name}, nil
	case c.types[name]:
		return &ir.Nested{Type: name, Pointer: pointer}, nil
	case name == "string":
		if pointer {
			return nil, unsupported(e, "nullable strings are only supported as fields")
		}
		return &ir.Text{}, nil
	case c.families[name] != nil:
		if pointer {
			return nil, unsupported(e, "pointer to interface")
		}
		return &ir.Dispatch{Family: c.families[name]}, nil
	}
	return nil, unsupported(e, "")
}
