package resolve

import (
	"fmt"
	"strings"

	"github.com/reoring/wirejson/internal/diag"
	"github.com/reoring/wirejson/internal/ir"
	"github.com/reoring/wirejson/schema"
)

// bindAdapter validates one adapter declaration. Every violation is a
// warning; an adapter with any violation is not bound and nil is returned.
func (r *Resolver) bindAdapter(a schema.AdapterDecl) *ir.Adapter {
	var from, to []schema.FuncDecl
	for _, fn := range a.Funcs {
		if fn.Role == schema.RoleFromWire {
			from = append(from, fn)
		} else {
			to = append(to, fn)
		}
	}
	ok := true
	warn := func(code, format string, args ...any) {
		r.diags.AddWarning(code, fmt.Sprintf(format, args...), "adapter "+a.Name+" ("+a.Type+")", "")
		ok = false
	}

	bound := &ir.Adapter{Name: a.Name, Type: a.Type}
	switch len(from) {
	case 0:
		warn(diag.CodeFromWireMissing, "no from-wire function")
	case 1:
		fn := from[0]
		bound.FromWire = fn.Name
		if len(fn.Params) != 1 {
			warn(diag.CodeAdapterArity, "from-wire function %s must take exactly one parameter, has %d", fn.Name, len(fn.Params))
		} else if wk, isWire := ir.LookupWire(fn.Params[0]); !isWire {
			warn(diag.CodeAdapterWireType, "from-wire function %s takes %s, which is not a wire primitive", fn.Name, fn.Params[0])
		} else {
			bound.Wire = wk
		}
		if len(fn.Results) != 1 {
			warn(diag.CodeAdapterArity, "from-wire function %s must return exactly one value, returns %d", fn.Name, len(fn.Results))
		} else if fn.Results[0] != a.Type {
			warn(diag.CodeAdapterReturnType, "from-wire function %s returns %s, want exactly %s", fn.Name, fn.Results[0], a.Type)
		}
	default:
		warn(diag.CodeFromWireAmbiguous, "exactly one from-wire function expected, found %s", funcNames(from))
	}

	if r.needToWire {
		switch len(to) {
		case 0:
			warn(diag.CodeToWireMissing, "no to-wire function")
		case 1:
			fn := to[0]
			bound.ToWire = fn.Name
			if len(fn.Params) != 1 {
				warn(diag.CodeAdapterArity, "to-wire function %s must take exactly one parameter, has %d", fn.Name, len(fn.Params))
			} else if fn.Params[0] != a.Type {
				warn(diag.CodeAdapterParameterType, "to-wire function %s takes %s, want exactly %s", fn.Name, fn.Params[0], a.Type)
			}
			if len(fn.Results) != 1 {
				warn(diag.CodeAdapterArity, "to-wire function %s must return exactly one value, returns %d", fn.Name, len(fn.Results))
			} else if len(from) == 1 && len(from[0].Params) == 1 && fn.Results[0] != from[0].Params[0] {
				warn(diag.CodeAdapterReturnType, "to-wire function %s returns %s, want %s to match %s", fn.Name, fn.Results[0], from[0].Params[0], from[0].Name)
			}
		default:
			warn(diag.CodeToWireAmbiguous, "exactly one to-wire function expected, found %s", funcNames(to))
		}
	}

	if !ok {
		r.logger.Debug("adapter not bound", "adapter", a.Name, "type", a.Type)
		return nil
	}
	return bound
}

func funcNames(fns []schema.FuncDecl) string {
	names := make([]string, len(fns))
	for i, fn := range fns {
		names[i] = fn.Name
	}
	return strings.Join(names, ", ")
}
