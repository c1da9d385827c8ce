// Package gosrc builds a schema.File from Go source annotated with
// //wirejson: directives and wire struct tags.
//
//	//wirejson:type strict
//	type Pet struct {
//		Name string `wire:"name,alt=pet_name"`
//		Age  *int32 `wire:"age,exact"`
//	}
//
// Recognized directives:
//
//	//wirejson:type [strict] [postprocess] [noserializer]   on struct types
//	//wirejson:variant <Interface> [discriminator]           on struct types
//	//wirejson:dispatch [Registry] [key=<k>] [declare]       on interfaces
//	//wirejson:adapter <Adapter> | //wirejson:opaque         on other named types
//	//wirejson:fromwire <Adapter> | //wirejson:towire <Adapter>  on functions
//	//wirejson:parse <stmt> | //wirejson:serialize <stmt>    on struct fields
package gosrc

import (
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"io/fs"
	"reflect"
	"slices"
	"strings"

	"github.com/pkg/errors"

	"github.com/reoring/wirejson/schema"
)

const directivePrefix = "//wirejson:"

type directive struct {
	name string
	args []string
}

func directives(groups ...*ast.CommentGroup) []directive {
	var out []directive
	for _, g := range groups {
		if g == nil {
			continue
		}
		for _, c := range g.List {
			rest, ok := strings.CutPrefix(c.Text, directivePrefix)
			if !ok {
				continue
			}
			name, args, _ := strings.Cut(rest, " ")
			out = append(out, directive{name: name, args: strings.Fields(args)})
		}
	}
	return out
}

// rawDirective returns everything after the directive name, untokenized.
func rawDirective(g *ast.CommentGroup, name string) (string, bool) {
	if g == nil {
		return "", false
	}
	for _, c := range g.List {
		rest, ok := strings.CutPrefix(c.Text, directivePrefix+name+" ")
		if ok {
			return strings.TrimSpace(rest), true
		}
	}
	return "", false
}

// ScanDir parses the non-test Go files in dir and collects annotated
// declarations.
func ScanDir(dir string) (*schema.File, error) {
	fset := token.NewFileSet()
	notTest := func(fi fs.FileInfo) bool { return !strings.HasSuffix(fi.Name(), "_test.go") }
	pkgs, err := parser.ParseDir(fset, dir, notTest, parser.ParseComments)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", dir)
	}
	if len(pkgs) == 0 {
		return nil, errors.Errorf("no Go package in %s", dir)
	}
	if len(pkgs) > 1 {
		return nil, errors.Errorf("multiple packages in %s", dir)
	}
	for name, pkg := range pkgs {
		files := make([]*ast.File, 0, len(pkg.Files))
		paths := make([]string, 0, len(pkg.Files))
		for p := range pkg.Files {
			paths = append(paths, p)
		}
		slices.Sort(paths)
		for _, p := range paths {
			files = append(files, pkg.Files[p])
		}
		return ScanFiles(name, files)
	}
	return nil, nil
}

// ScanFiles collects annotated declarations from already parsed files.
func ScanFiles(pkg string, files []*ast.File) (*schema.File, error) {
	s := &scanner{out: &schema.File{Package: pkg}, adapters: map[string]int{}}
	for _, f := range files {
		for _, decl := range f.Decls {
			switch d := decl.(type) {
			case *ast.GenDecl:
				if d.Tok != token.TYPE {
					continue
				}
				for _, spec := range d.Specs {
					ts := spec.(*ast.TypeSpec)
					doc := ts.Doc
					if len(d.Specs) == 1 && doc == nil {
						doc = d.Doc
					}
					if err := s.typeSpec(ts, doc); err != nil {
						return nil, err
					}
				}
			case *ast.FuncDecl:
				if d.Recv == nil {
					s.funcDecl(d)
				}
			}
		}
	}
	schema.ApplyDefaults(s.out)
	if err := schema.Validate(s.out); err != nil {
		return nil, err
	}
	return s.out, nil
}

type scanner struct {
	out      *schema.File
	adapters map[string]int // adapter name -> index in out.Adapters
}

func (s *scanner) typeSpec(ts *ast.TypeSpec, doc *ast.CommentGroup) error {
	dirs := directives(doc)
	if len(dirs) == 0 {
		return nil
	}
	name := ts.Name.Name
	switch t := ts.Type.(type) {
	case *ast.StructType:
		var decl *schema.TypeDecl
		for _, d := range dirs {
			switch d.name {
			case "type":
				decl = &schema.TypeDecl{Name: name}
				for _, a := range d.args {
					switch a {
					case "strict":
						decl.Strict = true
					case "postprocess":
						decl.Postprocess = true
					case "noserializer":
						off := false
						decl.Serializer = &off
					default:
						return errors.Errorf("%s: unknown type option %q", name, a)
					}
				}
			}
		}
		if decl == nil {
			return nil
		}
		for _, d := range dirs {
			if d.name != "variant" {
				continue
			}
			if len(d.args) == 0 {
				return errors.Errorf("%s: variant directive needs an interface name", name)
			}
			decl.Variant = &schema.VariantDecl{Dispatch: d.args[0]}
			if len(d.args) > 1 {
				decl.Variant.Name = d.args[1]
			}
		}
		fields, err := structFields(name, t)
		if err != nil {
			return err
		}
		decl.Fields = fields
		s.out.Types = append(s.out.Types, *decl)
	case *ast.InterfaceType:
		for _, d := range dirs {
			if d.name != "dispatch" {
				continue
			}
			dd := schema.DispatchDecl{Name: name}
			for _, a := range d.args {
				switch {
				case a == "declare":
					dd.Declare = true
				case strings.HasPrefix(a, "key="):
					dd.Key = strings.TrimPrefix(a, "key=")
				default:
					dd.Registry = a
				}
			}
			s.out.Dispatch = append(s.out.Dispatch, dd)
		}
	default:
		for _, d := range dirs {
			switch d.name {
			case "adapter":
				if len(d.args) != 1 {
					return errors.Errorf("%s: adapter directive needs one adapter name", name)
				}
				s.out.Opaque = append(s.out.Opaque, schema.OpaqueDecl{Name: name, Adapter: d.args[0]})
				s.adapter(d.args[0]).Type = name
			case "opaque":
				s.out.Opaque = append(s.out.Opaque, schema.OpaqueDecl{Name: name})
			}
		}
	}
	return nil
}

func (s *scanner) adapter(name string) *schema.AdapterDecl {
	i, ok := s.adapters[name]
	if !ok {
		i = len(s.out.Adapters)
		s.adapters[name] = i
		s.out.Adapters = append(s.out.Adapters, schema.AdapterDecl{Name: name})
	}
	return &s.out.Adapters[i]
}

func (s *scanner) funcDecl(fd *ast.FuncDecl) {
	for _, d := range directives(fd.Doc) {
		var role string
		switch d.name {
		case "fromwire":
			role = schema.RoleFromWire
		case "towire":
			role = schema.RoleToWire
		default:
			continue
		}
		if len(d.args) != 1 {
			continue
		}
		a := s.adapter(d.args[0])
		a.Funcs = append(a.Funcs, schema.FuncDecl{
			Name:    fd.Name.Name,
			Role:    role,
			Params:  fieldTypes(fd.Type.Params),
			Results: fieldTypes(fd.Type.Results),
		})
	}
}

func fieldTypes(fl *ast.FieldList) []string {
	if fl == nil {
		return nil
	}
	var out []string
	for _, f := range fl.List {
		n := max(len(f.Names), 1)
		for range n {
			out = append(out, types.ExprString(f.Type))
		}
	}
	return out
}

func structFields(typeName string, st *ast.StructType) ([]schema.FieldDecl, error) {
	var out []schema.FieldDecl
	for _, field := range st.Fields.List {
		if len(field.Names) == 0 || field.Tag == nil {
			continue
		}
		goName := field.Names[0].Name
		if !ast.IsExported(goName) {
			continue
		}
		tag := reflect.StructTag(strings.Trim(field.Tag.Value, "`"))
		spec, hasWire := tag.Lookup("wire")
		if !hasWire {
			j, ok := tag.Lookup("json")
			if !ok {
				continue
			}
			spec, _, _ = strings.Cut(j, ",")
		}
		parts := strings.Split(spec, ",")
		if parts[0] == "-" {
			continue
		}
		fd := schema.FieldDecl{Name: goName, Wire: parts[0], Type: types.ExprString(field.Type)}
		for _, opt := range parts[1:] {
			key, val, _ := strings.Cut(strings.TrimSpace(opt), "=")
			switch key {
			case "nullable":
				fd.Nullable = true
			case "required", "optional":
				req := key == "required"
				fd.Required = &req
			case "exact", "coerced":
				fd.Mapping = key
			case "alt":
				fd.Alternates = strings.Split(val, "|")
			case "adapter":
				fd.Adapter = val
			case "default":
				fd.Default = val
			case "":
			default:
				return nil, errors.Errorf("%s.%s: unknown wire tag option %q", typeName, goName, key)
			}
		}
		if p, ok := rawDirective(field.Doc, "parse"); ok {
			fd.Template = &schema.TemplateDecl{Parse: p}
			fd.Template.Serialize, _ = rawDirective(field.Doc, "serialize")
		}
		if len(field.Names) > 1 {
			return nil, errors.Errorf("%s: tagged field group %s must declare one name", typeName, goName)
		}
		out = append(out, fd)
	}
	return out, nil
}
