package schema

import (
	"bytes"
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	gojson "github.com/goccy/go-json"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Format identifies a schema file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", errors.Errorf("unsupported schema file extension %q", filepath.Ext(path))
}

// LoadFile reads, decodes, defaults and validates a schema file.
func LoadFile(path string) (*File, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read schema file %s", path)
	}
	f, err := Parse(data, format)
	if err != nil {
		return nil, errors.Wrapf(err, "schema file %s", path)
	}
	return f, nil
}

// Parse decodes data in the given format.
func Parse(data []byte, format Format) (*File, error) {
	var f File
	var err error
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&f)
	case FormatJSON:
		dec := gojson.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&f)
	case FormatTOML:
		err = toml.Unmarshal(data, &f)
	default:
		return nil, errors.Errorf("unknown schema format %q", format)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s schema", format)
	}
	ApplyDefaults(&f)
	if err := Validate(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

// ApplyDefaults fills in optional values.
func ApplyDefaults(f *File) {
	for i := range f.Types {
		t := &f.Types[i]
		if t.Variant != nil && t.Variant.Name == "" {
			t.Variant.Name = t.Name
		}
		for j := range t.Fields {
			fd := &t.Fields[j]
			if fd.Wire == "" {
				fd.Wire = lowerFirst(fd.Name)
			}
			if fd.Mapping == "" {
				fd.Mapping = MappingCoerced
			}
		}
	}
	for i := range f.Dispatch {
		d := &f.Dispatch[i]
		if d.Registry == "" {
			d.Registry = d.Name + "Registry"
		}
		if d.Key == "" {
			d.Key = "type"
		}
	}
}

func lowerFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[n:]
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("goident", func(fl validator.FieldLevel) bool {
		return token.IsIdentifier(fl.Field().String())
	})
	return v
}

// Validate checks the structural constraints of f. Semantic checks (shapes,
// adapters, wire names) belong to resolution.
func Validate(f *File) error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(err, "validate schema")
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag())
		if fe.Param() != "" {
			msg += " (" + fe.Param() + ")"
		}
		msgs = append(msgs, msg)
	}
	return errors.Errorf("invalid schema: %s", strings.Join(msgs, "; "))
}
