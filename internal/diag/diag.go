// Package diag collects the errors and warnings found while resolving a
// schema into codec descriptors.
package diag

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Codes for schema errors.
const (
	CodeDuplicateWireName       = "duplicate_wire_name"
	CodeDuplicateType           = "duplicate_type"
	CodeUnsupportedType         = "unsupported_type"
	CodeNonStringMapKey         = "non_string_map_key"
	CodeUnknownTemplateMarker   = "unknown_template_marker"
	CodeTemplateMarkerDirection = "template_marker_direction"
	CodeMissingTemplate         = "missing_template"
	CodeUnknownNestedSerializer = "unknown_nested_serializer"
	CodeInvalidDefault          = "invalid_default"
	CodeUnknownAdapter          = "unknown_adapter"
	CodeUnknownRegistry         = "unknown_registry"
)

// Codes for adapter warnings.
const (
	CodeAdapterMissing         = "adapter_missing"
	CodeAdapterUnused          = "adapter_unused"
	CodeFromWireMissing        = "adapter_from_wire_missing"
	CodeFromWireAmbiguous      = "adapter_from_wire_ambiguous"
	CodeToWireMissing          = "adapter_to_wire_missing"
	CodeToWireAmbiguous        = "adapter_to_wire_ambiguous"
	CodeAdapterArity           = "adapter_arity"
	CodeAdapterWireType        = "adapter_wire_type"
	CodeAdapterReturnType      = "adapter_return_type"
	CodeAdapterParameterType   = "adapter_parameter_type"
	CodeVariantWithoutRegistry = "variant_without_registry"
)

// Severity of a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	}
	return "unknown"
}

// Diagnostic is one finding.
type Diagnostic struct {
	Severity Severity
	Code     string
	Message  string
	// Type names the schema type (or adapter) the finding belongs to.
	Type string
	// Field names the field, when the finding is field-level.
	Field string
}

func (d Diagnostic) String() string {
	var prefix []string
	if d.Type != "" {
		prefix = append(prefix, "["+d.Type+"]")
	}
	if d.Field != "" {
		prefix = append(prefix, d.Field)
	}
	msg := fmt.Sprintf("[%s] %s", d.Code, d.Message)
	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}
	return msg
}

// LogValue renders a diagnostic as structured attributes.
func (d Diagnostic) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("code", d.Code),
		slog.String("type", d.Type),
		slog.String("field", d.Field),
		slog.String("message", d.Message),
	)
}

// Diagnostics holds all findings of one resolution.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// AddError records a schema error.
func (d *Diagnostics) AddError(code, message, typ, field string) {
	d.Errors = append(d.Errors, Diagnostic{Severity: SeverityError, Code: code, Message: message, Type: typ, Field: field})
}

// AddWarning records a warning.
func (d *Diagnostics) AddWarning(code, message, typ, field string) {
	d.Warnings = append(d.Warnings, Diagnostic{Severity: SeverityWarning, Code: code, Message: message, Type: typ, Field: field})
}

// AddInfo records an informational note.
func (d *Diagnostics) AddInfo(code, message, typ, field string) {
	d.Infos = append(d.Infos, Diagnostic{Severity: SeverityInfo, Code: code, Message: message, Type: typ, Field: field})
}

// HasErrors reports whether any error was recorded.
func (d *Diagnostics) HasErrors() bool { return len(d.Errors) > 0 }

// HasCode reports whether a diagnostic with the given code was recorded at
// any severity.
func (d *Diagnostics) HasCode(code string) bool {
	for _, list := range [][]Diagnostic{d.Errors, d.Warnings, d.Infos} {
		for _, x := range list {
			if x.Code == code {
				return true
			}
		}
	}
	return false
}

// Err combines all errors into one, or returns nil.
func (d *Diagnostics) Err() error {
	if !d.HasErrors() {
		return nil
	}
	parts := make([]string, 0, len(d.Errors))
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}
	return &SchemaError{Diagnostics: d.Errors, msg: strings.Join(parts, "; ")}
}

// Log writes warnings and infos to logger.
func (d *Diagnostics) Log(logger *slog.Logger) {
	for _, w := range d.Warnings {
		logger.Warn("schema warning", "diagnostic", w)
	}
	for _, i := range d.Infos {
		logger.Debug("schema note", "diagnostic", i)
	}
}

// SchemaError is returned when resolution found errors; no code may be
// generated from the schema.
type SchemaError struct {
	Diagnostics []Diagnostic
	msg         string
}

func (e *SchemaError) Error() string { return "schema error: " + e.msg }

// AsSchemaError extracts a *SchemaError from err.
func AsSchemaError(err error) (*SchemaError, bool) {
	var se *SchemaError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
