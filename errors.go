package wirejson

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/wirejson/i18n"
)

// Issue codes reported by readers and writers.
const (
	CodeInvalidType          = "invalid_type"
	CodeRequired             = "required"
	CodeDuplicateKey         = "duplicate_key"
	CodeDiscriminatorMissing = "discriminator_missing"
	CodeDiscriminatorUnknown = "discriminator_unknown"
	CodeParseError           = "parse_error"
	CodeOverflow             = "overflow"
	CodeTruncated            = "truncated"
	CodeInvalidNumber        = "invalid_number"
)

var (
	// ErrRegistryFrozen is returned by Registry.Register after Freeze.
	ErrRegistryFrozen = errors.New("wirejson: registry is frozen")
	// ErrUnregisteredVariant is returned when serializing a polymorphic value
	// whose discriminator has no adapter.
	ErrUnregisteredVariant = errors.New("wirejson: no adapter registered for variant")
	// ErrVariantMismatch is returned when a variant adapter receives a value of
	// another concrete type.
	ErrVariantMismatch = errors.New("wirejson: value does not match variant adapter")
	// ErrWriterState is returned when writer calls do not form valid JSON.
	ErrWriterState = errors.New("wirejson: invalid writer state")
)

// Issue represents a single parse problem.
type Issue struct {
	Path    string // JSON Pointer (for example: /items/2/price).
	Code    string // One of the codes listed above.
	Message string
	Cause   error // Optional: underlying error.
	Offset  int64 // Byte offset in the input source (-1 when unknown).
}

// newIssue builds an Issue with a translated message.
func newIssue(code, path string, offset int64, data map[string]string) Issue {
	msg := i18n.T(code, data)
	if exp := data["expected"]; exp != "" {
		msg += ": expected " + exp
	}
	if got := data["got"]; got != "" {
		msg += ", got " + got
	}
	return Issue{Path: path, Code: code, Message: msg, Offset: offset}
}

// Issues is a collection of parse problems that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := min(len(iss), maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
		if it.Message != "" {
			fmt.Fprintf(b, " (%s)", it.Message)
		}
	}
	if n := len(iss); n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Unwrap exposes the causes of all issues.
func (iss Issues) Unwrap() []error {
	var out []error
	for _, it := range iss {
		if it.Cause != nil {
			out = append(out, it.Cause)
		}
	}
	return out
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// DeserializationError reports a required field that was absent or null when
// the policy chose to fail.
type DeserializationError struct {
	Field string
	Type  string
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("wirejson: required field %q of %s is missing", e.Field, e.Type)
}
