package wirejson

import (
	"errors"
	"math"
	"strconv"
	"strings"

	eng "github.com/reoring/wirejson/internal/engine"
)

// Mapping selects how strictly a JSON token must match a field's type.
type Mapping int

const (
	// Coerced converts between compatible tokens: "12" reads as 12, 1 reads
	// as true, numbers read as text.
	Coerced Mapping = iota
	// Exact requires the token kind to match the field type.
	Exact
)

func (m Mapping) String() string {
	if m == Exact {
		return "exact"
	}
	return "coerced"
}

// Integer is the set of integer kinds generated code reads and writes.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Float is the set of floating point kinds generated code reads and writes.
type Float interface {
	~float32 | ~float64
}

func mismatch(r Reader, expected string) error {
	return Issues{newIssue(CodeInvalidType, eng.PointerOrRoot(r.Path()), r.Location(), map[string]string{
		"expected": expected,
		"got":      r.CurrentToken().String(),
	})}
}

func overflow(r Reader, expected string, cause error) error {
	it := newIssue(CodeOverflow, eng.PointerOrRoot(r.Path()), r.Location(), map[string]string{
		"expected": expected,
		"got":      r.Text(),
	})
	it.Cause = cause
	return Issues{it}
}

// ReadInt reads the current token into a non-nullable integer field. It
// returns nil for null. Under Exact mapping anything but an integral number is
// an error; under Coerced mapping strings and booleans convert and other
// tokens read as nil.
func ReadInt[T Integer](r Reader, m Mapping) (*T, error) {
	switch r.CurrentToken() {
	case TokenNull:
		return nil, nil
	case TokenNumber:
		if m == Exact && !r.IsIntegral() {
			return nil, mismatch(r, "integer")
		}
	case TokenString, TokenBool:
		if m == Exact {
			return nil, mismatch(r, "integer")
		}
	default:
		if m == Exact {
			return nil, mismatch(r, "integer")
		}
		return nil, nil
	}
	v, err := parseInt[T](r)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// IntValue reads the current token into a nullable integer. Mismatches and
// null read as nil.
func IntValue[T Integer](r Reader, m Mapping) *T {
	switch r.CurrentToken() {
	case TokenNumber:
		if m == Exact && !r.IsIntegral() {
			return nil
		}
	case TokenString, TokenBool:
		if m == Exact {
			return nil
		}
	default:
		return nil
	}
	v, err := parseInt[T](r)
	if err != nil {
		return nil
	}
	return &v
}

func parseInt[T Integer](r Reader) (T, error) {
	var zero T
	if r.CurrentToken() == TokenBool || !r.IsIntegral() {
		// Coerced path: booleans, strings and fractional numbers.
		txt := strings.TrimSpace(r.Text())
		if r.CurrentToken() == TokenString {
			if n, err := strconv.ParseInt(txt, 10, 64); err == nil {
				return checkRange[T](r, n)
			}
		}
		return checkRange[T](r, r.Int64())
	}
	txt := r.Text()
	if isUnsigned[T]() {
		u, err := strconv.ParseUint(txt, 10, 64)
		if err != nil {
			return zero, overflow(r, "integer", err)
		}
		v := T(u)
		if uint64(v) != u {
			return zero, overflow(r, "integer", strconv.ErrRange)
		}
		return v, nil
	}
	n, err := strconv.ParseInt(txt, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return zero, overflow(r, "integer", err)
		}
		return zero, mismatch(r, "integer")
	}
	return checkRange[T](r, n)
}

func checkRange[T Integer](r Reader, n int64) (T, error) {
	v := T(n)
	if int64(v) != n || (n < 0 && isUnsigned[T]()) {
		return 0, overflow(r, "integer", strconv.ErrRange)
	}
	return v, nil
}

func isUnsigned[T Integer]() bool {
	var zero T
	return zero-1 > 0
}

// ReadFloat reads the current token into a non-nullable floating point field
// with the same rules as ReadInt.
func ReadFloat[T Float](r Reader, m Mapping) (*T, error) {
	switch r.CurrentToken() {
	case TokenNull:
		return nil, nil
	case TokenNumber:
	case TokenString, TokenBool:
		if m == Exact {
			return nil, mismatch(r, "number")
		}
	default:
		if m == Exact {
			return nil, mismatch(r, "number")
		}
		return nil, nil
	}
	v, err := parseFloat[T](r)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// FloatValue reads the current token into a nullable floating point value.
func FloatValue[T Float](r Reader, m Mapping) *T {
	switch r.CurrentToken() {
	case TokenNumber:
	case TokenString, TokenBool:
		if m == Exact {
			return nil
		}
	default:
		return nil
	}
	v, err := parseFloat[T](r)
	if err != nil {
		return nil
	}
	return &v
}

func parseFloat[T Float](r Reader) (T, error) {
	if r.CurrentToken() == TokenBool {
		return T(r.Float64()), nil
	}
	var zero T
	bits := 64
	if _, ok := any(zero).(float32); ok {
		bits = 32
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(r.Text()), bits)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return zero, overflow(r, "number", err)
		}
		return zero, mismatch(r, "number")
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return zero, mismatch(r, "number")
	}
	return T(f), nil
}

// ReadBool reads the current token into a non-nullable boolean field.
func ReadBool(r Reader, m Mapping) (*bool, error) {
	switch r.CurrentToken() {
	case TokenNull:
		return nil, nil
	case TokenBool:
	case TokenNumber, TokenString:
		if m == Exact {
			return nil, mismatch(r, "boolean")
		}
	default:
		if m == Exact {
			return nil, mismatch(r, "boolean")
		}
		return nil, nil
	}
	v := r.Bool()
	return &v, nil
}

// BoolValue reads the current token into a nullable boolean.
func BoolValue(r Reader, m Mapping) *bool {
	switch r.CurrentToken() {
	case TokenBool:
	case TokenNumber, TokenString:
		if m == Exact {
			return nil
		}
	default:
		return nil
	}
	v := r.Bool()
	return &v
}

// StringValue reads the current token as text. Null and containers read as
// nil; under Exact mapping only string tokens are accepted.
func StringValue(r Reader, m Mapping) *string {
	switch r.CurrentToken() {
	case TokenString:
	case TokenNumber, TokenBool:
		if m == Exact {
			return nil
		}
	default:
		return nil
	}
	v := r.Text()
	return &v
}
