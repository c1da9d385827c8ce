package wirejson

import (
	"bytes"
	"io"

	eng "github.com/reoring/wirejson/internal/engine"
)

// SerializeFunc writes one value; generated SerializeT functions match it.
type SerializeFunc[T any] func(Writer, T) error

// ParseFunc reads one value from a positioned reader; generated ParseT
// functions match it.
type ParseFunc[T any] func(Reader) (T, error)

// Marshal serializes v into a new byte slice.
func Marshal[T any](v T, serialize SerializeFunc[T]) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, v, serialize); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode serializes v to out.
func Encode[T any](out io.Writer, v T, serialize SerializeFunc[T]) error {
	w := NewWriter(out)
	if err := serialize(w, v); err != nil {
		return err
	}
	if err := w.Err(); err != nil {
		return err
	}
	return w.Flush()
}

// Unmarshal parses a complete JSON text holding exactly one value.
func Unmarshal[T any](data []byte, parse ParseFunc[T], opts ...ReaderOption) (T, error) {
	r := NewBytesReader(data, opts...)
	v, err := Decode(r, parse)
	if err != nil {
		return v, err
	}
	if k := r.NextToken(); k != TokenEOF {
		var zero T
		if err := r.Err(); err != nil {
			return zero, err
		}
		return zero, Issues{newIssue(CodeParseError, eng.PointerOrRoot(r.Path()), r.Location(), map[string]string{"got": "trailing " + k.String()})}
	}
	return v, nil
}

// Decode reads one value from r, advancing to its first token when r has not
// been positioned yet.
func Decode[T any](r Reader, parse ParseFunc[T]) (T, error) {
	var zero T
	if r.CurrentToken() == TokenNone || r.CurrentToken() == TokenEOF {
		if k := r.NextToken(); k == TokenNone || k == TokenEOF {
			if err := r.Err(); err != nil {
				return zero, err
			}
			return zero, Issues{newIssue(CodeTruncated, "/", r.Location(), map[string]string{"expected": "value"})}
		}
	}
	v, err := parse(r)
	if err != nil {
		return zero, err
	}
	if err := r.Err(); err != nil {
		return zero, err
	}
	return v, nil
}

// Codec pairs the generated routines of one type.
type Codec[T any] struct {
	Serialize SerializeFunc[T]
	Parse     ParseFunc[T]
}

// Marshal serializes v.
func (c Codec[T]) Marshal(v T) ([]byte, error) { return Marshal(v, c.Serialize) }

// Unmarshal parses data.
func (c Codec[T]) Unmarshal(data []byte, opts ...ReaderOption) (T, error) {
	return Unmarshal(data, c.Parse, opts...)
}

// Encode serializes v to out.
func (c Codec[T]) Encode(out io.Writer, v T) error { return Encode(out, v, c.Serialize) }

// Decode reads the next value from r.
func (c Codec[T]) Decode(r Reader) (T, error) { return Decode(r, c.Parse) }
