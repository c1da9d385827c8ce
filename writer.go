package wirejson

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"

	gojson "github.com/goccy/go-json"
)

// Writer is the push-style JSON emitter used by generated serialize routines.
// Errors are sticky: after the first failure all writes are ignored and Err
// reports the failure.
type Writer interface {
	WriteStartObject()
	WriteEndObject()
	WriteStartArray()
	WriteEndArray()
	WriteFieldName(name string)
	WriteString(s string)
	WriteBool(b bool)
	WriteInt(n int64)
	WriteUint(n uint64)
	// WriteFloat writes f using the shortest representation that round-trips
	// at the given bit size (32 or 64).
	WriteFloat(f float64, bitSize int)
	WriteNull()
	Err() error
	// Flush writes buffered output to the underlying io.Writer.
	Flush() error
}

type writeFrame struct {
	object  bool
	count   int
	pending bool // object: field name written, value expected
}

type streamWriter struct {
	out    *bufio.Writer
	frames []writeFrame
	roots  int
	err    error
	buf    []byte
}

// NewWriter returns a Writer emitting compact JSON to w.
func NewWriter(w io.Writer) Writer {
	return &streamWriter{out: bufio.NewWriter(w)}
}

func (w *streamWriter) setErr(format string, args ...any) {
	if w.err == nil {
		w.err = fmt.Errorf("%w: "+format, append([]any{ErrWriterState}, args...)...)
	}
}

// beforeValue emits separators and validates that a value may start here.
func (w *streamWriter) beforeValue(what string) bool {
	if w.err != nil {
		return false
	}
	n := len(w.frames)
	if n == 0 {
		if w.roots > 0 {
			w.out.WriteByte('\n')
		}
		w.roots++
		return true
	}
	top := &w.frames[n-1]
	if top.object {
		if !top.pending {
			w.setErr("%s inside object without field name", what)
			return false
		}
		top.pending = false
		return true
	}
	if top.count > 0 {
		w.out.WriteByte(',')
	}
	top.count++
	return true
}

func (w *streamWriter) WriteStartObject() {
	if w.beforeValue("object") {
		w.out.WriteByte('{')
		w.frames = append(w.frames, writeFrame{object: true})
	}
}

func (w *streamWriter) WriteStartArray() {
	if w.beforeValue("array") {
		w.out.WriteByte('[')
		w.frames = append(w.frames, writeFrame{})
	}
}

func (w *streamWriter) end(object bool, c byte) {
	if w.err != nil {
		return
	}
	n := len(w.frames)
	if n == 0 || w.frames[n-1].object != object || w.frames[n-1].pending {
		w.setErr("unbalanced %q", c)
		return
	}
	w.frames = w.frames[:n-1]
	w.out.WriteByte(c)
}

func (w *streamWriter) WriteEndObject() { w.end(true, '}') }
func (w *streamWriter) WriteEndArray()  { w.end(false, ']') }

func (w *streamWriter) WriteFieldName(name string) {
	if w.err != nil {
		return
	}
	n := len(w.frames)
	if n == 0 || !w.frames[n-1].object || w.frames[n-1].pending {
		w.setErr("field name %q outside object", name)
		return
	}
	top := &w.frames[n-1]
	if top.count > 0 {
		w.out.WriteByte(',')
	}
	top.count++
	top.pending = true
	w.writeQuoted(name)
	w.out.WriteByte(':')
}

func (w *streamWriter) writeQuoted(s string) {
	b, err := gojson.MarshalNoEscape(s)
	if err != nil {
		w.err = err
		return
	}
	w.out.Write(b)
}

func (w *streamWriter) WriteString(s string) {
	if w.beforeValue("string") {
		w.writeQuoted(s)
	}
}

func (w *streamWriter) WriteBool(b bool) {
	if w.beforeValue("bool") {
		w.buf = strconv.AppendBool(w.buf[:0], b)
		w.out.Write(w.buf)
	}
}

func (w *streamWriter) WriteInt(n int64) {
	if w.beforeValue("number") {
		w.buf = strconv.AppendInt(w.buf[:0], n, 10)
		w.out.Write(w.buf)
	}
}

func (w *streamWriter) WriteUint(n uint64) {
	if w.beforeValue("number") {
		w.buf = strconv.AppendUint(w.buf[:0], n, 10)
		w.out.Write(w.buf)
	}
}

func (w *streamWriter) WriteFloat(f float64, bitSize int) {
	if w.err != nil {
		return
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		w.err = fmt.Errorf("wirejson: unsupported float value %v", f)
		return
	}
	if w.beforeValue("number") {
		w.buf = appendFloat(w.buf[:0], f, bitSize)
		w.out.Write(w.buf)
	}
}

// appendFloat formats like encoding/json: plain notation for moderate
// magnitudes, exponent notation with a trimmed exponent otherwise.
func appendFloat(b []byte, f float64, bits int) []byte {
	if bits != 32 {
		bits = 64
	}
	abs := math.Abs(f)
	format := byte('f')
	if abs != 0 {
		if bits == 64 && (abs < 1e-6 || abs >= 1e21) || bits == 32 && (float32(abs) < 1e-6 || float32(abs) >= 1e21) {
			format = 'e'
		}
	}
	b = strconv.AppendFloat(b, f, format, -1, bits)
	if format == 'e' {
		// clean up e-09 to e-9
		n := len(b)
		if n >= 4 && b[n-4] == 'e' && b[n-3] == '-' && b[n-2] == '0' {
			b[n-2] = b[n-1]
			b = b[:n-1]
		}
	}
	return b
}

func (w *streamWriter) WriteNull() {
	if w.beforeValue("null") {
		w.out.WriteString("null")
	}
}

func (w *streamWriter) Err() error { return w.err }

func (w *streamWriter) Flush() error {
	if w.err != nil {
		return w.err
	}
	if len(w.frames) > 0 {
		w.setErr("%d unclosed containers", len(w.frames))
		return w.err
	}
	return w.out.Flush()
}
