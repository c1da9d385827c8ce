package wirejson

import (
	"errors"
	"io"
	"strconv"
	"strings"

	eng "github.com/reoring/wirejson/internal/engine"
)

// Reader is the pull-style token stream consumed by generated parse routines.
//
// Errors are sticky: after the first failure every advancing call returns
// TokenNone (or false) and Err reports the failure.
type Reader interface {
	// NextToken advances to the next token and returns its kind.
	NextToken() TokenKind
	// CurrentToken returns the kind of the token the reader is positioned on.
	CurrentToken() TokenKind
	// CurrentName returns the field name associated with the current token:
	// the key itself for TokenKey, and the enclosing key for values.
	CurrentName() string
	// NextField advances and reports whether the new token is a field name.
	// It returns false at the end of the object or on error.
	NextField() bool
	// NextElement advances and reports whether the new token starts an array
	// element. It returns false at the end of the array or on error.
	NextElement() bool

	Text() string
	Bool() bool
	Int64() int64
	Float64() float64
	// IsIntegral reports whether the current token is a number without a
	// fraction or exponent.
	IsIntegral() bool

	// SkipChildren skips the whole container when positioned on its start
	// token, leaving the reader on the matching end token. It does nothing
	// for other tokens.
	SkipChildren()

	// Path returns the JSON Pointer of the current token.
	Path() string
	Location() int64
	Err() error

	// OnUnexpectedNull reports a required field that was absent or null at the
	// close of its object. The result comes from the configured handler.
	OnUnexpectedNull(fieldName, typeName string) error
}

// ReaderOption configures readers built by NewReader and friends.
type ReaderOption func(*readerConfig)

type readerConfig struct {
	onNull  UnexpectedNullHandler
	enforce Enforcement
	driver  JSONDriver
}

// WithUnexpectedNull installs the handler called for missing required fields
// of strict types. Without one, missing fields are ignored.
func WithUnexpectedNull(h UnexpectedNullHandler) ReaderOption {
	return func(c *readerConfig) { c.onNull = h }
}

// WithEnforcement applies duplicate key, depth and size limits.
func WithEnforcement(e Enforcement) ReaderOption {
	return func(c *readerConfig) { c.enforce = e }
}

// WithDriver selects the JSON driver for byte and stream readers instead of
// the global one.
func WithDriver(d JSONDriver) ReaderOption {
	return func(c *readerConfig) { c.driver = d }
}

func buildReaderConfig(opts []ReaderOption) readerConfig {
	var c readerConfig
	for _, o := range opts {
		if o != nil {
			o(&c)
		}
	}
	if c.driver == nil {
		c.driver = getJSONDriver()
	}
	return c
}

// NewReader wraps a token Source.
func NewReader(src Source, opts ...ReaderOption) Reader {
	c := buildReaderConfig(opts)
	return newTokenReader(src, c)
}

// NewBytesReader returns a Reader over a complete JSON text.
func NewBytesReader(b []byte, opts ...ReaderOption) Reader {
	c := buildReaderConfig(opts)
	return newTokenReader(c.driver.NewBytes(b), c)
}

// NewStreamReader returns a Reader over a JSON stream.
func NewStreamReader(rd io.Reader, opts ...ReaderOption) Reader {
	c := buildReaderConfig(opts)
	return newTokenReader(c.driver.NewReader(rd), c)
}

func newTokenReader(src Source, c readerConfig) *tokenReader {
	return &tokenReader{src: EnforceSource(src, c.enforce), onNull: c.onNull}
}

type readFrame struct {
	object bool
	hasKey bool
	key    string
	index  int // elements started so far (arrays)
}

type tokenReader struct {
	src    Source
	tok    Token
	frames []readFrame
	err    error
	onNull UnexpectedNullHandler
}

func (r *tokenReader) NextToken() TokenKind {
	if r.err != nil {
		return TokenNone
	}
	if r.tok.Kind == TokenEOF {
		return TokenEOF
	}
	tok, err := r.src.NextToken()
	if err != nil {
		if errors.Is(err, io.EOF) && len(r.frames) == 0 {
			r.tok = Token{Kind: TokenEOF, Offset: r.src.Location()}
			return TokenEOF
		}
		r.fail(err)
		return TokenNone
	}
	if n := len(r.frames); n > 0 {
		top := &r.frames[n-1]
		switch tok.Kind {
		case TokenKey:
			top.hasKey, top.key = true, tok.String
		case TokenEndObject, TokenEndArray:
		default:
			if !top.object {
				top.index++
			}
		}
	}
	switch tok.Kind {
	case TokenBeginObject, TokenBeginArray:
		r.frames = append(r.frames, readFrame{object: tok.Kind == TokenBeginObject})
	case TokenEndObject, TokenEndArray:
		if n := len(r.frames); n > 0 {
			r.frames = r.frames[:n-1]
		}
	}
	r.tok = tok
	return tok.Kind
}

func (r *tokenReader) fail(err error) {
	path := r.Path()
	loc := r.src.Location()
	var ie eng.IssueError
	switch {
	case errors.As(err, &ie):
		r.err = Issues{{Path: ie.Path, Code: ie.Code, Message: ie.Message, Cause: err, Offset: loc}}
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		it := newIssue(CodeTruncated, eng.PointerOrRoot(path), loc, nil)
		it.Cause = io.ErrUnexpectedEOF
		r.err = Issues{it}
	default:
		it := newIssue(CodeParseError, eng.PointerOrRoot(path), loc, map[string]string{"got": err.Error()})
		it.Cause = err
		r.err = Issues{it}
	}
	r.tok = Token{Kind: TokenNone}
}

func (r *tokenReader) CurrentToken() TokenKind { return r.tok.Kind }

func (r *tokenReader) CurrentName() string {
	i := len(r.frames) - 1
	if k := r.tok.Kind; k == TokenBeginObject || k == TokenBeginArray {
		i--
	}
	if i >= 0 && r.frames[i].object {
		return r.frames[i].key
	}
	return ""
}

func (r *tokenReader) NextField() bool { return r.NextToken() == TokenKey }

func (r *tokenReader) NextElement() bool {
	switch r.NextToken() {
	case TokenEndArray, TokenNone, TokenEOF, TokenKey, TokenEndObject:
		return false
	}
	return true
}

func (r *tokenReader) Text() string {
	switch r.tok.Kind {
	case TokenKey, TokenString:
		return r.tok.String
	case TokenNumber:
		return r.tok.Number
	case TokenBool:
		return strconv.FormatBool(r.tok.Bool)
	}
	return ""
}

func (r *tokenReader) Bool() bool {
	switch r.tok.Kind {
	case TokenBool:
		return r.tok.Bool
	case TokenNumber:
		return r.Float64() != 0
	case TokenString:
		return strings.EqualFold(strings.TrimSpace(r.tok.String), "true")
	}
	return false
}

func (r *tokenReader) Int64() int64 {
	var s string
	switch r.tok.Kind {
	case TokenNumber:
		s = r.tok.Number
	case TokenString:
		s = strings.TrimSpace(r.tok.String)
	case TokenBool:
		if r.tok.Bool {
			return 1
		}
		return 0
	default:
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(f)
}

func (r *tokenReader) Float64() float64 {
	var s string
	switch r.tok.Kind {
	case TokenNumber:
		s = r.tok.Number
	case TokenString:
		s = strings.TrimSpace(r.tok.String)
	case TokenBool:
		if r.tok.Bool {
			return 1
		}
		return 0
	default:
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func (r *tokenReader) IsIntegral() bool {
	return r.tok.Kind == TokenNumber && !strings.ContainsAny(r.tok.Number, ".eE")
}

func (r *tokenReader) SkipChildren() {
	if k := r.tok.Kind; k != TokenBeginObject && k != TokenBeginArray {
		return
	}
	depth := len(r.frames) - 1
	for len(r.frames) > depth {
		if k := r.NextToken(); k == TokenNone || k == TokenEOF {
			return
		}
	}
}

func (r *tokenReader) Path() string {
	var b strings.Builder
	n := len(r.frames)
	if k := r.tok.Kind; k == TokenBeginObject || k == TokenBeginArray {
		n--
	}
	for _, f := range r.frames[:max(n, 0)] {
		switch {
		case f.object && f.hasKey:
			b.WriteString(eng.JoinPointer("", f.key))
		case !f.object && f.index > 0:
			b.WriteString("/" + strconv.Itoa(f.index-1))
		}
	}
	return b.String()
}

func (r *tokenReader) Location() int64 { return r.src.Location() }

func (r *tokenReader) Err() error {
	if r.err == nil {
		return nil
	}
	return r.err
}

func (r *tokenReader) OnUnexpectedNull(fieldName, typeName string) error {
	if r.onNull == nil {
		return nil
	}
	return r.onNull(fieldName, typeName)
}
