package engine

// Kind represents token kinds produced by a JSON token driver.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
	Offset int64
}

// TokenSource is the minimal interface every driver implements.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// DuplicateStrictness controls duplicate key handling.
type DuplicateStrictness int

const (
	DupIgnore DuplicateStrictness = iota
	DupWarn
	DupError
)

// SimpleIssue is a minimal issue representation used by the enforcement layer.
type SimpleIssue struct {
	Code    string
	Path    string
	Message string
}

// KeyTracker tells object keys apart from string values for decoders whose
// token streams do not distinguish them.
type KeyTracker struct {
	stack []bool // true: object expecting a key
	kinds []bool // true: object
}

// Open records the start of a container.
func (k *KeyTracker) Open(object bool) {
	k.kinds = append(k.kinds, object)
	k.stack = append(k.stack, object)
}

// Close records the end of a container, which completes a value in the parent.
func (k *KeyTracker) Close() {
	if n := len(k.kinds); n > 0 {
		k.kinds = k.kinds[:n-1]
		k.stack = k.stack[:n-1]
	}
	k.Value()
}

// IsKey classifies a string token, returning true when it is an object key.
func (k *KeyTracker) IsKey() bool {
	n := len(k.stack)
	if n > 0 && k.kinds[n-1] && k.stack[n-1] {
		k.stack[n-1] = false
		return true
	}
	k.Value()
	return false
}

// Value records a completed scalar value.
func (k *KeyTracker) Value() {
	if n := len(k.stack); n > 0 && k.kinds[n-1] {
		k.stack[n-1] = true
	}
}
