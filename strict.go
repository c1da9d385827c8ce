package wirejson

import "sync"

// UnexpectedNullHandler is called once per required field of a strict type
// that was absent or null when its object closed. Returning an error aborts
// the parse; returning nil keeps the field at its default.
type UnexpectedNullHandler func(fieldName, typeName string) error

// IgnoreUnexpectedNull accepts missing required fields silently.
func IgnoreUnexpectedNull(string, string) error { return nil }

// FailOnUnexpectedNull turns the first missing required field into a
// *DeserializationError.
func FailOnUnexpectedNull(fieldName, typeName string) error {
	return &DeserializationError{Field: fieldName, Type: typeName}
}

// MissingField identifies one missing required field.
type MissingField struct {
	Field string
	Type  string
}

// NullRecorder collects missing required fields without failing the parse.
// It is safe for concurrent use, so one recorder may serve several readers.
type NullRecorder struct {
	mu      sync.Mutex
	missing []MissingField
}

// Handle is an UnexpectedNullHandler.
func (n *NullRecorder) Handle(fieldName, typeName string) error {
	n.mu.Lock()
	n.missing = append(n.missing, MissingField{Field: fieldName, Type: typeName})
	n.mu.Unlock()
	return nil
}

// Missing returns a copy of the recorded fields in report order.
func (n *NullRecorder) Missing() []MissingField {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]MissingField(nil), n.missing...)
}

// Reset drops recorded fields.
func (n *NullRecorder) Reset() {
	n.mu.Lock()
	n.missing = nil
	n.mu.Unlock()
}
