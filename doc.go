// Package wirejson is the runtime for generated, reflection-free JSON codecs.
//
// The wirejson command reads type declarations (a schema file or annotated Go
// source) and emits, for every declared type T, a pair of routines:
//
//	func SerializeT(w wirejson.Writer, v *T) error
//	func ParseT(r wirejson.Reader) (*T, error)
//
// plus MarshalT/UnmarshalT conveniences. The generated code talks to the
// streaming Reader and Writer defined here and never inspects values through
// reflection.
//
// Wire format:
//
//   - fields are written in declaration order; nil pointers, slices, maps and
//     interfaces are omitted;
//   - unknown fields are skipped on read;
//   - polymorphic values are flat objects whose first field is the
//     discriminator, resolved through a Registry.
//
// Strict types report required fields that were absent or null through the
// UnexpectedNullHandler installed with WithUnexpectedNull.
//
// Token drivers: go-json is the default; SetJSONDriver(StdJSONDriver())
// switches to encoding/json. Enforcement (duplicate keys, depth, size) wraps
// any driver via WithEnforcement.
package wirejson
