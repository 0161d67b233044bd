package report

import "fmt"

type ViolationKind string

const (
	KindTypeMismatch         ViolationKind = "type_mismatch"
	KindMissingRequiredField ViolationKind = "missing_required_field"
	KindUnexpectedStatus     ViolationKind = "unexpected_status"
	KindMissingHeader        ViolationKind = "missing_header"
	KindEnumMismatch         ViolationKind = "enum_mismatch"
	KindBadFormat            ViolationKind = "bad_format"
	KindUndeclaredProperty   ViolationKind = "undeclared_property"
	KindCycle                ViolationKind = "cycle"
	KindUnresolvedReference  ViolationKind = "unresolved_reference"
)

// Violation is a single mismatch between a received response and the
// declared contract. Path uses dotted/bracket accessors relative to the
// response body root, e.g. "items[2].price".
type Violation struct {
	Path     string        `json:"path"`
	Kind     ViolationKind `json:"kind"`
	Expected string        `json:"expected"`
	Actual   string        `json:"actual"`
}

func (v Violation) String() string {
	path := v.Path
	if path == "" {
		path = "$"
	}
	return fmt.Sprintf("%s: %s (expected %s, got %s)", path, v.Kind, v.Expected, v.Actual)
}
