package openapi

import "fmt"

// ParseError wraps a structural failure of the document itself. It is fatal:
// no request may be sent when the document cannot be parsed.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed OpenAPI document: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// UnresolvedReferenceError marks a $ref pointer whose target does not exist
// anywhere in the document. Detected at load time, fatal.
type UnresolvedReferenceError struct {
	Ref string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("could not resolve $ref %s", e.Ref)
}
