// Package transport carries HTTP requests for the contract runner. The
// engine never opens sockets itself; it talks to the Transport interface and
// the real client is injected at the edge.
package transport

import (
	"fmt"
	"net/http"
)

// LiveRequest is one concrete synthesized request. Built per operation,
// discarded after use.
type LiveRequest struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// LiveResponse is the response as received. Read-only; each response is
// owned by the single validation task that triggered it.
type LiveResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// TransportError wraps infrastructure failures (connection refused, DNS,
// timeout). These become Error outcomes, never contract failures.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
