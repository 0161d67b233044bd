package transport

import (
	"bytes"
	"context"
	"io"
	"net/http"
)

// Transport dispatches a synthesized request and returns the live response.
// The context carries the per-request deadline.
type Transport interface {
	Send(ctx context.Context, req *LiveRequest) (*LiveResponse, error)
}

// Responses are read fully into memory; anything past this is a broken
// contract anyway.
const maxBodyBytes = 16 << 20

// HTTPTransport is the net/http-backed Transport.
type HTTPTransport struct {
	client *http.Client
}

func NewHTTPTransport() *HTTPTransport {
	return &HTTPTransport{client: &http.Client{}}
}

// NewHTTPTransportWithClient allows injecting a preconfigured client
// (custom TLS, proxies, httptest clients).
func NewHTTPTransportWithClient(client *http.Client) *HTTPTransport {
	return &HTTPTransport{client: client}
}

func (t *HTTPTransport) Send(ctx context.Context, req *LiveRequest) (*LiveResponse, error) {
	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	hreq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, &TransportError{URL: req.URL, Err: err}
	}
	for key, values := range req.Header {
		for _, value := range values {
			hreq.Header.Add(key, value)
		}
	}

	hres, err := t.client.Do(hreq)
	if err != nil {
		return nil, &TransportError{URL: req.URL, Err: err}
	}
	defer func() {
		_ = hres.Body.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(hres.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{URL: req.URL, Err: err}
	}

	return &LiveResponse{
		StatusCode: hres.StatusCode,
		Header:     hres.Header,
		Body:       data,
	}, nil
}
