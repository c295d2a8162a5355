// Package response implements the semantic Response value type (spec.md
// §3): status, reason text, an ordered header multimap preserving
// Set-Cookie multiplicity, and an optional once-consumable body.
//
// Grounded on bolt/core/responses.go's pattern of small helper
// constructors for common response shapes (JSONOK, JSON404, ...), adapted
// here to the fetch-style Response value instead of a pooled Context
// writer, and on shockwave/pkg/shockwave/http11/response.go's status/reason
// pairing.
package response

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/watt-toolkit/osrv/body"
	"github.com/watt-toolkit/osrv/headers"
)

// Response is the value a fetch handler, middleware short-circuit, or error
// handler produces.
type Response struct {
	status  int
	reason  string
	headers *headers.Headers
	body    *body.Body
}

// New builds a Response. status must be in [100,599] per spec.md §3;
// callers constructing out-of-range statuses get 500 substituted so a
// malformed handler can never put an invalid status on the wire.
func New(status int, h *headers.Headers, b *body.Body) *Response {
	if status < 100 || status > 599 {
		status = http.StatusInternalServerError
	}
	if h == nil {
		h = headers.New()
	}
	if b == nil {
		b = body.New(nil)
	}
	return &Response{status: status, reason: http.StatusText(status), headers: h, body: b}
}

// Status returns the HTTP status code.
func (r *Response) Status() int { return r.status }

// Reason returns the status reason phrase. Per SPEC_FULL.md decision D.2,
// this is always populated (derived from the status table when not set
// explicitly). The native transport does not write it to the wire; see
// transport/native/respond.go.
func (r *Response) Reason() string {
	if r.reason != "" {
		return r.reason
	}
	return http.StatusText(r.status)
}

// SetReason overrides the default status-text reason phrase.
func (r *Response) SetReason(reason string) { r.reason = reason }

// Headers returns the response's ordered, case-insensitive header multimap.
func (r *Response) Headers() *headers.Headers { return r.headers }

// Body returns the once-consumable response body stream.
func (r *Response) Body() *body.Body { return r.body }

// Text builds a 200 text/plain response, mirroring spec.md §8 scenario 1
// (Response.text("ok")).
func Text(s string) *Response {
	h := headers.New()
	h.Set("content-type", "text/plain; charset=utf-8")
	resp := New(http.StatusOK, h, body.New(bytes.NewReader([]byte(s))))
	return resp
}

// JSON marshals v and builds an application/json response with the given
// status.
func JSON(status int, v any) (*Response, error) {
	buf, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("response: marshal json: %w", err)
	}
	h := headers.New()
	h.Set("content-type", "application/json")
	return New(status, h, body.New(bytes.NewReader(buf))), nil
}

// JSONRaw builds a response from already-encoded JSON bytes, matching
// bolt/core/responses.go's pre-compiled-bytes pattern for hot status
// responses (used by the default error responses in spec.md §7).
func JSONRaw(status int, raw []byte) *Response {
	h := headers.New()
	h.Set("content-type", "application/json")
	return New(status, h, body.New(bytes.NewReader(raw)))
}

// Empty builds a response with the given status and no body, e.g. for 204
// or WebSocket-upgrade 101 responses.
func Empty(status int) *Response {
	return New(status, headers.New(), body.New(nil))
}
