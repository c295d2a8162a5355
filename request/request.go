// Package request implements the semantic Request value type (spec.md §3):
// an immutable-by-convention URL/method/header envelope wrapping a
// lazily-consumed Body, carrying its RuntimeContext, a per-request mutable
// context bag, client IP, the waitUntil sink, and WebSocket-upgrade state.
//
// Grounded on spec.md §9's redesign note ("the core's Request is the owner
// of runtime, context, ip, waitUntil, webSocketUpgraded, rawWebSocket;
// there is no hidden side table") and on bolt/core/context.go, which holds
// request-scope fields directly on its Context value rather than through a
// side-table lookup keyed on the foreign host request.
package request

import (
	"context"
	"net/url"
	"strings"

	"github.com/watt-toolkit/osrv/body"
	"github.com/watt-toolkit/osrv/headers"
	"github.com/watt-toolkit/osrv/runtimectx"
)

// noBodyMethods are the methods spec.md §4.2 says never carry a body.
var noBodyMethods = map[string]struct{}{
	"GET": {}, "HEAD": {}, "TRACE": {},
}

// AllowsBody reports whether method (any case) may carry a request body.
func AllowsBody(method string) bool {
	_, excluded := noBodyMethods[strings.ToUpper(method)]
	return !excluded
}

// Request is the semantic, runtime-agnostic HTTP request the core
// dispatches through middleware into the user fetch handler.
type Request struct {
	url     *url.URL
	method  string
	headers *headers.Headers
	body    *body.Body
	mime    string

	ctx     map[string]any
	runtime *runtimectx.Context
	ip      string

	wsUpgraded bool
	rawWS      any
}

// New constructs a Request. method is normalized to uppercase per spec.md
// §3. headers/body/ctx are owned exclusively by the returned Request.
func New(rawURL *url.URL, method string, h *headers.Headers, b *body.Body, runtime *runtimectx.Context, ip string) *Request {
	if h == nil {
		h = headers.New()
	}
	if b == nil {
		b = body.New(nil)
	}
	return &Request{
		url:     rawURL,
		method:  strings.ToUpper(method),
		headers: h,
		body:    b,
		ctx:     make(map[string]any),
		runtime: runtime,
		ip:      ip,
	}
}

// URL returns the request's assembled URL (spec.md §4.2 URL assembly).
func (r *Request) URL() *url.URL { return r.url }

// Method returns the normalized-uppercase HTTP method.
func (r *Request) Method() string { return r.method }

// Headers returns the request's ordered, case-insensitive header multimap.
// Mutable only before the response is sent, per spec.md §3.
func (r *Request) Headers() *headers.Headers { return r.headers }

// Body returns the lazy, at-most-once-consumable request body stream.
func (r *Request) Body() *body.Body { return r.body }

// BodyUsed reports whether the body has already been consumed.
func (r *Request) BodyUsed() bool { return r.body.Used() }

// MIME returns the Content-Type hint without parameters, parsed from the
// headers on each call unless SetMIME has set it.
func (r *Request) MIME() string {
	if r.mime != "" {
		return r.mime
	}
	ct := r.headers.Get("content-type")
	if idx := strings.IndexByte(ct, ';'); idx >= 0 {
		ct = ct[:idx]
	}
	return strings.TrimSpace(ct)
}

// SetMIME overrides the MIME hint that MIME would otherwise parse from the
// Content-Type header.
func (r *Request) SetMIME(mime string) { r.mime = mime }

// Runtime returns the per-request RuntimeContext, shared-read-only for the
// lifetime of this request (spec.md §3).
func (r *Request) Runtime() *runtimectx.Context { return r.runtime }

// IP returns the resolved client IP (spec.md §4.2 client IP resolution).
func (r *Request) IP() string { return r.ip }

// Context returns the per-request mutable context bag. Keys are strings,
// per spec.md §3's invariant. Exclusively owned by this Request; no
// cross-request sharing is promised (spec.md §5).
func (r *Request) Context() map[string]any { return r.ctx }

// Get retrieves a context-bag value.
func (r *Request) Get(key string) (any, bool) {
	v, ok := r.ctx[key]
	return v, ok
}

// Set stores a context-bag value.
func (r *Request) Set(key string, value any) {
	r.ctx[key] = value
}

// WaitUntil registers a fire-and-forget background task via the
// RuntimeContext's sink (spec.md §3, §4.1). It is a no-op if no
// RuntimeContext (or sink) is attached, which should only happen in tests
// that construct a Request directly.
func (r *Request) WaitUntil(task func() error) {
	if r.runtime == nil || r.runtime.WaitUntil == nil {
		return
	}
	r.runtime.WaitUntil(func(context.Context) error {
		return task()
	})
}

// MarkWebSocketUpgraded flips the upgraded flag and stores the opaque
// handle; upgradeWebSocket (ws package) calls this exactly once per
// request (spec.md §4.4: "fails if the request was already upgraded").
func (r *Request) MarkWebSocketUpgraded(handle any) {
	r.wsUpgraded = true
	r.rawWS = handle
}

// WebSocketUpgraded reports whether this request was already upgraded.
func (r *Request) WebSocketUpgraded() bool { return r.wsUpgraded }

// RawWebSocket returns the opaque WebSocket handle set by
// MarkWebSocketUpgraded, or nil.
func (r *Request) RawWebSocket() any { return r.rawWS }
