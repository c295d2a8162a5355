// Package runtimectx carries the per-request metadata the spec calls the
// RuntimeContext: protocol, HTTP version, TLS flag, addresses, an
// environment snapshot, and a tagged union of raw host handles so the core
// never depends on a particular runtime's concrete type.
//
// Grounded on spec.md §3 (RuntimeContext) and §9's redesign note about the
// "dynamic-typed raw handles grab bag": the source material types this as
// an untyped union keyed on a side table; here it is a closed tagged union
// (RawHandleKind + opaque payload) built once at request-decode and never
// mutated, matching bolt/core/context.go's pattern of holding request-scope
// references directly on the context value rather than through a lookup.
package runtimectx

import "context"

// Protocol is the wire protocol a RuntimeContext was created under.
type Protocol string

const (
	ProtocolHTTP  Protocol = "http"
	ProtocolHTTPS Protocol = "https"
)

// HTTPVersion is the negotiated HTTP version for a request.
type HTTPVersion string

const (
	HTTPVersion10 HTTPVersion = "1.0"
	HTTPVersion11 HTTPVersion = "1.1"
	HTTPVersion2  HTTPVersion = "2"
)

// RawHandleKind tags which host runtime produced a RawHandle.
type RawHandleKind int

const (
	RawHandleNone RawHandleKind = iota
	RawHandleNative
	RawHandleNode
	RawHandleBun
	RawHandleDeno
	RawHandleCloudflare
	RawHandleVercel
	RawHandleNetlify
)

func (k RawHandleKind) String() string {
	switch k {
	case RawHandleNative:
		return "native"
	case RawHandleNode:
		return "node"
	case RawHandleBun:
		return "bun"
	case RawHandleDeno:
		return "deno"
	case RawHandleCloudflare:
		return "cloudflare"
	case RawHandleVercel:
		return "vercel"
	case RawHandleNetlify:
		return "netlify"
	default:
		return "none"
	}
}

// RawHandle is a tagged variant carrying a runtime-specific opaque payload.
// Nothing in the core ever type-switches on Payload except the transport
// that created it; middleware and user handlers treat it as opaque.
type RawHandle struct {
	Kind    RawHandleKind
	Payload any
}

// WaitUntilFunc registers a background task. It is the per-request sink
// described in spec.md §3/§6.1; the Server supplies the concrete
// implementation that adds the task to its background registry.
type WaitUntilFunc func(task func(context.Context) error)

// Context is the immutable per-request runtime metadata carrier.
//
// It is constructed once during request decode (before middleware observes
// the request) and is shared-read-only for the lifetime of one request, per
// spec.md §3's ownership rules. There is no lazy/deferred hydration: every
// field here is fully computed by the transport before dispatch, per
// spec.md §9's redesign note, with one exception: when the transport leaves
// WaitUntil nil, osrv's Server.Dispatch sets it to the server's
// background-task registry.
type Context struct {
	Name          string
	Protocol      Protocol
	HTTPVersion   HTTPVersion
	TLS           bool
	LocalAddress  string
	RemoteAddress string
	Env           map[string]string
	Raw           RawHandle
	WaitUntil     WaitUntilFunc
}

// New builds a Context. Env is copied defensively so later mutation of the
// caller's map cannot violate the "immutable after attachment" invariant.
func New(name string, protocol Protocol, version HTTPVersion, tls bool, local, remote string, env map[string]string, raw RawHandle, waitUntil WaitUntilFunc) *Context {
	snapshot := make(map[string]string, len(env))
	for k, v := range env {
		snapshot[k] = v
	}
	return &Context{
		Name:          name,
		Protocol:      protocol,
		HTTPVersion:   version,
		TLS:           tls,
		LocalAddress:  local,
		RemoteAddress: remote,
		Env:           snapshot,
		Raw:           raw,
		WaitUntil:     waitUntil,
	}
}
