// Package transport defines the seam between the Server orchestrator and
// whatever concrete wire mechanism serves requests: a native TCP/TLS
// listener (transport/native) or a foreign-host JSON bridge
// (transport/bridge). No stub implementation exists for builds that have
// neither.
//
// Grounded on spec.md §9's redesign note ("conditional imports selecting
// per-platform transport" → "express as an interface with multiple
// concrete implementations... constructed with one implementation chosen
// at build/link time or via a registry") and on bolt/core/app.go's
// App/shockwave.Server split, generalized from one concrete server type to
// an interface so transport/native and transport/bridge can both satisfy
// it without the orchestrator importing either.
package transport

import (
	"context"

	"github.com/watt-toolkit/osrv/request"
	"github.com/watt-toolkit/osrv/response"
)

// DispatchFunc is the callback a Transport invokes per decoded request. The
// orchestrator supplies the concrete implementation (middleware chain +
// error routing); a Transport never sees the middleware/plugin internals.
type DispatchFunc func(ctx context.Context, req *request.Request) *response.Response

// Capabilities reflects what a bound Transport actually supports, set once
// after Bind returns (spec.md §3 ServerCapabilities).
type Capabilities struct {
	HTTP1             bool
	HTTPS             bool
	HTTP2             bool
	WebSocket         bool
	RequestStreaming  bool
	ResponseStreaming bool
	WaitUntil         bool
	Edge              bool
	TLS               bool
	EdgeProviders      []string
}

// Transport binds a listener (or equivalent) and serves requests by
// invoking DispatchFunc, until Close is called.
type Transport interface {
	// Bind starts accepting connections/requests and begins invoking
	// dispatch for each one. It returns once the transport is ready to
	// serve (e.g. the listener is bound), not when serving ends.
	Bind(ctx context.Context, dispatch DispatchFunc) (Capabilities, error)

	// Close stops accepting new connections/requests. If force is false,
	// callers are expected to still be draining in-flight work externally
	// (the orchestrator owns the background-task wait, not the
	// Transport); if force is true, Close should not wait at all.
	Close(ctx context.Context, force bool) error
}
