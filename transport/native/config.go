// Package native implements the native transport (spec.md §4.2): binding a
// TCP/TLS listener, decoding HTTP/1.1 and HTTP/2 requests into the
// semantic request.Request, streaming the body with a byte ceiling, and
// writing response.Response back to the wire.
//
// The wire-level HTTP/1.1 and HTTP/2 framing is delegated to net/http's
// *http.Server rather than re-derived from
// shockwave/pkg/shockwave/http11 and .../http2 (roughly 15k lines of
// hand-rolled parser in the teacher). See DESIGN.md for the explicit
// justification: net/http's HTTP/2 support already advertises ALPN
// h2/http1.1 exactly as spec.md §4.2/§6.2 requires, and
// shockwave/pkg/shockwave/websocket's own Upgrade function is written
// against net/http's http.Hijacker interface — the teacher's WebSocket
// engine is already designed to sit on top of net/http, not only its own
// http11 engine. What IS adapted from shockwave here: its Config/Stats
// shape (server.go), its TLS hardening defaults (tls/config.go), and its
// per-OS SO_REUSEPORT plumbing (socket/tuning_*.go).
package native

import (
	"time"

	"go.uber.org/zap"
)

// Options configures a Transport. It is built by osrv.defaultTransport
// from a resolved osrv.Config; native does not depend on package osrv.
type Options struct {
	Addr       string
	Hostname   string
	TLSEnabled bool
	CertPEM    string
	KeyPEM     string
	CertFile   string
	KeyFile    string
	HTTP2      bool
	ReusePort  bool
	TrustProxy bool

	MaxRequestBodyBytes int64
	RequestTimeout       time.Duration
	HeadersTimeout       time.Duration

	WSMaxFrameBytes    int64
	WSIdleTimeout      time.Duration
	WSMaxBufferedBytes int64

	Logger *zap.Logger
}
