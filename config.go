package osrv

import (
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/watt-toolkit/osrv/internal/envconfig"
	"github.com/watt-toolkit/osrv/plugin"
	"github.com/watt-toolkit/osrv/transport"
)

// Handler is the user fetch handler contract (spec.md §6.1): request in,
// response out, may return an error instead (routed as a HandlerError).
type Handler func(req *Request) (*Response, error)

// Next is the continuation a Middleware calls to run the remainder of the
// chain.
type Next func(req *Request) (*Response, error)

// Middleware wraps a Next to form the onion pipeline (spec.md §4.1, §6.1).
type Middleware func(req *Request, next Next) (*Response, error)

// ErrorHandler converts an unrecovered error into a user-visible Response
// (spec.md §6.1, §7). req is nil outside stage=request.
type ErrorHandler func(err error, stack string, req *Request) *Response

// ServerSecurityLimits bounds per-request resource consumption (spec.md
// §3, §5).
type ServerSecurityLimits struct {
	MaxRequestBodyBytes int64
	RequestTimeout       time.Duration
	HeadersTimeout       time.Duration
}

// GracefulShutdownOptions bounds the close() drain window (spec.md §4.1,
// §5). GracefulTimeout is authoritative for background-task drain per
// SPEC_FULL.md decision D.3.
type GracefulShutdownOptions struct {
	GracefulTimeout time.Duration
	ForceTimeout    time.Duration
}

// WebSocketLimits bounds WebSocket frame/backpressure behavior (spec.md
// §4.4, §6.4).
type WebSocketLimits struct {
	MaxFrameBytes   int64
	IdleTimeout     time.Duration
	MaxBufferedBytes int64
}

// TLSConfig names the TLS material and ALPN behavior for the native
// transport (spec.md §4.2, §6.2).
type TLSConfig struct {
	CertPEM    string
	KeyPEM     string
	CertFile   string
	KeyFile    string
	Passphrase string
}

// Config resolves, in precedence order, explicit constructor fields, then
// the process environment snapshot, then built-in defaults (spec.md §4.1).
type Config struct {
	Addr       string // host:port, derived from Hostname+Port if unset
	Hostname   string
	Port       int
	Protocol   string // "http" | "https"; derived from TLS presence if unset
	TLSEnabled bool
	TLS        TLSConfig
	HTTP2      bool
	ReusePort  bool
	TrustProxy bool

	Fetch        Handler
	Middleware   []Middleware
	Plugins      []*plugin.Plugin
	ErrorHandler ErrorHandler

	Limits           ServerSecurityLimits
	GracefulShutdown GracefulShutdownOptions
	WebSocket        WebSocketLimits

	// Transport, when set, is used verbatim instead of constructing the
	// default native transport. Tests and bridge-hosted deployments set
	// this explicitly; see transport/bridge.
	Transport transport.Transport

	Logger *zap.Logger

	// IsProduction is resolved from OSRV_ENV/ENV/NODE_ENV unless the
	// constructor sets it to true or pins it explicitly via WithProduction.
	IsProduction bool
	productionSet bool
}

// Default* constants, spec.md §6.4.
const (
	DefaultPort                = 3000
	DefaultHostname             = "0.0.0.0"
	DefaultMaxRequestBodyBytes  = 10 << 20
	DefaultRequestTimeout       = 30 * time.Second
	DefaultHeadersTimeout       = 15 * time.Second
	DefaultGracefulTimeout      = 10 * time.Second
	DefaultForceTimeout         = 30 * time.Second
	DefaultWSMaxFrameBytes      = 1 << 20
	DefaultWSIdleTimeout        = 60 * time.Second
	DefaultWSMaxBufferedBytes   = 8 << 20
)

// WithProduction pins IsProduction, overriding environment resolution.
func (c Config) WithProduction(v bool) Config {
	c.IsProduction = v
	c.productionSet = true
	return c
}

// ResolveConfig applies spec.md §4.1's precedence: explicit Config fields
// win, then the environ snapshot (via internal/envconfig), then built-in
// defaults. environ is typically os.Environ() turned into a map; passing
// a synthetic map keeps this deterministic for tests.
func ResolveConfig(c Config, environ map[string]string) Config {
	snap := envconfig.Load(environ)

	if c.Hostname == "" {
		if snap.Hostname != "" {
			c.Hostname = snap.Hostname
		} else {
			c.Hostname = DefaultHostname
		}
	}

	if c.Port == 0 {
		if snap.Port != "" {
			if p, err := strconv.Atoi(snap.Port); err == nil {
				c.Port = p
			}
		}
		if c.Port == 0 {
			c.Port = DefaultPort
		}
	}

	if c.TLS.CertPEM == "" && snap.TLSCert != "" {
		c.TLS.CertPEM = snap.TLSCert
	}
	if c.TLS.KeyPEM == "" && snap.TLSKey != "" {
		c.TLS.KeyPEM = snap.TLSKey
	}
	if c.TLS.Passphrase == "" && snap.TLSPassphrase != "" {
		c.TLS.Passphrase = snap.TLSPassphrase
	}

	if !c.TLSEnabled {
		switch snap.TLS {
		case envconfig.TriTrue:
			c.TLSEnabled = true
		case envconfig.TriFalse:
			c.TLSEnabled = false
		default:
			c.TLSEnabled = c.TLS.CertPEM != "" && c.TLS.KeyPEM != "" || c.TLS.CertFile != "" && c.TLS.KeyFile != ""
		}
	}

	if c.Protocol == "" {
		if snap.Protocol == "http" || snap.Protocol == "https" {
			c.Protocol = snap.Protocol
		} else if c.TLSEnabled {
			c.Protocol = "https"
		} else {
			c.Protocol = "http"
		}
	}
	if c.Protocol == "https" {
		c.TLSEnabled = true
	}

	if !c.HTTP2 {
		if snap.HTTP2 == envconfig.TriTrue {
			c.HTTP2 = true
		}
	}

	if !c.productionSet && !c.IsProduction {
		c.IsProduction = snap.IsProduction
	}

	if c.Addr == "" {
		c.Addr = c.Hostname + ":" + strconv.Itoa(c.Port)
	}

	if c.Limits.MaxRequestBodyBytes == 0 {
		c.Limits.MaxRequestBodyBytes = DefaultMaxRequestBodyBytes
	}
	if c.Limits.RequestTimeout == 0 {
		c.Limits.RequestTimeout = DefaultRequestTimeout
	}
	if c.Limits.HeadersTimeout == 0 {
		c.Limits.HeadersTimeout = DefaultHeadersTimeout
	}
	if c.GracefulShutdown.GracefulTimeout == 0 {
		c.GracefulShutdown.GracefulTimeout = DefaultGracefulTimeout
	}
	if c.GracefulShutdown.ForceTimeout == 0 {
		c.GracefulShutdown.ForceTimeout = DefaultForceTimeout
	}
	if c.WebSocket.MaxFrameBytes == 0 {
		c.WebSocket.MaxFrameBytes = DefaultWSMaxFrameBytes
	}
	if c.WebSocket.IdleTimeout == 0 {
		c.WebSocket.IdleTimeout = DefaultWSIdleTimeout
	}
	if c.WebSocket.MaxBufferedBytes == 0 {
		c.WebSocket.MaxBufferedBytes = DefaultWSMaxBufferedBytes
	}

	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}

	return c
}
