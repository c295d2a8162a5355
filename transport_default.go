package osrv

import (
	"github.com/watt-toolkit/osrv/transport"
	"github.com/watt-toolkit/osrv/transport/native"
)

// defaultTransport builds the native transport from a resolved Config,
// used by Serve when the caller has not supplied a Config.Transport
// explicitly (spec.md §4.2's default transport selection).
func defaultTransport(cfg Config) (transport.Transport, error) {
	return native.New(native.Options{
		Addr:       cfg.Addr,
		Hostname:   cfg.Hostname,
		TLSEnabled: cfg.TLSEnabled,
		CertPEM:    cfg.TLS.CertPEM,
		KeyPEM:     cfg.TLS.KeyPEM,
		CertFile:   cfg.TLS.CertFile,
		KeyFile:    cfg.TLS.KeyFile,
		HTTP2:      cfg.HTTP2,
		ReusePort:  cfg.ReusePort,
		TrustProxy: cfg.TrustProxy,

		MaxRequestBodyBytes: cfg.Limits.MaxRequestBodyBytes,
		RequestTimeout:      cfg.Limits.RequestTimeout,
		HeadersTimeout:      cfg.Limits.HeadersTimeout,

		WSMaxFrameBytes:    cfg.WebSocket.MaxFrameBytes,
		WSIdleTimeout:      cfg.WebSocket.IdleTimeout,
		WSMaxBufferedBytes: cfg.WebSocket.MaxBufferedBytes,

		Logger: cfg.Logger,
	}), nil
}
