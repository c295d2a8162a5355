package native

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/watt-toolkit/osrv/transport"
)

// Transport is the native TCP/TLS implementation of transport.Transport,
// built on net/http's *http.Server (see config.go's package doc for why).
type Transport struct {
	opts Options

	envSnapshot map[string]string

	mu       sync.Mutex
	srv      *http.Server
	listener net.Listener
	closed   atomic.Bool

	dispatch transport.DispatchFunc
}

// New constructs a Transport from Options. It does not bind anything yet;
// Bind does that.
func New(opts Options) *Transport {
	return &Transport{
		opts:        opts,
		envSnapshot: snapshotEnviron(),
	}
}

func snapshotEnviron() map[string]string {
	env := os.Environ()
	out := make(map[string]string, len(env))
	for _, kv := range env {
		if idx := strings.IndexByte(kv, '='); idx >= 0 {
			out[kv[:idx]] = kv[idx+1:]
		}
	}
	return out
}

// Bind opens a listener (honoring ReusePort where the platform supports
// it, per reuseport_linux.go/reuseport_other.go), starts an *http.Server
// serving it in a background goroutine, and reports the capabilities that
// configuration actually enables (spec.md §4.2, §6.2).
func (t *Transport) Bind(ctx context.Context, dispatch transport.DispatchFunc) (transport.Capabilities, error) {
	t.dispatch = dispatch

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := t.decode(w, r)
		resp := t.dispatch(r.Context(), req)
		writeResponse(w, resp)
	})

	t.srv = &http.Server{
		Addr:              t.opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: t.opts.HeadersTimeout,
		ReadTimeout:       t.opts.RequestTimeout,
		WriteTimeout:      t.opts.RequestTimeout,
		ErrorLog:          nil,
	}

	caps := transport.Capabilities{
		HTTP1:             true,
		RequestStreaming:  true,
		ResponseStreaming: true,
		WaitUntil:         true,
	}

	lc := net.ListenConfig{}
	if t.opts.ReusePort && reusePortSupported {
		lc.Control = reusePortControl
	}

	ln, err := lc.Listen(ctx, "tcp", t.opts.Addr)
	if err != nil {
		return transport.Capabilities{}, fmt.Errorf("native: listen %s: %w", t.opts.Addr, err)
	}

	t.mu.Lock()
	t.listener = ln
	t.mu.Unlock()

	if t.opts.TLSEnabled {
		tlsConfig, tlsErr := buildTLSConfig(t.opts)
		if tlsErr != nil {
			return transport.Capabilities{}, tlsErr
		}
		t.srv.TLSConfig = tlsConfig
		caps.HTTPS = true
		caps.TLS = true
		caps.HTTP2 = t.opts.HTTP2

		// ServeTLS (not a manual tls.NewListener wrap) so
		// http.Server.setupHTTP2_ServeTLS runs and negotiates h2 over
		// ALPN when opts.HTTP2 advertised it in buildTLSConfig's
		// NextProtos; cert/key args are empty because TLSConfig already
		// carries the loaded certificate.
		go func() {
			serveErr := t.srv.ServeTLS(ln, "", "")
			if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) && t.opts.Logger != nil {
				t.opts.Logger.Error("native transport serve exited", zap.Error(serveErr))
			}
		}()
		return caps, nil
	}

	go func() {
		serveErr := t.srv.Serve(ln)
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) && t.opts.Logger != nil {
			t.opts.Logger.Error("native transport serve exited", zap.Error(serveErr))
		}
	}()

	return caps, nil
}

// Close stops accepting new connections. Graceful shutdown (force=false)
// waits for in-flight requests via http.Server.Shutdown; forced close
// drops connections immediately via http.Server.Close. The Server
// orchestrator, not this Transport, owns waiting for background waitUntil
// tasks (transport.Transport's contract).
func (t *Transport) Close(ctx context.Context, force bool) error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}
	if t.srv == nil {
		return nil
	}
	if force {
		return t.srv.Close()
	}
	return t.srv.Shutdown(ctx)
}
