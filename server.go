// Package osrv: Server orchestrator (spec.md §4.1).
package osrv

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/watt-toolkit/osrv/oerrors"
	"github.com/watt-toolkit/osrv/plugin"
	"github.com/watt-toolkit/osrv/request"
	"github.com/watt-toolkit/osrv/response"
	"github.com/watt-toolkit/osrv/transport"
)

// Server is the orchestrator: it owns the transport, plugin list,
// background-task registry, and lifecycle state exclusively (spec.md §3's
// ownership rules).
type Server struct {
	config Config
	chain  Next

	transport transport.Transport
	bg        *backgroundTasks

	stateMu sync.Mutex
	state   State

	serveOnce  sync.Once
	serveReady chan struct{}
	serveErr   error

	errMu           sync.Mutex
	inErrorEmission bool

	caps atomic.Pointer[transport.Capabilities]

	stats Stats
}

// Stats mirrors shockwave/pkg/shockwave/server/server.go's Stats struct
// (request counters and a start time exposed alongside a server lifecycle);
// spec.md's data model does not name it, but every teacher server carries
// one and no handler is required to touch it (SPEC_FULL.md §C.1).
type Stats struct {
	TotalRequests  atomic.Uint64
	RequestErrors  atomic.Uint64
	StartTime      time.Time
}

// New constructs a Server from a fully resolved Config (see ResolveConfig).
// The transport is not bound yet; call Serve to do that.
func New(cfg Config) *Server {
	s := &Server{
		config:     cfg,
		bg:         newBackgroundTasks(cfg.Logger),
		state:      StateConstructed,
		serveReady: make(chan struct{}),
	}
	s.chain = buildChain(cfg.Middleware, s.callFetch)
	if cfg.Transport != nil {
		s.transport = cfg.Transport
	}
	return s
}

// State returns the current lifecycle state.
func (s *Server) State() State {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.state
}

func (s *Server) setState(st State) {
	s.stateMu.Lock()
	s.state = st
	s.stateMu.Unlock()
}

// IsServing reports whether the Server is currently in the Serving state.
func (s *Server) IsServing() bool {
	return s.State() == StateServing
}

// Capabilities returns the transport's actual capabilities, valid after
// Serve returns successfully.
func (s *Server) Capabilities() transport.Capabilities {
	if c := s.caps.Load(); c != nil {
		return *c
	}
	return transport.Capabilities{}
}

// Stats returns the server's request counters.
func (s *Server) Stats() *Stats { return &s.stats }

// Serve transitions Constructed -> Registering -> Starting -> Serving
// (spec.md §4.1). It is idempotent: a second call observes the same
// ready-future outcome as the first rather than re-running the lifecycle.
func (s *Server) Serve(ctx context.Context) error {
	s.serveOnce.Do(func() {
		s.serveErr = s.serveOnceLocked(ctx)
		close(s.serveReady)
	})
	<-s.serveReady
	return s.serveErr
}

func (s *Server) serveOnceLocked(ctx context.Context) error {
	s.stats.StartTime = time.Now()
	s.setState(StateRegistering)

	for _, p := range s.config.Plugins {
		if err := p.RunRegister(ctx); err != nil {
			return s.failLifecycle(ctx, oerrors.StageRegister, err)
		}
	}

	s.setState(StateStarting)
	for _, p := range s.config.Plugins {
		if err := p.RunBeforeServe(ctx); err != nil {
			return s.failLifecycle(ctx, oerrors.StageBeforeServe, err)
		}
	}

	if s.transport == nil {
		tr, err := defaultTransport(s.config)
		if err != nil {
			return s.failLifecycle(ctx, oerrors.StageTransport, err)
		}
		s.transport = tr
	}

	caps, err := s.transport.Bind(ctx, s.dispatchFromTransport)
	if err != nil {
		return s.failLifecycle(ctx, oerrors.StageTransport, err)
	}
	s.caps.Store(&caps)

	s.setState(StateServing)
	for _, p := range s.config.Plugins {
		if err := p.RunAfterServe(ctx); err != nil {
			return s.failLifecycle(ctx, oerrors.StageAfterServe, err)
		}
	}

	return nil
}

// failLifecycle unwinds a partially-started lifecycle: it emits onError to
// every plugin, marks the Server Failed, and re-surfaces the original
// error to the caller of serve() (spec.md §4.1).
func (s *Server) failLifecycle(ctx context.Context, stage oerrors.Stage, err error) error {
	s.emitError(ctx, stage, err, nil)
	s.setState(StateFailed)
	return oerrors.NewLifecycleError(stage, err)
}

// Close transitions Serving -> Draining -> Closed (spec.md §4.1). Exit is
// guaranteed: if background-task drain exceeds gracefulTimeout, a warning
// is logged and close proceeds regardless.
func (s *Server) Close(ctx context.Context, force bool) error {
	s.setState(StateDraining)

	for _, p := range s.config.Plugins {
		if err := p.RunBeforeClose(ctx); err != nil {
			s.emitError(ctx, oerrors.StageBeforeClose, err, nil)
			s.config.Logger.Warn("onBeforeClose hook failed", zap.Error(err))
		}
	}

	var transportErr error
	if s.transport != nil {
		transportErr = s.transport.Close(ctx, force)
	}

	if !force {
		timeout := s.config.GracefulShutdown.GracefulTimeout
		if drained := s.bg.waitWithTimeout(timeout); !drained {
			s.config.Logger.Warn("graceful drain exceeded timeout",
				zap.Duration("timeout", timeout),
				zap.Int("outstanding", s.bg.outstanding()))
		}
	}

	s.setState(StateClosed)
	for _, p := range s.config.Plugins {
		if err := p.RunAfterClose(ctx); err != nil {
			s.emitError(ctx, oerrors.StageAfterClose, err, nil)
			s.config.Logger.Warn("onAfterClose hook failed", zap.Error(err))
		}
	}

	if transportErr != nil {
		return oerrors.NewLifecycleError(oerrors.StageAfterClose, transportErr)
	}
	return nil
}

// dispatchFromTransport adapts the transport.DispatchFunc signature to
// Dispatch, attaching the waitUntil sink used by request.Request.WaitUntil.
func (s *Server) dispatchFromTransport(ctx context.Context, req *request.Request) *response.Response {
	return s.Dispatch(ctx, req)
}

// Dispatch is the entry point a Transport calls per request (spec.md
// §4.1). It runs the middleware chain and user fetch; on failure it emits
// onError(stage=request) to every plugin, then returns either the
// user-supplied error handler's response or the default response.
func (s *Server) Dispatch(ctx context.Context, req *request.Request) *response.Response {
	s.stats.TotalRequests.Add(1)

	if rt := req.Runtime(); rt != nil && rt.WaitUntil == nil {
		rt.WaitUntil = func(task func(context.Context) error) {
			s.bg.add(ctx, task)
		}
	}

	resp, err := s.runChainRecovered(req)
	if err == nil {
		return resp
	}

	s.stats.RequestErrors.Add(1)

	if rle, ok := oerrors.AsRequestLimitExceeded(err); ok {
		return requestLimitResponse(rle.MaxBytes, rle.ActualBytes)
	}

	stack := ""
	if hadPanic := errHasStack(err); hadPanic {
		stack = string(debug.Stack())
	}

	s.emitError(ctx, oerrors.StageRequest, err, req)

	if handler := s.config.ErrorHandler; handler != nil {
		if resp := handler(err, stack, req); resp != nil {
			return resp
		}
	}
	return defaultErrorResponse(err, stack, s.config.IsProduction)
}

// runChainRecovered runs the middleware chain, converting a panic raised by
// middleware or the fetch handler into a HandlerError rather than crashing
// the Server (spec.md §4.5's HandlerError kind covers both raised errors
// and raised exceptions, per source parity with the original's
// exception-driven short-circuit, preserved exactly per spec.md §9).
func (s *Server) runChainRecovered(req *request.Request) (resp *response.Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{recovered: r}
		}
	}()
	return s.chain(req)
}

type panicError struct {
	recovered any
}

func (p *panicError) Error() string { return fmt.Sprintf("osrv: panic: %v", p.recovered) }

func errHasStack(err error) bool {
	_, ok := err.(*panicError)
	return ok
}

func (s *Server) callFetch(req *request.Request) (*response.Response, error) {
	if s.config.Fetch == nil {
		return response.Empty(501), nil
	}
	return s.config.Fetch(req)
}

// emitError notifies every plugin's OnError hook under a reentrancy guard:
// a nested error raised from inside a plugin's OnError must not re-enter
// this loop (spec.md §4.1's plugin error re-entrancy rule); it is logged
// and dropped instead.
func (s *Server) emitError(ctx context.Context, stage oerrors.Stage, err error, req *request.Request) {
	s.errMu.Lock()
	if s.inErrorEmission {
		s.errMu.Unlock()
		s.config.Logger.Error("error raised while already emitting onError; dropped",
			zap.String("stage", string(stage)), zap.Error(err))
		return
	}
	s.inErrorEmission = true
	s.errMu.Unlock()

	defer func() {
		s.errMu.Lock()
		s.inErrorEmission = false
		s.errMu.Unlock()
	}()

	stack := ""
	if errHasStack(err) {
		stack = string(debug.Stack())
	}

	for _, p := range s.config.Plugins {
		func() {
			defer func() {
				if r := recover(); r != nil {
					s.config.Logger.Error("plugin OnError panicked; dropped",
						zap.String("plugin", p.Name), zap.Any("panic", r))
				}
			}()
			p.RunError(ctx, string(stage), err, stack, req)
		}()
	}

	s.config.Logger.Debug("error routed",
		zap.String("stage", string(stage)), zap.Error(err))
}

// AddPlugin registers an additional plugin before Serve is called. It
// panics if the Server has already left the Constructed state, matching
// spec.md §5's "plugin list... immutable after construction".
func (s *Server) AddPlugin(p *plugin.Plugin) {
	if s.State() != StateConstructed {
		panic("osrv: AddPlugin called after Serve; plugin list is immutable after construction")
	}
	s.config.Plugins = append(s.config.Plugins, p)
}
