// Package plugin defines the Plugin contract the Server orchestrator
// invokes at each lifecycle phase (spec.md §3, §4.1, §4.5).
//
// Grounded on z5labs-bedrock's app.go Lifecycle type (PreRun/PostRun hook
// slices invoked by the owning App around Runtime.Run) generalized from two
// hook points to the six spec.md names, and on bolt/core's ErrorHandler
// pattern for the onError hook's signature.
package plugin

import (
	"context"

	"github.com/watt-toolkit/osrv/request"
)

// Plugin is a record of six optional lifecycle hooks. Each hook may fail;
// hook failures surface through the Server's error-stage routing (spec.md
// §4.5). Every hook except onError runs at most once per phase on a given
// Server instance (spec.md §3).
type Plugin struct {
	Name string

	// OnRegister runs once during serve(), before OnBeforeServe, in plugin
	// declaration order.
	OnRegister func(ctx context.Context) error

	// OnBeforeServe runs once during serve(), after every plugin's
	// OnRegister has completed, before the transport is bound.
	OnBeforeServe func(ctx context.Context) error

	// OnAfterServe runs once during serve(), after the transport is bound
	// and marked serving.
	OnAfterServe func(ctx context.Context) error

	// OnBeforeClose runs once during close(), before the transport is
	// closed.
	OnBeforeClose func(ctx context.Context) error

	// OnAfterClose runs once during close(), after the transport close and
	// optional background-task drain complete.
	OnAfterClose func(ctx context.Context) error

	// OnError runs whenever the orchestrator classifies an unrecovered
	// error. req is non-nil only for stage=request. A reentrancy guard
	// (enforced by the Server, not by Plugin) ensures a failure raised from
	// inside OnError is logged and dropped rather than re-entering this
	// hook (spec.md §4.1).
	OnError func(ctx context.Context, stage string, err error, stack string, req *request.Request)
}

// call invokes hook if non-nil, returning nil otherwise. A small helper so
// the orchestrator's phase-running loop doesn't need six repeated nil
// checks.
func call(hook func(context.Context) error, ctx context.Context) error {
	if hook == nil {
		return nil
	}
	return hook(ctx)
}

// RunRegister invokes OnRegister if present.
func (p *Plugin) RunRegister(ctx context.Context) error { return call(p.OnRegister, ctx) }

// RunBeforeServe invokes OnBeforeServe if present.
func (p *Plugin) RunBeforeServe(ctx context.Context) error { return call(p.OnBeforeServe, ctx) }

// RunAfterServe invokes OnAfterServe if present.
func (p *Plugin) RunAfterServe(ctx context.Context) error { return call(p.OnAfterServe, ctx) }

// RunBeforeClose invokes OnBeforeClose if present.
func (p *Plugin) RunBeforeClose(ctx context.Context) error { return call(p.OnBeforeClose, ctx) }

// RunAfterClose invokes OnAfterClose if present.
func (p *Plugin) RunAfterClose(ctx context.Context) error { return call(p.OnAfterClose, ctx) }

// RunError invokes OnError if present; failures from it are the caller's
// responsibility to log-and-drop (the Server does this under its
// reentrancy guard).
func (p *Plugin) RunError(ctx context.Context, stage string, err error, stack string, req *request.Request) {
	if p.OnError == nil {
		return
	}
	p.OnError(ctx, stage, err, stack, req)
}
