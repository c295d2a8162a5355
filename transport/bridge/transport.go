package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/watt-toolkit/osrv/transport"
)

// Transport is the JSON-envelope implementation of transport.Transport
// for foreign hosts with no native socket API (spec.md §4.3). Bind does
// not open a listener; it only records the dispatch callback that
// Invoke/InvokeJSON will call. The host is responsible for actually
// receiving requests (an edge worker's fetch event, a Node addon
// callback, ...) and calling Invoke once per request.
type Transport struct {
	dispatch transport.DispatchFunc
	bg       BackgroundSink
	closed   atomic.Bool
}

// BackgroundSink lets the embedding host supply its own waitUntil sink
// (e.g. an edge worker's event.waitUntil). If nil, bridge-decoded requests
// carry no sink of their own; osrv's Server.Dispatch then attaches its
// background-task registry, which runs each task with the context passed
// to Dispatch.
type BackgroundSink func(task func(context.Context) error)

// New constructs a bridge Transport. bg may be nil.
func New(bg BackgroundSink) *Transport {
	return &Transport{bg: bg}
}

// Bind satisfies transport.Transport. It never fails and reports
// capabilities appropriate to a host-mediated bridge: no direct TLS or
// WebSocket hijack, but streaming is possible if the host supports it
// and waitUntil is available whenever a BackgroundSink was supplied.
func (t *Transport) Bind(ctx context.Context, dispatch transport.DispatchFunc) (transport.Capabilities, error) {
	t.dispatch = dispatch
	return transport.Capabilities{
		HTTP1:     true,
		WebSocket: true,
		WaitUntil: t.bg != nil,
		Edge:      true,
	}, nil
}

// Close marks the bridge closed; further Invoke calls fail.
func (t *Transport) Close(ctx context.Context, force bool) error {
	t.closed.Store(true)
	return nil
}

// Invoke decodes env, runs dispatch, and returns the response envelope
// (spec.md §6.3's full round trip).
func (t *Transport) Invoke(ctx context.Context, env Envelope) (ResponseEnvelope, error) {
	if t.closed.Load() {
		return ResponseEnvelope{}, fmt.Errorf("bridge: transport closed")
	}
	if t.dispatch == nil {
		return ResponseEnvelope{}, fmt.Errorf("bridge: transport not bound")
	}

	var sink func(task func(context.Context) error)
	if t.bg != nil {
		sink = t.bg
	}

	req, err := decode(env, sink)
	if err != nil {
		return ResponseEnvelope{}, err
	}

	resp := t.dispatch(ctx, req)
	return encode(resp)
}

// InvokeJSON is Invoke's byte-in/byte-out form for hosts that only have
// a raw JSON string boundary (the common case for embedding a Go core
// inside another language's runtime via cgo or a subprocess pipe).
func (t *Transport) InvokeJSON(ctx context.Context, requestJSON []byte) ([]byte, error) {
	var env Envelope
	if err := json.Unmarshal(requestJSON, &env); err != nil {
		return nil, fmt.Errorf("bridge: unmarshal request envelope: %w", err)
	}
	respEnv, err := t.Invoke(ctx, env)
	if err != nil {
		return nil, err
	}
	return json.Marshal(respEnv)
}
