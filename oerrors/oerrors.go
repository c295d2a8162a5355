// Package oerrors defines the error taxonomy used across osrv: the tagged
// variants a Server raises internally and routes through its error-stage
// machinery, plus the lifecycle stages those errors are classified under.
//
// Grounded on shockwave/pkg/shockwave/http11/errors.go (package-level
// sentinel + tagged struct errors) and bolt/core/types.go (small, closed
// error vocabulary returned by framework internals). No third-party error
// library replaces this: the taxonomy is small, closed, and every consumer
// needs static tagged fields (MaxBytes, ActualBytes, Stage), which plain
// struct types with errors.As support just as well as any dependency would.
package oerrors

import (
	"errors"
	"fmt"
)

// Stage classifies where in the Server lifecycle an error occurred, per
// spec.md §4.5.
type Stage string

const (
	StageRegister     Stage = "register"
	StageBeforeServe  Stage = "beforeServe"
	StageAfterServe   Stage = "afterServe"
	StageRequest      Stage = "request"
	StageBeforeClose  Stage = "beforeClose"
	StageAfterClose   Stage = "afterClose"
	StageTransport    Stage = "transport"
	StageUnknown      Stage = "unknown"
)

// RequestLimitExceeded is raised when a request body stream's cumulative
// byte count exceeds the configured maxRequestBodyBytes. The Server's
// Dispatch translates it into a 413 response (spec.md §7).
type RequestLimitExceeded struct {
	MaxBytes    int64
	ActualBytes int64
}

func (e *RequestLimitExceeded) Error() string {
	return fmt.Sprintf("oerrors: request body exceeded %d bytes (read %d)", e.MaxBytes, e.ActualBytes)
}

// NewRequestLimitExceeded builds a RequestLimitExceeded error.
func NewRequestLimitExceeded(maxBytes, actualBytes int64) *RequestLimitExceeded {
	return &RequestLimitExceeded{MaxBytes: maxBytes, ActualBytes: actualBytes}
}

// TransportError wraps listener bind, TLS material load, protocol framing,
// and stream I/O failures raised by a Transport implementation.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("oerrors: transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// NewTransportError builds a TransportError.
func NewTransportError(op string, err error) *TransportError {
	return &TransportError{Op: op, Err: err}
}

// HandlerError wraps a panic or returned error from user middleware or the
// fetch handler during dispatch.
type HandlerError struct {
	Err error
}

func (e *HandlerError) Error() string { return fmt.Sprintf("oerrors: handler: %v", e.Err) }
func (e *HandlerError) Unwrap() error  { return e.Err }

// NewHandlerError builds a HandlerError.
func NewHandlerError(err error) *HandlerError {
	return &HandlerError{Err: err}
}

// LifecycleError wraps a plugin hook or close-path failure. Stage records
// which phase raised it so the orchestrator can route it correctly.
type LifecycleError struct {
	Stage Stage
	Err   error
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("oerrors: lifecycle[%s]: %v", e.Stage, e.Err)
}

func (e *LifecycleError) Unwrap() error { return e.Err }

// NewLifecycleError builds a LifecycleError.
func NewLifecycleError(stage Stage, err error) *LifecycleError {
	return &LifecycleError{Stage: stage, Err: err}
}

// AsRequestLimitExceeded is a convenience wrapper around errors.As.
func AsRequestLimitExceeded(err error) (*RequestLimitExceeded, bool) {
	var target *RequestLimitExceeded
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
