package hookpoint

import "errors"

// Registration Errors
//
// These errors are returned when registering or unregistering callbacks.

// ErrAlreadyExists is returned when adding a callback whose action identity
// is already registered at the hook point. The existing registration is left
// untouched; callers may skip or register under a different identity.
var ErrAlreadyExists = errors.New("action already registered at hook point")

// ErrInvalidAction is returned when registering a zero-value Action, which
// refers to nothing invocable.
var ErrInvalidAction = errors.New("action is not invocable")

// ErrAlreadyUnhooked is returned when calling Unhook on a handle that has
// already been used.
var ErrAlreadyUnhooked = errors.New("hook already unhooked")

// Service Lifecycle Errors
//
// These errors are returned based on the service's lifecycle state.

// ErrServiceClosed is returned when attempting to use a service that has
// been closed via Close().
var ErrServiceClosed = errors.New("service is closed")

// ErrAlreadyClosed is returned when calling Close() on a service that has
// already been closed. This prevents double-cleanup.
var ErrAlreadyClosed = errors.New("service already closed")

// Resource Limit Errors
//
// These errors are returned when resource limits are exceeded to prevent
// memory exhaustion.

// ErrTooManyCallbacks is returned when a registration would exceed either
// maxCallbacksPerPoint or maxTotalCallbacks.
var ErrTooManyCallbacks = errors.New("callback limit exceeded")

// ErrQueueFull is returned when the async dispatch queue cannot accept more
// tasks. The dispatch is rejected and no callbacks run for it.
var ErrQueueFull = errors.New("dispatch queue is full")
