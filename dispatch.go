package hookpoint

import (
	"context"
	"sync/atomic"
)

// Run fires the hook point in fire-and-forget mode. Callbacks are invoked
// in priority order against the currently published snapshot; an unknown
// hook point is an empty list, never an error.
//
// Per entry: a truthy filter result skips the action and continues. An
// action returning Stop halts iteration and Run returns Stop; OK and any
// unrecognized value continue. Run returns OK when the list is exhausted.
//
// Run never blocks on registration traffic. A slow or panicking callback
// affects only this call: panics propagate to the caller, and no timeout is
// enforced here.
func (h *Hooks) Run(point Key, args ...any) Verdict {
	entries, _ := h.store.Get(point)

	for _, e := range entries {
		if h.filtered(e, args) {
			continue
		}
		if v, ok := e.Action.invoke(args).(Verdict); ok && v == Stop {
			atomic.AddInt64(&h.metrics.CallbacksStopped, 1)
			atomic.AddInt64(&h.metrics.RunsCompleted, 1)
			return Stop
		}
	}

	atomic.AddInt64(&h.metrics.RunsCompleted, 1)
	return OK
}

// Fold fires the hook point threading an accumulator through the callbacks.
// The current accumulator is appended as the last argument on every filter
// and action invocation, so callbacks observe the live value.
//
// Action results: OK continues with the accumulator unchanged; NewAcc
// continues with the replacement; Stop halts with the current accumulator;
// StopWith halts with the replacement; any other value continues with the
// accumulator unchanged. Fold returns the final accumulator and the verdict
// that ended dispatch.
func (h *Hooks) Fold(point Key, acc any, args ...any) (any, Verdict) {
	entries, _ := h.store.Get(point)

	for _, e := range entries {
		callArgs := make([]any, 0, len(args)+1)
		callArgs = append(callArgs, args...)
		callArgs = append(callArgs, acc)

		if h.filtered(e, callArgs) {
			continue
		}

		switch res := e.Action.invoke(callArgs).(type) {
		case Verdict:
			if res == Stop {
				atomic.AddInt64(&h.metrics.CallbacksStopped, 1)
				atomic.AddInt64(&h.metrics.RunsCompleted, 1)
				return acc, Stop
			}
		case NewAcc:
			acc = res.Value
		case StopWith:
			atomic.AddInt64(&h.metrics.CallbacksStopped, 1)
			atomic.AddInt64(&h.metrics.RunsCompleted, 1)
			return res.Value, Stop
		default:
			// Informational return value, not part of the control
			// protocol. Continue with the accumulator unchanged.
		}
	}

	atomic.AddInt64(&h.metrics.RunsCompleted, 1)
	return acc, OK
}

// RunAsync queues a fire-and-forget dispatch on the worker pool and returns
// without waiting for callbacks to run. The context gates queueing (during
// backpressure waits) and lets workers abandon tasks whose context expired
// before execution.
//
// Returns ErrQueueFull when the queue cannot accept the task and
// ErrServiceClosed after Close. Callback panics on the async path are
// recovered, logged and counted, since there is no caller to escalate to.
func (h *Hooks) RunAsync(ctx context.Context, point Key, args ...any) error {
	return h.workers.submit(runTask{ctx: ctx, point: point, args: args})
}

// filtered evaluates the entry's filter, if any, against the dispatch
// arguments. Anything other than nil or false is truthy and suppresses the
// action. Filters never mutate the accumulator; their result is only ever
// inspected for truthiness.
func (h *Hooks) filtered(e Entry, args []any) bool {
	if !e.Filter.valid() {
		return false
	}
	if truthy(e.Filter.invoke(args)) {
		atomic.AddInt64(&h.metrics.CallbacksFiltered, 1)
		return true
	}
	return false
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	default:
		return true
	}
}

// executeTask runs one async dispatch on a worker goroutine.
func (h *Hooks) executeTask(task runTask) {
	h.Run(task.point, task.args...)
}
