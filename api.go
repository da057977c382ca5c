// Package hookpoint provides a priority-ordered hook-point registry with
// short-circuiting dispatch.
//
// A hook point is a named extension site. Independent modules register
// callbacks against it without the code that fires the hook point knowing
// about them. Callbacks carry an integer priority (lower runs earlier) and
// an optional filter that can suppress individual invocations.
//
// Registration is serialized through a single registrar goroutine, so adds
// and deletes are linearizable and duplicate checks are race-free. Dispatch
// reads a published snapshot of the callback list and never contends with
// registration traffic: a Run during an in-flight Add may observe the list
// from just before the Add landed.
//
// Basic Usage:
//
//	hooks := hookpoint.New()
//	defer hooks.Close()
//
//	// Register a callback at a hook point
//	hook, err := hooks.Add("session.opened", hookpoint.Func(func(args ...any) any {
//		audit(args[0])
//		return hookpoint.OK
//	}))
//	if err != nil {
//		return err
//	}
//
//	// Fire the hook point
//	if hooks.Run("session.opened", session) == hookpoint.Stop {
//		// a callback vetoed the event
//	}
//
//	// Later, unregister
//	if err := hook.Unhook(); err != nil {
//		log.Printf("failed to unhook: %v", err)
//	}
//
// Dispatch Protocols:
//
// Run iterates callbacks in priority order. A callback returning Stop halts
// iteration; OK or any unrecognized value continues it. Fold additionally
// threads an accumulator through the callbacks, passed as the trailing
// argument on every invocation:
//
//	total, _ := hooks.Fold("message.count", 0, msg)
//
// Fold callbacks steer dispatch with OK, Stop, NewAcc and StopWith.
// Unrecognized return values continue dispatch with the accumulator
// unchanged — callbacks may legitimately return informational values that
// are not part of the control protocol.
//
// Callback Shapes:
//
// Actions and filters come in three shapes: a plain function (Func), a
// function with bound trailing arguments (FuncArgs), and a late-bound
// method reference resolved at invoke time (Method). All three dispatch
// uniformly.
package hookpoint

// Key identifies a hook point. It is a type alias for string that
// encourages package-level constants at registration and dispatch sites.
//
//	const SessionOpened hookpoint.Key = "session.opened"
type Key = string

// Verdict is the control value steering fire-and-forget dispatch. Callbacks
// return OK to let iteration continue and Stop to halt it; Run returns the
// verdict that ended dispatch.
type Verdict int

const (
	// OK continues dispatch to the next callback. It is also Run's result
	// when every callback has been invoked without a Stop.
	OK Verdict = iota

	// Stop halts dispatch immediately. Later callbacks are not invoked.
	Stop
)

// String returns the verdict name for logs and test failures.
func (v Verdict) String() string {
	switch v {
	case OK:
		return "ok"
	case Stop:
		return "stop"
	default:
		return "unknown"
	}
}

// NewAcc is returned by a Fold callback to continue dispatch with a
// replacement accumulator.
type NewAcc struct {
	Value any
}

// StopWith is returned by a Fold callback to halt dispatch and make the
// replacement accumulator the fold result.
type StopWith struct {
	Value any
}

// Ignored is the reply the registrar gives to a synchronous request it does
// not recognize. Unrecognized requests are reported to the configured logger
// and never crash or stall the registrar.
var Ignored = ignoredReply{}

type ignoredReply struct{}
