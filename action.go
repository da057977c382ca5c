package hookpoint

import (
	"fmt"
	"reflect"
)

// Callback is the direct form of a dispatchable action or filter. Dispatch
// arguments arrive in order, followed by any bound arguments, followed by
// the accumulator in Fold mode. The return value is interpreted against the
// dispatch control protocol; values outside the protocol are ignored.
type Callback func(args ...any) any

// Action is an invocable reference registered at a hook point, in one of
// three shapes: a plain callback, a callback with bound trailing arguments,
// or a late-bound (target, method) pair resolved at invoke time.
//
// The zero Action is invalid as an action and means "always pass" as a
// filter. Actions are compared by identity: the function pointer (or target
// and method name) plus the bound arguments. Filter and priority never
// participate in identity.
type Action struct {
	fn     Callback
	target any
	method string
	bound  []any
}

// Func wraps a plain callback as an Action.
func Func(fn Callback) Action {
	return Action{fn: fn}
}

// FuncArgs wraps a callback with fixed trailing arguments. The bound
// arguments are appended after the dispatch arguments on every invocation.
func FuncArgs(fn Callback, bound ...any) Action {
	return Action{fn: fn, bound: bound}
}

// Method builds a late-bound Action: the named method is resolved on target
// by reflection at invoke time. This lets callbacks be registered as
// serializable references rather than closures. Dispatch arguments (plus
// bound arguments) are converted to the method's parameter types; the first
// return value, if any, is the dispatch result.
//
// A missing method or mismatched arguments panic at invoke time, escalating
// to the dispatch caller like any other callback failure.
func Method(target any, name string, bound ...any) Action {
	return Action{target: target, method: name, bound: bound}
}

// valid reports whether the action refers to anything invocable.
func (a Action) valid() bool {
	return a.fn != nil || a.method != ""
}

// invoke calls the action with the dispatch arguments followed by the bound
// arguments.
func (a Action) invoke(args []any) any {
	all := args
	if len(a.bound) > 0 {
		all = make([]any, 0, len(args)+len(a.bound))
		all = append(all, args...)
		all = append(all, a.bound...)
	}
	if a.fn != nil {
		return a.fn(all...)
	}
	return a.apply(all)
}

// apply resolves and calls a late-bound method reference.
func (a Action) apply(args []any) any {
	m := reflect.ValueOf(a.target).MethodByName(a.method)
	if !m.IsValid() {
		panic(fmt.Sprintf("hookpoint: no method %q on %T", a.method, a.target))
	}
	mt := m.Type()
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		if arg != nil {
			in[i] = reflect.ValueOf(arg)
			continue
		}
		// Untyped nil needs the parameter's zero value.
		switch {
		case mt.IsVariadic() && i >= mt.NumIn()-1:
			in[i] = reflect.Zero(mt.In(mt.NumIn() - 1).Elem())
		default:
			in[i] = reflect.Zero(mt.In(i))
		}
	}
	out := m.Call(in)
	if len(out) == 0 {
		return nil
	}
	return out[0].Interface()
}

// equal reports whether two actions share the same identity.
func (a Action) equal(b Action) bool {
	if a.method != "" || b.method != "" {
		return a.method == b.method &&
			sameTarget(a.target, b.target) &&
			reflect.DeepEqual(a.bound, b.bound)
	}
	if a.fn == nil || b.fn == nil {
		return a.fn == nil && b.fn == nil
	}
	return reflect.ValueOf(a.fn).Pointer() == reflect.ValueOf(b.fn).Pointer() &&
		reflect.DeepEqual(a.bound, b.bound)
}

// sameTarget compares late-bound targets. Comparable types keep strict ==
// semantics (distinct pointers stay distinct identities); types Go cannot
// compare, such as structs carrying slice or map fields, fall back to
// DeepEqual instead of panicking on the registrar goroutine.
func sameTarget(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}
