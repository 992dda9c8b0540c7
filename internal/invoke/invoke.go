// Package invoke calls a single test unit and captures its outcome.
package invoke

import (
	"fmt"
	"reflect"

	"github.com/roach88/marktest/internal/discover"
	"github.com/roach88/marktest/internal/kind"
)

// Status is the class of an invocation outcome.
type Status int

const (
	// Completed means the unit returned normally.
	Completed Status = iota
	// Raised means the unit panicked or returned a non-nil error.
	Raised
	// Rejected means the unit could not be dispatched at all.
	Rejected
)

func (s Status) String() string {
	switch s {
	case Completed:
		return "completed"
	case Raised:
		return "raised"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Outcome is the result of invoking one unit.
type Outcome struct {
	Status Status

	// Kind and Err describe the raised error when Status is Raised.
	Kind kind.Kind
	Err  error

	// Reason explains why dispatch was refused when Status is Rejected.
	Reason string
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Invoke calls the unit's target with no arguments.
//
// Dispatch problems (nil target, non-function target, wrong arity) are
// detected before the call and reported as Rejected. Only the call itself
// is guarded, so a panic in the harness is never mistaken for the unit
// raising.
func Invoke(u discover.Unit) Outcome {
	fn, reason := resolve(u.Target)
	if fn == nil {
		return Outcome{Status: Rejected, Reason: reason}
	}
	return call(fn)
}

// resolve turns a target into a zero-argument function returning an
// optional error, or explains why it cannot.
func resolve(target any) (func() error, string) {
	switch fn := target.(type) {
	case nil:
		return nil, "unresolvable target"
	case func():
		if fn == nil {
			return nil, "unresolvable target"
		}
		return func() error { fn(); return nil }, ""
	case func() error:
		if fn == nil {
			return nil, "unresolvable target"
		}
		return fn, ""
	}

	v, ok := target.(reflect.Value)
	if !ok {
		v = reflect.ValueOf(target)
	}
	if !v.IsValid() {
		return nil, "unresolvable target"
	}
	if v.Kind() != reflect.Func {
		return nil, fmt.Sprintf("target of type %s is not callable", v.Type())
	}
	if v.IsNil() {
		return nil, "unresolvable target"
	}
	t := v.Type()
	if t.NumIn() != 0 {
		return nil, fmt.Sprintf("wrong arity: takes %d argument(s), want 0", t.NumIn())
	}

	returnsErr := t.NumOut() > 0 && t.Out(t.NumOut()-1) == errorType
	return func() error {
		out := v.Call(nil)
		if !returnsErr {
			return nil
		}
		err, _ := out[len(out)-1].Interface().(error)
		return err
	}, ""
}

// call runs fn and classifies what it raised. Classification happens
// after the guarded region, so a fault while classifying propagates
// instead of being blamed on the unit.
func call(fn func() error) Outcome {
	value, panicked, err := guard(fn)
	if panicked {
		k, perr := kind.OfPanic(value)
		return Outcome{Status: Raised, Kind: k, Err: perr}
	}
	if err != nil {
		return Outcome{Status: Raised, Kind: kind.Of(err), Err: err}
	}
	return Outcome{Status: Completed}
}

// guard captures the error returned by fn or the value it panicked with.
func guard(fn func() error) (value any, panicked bool, err error) {
	defer func() {
		if v := recover(); v != nil {
			panicked, value = true, v
		}
	}()
	return nil, false, fn()
}
