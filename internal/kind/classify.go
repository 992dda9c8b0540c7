package kind

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Kinded is implemented by errors that carry their own kind.
type Kinded interface {
	ErrorKind() Kind
}

// KindError is an error tagged with a Kind. Its methods accept a nil
// receiver, which has no kind.
type KindError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *KindError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *KindError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ErrorKind implements Kinded.
func (e *KindError) ErrorKind() Kind {
	if e == nil {
		return ""
	}
	return e.Kind
}

// New creates an error of kind k.
func New(k Kind, message string) error {
	return &KindError{Kind: k, Message: message}
}

// Errorf creates an error of kind k with a formatted message.
// A %w verb wraps the operand as with fmt.Errorf.
func Errorf(k Kind, format string, args ...any) error {
	wrapped := fmt.Errorf(format, args...)
	return &KindError{Kind: k, Message: wrapped.Error(), Err: errors.Unwrap(wrapped)}
}

// runtimeKinds maps Go runtime error messages to kinds.
// Checked in order; the first substring match wins.
var runtimeKinds = []struct {
	fragment string
	kind     Kind
}{
	{"integer divide by zero", Arithmetic},
	{"integer overflow", Arithmetic},
	{"index out of range", ArrayIndex},
	{"slice bounds out of range", ArrayIndex},
	{"nil pointer dereference", Null},
	{"assignment to entry in nil map", Null},
}

// Of returns the most specific kind available for err.
// A nil error has no kind.
func Of(err error) Kind {
	if err == nil {
		return ""
	}

	var kinded Kinded
	if errors.As(err, &kinded) {
		if k := kinded.ErrorKind(); k != "" {
			return k
		}
	}

	var rtErr runtime.Error
	if errors.As(err, &rtErr) {
		msg := rtErr.Error()
		for _, rk := range runtimeKinds {
			if strings.Contains(msg, rk.fragment) {
				return rk.kind
			}
		}
		return Runtime
	}

	return Error
}

// OfPanic classifies a recovered panic value and returns it as an error.
func OfPanic(v any) (Kind, error) {
	if err, ok := v.(error); ok {
		return Of(err), err
	}
	return Runtime, fmt.Errorf("panic: %v", v)
}
