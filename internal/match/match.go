// Package match decides a unit's verdict from its invocation outcome and
// its declared expectation.
package match

import (
	"errors"
	"fmt"

	"github.com/roach88/marktest/internal/expect"
	"github.com/roach88/marktest/internal/invoke"
	"github.com/roach88/marktest/internal/kind"
)

// Status is the three-way classification of a unit's outcome.
type Status string

const (
	Pass   Status = "pass"
	Fail   Status = "fail"
	Misuse Status = "misuse"
)

// Verdict is the immutable result for one unit.
type Verdict struct {
	Status Status `json:"status"`
	Detail string `json:"detail"`

	// Matched is the declared kind that accepted the raised error.
	// Empty unless a failure expectation passed.
	Matched kind.Kind `json:"matched,omitempty"`
}

// Passed reports whether the verdict is Pass.
func (v Verdict) Passed() bool {
	return v.Status == Pass
}

// ErrDefect marks matcher inputs that indicate a bug in the harness
// rather than in a unit or its declaration.
var ErrDefect = errors.New("harness defect")

// EmptyExpectation is the misuse detail for a multi-kind marker with no kinds.
const EmptyExpectation = "expectation set is empty: ill-formed marker"

// Match applies the decision table. The error return is reserved for
// harness defects and is never a verdict.
func Match(o invoke.Outcome, e expect.Expectation, h *kind.Hierarchy) (Verdict, error) {
	if e == nil {
		return Verdict{}, fmt.Errorf("%w: nil expectation", ErrDefect)
	}
	if h == nil {
		return Verdict{}, fmt.Errorf("%w: nil kind hierarchy", ErrDefect)
	}

	if o.Status == invoke.Rejected {
		return MisuseOf(o.Reason), nil
	}
	if o.Status != invoke.Completed && o.Status != invoke.Raised {
		return Verdict{}, fmt.Errorf("%w: unknown outcome status %v", ErrDefect, o.Status)
	}

	switch e := e.(type) {
	case expect.NoFailureExpected:
		if o.Status == invoke.Completed {
			return Verdict{Status: Pass, Detail: "passed"}, nil
		}
		return failf("raised unexpectedly: %s (%v)", o.Kind, o.Err), nil

	case expect.SingleFailureExpected:
		if o.Status == invoke.Completed {
			return failf("expected %s, nothing raised", e.Kind), nil
		}
		if matched, ok := e.Accepts(o.Kind, h); ok {
			return Verdict{Status: Pass, Detail: fmt.Sprintf("raised %s", o.Kind), Matched: matched}, nil
		}
		return failf("expected %s, got %s (%v)", e.Kind, o.Kind, o.Err), nil

	case expect.AnyOfFailureExpected:
		if len(e.Kinds) == 0 {
			return MisuseOf(EmptyExpectation), nil
		}
		if o.Status == invoke.Completed {
			return failf("expected one of %s, nothing raised", e), nil
		}
		if matched, ok := e.Accepts(o.Kind, h); ok {
			return Verdict{Status: Pass, Detail: fmt.Sprintf("raised %s", o.Kind), Matched: matched}, nil
		}
		return failf("expected one of %s, got %s (%v)", e, o.Kind, o.Err), nil

	default:
		return Verdict{}, fmt.Errorf("%w: unsupported expectation %T", ErrDefect, e)
	}
}

// MisuseOf builds a Misuse verdict. Details are prefixed so that a
// malformed test reads differently from a violated contract.
func MisuseOf(reason string) Verdict {
	return Verdict{Status: Misuse, Detail: "misuse: " + reason}
}

func failf(format string, args ...any) Verdict {
	return Verdict{Status: Fail, Detail: "failed: " + fmt.Sprintf(format, args...)}
}
