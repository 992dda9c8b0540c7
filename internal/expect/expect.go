// Package expect holds the marker vocabulary attached to test units and
// normalises a unit's markers into exactly one Expectation.
package expect

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/marktest/internal/kind"
)

// Marker is a piece of metadata declaring a unit's expected failure.
// The set of markers is closed: NoFailure, Single and Multi.
type Marker interface {
	marker()
}

// NoFailure declares that the unit must complete without raising.
type NoFailure struct{}

// Single declares one acceptable failure kind. Repeatable.
type Single struct {
	Kind kind.Kind
}

// Multi declares several acceptable failure kinds.
type Multi struct {
	Kinds []kind.Kind
}

func (NoFailure) marker() {}
func (Single) marker()    {}
func (Multi) marker()     {}

// Expectation is the normalised, matchable form of a unit's markers.
type Expectation interface {
	// Accepts reports whether a raised kind satisfies the expectation and
	// which declared kind accepted it.
	Accepts(raised kind.Kind, h *kind.Hierarchy) (matched kind.Kind, ok bool)

	// String describes the expectation for reports.
	String() string
}

// NoFailureExpected requires normal completion.
type NoFailureExpected struct{}

// SingleFailureExpected requires an error of Kind or one of its subkinds.
type SingleFailureExpected struct {
	Kind kind.Kind
}

// AnyOfFailureExpected requires an error matching at least one of Kinds.
// Kinds may be empty only when the declaring marker was ill-formed.
type AnyOfFailureExpected struct {
	Kinds []kind.Kind
}

// Accepts never accepts a raised kind.
func (NoFailureExpected) Accepts(kind.Kind, *kind.Hierarchy) (kind.Kind, bool) {
	return "", false
}

func (NoFailureExpected) String() string {
	return "no failure"
}

// Accepts matches raised against Kind with subtype awareness.
func (e SingleFailureExpected) Accepts(raised kind.Kind, h *kind.Hierarchy) (kind.Kind, bool) {
	if h.IsA(raised, e.Kind) {
		return e.Kind, true
	}
	return "", false
}

func (e SingleFailureExpected) String() string {
	return e.Kind.String()
}

// Accepts returns the first declared kind that raised satisfies.
func (e AnyOfFailureExpected) Accepts(raised kind.Kind, h *kind.Hierarchy) (kind.Kind, bool) {
	for _, k := range e.Kinds {
		if h.IsA(raised, k) {
			return k, true
		}
	}
	return "", false
}

func (e AnyOfFailureExpected) String() string {
	return JoinKinds(e.Kinds)
}

// Declared returns the kinds named by e, in declaration order.
func Declared(e Expectation) []kind.Kind {
	switch e := e.(type) {
	case SingleFailureExpected:
		return []kind.Kind{e.Kind}
	case AnyOfFailureExpected:
		return e.Kinds
	default:
		return nil
	}
}

// JoinKinds renders kinds as "[A, B]".
func JoinKinds(kinds []kind.Kind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return "[" + strings.Join(names, ", ") + "]"
}

var (
	// ErrNoMarkers is returned when normalising an empty marker list.
	ErrNoMarkers = errors.New("no expectation markers")

	// ErrConflictingMarkers is returned when a no-failure marker is
	// combined with failure-kind markers on the same unit.
	ErrConflictingMarkers = errors.New("no-failure marker combined with failure-kind markers")

	// ErrEmptyKinds is returned when a multi-kind marker with no kinds is
	// combined with other markers, where it would otherwise vanish from
	// the merged set.
	ErrEmptyKinds = errors.New("multi-kind marker declares no kinds")
)

// Normalize turns the markers attached to one unit into one Expectation.
//
// Repeated Single markers, and any mix of Single and Multi markers,
// collapse into AnyOfFailureExpected with every declared kind in
// declaration order. Duplicates are kept. A lone empty Multi is preserved
// so the matcher can report it as misuse at run time; an empty Multi among
// other markers is an error.
func Normalize(markers []Marker) (Expectation, error) {
	if len(markers) == 0 {
		return nil, ErrNoMarkers
	}

	var (
		noFailure int
		failures  int
		singles   []kind.Kind
		kinds     []kind.Kind
	)
	for i, m := range markers {
		switch m := m.(type) {
		case NoFailure:
			noFailure++
		case Single:
			failures++
			singles = append(singles, m.Kind)
			kinds = append(kinds, m.Kind)
		case Multi:
			if len(m.Kinds) == 0 && len(markers) > 1 {
				return nil, fmt.Errorf("marker %d: %w", i, ErrEmptyKinds)
			}
			failures++
			kinds = append(kinds, m.Kinds...)
		default:
			return nil, fmt.Errorf("marker %d: unsupported marker type %T", i, m)
		}
	}

	if noFailure > 0 && failures > 0 {
		return nil, ErrConflictingMarkers
	}
	if failures == 0 {
		return NoFailureExpected{}, nil
	}
	if failures == 1 && len(singles) == 1 {
		return SingleFailureExpected{Kind: singles[0]}, nil
	}
	if kinds == nil {
		kinds = []kind.Kind{}
	}
	return AnyOfFailureExpected{Kinds: kinds}, nil
}
