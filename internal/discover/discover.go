// Package discover enumerates the test units of a module.
//
// Resolution of a module identifier into callables is delegated to an
// Enumerator. Registry is the in-process implementation: units are
// registered explicitly, or lifted from the exported method set of a
// suite value by reflection. Discover then keeps only marked entries and
// normalises each entry's markers into one expectation.
package discover

import (
	"errors"
	"fmt"
	"sort"

	"github.com/roach88/marktest/internal/expect"
)

// ErrModuleNotFound is returned when a module identifier cannot be resolved.
var ErrModuleNotFound = errors.New("module not found")

// Unit is a discovered test unit.
type Unit struct {
	// Name is the qualified unit name, "module.unit".
	Name string

	// Target is the invocable handle. Nil when unresolvable.
	Target any

	// Expect is the normalised expectation. Nil when DeclErr is set.
	Expect expect.Expectation

	// DeclErr is set when the unit's markers could not be normalised.
	DeclErr error
}

// Discover returns the marked units of module in declaration order.
// Entries without markers are excluded. A marker normalisation failure
// does not fail discovery; it is carried on the unit.
func Discover(e Enumerator, module string) ([]Unit, error) {
	entries, err := e.Enumerate(module)
	if err != nil {
		return nil, err
	}

	units := make([]Unit, 0, len(entries))
	for _, entry := range entries {
		if len(entry.Markers) == 0 {
			continue
		}
		unit := Unit{
			Name:   fmt.Sprintf("%s.%s", module, entry.Name),
			Target: entry.Target,
		}
		exp, err := expect.Normalize(entry.Markers)
		if err != nil {
			unit.DeclErr = err
		} else {
			unit.Expect = exp
		}
		units = append(units, unit)
	}
	return units, nil
}

// IsModuleNotFound reports whether err wraps ErrModuleNotFound.
func IsModuleNotFound(err error) bool {
	return errors.Is(err, ErrModuleNotFound)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
