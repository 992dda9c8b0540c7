// Package samples provides the built-in demonstration modules.
//
// Each module is a suite whose exported methods are candidate units and
// whose Markers method declares the expectations:
//
//	sample     no-failure markers; one pass, two failures, one misuse
//	sample2    single-kind markers over arithmetic and bounds panics
//	sample3    one multi-kind marker accepting Index or Null
//	sample4    the same expectation as repeated single-kind markers
//	malformed  one unit for each way a declaration can be misused
//	listops    no markers in code; see manifests/listops.yaml
package samples

import (
	"errors"
	"slices"

	"github.com/roach88/marktest/internal/discover"
	"github.com/roach88/marktest/internal/expect"
	"github.com/roach88/marktest/internal/kind"
)

// Catalog returns a registry holding every sample module.
func Catalog() *discover.Registry {
	reg := discover.NewRegistry()
	Register(reg)
	return reg
}

// Register adds the sample modules to reg.
func Register(reg *discover.Registry) {
	reg.Module("sample").AddSuite(Sample{})
	reg.Module("sample2").AddSuite(Sample2{})
	reg.Module("sample3").AddSuite(Sample3{})
	reg.Module("sample4").AddSuite(Sample4{})
	reg.Module("malformed").AddSuite(Malformed{})
	reg.Module("listops").AddSuite(&ListOps{})
}

// Sample exercises no-failure markers.
type Sample struct{}

func (Sample) M1() {}

func (Sample) M2() {}

func (Sample) M3() { panic("failure") }

func (Sample) M4() {}

// M5 takes an argument, so it cannot be dispatched as a unit.
func (Sample) M5(string) {}

func (Sample) M6() {}

func (Sample) M7() error { return errors.New("failure") }

func (Sample) M8() {}

func (Sample) Markers() map[string][]expect.Marker {
	return map[string][]expect.Marker{
		"M1": {expect.NoFailure{}},
		"M3": {expect.NoFailure{}},
		"M5": {expect.NoFailure{}},
		"M7": {expect.NoFailure{}},
	}
}

// Sample2 exercises single-kind markers.
type Sample2 struct{}

// M1 divides by zero and expects it.
func (Sample2) M1() {
	i := 0
	i = i / i
}

// M2 indexes out of bounds but expects arithmetic.
func (Sample2) M2() {
	a := make([]int, 0)
	_ = a[1]
}

// M3 indexes out of bounds and expects it.
func (Sample2) M3() {
	a := make([]int, 0)
	_ = a[1]
}

// M4 raises nothing but expects arithmetic.
func (Sample2) M4() {}

func (Sample2) Markers() map[string][]expect.Marker {
	return map[string][]expect.Marker{
		"M1": {expect.Single{Kind: kind.Arithmetic}},
		"M2": {expect.Single{Kind: kind.Arithmetic}},
		"M3": {expect.Single{Kind: kind.ArrayIndex}},
		"M4": {expect.Single{Kind: kind.Arithmetic}},
	}
}

// doublyBad inserts past the end of an empty list. Either an Index or a
// Null failure is acceptable for it.
func doublyBad() {
	var list []*string
	list = slices.Insert(list, 5, nil)
	_ = list
}

// Sample3 declares its accepted kinds with one multi-kind marker.
type Sample3 struct{}

func (Sample3) DoublyBad() { doublyBad() }

func (Sample3) Markers() map[string][]expect.Marker {
	return map[string][]expect.Marker{
		"DoublyBad": {expect.Multi{Kinds: []kind.Kind{kind.Index, kind.Null}}},
	}
}

// Sample4 declares the same kinds as Sample3 with repeated markers.
type Sample4 struct{}

func (Sample4) DoublyBad() { doublyBad() }

func (Sample4) Markers() map[string][]expect.Marker {
	return map[string][]expect.Marker{
		"DoublyBad": {
			expect.Single{Kind: kind.Index},
			expect.Single{Kind: kind.Null},
		},
	}
}

// Malformed holds one unit per kind of declaration misuse.
type Malformed struct{}

func (Malformed) Conflicting() {}

func (Malformed) EmptyKinds() {}

func (Malformed) WithArgument(int) {}

func (Malformed) Markers() map[string][]expect.Marker {
	return map[string][]expect.Marker{
		"Conflicting":  {expect.NoFailure{}, expect.Single{Kind: kind.Index}},
		"EmptyKinds":   {expect.Multi{}},
		"WithArgument": {expect.NoFailure{}},
		"Ghost":        {expect.Single{Kind: kind.Null}},
	}
}

// Validation is the custom kind raised by ListOps.ParseNegative. It is
// declared by the listops manifest as a child of IllegalArgument.
const Validation kind.Kind = "Validation"

type node struct {
	value int
	next  *node
}

// ListOps carries no markers of its own. A manifest attaches them.
type ListOps struct {
	items []int
	head  *node
}

func (l *ListOps) Append() {
	l.items = append(l.items, len(l.items))
}

func (l *ListOps) InsertPastEnd() {
	l.items = slices.Insert(l.items, len(l.items)+5, 1)
}

func (l *ListOps) DerefMissing() {
	_ = l.head.next
}

func (l *ListOps) PopEmpty() error {
	if l.head == nil {
		return kind.New(kind.IllegalState, "pop from empty list")
	}
	l.head = l.head.next
	return nil
}

func (l *ListOps) ParseNegative() error {
	return kind.Errorf(Validation, "length %d must not be negative", -1)
}
