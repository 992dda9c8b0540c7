package kind

import (
	"fmt"
	"sort"
)

// Kind is the runtime classification of an error value.
type Kind string

// Built-in kinds.
const (
	Error           Kind = "Error"
	Runtime         Kind = "Runtime"
	Arithmetic      Kind = "Arithmetic"
	Index           Kind = "Index"
	ArrayIndex      Kind = "ArrayIndex"
	Null            Kind = "Null"
	IllegalArgument Kind = "IllegalArgument"
	IllegalState    Kind = "IllegalState"
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	return string(k)
}

// Hierarchy is a tag-with-ancestors table of kinds.
//
// Every kind except Error has exactly one parent. Kinds are never removed,
// so a registered kind keeps its ancestry for the lifetime of the table.
type Hierarchy struct {
	parents map[Kind]Kind
	order   []Kind
}

// NewHierarchy returns a hierarchy holding the built-in kinds.
func NewHierarchy() *Hierarchy {
	h := &Hierarchy{
		parents: map[Kind]Kind{Error: ""},
		order:   []Kind{Error},
	}
	builtins := []struct{ kind, parent Kind }{
		{Runtime, Error},
		{Arithmetic, Runtime},
		{Index, Runtime},
		{ArrayIndex, Index},
		{Null, Runtime},
		{IllegalArgument, Runtime},
		{IllegalState, Runtime},
	}
	for _, b := range builtins {
		h.parents[b.kind] = b.parent
		h.order = append(h.order, b.kind)
	}
	return h
}

// Register adds k as a child of parent.
// The parent must already be known and k must be new.
func (h *Hierarchy) Register(k, parent Kind) error {
	if k == "" {
		return fmt.Errorf("kind name is required")
	}
	if _, ok := h.parents[k]; ok {
		return fmt.Errorf("kind %q already registered", k)
	}
	if _, ok := h.parents[parent]; !ok {
		return fmt.Errorf("kind %q: unknown parent %q", k, parent)
	}
	h.parents[k] = parent
	h.order = append(h.order, k)
	return nil
}

// Known reports whether k is registered.
func (h *Hierarchy) Known(k Kind) bool {
	_, ok := h.parents[k]
	return ok
}

// Parent returns the parent of k, or "" for the root and unknown kinds.
func (h *Hierarchy) Parent(k Kind) Kind {
	return h.parents[k]
}

// Ancestors returns the chain from k up to the root, k included.
// An unknown kind is its own only ancestor.
func (h *Hierarchy) Ancestors(k Kind) []Kind {
	chain := []Kind{k}
	for p := h.parents[k]; p != ""; p = h.parents[p] {
		chain = append(chain, p)
	}
	return chain
}

// IsA reports whether k equals ancestor or descends from it.
func (h *Hierarchy) IsA(k, ancestor Kind) bool {
	if k == ancestor {
		return true
	}
	for p := h.parents[k]; p != ""; p = h.parents[p] {
		if p == ancestor {
			return true
		}
	}
	return false
}

// Kinds returns all registered kinds in registration order.
func (h *Hierarchy) Kinds() []Kind {
	out := make([]Kind, len(h.order))
	copy(out, h.order)
	return out
}

// Children returns the direct children of k sorted by name.
func (h *Hierarchy) Children(k Kind) []Kind {
	var out []Kind
	for child, parent := range h.parents {
		if parent == k && child != k {
			out = append(out, child)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
