package discover

import (
	"fmt"
	"reflect"

	"github.com/roach88/marktest/internal/expect"
)

// Entry is one callable enumerated from a module together with the
// markers attached to it. Target may be nil when a marker names a unit
// the module cannot resolve.
type Entry struct {
	Name    string
	Target  any
	Markers []expect.Marker
}

// Enumerator resolves a module identifier into its entries in
// declaration order. It returns an error wrapping ErrModuleNotFound when
// the identifier cannot be resolved.
type Enumerator interface {
	Enumerate(module string) ([]Entry, error)
}

// Marked is implemented by suites that attach markers to their methods.
// Keys are method names.
type Marked interface {
	Markers() map[string][]expect.Marker
}

// Registry is an Enumerator backed by explicit registration.
// It is not safe for concurrent mutation.
type Registry struct {
	modules map[string]*Module
	order   []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]*Module)}
}

// Module returns the module registered under name, creating it if needed.
func (r *Registry) Module(name string) *Module {
	if m, ok := r.modules[name]; ok {
		return m
	}
	m := &Module{name: name, index: make(map[string]*Entry)}
	r.modules[name] = m
	r.order = append(r.order, name)
	return m
}

// Lookup returns the module registered under name, if any.
func (r *Registry) Lookup(name string) (*Module, bool) {
	m, ok := r.modules[name]
	return m, ok
}

// Modules returns module names in registration order.
func (r *Registry) Modules() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Enumerate implements Enumerator.
func (r *Registry) Enumerate(module string) ([]Entry, error) {
	m, ok := r.modules[module]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrModuleNotFound, module)
	}
	return m.Entries(), nil
}

// Module is a named, ordered collection of entries.
type Module struct {
	name    string
	entries []*Entry
	index   map[string]*Entry
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return m.name
}

// Add registers a callable with its markers. Adding a name twice replaces
// the target and appends the markers, keeping the original position.
func (m *Module) Add(name string, target any, markers ...expect.Marker) *Module {
	if e, ok := m.index[name]; ok {
		e.Target = target
		e.Markers = append(e.Markers, markers...)
		return m
	}
	e := &Entry{Name: name, Target: target, Markers: markers}
	m.entries = append(m.entries, e)
	m.index[name] = e
	return m
}

// Mark attaches markers to the named entry. When no entry exists one is
// created without a target, so the run reports it as unresolvable.
func (m *Module) Mark(name string, markers ...expect.Marker) *Module {
	if e, ok := m.index[name]; ok {
		e.Markers = append(e.Markers, markers...)
		return m
	}
	e := &Entry{Name: name, Markers: markers}
	m.entries = append(m.entries, e)
	m.index[name] = e
	return m
}

// AddSuite registers every exported method of suite, in lexical order,
// as an entry. Markers come from the suite's Markers method when it
// implements Marked; methods without markers are registered unmarked and
// filtered out at discovery.
func (m *Module) AddSuite(suite any) *Module {
	v := reflect.ValueOf(suite)
	t := v.Type()
	for i := 0; i < t.NumMethod(); i++ {
		name := t.Method(i).Name
		if name == "Markers" {
			continue
		}
		m.Add(name, v.Method(i))
	}

	if marked, ok := suite.(Marked); ok {
		markers := marked.Markers()
		for _, name := range sortedKeys(markers) {
			m.Mark(name, markers[name]...)
		}
	}
	return m
}

// Entries returns copies of the module's entries in declaration order.
func (m *Module) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	for i, e := range m.entries {
		out[i] = Entry{
			Name:    e.Name,
			Target:  e.Target,
			Markers: append([]expect.Marker(nil), e.Markers...),
		}
	}
	return out
}
