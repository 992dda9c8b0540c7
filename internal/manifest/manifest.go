// Package manifest loads sidecar files that attach expectation markers to
// the units of registered modules and declare custom error kinds.
//
// # Manifest Format
//
// YAML (.yaml, .yml) and CUE (.cue) share one structure:
//
//	kinds:
//	  - name: Validation
//	    parent: IllegalArgument
//	modules:
//	  - module: listops
//	    units:
//	      - name: InsertPastEnd
//	        expect:
//	          - kinds: [Index, Null]
//	      - name: DerefMissing
//	        expect:
//	          - kind: Index
//	          - kind: Null
//	      - name: Append
//	        expect:
//	          - none: true
//
// Each expect entry holds exactly one of none, kind or kinds. Repeating
// kind entries on a unit is equivalent to a single kinds entry.
package manifest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/marktest/internal/discover"
	"github.com/roach88/marktest/internal/expect"
	"github.com/roach88/marktest/internal/kind"
)

// Manifest declares kinds and unit markers.
type Manifest struct {
	// Kinds are registered in order before any marker is attached.
	Kinds []KindDecl `yaml:"kinds,omitempty" json:"kinds,omitempty"`

	// Modules lists the modules whose units receive markers.
	Modules []ModuleDecl `yaml:"modules" json:"modules"`
}

// KindDecl declares a custom kind below an existing parent.
type KindDecl struct {
	Name   string `yaml:"name" json:"name"`
	Parent string `yaml:"parent" json:"parent"`
}

// ModuleDecl attaches markers to units of one module.
type ModuleDecl struct {
	Module string     `yaml:"module" json:"module"`
	Units  []UnitDecl `yaml:"units" json:"units"`
}

// UnitDecl lists the markers of one unit in declaration order.
type UnitDecl struct {
	Name   string       `yaml:"name" json:"name"`
	Expect []MarkerDecl `yaml:"expect" json:"expect"`
}

// MarkerDecl is one marker. Exactly one field is set.
type MarkerDecl struct {
	None  bool     `yaml:"none,omitempty" json:"none,omitempty"`
	Kind  string   `yaml:"kind,omitempty" json:"kind,omitempty"`
	Kinds []string `yaml:"kinds,omitempty" json:"kinds,omitempty"`
}

// Marker converts the declaration into an expect.Marker.
func (d MarkerDecl) Marker() expect.Marker {
	switch {
	case d.None:
		return expect.NoFailure{}
	case d.Kind != "":
		return expect.Single{Kind: kind.Kind(d.Kind)}
	default:
		kinds := make([]kind.Kind, len(d.Kinds))
		for i, k := range d.Kinds {
			kinds[i] = kind.Kind(k)
		}
		return expect.Multi{Kinds: kinds}
	}
}

// Load reads a manifest, choosing the decoder by file extension.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields, or is missing required fields.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	var m *Manifest
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		m, err = decodeYAML(data)
	case ".cue":
		m, err = decodeCUE(path, data)
	default:
		return nil, fmt.Errorf("unsupported manifest extension %q (want .yaml, .yml or .cue)", ext)
	}
	if err != nil {
		return nil, err
	}

	if err := validate(m); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	return m, nil
}

func decodeYAML(data []byte) (*Manifest, error) {
	var m Manifest
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &m, nil
}

// Apply registers the manifest's kinds in h, then attaches every unit's
// markers to the matching module in reg. Units the module does not
// define are attached without a target and later judged as misuse.
func (m *Manifest) Apply(reg *discover.Registry, h *kind.Hierarchy) error {
	for i, k := range m.Kinds {
		if err := h.Register(kind.Kind(k.Name), kind.Kind(k.Parent)); err != nil {
			return fmt.Errorf("kinds[%d]: %w", i, err)
		}
	}

	for i, mod := range m.Modules {
		target, ok := reg.Lookup(mod.Module)
		if !ok {
			return fmt.Errorf("modules[%d]: %w: %q", i, discover.ErrModuleNotFound, mod.Module)
		}
		for _, unit := range mod.Units {
			markers := make([]expect.Marker, len(unit.Expect))
			for k, decl := range unit.Expect {
				markers[k] = decl.Marker()
			}
			target.Mark(unit.Name, markers...)
		}
	}
	return nil
}

// validate checks that required fields are present and valid.
func validate(m *Manifest) error {
	for i, k := range m.Kinds {
		if k.Name == "" {
			return fmt.Errorf("kinds[%d]: name is required", i)
		}
		if k.Parent == "" {
			return fmt.Errorf("kinds[%d]: parent is required", i)
		}
	}

	if len(m.Modules) == 0 {
		return fmt.Errorf("modules list is required and must be non-empty")
	}

	for i, mod := range m.Modules {
		if mod.Module == "" {
			return fmt.Errorf("modules[%d]: module is required", i)
		}
		if len(mod.Units) == 0 {
			return fmt.Errorf("modules[%d]: units list is required and must be non-empty", i)
		}
		for j, unit := range mod.Units {
			if unit.Name == "" {
				return fmt.Errorf("modules[%d].units[%d]: name is required", i, j)
			}
			if len(unit.Expect) == 0 {
				return fmt.Errorf("modules[%d].units[%d]: expect list is required and must be non-empty", i, j)
			}
			for k, decl := range unit.Expect {
				if err := validateMarker(decl); err != nil {
					return fmt.Errorf("modules[%d].units[%d].expect[%d]: %w", i, j, k, err)
				}
			}
		}
	}
	return nil
}

// validateMarker requires exactly one of none, kind or kinds. An empty
// kinds list is accepted here and reported as misuse at run time.
func validateMarker(d MarkerDecl) error {
	set := 0
	if d.None {
		set++
	}
	if d.Kind != "" {
		set++
	}
	if d.Kinds != nil {
		set++
	}
	if set != 1 {
		return fmt.Errorf("exactly one of none, kind or kinds is required")
	}
	for i, k := range d.Kinds {
		if k == "" {
			return fmt.Errorf("kinds[%d]: kind name is required", i)
		}
	}
	return nil
}
