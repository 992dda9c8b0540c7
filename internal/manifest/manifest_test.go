package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/marktest/internal/discover"
	"github.com/roach88/marktest/internal/expect"
	"github.com/roach88/marktest/internal/harness"
	"github.com/roach88/marktest/internal/kind"
	"github.com/roach88/marktest/internal/match"
	"github.com/roach88/marktest/internal/samples"
)

func writeManifest(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ListOps(t *testing.T) {
	for _, file := range []string{"listops.yaml", "listops.cue"} {
		t.Run(file, func(t *testing.T) {
			m, err := Load(filepath.Join("testdata", file))
			require.NoError(t, err)

			require.Len(t, m.Kinds, 1)
			assert.Equal(t, KindDecl{Name: "Validation", Parent: "IllegalArgument"}, m.Kinds[0])

			require.Len(t, m.Modules, 1)
			mod := m.Modules[0]
			assert.Equal(t, "listops", mod.Module)
			require.Len(t, mod.Units, 5)

			assert.Equal(t, "Append", mod.Units[0].Name)
			assert.Equal(t, []MarkerDecl{{None: true}}, mod.Units[0].Expect)
			assert.Equal(t, []MarkerDecl{{Kinds: []string{"Index", "Null"}}}, mod.Units[1].Expect)
			assert.Equal(t, []MarkerDecl{{Kind: "Index"}, {Kind: "Null"}}, mod.Units[2].Expect)
		})
	}
}

// Both formats describe the same manifest.
func TestLoad_FormatsAgree(t *testing.T) {
	fromYAML, err := Load("testdata/listops.yaml")
	require.NoError(t, err)
	fromCUE, err := Load("testdata/listops.cue")
	require.NoError(t, err)
	assert.Equal(t, fromYAML, fromCUE)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{"missing file", "testdata/nope.yaml", "failed to read manifest file"},
		{"unsupported extension", "testdata/listops.json", `unsupported manifest extension ".json"`},
		{"yaml unknown field", "testdata/unknown_field.yaml", "field timeout not found"},
		{"yaml two marker fields", "testdata/two_fields.yaml", "exactly one of none, kind or kinds"},
		{"cue unknown field", "testdata/unknown_field.cue", "manifest does not match schema"},
		{"cue two marker fields", "testdata/two_fields.cue", "manifest does not match schema"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Load(tt.path)
			require.Error(t, err)
			assert.Nil(t, m)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_CUEErrorPosition(t *testing.T) {
	_, err := Load("testdata/unknown_field.cue")
	require.Error(t, err)

	var de *DecodeError
	require.True(t, errors.As(err, &de), "want DecodeError, got %T", err)
	assert.True(t, de.Pos.IsValid())
	assert.Contains(t, de.Error(), "timeout")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "no modules",
			content: "kinds: []\n",
			wantErr: "modules list is required",
		},
		{
			name: "kind without parent",
			content: `
kinds:
  - name: Validation
modules:
  - module: listops
    units:
      - name: Append
        expect: [{none: true}]
`,
			wantErr: "kinds[0]: parent is required",
		},
		{
			name: "unit without markers",
			content: `
modules:
  - module: listops
    units:
      - name: Append
`,
			wantErr: "modules[0].units[0]: expect list is required",
		},
		{
			name: "marker without fields",
			content: `
modules:
  - module: listops
    units:
      - name: Append
        expect: [{}]
`,
			wantErr: "modules[0].units[0].expect[0]: exactly one of none, kind or kinds",
		},
		{
			name: "blank kind in list",
			content: `
modules:
  - module: listops
    units:
      - name: Append
        expect: [{kinds: [Index, ""]}]
`,
			wantErr: "kinds[1]: kind name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeManifest(t, "m.yaml", tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid manifest")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// An empty kinds list passes validation and is judged at run time.
func TestLoad_EmptyKindsAccepted(t *testing.T) {
	m, err := Load(writeManifest(t, "m.yml", `
modules:
  - module: listops
    units:
      - name: Append
        expect: [{kinds: []}]
`))
	require.NoError(t, err)
	assert.Equal(t, expect.Multi{Kinds: []kind.Kind{}}, m.Modules[0].Units[0].Expect[0].Marker())
}

func TestMarkerDecl_Marker(t *testing.T) {
	assert.Equal(t, expect.NoFailure{}, MarkerDecl{None: true}.Marker())
	assert.Equal(t, expect.Single{Kind: kind.Null}, MarkerDecl{Kind: "Null"}.Marker())
	assert.Equal(t,
		expect.Multi{Kinds: []kind.Kind{kind.Index, kind.Null}},
		MarkerDecl{Kinds: []string{"Index", "Null"}}.Marker())
}

func TestApply_ListOps(t *testing.T) {
	m, err := Load("testdata/listops.yaml")
	require.NoError(t, err)

	reg := samples.Catalog()
	kinds := kind.NewHierarchy()
	require.NoError(t, m.Apply(reg, kinds))
	assert.True(t, kinds.IsA(samples.Validation, kind.IllegalArgument))

	report, err := harness.New(reg, harness.WithKinds(kinds)).Run("listops")
	require.NoError(t, err)

	assert.Equal(t, 5, report.Total)
	assert.Equal(t, 5, report.Passed, string(harness.Text(report)))

	byName := make(map[string]match.Verdict)
	for _, r := range report.Results {
		byName[r.Name] = r.Verdict
	}
	assert.Equal(t, kind.Index, byName["listops.InsertPastEnd"].Matched)
	assert.Equal(t, kind.Null, byName["listops.DerefMissing"].Matched)
	assert.Equal(t, kind.IllegalArgument, byName["listops.ParseNegative"].Matched)
}

// A marker naming a unit the module lacks yields a misuse verdict.
func TestApply_UnknownUnit(t *testing.T) {
	reg := discover.NewRegistry()
	reg.Module("listops").Add("Append", func() {})

	m := &Manifest{Modules: []ModuleDecl{{
		Module: "listops",
		Units: []UnitDecl{
			{Name: "Append", Expect: []MarkerDecl{{None: true}}},
			{Name: "Ghost", Expect: []MarkerDecl{{Kind: "Index"}}},
		},
	}}}
	require.NoError(t, m.Apply(reg, kind.NewHierarchy()))

	report, err := harness.New(reg).Run("listops")
	require.NoError(t, err)
	require.Len(t, report.Results, 2)
	assert.Equal(t, match.Pass, report.Results[0].Verdict.Status)
	assert.Equal(t, match.Misuse, report.Results[1].Verdict.Status)
}

// A misspelled kind is reported as a bad declaration, not as the code
// under test raising the wrong kind.
func TestApply_MisspelledKindIsMisuse(t *testing.T) {
	m, err := Load(writeManifest(t, "m.yaml", `
kinds:
  - name: Validation
    parent: IllegalArgument
modules:
  - module: listops
    units:
      - name: ParseNegative
        expect: [{kind: Validatoin}]
      - name: PopEmpty
        expect: [{kind: IllegalState}]
`))
	require.NoError(t, err)

	reg := samples.Catalog()
	kinds := kind.NewHierarchy()
	require.NoError(t, m.Apply(reg, kinds))

	report, err := harness.New(reg, harness.WithKinds(kinds)).Run("listops")
	require.NoError(t, err)
	require.Len(t, report.Results, 2)

	assert.Equal(t, "listops.ParseNegative", report.Results[0].Name)
	assert.Equal(t, match.Misuse, report.Results[0].Verdict.Status)
	assert.Contains(t, report.Results[0].Verdict.Detail, `unknown kind "Validatoin"`)
	assert.Equal(t, match.Pass, report.Results[1].Verdict.Status)
}

func TestApply_UnknownModule(t *testing.T) {
	m, err := Load("testdata/unknown_module.yaml")
	require.NoError(t, err)

	err = m.Apply(samples.Catalog(), kind.NewHierarchy())
	require.Error(t, err)
	assert.True(t, errors.Is(err, discover.ErrModuleNotFound))
	assert.Contains(t, err.Error(), `"queues"`)
}

func TestApply_KindErrors(t *testing.T) {
	tests := []struct {
		name  string
		kinds []KindDecl
	}{
		{"unknown parent", []KindDecl{{Name: "Validation", Parent: "Nope"}}},
		{"builtin redeclared", []KindDecl{{Name: "Index", Parent: "Runtime"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Manifest{
				Kinds:   tt.kinds,
				Modules: []ModuleDecl{{Module: "listops", Units: []UnitDecl{{Name: "Append", Expect: []MarkerDecl{{None: true}}}}}},
			}
			err := m.Apply(samples.Catalog(), kind.NewHierarchy())
			require.Error(t, err)
			assert.Contains(t, err.Error(), "kinds[0]")
		})
	}
}
