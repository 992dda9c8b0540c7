package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load("testdata/marktest.yaml")
	require.NoError(t, err)

	assert.Equal(t, FormatJSON, cfg.Format)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, ColorNever, cfg.Color)
	assert.Equal(t, "testdata/marktest.yaml", cfg.Path)

	// Relative paths resolve against the config file's directory
	assert.Equal(t, filepath.Join("testdata", "history.db"), cfg.DB)
	assert.Equal(t, filepath.Join("manifests", "listops.yaml"), cfg.Manifest)
}

func TestLoad_DefaultsForMissingFields(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "verbose: true\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, FormatText, cfg.Format)
	assert.Equal(t, ColorAuto, cfg.Color)
	assert.Empty(t, cfg.DB)
	assert.Empty(t, cfg.Manifest)
}

func TestLoad_EmptyFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, FormatText, cfg.Format)
}

func TestLoad_AbsolutePathsKept(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "elsewhere", "h.db")
	path := writeConfig(t, dir, "db: "+db+"\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, db, cfg.DB)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown field", "colour: never\n", "field colour not found"},
		{"bad format", "format: xml\n", `format must be "text" or "json", got "xml"`},
		{"bad color", "color: sometimes\n", `got "sometimes"`},
		{"malformed", "format: [\n", "failed to parse config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, t.TempDir(), tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), FileName))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestFind_WalksParents(t *testing.T) {
	root := t.TempDir()
	want := writeConfig(t, root, "verbose: true\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	assert.Equal(t, want, Find(nested))
}

func TestDiscover_NoFile(t *testing.T) {
	cfg, err := Discover(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
