// Package config loads project settings from a .marktest.yaml file.
//
// Settings are defaults for the CLI flags of the same name; a flag set on
// the command line always wins.
//
//	format: json              # text | json
//	verbose: true
//	db: .marktest/history.db  # record runs here
//	manifest: manifests/listops.yaml
//	color: auto               # auto | always | never
//
// Relative db and manifest paths are resolved against the directory that
// holds the config file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up by Find.
const FileName = ".marktest.yaml"

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config holds project settings.
type Config struct {
	Format   string `yaml:"format"`
	Verbose  bool   `yaml:"verbose"`
	DB       string `yaml:"db"`
	Manifest string `yaml:"manifest"`
	Color    string `yaml:"color"`

	// Path is the file the settings were read from. Empty for defaults.
	Path string `yaml:"-"`
}

// Default returns the settings used when no config file exists.
func Default() *Config {
	return &Config{
		Format: FormatText,
		Color:  ColorAuto,
	}
}

// Find looks for FileName in dir and its parents and returns the first
// match, or "" if there is none.
func Find(dir string) string {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Load reads settings from path over the defaults.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields, or holds an invalid value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	cfg.Path = path
	base := filepath.Dir(path)
	cfg.DB = resolve(base, cfg.DB)
	cfg.Manifest = resolve(base, cfg.Manifest)
	return cfg, nil
}

// Discover loads the config found from dir upward, or the defaults when
// there is none.
func Discover(dir string) (*Config, error) {
	path := Find(dir)
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

func (c *Config) validate() error {
	switch c.Format {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("format must be %q or %q, got %q", FormatText, FormatJSON, c.Format)
	}

	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("color must be %q, %q or %q, got %q", ColorAuto, ColorAlways, ColorNever, c.Color)
	}
	return nil
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
