package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/marktest/internal/config"
	"github.com/roach88/marktest/internal/discover"
	"github.com/roach88/marktest/internal/kind"
	"github.com/roach88/marktest/internal/manifest"
	"github.com/roach88/marktest/internal/samples"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Config   string
	Manifest string
	Color    string // "auto" | "always" | "never"

	// Catalog supplies the registry commands resolve modules in.
	// If nil, defaults to samples.Catalog.
	Catalog func() *discover.Registry

	// Settings read from the config file by the root command.
	settings *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{config.FormatText, config.FormatJSON}

// ValidColors defines the allowed color modes.
var ValidColors = []string{config.ColorAuto, config.ColorAlways, config.ColorNever}

// NewRootCommand creates the root command for the marktest CLI.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWithOptions(&RootOptions{})
}

// NewRootCommandWithOptions creates the root command around opts, letting
// tests supply their own catalog.
func NewRootCommandWithOptions(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "marktest",
		Short: "marktest - declarative expected-failure test harness",
		Long: `Run the marked test units of a module and report pass, fail or misuse.

Each unit declares that it completes normally, or that it raises an error
of a given kind (or any of several kinds). Kinds form a hierarchy, so a
unit expecting Index passes when it raises ArrayIndex.

Markers are attached in code or by a YAML/CUE manifest (--manifest).
Settings may also come from a .marktest.yaml file; flags win.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", config.FormatText, "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "config file (default: nearest "+config.FileName+")")
	cmd.PersistentFlags().StringVar(&opts.Manifest, "manifest", "", "marker manifest (.yaml, .yml or .cue)")
	cmd.PersistentFlags().StringVar(&opts.Color, "color", config.ColorAuto, "color mode (auto|always|never)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewKindsCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// resolve layers the config file under the flags and validates the result.
func (opts *RootOptions) resolve(cmd *cobra.Command) error {
	var (
		cfg *config.Config
		err error
	)
	if opts.Config != "" {
		cfg, err = config.Load(opts.Config)
	} else {
		cfg, err = config.Discover(".")
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	opts.settings = cfg

	flags := cmd.Flags()
	if !flags.Changed("format") {
		opts.Format = cfg.Format
	}
	if !flags.Changed("verbose") {
		opts.Verbose = cfg.Verbose
	}
	if !flags.Changed("manifest") && cfg.Manifest != "" {
		opts.Manifest = cfg.Manifest
	}
	if !flags.Changed("color") {
		opts.Color = cfg.Color
	}

	if !slices.Contains(ValidFormats, opts.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
	}
	if !slices.Contains(ValidColors, opts.Color) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid color %q: must be one of %v", opts.Color, ValidColors))
	}
	return nil
}

// defaultDB returns the database path from the config file, if any.
func (opts *RootOptions) defaultDB() string {
	if opts.settings == nil {
		return ""
	}
	return opts.settings.DB
}

// newLogger builds the command logger: a text handler on w at Debug when
// verbose, Warn otherwise.
func (opts *RootOptions) newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	if w == nil {
		w = os.Stderr
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadModules builds the registry and kind hierarchy for a command,
// applying the manifest when one is configured.
func (opts *RootOptions) loadModules(logger *slog.Logger) (*discover.Registry, *kind.Hierarchy, error) {
	catalog := opts.Catalog
	if catalog == nil {
		catalog = samples.Catalog
	}
	reg := catalog()
	kinds := kind.NewHierarchy()

	if opts.Manifest == "" {
		return reg, kinds, nil
	}

	logger.Debug("loading manifest", "path", opts.Manifest)
	m, err := manifest.Load(opts.Manifest)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to load manifest", err)
	}
	if err := m.Apply(reg, kinds); err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to apply manifest", err)
	}
	logger.Debug("manifest applied", "kinds", len(m.Kinds), "modules", len(m.Modules))
	return reg, kinds, nil
}

func (opts *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
}

// reportError writes err as a JSON error response under code when JSON
// output is on, and returns err for the exit status.
func reportError(f *OutputFormatter, code string, err error) error {
	if writeErr := f.Error(code, err.Error(), nil); writeErr != nil {
		return writeErr
	}
	return err
}
