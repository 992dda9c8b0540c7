package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/marktest/internal/harness"
	"github.com/roach88/marktest/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string

	// Keep limits the module's recorded runs to the newest Keep after
	// recording. Zero keeps every run.
	Keep int

	// IDGenerator allows overriding the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator store.IDGenerator
}

// RunResult is the JSON payload of the run command.
type RunResult struct {
	*harness.Report

	// Set when the run was recorded with --db.
	RunID  string `json:"run_id,omitempty"`
	Digest string `json:"digest,omitempty"`

	// Changed is true when the report differs from the module's previous
	// recorded run.
	Changed bool `json:"changed,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <module>",
		Short: "Run the marked units of a module",
		Long: `Run every marked unit of a module in declaration order and report
one verdict per unit followed by the pass count.

With --db the report is recorded in a SQLite history database and compared
with the module's previous run; a differing report is logged as a warning.
--keep N then deletes all but the module's newest N runs.

Exit codes:
  0 - All units passed
  1 - One or more units failed or were misused
  2 - Command error (unknown module, bad manifest, database error, etc.)

Examples:
  marktest run sample2
  marktest run listops --manifest manifests/listops.yaml
  marktest run sample --db ./marktest.db --format json
  marktest run sample --db ./marktest.db --keep 10`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModule(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")
	cmd.Flags().IntVar(&opts.Keep, "keep", 0, "keep only the newest N recorded runs of the module (0 keeps all)")

	return cmd
}

func runModule(opts *RunOptions, module string, cmd *cobra.Command) error {
	logger := opts.newLogger(cmd.ErrOrStderr())
	f := opts.formatter(cmd)

	db := opts.Database
	if db == "" {
		db = opts.defaultDB()
	}
	if opts.Keep < 0 {
		return reportError(f, CodeStore, NewExitError(ExitCommandError, fmt.Sprintf("invalid --keep %d: must not be negative", opts.Keep)))
	}
	if opts.Keep > 0 && db == "" {
		return reportError(f, CodeStore, NewExitError(ExitCommandError, "--keep requires --db"))
	}

	reg, kinds, err := opts.loadModules(logger)
	if err != nil {
		return reportError(f, CodeManifest, err)
	}

	h := harness.New(reg, harness.WithKinds(kinds), harness.WithLogger(logger))
	report, err := h.Run(module)
	if err != nil {
		return reportError(f, runErrorCode(err), WrapExitError(ExitCommandError, fmt.Sprintf("run %s", module), err))
	}

	result := RunResult{Report: report}

	if db != "" {
		if err := recordRun(cmd.Context(), opts, db, &result, logger); err != nil {
			return reportError(f, CodeStore, err)
		}
	}

	if f.JSON() {
		if err := f.Success(result); err != nil {
			return err
		}
	} else if err := writeReport(cmd.OutOrStdout(), report, newStyles(cmd.OutOrStdout(), opts.Color)); err != nil {
		return err
	}

	if !report.OK() {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d units did not pass", report.Failed(), report.Total))
	}
	return nil
}

func runErrorCode(err error) string {
	var re *harness.RunError
	if errors.As(err, &re) {
		return string(re.Code)
	}
	return CodeHarnessDefect
}

// recordRun stores the report and compares its digest with the module's
// previous run.
func recordRun(ctx context.Context, opts *RunOptions, db string, result *RunResult, logger *slog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := store.Open(db)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	module := result.Report.Module
	previous, err := st.LastRun(ctx, module)
	hasPrevious := err == nil
	if err != nil && !errors.Is(err, store.ErrRunNotFound) {
		return WrapExitError(ExitCommandError, "failed to read history", err)
	}

	gen := opts.IDGenerator
	if gen == nil {
		gen = store.UUIDv7Generator{}
	}
	id := gen.Generate()

	digest, err := st.RecordRun(ctx, id, result.Report)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to record run", err)
	}
	result.RunID = id
	result.Digest = digest
	logger.Info("run recorded", "id", id, "module", module, "digest", digest)

	if hasPrevious && previous.Digest != digest {
		result.Changed = true
		logger.Warn("report differs from previous run",
			"module", module,
			"previous", previous.ID,
			"current", id,
		)
	}

	if opts.Keep > 0 {
		removed, err := st.PruneRuns(ctx, module, opts.Keep)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to prune history", err)
		}
		logger.Debug("pruned history", "module", module, "keep", opts.Keep, "removed", removed)
	}
	return nil
}

// writeReport writes the per-unit lines and the summary, coloring each
// verdict when styles are enabled.
func writeReport(w io.Writer, report *harness.Report, st styles) error {
	if !st.enabled {
		return harness.WriteText(w, report)
	}
	for _, res := range report.Results {
		if _, err := fmt.Fprintf(w, "%s: %s\n", res.Name, st.verdict(res.Verdict.Status, res.Verdict.Detail)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, st.faint(report.Summary()))
	return err
}
