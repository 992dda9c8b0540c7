package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/marktest/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history <module>",
		Short: "Show recorded runs of a module",
		Long: `Show the runs of a module recorded with "marktest run --db", newest
first. Runs with equal digests produced identical reports.

Examples:
  marktest history sample2 --db ./marktest.db
  marktest history sample2 --db ./marktest.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showHistory(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required unless set in config)")

	return cmd
}

func showHistory(opts *HistoryOptions, module string, cmd *cobra.Command) error {
	logger := opts.newLogger(cmd.ErrOrStderr())
	f := opts.formatter(cmd)

	db := opts.Database
	if db == "" {
		db = opts.defaultDB()
	}
	if db == "" {
		return reportError(f, CodeStore, NewExitError(ExitCommandError, "--db is required"))
	}

	st, err := store.Open(db)
	if err != nil {
		return reportError(f, CodeStore, WrapExitError(ExitCommandError, "failed to open database", err))
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	runs, err := st.ListRuns(ctx, module)
	if err != nil {
		return reportError(f, CodeStore, WrapExitError(ExitCommandError, "failed to read history", err))
	}

	if f.JSON() {
		return f.Success(runs)
	}
	return writeHistory(cmd.OutOrStdout(), module, runs)
}

func writeHistory(w io.Writer, module string, runs []store.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintf(w, "No recorded runs for %s.\n", module)
		return err
	}

	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = []string{
			strconv.FormatInt(r.Seq, 10),
			r.ID,
			fmt.Sprintf("%d/%d", r.Passed, r.Total),
			shortDigest(r.Digest),
		}
	}
	return writeTable(w, []string{"SEQ", "ID", "PASSED", "DIGEST"}, rows)
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
