package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/marktest/internal/discover"
)

// ListEntry describes one discovered unit.
type ListEntry struct {
	Module string `json:"module"`
	Unit   string `json:"unit"`
	Expect string `json:"expect,omitempty"`
	Error  string `json:"error,omitempty"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list [module]",
		Short: "List marked units and their expectations",
		Long: `List the marked units of a module, or of every module when none is
given, together with each unit's normalised expectation. Units are not run.

Examples:
  marktest list
  marktest list sample3
  marktest list listops --manifest manifests/listops.yaml`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listUnits(rootOpts, args, cmd)
		},
	}
}

func listUnits(opts *RootOptions, args []string, cmd *cobra.Command) error {
	logger := opts.newLogger(cmd.ErrOrStderr())
	f := opts.formatter(cmd)

	reg, _, err := opts.loadModules(logger)
	if err != nil {
		return reportError(f, CodeManifest, err)
	}

	modules := args
	if len(modules) == 0 {
		modules = reg.Modules()
	}

	entries := []ListEntry{}
	for _, module := range modules {
		units, err := discover.Discover(reg, module)
		if err != nil {
			code := CodeDiscovery
			if discover.IsModuleNotFound(err) {
				code = CodeModuleNotFound
			}
			return reportError(f, code, WrapExitError(ExitCommandError, fmt.Sprintf("list %s", module), err))
		}
		for _, u := range units {
			entry := ListEntry{Module: module, Unit: u.Name}
			if u.DeclErr != nil {
				entry.Error = u.DeclErr.Error()
			} else {
				entry.Expect = u.Expect.String()
			}
			entries = append(entries, entry)
		}
	}

	if f.JSON() {
		return f.Success(entries)
	}
	return writeUnitTable(cmd.OutOrStdout(), entries)
}

// writeUnitTable writes one row per unit with its expectation.
func writeUnitTable(w io.Writer, entries []ListEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No marked units.")
		return err
	}

	rows := make([][]string, len(entries))
	for i, e := range entries {
		expectation := e.Expect
		if e.Error != "" {
			expectation = "invalid markers: " + e.Error
		}
		rows[i] = []string{e.Unit, expectation}
	}
	return writeTable(w, []string{"UNIT", "EXPECTATION"}, rows)
}
