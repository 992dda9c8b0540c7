package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/marktest/internal/kind"
)

// KindEntry is one kind with its parent. The root has no parent.
type KindEntry struct {
	Name   string `json:"name"`
	Parent string `json:"parent,omitempty"`
}

// NewKindsCommand creates the kinds command.
func NewKindsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "Print the error kind hierarchy",
		Long: `Print the error kind hierarchy used for matching, including kinds
declared by the manifest. A unit expecting a kind also accepts any of its
descendants.

Examples:
  marktest kinds
  marktest kinds --manifest manifests/listops.yaml --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printKinds(rootOpts, cmd)
		},
	}
}

func printKinds(opts *RootOptions, cmd *cobra.Command) error {
	logger := opts.newLogger(cmd.ErrOrStderr())
	f := opts.formatter(cmd)

	_, kinds, err := opts.loadModules(logger)
	if err != nil {
		return reportError(f, CodeManifest, err)
	}

	if f.JSON() {
		entries := []KindEntry{}
		for _, k := range kinds.Kinds() {
			entries = append(entries, KindEntry{Name: string(k), Parent: string(kinds.Parent(k))})
		}
		return f.Success(entries)
	}
	return writeKindTree(cmd.OutOrStdout(), kinds, kind.Error, 0)
}

// writeKindTree writes k and its descendants, indenting two spaces per level.
func writeKindTree(w io.Writer, h *kind.Hierarchy, k kind.Kind, depth int) error {
	if _, err := fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), k); err != nil {
		return err
	}
	for _, child := range h.Children(k) {
		if err := writeKindTree(w, h, child, depth+1); err != nil {
			return err
		}
	}
	return nil
}
