package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"sbwt/internal/cli"
)

func newCleanupCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove registry entries whose worktree directory no longer exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printer, err := newPrinter(cmd, output)
			if err != nil {
				return err
			}
			a, err := newApplication(cmd, ".", true)
			if err != nil {
				return err
			}
			removed, err := a.Manager().Cleanup()
			if err != nil {
				return err
			}
			if printer.Format == cli.OutputFormatTable {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d stale environment(s)\n", len(removed))
				if len(removed) == 0 {
					return nil
				}
			}
			return printer.Records(removed, a.Config().SbwtConfig.BlockSize)
		},
	}

	addOutputFlag(cmd, &output)
	return cmd
}
