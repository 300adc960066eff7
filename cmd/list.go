package cmd

import (
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List every registered worktree",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printer, err := newPrinter(cmd, output)
			if err != nil {
				return err
			}
			a, err := newApplication(cmd, ".", true)
			if err != nil {
				return err
			}
			records, err := a.Manager().List()
			if err != nil {
				return err
			}
			return printer.Records(records, a.Config().SbwtConfig.BlockSize)
		},
	}

	addOutputFlag(cmd, &output)
	return cmd
}
