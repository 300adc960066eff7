package cmd

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

// clipboardWriteAll is replaced in tests.
var clipboardWriteAll = clipboard.WriteAll

func newStatusCmd() *cobra.Command {
	var output string
	var copyURL bool

	cmd := &cobra.Command{
		Use:   "status [path]",
		Short: "Show a worktree's allocation, env port references and generated config",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			printer, err := newPrinter(cmd, output)
			if err != nil {
				return err
			}
			a, err := newApplication(cmd, pathArg(args), true)
			if err != nil {
				return err
			}
			st, err := a.Manager().Status(cmd.Context(), pathArg(args))
			if err != nil {
				return err
			}
			if err := printer.Status(st); err != nil {
				return err
			}
			if copyURL {
				if st.APIURL == "" {
					return fmt.Errorf("no API URL to copy: %s is not registered", st.EnvironmentPath)
				}
				if err := clipboardWriteAll(st.APIURL); err != nil {
					return fmt.Errorf("failed to copy API URL: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Copied %s to the clipboard\n", st.APIURL)
			}
			return nil
		},
	}

	addOutputFlag(cmd, &output)
	cmd.Flags().BoolVar(&copyURL, "copy", false, "Copy the API URL to the clipboard")
	return cmd
}
