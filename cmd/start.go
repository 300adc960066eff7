package cmd

import (
	"github.com/spf13/cobra"

	"sbwt/internal/app"
)

func newStartCmd() *cobra.Command {
	var noStart bool
	var output string

	cmd := &cobra.Command{
		Use:   "start [path]",
		Short: "Allocate ports for a worktree and start its Supabase stack",
		Long: `Allocates a free port block for the worktree (default: the current
directory), writes supabase/config.toml from the template, points the
worktree's .env files at the new ports, registers the allocation and runs
"supabase start".

Running start again for a registered worktree re-allocates from scratch.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			printer, err := newPrinter(cmd, output)
			if err != nil {
				return err
			}
			a, err := newApplication(cmd, pathArg(args), true)
			if err != nil {
				return err
			}
			res, err := a.Manager().Start(cmd.Context(), pathArg(args), app.StartOptions{SkipService: noStart})
			if res != nil && res.Record.Identifier != "" {
				if perr := printer.StartResult(res); perr != nil && err == nil {
					err = perr
				}
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&noStart, "no-start", false, "Write files and register without running supabase start")
	addOutputFlag(cmd, &output)
	return cmd
}
