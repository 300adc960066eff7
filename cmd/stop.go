package cmd

import (
	"github.com/spf13/cobra"

	"sbwt/internal/app"
)

func newStopCmd() *cobra.Command {
	var keepRunning bool
	var output string

	cmd := &cobra.Command{
		Use:   "stop [path]",
		Short: "Stop a worktree's stack, restore its env files and unregister it",
		Long: `Runs "supabase stop" for the worktree, copies every env file backup
back over the rewritten file and removes the worktree from the registry.

Every step runs even if an earlier one fails.`,
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
			res, err := a.Manager().Stop(cmd.Context(), pathArg(args), app.StopOptions{SkipService: keepRunning})
			if res != nil {
				if perr := printer.StopResult(res); perr != nil && err == nil {
					err = perr
				}
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&keepRunning, "keep-running", false, "Do not run supabase stop")
	addOutputFlag(cmd, &output)
	return cmd
}
