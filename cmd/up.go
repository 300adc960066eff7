package cmd

import (
	"github.com/spf13/cobra"
)

func newUpCmd() *cobra.Command {
	var noTUI bool
	var noStart bool

	cmd := &cobra.Command{
		Use:   "up [path]",
		Short: "Start a worktree's stack and tear it down when the session ends",
		Long: `Runs start, then keeps the session open until you quit (q in the
terminal UI) or the process receives SIGINT/SIGTERM, then runs stop.

A second signal during teardown exits immediately with status 130.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("no-tui") {
				noTUI = !isInteractive()
			}
			a, err := newApplication(cmd, pathArg(args), noTUI)
			if err != nil {
				return err
			}
			a.Config().SkipService = noStart
			return a.Run(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&noTUI, "no-tui", false, "Log to the terminal instead of showing the session UI")
	cmd.Flags().BoolVar(&noStart, "no-start", false, "Do not run supabase start/stop")
	return cmd
}
