package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"sbwt/internal/color"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sbwt",
		Short: "Run one local Supabase stack per git worktree",
		Long: `sbwt gives every git worktree its own block of Supabase ports.

It generates supabase/config.toml from a committed template with the ports
moved to a free block, points the worktree's .env files at those ports, and
records the allocation in a registry shared by all worktrees on this machine.`,
		// SilenceUsage is set to true to prevent printing usage message on errors
		// handled by us (e.g. missing template, failed supabase start)
		SilenceUsage: true,
		// Errors are rendered by Execute with hints.
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			color.ApplyNoColor()
		},
	}

	root.PersistentFlags().Bool("debug", false, "Enable debug logging")

	root.AddCommand(newStartCmd())
	root.AddCommand(newStopCmd())
	root.AddCommand(newUpCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newCleanupCmd())
	root.AddCommand(newResetCmd())
	root.AddCommand(newVersionCmd())
	root.AddCommand(newSelfUpdateCmd())
	return root
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v // Set cobra's version field as well
}

// Execute runs the root command and exits with the status the error
// policy chooses.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Set up version template
	rootCmd.SetVersionTemplate(`{{printf "sbwt version %s\n" .Version}}`)

	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		os.Exit(renderError(rootCmd.ErrOrStderr(), err, isInteractive()))
	}
}
