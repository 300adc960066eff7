package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"sbwt/internal/config"
)

func newResetCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Empty the registry",
		Long: `Replaces the registry with an empty one, including a registry that can
no longer be parsed. Env files and running stacks are not touched; run
"sbwt stop" in each worktree first if you still want them restored.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return config.NewUserError(
					"refusing to clear the registry without --force",
					"Run `sbwt list` to see what would be forgotten, then `sbwt reset --force`.",
					nil,
				)
			}
			a, err := newApplication(cmd, ".", true)
			if err != nil {
				return err
			}
			if err := a.Manager().Reset(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registry %s cleared\n", a.Config().SbwtConfig.RegistryPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Really clear the registry")
	return cmd
}
