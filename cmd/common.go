package cmd

import (
	"github.com/spf13/cobra"

	"sbwt/internal/app"
	"sbwt/internal/cli"
)

// pathArg returns the environment path argument, defaulting to the
// current directory.
func pathArg(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return "."
}

func debugEnabled(cmd *cobra.Command) bool {
	debug, err := cmd.Flags().GetBool("debug")
	return err == nil && debug
}

// newApplication loads configuration for path and wires the services.
func newApplication(cmd *cobra.Command, path string, noTUI bool) (*app.Application, error) {
	return app.NewApplication(app.NewConfig(path, noTUI, debugEnabled(cmd)))
}

func addOutputFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "output", "o", string(cli.OutputFormatTable), "Output format: table, json or yaml")
}

func newPrinter(cmd *cobra.Command, format string) (*cli.Printer, error) {
	f, err := cli.ParseOutputFormat(format)
	if err != nil {
		return nil, err
	}
	return cli.NewPrinter(cmd.OutOrStdout(), f), nil
}
