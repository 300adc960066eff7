package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

// githubRepoSlug is the repository release binaries are fetched from.
var githubRepoSlug = "sbwt-dev/sbwt"

// release is a published sbwt build that can replace the running binary.
type release interface {
	Version() string
	LessOrEqual(other string) bool
	Install(ctx context.Context) error
}

type githubRelease struct {
	*selfupdate.Release
}

func (r githubRelease) Install(ctx context.Context) error {
	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable path: %w", err)
	}
	return selfupdate.UpdateTo(ctx, r.AssetURL, r.AssetName, exe)
}

// detectLatestRelease is replaced in tests.
var detectLatestRelease = func(ctx context.Context, slug string) (release, bool, error) {
	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(slug))
	if err != nil || !found {
		return nil, found, err
	}
	return githubRelease{latest}, true, nil
}

func newSelfUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "self-update",
		Short: "Update sbwt to the latest release",
		Long: `Checks for the latest release of sbwt on GitHub and replaces the running
binary with it if it is newer than the current version.`,
		Args: cobra.NoArgs,
		RunE: runSelfUpdate,
	}
}

func runSelfUpdate(cmd *cobra.Command, args []string) error {
	currentVersion := rootCmd.Version
	if currentVersion == "" || currentVersion == "dev" {
		return fmt.Errorf("cannot self-update a development version")
	}

	ctx := context.Background()
	var out io.Writer = os.Stdout
	if cmd != nil {
		if c := cmd.Context(); c != nil {
			ctx = c
		}
		out = cmd.OutOrStdout()
	}

	latest, found, err := detectLatestRelease(ctx, githubRepoSlug)
	if err != nil {
		return fmt.Errorf("error occurred while detecting version: %w", err)
	}
	if !found {
		return fmt.Errorf("latest version for %s/%s could not be found in %s", runtime.GOOS, runtime.GOARCH, githubRepoSlug)
	}

	if latest.LessOrEqual(currentVersion) {
		fmt.Fprintf(out, "Current version (%s) is the latest\n", currentVersion)
		return nil
	}

	fmt.Fprintf(out, "Updating sbwt %s -> %s\n", currentVersion, latest.Version())
	if err := latest.Install(ctx); err != nil {
		return fmt.Errorf("error occurred while updating binary: %w", err)
	}
	fmt.Fprintf(out, "Successfully updated to version %s\n", latest.Version())
	return nil
}
