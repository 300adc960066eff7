package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRelease struct {
	version    string
	newer      bool
	installErr error
	installed  bool
}

func (r *fakeRelease) Version() string { return r.version }

func (r *fakeRelease) LessOrEqual(string) bool { return !r.newer }

func (r *fakeRelease) Install(context.Context) error {
	r.installed = true
	return r.installErr
}

// runSelfUpdateWith executes self-update at currentVersion against a fake
// release feed and returns the command output.
func runSelfUpdateWith(t *testing.T, currentVersion string, rel *fakeRelease, detectErr error) (string, error) {
	t.Helper()

	origVersion, origDetect := rootCmd.Version, detectLatestRelease
	t.Cleanup(func() {
		rootCmd.Version = origVersion
		detectLatestRelease = origDetect
	})
	rootCmd.Version = currentVersion

	var gotSlug string
	detectLatestRelease = func(ctx context.Context, slug string) (release, bool, error) {
		gotSlug = slug
		if detectErr != nil || rel == nil {
			return nil, false, detectErr
		}
		return rel, true, nil
	}

	c := newSelfUpdateCmd()
	var buf bytes.Buffer
	c.SetOut(&buf)
	c.SetErr(&buf)
	c.SetArgs([]string{})
	err := c.ExecuteContext(context.Background())
	if currentVersion != "" && currentVersion != "dev" {
		assert.Equal(t, githubRepoSlug, gotSlug)
	}
	return buf.String(), err
}

func TestSelfUpdate_DevelopmentVersions(t *testing.T) {
	for _, v := range []string{"", "dev"} {
		_, err := runSelfUpdateWith(t, v, &fakeRelease{version: "1.2.0", newer: true}, nil)
		require.Error(t, err, "version %q", v)
		assert.Contains(t, err.Error(), "cannot self-update a development version")
	}
}

func TestSelfUpdate_AlreadyLatest(t *testing.T) {
	rel := &fakeRelease{version: "1.2.0"}
	out, err := runSelfUpdateWith(t, "1.2.0", rel, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Current version (1.2.0) is the latest")
	assert.False(t, rel.installed)
}

func TestSelfUpdate_InstallsNewerRelease(t *testing.T) {
	rel := &fakeRelease{version: "1.3.0", newer: true}
	out, err := runSelfUpdateWith(t, "1.2.0", rel, nil)
	require.NoError(t, err)
	assert.True(t, rel.installed)
	assert.Contains(t, out, "Updating sbwt 1.2.0 -> 1.3.0")
	assert.Contains(t, out, "Successfully updated to version 1.3.0")
}

func TestSelfUpdate_Failures(t *testing.T) {
	_, err := runSelfUpdateWith(t, "1.2.0", nil, errors.New("rate limited"))
	assert.ErrorContains(t, err, "error occurred while detecting version: rate limited")

	_, err = runSelfUpdateWith(t, "1.2.0", nil, nil)
	assert.ErrorContains(t, err, "could not be found in sbwt-dev/sbwt")

	rel := &fakeRelease{version: "1.3.0", newer: true, installErr: errors.New("permission denied")}
	_, err = runSelfUpdateWith(t, "1.2.0", rel, nil)
	assert.ErrorContains(t, err, "error occurred while updating binary: permission denied")
}

func TestSelfUpdate_Help(t *testing.T) {
	c := newSelfUpdateCmd()
	var buf bytes.Buffer
	c.SetOut(&buf)
	c.SetArgs([]string{"--help"})

	require.NoError(t, c.Execute())
	assert.Contains(t, buf.String(), "Checks for the latest release of sbwt")
	assert.Contains(t, buf.String(), "self-update")
}
