// Package gitinfo answers the few questions sbwt asks git: which branch a
// worktree has checked out, what the repository is called, and whether a
// directory is a linked worktree.
package gitinfo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"sbwt/pkg/logging"
)

const defaultTimeout = 10 * time.Second

// ErrNotRepository is returned when path is not inside a git work tree.
var ErrNotRepository = errors.New("not a git repository")

// Runner executes git with args in dir and returns trimmed stdout.
type Runner func(ctx context.Context, dir string, args ...string) (string, error)

// Client runs git through a Runner.
type Client struct {
	run Runner
}

// New returns a Client that shells out to the git binary.
func New() *Client {
	return &Client{run: execGit}
}

// NewWithRunner returns a Client using run, for tests.
func NewWithRunner(run Runner) *Client {
	return &Client{run: run}
}

func execGit(ctx context.Context, dir string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", dir}, args...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	logging.Debug("Git", "+ git -C %s %s", dir, strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if strings.Contains(msg, "not a git repository") {
			return "", fmt.Errorf("%s: %w", dir, ErrNotRepository)
		}
		return "", fmt.Errorf("git %s failed: %w: %s", strings.Join(args, " "), err, msg)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// CurrentBranch returns the checked-out branch, or the short commit hash
// when HEAD is detached.
func (c *Client) CurrentBranch(ctx context.Context, path string) (string, error) {
	branch, err := c.run(ctx, path, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	if branch == "HEAD" {
		return c.run(ctx, path, "rev-parse", "--short", "HEAD")
	}
	return branch, nil
}

// RepositoryDisplayName returns the directory name of the main checkout,
// which is the same for every linked worktree of a repository.
func (c *Client) RepositoryDisplayName(ctx context.Context, path string) (string, error) {
	common, err := c.absGitPath(ctx, path, "--git-common-dir")
	if err != nil {
		return "", err
	}
	// common dir is <main checkout>/.git for non-bare repositories
	if filepath.Base(common) == ".git" {
		return filepath.Base(filepath.Dir(common)), nil
	}
	return strings.TrimSuffix(filepath.Base(common), ".git"), nil
}

// LinkedWorktree reports whether path is a linked worktree (created with
// "git worktree add") and returns its name.
func (c *Client) LinkedWorktree(ctx context.Context, path string) (bool, string, error) {
	gitDir, err := c.absGitPath(ctx, path, "--git-dir")
	if err != nil {
		return false, "", err
	}
	common, err := c.absGitPath(ctx, path, "--git-common-dir")
	if err != nil {
		return false, "", err
	}
	if filepath.Clean(gitDir) == filepath.Clean(common) {
		return false, "", nil
	}
	return true, filepath.Base(gitDir), nil
}

func (c *Client) absGitPath(ctx context.Context, path, flag string) (string, error) {
	out, err := c.run(ctx, path, "rev-parse", flag)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(out) {
		out = filepath.Join(path, out)
	}
	return filepath.Clean(out), nil
}
