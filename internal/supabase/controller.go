// Package supabase drives the supabase CLI for one environment directory.
package supabase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"sbwt/pkg/logging"
)

const (
	DefaultBinary       = "supabase"
	DefaultStartTimeout = 5 * time.Minute
	DefaultStopTimeout  = time.Minute
)

// ProcessError reports a failed or timed out supabase invocation.
type ProcessError struct {
	Op       string
	ExitCode int
	Output   string
	TimedOut bool
	Err      error
}

func (e *ProcessError) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("supabase %s timed out", e.Op)
	}
	if e.ExitCode > 0 {
		return fmt.Sprintf("supabase %s exited with status %d", e.Op, e.ExitCode)
	}
	return fmt.Sprintf("supabase %s failed: %v", e.Op, e.Err)
}

func (e *ProcessError) Unwrap() error { return e.Err }

// runFunc executes name with args in dir and returns combined output.
type runFunc func(ctx context.Context, dir, name string, args ...string) (string, int, error)

// Controller starts and stops the supabase stack of a worktree.
type Controller struct {
	Binary       string
	StartTimeout time.Duration
	StopTimeout  time.Duration

	run runFunc
}

// NewController returns a Controller, filling zero values with defaults.
func NewController(binary string, startTimeout, stopTimeout time.Duration) *Controller {
	if binary == "" {
		binary = DefaultBinary
	}
	if startTimeout <= 0 {
		startTimeout = DefaultStartTimeout
	}
	if stopTimeout <= 0 {
		stopTimeout = DefaultStopTimeout
	}
	return &Controller{
		Binary:       binary,
		StartTimeout: startTimeout,
		StopTimeout:  stopTimeout,
		run:          runCombined,
	}
}

// Start runs "supabase start" in path.
func (c *Controller) Start(ctx context.Context, path string) (string, error) {
	return c.invoke(ctx, "start", path, c.StartTimeout)
}

// Stop runs "supabase stop" in path.
func (c *Controller) Stop(ctx context.Context, path string) (string, error) {
	return c.invoke(ctx, "stop", path, c.StopTimeout)
}

func (c *Controller) invoke(ctx context.Context, op, path string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logging.Info("Supabase", "Running %s %s in %s (timeout %s)", c.Binary, op, path, timeout)
	start := time.Now()
	out, code, err := c.run(ctx, path, c.Binary, op)
	if err != nil {
		perr := &ProcessError{Op: op, ExitCode: code, Output: out, Err: err}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			perr.TimedOut = true
		}
		logging.Error("Supabase", perr, "%s %s failed after %s", c.Binary, op, time.Since(start).Round(time.Millisecond))
		return out, perr
	}
	logging.Debug("Supabase", "%s %s finished in %s", c.Binary, op, time.Since(start).Round(time.Millisecond))
	return out, nil
}

func runCombined(ctx context.Context, dir, name string, args ...string) (string, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	err := cmd.Run()
	out := strings.TrimRight(buf.String(), "\n")
	if err == nil {
		return out, 0, nil
	}
	code := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}
	return out, code, err
}
