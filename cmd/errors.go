package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"sbwt/internal/config"
	"sbwt/internal/ports"
	"sbwt/internal/registry"
	"sbwt/internal/supabase"
)

// maxOutputLines bounds the service output echoed with an error.
const maxOutputLines = 20

// isInteractive reports whether sbwt talks to a terminal on both ends.
func isInteractive() bool {
	return isTerminal(os.Stdin.Fd()) && isTerminal(os.Stdout.Fd())
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// renderError prints err with a hint where one applies and returns the exit
// status. User setup errors only fail the process when nobody is watching.
func renderError(w io.Writer, err error, interactive bool) int {
	if ue, ok := config.AsUserError(err); ok {
		fmt.Fprintf(w, "Error: %s\n", ue.Error())
		if ue.Hint != "" {
			fmt.Fprintf(w, "Hint: %s\n", ue.Hint)
		}
		if interactive {
			return 0
		}
		return 1
	}

	fmt.Fprintf(w, "Error: %s\n", err)

	var perr *supabase.ProcessError
	switch {
	case errors.As(err, &perr):
		if out := tail(perr.Output, maxOutputLines); out != "" {
			fmt.Fprintf(w, "\n%s\n\n", out)
		}
		if perr.Op == "start" {
			fmt.Fprintln(w, "The generated config and rewritten env files were left in place.")
			fmt.Fprintln(w, "Hint: fix the problem and run `sbwt start` again, or run `sbwt stop --keep-running` to restore your env files.")
		} else {
			fmt.Fprintln(w, "Hint: check `docker ps` for leftover containers and stop them manually.")
		}
	case errors.Is(err, registry.ErrCorrupt):
		fmt.Fprintln(w, "Hint: inspect the registry file, or run `sbwt reset --force` to start over with an empty registry.")
	case errors.Is(err, ports.ErrAllocationExhausted):
		fmt.Fprintln(w, "Hint: run `sbwt cleanup` to drop environments whose worktree is gone, or lower blockSize.")
	}
	return 1
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
