package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"sbwt/internal/color"
	"sbwt/internal/tui/controller"
	"sbwt/internal/tui/model"
	"sbwt/pkg/logging"
)

const sessionSubsystem = "Session"

// ExitCodeInterrupted is the status used when a second signal cuts teardown short.
const ExitCodeInterrupted = 130

// ErrTeardownInterrupted is returned when teardown was abandoned.
var ErrTeardownInterrupted = errors.New("teardown interrupted by a second signal")

// osExit is replaced in tests.
var osExit = os.Exit

// runCLIMode starts the environment, waits for SIGINT/SIGTERM and tears down.
func runCLIMode(ctx context.Context, config *Config, services *Services) error {
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	return runCLISession(ctx, sigChan, config, services)
}

func runCLISession(ctx context.Context, sigChan <-chan os.Signal, config *Config, services *Services) error {
	logging.Info(sessionSubsystem, "Running in no-TUI mode.")

	res, interrupted, err := startInterruptible(ctx, sigChan, config, services)
	if interrupted {
		return runTeardown(sigChan, teardownFunc(config, services), osExit)
	}
	if err != nil {
		return err
	}
	logging.Info(sessionSubsystem, "%s is up on port block %d.", res.Record.Identifier, res.Record.PortBase)
	if res.APIURL != "" {
		logging.Info(sessionSubsystem, "API: %s", res.APIURL)
	}
	logging.Info(sessionSubsystem, "Press Ctrl+C to stop the stack, restore env files and unregister.")

	select {
	case sig := <-sigChan:
		logging.Info(sessionSubsystem, "Received %s, tearing down", sig)
	case <-ctx.Done():
		logging.Info(sessionSubsystem, "Context cancelled, tearing down")
	}

	return runTeardown(sigChan, teardownFunc(config, services), osExit)
}

// runTUIMode starts the environment, shows the session UI until the user
// quits or SIGTERM arrives, then tears down.
func runTUIMode(ctx context.Context, config *Config, services *Services) error {
	startSig := make(chan os.Signal, 2)
	signal.Notify(startSig, syscall.SIGINT, syscall.SIGTERM)
	res, interrupted, err := startInterruptible(ctx, startSig, config, services)
	if interrupted {
		defer signal.Stop(startSig)
		return runTeardown(startSig, teardownFunc(config, services), osExit)
	}
	if err != nil {
		signal.Stop(startSig)
		return err
	}

	// Initialize design system for TUI (dark mode by default)
	color.Initialize(true)

	level := logLevel(config.Debug)
	logChan := logging.InitForTUI(level)

	tuiCtx, stop := signal.NotifyContext(ctx, syscall.SIGTERM)
	signal.Stop(startSig)
	p := controller.NewProgram(sessionInfo(config, res), config.Debug, logChan, tea.WithContext(tuiCtx))
	_, runErr := p.Run()
	stop()
	logging.CloseTUIChannel(level)

	if runErr != nil && !isProgramExit(runErr) {
		logging.Error("TUI-Lifecycle", runErr, "Error running TUI program")
	} else {
		runErr = nil
	}
	logging.Info("TUI-Lifecycle", "TUI exited, tearing down")

	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	return errors.Join(runErr, runTeardown(sigChan, teardownFunc(config, services), osExit))
}

// isProgramExit reports whether bubbletea stopped because of a signal or a
// cancelled context rather than a failure.
func isProgramExit(err error) bool {
	if errors.Is(err, tea.ErrProgramPanic) {
		return false
	}
	return errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted)
}

// startInterruptible runs Manager.Start with a context that the first signal on
// sigChan cancels. interrupted is true when a signal arrived before Start
// returned; the caller must then tear down whatever Start managed to write.
func startInterruptible(ctx context.Context, sigChan <-chan os.Signal, config *Config, services *Services) (*StartResult, bool, error) {
	startCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		res *StartResult
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := services.Manager.Start(startCtx, config.Path, StartOptions{SkipService: config.SkipService})
		done <- outcome{res: res, err: err}
	}()

	select {
	case o := <-done:
		return o.res, false, o.err
	case sig := <-sigChan:
		logging.Info(sessionSubsystem, "Received %s while starting, cancelling start", sig)
		cancel()
		o := <-done
		if o.err != nil {
			logging.Warn(sessionSubsystem, "Start ended after interrupt: %v", o.err)
		}
		return o.res, true, o.err
	}
}

func teardownFunc(config *Config, services *Services) func() error {
	return func() error {
		res, err := services.Manager.Stop(context.Background(), config.Path, StopOptions{SkipService: config.SkipService})
		if res != nil {
			logging.Info(sessionSubsystem, "Restored %d env file(s); unregistered: %t", len(res.RestoredFiles), res.Removed)
		}
		return err
	}
}

// runTeardown runs teardown once. A signal arriving while it runs exits the
// process immediately with ExitCodeInterrupted.
func runTeardown(sigChan <-chan os.Signal, teardown func() error, exit func(int)) error {
	done := make(chan error, 1)
	go func() {
		done <- teardown()
	}()

	select {
	case err := <-done:
		return err
	case sig := <-sigChan:
		logging.Warn(sessionSubsystem, "Received %s during teardown, exiting without further cleanup", sig)
		exit(ExitCodeInterrupted)
		return ErrTeardownInterrupted
	}
}

func sessionInfo(config *Config, res *StartResult) model.SessionInfo {
	info := model.SessionInfo{
		Identifier:    res.Record.Identifier,
		Name:          res.Record.Name,
		Repository:    res.Repository,
		Path:          res.Record.EnvironmentPath,
		PortBase:      res.Record.PortBase,
		APIURL:        res.APIURL,
		ModifiedFiles: res.ModifiedFiles,
		ServiceOutput: res.Output,
		SkipService:   config.SkipService,
	}
	for _, p := range res.Ports {
		info.Ports = append(info.Ports, model.PortLine{
			Key:       p.QualifiedKey(),
			Template:  p.Value,
			Allocated: res.Record.PortBase + p.Offset,
		})
	}
	return info
}
