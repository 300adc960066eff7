package app

import (
	"context"
	"fmt"
	"os"

	"sbwt/internal/config"
	"sbwt/pkg/logging"
)

// Application is one configured sbwt invocation.
type Application struct {
	config   *Config
	services *Services
}

// NewApplication loads the layered configuration for cfg.Path and wires the
// services. Logging is initialised for CLI output on stderr.
func NewApplication(cfg *Config) (*Application, error) {
	logging.InitForCLI(logLevel(cfg.Debug), os.Stderr)

	path := cfg.Path
	if path == "" {
		path = "."
	}
	sbwtCfg, err := config.LoadConfig(path)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to load sbwt configuration for %s", path)
		return nil, err
	}
	if err := sbwtCfg.Validate(); err != nil {
		return nil, err
	}
	logging.Debug("Bootstrap", "Loaded configuration (template %s, registry %s)", sbwtCfg.TemplatePath, sbwtCfg.RegistryPath)
	cfg.SbwtConfig = &sbwtCfg

	services, err := InitializeServices(cfg)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:   cfg,
		services: services,
	}, nil
}

// Manager returns the environment manager.
func (a *Application) Manager() *Manager {
	return a.services.Manager
}

// Config returns the invocation configuration.
func (a *Application) Config() *Config {
	return a.config
}

// Run executes an interactive session in the appropriate mode: start the
// environment, wait, then tear it down.
func (a *Application) Run(ctx context.Context) error {
	if a.config.NoTUI {
		return a.runCLIMode(ctx)
	}
	return a.runTUIMode(ctx)
}

// runCLIMode runs the session with plain log output
func (a *Application) runCLIMode(ctx context.Context) error {
	return runCLIMode(ctx, a.config, a.services)
}

// runTUIMode runs the session with the interactive terminal UI
func (a *Application) runTUIMode(ctx context.Context) error {
	return runTUIMode(ctx, a.config, a.services)
}

func logLevel(debug bool) logging.LogLevel {
	if debug {
		return logging.LevelDebug
	}
	return logging.LevelInfo
}
