package app

import (
	"sbwt/internal/config"
)

// Config holds the options of one sbwt invocation.
type Config struct {
	// Path is the environment (worktree) directory.
	Path string

	// UI mode
	NoTUI bool

	// Debug settings
	Debug bool

	// SkipService leaves the supabase stack alone on start and stop.
	SkipService bool

	// Loaded settings for Path
	SbwtConfig *config.SbwtConfig
}

// NewConfig creates a new application configuration
func NewConfig(path string, noTUI, debug bool) *Config {
	return &Config{
		Path:  path,
		NoTUI: noTUI,
		Debug: debug,
	}
}
