package config

import "time"

const (
	DefaultTemplatePath   = "supabase/config.toml.template"
	DefaultOutputPath     = "supabase/config.toml"
	DefaultBlockSize      = 100
	DefaultSupabaseBinary = "supabase"
	DefaultStartTimeout   = 5 * time.Minute
	DefaultStopTimeout    = time.Minute
	DefaultRegistryFile   = "registry.json"
)

// GetDefaultConfig returns the built-in configuration. RegistryPath is left
// empty and resolved against the user config directory by LoadConfig.
func GetDefaultConfig() SbwtConfig {
	return SbwtConfig{
		TemplatePath: DefaultTemplatePath,
		OutputPath:   DefaultOutputPath,
		BlockSize:    DefaultBlockSize,
		EnvPatterns: []string{
			".env",
			".env.*",
			"**/.env",
			"**/.env.*",
		},
		IgnoreDirs: []string{
			"node_modules",
			".git",
			"vendor",
			".venv",
			"dist",
			"build",
			".next",
		},
		SupabaseBinary: DefaultSupabaseBinary,
		StartTimeout:   DefaultStartTimeout,
		StopTimeout:    DefaultStopTimeout,
	}
}
