package config

import (
	"time"
)

// SbwtConfig is the merged configuration for one worktree.
type SbwtConfig struct {
	// TemplatePath is the committed configuration template.
	TemplatePath string `yaml:"templatePath,omitempty"`
	// OutputPath receives the generated configuration.
	OutputPath string `yaml:"outputPath,omitempty"`
	// BlockSize is the number of consecutive ports reserved per environment.
	BlockSize int `yaml:"blockSize,omitempty"`
	// EnvPatterns are doublestar globs, relative to the worktree, selecting
	// environment files to rewrite.
	EnvPatterns []string `yaml:"envPatterns,omitempty"`
	// IgnoreDirs are directory names never descended into during discovery.
	IgnoreDirs []string `yaml:"ignoreDirs,omitempty"`
	// RegistryPath is the shared allocation registry.
	RegistryPath string `yaml:"registryPath,omitempty"`
	// SupabaseBinary is the service manager executable.
	SupabaseBinary string `yaml:"supabaseBinary,omitempty"`
	// StartTimeout bounds the service start call.
	StartTimeout time.Duration `yaml:"startTimeout,omitempty"`
	// StopTimeout bounds the service stop call.
	StopTimeout time.Duration `yaml:"stopTimeout,omitempty"`
}
