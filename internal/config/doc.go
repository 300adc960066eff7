// Package config provides configuration management for sbwt.
//
// Configuration is layered. Later sources override earlier ones field by
// field:
//
//  1. Defaults (compiled in, see GetDefaultConfig)
//  2. User configuration (~/.config/sbwt/config.yaml)
//  3. Project configuration (<worktree>/.sbwt/config.yaml)
//
// # Configuration Structure
//
//	templatePath: supabase/config.toml.template
//	outputPath: supabase/config.toml
//	blockSize: 100
//	envPatterns:
//	  - ".env"
//	  - "**/.env.*"
//	ignoreDirs: ["node_modules", ".git"]
//	registryPath: ~/.config/sbwt/registry.json
//	supabaseBinary: supabase
//	startTimeout: 5m
//	stopTimeout: 1m
//
// Relative templatePath and outputPath are resolved against the worktree.
// A leading "~/" in registryPath is expanded to the user's home directory.
//
// # Errors
//
// Problems the user can fix (a missing template, a template without port
// fields, an invalid block size) are reported as *UserError, which carries
// a short message and a hint. The CLI renders these without a stack of
// wrapped causes.
package config
