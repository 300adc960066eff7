package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"sbwt/internal/ports"
	"sbwt/pkg/logging"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir

const (
	userConfigDir    = ".config/sbwt"
	projectConfigDir = ".sbwt"
	configFileName   = "config.yaml"
)

// LoadConfig layers defaults, the user configuration and the project
// configuration found in projectDir, then resolves paths.
func LoadConfig(projectDir string) (SbwtConfig, error) {
	cfg := GetDefaultConfig()

	userConfigPath, err := getUserConfigPath()
	if err != nil {
		// user config is optional
		logging.Warn("Config", "Could not determine user config path: %v", err)
	} else {
		userCfg, found, err := loadConfigFromFile(userConfigPath)
		if err != nil {
			return SbwtConfig{}, fmt.Errorf("error loading user config from %s: %w", userConfigPath, err)
		}
		if found {
			cfg = mergeConfigs(cfg, userCfg)
			logging.Debug("Config", "Applied user config %s", userConfigPath)
		}
	}

	projectConfigPath := getProjectConfigPath(projectDir)
	projectCfg, found, err := loadConfigFromFile(projectConfigPath)
	if err != nil {
		return SbwtConfig{}, fmt.Errorf("error loading project config from %s: %w", projectConfigPath, err)
	}
	if found {
		cfg = mergeConfigs(cfg, projectCfg)
		logging.Debug("Config", "Applied project config %s", projectConfigPath)
	}

	if err := resolvePaths(&cfg, projectDir); err != nil {
		return SbwtConfig{}, err
	}
	return cfg, nil
}

var getUserConfigPath = func() (string, error) {
	dir, err := GetUserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

func getProjectConfigPath(projectDir string) string {
	return filepath.Join(projectDir, projectConfigDir, configFileName)
}

// loadConfigFromFile reports found=false when the file does not exist.
func loadConfigFromFile(filePath string) (SbwtConfig, bool, error) {
	var cfg SbwtConfig
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return SbwtConfig{}, false, nil
		}
		return SbwtConfig{}, false, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return SbwtConfig{}, false, NewUserError(
			fmt.Sprintf("invalid configuration file %s", filePath),
			"Check the YAML syntax; durations are written like 5m or 90s.",
			err,
		)
	}
	return cfg, true, nil
}

// mergeConfigs merges 'overlay' config into 'base' config.
func mergeConfigs(base, overlay SbwtConfig) SbwtConfig {
	merged := base

	if overlay.TemplatePath != "" {
		merged.TemplatePath = overlay.TemplatePath
	}
	if overlay.OutputPath != "" {
		merged.OutputPath = overlay.OutputPath
	}
	if overlay.BlockSize != 0 {
		merged.BlockSize = overlay.BlockSize
	}
	// Lists replace rather than append so a project can narrow discovery.
	if len(overlay.EnvPatterns) > 0 {
		merged.EnvPatterns = append([]string(nil), overlay.EnvPatterns...)
	}
	if len(overlay.IgnoreDirs) > 0 {
		merged.IgnoreDirs = append([]string(nil), overlay.IgnoreDirs...)
	}
	if overlay.RegistryPath != "" {
		merged.RegistryPath = overlay.RegistryPath
	}
	if overlay.SupabaseBinary != "" {
		merged.SupabaseBinary = overlay.SupabaseBinary
	}
	if overlay.StartTimeout != 0 {
		merged.StartTimeout = overlay.StartTimeout
	}
	if overlay.StopTimeout != 0 {
		merged.StopTimeout = overlay.StopTimeout
	}

	return merged
}

func resolvePaths(cfg *SbwtConfig, projectDir string) error {
	if !filepath.IsAbs(cfg.TemplatePath) {
		cfg.TemplatePath = filepath.Join(projectDir, cfg.TemplatePath)
	}
	if !filepath.IsAbs(cfg.OutputPath) {
		cfg.OutputPath = filepath.Join(projectDir, cfg.OutputPath)
	}

	if cfg.RegistryPath == "" {
		dir, err := GetUserConfigDir()
		if err != nil {
			return fmt.Errorf("failed to determine registry location: %w", err)
		}
		cfg.RegistryPath = filepath.Join(dir, DefaultRegistryFile)
	} else if strings.HasPrefix(cfg.RegistryPath, "~/") {
		home, err := osUserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to expand %s: %w", cfg.RegistryPath, err)
		}
		cfg.RegistryPath = filepath.Join(home, cfg.RegistryPath[2:])
	}
	return nil
}

// Validate checks the settings that the allocator and rewriters depend on.
func (c SbwtConfig) Validate() error {
	if c.BlockSize < 1 || c.BlockSize > ports.MaxPort-ports.MinUnprivilegedPort {
		return NewUserError(
			fmt.Sprintf("blockSize %d is out of range", c.BlockSize),
			fmt.Sprintf("Set blockSize between 1 and %d in .sbwt/config.yaml.", ports.MaxPort-ports.MinUnprivilegedPort),
			nil,
		)
	}
	if filepath.Clean(c.TemplatePath) == filepath.Clean(c.OutputPath) {
		return NewUserError(
			"templatePath and outputPath point at the same file",
			"The template is the committed source; point outputPath at the generated file.",
			nil,
		)
	}
	if len(c.EnvPatterns) == 0 {
		logging.Warn("Config", "No envPatterns configured; environment files will not be rewritten")
	}
	if c.StartTimeout <= 0 || c.StopTimeout <= 0 {
		return NewUserError("timeouts must be positive", "Use values like startTimeout: 5m.", nil)
	}
	return nil
}

// GetUserConfigDir returns the user configuration directory path
func GetUserConfigDir() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir), nil
}
