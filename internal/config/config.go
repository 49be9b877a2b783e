// Package config loads repoforge configuration from an optional YAML file
// with environment overrides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked up relative to the repository root.
const DefaultFile = ".repoforge.yaml"

// Config holds all repoforge settings.
type Config struct {
	// Root is the repository root directory.
	Root string `yaml:"root"`

	// Pattern selects tracked files by base name (default "*.go").
	Pattern string `yaml:"pattern"`

	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// DiagnosticsConfig selects what a harness run reports by default.
type DiagnosticsConfig struct {
	WithOutputs bool `yaml:"with_outputs"`
	WithErrors  bool `yaml:"with_errors"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Root:    ".",
		Pattern: "*.go",
		Diagnostics: DiagnosticsConfig{
			WithOutputs: false,
			WithErrors:  true,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads path over the defaults. A missing file is not an error; the
// defaults plus environment overrides apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No file, defaults stand.
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides lets REPOFORGE_* variables win over file values.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("REPOFORGE_ROOT"); v != "" {
		c.Root = v
	}
	if v := os.Getenv("REPOFORGE_PATTERN"); v != "" {
		c.Pattern = v
	}
	if v := os.Getenv("REPOFORGE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}
