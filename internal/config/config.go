// Package config loads burrow's configuration from a yaml file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the full application configuration.
type Config struct {
	// Root is the real directory backing the memory tree.
	Root string `yaml:"root"`
	// Prefix is the virtual path prefix commands address, e.g. /memories.
	Prefix  string        `yaml:"prefix"`
	Logging LoggingConfig `yaml:"logging"`
	Audit   AuditConfig   `yaml:"audit"`
}

// LoggingConfig controls diagnostic output. Logs go to stderr so that
// stdout stays reserved for command results.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// AuditConfig selects audit sinks. DB is a sqlite path; empty disables
// persistence. Stderr mirrors records as JSON lines on stderr.
type AuditConfig struct {
	DB     string `yaml:"db"`
	Stderr bool   `yaml:"stderr"`
}

// UserConfigDir returns the burrow config directory (~/.burrow).
func UserConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".burrow"), nil
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config file at path, or the default location when path
// is empty. A missing file is not an error: defaults and environment
// overrides still apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("locate config: %w", err)
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	case os.IsNotExist(err):
		// Fall through to defaults.
	default:
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if v := os.Getenv("BURROW_ROOT"); v != "" {
		cfg.Root = v
	}
	if v := os.Getenv("BURROW_PREFIX"); v != "" {
		cfg.Prefix = v
	}
	if v := os.Getenv("BURROW_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("BURROW_AUDIT_DB"); v != "" {
		cfg.Audit.DB = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fills in defaults, absolutizes the root path and makes sure
// the memory root directory exists.
func (c *Config) Validate() error {
	if c.Root == "" {
		dir, err := UserConfigDir()
		if err != nil {
			return fmt.Errorf("resolve default root: %w", err)
		}
		c.Root = filepath.Join(dir, "memories")
	}
	abs, err := filepath.Abs(c.Root)
	if err != nil {
		return fmt.Errorf("resolve root: %w", err)
	}
	c.Root = abs
	if err := os.MkdirAll(c.Root, 0755); err != nil {
		return fmt.Errorf("create memory root: %w", err)
	}

	if c.Prefix == "" {
		c.Prefix = "/memories"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	if c.Audit.DB != "" {
		if err := os.MkdirAll(filepath.Dir(c.Audit.DB), 0755); err != nil {
			return fmt.Errorf("create audit db directory: %w", err)
		}
	}
	return nil
}
