// Package config loads the YAML configuration shared by the CLI and any
// other collaborator that opens a contacts database.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration file.
type Config struct {
	// Database is a file path or ":memory:".
	Database string `yaml:"database"`
	Logging  Logging `yaml:"logging"`
}

// Logging controls the logrus logger.
type Logging struct {
	Level string `yaml:"level"`
	// File, when set, receives a copy of every entry.
	File string `yaml:"file,omitempty"`
}

// Default returns a config pointing at rolodex.db in the user config dir,
// falling back to the working directory.
func Default() *Config {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	} else {
		dir = filepath.Join(dir, "rolodex")
	}
	return &Config{
		Database: filepath.Join(dir, "rolodex.db"),
		Logging:  Logging{Level: "info"},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "decode config %s", path)
	}
	return cfg, cfg.Validate()
}

var levels = map[string]bool{
	"trace": true, "debug": true, "info": true,
	"warn": true, "warning": true, "error": true,
}

// Validate checks the fields Load cannot default.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database) == "" {
		return errors.New("config: database must not be empty")
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if !levels[strings.ToLower(c.Logging.Level)] {
		return errors.Errorf("config: unknown log level %q", c.Logging.Level)
	}
	return nil
}

// EnsureDir creates the parent directory of a file-backed database.
func (c *Config) EnsureDir() error {
	if c.Database == ":memory:" || strings.HasPrefix(c.Database, "file:") {
		return nil
	}
	return os.MkdirAll(filepath.Dir(c.Database), 0o700)
}
