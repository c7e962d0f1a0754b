// Package config loads qpaper settings from defaults, an optional YAML file
// and QPAPER_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/qpaper/qpaper/internal/api"
	"github.com/qpaper/qpaper/internal/logging"
	"github.com/qpaper/qpaper/internal/store"
)

// Config is the full application configuration.
type Config struct {
	API api.Config     `yaml:"api"`
	Log logging.Config `yaml:"log"`

	// DBPath is the request event database. Empty means store.DefaultDBPath.
	DBPath string `yaml:"db_path"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	cfg := Config{
		API: api.DefaultConfig(),
		Log: logging.Config{Level: "info"},
	}
	if dir, err := store.DataDir(); err == nil {
		cfg.Log.Path = filepath.Join(dir, "qpaper.log")
	}
	return cfg
}

// DefaultPath resolves the config file location:
// 1. QPAPER_CONFIG environment variable
// 2. $XDG_CONFIG_HOME/qpaper/config.yaml
// 3. ~/.config/qpaper/config.yaml
func DefaultPath() (string, error) {
	if p := os.Getenv("QPAPER_CONFIG"); p != "" {
		return p, nil
	}
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "qpaper", "config.yaml"), nil
}

// Load reads the configuration. An empty path means DefaultPath, which may
// be missing; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}

	return ApplyEnv(cfg)
}

// ApplyEnv overrides cfg with QPAPER_* environment variables.
func ApplyEnv(cfg Config) (Config, error) {
	apiCfg, err := api.ApplyEnv(cfg.API)
	if err != nil {
		return cfg, err
	}
	cfg.API = apiCfg

	if p := os.Getenv("QPAPER_LOG_FILE"); p != "" {
		cfg.Log.Path = p
	}
	if l := os.Getenv("QPAPER_LOG_LEVEL"); l != "" {
		cfg.Log.Level = l
	}
	if p := os.Getenv("QPAPER_DB"); p != "" {
		cfg.DBPath = p
	}
	return cfg, nil
}

// Validate checks every section of the configuration.
func (c Config) Validate() error {
	if err := c.API.Validate(); err != nil {
		return err
	}
	if c.Log.Level != "" {
		if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("log level: %w", err)
		}
	}
	return nil
}

// ResolveDBPath returns DBPath, or the default database location.
func (c Config) ResolveDBPath() (string, error) {
	if c.DBPath != "" {
		return c.DBPath, os.MkdirAll(filepath.Dir(c.DBPath), 0o755)
	}
	return store.DefaultDBPath()
}
