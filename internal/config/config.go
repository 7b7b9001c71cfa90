// Package config loads application configuration with viper. A missing
// config file resolves to the defaults; a malformed one is an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const appName = "soulplanner"

// Config is the application configuration.
type Config struct {
	// StorePath is the location of the SQLite store file.
	StorePath string `mapstructure:"store_path" yaml:"store_path"`

	// OpTimeout bounds each store operation. Zero disables the bound,
	// which is the sensible default for a local file store.
	OpTimeout time.Duration `mapstructure:"op_timeout" yaml:"op_timeout"`

	// AllowArchivedProjectTasks permits creating tasks in archived
	// projects instead of rejecting them.
	AllowArchivedProjectTasks bool `mapstructure:"allow_archived_project_tasks" yaml:"allow_archived_project_tasks"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// DefaultConfigPath returns ~/.config/soulplanner/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", appName, "config.yaml")
}

// DefaultStorePath returns the store location under the XDG data
// directory, falling back to ~/.local/share.
func DefaultStorePath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".", "tasks.db")
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, appName, "tasks.db")
}

func defaults() *Config {
	return &Config{
		StorePath: DefaultStorePath(),
		LogLevel:  "info",
	}
}

// Load reads configuration from the given YAML file. If the file does
// not exist, the defaults are returned.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("store_path", DefaultStorePath())
	v.SetDefault("op_timeout", time.Duration(0))
	v.SetDefault("allow_archived_project_tasks", false)
	v.SetDefault("log_level", "info")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaults(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaults(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
