package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ServerConfig identifies the remote Workflow API.
type ServerConfig struct {
	// BaseURL is the root of the API (e.g. http://localhost:8080/api).
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec bounds each HTTP request.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// PollConfig holds the background refresh cadences.
type PollConfig struct {
	// UnreadIntervalSec is the unread-notification poll interval,
	// active only while a session exists.
	UnreadIntervalSec int `mapstructure:"unread_interval_sec" yaml:"unread_interval_sec"`

	// TaskRefreshIntervalSec is the list-view auto refresh interval.
	TaskRefreshIntervalSec int `mapstructure:"task_refresh_interval_sec" yaml:"task_refresh_interval_sec"`
}

// SearchConfig tunes the debounced header search.
type SearchConfig struct {
	DebounceMs int `mapstructure:"debounce_ms" yaml:"debounce_ms"`
}

// DisplayConfig holds UI preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Poll    PollConfig    `mapstructure:"poll" yaml:"poll"`
	Search  SearchConfig  `mapstructure:"search" yaml:"search"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
}

// DefaultPath returns the default config file location,
// ~/.config/workflow/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "workflow", "config.yaml")
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			BaseURL:    "http://localhost:8080/api",
			TimeoutSec: 30,
		},
		Poll: PollConfig{
			UnreadIntervalSec:      30,
			TaskRefreshIntervalSec: 30,
		},
		Search: SearchConfig{
			DebounceMs: 300,
		},
		Display: DisplayConfig{
			Theme: "default",
		},
	}
}

// Load reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns the default configuration.
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("server.base_url", "http://localhost:8080/api")
	v.SetDefault("server.timeout_sec", 30)
	v.SetDefault("poll.unread_interval_sec", 30)
	v.SetDefault("poll.task_refresh_interval_sec", 30)
	v.SetDefault("search.debounce_ms", 300)
	v.SetDefault("display.theme", "default")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// EnsureFile loads the configuration at path, writing the defaults
// first when no file exists yet so the user has something to edit.
func EnsureFile(path string) (*AppConfig, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := defaultConfig()
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return Load(path)
}

// Save writes the configuration to a YAML file at path, creating
// parent directories if needed.
func Save(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("server", cfg.Server)
	v.Set("poll", cfg.Poll)
	v.Set("search", cfg.Search)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
