package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type MirrorConfig struct {
	// Webhook URL of the spreadsheet sink. Empty disables mirroring.
	URL string `mapstructure:"url"`
	// Per-call timeout in seconds.
	Timeout uint `mapstructure:"timeout"`
	// BCP-47 tag controlling how punch instants are rendered as clock
	// strings in the mirror payload.
	Locale string `mapstructure:"locale"`
}

type SyncConfig struct {
	// Attempts for the primary write. 1 disables retry.
	PrimaryAttempts uint `mapstructure:"primary_attempts"`
	// Linear backoff between primary write attempts, in milliseconds.
	PrimaryBackoff uint `mapstructure:"primary_backoff"`
	// Per-stage timeout in seconds (fetch, primary write, mirror write).
	StageTimeout uint `mapstructure:"stage_timeout"`
}

type Config struct {
	LogLevel string `mapstructure:"log_level"`

	// Comma separated list of allowed CIDR networks. Empty means allow all.
	AllowedNetworks string `mapstructure:"allowed_networks"`

	// Listen address for the HTTP API, e.g. ":8080".
	ListenAddr string `mapstructure:"listen_addr"`

	// Seconds a recorded punch stays editable on the current day.
	EditWindow uint `mapstructure:"edit_window"`

	Storage Storage      `mapstructure:"storage"`
	Mirror  MirrorConfig `mapstructure:"mirror"`
	Sync    SyncConfig   `mapstructure:"sync"`
}

var Cfg *Config

func (c *Config) EditWindowDuration() time.Duration {
	return time.Duration(c.EditWindow) * time.Second
}

func (c *Config) StageTimeout() time.Duration {
	return time.Duration(c.Sync.StageTimeout) * time.Second
}

func (c *Config) PrimaryBackoff() time.Duration {
	return time.Duration(c.Sync.PrimaryBackoff) * time.Millisecond
}

// Check if running in Docker container by checking for the presence of /.dockerenv file
func runningInDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return false
}

func getConfigPath() string {
	if runningInDocker() {
		return "/app/instance"
	}
	return "./instance"
}

// LoadConfig reads configuration from environment variables and an optional
// config file, and returns a Config struct.
func LoadConfig(configFile ...string) (*Config, error) {
	var cfg Config

	v := viper.New()
	v.SetConfigName("config")
	v.AddConfigPath(getConfigPath())
	v.AddConfigPath(".")
	v.SetEnvPrefix("")

	if len(configFile) > 0 {
		for _, path := range configFile {
			v.SetConfigFile(path)
		}
	}

	for k, val := range Defaults() {
		v.SetDefault(k, val)
	}

	// Load configuration from environment variables
	v.AutomaticEnv()

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %v", err)
	}

	if cfg.Sync.PrimaryAttempts == 0 {
		cfg.Sync.PrimaryAttempts = 1
	}

	// Convert relative sqlite path to absolute instance folder
	if cfg.Storage.SQLite != nil {
		if cfg.Storage.SQLite.Path == ":memory:" {
			// In-memory database, do nothing
		} else if !os.IsPathSeparator(cfg.Storage.SQLite.Path[0]) {
			cfg.Storage.SQLite.Path = fmt.Sprintf("%s/%s", getConfigPath(), cfg.Storage.SQLite.Path)
		}
	}

	return &cfg, nil
}
