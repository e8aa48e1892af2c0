package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Backend modes.
const (
	BackendRemote = "remote"
	BackendLocal  = "local"
)

// Cache drivers.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// BackendConfig describes how the client reaches the notification backend.
type BackendConfig struct {
	// Mode is "remote" (hosted REST backend) or "local" (SQLite file).
	Mode string `mapstructure:"mode" yaml:"mode"`

	// BaseURL is the root URL of the hosted backend.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"`

	// LocalPath is the SQLite database used in local mode.
	LocalPath string `mapstructure:"local_path" yaml:"local_path"`
}

// MemberConfig identifies the member whose notifications are shown.
type MemberConfig struct {
	ID string `mapstructure:"id" yaml:"id"`
}

// CacheConfig selects the feed cache implementation.
type CacheConfig struct {
	Driver    string `mapstructure:"driver" yaml:"driver"`
	RedisAddr string `mapstructure:"redis_addr" yaml:"redis_addr"`
	RedisDB   int    `mapstructure:"redis_db" yaml:"redis_db"`
	Prefix    string `mapstructure:"prefix" yaml:"prefix"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	PageSize        int `mapstructure:"page_size" yaml:"page_size"`
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// DevServerConfig configures the local stand-in backend.
type DevServerConfig struct {
	Addr   string `mapstructure:"addr" yaml:"addr"`
	DBPath string `mapstructure:"db_path" yaml:"db_path"`
	Seed   bool   `mapstructure:"seed" yaml:"seed"`
}

// MetricsConfig controls the client's Prometheus endpoint.
type MetricsConfig struct {
	// Addr is the listen address of /metrics. Empty disables it.
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Backend   BackendConfig   `mapstructure:"backend" yaml:"backend"`
	Member    MemberConfig    `mapstructure:"member" yaml:"member"`
	Cache     CacheConfig     `mapstructure:"cache" yaml:"cache"`
	Display   DisplayConfig   `mapstructure:"display" yaml:"display"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	DevServer DevServerConfig `mapstructure:"devserver" yaml:"devserver"`
	Metrics   MetricsConfig   `mapstructure:"metrics" yaml:"metrics"`
}

// EnvPrefix is prepended to environment overrides, e.g. NOTIFY_MEMBER_ID.
const EnvPrefix = "NOTIFY"

// DefaultConfigDir returns ~/.config/notification-center.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "notification-center")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/notification-center/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// DefaultAppConfig returns the configuration used when no file exists.
func DefaultAppConfig() *AppConfig {
	dir := DefaultConfigDir()
	return &AppConfig{
		Backend: BackendConfig{
			Mode:       BackendRemote,
			BaseURL:    "http://localhost:8787",
			TimeoutSec: 30,
			MaxRetries: 3,
			LocalPath:  filepath.Join(dir, "notifications.db"),
		},
		Cache: CacheConfig{
			Driver:    CacheMemory,
			RedisAddr: "localhost:6379",
			Prefix:    "notification-center:",
		},
		Display: DisplayConfig{
			PageSize:        50,
			PollIntervalSec: 60,
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(dir, "notification-center.log"),
		},
		DevServer: DevServerConfig{
			Addr:   ":8787",
			DBPath: filepath.Join(dir, "devbackend.db"),
		},
	}
}

func setDefaults(v *viper.Viper, cfg *AppConfig) {
	v.SetDefault("backend.mode", cfg.Backend.Mode)
	v.SetDefault("backend.base_url", cfg.Backend.BaseURL)
	v.SetDefault("backend.timeout_sec", cfg.Backend.TimeoutSec)
	v.SetDefault("backend.max_retries", cfg.Backend.MaxRetries)
	v.SetDefault("backend.local_path", cfg.Backend.LocalPath)
	v.SetDefault("member.id", cfg.Member.ID)
	v.SetDefault("cache.driver", cfg.Cache.Driver)
	v.SetDefault("cache.redis_addr", cfg.Cache.RedisAddr)
	v.SetDefault("cache.redis_db", cfg.Cache.RedisDB)
	v.SetDefault("cache.prefix", cfg.Cache.Prefix)
	v.SetDefault("display.page_size", cfg.Display.PageSize)
	v.SetDefault("display.poll_interval_sec", cfg.Display.PollIntervalSec)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("devserver.addr", cfg.DevServer.Addr)
	v.SetDefault("devserver.db_path", cfg.DevServer.DBPath)
	v.SetDefault("devserver.seed", cfg.DevServer.Seed)
	v.SetDefault("metrics.addr", cfg.Metrics.Addr)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// A .env file in the working directory is loaded first, and NOTIFY_*
// environment variables override file values. A missing file yields the
// defaults.
func LoadConfig(path string) (*AppConfig, error) {
	// .env is optional.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, DefaultAppConfig())

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c *AppConfig) Validate() error {
	switch c.Backend.Mode {
	case BackendRemote, BackendLocal:
	default:
		return fmt.Errorf("backend.mode must be %q or %q, got %q",
			BackendRemote, BackendLocal, c.Backend.Mode)
	}
	switch c.Cache.Driver {
	case CacheMemory, CacheRedis:
	default:
		return fmt.Errorf("cache.driver must be %q or %q, got %q",
			CacheMemory, CacheRedis, c.Cache.Driver)
	}
	if c.Display.PageSize <= 0 {
		c.Display.PageSize = 50
	}
	if c.Display.PollIntervalSec <= 0 {
		c.Display.PollIntervalSec = 60
	}
	return nil
}

// NeedsOnboarding reports whether the member still has to be configured.
func (c *AppConfig) NeedsOnboarding() bool {
	if c.Member.ID == "" {
		return true
	}
	return c.Backend.Mode == BackendRemote && c.Backend.BaseURL == ""
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("backend", cfg.Backend)
	v.Set("member", cfg.Member)
	v.Set("cache", cfg.Cache)
	v.Set("display", cfg.Display)
	v.Set("log", cfg.Log)
	v.Set("devserver", cfg.DevServer)
	v.Set("metrics", cfg.Metrics)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
