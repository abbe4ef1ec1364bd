package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when neither --config nor CONFIG_PATH is given
	DefaultConfigPath = "./config.yaml"

	DefaultDiveraBaseURL = "https://app.divera247.com"
	DefaultOffDutyLabel  = "Off Duty"
	DefaultDiveraTimeout = 30 * time.Second
	DefaultWatchInterval = 15 * time.Minute
	DefaultLockTTL       = 2 * time.Minute
)

var GlobalConfig *Config

// Config global configuration
type Config struct {
	Divera DiveraConfig `yaml:"divera"`
	Data   DataConfig   `yaml:"data"`
	Logger LoggerConfig `yaml:"logger"`
	Redis  RedisConfig  `yaml:"redis,omitempty"`
	MySQL  MySQLConfig  `yaml:"mysql,omitempty"`
	Watch  WatchConfig  `yaml:"watch,omitempty"`
}

// DiveraConfig status source configuration
type DiveraConfig struct {
	AccessKey    string        `yaml:"access_key" env:"STATUSTRACKER_DIVERA_ACCESS_KEY"`
	BaseURL      string        `yaml:"base_url,omitempty" env:"STATUSTRACKER_DIVERA_BASE_URL"`
	OffDutyLabel string        `yaml:"off_duty_label,omitempty" env:"STATUSTRACKER_DIVERA_OFF_DUTY_LABEL"` // upstream status name counted as off duty
	Timeout      time.Duration `yaml:"timeout,omitempty" env:"STATUSTRACKER_DIVERA_TIMEOUT"`
}

// DataConfig table file location
type DataConfig struct {
	Dir string `yaml:"dir,omitempty" env:"STATUSTRACKER_DATA_DIR"` // directory of the {year}-status files
}

// LoggerConfig logger configuration
type LoggerConfig struct {
	Level  string           `yaml:"level,omitempty" env:"STATUSTRACKER_LOG_LEVEL"`   // debug, info, warn, error
	Output string           `yaml:"output,omitempty" env:"STATUSTRACKER_LOG_OUTPUT"` // console, file, both
	File   LoggerFileConfig `yaml:"file,omitempty"`
}

// LoggerFileConfig logger file configuration
type LoggerFileConfig struct {
	Path string `yaml:"path,omitempty" env:"STATUSTRACKER_LOG_FILE"`
}

// RedisConfig Redis configuration, used to serialize concurrent updates.
// Locking is disabled when Addr is empty.
type RedisConfig struct {
	Addr     string        `yaml:"addr,omitempty" env:"STATUSTRACKER_REDIS_ADDR"`
	Password string        `yaml:"password,omitempty" env:"STATUSTRACKER_REDIS_PASSWORD"`
	DB       int           `yaml:"db,omitempty" env:"STATUSTRACKER_REDIS_DB"`
	LockTTL  time.Duration `yaml:"lock_ttl,omitempty" env:"STATUSTRACKER_REDIS_LOCK_TTL"`
}

// MySQLConfig optional observation mirror
type MySQLConfig struct {
	Enabled bool   `yaml:"enabled,omitempty" env:"STATUSTRACKER_MYSQL_ENABLED"`
	DSN     string `yaml:"dsn,omitempty" env:"STATUSTRACKER_MYSQL_DSN"`
}

// WatchConfig periodic update configuration
type WatchConfig struct {
	Interval time.Duration `yaml:"interval,omitempty" env:"STATUSTRACKER_WATCH_INTERVAL"`
}

// New returns a configuration holding only the Divera access key.
func New(accessKey string) *Config {
	cfg := &Config{
		Divera: DiveraConfig{AccessKey: accessKey},
	}
	return cfg
}

// Init loads the configuration from path and stores it in GlobalConfig
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	GlobalConfig = cfg
	return nil
}

// Load reads the yaml file at path, overlays STATUSTRACKER_* environment
// variables and fills defaults. An empty path falls back to CONFIG_PATH and
// then DefaultConfigPath.
func Load(path string) (*Config, error) {
	path = ResolvePath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	validateAndApplyDefaults(&cfg)

	if cfg.MySQL.Enabled && cfg.MySQL.DSN == "" {
		return nil, fmt.Errorf("mysql.enabled is set but mysql.dsn is empty")
	}

	return &cfg, nil
}

// ErrMissingAccessKey is returned by RequireAccessKey when no Divera access key is configured.
var ErrMissingAccessKey = errors.New("divera.access_key is not set")

// RequireAccessKey checks the settings needed to contact Divera. Reading
// recorded tables works without them.
func (c *Config) RequireAccessKey() error {
	if c.Divera.AccessKey == "" {
		return ErrMissingAccessKey
	}
	return nil
}

// ResolvePath applies the CONFIG_PATH and DefaultConfigPath fallbacks
func ResolvePath(path string) string {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = DefaultConfigPath
	}
	return path
}

// Write renders the configuration as yaml to path
func (c *Config) Write(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	// access key inside, keep it private
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// validateAndApplyDefaults replaces missing or invalid values with defaults
func validateAndApplyDefaults(cfg *Config) {
	if cfg.Divera.BaseURL == "" {
		cfg.Divera.BaseURL = DefaultDiveraBaseURL
	}
	if cfg.Divera.OffDutyLabel == "" {
		cfg.Divera.OffDutyLabel = DefaultOffDutyLabel
	}
	if cfg.Divera.Timeout <= 0 {
		cfg.Divera.Timeout = DefaultDiveraTimeout
	}

	if cfg.Data.Dir == "" {
		cfg.Data.Dir = "."
	}

	switch cfg.Logger.Level {
	case "debug", "info", "warn", "error":
	default:
		cfg.Logger.Level = "info"
	}
	switch cfg.Logger.Output {
	case "console", "file", "both":
	default:
		cfg.Logger.Output = "console"
	}
	if cfg.Logger.Output != "console" && cfg.Logger.File.Path == "" {
		cfg.Logger.File.Path = "logs/statustracker.log"
	}

	if cfg.Redis.LockTTL <= 0 {
		cfg.Redis.LockTTL = DefaultLockTTL
	}
	if cfg.Watch.Interval <= 0 {
		cfg.Watch.Interval = DefaultWatchInterval
	}
}
