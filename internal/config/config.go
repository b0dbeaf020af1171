package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/claude/liftlog/internal/analytics"
	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Database  DatabaseConfig  `yaml:"database"`
	Local     LocalConfig     `yaml:"local"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Analytics AnalyticsConfig `yaml:"analytics"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// LocalConfig configures the single-file SQLite store.
type LocalConfig struct {
	Path string `yaml:"path"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// AnalyticsConfig tunes the progress engine. Zero values keep the engine
// defaults; weight_step takes an explicit 0 to disable rounding.
type AnalyticsConfig struct {
	SessionWindow      int      `yaml:"session_window"`
	IncreasePct        float64  `yaml:"increase_pct"`
	DeloadPct          float64  `yaml:"deload_pct"`
	WeightStep         *float64 `yaml:"weight_step"`
	RecentDays         int      `yaml:"recent_days"`
	SuggestionSessions int      `yaml:"suggestion_sessions"`
}

// Options converts the config into engine options.
func (a AnalyticsConfig) Options() analytics.Options {
	opts := analytics.DefaultOptions()
	if a.SessionWindow > 0 {
		opts.SessionWindow = a.SessionWindow
	}
	if a.IncreasePct > 0 {
		opts.IncreasePct = a.IncreasePct
	}
	if a.DeloadPct > 0 {
		opts.DeloadPct = a.DeloadPct
	}
	if a.WeightStep != nil {
		opts.WeightStep = *a.WeightStep
	}
	if a.RecentDays > 0 {
		opts.RecentDays = a.RecentDays
	}
	if a.SuggestionSessions > 0 {
		opts.SuggestionSessions = a.SuggestionSessions
	}
	return opts
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix LIFTLOG_ and underscore-separated paths:
//
//	LIFTLOG_SERVER_HOST, LIFTLOG_SERVER_PORT, LIFTLOG_STORAGE_DRIVER,
//	LIFTLOG_DB_HOST, LIFTLOG_DB_PORT, LIFTLOG_DB_NAME,
//	LIFTLOG_DB_USER, LIFTLOG_DB_PASSWORD, LIFTLOG_DB_SSLMODE,
//	LIFTLOG_LOCAL_PATH, LIFTLOG_AUTH_API_KEY,
//	LIFTLOG_TAILSCALE_ENABLED, LIFTLOG_TAILSCALE_HOSTNAME
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LIFTLOG_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("LIFTLOG_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LIFTLOG_STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("LIFTLOG_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("LIFTLOG_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("LIFTLOG_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("LIFTLOG_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("LIFTLOG_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("LIFTLOG_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("LIFTLOG_LOCAL_PATH"); v != "" {
		cfg.Local.Path = v
	}
	if v := os.Getenv("LIFTLOG_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("LIFTLOG_TAILSCALE_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = enabled
		}
	}
	if v := os.Getenv("LIFTLOG_TAILSCALE_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
}

func (c *Config) applyDefaults() {
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverPostgres
	}
	if c.Storage.Driver == DriverSQLite && c.Local.Path == "" {
		c.Local.Path = "liftlog.db"
	}
	if c.Tailscale.Hostname == "" {
		c.Tailscale.Hostname = "liftlog"
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	switch c.Storage.Driver {
	case DriverPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database.host is required")
		}
		if c.Database.Port == 0 {
			return fmt.Errorf("database.port is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("database.name is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database.user is required")
		}
	case DriverSQLite:
	default:
		return fmt.Errorf("storage.driver %q is not one of %s, %s", c.Storage.Driver, DriverPostgres, DriverSQLite)
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	return c.Analytics.validate()
}

func (a AnalyticsConfig) validate() error {
	if a.SessionWindow < 0 || a.RecentDays < 0 || a.SuggestionSessions < 0 {
		return fmt.Errorf("analytics windows must not be negative")
	}
	if a.IncreasePct < 0 {
		return fmt.Errorf("analytics.increase_pct must not be negative")
	}
	if a.DeloadPct < 0 || a.DeloadPct >= 100 {
		return fmt.Errorf("analytics.deload_pct must be in [0, 100)")
	}
	if a.WeightStep != nil && *a.WeightStep < 0 {
		return fmt.Errorf("analytics.weight_step must not be negative")
	}
	return nil
}
