// Package config loads process configuration and exposes the runtime
// parameter source the orchestrator snapshots once per batch run.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all process-level configuration.
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Log       LogConfig
	Scheduler SchedulerConfig
	Notify    NotifyConfig
	Analytics AnalyticsConfig
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds Postgres connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
}

// SchedulerConfig controls the batch trigger.
type SchedulerConfig struct {
	Enabled    bool
	Interval   time.Duration
	RunTimeout time.Duration
}

// NotifyConfig selects the alert delivery channel. An empty WebhookURL
// falls back to log-only delivery.
type NotifyConfig struct {
	WebhookURL string
	Timeout    time.Duration
}

// AnalyticsConfig bounds the history window read requests analyze.
type AnalyticsConfig struct {
	Window int
}

// Load reads configuration from config.toml and environment variables.
// Priority, highest first: PRICETRACKER_-prefixed env vars, config.toml,
// built-in defaults. The returned Source serves the per-run tracker
// parameters (alert threshold, scrape delay, user agent pool) from the same
// backing store.
func Load() (*Config, Source, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, nil, fmt.Errorf("read config file: %w", err)
		}
		// no config file is fine, defaults and env vars carry the day
	}

	v.SetEnvPrefix("PRICETRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("database.host"),
			Port:     v.GetInt("database.port"),
			User:     v.GetString("database.user"),
			Password: v.GetString("database.password"),
			DBName:   v.GetString("database.dbname"),
			SSLMode:  v.GetString("database.sslmode"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Scheduler: SchedulerConfig{
			Enabled:    v.GetBool("scheduler.enabled") || !v.IsSet("scheduler.enabled"),
			Interval:   v.GetDuration("scheduler.interval"),
			RunTimeout: v.GetDuration("scheduler.run_timeout"),
		},
		Notify: NotifyConfig{
			WebhookURL: v.GetString("notify.webhook_url"),
			Timeout:    v.GetDuration("notify.timeout"),
		},
		Analytics: AnalyticsConfig{
			Window: v.GetInt("analytics.window"),
		},
	}

	applyDefaults(cfg)
	if err := cfg.validate(); err != nil {
		return nil, nil, err
	}
	return cfg, viperSource{v: v}, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "pricetracker"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "pricetracker"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Scheduler.Interval == 0 {
		cfg.Scheduler.Interval = time.Hour
	}
	if cfg.Scheduler.RunTimeout == 0 {
		cfg.Scheduler.RunTimeout = 10 * time.Minute
	}
	if cfg.Notify.Timeout == 0 {
		cfg.Notify.Timeout = 10 * time.Second
	}
	if cfg.Analytics.Window == 0 {
		cfg.Analytics.Window = 30
	}
}

func (c *Config) validate() error {
	if c.Scheduler.Interval < 0 {
		return fmt.Errorf("scheduler.interval cannot be negative")
	}
	if c.Scheduler.RunTimeout <= 0 {
		return fmt.Errorf("scheduler.run_timeout must be positive")
	}
	if c.Analytics.Window < 0 {
		return fmt.Errorf("analytics.window cannot be negative")
	}
	if c.App.Env == "production" && c.Database.Password == "" {
		return fmt.Errorf("database.password is required in production")
	}
	return nil
}

// DSN returns the database connection string with properly escaped values.
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
