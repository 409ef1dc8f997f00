package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Events    EventsConfig    `yaml:"events"`
	Versus    VersusConfig    `yaml:"versus"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Port               int `yaml:"port"`
	MetricsPort        int `yaml:"metrics_port"`
	RateLimitPerMinute int `yaml:"rate_limit_per_minute"`
	ShutdownTimeoutMs  int `yaml:"shutdown_timeout_ms"`
}

// DatabaseConfig selects the results store. Path is used by the sqlite
// driver, URL by postgres.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
	URL    string `yaml:"url"`
}

// EventsConfig points at the NATS server. An empty URL disables events.
type EventsConfig struct {
	URL string `yaml:"url"`
}

type VersusConfig struct {
	ParallelThreshold int `yaml:"parallel_threshold"`
	Workers           int `yaml:"workers"`
}

type AnalyticsConfig struct {
	RecentEvents  int `yaml:"recent_events"`
	TopBreeds     int `yaml:"top_breeds"`
	SearchLimit   int `yaml:"search_limit"`
	TopLimit      int `yaml:"top_limit"`
	RegionMinRuns int `yaml:"region_min_runs"`
	JudgeMinRuns  int `yaml:"judge_min_runs"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutMs) * time.Millisecond
}

// SlogLevel maps the configured level name, falling back to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Logging.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:               8700,
			MetricsPort:        8701,
			RateLimitPerMinute: 120,
			ShutdownTimeoutMs:  10000,
		},
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			Path:   "agility_master.db",
		},
		Versus: VersusConfig{
			ParallelThreshold: 2000,
			Workers:           4,
		},
		Analytics: AnalyticsConfig{
			RecentEvents:  10,
			TopBreeds:     10,
			SearchLimit:   20,
			TopLimit:      10,
			RegionMinRuns: 50,
			JudgeMinRuns:  30,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("K9_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("K9_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("K9_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.RateLimitPerMinute = n
		}
	}
	if v := os.Getenv("K9_DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("K9_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("K9_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("K9_EVENTS_URL"); v != "" {
		cfg.Events.URL = v
	}
	if v := os.Getenv("K9_VERSUS_PARALLEL_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Versus.ParallelThreshold = n
		}
	}
	if v := os.Getenv("K9_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("K9_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.MetricsPort <= 0 || c.Server.MetricsPort > 65535 {
		errs = append(errs, fmt.Errorf("server.metrics_port %d out of range", c.Server.MetricsPort))
	}
	if c.Server.Port == c.Server.MetricsPort {
		errs = append(errs, errors.New("server.port and server.metrics_port must differ"))
	}
	if c.Server.RateLimitPerMinute <= 0 {
		errs = append(errs, errors.New("server.rate_limit_per_minute must be positive"))
	}

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			errs = append(errs, errors.New("database.path is required for the sqlite driver"))
		}
	case DriverPostgres:
		if c.Database.URL == "" {
			errs = append(errs, errors.New("database.url is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown database.driver %q", c.Database.Driver))
	}

	if c.Versus.ParallelThreshold < 0 {
		errs = append(errs, errors.New("versus.parallel_threshold must not be negative"))
	}
	if c.Versus.Workers < 1 {
		errs = append(errs, errors.New("versus.workers must be at least 1"))
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("unknown logging.format %q", c.Logging.Format))
	}
	return errors.Join(errs...)
}
