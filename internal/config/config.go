package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DatasetPostgres selects the log_entries table as the dataset source.
const DatasetPostgres = "postgres"

// Config holds all configuration for the LogPulse server.
type Config struct {
	Server    ServerConfig
	Dataset   DatasetConfig
	Dashboard DashboardConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Anomaly   AnomalyConfig
	Generator GeneratorConfig
}

type ServerConfig struct {
	Port        int
	Env         string
	LogLevel    slog.Level
	CORSOrigins []string
	RateLimit   int
}

type DatasetConfig struct {
	// Source is a file path, an http(s) URL, or DatasetPostgres.
	Source  string
	Timeout time.Duration
}

type DashboardConfig struct {
	Location     *time.Location
	FeedLimit    int
	NumericHours bool
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

type AnomalyConfig struct {
	URL          string
	Timeout      time.Duration
	Window       int
	DiscardStale bool
	CacheTTL     time.Duration
}

type GeneratorConfig struct {
	Enabled  bool
	Interval time.Duration
	Mode     string
}

var validGeneratorModes = map[string]bool{
	"fixed":   true,
	"catalog": true,
}

// Load reads configuration from environment variables and returns a validated Config.
// A .env file in the working directory is loaded first when present; variables
// already set in the environment win.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	logLevel, err := parseLevel(envString("LOGPULSE_LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}

	tzName := envString("LOGPULSE_TIMEZONE", "Local")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("LOGPULSE_TIMEZONE %q is not a valid timezone: %w", tzName, err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        envInt("LOGPULSE_PORT", 8080),
			Env:         envString("LOGPULSE_ENV", "development"),
			LogLevel:    logLevel,
			CORSOrigins: envList("LOGPULSE_CORS_ORIGINS", []string{"*"}),
			RateLimit:   envInt("LOGPULSE_RATE_LIMIT", 120),
		},
		Dataset: DatasetConfig{
			Source:  envString("LOGPULSE_DATASET", "sampleData.json"),
			Timeout: envDuration("LOGPULSE_DATASET_TIMEOUT", 30*time.Second),
		},
		Dashboard: DashboardConfig{
			Location:     loc,
			FeedLimit:    envInt("LOGPULSE_FEED_LIMIT", 50),
			NumericHours: envBool("LOGPULSE_NUMERIC_HOURS", false),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Anomaly: AnomalyConfig{
			URL:          envString("ANOMALY_URL", "http://localhost:5000/api/analyze"),
			Timeout:      envDuration("ANOMALY_TIMEOUT", 30*time.Second),
			Window:       envInt("ANOMALY_WINDOW", 50),
			DiscardStale: envBool("ANOMALY_DISCARD_STALE", true),
			CacheTTL:     envDuration("ANOMALY_CACHE_TTL", 0),
		},
		Generator: GeneratorConfig{
			Enabled:  envBool("GENERATOR_ENABLED", true),
			Interval: envDuration("GENERATOR_INTERVAL", 5*time.Second),
			Mode:     envString("GENERATOR_MODE", "fixed"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("LOGPULSE_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Dataset.Source == "" {
		return fmt.Errorf("LOGPULSE_DATASET must not be empty")
	}
	if c.Dataset.Source == DatasetPostgres && c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required when LOGPULSE_DATASET is postgres")
	}

	if c.Dashboard.FeedLimit <= 0 {
		return fmt.Errorf("LOGPULSE_FEED_LIMIT must be positive, got %d", c.Dashboard.FeedLimit)
	}

	if !strings.HasPrefix(c.Anomaly.URL, "http://") && !strings.HasPrefix(c.Anomaly.URL, "https://") {
		return fmt.Errorf("ANOMALY_URL must start with http:// or https://, got %q", c.Anomaly.URL)
	}
	if c.Anomaly.Window <= 0 {
		return fmt.Errorf("ANOMALY_WINDOW must be positive, got %d", c.Anomaly.Window)
	}
	if c.Anomaly.CacheTTL > 0 && c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required when ANOMALY_CACHE_TTL is set")
	}

	if !validGeneratorModes[c.Generator.Mode] {
		return fmt.Errorf("GENERATOR_MODE must be one of fixed, catalog; got %q", c.Generator.Mode)
	}
	if c.Generator.Enabled && c.Generator.Interval <= 0 {
		return fmt.Errorf("GENERATOR_INTERVAL must be positive, got %s", c.Generator.Interval)
	}

	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return l, fmt.Errorf("LOGPULSE_LOG_LEVEL must be one of debug, info, warn, error; got %q", s)
	}
	return l, nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
