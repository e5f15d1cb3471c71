package config

import (
	"os"
	"strconv"
	"time"

	"github.com/KirkDiggler/dispatcher/internal/errors"
	"github.com/KirkDiggler/dispatcher/internal/validator"
)

// Config holds all configuration for the application
type Config struct {
	Log     LogConfig
	Redis   RedisConfig
	Ticker  TickerConfig
	Metrics MetricsConfig
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level       string
	Development bool
}

// RedisConfig holds Redis-specific configuration.
// An empty URL keeps delivery statistics in memory.
type RedisConfig struct {
	URL string
}

// TickerConfig holds the periodic tick publisher configuration
type TickerConfig struct {
	Interval   time.Duration
	Event      string
	AllowDrift bool
}

// MetricsConfig holds Prometheus exposition configuration.
// An empty Addr disables the metrics listener.
type MetricsConfig struct {
	Addr string
}

var validLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	interval, err := getEnvAsDurationOrDefault("TICK_INTERVAL", time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Log: LogConfig{
			Level:       getEnvOrDefault("LOG_LEVEL", "info"),
			Development: getEnvAsBoolOrDefault("LOG_DEVELOPMENT", false),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Ticker: TickerConfig{
			Interval:   interval,
			Event:      getEnvOrDefault("TICK_EVENT", "tick"),
			AllowDrift: getEnvAsBoolOrDefault("TICK_ALLOW_DRIFT", false),
		},
		Metrics: MetricsConfig{
			Addr: os.Getenv("METRICS_ADDR"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the loaded values
func (c *Config) Validate() error {
	if !validLevels[c.Log.Level] {
		return errors.Validationf("LOG_LEVEL %q is not one of debug, info, warn, error", c.Log.Level)
	}
	if c.Ticker.Interval <= 0 {
		return errors.Validationf("TICK_INTERVAL must be positive, got %s", c.Ticker.Interval)
	}
	if !validator.IsNonEmptyString(c.Ticker.Event) {
		return errors.Validation("TICK_EVENT is required")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.CodeValidation, key+" is not a valid duration").
			WithMeta("value", value)
	}
	return d, nil
}
