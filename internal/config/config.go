// Package config loads CLI settings from an optional TOML file, a .env file
// and the environment, in that order of precedence (later wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/Cenalian/CFPS-Parsing/internal/cfps"
	"github.com/Cenalian/CFPS-Parsing/internal/geolocate"
)

// DefaultPath is read when no config path is given and the file exists.
const DefaultPath = "cfps.toml"

// Config holds all CLI settings.
type Config struct {
	BaseURL               string  `toml:"base_url"`                // CFPS alpha API endpoint, including the trailing '?'
	AirportsPath          string  `toml:"airports_path"`           // CSV coordinate table; empty uses the embedded Ontario table
	RequestTimeoutSeconds int     `toml:"request_timeout_seconds"` // Per-request HTTP timeout
	MaxRetries            int     `toml:"max_retries"`             // Extra attempts after a failed fetch
	GeolocateURL          string  `toml:"geolocate_url"`           // IP geolocation endpoint used for AUTO
	RadiusMiles           float64 `toml:"radius_miles"`            // Search radius for AUTO
	NoColor               bool    `toml:"no_color"`

	Logging LoggingConfig `toml:"logging"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`  // debug, info, warn or error
	Format string `toml:"format"` // console or json
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		BaseURL:               cfps.DefaultBaseURL,
		RequestTimeoutSeconds: 10,
		MaxRetries:            2,
		GeolocateURL:          geolocate.DefaultURL,
		RadiusMiles:           50,
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// Load builds the configuration. An explicit path must exist; with an empty
// path DefaultPath is used when present.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultPath); err == nil {
			path = DefaultPath
		}
	}

	if path != "" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	}

	// A missing .env is normal.
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// RequestTimeout returns the HTTP timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Validate rejects settings the CLI cannot run with.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base_url is required")
	}
	if c.RequestTimeoutSeconds <= 0 {
		return errors.New("request_timeout_seconds must be positive")
	}
	if c.MaxRetries < 0 {
		return errors.New("max_retries must not be negative")
	}
	if c.RadiusMiles <= 0 {
		return errors.New("radius_miles must be positive")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format %q", c.Logging.Format)
	}

	return nil
}

func (c *Config) applyEnv() error {
	c.BaseURL = getEnv("CFPS_BASE_URL", c.BaseURL)
	c.AirportsPath = getEnv("CFPS_AIRPORTS_PATH", c.AirportsPath)
	c.GeolocateURL = getEnv("CFPS_GEOLOCATE_URL", c.GeolocateURL)
	c.Logging.Level = getEnv("CFPS_LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnv("CFPS_LOG_FORMAT", c.Logging.Format)

	var err error
	if c.RequestTimeoutSeconds, err = getEnvAsInt("CFPS_TIMEOUT_SECONDS", c.RequestTimeoutSeconds); err != nil {
		return err
	}
	if c.MaxRetries, err = getEnvAsInt("CFPS_MAX_RETRIES", c.MaxRetries); err != nil {
		return err
	}
	if v := os.Getenv("CFPS_RADIUS_MILES"); v != "" {
		radius, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid CFPS_RADIUS_MILES: %w", err)
		}
		c.RadiusMiles = radius
	}

	// https://no-color.org
	if os.Getenv("NO_COLOR") != "" {
		c.NoColor = true
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return intValue, nil
}
