// Package config loads the spike server configuration from a TOML file
// with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/bjaus/dispatch/internal/logging"
)

// DefaultFile is the configuration file read when no path is given.
const DefaultFile = "spike.toml"

// Environment overrides.
const (
	EnvAddr            = "SPIKE_ADDR"
	EnvLogLevel        = "SPIKE_LOG_LEVEL"
	EnvLogFormat       = "SPIKE_LOG_FORMAT"
	EnvShutdownTimeout = "SPIKE_SHUTDOWN_TIMEOUT"
)

// Config is the root configuration.
type Config struct {
	Addr            string          `toml:"addr"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Logging         logging.Config  `toml:"logging"`
	RateLimit       RateLimitConfig `toml:"rate_limit"`
	Compress        CompressConfig  `toml:"compress"`
}

// RateLimitConfig enables per-client rate limiting when Rate is positive.
type RateLimitConfig struct {
	Rate  float64 `toml:"rate"`
	Burst int     `toml:"burst"`
}

// CompressConfig enables gzip responses.
type CompressConfig struct {
	Enabled bool `toml:"enabled"`
	MinSize int  `toml:"min_size"`
}

// Load reads path (DefaultFile if empty). A missing file yields an empty
// Config; call Finalize to apply defaults and overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// Finalize applies defaults, environment overrides, and then overlay (if
// non-nil), and validates the result. Precedence is overlay > environment
// > file > defaults.
func (c *Config) Finalize(overlay *Config) error {
	c.loadEnv()
	if overlay != nil {
		c.Merge(overlay)
	}
	c.loadDefaults()
	return c.validate()
}

// Merge applies non-zero values from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Addr != "" {
		c.Addr = overlay.Addr
	}
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Logging.Level != "" {
		c.Logging.Level = overlay.Logging.Level
	}
	if overlay.Logging.Format != "" {
		c.Logging.Format = overlay.Logging.Format
	}
	if overlay.RateLimit.Rate != 0 {
		c.RateLimit = overlay.RateLimit
	}
	if overlay.Compress.Enabled {
		c.Compress = overlay.Compress
	}
}

// ShutdownTimeoutDuration returns the parsed shutdown timeout.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

func (c *Config) loadDefaults() {
	if c.Addr == "" {
		c.Addr = ":8888"
	}
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = logging.LevelInfo
	}
	if c.Logging.Format == "" {
		c.Logging.Format = logging.FormatText
	}
	if c.RateLimit.Rate > 0 && c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = int(c.RateLimit.Rate) + 1
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvAddr); v != "" {
		c.Addr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = logging.Level(v)
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Logging.Format = logging.Format(v)
	}
	if v := os.Getenv(EnvShutdownTimeout); v != "" {
		if _, err := strconv.Atoi(v); err == nil {
			v += "s"
		}
		c.ShutdownTimeout = v
	}
}

func (c *Config) validate() error {
	if d, err := time.ParseDuration(c.ShutdownTimeout); err != nil || d < 0 {
		return fmt.Errorf("invalid shutdown_timeout %q", c.ShutdownTimeout)
	}
	if err := c.Logging.Level.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Logging.Format.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if c.RateLimit.Rate < 0 || c.RateLimit.Burst < 0 {
		return errors.New("rate_limit: rate and burst must not be negative")
	}
	return nil
}
