package config

import (
	"os"
	"strconv"
	"time"
)

// Default values for configuration.
const (
	DefaultTop            = 5
	DefaultOutput         = "text"
	DefaultListen         = ":8000"
	DefaultMaxUploadBytes = 32 << 20
	DefaultReadTimeout    = 30 * time.Second
	DefaultWriteTimeout   = 60 * time.Second
	DefaultWebhookTimeout = 10 * time.Second
)

// Environment variable names.
const (
	EnvTop     = "LOGDIGEST_TOP"
	EnvListen  = "LOGDIGEST_LISTEN"
	EnvTempDir = "LOGDIGEST_TEMP_DIR"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Top:    DefaultTop,
		Output: DefaultOutput,
		Server: ServerConfig{
			Listen:         DefaultListen,
			MaxUploadBytes: DefaultMaxUploadBytes,
			ReadTimeout:    DefaultReadTimeout,
			WriteTimeout:   DefaultWriteTimeout,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
// An LOGDIGEST_TOP value that is not an integer is ignored.
func (c *Config) applyEnvironmentOverrides() {
	if v := os.Getenv(EnvTop); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Top = n
		}
	}
	if v := os.Getenv(EnvListen); v != "" {
		c.Server.Listen = v
	}
	if v := os.Getenv(EnvTempDir); v != "" {
		c.Server.TempDir = v
	}
}
