package config

import (
	"net"
	"strconv"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Environment  string          `mapstructure:"environment"`
	Server       ServerConfig    `mapstructure:"server"`
	Database     DatabaseConfig  `mapstructure:"database"`
	Progress     ProgressConfig  `mapstructure:"progress"`
	Videos       []VideoConfig   `mapstructure:"videos"`
	RateLimiting RateLimitConfig `mapstructure:"rate_limiting"`
	Security     SecurityConfig  `mapstructure:"security"`
	Logging      LoggingConfig   `mapstructure:"logging"`
	Client       ClientConfig    `mapstructure:"client"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxHeaderBytes  int           `mapstructure:"max_header_bytes"`
}

// DatabaseConfig selects and tunes the progress store backend
type DatabaseConfig struct {
	Driver         string `mapstructure:"driver"` // sqlite or postgres
	Path           string `mapstructure:"path"`   // sqlite file
	DSN            string `mapstructure:"dsn"`    // postgres connection string
	MaxConnections int    `mapstructure:"max_connections"`
	Verbose        bool   `mapstructure:"verbose"`
}

// ProgressConfig contains interval bookkeeping settings
type ProgressConfig struct {
	GapTolerance float64 `mapstructure:"gap_tolerance"`
	DefaultUser  string  `mapstructure:"default_user"`
}

// VideoConfig is one entry of the static video registry
type VideoConfig struct {
	Name     string  `mapstructure:"name"`
	URL      string  `mapstructure:"url"`
	Duration float64 `mapstructure:"duration"` // Seconds
}

// RateLimitConfig contains per-client rate limiting settings
type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerSecond int  `mapstructure:"requests_per_second"`
	Burst             int  `mapstructure:"burst"`
}

// SecurityConfig contains security settings
type SecurityConfig struct {
	CORSOrigins     []string `mapstructure:"cors_origins"`
	EnableRequestID bool     `mapstructure:"enable_request_id"`
	MaxBodyBytes    int64    `mapstructure:"max_body_bytes"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// ClientConfig configures the playback client used by the replay command
type ClientConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	UserFile      string        `mapstructure:"user_file"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
	TickInterval  time.Duration `mapstructure:"tick_interval"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// Address returns the host:port the HTTP server listens on
func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
