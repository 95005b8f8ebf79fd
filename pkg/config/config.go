package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	apperrors "github.com/killallgit/resume-api/pkg/errors"
	"github.com/spf13/viper"
)

// DefaultConfigFile is read when no other file is given
const DefaultConfigFile = "./config/settings.yaml"

var (
	once       sync.Once
	initErr    error
	configFile = DefaultConfigFile
)

// SetConfigFile overrides the settings file read by Init
func SetConfigFile(path string) {
	if path != "" {
		configFile = path
	}
}

// Init initializes the configuration system
// This should be called once at application startup
func Init() error {
	once.Do(func() {
		setDefaults()

		// RESUME_SERVER_PORT overrides server.port
		viper.SetEnvPrefix("RESUME")
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		viper.AutomaticEnv()

		path := filepath.Clean(configFile)
		viper.SetConfigFile(path)

		if err := viper.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !os.IsNotExist(err) && !stderrors.As(err, &notFound) {
				initErr = fmt.Errorf("error reading config file %s: %w", path, err)
				return
			}
			// Missing file is fine, defaults and env vars apply
		}

		cfg, err := GetConfig()
		if err != nil {
			initErr = err
			return
		}
		if err := cfg.Validate(); err != nil {
			initErr = fmt.Errorf("invalid configuration: %w", err)
		}
	})

	return initErr
}

// Reset clears loaded state so Init can run again. Tests only.
func Reset() {
	viper.Reset()
	once = sync.Once{}
	initErr = nil
	configFile = DefaultConfigFile
}

// GetConfig returns the current configuration as a struct
// Init() must be called before using this
func GetConfig() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &config, nil
}

// GetString returns a string config value
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetFloat64 returns a float config value
func GetFloat64(key string) float64 {
	return viper.GetFloat64(key)
}

// GetBool returns a bool config value
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration returns a time.Duration config value
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// Set overrides a config value, used for flag overrides
func Set(key string, value any) {
	viper.Set(key, value)
}

// Validate validates a Config struct
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return apperrors.ConfigError("server.port", fmt.Sprintf("invalid server port: %d", c.Server.Port))
	}

	switch c.Database.Driver {
	case "", "sqlite":
		// An empty path disables persistence checks until serve time
	case "postgres":
		if c.Database.DSN == "" {
			return apperrors.ConfigError("database.dsn", "required for the postgres driver")
		}
	default:
		return apperrors.ConfigError("database.driver", fmt.Sprintf("unknown database driver: %q", c.Database.Driver))
	}

	if c.Progress.GapTolerance < 0 {
		return apperrors.ConfigError("progress.gap_tolerance", fmt.Sprintf("cannot be negative: %v", c.Progress.GapTolerance))
	}

	seen := make(map[string]bool, len(c.Videos))
	for i, v := range c.Videos {
		if v.Name == "" {
			return apperrors.ConfigError(fmt.Sprintf("videos[%d].name", i), "name is required")
		}
		if v.URL == "" {
			return apperrors.ConfigError(fmt.Sprintf("videos[%d].url", i), fmt.Sprintf("url of %q is required", v.Name))
		}
		if v.Duration <= 0 {
			return apperrors.ConfigError(fmt.Sprintf("videos[%d].duration", i), fmt.Sprintf("duration of %q must be positive", v.Name))
		}
		if seen[v.Name] {
			return apperrors.ConfigError(fmt.Sprintf("videos[%d].name", i), fmt.Sprintf("%q is configured twice", v.Name))
		}
		seen[v.Name] = true
	}

	if c.Environment == "production" && len(c.Security.CORSOrigins) == 1 && c.Security.CORSOrigins[0] == "*" {
		fmt.Println("Warning: CORS allows every origin in production")
	}

	return nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("environment", "development")

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 3000)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)
	viper.SetDefault("server.shutdown_timeout", 10*time.Second)
	viper.SetDefault("server.max_header_bytes", 1048576)

	// Database defaults. SQLite has a single writer, one connection avoids
	// "database is locked" under concurrent syncs.
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.path", "./data/progression.db")
	viper.SetDefault("database.dsn", "")
	viper.SetDefault("database.max_connections", 1)
	viper.SetDefault("database.verbose", false)

	// Progress defaults
	viper.SetDefault("progress.gap_tolerance", 30.0)
	viper.SetDefault("progress.default_user", "anonymous")

	// Video registry
	viper.SetDefault("videos", []map[string]interface{}{
		{
			"name":     "Sintel-blender-demo",
			"url":      "http://commondatastorage.googleapis.com/gtv-videos-bucket/sample/Sintel.mp4",
			"duration": 888.0,
		},
	})

	// Rate limiting defaults. A client syncs once per seek plus once on unload.
	viper.SetDefault("rate_limiting.enabled", true)
	viper.SetDefault("rate_limiting.requests_per_second", 10)
	viper.SetDefault("rate_limiting.burst", 20)

	// Security defaults
	viper.SetDefault("security.cors_origins", []string{"*"})
	viper.SetDefault("security.enable_request_id", true)
	viper.SetDefault("security.max_body_bytes", 1024*1024)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")

	// Client defaults
	viper.SetDefault("client.base_url", "http://localhost:3000")
	viper.SetDefault("client.user_file", "./user.json")
	viper.SetDefault("client.retry_attempts", 3)
	viper.SetDefault("client.retry_delay", 500*time.Millisecond)
	viper.SetDefault("client.tick_interval", time.Second)
	viper.SetDefault("client.timeout", 10*time.Second)
}
