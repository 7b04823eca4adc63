// Package config loads travelsnap configuration from the environment and an
// optional travelsnap.yaml file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Session store kinds
const (
	SessionStoreFile  = "file"
	SessionStoreRedis = "redis"
)

// Config holds client configuration. Field tags map to environment variable
// names and config file keys (lower-cased).
type Config struct {
	BackendURL     string `mapstructure:"backend_url"`
	BackendService string `mapstructure:"backend_service"`

	ConsulAddr     string `mapstructure:"consul_http_addr"`
	ConsulToken    string `mapstructure:"consul_http_token"`
	ConsulRegister bool   `mapstructure:"consul_register"`

	SessionStore  string `mapstructure:"session_store"`
	SessionFile   string `mapstructure:"session_file"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`

	CountriesURL     string `mapstructure:"countries_url"`
	BoundariesSource string `mapstructure:"boundaries_source"`
	TileURL          string `mapstructure:"tile_url"`

	// RequestTimeout bounds each outgoing HTTP request. Zero means no timeout.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	WebHost string `mapstructure:"web_host"`
	WebPort int    `mapstructure:"web_port"`

	// WebSessionTTL is how long an idle browser keeps its login
	WebSessionTTL time.Duration `mapstructure:"web_session_ttl"`
}

var defaults = map[string]any{
	"backend_url":       "http://127.0.0.1:8000",
	"backend_service":   "",
	"consul_http_addr":  "localhost:8500",
	"consul_http_token": "",
	"consul_register":   false,
	"session_store":     SessionStoreFile,
	"session_file":      "",
	"redis_addr":        "localhost:6379",
	"redis_password":    "",
	"redis_db":          0,
	"countries_url":     "https://restcountries.com/v3.1",
	"boundaries_source": "",
	"tile_url":          "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
	"request_timeout":   time.Duration(0),
	"web_host":          "localhost",
	"web_port":          8090,
	"web_session_ttl":   24 * time.Hour,
}

// Load reads configuration from environment variables and, when present, a
// travelsnap.yaml file in the working directory or the user config directory.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("travelsnap")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "travelsnap"))
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if cfg.SessionFile == "" {
		cfg.SessionFile = DefaultSessionFile()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.BackendURL == "" && c.BackendService == "" {
		return errors.New("one of BACKEND_URL or BACKEND_SERVICE is required")
	}

	switch c.SessionStore {
	case SessionStoreFile:
		if c.SessionFile == "" {
			return errors.New("SESSION_FILE is required for the file session store")
		}
	case SessionStoreRedis:
		if c.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required for the redis session store")
		}
	default:
		return fmt.Errorf("unknown SESSION_STORE %q (want %s or %s)", c.SessionStore, SessionStoreFile, SessionStoreRedis)
	}

	if c.RequestTimeout < 0 {
		return errors.New("REQUEST_TIMEOUT must not be negative")
	}
	return nil
}

// WebAddr returns the listen address of the web front end.
func (c *Config) WebAddr() string {
	return fmt.Sprintf(":%d", c.WebPort)
}

// DefaultSessionFile returns the per-user session file path.
func DefaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "travelsnap", "session.json")
}
