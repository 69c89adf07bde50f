package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Auth    AuthConfig    `toml:"auth"`
	Monitor MonitorConfig `toml:"monitor"`
	Storage StorageConfig `toml:"storage"`
	Logging LoggingConfig `toml:"logging"`
}

// ServerConfig locates the Xe-Bot animation service
type ServerConfig struct {
	BaseURL        string `toml:"base_url" validate:"required,url"`
	RequestTimeout string `toml:"request_timeout"` // e.g. "30s"
	RateLimit      int    `toml:"rate_limit"`      // requests per second against the API
}

// AuthConfig carries the stored API credential. When APIKey is empty a new
// key is issued from the service on first use and held for the process
// lifetime.
type AuthConfig struct {
	APIKey  string `toml:"api_key"`
	KeyName string `toml:"key_name"` // name registered when issuing a new key
	Email   string `toml:"email" validate:"omitempty,email"`
}

// MonitorConfig carries the polling policy for job monitoring.
// Durations are strings ("5s", "500ms") parsed at use.
type MonitorConfig struct {
	PollInterval         string `toml:"poll_interval"`
	MaxAttempts          int    `toml:"max_attempts" validate:"gte=1"`
	MaxConsecutiveErrors int    `toml:"max_consecutive_errors" validate:"gte=1"`
	BackoffMultiplier    int    `toml:"backoff_multiplier" validate:"gte=1"`
}

// PollIntervalDuration parses the poll interval, falling back to 5s
func (m MonitorConfig) PollIntervalDuration() time.Duration {
	if d, err := time.ParseDuration(m.PollInterval); err == nil && d > 0 {
		return d
	}
	return 5 * time.Second
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents the local job history database
type BadgerConfig struct {
	Path string `toml:"path"`
}

type LoggingConfig struct {
	Level  string   `toml:"level" validate:"omitempty,oneof=debug info warn error"`
	Output []string `toml:"output"` // "stdout", "file"
}

// RequestTimeoutDuration parses the HTTP request timeout, falling back to 30s
func (s ServerConfig) RequestTimeoutDuration() time.Duration {
	if d, err := time.ParseDuration(s.RequestTimeout); err == nil && d > 0 {
		return d
	}
	return 30 * time.Second
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL:        "http://localhost:8000",
			RequestTimeout: "30s",
			RateLimit:      5,
		},
		Auth: AuthConfig{
			KeyName: "xebot-cli",
		},
		Monitor: MonitorConfig{
			PollInterval:         "5s",
			MaxAttempts:          180, // 15 minutes at the default interval
			MaxConsecutiveErrors: 5,
			BackoffMultiplier:    2,
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/history",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
	}
}

// LoadFromFiles loads configuration with priority: defaults -> file1 -> file2
// -> ... -> env. Later files override earlier files; environment variables
// override all files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the configuration against its struct constraints
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := time.ParseDuration(c.Monitor.PollInterval); err != nil {
		return fmt.Errorf("invalid configuration: monitor.poll_interval: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	// Server configuration
	if baseURL := os.Getenv("XEBOT_BASE_URL"); baseURL != "" {
		config.Server.BaseURL = baseURL
	}
	if timeout := os.Getenv("XEBOT_REQUEST_TIMEOUT"); timeout != "" {
		if _, err := time.ParseDuration(timeout); err == nil {
			config.Server.RequestTimeout = timeout
		}
	}
	if rateLimit := os.Getenv("XEBOT_RATE_LIMIT"); rateLimit != "" {
		if rl, err := strconv.Atoi(rateLimit); err == nil {
			config.Server.RateLimit = rl
		}
	}

	// Auth configuration
	if apiKey := os.Getenv("XEBOT_API_KEY"); apiKey != "" {
		config.Auth.APIKey = apiKey
	}
	if keyName := os.Getenv("XEBOT_KEY_NAME"); keyName != "" {
		config.Auth.KeyName = keyName
	}

	// Monitor configuration
	if pollInterval := os.Getenv("XEBOT_POLL_INTERVAL"); pollInterval != "" {
		if _, err := time.ParseDuration(pollInterval); err == nil {
			config.Monitor.PollInterval = pollInterval
		}
	}
	if maxAttempts := os.Getenv("XEBOT_MAX_ATTEMPTS"); maxAttempts != "" {
		if ma, err := strconv.Atoi(maxAttempts); err == nil {
			config.Monitor.MaxAttempts = ma
		}
	}
	if maxErrors := os.Getenv("XEBOT_MAX_CONSECUTIVE_ERRORS"); maxErrors != "" {
		if me, err := strconv.Atoi(maxErrors); err == nil {
			config.Monitor.MaxConsecutiveErrors = me
		}
	}
	if backoff := os.Getenv("XEBOT_BACKOFF_MULTIPLIER"); backoff != "" {
		if b, err := strconv.Atoi(backoff); err == nil {
			config.Monitor.BackoffMultiplier = b
		}
	}

	// Storage configuration
	if badgerPath := os.Getenv("XEBOT_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("XEBOT_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}
