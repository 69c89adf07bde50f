package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	if config.Server.BaseURL != "http://localhost:8000" {
		t.Errorf("BaseURL = %q", config.Server.BaseURL)
	}
	if got := config.Monitor.PollIntervalDuration(); got != 5*time.Second {
		t.Errorf("PollIntervalDuration() = %v, want 5s", got)
	}
	if config.Monitor.MaxAttempts != 180 {
		t.Errorf("MaxAttempts = %d, want 180", config.Monitor.MaxAttempts)
	}
	if config.Monitor.MaxConsecutiveErrors != 5 {
		t.Errorf("MaxConsecutiveErrors = %d, want 5", config.Monitor.MaxConsecutiveErrors)
	}
	if config.Monitor.BackoffMultiplier != 2 {
		t.Errorf("BackoffMultiplier = %d, want 2", config.Monitor.BackoffMultiplier)
	}
	if got := config.Server.RequestTimeoutDuration(); got != 30*time.Second {
		t.Errorf("RequestTimeoutDuration() = %v, want 30s", got)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("default config failed validation: %v", err)
	}
}

func TestLoadFromFiles_Priority(t *testing.T) {
	dir := t.TempDir()

	base := filepath.Join(dir, "base.toml")
	if err := os.WriteFile(base, []byte(`
[server]
base_url = "https://xebot.example.com"

[monitor]
poll_interval = "2s"
max_attempts = 10
`), 0644); err != nil {
		t.Fatal(err)
	}

	override := filepath.Join(dir, "override.toml")
	if err := os.WriteFile(override, []byte(`
[monitor]
max_attempts = 42
`), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("XEBOT_POLL_INTERVAL", "7s")
	t.Setenv("XEBOT_API_KEY", "xb_test_key")

	config, err := LoadFromFiles(base, override)
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}

	// File overrides default
	if config.Server.BaseURL != "https://xebot.example.com" {
		t.Errorf("BaseURL = %q, want file value", config.Server.BaseURL)
	}
	// Later file overrides earlier file
	if config.Monitor.MaxAttempts != 42 {
		t.Errorf("MaxAttempts = %d, want 42 from override file", config.Monitor.MaxAttempts)
	}
	// Env overrides files
	if got := config.Monitor.PollIntervalDuration(); got != 7*time.Second {
		t.Errorf("PollIntervalDuration() = %v, want 7s from env", got)
	}
	if config.Auth.APIKey != "xb_test_key" {
		t.Errorf("APIKey = %q, want env value", config.Auth.APIKey)
	}
	// Untouched values keep their defaults
	if config.Monitor.BackoffMultiplier != 2 {
		t.Errorf("BackoffMultiplier = %d, want default 2", config.Monitor.BackoffMultiplier)
	}
}

func TestLoadFromFiles_MissingFile(t *testing.T) {
	if _, err := LoadFromFiles("/nonexistent/xebot.toml"); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty base URL", func(c *Config) { c.Server.BaseURL = "" }},
		{"malformed base URL", func(c *Config) { c.Server.BaseURL = "not a url" }},
		{"zero max attempts", func(c *Config) { c.Monitor.MaxAttempts = 0 }},
		{"zero error streak", func(c *Config) { c.Monitor.MaxConsecutiveErrors = 0 }},
		{"zero backoff", func(c *Config) { c.Monitor.BackoffMultiplier = 0 }},
		{"bad poll interval", func(c *Config) { c.Monitor.PollInterval = "soon" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad email", func(c *Config) { c.Auth.Email = "not-an-email" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := NewDefaultConfig()
			tt.mutate(config)
			if err := config.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestDurationFallbacks(t *testing.T) {
	m := MonitorConfig{PollInterval: "garbage"}
	if got := m.PollIntervalDuration(); got != 5*time.Second {
		t.Errorf("PollIntervalDuration() = %v, want 5s fallback", got)
	}
	s := ServerConfig{RequestTimeout: ""}
	if got := s.RequestTimeoutDuration(); got != 30*time.Second {
		t.Errorf("RequestTimeoutDuration() = %v, want 30s fallback", got)
	}
}
