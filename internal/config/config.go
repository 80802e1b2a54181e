// Package config defines client configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New() initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"os"
	"path/filepath"
)

// Default backend location; overridable via file or env.
const defaultBaseURL = "http://localhost:5000/api"

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// BaseURL is the backend API root, e.g. "http://localhost:5000/api".
	BaseURL string `koanf:"base_url"`

	// TimeoutMS bounds each API request.
	TimeoutMS int `koanf:"timeout_ms"`

	// StatePath locates the persisted session file.
	StatePath string `koanf:"state_path"`

	// MetricsAddr optionally exposes a Prometheus scrape endpoint.
	// Empty disables it.
	MetricsAddr string `koanf:"metrics_addr"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:    "info",
		BaseURL:     defaultBaseURL,
		TimeoutMS:   15_000,
		StatePath:   defaultStatePath(),
		MetricsAddr: "",
	}
}

// defaultStatePath places the session file under the user's home directory,
// falling back to the working directory when home cannot be resolved.
func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "mahara_session.json"
	}
	return filepath.Join(home, ".mahara", "session.json")
}
