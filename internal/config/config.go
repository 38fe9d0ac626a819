// Package config provides configuration types for the osvs member portal client.
//
// Configuration is file based with environment overrides. Everything has a
// usable default except the backend URL, which must point at a running
// portal backend.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config is the top-level configuration for the osvs client.
type Config struct {
	// Backend configures the portal API endpoint.
	Backend BackendConfig `yaml:"backend" mapstructure:"backend"`

	// Notice configures the transient error banner.
	Notice NoticeConfig `yaml:"notice" mapstructure:"notice"`

	// Session configures where cookies and the signed-in principal persist
	// between invocations.
	Session SessionConfig `yaml:"session" mapstructure:"session"`

	// Log configures structured logging.
	Log LogConfig `yaml:"log" mapstructure:"log"`

	// Output selects how command results are rendered.
	Output OutputConfig `yaml:"output" mapstructure:"output"`

	// Telemetry configures tracing and the metrics snapshot.
	Telemetry TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
}

// BackendConfig points the client at the portal backend.
type BackendConfig struct {
	// URL is the backend origin, e.g. "http://localhost:3000".
	// The "/api" prefix is appended by the client.
	URL string `yaml:"url" mapstructure:"url" validate:"required,backend_url"`
	// Timeout bounds a single HTTP request (e.g., "10s").
	// Default: "10s".
	Timeout string `yaml:"timeout" mapstructure:"timeout" validate:"omitempty,duration"`
}

// NoticeConfig configures the transient error channel.
type NoticeConfig struct {
	// Duration is how long a banner message stays visible.
	// Default: "6s".
	Duration string `yaml:"duration" mapstructure:"duration" validate:"omitempty,duration"`
}

// SessionConfig configures session persistence.
type SessionConfig struct {
	// File is the session file path. A leading "~/" expands to the home directory.
	// Default: "~/.osvs/session.json".
	File string `yaml:"file" mapstructure:"file"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: "info".
	Level string `yaml:"level" mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
}

// OutputConfig selects the result renderer.
type OutputConfig struct {
	// Format is one of table, json, yaml.
	// Default: "table".
	Format string `yaml:"format" mapstructure:"format" validate:"omitempty,oneof=table json yaml"`
}

// TelemetryConfig configures tracing and metrics.
type TelemetryConfig struct {
	// Trace writes OpenTelemetry spans to stderr when true.
	Trace bool `yaml:"trace" mapstructure:"trace"`
	// MetricsFile, when set, receives a Prometheus text snapshot at exit.
	MetricsFile string `yaml:"metrics_file" mapstructure:"metrics_file"`
}

// SetDefaults applies default values to unset fields.
func (c *Config) SetDefaults() {
	c.Backend.URL = strings.TrimRight(c.Backend.URL, "/")
	if c.Backend.Timeout == "" {
		c.Backend.Timeout = "10s"
	}
	if c.Notice.Duration == "" {
		c.Notice.Duration = "6s"
	}
	if c.Session.File == "" {
		c.Session.File = "~/.osvs/session.json"
	}
	c.Session.File = expandHome(c.Session.File)
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Output.Format == "" {
		c.Output.Format = "table"
	}
}

// RequestTimeout returns the parsed backend timeout, or 10s if unparseable.
func (c *Config) RequestTimeout() time.Duration {
	return parseDuration(c.Backend.Timeout, 10*time.Second)
}

// NoticeDuration returns the parsed banner duration, or 6s if unparseable.
func (c *Config) NoticeDuration() time.Duration {
	return parseDuration(c.Notice.Duration, 6*time.Second)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
