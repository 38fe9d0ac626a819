package config

import (
	"strings"
	"testing"
)

// minimalValidConfig returns a minimal valid Config for testing.
func minimalValidConfig() *Config {
	cfg := &Config{Backend: BackendConfig{URL: "http://localhost:3000"}}
	cfg.SetDefaults()
	return cfg
}

func TestValidate_ValidConfig(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing url", func(c *Config) { c.Backend.URL = "" }, "Backend.URL is required"},
		{"relative url", func(c *Config) { c.Backend.URL = "/api" }, "http(s) URL"},
		{"ftp url", func(c *Config) { c.Backend.URL = "ftp://host" }, "http(s) URL"},
		{"bad timeout", func(c *Config) { c.Backend.Timeout = "soon" }, "Backend.Timeout must be a positive duration"},
		{"negative notice", func(c *Config) { c.Notice.Duration = "-1s" }, "Notice.Duration must be a positive duration"},
		{"bad level", func(c *Config) { c.Log.Level = "trace" }, "Log.Level must be one of"},
		{"bad format", func(c *Config) { c.Output.Format = "xml" }, "Output.Format must be one of: table json yaml"},
		{"metrics extension", func(c *Config) { c.Telemetry.MetricsFile = "/tmp/m.txt" }, ".prom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := minimalValidConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidate_MultipleErrorsJoined(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	cfg.Backend.URL = ""
	cfg.Output.Format = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error, got nil")
	}
	if got := strings.Count(err.Error(), "; "); got != 1 {
		t.Errorf("error = %q, want two messages joined by '; '", err.Error())
	}
}

func TestValidate_HTTPSWithPort(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	cfg.Backend.URL = "https://portal.example.org:8443"
	cfg.Telemetry.MetricsFile = "/var/lib/node_exporter/osvs.prom"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
}
