package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestConfig_SetDefaults(t *testing.T) {
	t.Parallel()

	var cfg Config
	cfg.SetDefaults()

	if cfg.Backend.Timeout != "10s" {
		t.Errorf("Backend.Timeout = %q, want %q", cfg.Backend.Timeout, "10s")
	}
	if cfg.Notice.Duration != "6s" {
		t.Errorf("Notice.Duration = %q, want %q", cfg.Notice.Duration, "6s")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
	if cfg.Output.Format != "table" {
		t.Errorf("Output.Format = %q, want %q", cfg.Output.Format, "table")
	}
	if !strings.HasSuffix(cfg.Session.File, filepath.Join(".osvs", "session.json")) {
		t.Errorf("Session.File = %q, want suffix .osvs/session.json", cfg.Session.File)
	}
	if strings.HasPrefix(cfg.Session.File, "~") {
		t.Errorf("Session.File = %q, want home expanded", cfg.Session.File)
	}
}

func TestConfig_SetDefaults_PreservesExistingValues(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Backend: BackendConfig{URL: "http://portal.local/", Timeout: "3s"},
		Notice:  NoticeConfig{Duration: "2s"},
		Session: SessionConfig{File: "/tmp/s.json"},
		Log:     LogConfig{Level: "debug"},
		Output:  OutputConfig{Format: "json"},
	}
	cfg.SetDefaults()

	if cfg.Backend.URL != "http://portal.local" {
		t.Errorf("Backend.URL = %q, want trailing slash trimmed", cfg.Backend.URL)
	}
	if cfg.Backend.Timeout != "3s" || cfg.Notice.Duration != "2s" {
		t.Errorf("durations overwritten: %q %q", cfg.Backend.Timeout, cfg.Notice.Duration)
	}
	if cfg.Session.File != "/tmp/s.json" || cfg.Log.Level != "debug" || cfg.Output.Format != "json" {
		t.Errorf("values overwritten: %+v", cfg)
	}
}

func TestConfig_Durations(t *testing.T) {
	t.Parallel()

	cfg := Config{Backend: BackendConfig{Timeout: "250ms"}, Notice: NoticeConfig{Duration: "bogus"}}
	if got := cfg.RequestTimeout(); got != 250*time.Millisecond {
		t.Errorf("RequestTimeout() = %v, want 250ms", got)
	}
	if got := cfg.NoticeDuration(); got != 6*time.Second {
		t.Errorf("NoticeDuration() = %v, want fallback 6s", got)
	}
}

func TestExpandHome(t *testing.T) {
	t.Parallel()

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := expandHome("~/x/y"); got != filepath.Join(home, "x", "y") {
		t.Errorf("expandHome(~/x/y) = %q", got)
	}
	if got := expandHome("~user/x"); got != "~user/x" {
		t.Errorf("expandHome(~user/x) = %q, want unchanged", got)
	}
	if got := expandHome("/abs"); got != "/abs" {
		t.Errorf("expandHome(/abs) = %q, want unchanged", got)
	}
}

func TestFindConfigFileInPaths_EmptyDir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	got := findConfigFileInPaths([]string{dir})
	if got != "" {
		t.Errorf("findConfigFileInPaths(empty dir) = %q, want empty", got)
	}
}

func TestFindConfigFileInPaths_MatchesYML(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "osvs.yml")
	_ = os.WriteFile(cfgPath, []byte("backend:\n  url: http://localhost:3000\n"), 0644)

	got := findConfigFileInPaths([]string{dir})
	if got != cfgPath {
		t.Errorf("findConfigFileInPaths = %q, want %q", got, cfgPath)
	}
}

func TestFindConfigFileInPaths_IgnoresNoExtension(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	_ = os.WriteFile(filepath.Join(dir, "osvs"), []byte("\x7fELF binary"), 0755)

	got := findConfigFileInPaths([]string{dir})
	if got != "" {
		t.Errorf("findConfigFileInPaths matched binary = %q, want empty", got)
	}
}

func TestFindConfigFileInPaths_SearchOrder(t *testing.T) {
	t.Parallel()
	first := t.TempDir()
	second := t.TempDir()
	yamlPath := filepath.Join(first, "osvs.yaml")
	_ = os.WriteFile(yamlPath, []byte("log:\n  level: debug\n"), 0644)
	_ = os.WriteFile(filepath.Join(first, "osvs.yml"), []byte("log:\n  level: warn\n"), 0644)
	_ = os.WriteFile(filepath.Join(second, "osvs.yaml"), []byte("log:\n  level: error\n"), 0644)

	got := findConfigFileInPaths([]string{first, second})
	if got != yamlPath {
		t.Errorf("findConfigFileInPaths = %q, want %q (.yaml in first dir)", got, yamlPath)
	}
}

// Not parallel: viper and the process environment are global.
func TestLoadConfig_FileAndEnv(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "osvs.yaml")
	content := "backend:\n  url: http://file.local\n  timeout: 4s\noutput:\n  format: yaml\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OSVS_BACKEND_TIMEOUT", "7s")

	InitViper(cfgPath)
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Backend.URL != "http://file.local" {
		t.Errorf("Backend.URL = %q", cfg.Backend.URL)
	}
	if cfg.Backend.Timeout != "7s" {
		t.Errorf("Backend.Timeout = %q, want env override 7s", cfg.Backend.Timeout)
	}
	if cfg.Output.Format != "yaml" {
		t.Errorf("Output.Format = %q, want yaml", cfg.Output.Format)
	}
	if ConfigFileUsed() != cfgPath {
		t.Errorf("ConfigFileUsed() = %q, want %q", ConfigFileUsed(), cfgPath)
	}
}

func TestLoadConfig_LegacyBackendEnv(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "osvs.yaml")
	if err := os.WriteFile(cfgPath, []byte("log:\n  level: warn\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(legacyBackendEnv, "http://legacy.local:3000")

	InitViper(cfgPath)
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Backend.URL != "http://legacy.local:3000" {
		t.Errorf("Backend.URL = %q, want legacy fallback", cfg.Backend.URL)
	}
}

func TestLoadConfig_MissingBackend(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "osvs.yaml")
	if err := os.WriteFile(cfgPath, []byte("log:\n  level: warn\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(legacyBackendEnv, "")

	InitViper(cfgPath)
	_, err := LoadConfig()
	if err == nil || !strings.Contains(err.Error(), "Config.Backend.URL is required") {
		t.Errorf("LoadConfig() error = %v, want backend url required", err)
	}
}
