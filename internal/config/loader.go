package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const configName = "osvs"

// legacyBackendEnv is the variable web builds of the portal read the backend
// origin from. It is honored when OSVS_BACKEND_URL is unset.
const legacyBackendEnv = "VITE_BACKEND_URL"

// InitViper initializes Viper with the configuration file and environment variables.
// If configFile is empty, it searches for osvs.yaml/.yml in standard locations.
// A .env file in the working directory is loaded first; variables already set
// in the environment win.
func InitViper(configFile string) {
	_ = godotenv.Load()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else if found := findConfigFile(); found != "" {
		viper.SetConfigFile(found)
	} else {
		// Name/type without search paths so ReadInConfig returns
		// ConfigFileNotFoundError.
		viper.SetConfigName(configName)
		viper.SetConfigType("yaml")
	}

	// OSVS_BACKEND_URL overrides backend.url
	viper.SetEnvPrefix("OSVS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	bindNestedEnvKeys()

	if v := os.Getenv(legacyBackendEnv); v != "" {
		viper.SetDefault("backend.url", v)
	}
}

// findConfigFile searches standard locations for an osvs config file with an
// explicit YAML extension, so the "osvs" binary itself never matches.
func findConfigFile() string {
	home, _ := os.UserHomeDir()
	paths := []string{
		".",
		filepath.Join(home, ".osvs"),
	}
	if runtime.GOOS == "windows" {
		if pd := os.Getenv("ProgramData"); pd != "" {
			paths = append(paths, filepath.Join(pd, "osvs"))
		}
	} else {
		paths = append(paths, "/etc/osvs")
	}
	return findConfigFileInPaths(paths)
}

// findConfigFileInPaths searches the given directories for osvs.yaml or .yml.
// Returns the full path of the first match, or empty string if none found.
func findConfigFileInPaths(paths []string) string {
	for _, dir := range paths {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, configName+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// bindNestedEnvKeys binds every config key so nested values can be
// overridden, e.g. OSVS_NOTICE_DURATION overrides notice.duration.
func bindNestedEnvKeys() {
	_ = viper.BindEnv("backend.url")
	_ = viper.BindEnv("backend.timeout")
	_ = viper.BindEnv("notice.duration")
	_ = viper.BindEnv("session.file")
	_ = viper.BindEnv("log.level")
	_ = viper.BindEnv("output.format")
	_ = viper.BindEnv("telemetry.trace")
	_ = viper.BindEnv("telemetry.metrics_file")
}

// LoadConfig reads the configuration file, applies environment overrides,
// sets defaults, validates, and returns the Config.
func LoadConfig() (*Config, error) {
	cfg, err := LoadConfigRaw()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// LoadConfigRaw reads the configuration file and applies defaults but does
// not validate. Use this when CLI flags still need to be applied.
func LoadConfigRaw() (*Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.SetDefaults()
	return &cfg, nil
}

// ConfigFileUsed returns the path to the configuration file that was loaded.
// Returns an empty string if no config file was found.
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}
