package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir
var osGetwd = os.Getwd
var osLookupEnv = os.LookupEnv

const (
	userConfigDir    = ".config/mtctl"
	projectConfigDir = ".mtctl"
	configFileName   = "config.yaml"
	envFileName      = ".env"
)

// Environment variables that override file configuration.
const (
	EnvRootDir    = "MTCTL_ROOT_DIR"
	EnvIDStrategy = "MTCTL_ID_STRATEGY"
	EnvTransport  = "MTCTL_TRANSPORT"
	EnvHost       = "MTCTL_HOST"
	EnvPort       = "MTCTL_PORT"
	EnvLogLevel   = "MTCTL_LOG_LEVEL"
)

// LoadConfig layers defaults, the user config, the project config, an
// optional explicit file and finally MTCTL_* environment variables. A .env
// file in the working directory is loaded into the environment first; it
// never overrides variables that are already set.
func LoadConfig(explicitPath string) (MtctlConfig, error) {
	config := GetDefaultConfig()

	if err := loadDotEnv(); err != nil {
		return MtctlConfig{}, err
	}

	userConfigPath, err := getUserConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not determine user config path: %v\n", err)
	} else if config, err = overlayFile(config, userConfigPath, false); err != nil {
		return MtctlConfig{}, fmt.Errorf("error loading user config from %s: %w", userConfigPath, err)
	}

	projectConfigPath, err := getProjectConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not determine project config path: %v\n", err)
	} else if config, err = overlayFile(config, projectConfigPath, false); err != nil {
		return MtctlConfig{}, fmt.Errorf("error loading project config from %s: %w", projectConfigPath, err)
	}

	if explicitPath != "" {
		if config, err = overlayFile(config, explicitPath, true); err != nil {
			return MtctlConfig{}, fmt.Errorf("error loading config from %s: %w", explicitPath, err)
		}
	}

	if config, err = applyEnv(config); err != nil {
		return MtctlConfig{}, err
	}
	if err := config.Validate(); err != nil {
		return MtctlConfig{}, err
	}
	return config, nil
}

var getUserConfigPath = func() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

var getProjectConfigPath = func() (string, error) {
	wd, err := osGetwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, projectConfigDir, configFileName), nil
}

func loadDotEnv() error {
	wd, err := osGetwd()
	if err != nil {
		return nil
	}
	path := filepath.Join(wd, envFileName)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("error loading %s: %w", path, err)
	}
	return nil
}

// overlayFile merges the file at path into base. A missing file is skipped
// unless required.
func overlayFile(base MtctlConfig, path string, required bool) (MtctlConfig, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) && !required {
		return base, nil
	}
	overlay, err := loadConfigFromFile(path)
	if err != nil {
		return base, err
	}
	return mergeConfigs(base, overlay), nil
}

// loadConfigFromFile loads an MtctlConfig from a YAML file.
func loadConfigFromFile(filePath string) (MtctlConfig, error) {
	var config MtctlConfig
	data, err := os.ReadFile(filePath)
	if err != nil {
		return MtctlConfig{}, err
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return MtctlConfig{}, err
	}
	return config, nil
}

// mergeConfigs merges 'overlay' config into 'base' config. Empty overlay
// fields keep the base value.
func mergeConfigs(base, overlay MtctlConfig) MtctlConfig {
	merged := base

	if overlay.Paths.RootDir != "" {
		merged.Paths.RootDir = overlay.Paths.RootDir
	}
	if overlay.Paths.TestCasesDir != "" {
		merged.Paths.TestCasesDir = overlay.Paths.TestCasesDir
	}
	if overlay.Paths.ResultsDir != "" {
		merged.Paths.ResultsDir = overlay.Paths.ResultsDir
	}

	if overlay.Generator.IDStrategy != "" {
		merged.Generator.IDStrategy = overlay.Generator.IDStrategy
	}

	if overlay.Server.Transport != "" {
		merged.Server.Transport = overlay.Server.Transport
	}
	if overlay.Server.Host != "" {
		merged.Server.Host = overlay.Server.Host
	}
	if overlay.Server.Port != 0 {
		merged.Server.Port = overlay.Server.Port
	}

	if overlay.LogLevel != "" {
		merged.LogLevel = overlay.LogLevel
	}
	return merged
}

func applyEnv(config MtctlConfig) (MtctlConfig, error) {
	if v, ok := osLookupEnv(EnvRootDir); ok && v != "" {
		config.Paths.RootDir = v
	}
	if v, ok := osLookupEnv(EnvIDStrategy); ok && v != "" {
		config.Generator.IDStrategy = v
	}
	if v, ok := osLookupEnv(EnvTransport); ok && v != "" {
		config.Server.Transport = v
	}
	if v, ok := osLookupEnv(EnvHost); ok && v != "" {
		config.Server.Host = v
	}
	if v, ok := osLookupEnv(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return config, fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}
		config.Server.Port = port
	}
	if v, ok := osLookupEnv(EnvLogLevel); ok && v != "" {
		config.LogLevel = v
	}
	return config, nil
}

// Validate rejects settings no command can work with.
func (c MtctlConfig) Validate() error {
	switch c.Generator.IDStrategy {
	case "", "sequential", "timestamp", "random":
	default:
		return fmt.Errorf("invalid generator.idStrategy %q: must be one of sequential, timestamp, random", c.Generator.IDStrategy)
	}
	switch c.Server.Transport {
	case "", TransportStdio, TransportSSE:
	default:
		return fmt.Errorf("invalid server.transport %q: must be %s or %s", c.Server.Transport, TransportStdio, TransportSSE)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	return nil
}

// GetUserConfigDir returns the user configuration directory path
func GetUserConfigDir() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir), nil
}
