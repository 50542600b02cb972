package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// Helper function to create a temporary config file
func createTempConfigFile(t *testing.T, dir string, filename string, content MtctlConfig) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	tempFilePath := filepath.Join(dir, filename)
	data, err := yaml.Marshal(&content)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(tempFilePath, data, 0644))
	return tempFilePath
}

// isolate points every lookup at tempDir and replaces the environment with env.
func isolate(t *testing.T, tempDir string, env map[string]string) {
	t.Helper()
	originalGetUserConfigPath := getUserConfigPath
	originalGetProjectConfigPath := getProjectConfigPath
	originalOsGetwd := osGetwd
	originalOsLookupEnv := osLookupEnv
	t.Cleanup(func() {
		getUserConfigPath = originalGetUserConfigPath
		getProjectConfigPath = originalGetProjectConfigPath
		osGetwd = originalOsGetwd
		osLookupEnv = originalOsLookupEnv
	})

	getUserConfigPath = func() (string, error) {
		return filepath.Join(tempDir, "home", userConfigDir, configFileName), nil
	}
	getProjectConfigPath = func() (string, error) {
		return filepath.Join(tempDir, "project", projectConfigDir, configFileName), nil
	}
	osGetwd = func() (string, error) { return filepath.Join(tempDir, "project"), nil }
	osLookupEnv = func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestLoadConfig_DefaultOnly(t *testing.T) {
	isolate(t, t.TempDir(), nil)

	loadedConfig, err := LoadConfig("")

	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), loadedConfig)
	assert.Equal(t, filepath.Join("tests", "manual-tests", "test-cases"), loadedConfig.Paths.TestCasesPath())
	assert.Equal(t, filepath.Join("tests", "manual-tests", "test-results"), loadedConfig.Paths.ResultsPath())
}

func TestLoadConfig_Layering(t *testing.T) {
	tempDir := t.TempDir()
	isolate(t, tempDir, nil)

	createTempConfigFile(t, filepath.Join(tempDir, "home", userConfigDir), configFileName, MtctlConfig{
		Paths:     PathsConfig{RootDir: "qa"},
		Generator: GeneratorConfig{IDStrategy: "timestamp"},
		Server:    ServerConfig{Port: 9000},
	})
	createTempConfigFile(t, filepath.Join(tempDir, "project", projectConfigDir), configFileName, MtctlConfig{
		Paths:  PathsConfig{ResultsDir: "/var/results"},
		Server: ServerConfig{Port: 9100, Transport: TransportSSE},
	})

	loadedConfig, err := LoadConfig("")

	require.NoError(t, err)
	assert.Equal(t, "qa", loadedConfig.Paths.RootDir)
	assert.Equal(t, filepath.Join("qa", "test-cases"), loadedConfig.Paths.TestCasesPath())
	assert.Equal(t, "/var/results", loadedConfig.Paths.ResultsPath())
	assert.Equal(t, "timestamp", loadedConfig.Generator.IDStrategy)
	assert.Equal(t, 9100, loadedConfig.Server.Port)
	assert.Equal(t, TransportSSE, loadedConfig.Server.Transport)
	assert.Equal(t, "localhost", loadedConfig.Server.Host)
}

func TestLoadConfig_ExplicitFileAndEnv(t *testing.T) {
	tempDir := t.TempDir()
	isolate(t, tempDir, map[string]string{
		EnvPort:     "7000",
		EnvLogLevel: "debug",
	})

	explicit := createTempConfigFile(t, filepath.Join(tempDir, "custom"), "mtctl.yaml", MtctlConfig{
		Server: ServerConfig{Port: 8000, Host: "0.0.0.0"},
	})

	loadedConfig, err := LoadConfig(explicit)

	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", loadedConfig.Server.Host)
	assert.Equal(t, 7000, loadedConfig.Server.Port)
	assert.Equal(t, "debug", loadedConfig.LogLevel)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	tempDir := t.TempDir()
	isolate(t, tempDir, nil)

	_, err := LoadConfig(filepath.Join(tempDir, "nope.yaml"))

	assert.Error(t, err)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	tempDir := t.TempDir()
	isolate(t, tempDir, nil)
	osLookupEnv = os.LookupEnv

	require.NoError(t, os.Unsetenv(EnvIDStrategy))
	t.Cleanup(func() { os.Unsetenv(EnvIDStrategy) })

	projectDir := filepath.Join(tempDir, "project")
	require.NoError(t, os.MkdirAll(projectDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, envFileName), []byte(EnvIDStrategy+"=random\n"), 0644))

	loadedConfig, err := LoadConfig("")

	require.NoError(t, err)
	assert.Equal(t, "random", loadedConfig.Generator.IDStrategy)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		project string
		wantErr string
	}{
		{
			name:    "malformed yaml",
			project: "paths: [unclosed",
			wantErr: "error loading project config",
		},
		{
			name:    "bad port",
			env:     map[string]string{EnvPort: "eighty"},
			wantErr: `invalid MTCTL_PORT "eighty"`,
		},
		{
			name:    "bad strategy",
			env:     map[string]string{EnvIDStrategy: "uuid"},
			wantErr: `invalid generator.idStrategy "uuid"`,
		},
		{
			name:    "bad transport",
			project: "server:\n  transport: websocket\n",
			wantErr: `invalid server.transport "websocket"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			isolate(t, tempDir, tt.env)
			if tt.project != "" {
				dir := filepath.Join(tempDir, "project", projectConfigDir)
				require.NoError(t, os.MkdirAll(dir, 0755))
				require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte(tt.project), 0644))
			}

			_, err := LoadConfig("")

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetUserConfigDir(t *testing.T) {
	originalOsUserHomeDir := osUserHomeDir
	defer func() { osUserHomeDir = originalOsUserHomeDir }()
	osUserHomeDir = func() (string, error) { return "/home/tester", nil }

	dir, err := GetUserConfigDir()

	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/tester", ".config", "mtctl"), dir)
}
