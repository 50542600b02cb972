package app

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mtctl/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/etc/mtctl.yaml", true)

	assert.Equal(t, "/etc/mtctl.yaml", cfg.ConfigPath)
	assert.True(t, cfg.Debug)
	assert.Nil(t, cfg.MtctlConfig, "MtctlConfig should be nil before loading")
}

func TestOverrides_Apply(t *testing.T) {
	base := config.GetDefaultConfig()

	got := Overrides{RootDir: "qa", Transport: config.TransportSSE, Port: 9000}.apply(base)

	assert.Equal(t, "qa", got.Paths.RootDir)
	assert.Equal(t, config.TransportSSE, got.Server.Transport)
	assert.Equal(t, 9000, got.Server.Port)
	assert.Equal(t, base.Server.Host, got.Server.Host)
	assert.Equal(t, base.Generator.IDStrategy, got.Generator.IDStrategy)

	assert.Equal(t, base, Overrides{}.apply(base))
}

func TestNewApplication(t *testing.T) {
	path := writeConfig(t, `paths:
  rootDir: qa/manual
generator:
  idStrategy: timestamp
server:
  transport: sse
  port: 9100
logLevel: warn
`)
	var logs bytes.Buffer
	cfg := NewConfig(path, false)
	cfg.LogOutput = &logs
	cfg.Overrides = Overrides{Port: 9200}

	application, err := NewApplication(cfg)

	require.NoError(t, err)
	resolved := application.Config()
	assert.Equal(t, "qa/manual", resolved.Paths.RootDir)
	assert.Equal(t, "timestamp", resolved.Generator.IDStrategy)
	assert.Equal(t, 9200, resolved.Server.Port)

	services := application.Services()
	require.NotNil(t, services.Manual)
	require.NotNil(t, services.Server)
	assert.Len(t, services.Tools.GetTools(), 11)
}

func TestNewApplication_Errors(t *testing.T) {
	tests := []struct {
		name      string
		config    string
		overrides Overrides
		missing   bool
		wantErr   string
	}{
		{
			name:    "missing explicit file",
			missing: true,
			wantErr: "failed to load mtctl configuration",
		},
		{
			name:      "bad strategy override",
			config:    "logLevel: info\n",
			overrides: Overrides{IDStrategy: "uuid"},
			wantErr:   "invalid configuration",
		},
		{
			name:    "bad log level",
			config:  "logLevel: loud\n",
			wantErr: "invalid configuration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "absent.yaml")
			if !tt.missing {
				path = writeConfig(t, tt.config)
			}
			cfg := NewConfig(path, false)
			cfg.LogOutput = &bytes.Buffer{}
			cfg.Overrides = tt.overrides

			_, err := NewApplication(cfg)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
