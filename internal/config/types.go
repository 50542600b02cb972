package config

import "path/filepath"

// MtctlConfig is the top-level configuration structure for mtctl.
type MtctlConfig struct {
	Paths     PathsConfig     `yaml:"paths"`
	Generator GeneratorConfig `yaml:"generator"`
	Server    ServerConfig    `yaml:"server"`
	LogLevel  string          `yaml:"logLevel,omitempty"` // debug, info, warn or error
}

// PathsConfig locates the manual test project on disk.
type PathsConfig struct {
	RootDir      string `yaml:"rootDir,omitempty"`      // Project root created by init (default: tests/manual-tests)
	TestCasesDir string `yaml:"testCasesDir,omitempty"` // Defaults to <rootDir>/test-cases
	ResultsDir   string `yaml:"resultsDir,omitempty"`   // Defaults to <rootDir>/test-results
}

// TestCasesPath returns the configured test-case directory.
func (p PathsConfig) TestCasesPath() string {
	if p.TestCasesDir != "" {
		return p.TestCasesDir
	}
	return filepath.Join(p.RootDir, "test-cases")
}

// ResultsPath returns the configured results directory.
func (p PathsConfig) ResultsPath() string {
	if p.ResultsDir != "" {
		return p.ResultsDir
	}
	return filepath.Join(p.RootDir, "test-results")
}

// GeneratorConfig controls test-case id generation.
type GeneratorConfig struct {
	IDStrategy string `yaml:"idStrategy,omitempty"` // sequential, timestamp or random
}

const (
	// TransportStdio serves MCP over standard input and output.
	TransportStdio = "stdio"
	// TransportSSE serves MCP over HTTP Server-Sent Events.
	TransportSSE = "sse"
)

// ServerConfig defines how the MCP server is exposed.
type ServerConfig struct {
	Transport string `yaml:"transport,omitempty"` // stdio or sse (default: stdio)
	Host      string `yaml:"host,omitempty"`      // Host to bind to for sse (default: localhost)
	Port      int    `yaml:"port,omitempty"`      // Port for sse (default: 8090)
}

// GetDefaultConfig returns the built-in defaults.
func GetDefaultConfig() MtctlConfig {
	return MtctlConfig{
		Paths: PathsConfig{
			RootDir: filepath.Join("tests", "manual-tests"),
		},
		Generator: GeneratorConfig{
			IDStrategy: "sequential",
		},
		Server: ServerConfig{
			Transport: TransportStdio,
			Host:      "localhost",
			Port:      8090,
		},
		LogLevel: "info",
	}
}
