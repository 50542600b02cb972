package app

import (
	"io"

	"mtctl/internal/config"
)

// Config holds the application configuration
type Config struct {
	// ConfigPath is an explicit config file; empty uses the layered lookup.
	ConfigPath string

	// Debug forces debug logging regardless of the configured level
	Debug bool

	// LogOutput receives log lines. It must not be stdout when serving over
	// stdio.
	LogOutput io.Writer

	// Overrides are applied on top of the loaded configuration
	Overrides Overrides

	// MtctlConfig is filled in by NewApplication
	MtctlConfig *config.MtctlConfig
}

// Overrides are command-line values that win over every config layer.
// Zero values leave the loaded setting alone.
type Overrides struct {
	RootDir    string
	IDStrategy string
	Transport  string
	Host       string
	Port       int
}

// NewConfig creates a new application configuration
func NewConfig(configPath string, debug bool) *Config {
	return &Config{
		ConfigPath: configPath,
		Debug:      debug,
	}
}

func (o Overrides) apply(c config.MtctlConfig) config.MtctlConfig {
	if o.RootDir != "" {
		c.Paths.RootDir = o.RootDir
	}
	if o.IDStrategy != "" {
		c.Generator.IDStrategy = o.IDStrategy
	}
	if o.Transport != "" {
		c.Server.Transport = o.Transport
	}
	if o.Host != "" {
		c.Server.Host = o.Host
	}
	if o.Port != 0 {
		c.Server.Port = o.Port
	}
	return c
}
