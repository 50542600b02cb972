package app

import (
	"context"
	"fmt"
	"os"

	"mtctl/internal/config"
	"mtctl/pkg/logging"
)

// Application is the main application structure that bootstraps and runs mtctl
type Application struct {
	config   *Config
	services *Services
}

// NewApplication loads configuration, sets up logging and wires the
// services.
func NewApplication(cfg *Config) (*Application, error) {
	if cfg.LogOutput == nil {
		cfg.LogOutput = os.Stderr
	}

	appLogLevel := logging.LevelInfo
	if cfg.Debug {
		appLogLevel = logging.LevelDebug
	}
	logging.InitForCLI(appLogLevel, cfg.LogOutput)

	mtctlCfg, err := config.LoadConfig(cfg.ConfigPath)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to load mtctl configuration")
		return nil, fmt.Errorf("failed to load mtctl configuration: %w", err)
	}
	mtctlCfg = cfg.Overrides.apply(mtctlCfg)
	if err := mtctlCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.MtctlConfig = &mtctlCfg

	if !cfg.Debug {
		level, err := logging.ParseLevel(mtctlCfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		logging.InitForCLI(level, cfg.LogOutput)
	}
	logging.Debug("Bootstrap", "Project root %s, id strategy %s", mtctlCfg.Paths.RootDir, mtctlCfg.Generator.IDStrategy)

	services, err := InitializeServices(cfg)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:   cfg,
		services: services,
	}, nil
}

// Services exposes the wired services to CLI commands.
func (a *Application) Services() *Services {
	return a.services
}

// Config exposes the resolved configuration.
func (a *Application) Config() *config.MtctlConfig {
	return a.config.MtctlConfig
}

// Serve runs the MCP server until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	return runServer(ctx, a.services)
}
