package app

import (
	"mtctl/internal/api/tools"
	"mtctl/internal/generator"
	"mtctl/internal/manualtest"
	"mtctl/internal/mcpserver"
)

// Services holds all the initialized services
type Services struct {
	Manual *manualtest.Service
	Tools  *tools.ManualTestTools
	Server *mcpserver.Server
}

// InitializeServices creates the operation layer and the MCP server around
// it.
func InitializeServices(cfg *Config) (*Services, error) {
	mc := cfg.MtctlConfig

	manual, err := manualtest.New(manualtest.Options{
		RootDir:    mc.Paths.RootDir,
		IDStrategy: generator.Strategy(mc.Generator.IDStrategy),
	})
	if err != nil {
		return nil, err
	}

	mt := tools.NewManualTestTools(manual)

	return &Services{
		Manual: manual,
		Tools:  mt,
		Server: mcpserver.New(mc.Server, mt),
	}, nil
}
