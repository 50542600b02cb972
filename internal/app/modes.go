package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"mtctl/internal/mcpserver"
	"mtctl/pkg/logging"
)

// runServer serves MCP until ctx is cancelled or SIGINT/SIGTERM arrives.
func runServer(ctx context.Context, services *Services) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info("Serve", "Starting %s %s", mcpserver.ServerName, mcpserver.ServerVersion)
	if err := services.Server.Run(ctx); err != nil {
		logging.Error("Serve", err, "MCP server stopped with an error")
		return err
	}

	logging.Info("Serve", "MCP server stopped")
	return nil
}
