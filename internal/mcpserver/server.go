// Package mcpserver serves the manual-test tools over MCP, either on
// stdin/stdout or as SSE over HTTP.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/mcp-go/server"

	"mtctl/internal/api/tools"
	"mtctl/internal/config"
	"mtctl/pkg/logging"
)

const (
	ServerName    = "manual-tests-mcp"
	ServerVersion = "1.0.0"
)

// Server owns the MCP server and, for SSE, the HTTP listener in front of it.
type Server struct {
	config    config.ServerConfig
	mcpServer *server.MCPServer
	toolCount int

	// stdio streams, replaceable in tests
	stdin  io.Reader
	stdout io.Writer
}

// New registers every tool on a fresh MCP server.
func New(cfg config.ServerConfig, mt *tools.ManualTestTools) *Server {
	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(true),
	)

	serverTools := mt.ServerTools()
	mcpServer.AddTools(serverTools...)

	return &Server{
		config:    cfg,
		mcpServer: mcpServer,
		toolCount: len(serverTools),
		stdin:     os.Stdin,
		stdout:    os.Stdout,
	}
}

// MCPServer exposes the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Run serves on the configured transport until ctx is cancelled or the
// transport stops.
func (s *Server) Run(ctx context.Context) error {
	switch s.config.Transport {
	case config.TransportStdio, "":
		return s.serveStdio(ctx)
	case config.TransportSSE:
		return s.serveSSE(ctx)
	default:
		return fmt.Errorf("unknown transport %q", s.config.Transport)
	}
}

func (s *Server) serveStdio(ctx context.Context) error {
	logging.Info("MCPServer", "Serving %d tools on stdio", s.toolCount)
	stdio := server.NewStdioServer(s.mcpServer)
	if err := stdio.Listen(ctx, s.stdin, s.stdout); err != nil && ctx.Err() == nil {
		return fmt.Errorf("stdio server error: %w", err)
	}
	return nil
}

func (s *Server) addr() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

func (s *Server) newSSEServer() *server.SSEServer {
	baseURL := fmt.Sprintf("http://%s", s.addr())
	return server.NewSSEServer(
		s.mcpServer,
		server.WithBaseURL(baseURL),
		server.WithSSEEndpoint("/sse"),
		server.WithMessageEndpoint("/message"),
		server.WithKeepAlive(true),
		server.WithKeepAliveInterval(30*time.Second),
	)
}

// Handler returns the HTTP routes of the SSE transport.
func (s *Server) Handler(sse *server.SSEServer) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Handle("/sse", sse.SSEHandler())
	r.Handle("/message", sse.MessageHandler())

	return r
}

func (s *Server) serveSSE(ctx context.Context) error {
	sse := s.newSSEServer()
	httpServer := &http.Server{
		Addr:              s.addr(),
		Handler:           s.Handler(sse),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logging.Info("MCPServer", "Serving %d tools over SSE on http://%s/sse", s.toolCount, s.addr())

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logging.Info("MCPServer", "Shutting down SSE server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := sse.Shutdown(shutdownCtx); err != nil {
			logging.Error("MCPServer", err, "Error closing SSE sessions")
		}
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	}
}

type healthResponse struct {
	Status  string `json:"status"`
	Name    string `json:"name"`
	Version string `json:"version"`
	Tools   int    `json:"tools"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(healthResponse{
		Status:  "ok",
		Name:    ServerName,
		Version: ServerVersion,
		Tools:   s.toolCount,
	})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logging.Debug("HTTP", "%s %s %d %s", r.Method, r.URL.Path, ww.Status(), time.Since(start))
	})
}
