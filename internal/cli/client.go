package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Client calls manual-test tools through the MCP protocol, either against a
// server in the same process or a running SSE server.
type Client struct {
	endpoint  string
	inProcess *server.MCPServer
	client    *client.Client
	timeout   time.Duration
}

// NewInProcessClient creates a client bound to s without any transport.
func NewInProcessClient(s *server.MCPServer) *Client {
	return &Client{
		inProcess: s,
		timeout:   30 * time.Second,
	}
}

// NewSSEClient creates a client for the SSE endpoint of a running server,
// e.g. http://localhost:8090/sse.
func NewSSEClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		timeout:  30 * time.Second,
	}
}

// Connect starts the transport and performs the MCP handshake.
func (c *Client) Connect(ctx context.Context) error {
	var (
		mcpClient *client.Client
		err       error
	)
	if c.inProcess != nil {
		mcpClient, err = client.NewInProcessClient(c.inProcess)
		if err != nil {
			return fmt.Errorf("failed to create in-process client: %w", err)
		}
	} else {
		mcpClient, err = client.NewSSEMCPClient(c.endpoint)
		if err != nil {
			return fmt.Errorf("failed to create sse client: %w", err)
		}
	}
	c.client = mcpClient

	if err := mcpClient.Start(ctx); err != nil {
		c.Close()
		return fmt.Errorf("failed to start client: %w", err)
	}

	if err := c.initialize(ctx); err != nil {
		c.Close()
		return fmt.Errorf("initialization failed: %w", err)
	}
	return nil
}

// ListTools returns the names of the tools the server offers.
func (c *Client) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	if c.client == nil {
		return nil, fmt.Errorf("client not connected")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := c.client.ListTools(timeoutCtx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}
	return result.Tools, nil
}

// CallTool executes a tool and returns the raw result.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	if c.client == nil {
		return nil, fmt.Errorf("client not connected")
	}

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := c.client.CallTool(timeoutCtx, req)
	if err != nil {
		return nil, fmt.Errorf("tool call failed: %w", err)
	}
	return result, nil
}

// CallToolText executes a tool and returns its text content. A tool error
// result is returned as an error carrying the same text.
func (c *Client) CallToolText(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	result, err := c.CallTool(ctx, name, args)
	if err != nil {
		return "", err
	}

	var texts []string
	for _, content := range result.Content {
		if textContent, ok := mcp.AsTextContent(content); ok {
			texts = append(texts, textContent.Text)
		}
	}
	text := strings.Join(texts, "\n")

	if result.IsError {
		return text, fmt.Errorf("tool error: %s", toolErrorMessage(text))
	}
	return text, nil
}

// toolErrorMessage extracts the "error" field of an envelope, falling back
// to the raw text.
func toolErrorMessage(text string) string {
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(text), &envelope); err == nil && envelope.Error != "" {
		return envelope.Error
	}
	return text
}

// Close closes the connection. It is safe to call on an unconnected client.
func (c *Client) Close() error {
	if c.client != nil {
		c.client.Close()
		c.client = nil
	}
	return nil
}

func (c *Client) initialize(ctx context.Context) error {
	req := mcp.InitializeRequest{}
	req.Params.ProtocolVersion = "2024-11-05"
	req.Params.ClientInfo = mcp.Implementation{
		Name:    "mtctl-cli",
		Version: "1.0.0",
	}
	req.Params.Capabilities = mcp.ClientCapabilities{}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.client.Initialize(timeoutCtx, req)
	return err
}
