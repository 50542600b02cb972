package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mtctl/internal/api/tools"
	"mtctl/internal/config"
	"mtctl/internal/manualtest"
)

func newServer(t *testing.T, cfg config.ServerConfig) *Server {
	t.Helper()
	svc, err := manualtest.New(manualtest.Options{BaseDir: t.TempDir()})
	require.NoError(t, err)
	return New(cfg, tools.NewManualTestTools(svc))
}

func TestNew_RegistersTools(t *testing.T) {
	s := newServer(t, config.ServerConfig{})

	assert.Equal(t, 11, s.toolCount)
	assert.NotNil(t, s.MCPServer())
}

func TestHandleMessage_ToolsList(t *testing.T) {
	s := newServer(t, config.ServerConfig{})

	resp := s.MCPServer().HandleMessage(context.Background(),
		json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"manual_test_validate"`)
	assert.Contains(t, string(data), `"manual_test_results_clean"`)
}

func TestHandleMessage_ToolCall(t *testing.T) {
	s := newServer(t, config.ServerConfig{})

	resp := s.MCPServer().HandleMessage(context.Background(), json.RawMessage(
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"manual_test_validate","arguments":{"yamlContent":"meta: {}"}}}`))

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `\"isValid\": false`)
}

func TestHandleMessage_UnknownTool(t *testing.T) {
	s := newServer(t, config.ServerConfig{})

	resp := s.MCPServer().HandleMessage(context.Background(), json.RawMessage(
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"manual_test_nope","arguments":{}}}`))

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"error"`)
}

func TestHandler_Healthz(t *testing.T) {
	s := newServer(t, config.ServerConfig{Host: "localhost", Port: 8090})
	handler := s.Handler(s.newSSEServer())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, healthResponse{Status: "ok", Name: ServerName, Version: ServerVersion, Tools: 11}, body)
}

func TestRun_UnknownTransport(t *testing.T) {
	s := newServer(t, config.ServerConfig{Transport: "carrier-pigeon"})

	err := s.Run(context.Background())

	require.Error(t, err)
	assert.Equal(t, `unknown transport "carrier-pigeon"`, err.Error())
}

func TestRun_StdioStopsOnCancel(t *testing.T) {
	s := newServer(t, config.ServerConfig{Transport: config.TransportStdio})
	reader, writer := io.Pipe()
	defer writer.Close()
	s.stdin = reader
	s.stdout = &bytes.Buffer{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("stdio server did not stop after cancellation")
	}
}

func TestRun_SSEStopsOnCancel(t *testing.T) {
	listener := httptest.NewServer(http.NotFoundHandler())
	addr := strings.TrimPrefix(listener.URL, "http://")
	listener.Close()

	host, rawPort, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, err := strconv.Atoi(rawPort)
	require.NoError(t, err)
	s := newServer(t, config.ServerConfig{Transport: config.TransportSSE, Host: host, Port: port})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("sse server did not stop after cancellation")
	}
}
