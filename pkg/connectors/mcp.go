package connectors

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jllopis/topomind/pkg/core"
	"github.com/jllopis/topomind/pkg/errors"
)

const mcpInitTimeout = 10 * time.Second

// MCPCaller is the slice of the MCP client protocol the connector needs.
type MCPCaller interface {
	CallTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
	Close() error
}

// MCPConnector bridges tool execution to a Model Context Protocol server.
// Each contract name is forwarded as the MCP tool name.
type MCPConnector struct {
	mu      sync.Mutex
	caller  MCPCaller
	healthy bool
}

// NewMCPConnector wraps an already initialized MCP client.
func NewMCPConnector(caller MCPCaller) *MCPConnector {
	return &MCPConnector{caller: caller, healthy: caller != nil}
}

// NewMCPConnectorStdio spawns an MCP server subprocess and connects over stdio.
func NewMCPConnectorStdio(command string, args ...string) (*MCPConnector, error) {
	stdioClient, err := client.NewStdioMCPClient(command, nil, args...)
	if err != nil {
		return nil, errors.New(errors.CodeToolBlocked, "mcp stdio client", err)
	}

	if err := stdioClient.Start(context.Background()); err != nil {
		return nil, errors.New(errors.CodeToolBlocked, "mcp server start", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), mcpInitTimeout)
	defer cancel()

	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{
		Name:    "topomind-client",
		Version: "0.1.0",
	}

	if _, err := stdioClient.Initialize(ctx, initRequest); err != nil {
		return nil, errors.New(errors.CodeToolBlocked, "mcp initialize", err)
	}

	return NewMCPConnector(stdioClient), nil
}

// Execute calls the remote MCP tool named by the contract and decodes its output.
func (m *MCPConnector) Execute(ctx context.Context, contract core.Contract, args map[string]any, timeout time.Duration) (any, error) {
	m.mu.Lock()
	caller := m.caller
	m.mu.Unlock()
	if caller == nil {
		return nil, errors.New(errors.CodeToolBlocked, "mcp connector is closed", nil)
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = contract.Name
	req.Params.Arguments = args

	result, err := caller.CallTool(ctx, req)
	if err != nil {
		m.setHealthy(false)
		return nil, errors.New(errors.CodeToolFailure, "mcp call failed", err).
			WithContext("tool", contract.Name).
			WithRecoverable(true)
	}
	m.setHealthy(true)

	return mcpResultToOutput(contract.Name, result)
}

// Health reports whether the last interaction with the server succeeded.
func (m *MCPConnector) Health(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.caller != nil && m.healthy
}

// Shutdown closes the underlying client connection.
func (m *MCPConnector) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	caller := m.caller
	m.caller = nil
	m.healthy = false
	m.mu.Unlock()
	if caller == nil {
		return nil
	}
	return caller.Close()
}

func (m *MCPConnector) setHealthy(v bool) {
	m.mu.Lock()
	m.healthy = v
	m.mu.Unlock()
}

func mcpResultToOutput(toolName string, result *mcp.CallToolResult) (any, error) {
	if result == nil {
		return nil, errors.New(errors.CodeToolFailure, "mcp tool returned no result", nil).
			WithContext("tool", toolName)
	}

	if result.IsError {
		return nil, errors.Newf(errors.CodeToolFailure, "mcp tool error: %s", mcpTextContent(result.Content)).
			WithContext("tool", toolName).
			WithRecoverable(true)
	}

	if result.StructuredContent != nil {
		return result.StructuredContent, nil
	}

	text := mcpTextContent(result.Content)
	if text == "" {
		return map[string]any{}, nil
	}

	// Servers that lack structured output often return JSON as text.
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "{") {
		var decoded map[string]any
		if err := json.Unmarshal([]byte(trimmed), &decoded); err == nil {
			return decoded, nil
		}
	}

	return map[string]any{"result": text}, nil
}

func mcpTextContent(items []mcp.Content) string {
	if len(items) == 0 {
		return ""
	}
	var parts []string
	for _, item := range items {
		switch content := item.(type) {
		case mcp.TextContent:
			parts = append(parts, content.Text)
		case *mcp.TextContent:
			parts = append(parts, content.Text)
		}
	}
	return strings.Join(parts, "\n")
}

var _ core.ExecutionConnector = (*MCPConnector)(nil)
