package connectors

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jllopis/topomind/pkg/core"
	"github.com/jllopis/topomind/pkg/errors"
)

type fakeMCPCaller struct {
	result  *mcp.CallToolResult
	err     error
	lastReq mcp.CallToolRequest
	closed  bool
}

func (f *fakeMCPCaller) CallTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f.lastReq = req
	return f.result, f.err
}

func (f *fakeMCPCaller) Close() error {
	f.closed = true
	return nil
}

func mcpContract(name string) core.Contract {
	return core.Contract{
		Name:          name,
		InputSchema:   core.Schema{"query": "string"},
		OutputSchema:  core.Schema{"result": "any"},
		ConnectorName: "mcp",
		Version:       "1.0.0",
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: text}},
	}
}

func TestMCPConnectorStructuredOutput(t *testing.T) {
	caller := &fakeMCPCaller{result: &mcp.CallToolResult{
		StructuredContent: map[string]any{"result": 42.0},
	}}
	c := NewMCPConnector(caller)

	out, err := c.Execute(context.Background(), mcpContract("search"), map[string]any{"query": "go"}, 0)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if caller.lastReq.Params.Name != "search" {
		t.Fatalf("tool name forwarded as %q", caller.lastReq.Params.Name)
	}
	if out.(map[string]any)["result"] != 42.0 {
		t.Fatalf("out = %v", out)
	}
}

func TestMCPConnectorJSONTextOutput(t *testing.T) {
	caller := &fakeMCPCaller{result: textResult(`{"result": "found"}`)}
	c := NewMCPConnector(caller)

	out, err := c.Execute(context.Background(), mcpContract("search"), map[string]any{}, 0)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.(map[string]any)["result"] != "found" {
		t.Fatalf("out = %v", out)
	}
}

func TestMCPConnectorPlainTextOutput(t *testing.T) {
	caller := &fakeMCPCaller{result: textResult("plain answer")}
	c := NewMCPConnector(caller)

	out, err := c.Execute(context.Background(), mcpContract("search"), map[string]any{}, 0)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.(map[string]any)["result"] != "plain answer" {
		t.Fatalf("out = %v", out)
	}
}

func TestMCPConnectorToolError(t *testing.T) {
	caller := &fakeMCPCaller{result: &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: "tool exploded"}},
	}}
	c := NewMCPConnector(caller)

	_, err := c.Execute(context.Background(), mcpContract("search"), map[string]any{}, 0)
	if errors.CodeOf(err) != errors.CodeToolFailure {
		t.Fatalf("code = %v, want %v", errors.CodeOf(err), errors.CodeToolFailure)
	}
}

func TestMCPConnectorTransportFailure(t *testing.T) {
	caller := &fakeMCPCaller{err: errors.Newf(errors.CodeInternal, "pipe broken")}
	c := NewMCPConnector(caller)

	_, err := c.Execute(context.Background(), mcpContract("search"), map[string]any{}, 0)
	if errors.CodeOf(err) != errors.CodeToolFailure {
		t.Fatalf("code = %v, want %v", errors.CodeOf(err), errors.CodeToolFailure)
	}
	if c.Health(context.Background()) {
		t.Fatal("connector should report unhealthy after transport failure")
	}
}

func TestMCPConnectorShutdown(t *testing.T) {
	caller := &fakeMCPCaller{result: textResult("ok")}
	c := NewMCPConnector(caller)

	if err := c.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if !caller.closed {
		t.Fatal("underlying client was not closed")
	}
	if _, err := c.Execute(context.Background(), mcpContract("search"), map[string]any{}, 0); err == nil {
		t.Fatal("expected error after shutdown")
	}
}
