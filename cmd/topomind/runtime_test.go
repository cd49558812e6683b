package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeRuntimeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestBuildRuntimeRegistersManifestTools(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "tools.yaml")
	writeRuntimeFile(t, manifestPath, `tools:
  - name: shout
    description: Echo variant registered declaratively.
    connector: echo
    version: "1.0.0"
    input_schema:
      text: string
    output_schema:
      text: string
`)
	configPath := filepath.Join(dir, "topomind.yaml")
	writeRuntimeFile(t, configPath, `planner:
  kind: rule
llm:
  provider: mock
tools:
  manifest_path: `+manifestPath+`
`)

	rt, err := buildRuntime(context.Background(), configPath)
	if err != nil {
		t.Fatalf("buildRuntime: %v", err)
	}
	defer rt.Shutdown(context.Background())

	contract, err := rt.Registry.Get("shout")
	if err != nil {
		t.Fatalf("manifest tool not registered: %v", err)
	}
	if contract.ConnectorName != "echo" {
		t.Fatalf("connector = %q", contract.ConnectorName)
	}
}

func TestQueryAppliesReloadedReplanPolicy(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "topomind.yaml")
	writeRuntimeFile(t, configPath, `planner:
  kind: rule
llm:
  provider: mock
`)

	rt, err := buildRuntime(context.Background(), configPath)
	if err != nil {
		t.Fatalf("buildRuntime: %v", err)
	}
	defer rt.Shutdown(context.Background())

	if _, err := rt.Query(context.Background(), "hello"); err != nil {
		t.Fatalf("Query: %v", err)
	}
	if got := rt.Agent.Config().ReplanConfidenceFloor; got != 0.3 {
		t.Fatalf("initial confidence floor = %v", got)
	}

	next := *rt.reload.Get()
	next.Agent.ReplanConfidenceFloor = 0.9
	rt.reload.Update(&next)

	if _, err := rt.Query(context.Background(), "hello again"); err != nil {
		t.Fatalf("Query: %v", err)
	}
	if got := rt.Agent.Config().ReplanConfidenceFloor; got != 0.9 {
		t.Fatalf("confidence floor after reload = %v", got)
	}
}
