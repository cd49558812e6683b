package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Fatalf("log defaults = %+v", cfg.Log)
	}
	if cfg.Planner.Kind != "rule" {
		t.Fatalf("planner kind = %q, want rule", cfg.Planner.Kind)
	}
	if cfg.Agent.ReplanStabilityFloor != 0.5 || cfg.Agent.ReplanConfidenceFloor != 0.3 {
		t.Fatalf("agent defaults = %+v", cfg.Agent)
	}
	if cfg.Agent.FeedbackOutputLimit != 200 {
		t.Fatalf("feedback limit = %d, want 200", cfg.Agent.FeedbackOutputLimit)
	}
	if cfg.Memory.PruneInterval != 5 || cfg.Memory.PruneThreshold != -5.0 {
		t.Fatalf("memory defaults = %+v", cfg.Memory)
	}
	if cfg.Memory.PruneBatchCap != 25 || cfg.Memory.AgePenalty != 0.15 {
		t.Fatalf("memory defaults = %+v", cfg.Memory)
	}
	if cfg.Telemetry.Exporter != "stdout" {
		t.Fatalf("telemetry exporter = %q", cfg.Telemetry.Exporter)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "topomind.yaml")
	content := []byte(`
log:
  level: debug
planner:
  kind: llm
llm:
  model: llama3
memory:
  prune_interval: 7
tools:
  manifest_path: /etc/topomind/tools.yaml
mcp:
  command: mcp-server
  args: ["--verbose"]
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("log level = %q", cfg.Log.Level)
	}
	if cfg.Planner.Kind != "llm" {
		t.Fatalf("planner kind = %q", cfg.Planner.Kind)
	}
	if cfg.LLM.Model != "llama3" {
		t.Fatalf("llm model = %q", cfg.LLM.Model)
	}
	if cfg.Memory.PruneInterval != 7 {
		t.Fatalf("prune interval = %d", cfg.Memory.PruneInterval)
	}
	if cfg.Tools.ManifestPath != "/etc/topomind/tools.yaml" {
		t.Fatalf("manifest path = %q", cfg.Tools.ManifestPath)
	}
	if cfg.MCP.Command != "mcp-server" || len(cfg.MCP.Args) != 1 || cfg.MCP.Args[0] != "--verbose" {
		t.Fatalf("mcp config = %+v", cfg.MCP)
	}
	// Untouched keys keep their defaults.
	if cfg.Log.Format != "text" {
		t.Fatalf("log format = %q", cfg.Log.Format)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("TOPOMIND_LOG_LEVEL", "warn")
	t.Setenv("TOPOMIND_LLM_MODEL", "phi3")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Fatalf("log level = %q, want env override", cfg.Log.Level)
	}
	if cfg.LLM.Model != "phi3" {
		t.Fatalf("llm model = %q, want env override", cfg.LLM.Model)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/topomind.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
