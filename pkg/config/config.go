// Copyright 2026 © The TopoMind Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the TopoMind configuration from defaults, an
// optional YAML file, and TOPOMIND_-prefixed environment variables, in that
// order of increasing precedence.
package config

import (
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Log       LogConfig       `koanf:"log"`
	LLM       LLMConfig       `koanf:"llm"`
	Planner   PlannerConfig   `koanf:"planner"`
	Agent     AgentConfig     `koanf:"agent"`
	Memory    MemoryConfig    `koanf:"memory"`
	Tools     ToolsConfig     `koanf:"tools"`
	MCP       MCPConfig       `koanf:"mcp"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

type LLMConfig struct {
	Provider string `koanf:"provider"` // ollama, mock
	Model    string `koanf:"model"`
	BaseURL  string `koanf:"base_url"`
	APIKey   string `koanf:"api_key"`
}

type PlannerConfig struct {
	Kind string `koanf:"kind"` // rule, llm

	// AuditPath enables SQLite plan auditing when set.
	AuditPath string `koanf:"audit_path"`
}

// AgentConfig exposes the replanning policy tunables.
type AgentConfig struct {
	ReplanStabilityFloor  float64 `koanf:"replan_stability_floor"`
	ReplanConfidenceFloor float64 `koanf:"replan_confidence_floor"`
	FeedbackOutputLimit   int     `koanf:"feedback_output_limit"`
}

// MemoryConfig covers the forgetting policy, snapshot persistence, and the
// optional vector-backed episodic index.
type MemoryConfig struct {
	PruneInterval  int     `koanf:"prune_interval"`
	PruneThreshold float64 `koanf:"prune_threshold"`
	PruneBatchCap  int     `koanf:"prune_batch_cap"`
	AgePenalty     float64 `koanf:"age_penalty"`

	// SnapshotPath enables SQLite snapshot persistence when set.
	SnapshotPath string `koanf:"snapshot_path"`

	EpisodicEnabled  bool   `koanf:"episodic_enabled"`
	QdrantAddr       string `koanf:"qdrant_addr"`
	Collection       string `koanf:"collection"`
	EmbedderProvider string `koanf:"embedder_provider"` // ollama
	EmbedderBaseURL  string `koanf:"embedder_base_url"`
	EmbedderModel    string `koanf:"embedder_model"`
}

// ToolsConfig covers declarative tool registration.
type ToolsConfig struct {
	// ManifestPath registers extra tool contracts from a YAML or JSON
	// manifest at startup when set.
	ManifestPath string `koanf:"manifest_path"`
}

// MCPConfig attaches an MCP server over stdio when Command is set. Tools
// served by it are declared through the manifest with connector "mcp".
type MCPConfig struct {
	Command string   `koanf:"command"`
	Args    []string `koanf:"args"`
}

type TelemetryConfig struct {
	Exporter     string `koanf:"exporter"` // stdout, otlp
	OTLPEndpoint string `koanf:"otlp_endpoint"`
}

// Load reads configuration with the given optional YAML file path.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Defaults
	k.Set("log.level", "info")
	k.Set("log.format", "text")

	k.Set("llm.provider", "ollama")
	k.Set("llm.model", "mistral")
	k.Set("llm.base_url", "http://localhost:11434")

	k.Set("planner.kind", "rule")

	k.Set("agent.replan_stability_floor", 0.5)
	k.Set("agent.replan_confidence_floor", 0.3)
	k.Set("agent.feedback_output_limit", 200)

	k.Set("memory.prune_interval", 5)
	k.Set("memory.prune_threshold", -5.0)
	k.Set("memory.prune_batch_cap", 25)
	k.Set("memory.age_penalty", 0.15)
	k.Set("memory.episodic_enabled", false)
	k.Set("memory.qdrant_addr", "localhost:6334")
	k.Set("memory.collection", "topomind_episodic")
	k.Set("memory.embedder_provider", "ollama")
	k.Set("memory.embedder_base_url", "http://localhost:11434")
	k.Set("memory.embedder_model", "nomic-embed-text")

	k.Set("telemetry.exporter", "stdout")

	// 1. Load from file
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// 2. Load from ENV (TOPOMIND_LLM_PROVIDER -> llm.provider)
	if err := k.Load(env.Provider("TOPOMIND_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "TOPOMIND_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
