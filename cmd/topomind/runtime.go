package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/jllopis/topomind/pkg/agent"
	"github.com/jllopis/topomind/pkg/config"
	"github.com/jllopis/topomind/pkg/connectors"
	"github.com/jllopis/topomind/pkg/core"
	"github.com/jllopis/topomind/pkg/llm"
	"github.com/jllopis/topomind/pkg/memory"
	memollama "github.com/jllopis/topomind/pkg/memory/ollama"
	"github.com/jllopis/topomind/pkg/memory/qdrant"
	"github.com/jllopis/topomind/pkg/planner"
	"github.com/jllopis/topomind/pkg/reliability"
	"github.com/jllopis/topomind/pkg/telemetry"
	"github.com/jllopis/topomind/pkg/tools"

	_ "modernc.org/sqlite"
)

// runtime bundles the wired loop components and their teardown.
type runtime struct {
	Agent    *agent.Agent
	Registry *tools.Registry

	reload       *config.ReloadableConfig
	watcher      *config.Watcher
	applied      config.AgentConfig
	manager      *connectors.Manager
	snapshots    *memory.SQLiteSnapshotStore
	auditDB      *sql.DB
	otelShutdown telemetry.ShutdownFunc
}

// buildRuntime assembles the full loop from configuration.
func buildRuntime(ctx context.Context, configPath string) (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := telemetry.ConfigureSlog(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	otelShutdown, err := telemetry.InitWithConfig("topomind", version, telemetry.Config{
		Exporter:     cfg.Telemetry.Exporter,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	metrics, err := telemetry.NewLoopMetrics(ctx)
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	rt := &runtime{
		manager:      connectors.NewManager(),
		otelShutdown: otelShutdown,
	}
	registry := tools.NewRegistry()
	history := tools.NewSchemaHistory()
	rt.Registry = registry

	if err := connectors.RegisterBuiltinAnalytics(rt.manager, registry, history); err != nil {
		return nil, err
	}

	if cfg.MCP.Command != "" {
		conn, err := connectors.NewMCPConnectorStdio(cfg.MCP.Command, cfg.MCP.Args...)
		if err != nil {
			return nil, fmt.Errorf("start mcp connector: %w", err)
		}
		if err := rt.manager.Register("mcp", conn); err != nil {
			return nil, err
		}
	}

	if cfg.Tools.ManifestPath != "" {
		manifest, err := tools.LoadManifest(cfg.Tools.ManifestPath)
		if err != nil {
			return nil, fmt.Errorf("load tool manifest: %w", err)
		}
		if _, err := manifest.Apply(registry); err != nil {
			return nil, fmt.Errorf("apply tool manifest: %w", err)
		}
	}

	provider, err := buildProvider(cfg.LLM)
	if err != nil {
		return nil, err
	}
	if provider != nil {
		if err := connectors.RegisterReasoning(rt.manager, registry, history, provider, cfg.LLM.Model); err != nil {
			return nil, err
		}
	}

	engine, err := planner.New(cfg.Planner.Kind, provider, cfg.LLM.Model)
	if err != nil {
		return nil, err
	}

	executor := tools.NewExecutor(registry, rt.manager,
		tools.WithExecutorMetrics(metrics),
		tools.WithExecutorLogger(logger),
	)

	opts := []agent.Option{
		agent.WithConfig(agent.Config{
			ReplanStabilityFloor:  cfg.Agent.ReplanStabilityFloor,
			ReplanConfidenceFloor: cfg.Agent.ReplanConfidenceFloor,
			FeedbackOutputLimit:   cfg.Agent.FeedbackOutputLimit,
		}),
		agent.WithMemoryConfig(memoryConfig(cfg.Memory)),
		agent.WithReliabilityTracker(reliability.NewTracker(reliability.DefaultTrackerConfig())),
		agent.WithMetrics(metrics),
		agent.WithLogger(logger),
	}

	if cfg.Planner.AuditPath != "" {
		db, err := sql.Open("sqlite", cfg.Planner.AuditPath)
		if err != nil {
			return nil, fmt.Errorf("open audit store: %w", err)
		}
		store, err := planner.NewSQLiteAuditStore(db)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("init audit store: %w", err)
		}
		rt.auditDB = db
		opts = append(opts, agent.WithAuditStore(store))
	}

	if cfg.Memory.EpisodicEnabled {
		index, err := buildEpisodicIndex(ctx, cfg.Memory)
		if err != nil {
			return nil, err
		}
		opts = append(opts, agent.WithEpisodicIndex(index))
	}

	a, err := agent.New(engine, executor, opts...)
	if err != nil {
		return nil, err
	}
	rt.Agent = a

	rt.reload = config.NewReloadableConfig(cfg)
	rt.applied = cfg.Agent
	if configPath != "" {
		rt.watcher = config.NewWatcher(configPath, rt.reload.Update,
			config.WithWatchLogger(logger))
		rt.watcher.Start(ctx)
	}

	if cfg.Memory.SnapshotPath != "" {
		store, err := memory.OpenSQLiteSnapshotStore(cfg.Memory.SnapshotPath)
		if err != nil {
			return nil, fmt.Errorf("open snapshot store: %w", err)
		}
		rt.snapshots = store
		if snap, err := store.Load(ctx); err == nil {
			memory.Restore(a.Memory(), a.Updater().Scorer(), snap)
		}
	}

	return rt, nil
}

// Query runs one turn, first folding in any configuration the watcher
// picked up since the previous turn. Turns and config application happen
// on the caller's goroutine; the watcher only swaps the snapshot.
func (rt *runtime) Query(ctx context.Context, input string) (core.ToolResult, error) {
	if next := rt.reload.Agent(); next != rt.applied {
		rt.Agent.SetConfig(agent.Config{
			ReplanStabilityFloor:  next.ReplanStabilityFloor,
			ReplanConfidenceFloor: next.ReplanConfidenceFloor,
			FeedbackOutputLimit:   next.FeedbackOutputLimit,
		})
		rt.applied = next
	}
	return rt.Agent.HandleQuery(ctx, input)
}

// Shutdown persists memory state and tears down connectors and telemetry.
func (rt *runtime) Shutdown(ctx context.Context) {
	if rt.watcher != nil {
		rt.watcher.Stop()
	}
	if rt.snapshots != nil && rt.Agent != nil {
		snap := memory.TakeSnapshot(rt.Agent.Memory(), rt.Agent.Updater().Scorer())
		_ = rt.snapshots.Save(ctx, snap)
		rt.snapshots.Close()
	}
	if rt.auditDB != nil {
		rt.auditDB.Close()
	}
	if rt.manager != nil {
		rt.manager.ShutdownAll(ctx)
	}
	if rt.otelShutdown != nil {
		_ = rt.otelShutdown(ctx)
	}
}

func buildProvider(cfg config.LLMConfig) (llm.Provider, error) {
	switch cfg.Provider {
	case "ollama":
		return llm.NewOllama(cfg.BaseURL), nil
	case "mock":
		return &llm.MockProvider{Response: `{"tool": "echo", "args": {}}`}, nil
	case "", "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

func memoryConfig(cfg config.MemoryConfig) memory.Config {
	out := memory.DefaultConfig()
	if cfg.PruneInterval > 0 {
		out.PruneInterval = cfg.PruneInterval
	}
	if cfg.PruneThreshold != 0 {
		out.PruneThreshold = cfg.PruneThreshold
	}
	if cfg.PruneBatchCap > 0 {
		out.Forgetting.BatchSize = cfg.PruneBatchCap
	}
	if cfg.AgePenalty > 0 {
		out.Decay.AgePenalty = cfg.AgePenalty
	}
	return out
}

func buildEpisodicIndex(ctx context.Context, cfg config.MemoryConfig) (*memory.EpisodicIndex, error) {
	store, err := qdrant.New(cfg.QdrantAddr)
	if err != nil {
		return nil, fmt.Errorf("connect qdrant: %w", err)
	}
	embedder := memollama.NewEmbedder(cfg.EmbedderBaseURL, cfg.EmbedderModel)
	index := memory.NewEpisodicIndex(store, embedder, cfg.Collection)
	if err := index.EnsureCollection(ctx); err != nil {
		return nil, fmt.Errorf("ensure collection: %w", err)
	}
	return index, nil
}

// resultView flattens a ToolResult for printing.
func resultView(result core.ToolResult) map[string]any {
	return map[string]any{
		"tool":       result.ToolName(),
		"version":    result.ToolVersion(),
		"status":     string(result.Status()),
		"output":     result.Output(),
		"error":      result.Err(),
		"latency_ms": result.LatencyMS(),
		"stability":  result.StabilitySignal(),
	}
}
