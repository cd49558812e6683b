package agent

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/jllopis/topomind/pkg/core"
	"github.com/jllopis/topomind/pkg/errors"
	"github.com/jllopis/topomind/pkg/memory"
	"github.com/jllopis/topomind/pkg/planner"
	"github.com/jllopis/topomind/pkg/reliability"
	"github.com/jllopis/topomind/pkg/stability"
	"github.com/jllopis/topomind/pkg/telemetry"
	"github.com/jllopis/topomind/pkg/tools"
)

// ReasonToolName is the knowledge-answering tool whose successful answers
// are decomposed into semantic observations.
const ReasonToolName = "reason"

// Config bundles the replanning policy tunables.
type Config struct {
	// ReplanStabilityFloor triggers replanning when the result's
	// stability signal falls below it.
	ReplanStabilityFloor float64

	// ReplanConfidenceFloor triggers replanning when the executed step's
	// confidence falls below it.
	ReplanConfidenceFloor float64

	// FeedbackOutputLimit caps the previous_output feedback signal, in
	// bytes.
	FeedbackOutputLimit int
}

// DefaultConfig returns the tuned loop defaults.
func DefaultConfig() Config {
	return Config{
		ReplanStabilityFloor:  0.5,
		ReplanConfidenceFloor: 0.3,
		FeedbackOutputLimit:   200,
	}
}

// Agent runs the cognitive loop. It owns the memory graph and session
// state; planner, executor, and trackers are injected collaborators.
type Agent struct {
	cfg      Config
	graph    *memory.Graph
	updater  *memory.Updater
	signals  *stability.Extractor
	planner  planner.ReasoningEngine
	executor *tools.Executor
	tracker  *reliability.Tracker
	semantic *memory.ObservationBuilder
	episodic *memory.EpisodicIndex
	audit    planner.AuditStore
	metrics  *telemetry.LoopMetrics
	emitter  core.EventEmitter
	state    *State
	tracer   trace.Tracer
	logger   *slog.Logger
}

// Option configures an Agent instance.
type Option func(*Agent) error

// WithConfig overrides the replanning policy.
func WithConfig(cfg Config) Option {
	return func(a *Agent) error {
		a.cfg = cfg
		return nil
	}
}

// WithMemoryConfig tunes the memory lifecycle of the agent-owned graph.
// The persistence analyzer is rebuilt over the new scorer, so apply this
// before WithStabilityConfig.
func WithMemoryConfig(cfg memory.Config) Option {
	return func(a *Agent) error {
		a.updater = memory.NewUpdater(a.graph, cfg)
		a.signals = stability.NewExtractor(
			stability.NewPersistenceAnalyzer(a.graph, a.updater.Scorer(), stability.DefaultAnalyzerConfig()))
		return nil
	}
}

// WithStabilityConfig tunes the persistence analyzer.
func WithStabilityConfig(cfg stability.AnalyzerConfig) Option {
	return func(a *Agent) error {
		a.signals = stability.NewExtractor(
			stability.NewPersistenceAnalyzer(a.graph, a.updater.Scorer(), cfg))
		return nil
	}
}

// WithReliabilityTracker attaches a tool reliability tracker.
func WithReliabilityTracker(tracker *reliability.Tracker) Option {
	return func(a *Agent) error {
		a.tracker = tracker
		return nil
	}
}

// WithEpisodicIndex attaches vector-based episodic recall. Optional; the
// loop works without it.
func WithEpisodicIndex(index *memory.EpisodicIndex) Option {
	return func(a *Agent) error {
		a.episodic = index
		return nil
	}
}

// WithAuditStore records planning decisions for later inspection.
func WithAuditStore(store planner.AuditStore) Option {
	return func(a *Agent) error {
		a.audit = store
		return nil
	}
}

// WithMetrics attaches loop metrics.
func WithMetrics(m *telemetry.LoopMetrics) Option {
	return func(a *Agent) error {
		a.metrics = m
		return nil
	}
}

// WithEventEmitter attaches a semantic event sink.
func WithEventEmitter(emitter core.EventEmitter) Option {
	return func(a *Agent) error {
		if emitter == nil {
			return errors.Newf(errors.CodeValidation, "event emitter is nil")
		}
		a.emitter = emitter
		return nil
	}
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) error {
		a.logger = logger
		return nil
	}
}

// New creates an Agent around a planner and executor.
func New(engine planner.ReasoningEngine, executor *tools.Executor, opts ...Option) (*Agent, error) {
	if engine == nil {
		return nil, errors.Newf(errors.CodeValidation, "planner is required")
	}
	if executor == nil {
		return nil, errors.Newf(errors.CodeValidation, "executor is required")
	}

	graph := memory.NewGraph()
	updater := memory.NewUpdater(graph, memory.DefaultConfig())
	a := &Agent{
		cfg:      DefaultConfig(),
		graph:    graph,
		updater:  updater,
		planner:  engine,
		executor: executor,
		semantic: memory.NewObservationBuilder(),
		emitter:  core.NoopEventEmitter{},
		state:    NewState(),
		tracer:   otel.Tracer("topomind/agent"),
		logger:   slog.Default(),
	}
	a.signals = stability.NewExtractor(
		stability.NewPersistenceAnalyzer(graph, updater.Scorer(), stability.DefaultAnalyzerConfig()))

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// SetConfig replaces the replanning policy for subsequent turns. The agent
// is not internally synchronized; call from the goroutine that runs turns.
func (a *Agent) SetConfig(cfg Config) { a.cfg = cfg }

// Config returns the active replanning policy.
func (a *Agent) Config() Config { return a.cfg }

// Memory exposes the agent-owned graph for snapshotting and inspection.
func (a *Agent) Memory() *memory.Graph { return a.graph }

// Updater exposes the memory lifecycle orchestrator.
func (a *Agent) Updater() *memory.Updater { return a.updater }

// State exposes the session state.
func (a *Agent) State() *State { return a.state }

// HandleQuery processes a single user turn through the cognitive pipeline.
// It always returns either a ToolResult or an error, never both.
func (a *Agent) HandleQuery(ctx context.Context, input string) (core.ToolResult, error) {
	ctx, turnID := core.EnsureTurnID(ctx)
	ctx, span := a.tracer.Start(ctx, "agent.turn")
	defer span.End()

	a.graph.NewTurn()
	a.state.NewTurn(input)
	a.emitter.Emit(ctx, core.NewEvent(core.EventTurnStarted, turnID, map[string]any{
		"turn":  a.state.TurnCount(),
		"input": input,
	}))

	// Observed: the utterance enters memory before anything reads it.
	a.ingest(ctx, turnID, core.Observation{
		Source:  "user",
		Type:    core.TypeEntity,
		Payload: input,
	})

	// Signaled.
	signals := a.signals.Signals()
	if a.episodic != nil {
		if related := a.episodic.Recall(ctx, input, 3); len(related) > 0 {
			signals["related_memories"] = related
		}
	}

	// Planned.
	contracts := a.executor.Registry().List()
	plan, err := a.planner.GeneratePlan(ctx, input, signals, contracts)
	if err != nil {
		a.emitter.Emit(ctx, core.NewEvent(core.EventTurnError, turnID, map[string]any{
			"stage": "planning",
			"error": err.Error(),
		}))
		a.recordAudit(ctx, turnID, planner.AuditEvent{
			TurnID: turnID,
			Input:  input,
			Tool:   "",
			Status: planner.AuditStatusFailed,
			Error:  err.Error(),
		})
		a.metrics.RecordTurn(ctx, "planning_error")
		return core.ToolResult{}, errors.New(errors.CodePlanning, "plan generation failed", err)
	}
	if plan.IsEmpty() {
		a.emitter.Emit(ctx, core.NewEvent(core.EventTurnError, turnID, map[string]any{
			"stage": "planning",
			"error": "empty plan",
		}))
		a.metrics.RecordTurn(ctx, "planning_error")
		return core.ToolResult{}, errors.Newf(errors.CodePlanning, "planner produced no action")
	}
	a.state.RecordPlan(plan)

	step, _ := plan.FirstStep()
	a.emitter.Emit(ctx, core.NewEvent(core.EventPlanGenerated, turnID, map[string]any{
		"tool":       step.Action().ToolName(),
		"confidence": step.Confidence(),
	}))
	a.recordAudit(ctx, turnID, planner.AuditEvent{
		TurnID:     turnID,
		Input:      input,
		Tool:       step.Action().ToolName(),
		Reasoning:  step.Reasoning(),
		Confidence: step.Confidence(),
		Status:     planner.AuditStatusPlanned,
		Args:       step.Action().Arguments(),
	})

	// Executed.
	result := a.executeStep(ctx, turnID, step)

	// Replanned, at most once.
	if a.shouldReplan(step, result) {
		result = a.replan(ctx, turnID, input, signals, contracts, step, result)
	}

	// SemanticEncoded.
	if result.ToolName() == ReasonToolName && result.IsSuccess() {
		a.encodeSemantics(ctx, turnID, result)
	}

	a.metrics.RecordTurn(ctx, string(result.Status()))
	return result, nil
}

// executeStep runs one plan step and folds the outcome into state, memory,
// and the reliability tracker.
func (a *Agent) executeStep(ctx context.Context, turnID string, step core.PlanStep) core.ToolResult {
	call := step.Action()
	result := a.executor.Execute(ctx, call.ToolName(), call.Arguments())

	a.state.RecordExecution(call, result)
	if a.tracker != nil {
		a.tracker.Record(result.ToolName(), result.IsSuccess())
	}

	a.ingest(ctx, turnID, core.Observation{
		Source: "tool",
		Type:   core.TypeResult,
		Payload: map[string]any{
			"tool":   result.ToolName(),
			"status": string(result.Status()),
			"output": result.Output(),
		},
	})

	a.emitter.Emit(ctx, core.NewEvent(core.EventToolExecuted, turnID, map[string]any{
		"tool":      result.ToolName(),
		"status":    string(result.Status()),
		"stability": result.StabilitySignal(),
	}))
	return result
}

// shouldReplan applies the retry trigger: non-success, shaky execution, or
// a step the planner itself did not trust.
func (a *Agent) shouldReplan(step core.PlanStep, result core.ToolResult) bool {
	return !result.IsSuccess() ||
		result.StabilitySignal() < a.cfg.ReplanStabilityFloor ||
		step.Confidence() < a.cfg.ReplanConfidenceFloor
}

// replan re-invokes the planner once with feedback about the failed attempt.
// The alternative executes only when it names a different tool; otherwise,
// and on any planner problem, the original result stands.
func (a *Agent) replan(ctx context.Context, turnID, input string, signals map[string]any, contracts []core.Contract, failed core.PlanStep, original core.ToolResult) core.ToolResult {
	a.metrics.RecordReplan(ctx, replanReason(failed, original, a.cfg))
	a.emitter.Emit(ctx, core.NewEvent(core.EventReplanTriggered, turnID, map[string]any{
		"tool":      original.ToolName(),
		"status":    string(original.Status()),
		"stability": original.StabilitySignal(),
	}))

	feedback := make(map[string]any, len(signals)+3)
	for k, v := range signals {
		feedback[k] = v
	}
	feedback["previous_tool"] = failed.Action().ToolName()
	feedback["previous_error"] = original.Err()
	feedback["previous_output"] = truncate(fmt.Sprint(original.Output()), a.cfg.FeedbackOutputLimit)

	plan, err := a.planner.GeneratePlan(ctx, input, feedback, contracts)
	if err != nil {
		a.logger.Warn("replan failed, keeping original result",
			slog.String("turn_id", turnID),
			slog.String("error", err.Error()),
		)
		return original
	}
	step, ok := plan.FirstStep()
	if !ok {
		return original
	}
	if step.Action().ToolName() == failed.Action().ToolName() {
		a.logger.Debug("replan picked the same tool, keeping original result",
			slog.String("tool", step.Action().ToolName()),
		)
		return original
	}

	a.state.RecordPlan(plan)
	a.recordAudit(ctx, turnID, planner.AuditEvent{
		TurnID:     turnID,
		Input:      input,
		Tool:       step.Action().ToolName(),
		Reasoning:  step.Reasoning(),
		Confidence: step.Confidence(),
		Replanned:  true,
		Status:     planner.AuditStatusReplanned,
		Args:       step.Action().Arguments(),
	})
	return a.executeStep(ctx, turnID, step)
}

// ingest folds one observation into memory and surfaces any forgetting
// cycle it triggered as a metric datapoint and a loop event.
func (a *Agent) ingest(ctx context.Context, turnID string, obs core.Observation) string {
	nodeID := a.updater.UpdateFromObservation(obs)
	if nodes, edges := a.updater.LastPruned(); nodes > 0 || edges > 0 {
		a.metrics.RecordPruned(ctx, int64(nodes))
		a.emitter.Emit(ctx, core.NewEvent(core.EventMemoryPruned, turnID, map[string]any{
			"nodes": nodes,
			"edges": edges,
			"turn":  a.graph.Turn(),
		}))
	}
	return nodeID
}

// encodeSemantics decomposes a successful reasoning answer into structured
// observations and folds each back through the normal ingestion path.
func (a *Agent) encodeSemantics(ctx context.Context, turnID string, result core.ToolResult) {
	output, ok := result.Output().(map[string]any)
	if !ok {
		return
	}
	answer, ok := output["answer"].(string)
	if !ok || answer == "" {
		return
	}

	for _, obs := range a.semantic.FromReasonAnswer(answer) {
		a.ingest(ctx, turnID, obs)
		if a.episodic != nil {
			if text, ok := obs.Payload.(string); ok {
				if err := a.episodic.Index(ctx, obs.Type, text, a.graph.Turn()); err != nil {
					a.logger.Debug("episodic indexing failed", slog.String("error", err.Error()))
				}
			}
		}
	}
}

func (a *Agent) recordAudit(ctx context.Context, turnID string, event planner.AuditEvent) {
	if a.audit == nil {
		return
	}
	if err := a.audit.Record(ctx, event); err != nil {
		a.logger.Warn("plan audit record failed",
			slog.String("turn_id", turnID),
			slog.String("error", err.Error()),
		)
	}
}

func replanReason(step core.PlanStep, result core.ToolResult, cfg Config) string {
	switch {
	case !result.IsSuccess():
		return string(result.Status())
	case result.StabilitySignal() < cfg.ReplanStabilityFloor:
		return "low_stability"
	case step.Confidence() < cfg.ReplanConfidenceFloor:
		return "low_confidence"
	default:
		return "unknown"
	}
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max]
}
