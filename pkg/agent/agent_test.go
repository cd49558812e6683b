package agent

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jllopis/topomind/pkg/connectors"
	"github.com/jllopis/topomind/pkg/core"
	"github.com/jllopis/topomind/pkg/errors"
	"github.com/jllopis/topomind/pkg/llm"
	"github.com/jllopis/topomind/pkg/memory"
	"github.com/jllopis/topomind/pkg/planner"
	"github.com/jllopis/topomind/pkg/reliability"
	"github.com/jllopis/topomind/pkg/tools"
)

// scriptedPlanner returns queued plans in order and records the signals it
// was invoked with.
type scriptedPlanner struct {
	plans       []core.Plan
	errs        []error
	calls       int
	seenSignals []map[string]any
}

func (s *scriptedPlanner) GeneratePlan(ctx context.Context, input string, signals map[string]any, contracts []core.Contract) (core.Plan, error) {
	s.calls++
	s.seenSignals = append(s.seenSignals, signals)
	i := s.calls - 1
	if i < len(s.errs) && s.errs[i] != nil {
		return core.Plan{}, s.errs[i]
	}
	if i >= len(s.plans) {
		return core.EmptyPlan(), nil
	}
	return s.plans[i], nil
}

// brokenConnector fails every execution.
type brokenConnector struct{}

func (brokenConnector) Execute(ctx context.Context, contract core.Contract, args map[string]any, timeout time.Duration) (any, error) {
	return nil, errors.Newf(errors.CodeToolFailure, "backend unreachable")
}

func (brokenConnector) Health(ctx context.Context) bool    { return false }
func (brokenConnector) Shutdown(ctx context.Context) error { return nil }

func flakyContract() core.Contract {
	return core.Contract{
		Name:          "flaky",
		Description:   "Always fails.",
		InputSchema:   core.Schema{"text": "string"},
		OutputSchema:  core.Schema{"text": "string"},
		ConnectorName: "broken",
		Version:       "1.0.0",
	}
}

// newTestExecutor wires echo, reason, and flaky tools over real connectors.
func newTestExecutor(t *testing.T, answer string) *tools.Executor {
	t.Helper()
	manager := connectors.NewManager()
	registry := tools.NewRegistry()

	if err := connectors.RegisterBuiltinAnalytics(manager, registry, nil); err != nil {
		t.Fatalf("RegisterBuiltinAnalytics: %v", err)
	}
	provider := &llm.MockProvider{Response: answer}
	if err := connectors.RegisterReasoning(manager, registry, nil, provider, "test-model"); err != nil {
		t.Fatalf("RegisterReasoning: %v", err)
	}
	if err := manager.Register("broken", brokenConnector{}); err != nil {
		t.Fatalf("Register broken: %v", err)
	}
	if err := registry.Register(flakyContract()); err != nil {
		t.Fatalf("Register flaky: %v", err)
	}
	return tools.NewExecutor(registry, manager)
}

func planFor(tool string, args map[string]any, confidence float64) core.Plan {
	call := core.NewToolCall(tool, args)
	step := core.NewPlanStep(call, "scripted", confidence)
	return core.NewPlan([]core.PlanStep{step})
}

func TestHandleQuerySuccessfulTurn(t *testing.T) {
	engine := &scriptedPlanner{plans: []core.Plan{
		planFor("echo", map[string]any{"text": "hi"}, 0.9),
	}}
	a, err := New(engine, newTestExecutor(t, "unused"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result, err := a.HandleQuery(context.Background(), "say hi")
	if err != nil {
		t.Fatalf("HandleQuery: %v", err)
	}
	if !result.IsSuccess() {
		t.Fatalf("status = %v", result.Status())
	}
	if engine.calls != 1 {
		t.Fatalf("planner calls = %d, want 1", engine.calls)
	}
	if a.State().TurnCount() != 1 {
		t.Fatalf("turn count = %d", a.State().TurnCount())
	}
	if got := len(a.State().RecentResults()); got != 1 {
		t.Fatalf("recent results = %d, want 1", got)
	}
	if entities := a.Memory().NodesByType(core.TypeEntity); len(entities) != 1 {
		t.Fatalf("entity nodes = %d, want 1", len(entities))
	}
	if results := a.Memory().NodesByType(core.TypeResult); len(results) != 1 {
		t.Fatalf("result nodes = %d, want 1", len(results))
	}
}

func TestHandleQueryEmptyPlan(t *testing.T) {
	engine := &scriptedPlanner{plans: []core.Plan{core.EmptyPlan()}}
	a, err := New(engine, newTestExecutor(t, "unused"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = a.HandleQuery(context.Background(), "hello")
	if errors.CodeOf(err) != errors.CodePlanning {
		t.Fatalf("code = %v, want %v", errors.CodeOf(err), errors.CodePlanning)
	}
	if _, ok := a.State().LastResult(); ok {
		t.Fatal("no tool should have executed")
	}
}

func TestHandleQueryPlannerError(t *testing.T) {
	engine := &scriptedPlanner{errs: []error{errors.Newf(errors.CodePlanning, "model offline")}}
	a, err := New(engine, newTestExecutor(t, "unused"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = a.HandleQuery(context.Background(), "hello")
	if errors.CodeOf(err) != errors.CodePlanning {
		t.Fatalf("code = %v, want %v", errors.CodeOf(err), errors.CodePlanning)
	}
}

func TestReplanSameToolKeepsOriginalResult(t *testing.T) {
	engine := &scriptedPlanner{plans: []core.Plan{
		planFor("flaky", map[string]any{"text": "first"}, 0.9),
		planFor("flaky", map[string]any{"text": "second"}, 0.9),
	}}
	a, err := New(engine, newTestExecutor(t, "unused"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result, err := a.HandleQuery(context.Background(), "do something")
	if err != nil {
		t.Fatalf("HandleQuery: %v", err)
	}
	if result.Status() != core.StatusFailure {
		t.Fatalf("status = %v, want failure", result.Status())
	}
	if engine.calls != 2 {
		t.Fatalf("planner calls = %d, want 2", engine.calls)
	}
	// Only the first execution happened.
	if got := len(a.State().RecentResults()); got != 1 {
		t.Fatalf("recent results = %d, want 1", got)
	}
}

func TestReplanDifferentToolExecutesOnce(t *testing.T) {
	engine := &scriptedPlanner{plans: []core.Plan{
		planFor("flaky", map[string]any{"text": "first"}, 0.9),
		planFor("echo", map[string]any{"text": "recovered"}, 0.9),
	}}
	a, err := New(engine, newTestExecutor(t, "unused"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result, err := a.HandleQuery(context.Background(), "do something")
	if err != nil {
		t.Fatalf("HandleQuery: %v", err)
	}
	if !result.IsSuccess() || result.ToolName() != "echo" {
		t.Fatalf("result = %v %v, want echo success", result.ToolName(), result.Status())
	}
	if engine.calls != 2 {
		t.Fatalf("planner calls = %d, want 2", engine.calls)
	}
	if got := len(a.State().RecentResults()); got != 2 {
		t.Fatalf("recent results = %d, want 2", got)
	}
}

func TestReplanFeedbackSignals(t *testing.T) {
	longOutput := strings.Repeat("x", 400)
	engine := &scriptedPlanner{plans: []core.Plan{
		planFor("echo", map[string]any{"text": longOutput}, 0.1),
		planFor("echo", map[string]any{"text": "again"}, 0.9),
	}}
	a, err := New(engine, newTestExecutor(t, "unused"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Confidence 0.1 is below the floor, so a replan fires even though the
	// echo execution itself succeeds.
	if _, err := a.HandleQuery(context.Background(), "talk"); err != nil {
		t.Fatalf("HandleQuery: %v", err)
	}
	if len(engine.seenSignals) != 2 {
		t.Fatalf("planner calls = %d, want 2", len(engine.seenSignals))
	}

	feedback := engine.seenSignals[1]
	if feedback["previous_tool"] != "echo" {
		t.Fatalf("previous_tool = %v", feedback["previous_tool"])
	}
	output, _ := feedback["previous_output"].(string)
	if len(output) != 200 {
		t.Fatalf("previous_output length = %d, want truncation to 200", len(output))
	}
}

func TestReplanErrorKeepsOriginalResult(t *testing.T) {
	engine := &scriptedPlanner{
		plans: []core.Plan{planFor("flaky", map[string]any{"text": "first"}, 0.9)},
		errs:  []error{nil, errors.Newf(errors.CodePlanning, "model offline")},
	}
	a, err := New(engine, newTestExecutor(t, "unused"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result, err := a.HandleQuery(context.Background(), "do something")
	if err != nil {
		t.Fatalf("HandleQuery: %v", err)
	}
	if result.Status() != core.StatusFailure || result.ToolName() != "flaky" {
		t.Fatalf("result = %v %v, want original flaky failure", result.ToolName(), result.Status())
	}
}

func TestSemanticEncodingAfterReasonSuccess(t *testing.T) {
	answer := "General relativity describes gravity as curvature of spacetime. " +
		"It was published by Albert Einstein in the year nineteen fifteen."
	engine := &scriptedPlanner{plans: []core.Plan{
		planFor("reason", map[string]any{"question": "what is relativity?"}, 0.9),
	}}
	a, err := New(engine, newTestExecutor(t, answer))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result, err := a.HandleQuery(context.Background(), "what is relativity?")
	if err != nil {
		t.Fatalf("HandleQuery: %v", err)
	}
	if !result.IsSuccess() {
		t.Fatalf("status = %v: %s", result.Status(), result.Err())
	}
	facts := a.Memory().NodesByType(core.TypeFact)
	if len(facts) == 0 {
		t.Fatal("no fact nodes ingested from the reasoning answer")
	}
}

func TestReliabilityRecording(t *testing.T) {
	engine := &scriptedPlanner{plans: []core.Plan{
		planFor("flaky", map[string]any{"text": "first"}, 0.9),
		planFor("echo", map[string]any{"text": "recovered"}, 0.9),
	}}
	tracker := reliability.NewTracker(reliability.DefaultTrackerConfig())
	a, err := New(engine, newTestExecutor(t, "unused"), WithReliabilityTracker(tracker))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := a.HandleQuery(context.Background(), "go"); err != nil {
		t.Fatalf("HandleQuery: %v", err)
	}
	if score := tracker.Score("flaky"); score >= 0.5 {
		t.Fatalf("flaky score = %v, want below neutral", score)
	}
	if score := tracker.Score("echo"); score <= 0.5 {
		t.Fatalf("echo score = %v, want above neutral", score)
	}
}

func TestAuditTrail(t *testing.T) {
	engine := &scriptedPlanner{plans: []core.Plan{
		planFor("flaky", map[string]any{"text": "first"}, 0.9),
		planFor("echo", map[string]any{"text": "recovered"}, 0.9),
	}}
	store := planner.NewMemoryAuditStore()
	a, err := New(engine, newTestExecutor(t, "unused"), WithAuditStore(store))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := a.HandleQuery(context.Background(), "go"); err != nil {
		t.Fatalf("HandleQuery: %v", err)
	}

	events, err := store.List(context.Background(), planner.AuditFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("audit events = %d, want 2", len(events))
	}
	if events[0].Status != planner.AuditStatusPlanned || events[1].Status != planner.AuditStatusReplanned {
		t.Fatalf("statuses = %s, %s", events[0].Status, events[1].Status)
	}
}

func TestStateRecentResultsBounded(t *testing.T) {
	s := NewState()
	for i := 0; i < 8; i++ {
		call := core.NewToolCall("echo", map[string]any{"text": "x"})
		s.RecordExecution(call, core.BlockedResult("echo", "n/a"))
	}
	if got := len(s.RecentResults()); got != defaultMaxRecent {
		t.Fatalf("recent results = %d, want %d", got, defaultMaxRecent)
	}
}

type recallStore struct {
	texts []string
}

func (s *recallStore) Upsert(_ context.Context, _ string, points []memory.Point) error {
	for _, p := range points {
		if text, ok := p.Payload["text"].(string); ok {
			s.texts = append(s.texts, text)
		}
	}
	return nil
}

func (s *recallStore) Search(_ context.Context, _ string, _ []float32, limit int, _ float32) ([]memory.SearchResult, error) {
	texts := s.texts
	if len(texts) > limit {
		texts = texts[:limit]
	}
	results := make([]memory.SearchResult, 0, len(texts))
	for _, text := range texts {
		results = append(results, memory.SearchResult{
			Point: memory.Point{Payload: map[string]any{"text": text}},
		})
	}
	return results, nil
}

func (s *recallStore) CreateCollection(_ context.Context, _ string, _ uint64) error { return nil }

type staticEmbedder struct{}

func (staticEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func TestEpisodicRecallSurfacesRelatedMemories(t *testing.T) {
	store := &recallStore{texts: []string{"madrid is the capital of spain"}}
	index := memory.NewEpisodicIndex(store, staticEmbedder{}, "facts")

	engine := &scriptedPlanner{plans: []core.Plan{
		planFor("echo", map[string]any{"text": "ok"}, 1.0),
	}}
	a, err := New(engine, newTestExecutor(t, "fine"), WithEpisodicIndex(index))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := a.HandleQuery(context.Background(), "what is the capital?"); err != nil {
		t.Fatalf("HandleQuery: %v", err)
	}

	related, ok := engine.seenSignals[0]["related_memories"].([]string)
	if !ok || len(related) != 1 {
		t.Fatalf("related_memories = %v", engine.seenSignals[0]["related_memories"])
	}
	if related[0] != "madrid is the capital of spain" {
		t.Fatalf("related_memories[0] = %q", related[0])
	}
}

type capturingEmitter struct {
	events []core.Event
}

func (e *capturingEmitter) Emit(_ context.Context, event core.Event) {
	e.events = append(e.events, event)
}

func (e *capturingEmitter) byType(t core.EventType) []core.Event {
	var out []core.Event
	for _, ev := range e.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

func TestPruneEmitsMemoryPrunedEvent(t *testing.T) {
	engine := &scriptedPlanner{plans: []core.Plan{
		planFor("echo", map[string]any{"text": "ok"}, 1.0),
	}}
	emitter := &capturingEmitter{}
	cfg := memory.DefaultConfig()
	cfg.PruneInterval = 1
	// A threshold above fresh-node importance prunes every unprotected
	// node on the first forgetting cycle.
	cfg.PruneThreshold = 10

	a, err := New(engine, newTestExecutor(t, "fine"),
		WithMemoryConfig(cfg),
		WithEventEmitter(emitter),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := a.HandleQuery(context.Background(), "ephemeral input"); err != nil {
		t.Fatalf("HandleQuery: %v", err)
	}

	pruned := emitter.byType(core.EventMemoryPruned)
	if len(pruned) == 0 {
		t.Fatal("no memory.pruned event emitted")
	}
	nodes, ok := pruned[0].Payload["nodes"].(int)
	if !ok || nodes < 1 {
		t.Fatalf("pruned nodes = %v", pruned[0].Payload["nodes"])
	}
}

func TestSetConfigAdjustsReplanPolicy(t *testing.T) {
	engine := &scriptedPlanner{plans: []core.Plan{
		planFor("echo", map[string]any{"text": "first"}, 0.9),
		planFor("echo", map[string]any{"text": "second"}, 0.9),
	}}
	a, err := New(engine, newTestExecutor(t, "fine"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := a.HandleQuery(context.Background(), "go"); err != nil {
		t.Fatalf("HandleQuery: %v", err)
	}
	if engine.calls != 1 {
		t.Fatalf("planner calls = %d before reconfiguration, want 1", engine.calls)
	}

	cfg := a.Config()
	cfg.ReplanConfidenceFloor = 0.95
	a.SetConfig(cfg)

	if _, err := a.HandleQuery(context.Background(), "go again"); err != nil {
		t.Fatalf("HandleQuery: %v", err)
	}
	if engine.calls != 3 {
		t.Fatalf("planner calls = %d after raising the floor, want 3", engine.calls)
	}
}

func TestMemoryConfigOptionKeepsSignalsLive(t *testing.T) {
	engine := &scriptedPlanner{plans: []core.Plan{
		planFor("echo", map[string]any{"text": "a"}, 1.0),
		planFor("echo", map[string]any{"text": "b"}, 1.0),
		planFor("echo", map[string]any{"text": "c"}, 1.0),
	}}
	cfg := memory.DefaultConfig()
	cfg.PruneInterval = 50

	a, err := New(engine, newTestExecutor(t, "fine"), WithMemoryConfig(cfg))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// The same utterance over consecutive turns must surface as a stable
	// entity: the analyzer has to read the scorer the option installed.
	for i := 0; i < 3; i++ {
		if _, err := a.HandleQuery(context.Background(), "madrid"); err != nil {
			t.Fatalf("HandleQuery %d: %v", i, err)
		}
	}

	last := engine.seenSignals[len(engine.seenSignals)-1]
	stable, ok := last["stable_entities"].([]string)
	if !ok || len(stable) == 0 {
		t.Fatalf("stable_entities = %v", last["stable_entities"])
	}
	if stable[0] != "madrid" {
		t.Fatalf("stable_entities[0] = %q", stable[0])
	}
}
