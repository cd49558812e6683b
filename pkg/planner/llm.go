package planner

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jllopis/topomind/pkg/core"
	"github.com/jllopis/topomind/pkg/errors"
	"github.com/jllopis/topomind/pkg/llm"
	"github.com/jllopis/topomind/pkg/telemetry"
)

const defaultPlanConfidence = 0.7

// LLMPlanner asks a language model to pick a tool, expecting strict JSON
// back. Malformed output, hallucinated tool names, or a provider failure all
// surface as planning errors; the caller decides how to degrade.
type LLMPlanner struct {
	provider llm.Provider
	model    string
	prompts  PromptBuilder
	tracer   trace.Tracer
	logger   *slog.Logger
}

// LLMPlannerOption configures the planner.
type LLMPlannerOption func(*LLMPlanner)

// WithPlannerLogger overrides the default logger.
func WithPlannerLogger(logger *slog.Logger) LLMPlannerOption {
	return func(p *LLMPlanner) { p.logger = logger }
}

// NewLLMPlanner creates the planner over a provider.
func NewLLMPlanner(provider llm.Provider, model string, opts ...LLMPlannerOption) *LLMPlanner {
	p := &LLMPlanner{
		provider: provider,
		model:    model,
		tracer:   otel.Tracer("topomind/planner"),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// plannerResponse is the shape we ask the model to return. Both the
// single-tool form and the multi-step form are accepted.
type plannerResponse struct {
	Tool       string         `json:"tool"`
	Args       map[string]any `json:"args"`
	Reasoning  string         `json:"reasoning"`
	Confidence *float64       `json:"confidence"`
	Steps      []plannerStep  `json:"steps"`
}

type plannerStep struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args"`
}

// GeneratePlan prompts the model and parses its routing decision.
func (p *LLMPlanner) GeneratePlan(ctx context.Context, input string, signals map[string]any, tools []core.Contract) (core.Plan, error) {
	ctx, span := p.tracer.Start(ctx, "planner.generate")
	defer span.End()

	prompt := p.prompts.Build(input, signals, tools)
	start := time.Now()

	resp, err := p.provider.Chat(ctx, llm.ChatRequest{
		Model:    p.model,
		Messages: []llm.Message{{Role: llm.RoleUser, Content: prompt}},
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return core.Plan{}, errors.New(errors.CodePlanning, "planner backend call failed", err)
	}
	latency := time.Since(start)

	plan, err := p.parse(resp.Content, input, tools)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		p.logger.Warn("planner output rejected",
			slog.String("error", err.Error()),
			slog.String("raw", truncate(resp.Content, 500)),
		)
		return core.Plan{}, err
	}

	plan = withPlannerMeta(plan, p.model, latency)
	span.SetAttributes(telemetry.PlanAttributes(len(plan.Steps()), plan.Confidence(), plan.Goal())...)
	return plan, nil
}

func (p *LLMPlanner) parse(raw, input string, tools []core.Contract) (core.Plan, error) {
	var parsed plannerResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		extracted, ok := extractFirstJSON(raw)
		if !ok {
			return core.Plan{}, errors.Newf(errors.CodePlanning, "no JSON object found in planner output")
		}
		if err := json.Unmarshal([]byte(extracted), &parsed); err != nil {
			return core.Plan{}, errors.New(errors.CodePlanning, "planner output is not valid JSON", err)
		}
	}

	confidence := defaultPlanConfidence
	if parsed.Confidence != nil {
		confidence = *parsed.Confidence
	}

	steps := parsed.Steps
	if len(steps) == 0 && parsed.Tool != "" {
		steps = []plannerStep{{Tool: parsed.Tool, Args: parsed.Args}}
	}
	if len(steps) == 0 {
		return core.Plan{}, errors.Newf(errors.CodePlanning, "planner selected no tool")
	}

	// Single-step planning is enforced here; chaining happens over turns,
	// not inside one plan.
	first := steps[0]
	contract, ok := findContract(tools, first.Tool)
	if !ok {
		return core.Plan{}, errors.Newf(errors.CodePlanning, "planner selected unknown tool %q", first.Tool)
	}

	args := first.Args
	if len(args) == 0 {
		args = defaultArgs(contract, input)
	}

	reasoning := parsed.Reasoning
	if reasoning == "" {
		reasoning = "LLM planner decision"
	}

	call := core.NewToolCall(first.Tool, args)
	step := core.NewPlanStep(call, reasoning, confidence)
	return core.NewPlan([]core.PlanStep{step}, core.WithGoal("LLM planning")), nil
}

func withPlannerMeta(plan core.Plan, model string, latency time.Duration) core.Plan {
	return core.NewPlan(plan.Steps(),
		core.WithGoal(plan.Goal()),
		core.WithMeta(map[string]any{
			"planner":         "llm",
			"model":           model,
			"latency_seconds": latency.Seconds(),
		}),
	)
}

func findContract(tools []core.Contract, name string) (core.Contract, bool) {
	for _, tool := range tools {
		if tool.Name == name {
			return tool, true
		}
	}
	return core.Contract{}, false
}

// defaultArgs maps the raw input onto the first schema parameter when the
// model returned an empty args object.
func defaultArgs(contract core.Contract, input string) map[string]any {
	if len(contract.InputSchema) == 0 {
		return map[string]any{}
	}
	keys := make([]string, 0, len(contract.InputSchema))
	for k := range contract.InputSchema {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return map[string]any{keys[0]: input}
}

// extractFirstJSON returns the first balanced top-level JSON object in text.
// Models wrap their answer in prose often enough that this is worth having.
func extractFirstJSON(text string) (string, bool) {
	start := -1
	depth := 0
	for i, r := range text {
		switch r {
		case '{':
			if start == -1 {
				start = i
			}
			depth++
		case '}':
			if start == -1 {
				continue
			}
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
