package planner

import (
	"context"
	"testing"

	"github.com/jllopis/topomind/pkg/core"
	"github.com/jllopis/topomind/pkg/errors"
	"github.com/jllopis/topomind/pkg/llm"
	"github.com/jllopis/topomind/pkg/tools"
)

func plannerTools() []core.Contract {
	return []core.Contract{tools.EchoContract(), tools.CalculateContract(), tools.ReasonContract()}
}

func TestLLMPlannerSingleToolResponse(t *testing.T) {
	provider := &llm.MockProvider{Response: `{
		"tool": "calculate",
		"args": {"expression": "2+2"},
		"reasoning": "arithmetic request",
		"confidence": 0.9
	}`}
	p := NewLLMPlanner(provider, "test-model")

	plan, err := p.GeneratePlan(context.Background(), "what is 2+2?", nil, plannerTools())
	if err != nil {
		t.Fatalf("GeneratePlan: %v", err)
	}
	step, ok := plan.FirstStep()
	if !ok {
		t.Fatal("plan is empty")
	}
	if step.Action().ToolName() != "calculate" {
		t.Fatalf("tool = %q", step.Action().ToolName())
	}
	if step.Action().Arguments()["expression"] != "2+2" {
		t.Fatalf("args = %v", step.Action().Arguments())
	}
	if step.Confidence() != 0.9 {
		t.Fatalf("confidence = %v", step.Confidence())
	}
	if plan.Meta()["model"] != "test-model" {
		t.Fatalf("meta = %v", plan.Meta())
	}
}

func TestLLMPlannerStepsResponseTruncated(t *testing.T) {
	provider := &llm.MockProvider{Response: `{
		"steps": [
			{"tool": "reason", "args": {"question": "why?"}},
			{"tool": "echo", "args": {"text": "later"}}
		],
		"confidence": 0.8
	}`}
	p := NewLLMPlanner(provider, "test-model")

	plan, err := p.GeneratePlan(context.Background(), "why?", nil, plannerTools())
	if err != nil {
		t.Fatalf("GeneratePlan: %v", err)
	}
	steps := plan.Steps()
	if len(steps) != 1 {
		t.Fatalf("len(steps) = %d, want single-step truncation", len(steps))
	}
	if steps[0].Action().ToolName() != "reason" {
		t.Fatalf("tool = %q, want first step kept", steps[0].Action().ToolName())
	}
}

func TestLLMPlannerExtractsEmbeddedJSON(t *testing.T) {
	provider := &llm.MockProvider{Response: "Sure! Here is my decision:\n" +
		`{"tool": "echo", "args": {"text": "hi"}, "confidence": 0.6}` +
		"\nLet me know if you need anything else."}
	p := NewLLMPlanner(provider, "test-model")

	plan, err := p.GeneratePlan(context.Background(), "hi", nil, plannerTools())
	if err != nil {
		t.Fatalf("GeneratePlan: %v", err)
	}
	step, _ := plan.FirstStep()
	if step.Action().ToolName() != "echo" {
		t.Fatalf("tool = %q", step.Action().ToolName())
	}
}

func TestLLMPlannerDefaultsArgsFromSchema(t *testing.T) {
	provider := &llm.MockProvider{Response: `{"tool": "reason", "args": {}}`}
	p := NewLLMPlanner(provider, "test-model")

	plan, err := p.GeneratePlan(context.Background(), "what is entropy?", nil, plannerTools())
	if err != nil {
		t.Fatalf("GeneratePlan: %v", err)
	}
	step, _ := plan.FirstStep()
	if step.Action().Arguments()["question"] != "what is entropy?" {
		t.Fatalf("args = %v, want input mapped to first schema field", step.Action().Arguments())
	}
	if step.Confidence() != defaultPlanConfidence {
		t.Fatalf("confidence = %v, want default", step.Confidence())
	}
}

func TestLLMPlannerRejectsUnknownTool(t *testing.T) {
	provider := &llm.MockProvider{Response: `{"tool": "teleport", "args": {}}`}
	p := NewLLMPlanner(provider, "test-model")

	_, err := p.GeneratePlan(context.Background(), "go", nil, plannerTools())
	if errors.CodeOf(err) != errors.CodePlanning {
		t.Fatalf("code = %v, want %v", errors.CodeOf(err), errors.CodePlanning)
	}
}

func TestLLMPlannerRejectsNonJSON(t *testing.T) {
	provider := &llm.MockProvider{Response: "I think you should use the echo tool."}
	p := NewLLMPlanner(provider, "test-model")

	_, err := p.GeneratePlan(context.Background(), "hi", nil, plannerTools())
	if errors.CodeOf(err) != errors.CodePlanning {
		t.Fatalf("code = %v, want %v", errors.CodeOf(err), errors.CodePlanning)
	}
}

func TestLLMPlannerProviderFailure(t *testing.T) {
	provider := &llm.MockProvider{Err: errors.Newf(errors.CodeInternal, "connection refused")}
	p := NewLLMPlanner(provider, "test-model")

	_, err := p.GeneratePlan(context.Background(), "hi", nil, plannerTools())
	if errors.CodeOf(err) != errors.CodePlanning {
		t.Fatalf("code = %v, want %v", errors.CodeOf(err), errors.CodePlanning)
	}
}

func TestExtractFirstJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`, true},
		{"nested object", `prefix {"a": {"b": 2}} suffix`, `{"a": {"b": 2}}`, true},
		{"no object", "plain text", "", false},
		{"unbalanced", `{"a": 1`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractFirstJSON(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("extractFirstJSON(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}
