package planner

import (
	"context"
	"fmt"
	"strings"

	"github.com/jllopis/topomind/pkg/core"
)

// RulePlanner is the deterministic fallback engine. It routes everything to
// the echo tool, preferring stable conversational context over the raw
// input. Useful offline and as the baseline in tests.
type RulePlanner struct{}

// NewRulePlanner creates the rule engine.
func NewRulePlanner() *RulePlanner { return &RulePlanner{} }

// GeneratePlan never fails; some echo plan is always produced.
func (p *RulePlanner) GeneratePlan(ctx context.Context, input string, signals map[string]any, tools []core.Contract) (core.Plan, error) {
	if entity, ok := firstStableEntity(signals); ok {
		return echoPlan(fmt.Sprintf("Still talking about: %s", entity), "stable context dominates"), nil
	}

	if strings.Contains(strings.ToLower(input), "hello") {
		return echoPlan("Hello from TopoMind!", "greeting detected"), nil
	}

	return echoPlan(fmt.Sprintf("You said: %s", input), "default echo routing"), nil
}

func echoPlan(text, reasoning string) core.Plan {
	call := core.NewToolCall("echo", map[string]any{"text": text})
	step := core.NewPlanStep(call, reasoning, 1.0)
	return core.NewPlan([]core.PlanStep{step}, core.WithGoal("rule-based routing"))
}

func firstStableEntity(signals map[string]any) (string, bool) {
	raw, ok := signals["stable_entities"]
	if !ok {
		return "", false
	}
	switch entities := raw.(type) {
	case []string:
		if len(entities) > 0 {
			return entities[0], true
		}
	case []any:
		if len(entities) > 0 {
			if s, ok := entities[0].(string); ok {
				return s, true
			}
		}
	}
	return "", false
}
