package planner

import (
	"github.com/jllopis/topomind/pkg/errors"
	"github.com/jllopis/topomind/pkg/llm"
)

// New builds the reasoning engine named by kind: "rule" for the
// deterministic engine, "llm" (or "ollama") for model-backed planning.
// An empty kind selects the rule engine.
func New(kind string, provider llm.Provider, model string) (ReasoningEngine, error) {
	switch kind {
	case "", "rule":
		return NewRulePlanner(), nil
	case "llm", "ollama":
		if provider == nil {
			return nil, errors.Newf(errors.CodeValidation, "planner kind %q requires a provider", kind)
		}
		return NewLLMPlanner(provider, model), nil
	default:
		return nil, errors.Newf(errors.CodeValidation, "unknown planner kind %q", kind)
	}
}
