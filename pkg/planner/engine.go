package planner

import (
	"context"

	"github.com/jllopis/topomind/pkg/core"
)

// ReasoningEngine converts user input, system signals, and the available
// tool contracts into an execution plan. Signals carry memory-derived
// context such as stable entities and, on replanning, feedback about the
// previous attempt. An error means no plan could be produced; callers must
// not inspect the returned Plan in that case.
type ReasoningEngine interface {
	GeneratePlan(ctx context.Context, input string, signals map[string]any, tools []core.Contract) (core.Plan, error)
}
