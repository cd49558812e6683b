package core

// PlanStep wraps a ToolCall with planner-level reasoning metadata.
type PlanStep struct {
	action     ToolCall
	reasoning  string
	confidence float64
}

// NewPlanStep builds a PlanStep; confidence is clamped to [0,1].
func NewPlanStep(action ToolCall, reasoning string, confidence float64) PlanStep {
	return PlanStep{
		action:     action,
		reasoning:  reasoning,
		confidence: Clamp01(confidence),
	}
}

// Action returns the tool call this step executes.
func (s PlanStep) Action() ToolCall { return s.action }

// Reasoning returns the planner explanation for this step.
func (s PlanStep) Reasoning() string { return s.reasoning }

// Confidence returns the step confidence in [0,1].
func (s PlanStep) Confidence() float64 { return s.confidence }

// Plan is the structured output of a reasoning engine: an ordered sequence
// of steps. An empty plan is a valid terminal state meaning "no action".
type Plan struct {
	steps []PlanStep
	goal  string
	meta  map[string]any
}

// PlanOption configures optional Plan fields at construction.
type PlanOption func(*Plan)

// WithGoal records the high-level objective the planner is pursuing.
func WithGoal(goal string) PlanOption {
	return func(p *Plan) { p.goal = goal }
}

// WithMeta attaches planner metadata (model name, latency, and so on).
func WithMeta(meta map[string]any) PlanOption {
	return func(p *Plan) {
		p.meta = make(map[string]any, len(meta))
		for k, v := range meta {
			p.meta[k] = v
		}
	}
}

// NewPlan builds a Plan from ordered steps.
func NewPlan(steps []PlanStep, opts ...PlanOption) Plan {
	p := Plan{steps: append([]PlanStep(nil), steps...)}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// EmptyPlan returns a terminal plan with no steps.
func EmptyPlan() Plan { return Plan{} }

// Steps returns a copy of the ordered plan steps.
func (p Plan) Steps() []PlanStep { return append([]PlanStep(nil), p.steps...) }

// IsEmpty reports whether the planner produced no actions.
func (p Plan) IsEmpty() bool { return len(p.steps) == 0 }

// FirstStep returns the first step. ok is false for an empty plan.
func (p Plan) FirstStep() (step PlanStep, ok bool) {
	if len(p.steps) == 0 {
		return PlanStep{}, false
	}
	return p.steps[0], true
}

// Confidence returns the plan-level confidence: the minimum over its steps,
// or zero for an empty plan.
func (p Plan) Confidence() float64 {
	if len(p.steps) == 0 {
		return 0
	}
	min := p.steps[0].confidence
	for _, s := range p.steps[1:] {
		if s.confidence < min {
			min = s.confidence
		}
	}
	return min
}

// Goal returns the plan objective, if any.
func (p Plan) Goal() string { return p.goal }

// Meta returns a copy of the planner metadata.
func (p Plan) Meta() map[string]any {
	out := make(map[string]any, len(p.meta))
	for k, v := range p.meta {
		out[k] = v
	}
	return out
}
