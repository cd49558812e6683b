package core

import "github.com/google/uuid"

// ToolCall is an intent packet from the planner to the executor: which tool
// to run and with which arguments. Immutable once constructed.
type ToolCall struct {
	id         string
	toolName   string
	arguments  map[string]any
	confidence float64
	reason     string
}

// ToolCallOption configures optional ToolCall fields at construction.
type ToolCallOption func(*ToolCall)

// WithCallID overrides the generated call id.
func WithCallID(id string) ToolCallOption {
	return func(c *ToolCall) { c.id = id }
}

// WithCallConfidence sets the planner confidence, clamped to [0,1].
func WithCallConfidence(confidence float64) ToolCallOption {
	return func(c *ToolCall) { c.confidence = Clamp01(confidence) }
}

// WithCallReason attaches the planner's free-text justification.
func WithCallReason(reason string) ToolCallOption {
	return func(c *ToolCall) { c.reason = reason }
}

// NewToolCall builds a ToolCall with a fresh id and full confidence.
// The arguments map is copied so later caller mutation cannot leak in.
func NewToolCall(toolName string, arguments map[string]any, opts ...ToolCallOption) ToolCall {
	c := ToolCall{
		id:         uuid.NewString(),
		toolName:   toolName,
		arguments:  copyArgs(arguments),
		confidence: 1.0,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// ID returns the unique call identifier.
func (c ToolCall) ID() string { return c.id }

// ToolName returns the name of the tool to invoke.
func (c ToolCall) ToolName() string { return c.toolName }

// Arguments returns a copy of the proposed arguments.
func (c ToolCall) Arguments() map[string]any { return copyArgs(c.arguments) }

// Confidence returns the planner confidence in [0,1].
func (c ToolCall) Confidence() float64 { return c.confidence }

// Reason returns the planner's justification, if any.
func (c ToolCall) Reason() string { return c.reason }

func copyArgs(args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		out[k] = v
	}
	return out
}

// Clamp01 clamps v to the [0,1] interval.
func Clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
