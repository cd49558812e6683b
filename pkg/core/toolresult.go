package core

import "time"

// Status is the terminal classification of a tool execution.
type Status string

const (
	// StatusSuccess means the tool executed and its output validated.
	StatusSuccess Status = "success"

	// StatusFailure means the tool was resolved but execution or
	// validation did not satisfy its contract.
	StatusFailure Status = "failure"

	// StatusBlocked means the tool or connector could not be resolved,
	// so execution was never attempted.
	StatusBlocked Status = "blocked"
)

// ToolResult is the immutable record of a single tool execution. It is the
// canonical execution observation passed into memory, reliability tracking,
// and replanning.
type ToolResult struct {
	toolName    string
	toolVersion string
	status      Status
	output      any
	errMsg      string
	latency     time.Duration
	stability   float64
}

// SuccessResult builds a success ToolResult with validated output.
func SuccessResult(toolName, toolVersion string, output any, latency time.Duration, stability float64) ToolResult {
	return ToolResult{
		toolName:    toolName,
		toolVersion: toolVersion,
		status:      StatusSuccess,
		output:      output,
		latency:     latency,
		stability:   Clamp01(stability),
	}
}

// FailureResult builds a failure ToolResult carrying the error message.
func FailureResult(toolName, toolVersion, errMsg string, latency time.Duration) ToolResult {
	return ToolResult{
		toolName:    toolName,
		toolVersion: toolVersion,
		status:      StatusFailure,
		errMsg:      errMsg,
		latency:     latency,
	}
}

// BlockedResult builds a blocked ToolResult. Version is unknown because the
// tool contract was never resolved; latency is zero because no execution
// policy ran.
func BlockedResult(toolName, errMsg string) ToolResult {
	return ToolResult{
		toolName:    toolName,
		toolVersion: "unknown",
		status:      StatusBlocked,
		errMsg:      errMsg,
	}
}

// ToolName returns the name of the executed tool.
func (r ToolResult) ToolName() string { return r.toolName }

// ToolVersion returns the contract version used during execution.
func (r ToolResult) ToolVersion() string { return r.toolVersion }

// Status returns the execution status.
func (r ToolResult) Status() Status { return r.status }

// Output returns the validated output. Nil unless status is success.
func (r ToolResult) Output() any { return r.output }

// Err returns the error message. Empty unless status is failure or blocked.
func (r ToolResult) Err() string { return r.errMsg }

// Latency returns the wall execution time, monotonic-clock derived.
func (r ToolResult) Latency() time.Duration { return r.latency }

// LatencyMS returns the execution time in whole milliseconds.
func (r ToolResult) LatencyMS() int64 { return r.latency.Milliseconds() }

// StabilitySignal returns the execution confidence in [0,1]. Later retry
// attempts yield lower values even on eventual success.
func (r ToolResult) StabilitySignal() float64 { return r.stability }

// IsSuccess reports whether the execution succeeded.
func (r ToolResult) IsSuccess() bool { return r.status == StatusSuccess }
