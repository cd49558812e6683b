package tools

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jllopis/topomind/pkg/core"
	"github.com/jllopis/topomind/pkg/resilience"
	"github.com/jllopis/topomind/pkg/telemetry"
)

// ConnectorResolver resolves a connector by name. Implemented by the
// connector manager; the executor only needs lookup.
type ConnectorResolver interface {
	Get(name string) (core.ExecutionConnector, error)
}

// Executor runs tool calls under controlled runtime policy. It always
// returns a ToolResult, never an error: resolution failures become blocked
// results, validation and execution failures become failure results.
//
// Flow: resolve contract and connector, validate arguments, attempt the
// connector call under the per-attempt timeout up to the retry budget,
// validate the output, build the result. Validation failures are
// deterministic and never retried. An output-schema violation after a
// connector ran is terminal for the same reason.
type Executor struct {
	registry     *Registry
	connectors   ConnectorResolver
	argValidator *ArgumentValidator
	outValidator *OutputValidator
	tracer       trace.Tracer
	metrics      *telemetry.LoopMetrics
	logger       *slog.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithExecutorMetrics attaches loop metrics to the executor.
func WithExecutorMetrics(m *telemetry.LoopMetrics) ExecutorOption {
	return func(e *Executor) { e.metrics = m }
}

// WithExecutorLogger overrides the default logger.
func WithExecutorLogger(logger *slog.Logger) ExecutorOption {
	return func(e *Executor) { e.logger = logger }
}

// NewExecutor creates an executor over a registry and connector resolver.
func NewExecutor(registry *Registry, connectors ConnectorResolver, opts ...ExecutorOption) *Executor {
	e := &Executor{
		registry:     registry,
		connectors:   connectors,
		argValidator: NewArgumentValidator(registry),
		outValidator: NewOutputValidator(registry),
		tracer:       otel.Tracer("topomind/tools"),
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry exposes the tool registry so the agent can hand the available
// contracts to the planner. Execution authority stays inside the executor.
func (e *Executor) Registry() *Registry { return e.registry }

// Execute runs one tool call and classifies the outcome.
func (e *Executor) Execute(ctx context.Context, toolName string, args map[string]any) core.ToolResult {
	ctx, span := e.tracer.Start(ctx, "tools.execute",
		trace.WithAttributes(attribute.String(telemetry.AttrToolName, toolName)))
	defer span.End()

	start := time.Now()

	contract, err := e.registry.Get(toolName)
	if err != nil {
		return e.finish(ctx, span, core.BlockedResult(toolName, err.Error()))
	}
	connector, err := e.connectors.Get(contract.ConnectorName)
	if err != nil {
		return e.finish(ctx, span, core.BlockedResult(toolName, err.Error()))
	}
	span.SetAttributes(
		attribute.String(telemetry.AttrToolVersion, contract.Version),
		attribute.String(telemetry.AttrToolConnector, contract.ConnectorName),
	)

	if err := e.argValidator.Validate(toolName, args); err != nil {
		return e.finish(ctx, span, core.FailureResult(toolName, contract.Version,
			"invalid arguments: "+err.Error(), time.Since(start)))
	}

	maxAttempts := 1
	if contract.Retryable {
		maxAttempts = contract.MaxRetries + 1
	}
	timeout := contract.Timeout()

	var lastErr string
	for attempt := 0; attempt < maxAttempts; attempt++ {
		span.SetAttributes(attribute.Int(telemetry.AttrToolAttempt, attempt))

		raw, err := resilience.WithTimeoutResult(ctx, resilience.TimeoutConfig{Duration: timeout},
			func() (any, error) {
				return connector.Execute(ctx, contract, args, timeout)
			})
		if err != nil {
			lastErr = err.Error()
			e.logger.WarnContext(ctx, "tool attempt failed",
				slog.String("tool", toolName),
				slog.Int("attempt", attempt),
				slog.String("error", lastErr),
			)
			continue
		}

		output, err := e.outValidator.Validate(toolName, raw)
		if err != nil {
			return e.finish(ctx, span, core.FailureResult(toolName, contract.Version,
				"invalid output: "+err.Error(), time.Since(start)))
		}

		stability := 1.0 - float64(attempt)*0.1
		return e.finish(ctx, span, core.SuccessResult(toolName, contract.Version,
			output, time.Since(start), stability))
	}

	return e.finish(ctx, span, core.FailureResult(toolName, contract.Version, lastErr, time.Since(start)))
}

func (e *Executor) finish(ctx context.Context, span trace.Span, result core.ToolResult) core.ToolResult {
	span.SetAttributes(telemetry.ResultAttributes(
		string(result.Status()), result.LatencyMS(), result.StabilitySignal())...)
	e.metrics.RecordExecution(ctx, result.ToolName(), string(result.Status()), result.LatencyMS())
	if !result.IsSuccess() {
		e.logger.InfoContext(ctx, "tool execution did not succeed",
			slog.String("tool", result.ToolName()),
			slog.String("status", string(result.Status())),
			slog.String("error", result.Err()),
		)
	}
	return result
}
