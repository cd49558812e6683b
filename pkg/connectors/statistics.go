package connectors

import (
	"context"
	"math"
	"time"

	"github.com/jllopis/topomind/pkg/core"
	"github.com/jllopis/topomind/pkg/errors"
)

// StatisticsConnector computes statistical operations locally. Population
// (not sample) standard deviation, matching common analytics defaults.
type StatisticsConnector struct{}

// NewStatisticsConnector creates the connector.
func NewStatisticsConnector() *StatisticsConnector { return &StatisticsConnector{} }

// Execute dispatches on args["operation"]: mean, std, correlation.
func (c *StatisticsConnector) Execute(ctx context.Context, contract core.Contract, args map[string]any, timeout time.Duration) (any, error) {
	operation, _ := args["operation"].(string)

	switch operation {
	case "mean":
		values, err := numberSlice(args, "values")
		if err != nil {
			return nil, err
		}
		return map[string]any{"result": mean(values)}, nil

	case "std":
		values, err := numberSlice(args, "values")
		if err != nil {
			return nil, err
		}
		return map[string]any{"result": std(values)}, nil

	case "correlation":
		x, err := numberSlice(args, "x")
		if err != nil {
			return nil, err
		}
		y, err := numberSlice(args, "y")
		if err != nil {
			return nil, err
		}
		if len(x) != len(y) {
			return nil, errors.Newf(errors.CodeValidation, "x and y must have same length")
		}
		r, err := correlation(x, y)
		if err != nil {
			return nil, err
		}
		return map[string]any{"result": r}, nil

	default:
		return nil, errors.Newf(errors.CodeToolFailure, "unsupported statistics operation: %q", operation)
	}
}

// Health always reports healthy; computation is local.
func (c *StatisticsConnector) Health(ctx context.Context) bool { return true }

// Shutdown is a no-op.
func (c *StatisticsConnector) Shutdown(ctx context.Context) error { return nil }

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func std(values []float64) float64 {
	m := mean(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

func correlation(x, y []float64) (float64, error) {
	mx, my := mean(x), mean(y)
	var cov, vx, vy float64
	for i := range x {
		dx := x[i] - mx
		dy := y[i] - my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return 0, errors.Newf(errors.CodeToolFailure, "correlation undefined for constant series")
	}
	return cov / math.Sqrt(vx*vy), nil
}

// numberSlice extracts a required numeric list argument. Arguments have
// already passed schema validation; this converts JSON-decoded values to
// float64 and rejects absence of an operation-specific requirement the
// schema marks optional.
func numberSlice(args map[string]any, key string) ([]float64, error) {
	raw, ok := args[key]
	if !ok {
		return nil, errors.Newf(errors.CodeValidation, "missing %q for this operation", key)
	}
	list, ok := raw.([]any)
	if !ok {
		if typed, isTyped := raw.([]float64); isTyped {
			if len(typed) == 0 {
				return nil, errors.Newf(errors.CodeValidation, "%q must not be empty", key)
			}
			return typed, nil
		}
		return nil, errors.Newf(errors.CodeValidation, "%q must be a numeric list", key)
	}
	if len(list) == 0 {
		return nil, errors.Newf(errors.CodeValidation, "%q must not be empty", key)
	}
	out := make([]float64, len(list))
	for i, v := range list {
		switch n := v.(type) {
		case float64:
			out[i] = n
		case float32:
			out[i] = float64(n)
		case int:
			out[i] = float64(n)
		case int64:
			out[i] = float64(n)
		default:
			return nil, errors.Newf(errors.CodeValidation, "%q must contain only numbers", key)
		}
	}
	return out, nil
}
