package connectors

import (
	"context"
	"math"
	"time"

	"github.com/jllopis/topomind/pkg/core"
	"github.com/jllopis/topomind/pkg/errors"
)

// TimeSeriesConnector performs local time-series transformations.
type TimeSeriesConnector struct{}

// NewTimeSeriesConnector creates the connector.
func NewTimeSeriesConnector() *TimeSeriesConnector { return &TimeSeriesConnector{} }

// Execute dispatches on args["operation"]: moving_average, cumulative_sum.
func (c *TimeSeriesConnector) Execute(ctx context.Context, contract core.Contract, args map[string]any, timeout time.Duration) (any, error) {
	operation, _ := args["operation"].(string)
	values, err := numberSlice(args, "values")
	if err != nil {
		return nil, err
	}

	switch operation {
	case "moving_average":
		window, err := intArg(args, "window")
		if err != nil {
			return nil, err
		}
		result, err := movingAverage(values, window)
		if err != nil {
			return nil, err
		}
		return map[string]any{"result": result}, nil

	case "cumulative_sum":
		return map[string]any{"result": cumulativeSum(values)}, nil

	default:
		return nil, errors.Newf(errors.CodeToolFailure, "unsupported timeseries operation: %q", operation)
	}
}

// Health always reports healthy; computation is local.
func (c *TimeSeriesConnector) Health(ctx context.Context) bool { return true }

// Shutdown is a no-op.
func (c *TimeSeriesConnector) Shutdown(ctx context.Context) error { return nil }

// movingAverage returns a rolling mean the same length as the input.
// Positions before the window fills carry NaN, preserving index alignment
// with the source series.
func movingAverage(values []float64, window int) ([]float64, error) {
	if window <= 0 {
		return nil, errors.Newf(errors.CodeValidation, "window must be positive")
	}
	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i+1 < window {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(window)
	}
	return out, nil
}

func cumulativeSum(values []float64) []float64 {
	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		out[i] = sum
	}
	return out
}

// intArg extracts a required integer argument, accepting the whole-number
// float64 form JSON decoding produces.
func intArg(args map[string]any, key string) (int, error) {
	raw, ok := args[key]
	if !ok {
		return 0, errors.Newf(errors.CodeValidation, "missing %q for this operation", key)
	}
	switch n := raw.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n == math.Trunc(n) {
			return int(n), nil
		}
	}
	return 0, errors.Newf(errors.CodeValidation, "%q must be an integer", key)
}
