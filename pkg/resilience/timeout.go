// SPDX-License-Identifier: Apache-2.0

// Package resilience provides the timeout boundary around connector calls.
// There is no cancellation channel to an in-flight call: the caller stops
// waiting when the deadline passes, the call itself runs to completion in
// the background.
package resilience

import (
	"context"
	"time"

	"github.com/jllopis/topomind/pkg/errors"
)

// TimeoutConfig controls timeout behavior.
type TimeoutConfig struct {
	// Duration is the maximum time allowed for the operation.
	// Zero disables the boundary.
	Duration time.Duration
}

// WithTimeoutResult executes fn under a deadline, returning its result or a
// CodeTimeout error when the deadline is exceeded first.
func WithTimeoutResult(ctx context.Context, config TimeoutConfig, fn func() (any, error)) (any, error) {
	if config.Duration == 0 {
		return fn()
	}

	ctx, cancel := context.WithTimeout(ctx, config.Duration)
	defer cancel()

	type result struct {
		value any
		err   error
	}

	done := make(chan result, 1)
	go func() {
		value, err := fn()
		done <- result{value, err}
	}()

	select {
	case <-ctx.Done():
		return nil, errors.New(errors.CodeTimeout, "operation exceeded timeout", ctx.Err()).
			WithContext("timeout", config.Duration.String()).
			WithRecoverable(true)
	case res := <-done:
		return res.value, res.err
	}
}
