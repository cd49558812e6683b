// Copyright 2026 © The TopoMind Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// LoopMetrics tracks the cognitive loop for production monitoring: tool
// execution outcomes and latencies, replanning frequency, and memory
// pruning volume. All methods are nil-safe so instrumentation can be
// optional at every call site.
type LoopMetrics struct {
	// turnCounter tracks handled turns by outcome
	turnCounter metric.Int64Counter

	// executionCounter tracks tool executions by tool and status
	executionCounter metric.Int64Counter

	// latencyHistogram tracks tool execution latency in milliseconds
	latencyHistogram metric.Int64Histogram

	// replanCounter tracks triggered replans by trigger reason
	replanCounter metric.Int64Counter

	// prunedCounter tracks nodes removed by the forgetting policy
	prunedCounter metric.Int64Counter
}

// NewLoopMetrics creates a loop metrics tracker with OTEL meters.
func NewLoopMetrics(ctx context.Context) (*LoopMetrics, error) {
	meter := otel.Meter("topomind/loop")

	turnCounter, err := meter.Int64Counter(
		"topomind.agent.turns",
		metric.WithDescription("Handled turns by outcome"),
	)
	if err != nil {
		return nil, err
	}

	executionCounter, err := meter.Int64Counter(
		"topomind.tool.executions",
		metric.WithDescription("Tool executions by tool and status"),
	)
	if err != nil {
		return nil, err
	}

	latencyHistogram, err := meter.Int64Histogram(
		"topomind.tool.latency",
		metric.WithDescription("Tool execution latency"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	replanCounter, err := meter.Int64Counter(
		"topomind.agent.replans",
		metric.WithDescription("Triggered replans by reason"),
	)
	if err != nil {
		return nil, err
	}

	prunedCounter, err := meter.Int64Counter(
		"topomind.memory.pruned_nodes",
		metric.WithDescription("Nodes removed by the forgetting policy"),
	)
	if err != nil {
		return nil, err
	}

	return &LoopMetrics{
		turnCounter:      turnCounter,
		executionCounter: executionCounter,
		latencyHistogram: latencyHistogram,
		replanCounter:    replanCounter,
		prunedCounter:    prunedCounter,
	}, nil
}

// RecordTurn increments the turn counter with its outcome.
func (m *LoopMetrics) RecordTurn(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.turnCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String("outcome", outcome)),
	)
}

// RecordExecution records one tool execution outcome and its latency.
func (m *LoopMetrics) RecordExecution(ctx context.Context, tool, status string, latencyMS int64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("status", status),
	)
	m.executionCounter.Add(ctx, 1, attrs)
	m.latencyHistogram.Record(ctx, latencyMS, attrs)
}

// RecordReplan increments the replan counter with the trigger reason.
func (m *LoopMetrics) RecordReplan(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.replanCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String("reason", reason)),
	)
}

// RecordPruned adds the number of nodes removed in one forgetting cycle.
func (m *LoopMetrics) RecordPruned(ctx context.Context, nodes int64) {
	if m == nil {
		return
	}
	m.prunedCounter.Add(ctx, nodes)
}
