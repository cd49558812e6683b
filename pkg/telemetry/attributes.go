// Copyright 2026 © The TopoMind Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Semantic conventions for agent telemetry. These follow OpenTelemetry
// naming conventions where applicable.
const (
	// Turn attributes
	AttrTurnID    = "topomind.turn.id"
	AttrTurnIndex = "topomind.turn.index"
	AttrTurnInput = "topomind.turn.input"

	// Tool attributes
	AttrToolName       = "topomind.tool.name"
	AttrToolVersion    = "topomind.tool.version"
	AttrToolCallID     = "topomind.tool.call_id"
	AttrToolConnector  = "topomind.tool.connector"
	AttrToolStatus     = "topomind.tool.status"
	AttrToolAttempt    = "topomind.tool.attempt"
	AttrToolDurationMs = "topomind.tool.duration_ms"
	AttrToolStability  = "topomind.tool.stability"

	// Plan attributes
	AttrPlanSteps      = "topomind.plan.steps"
	AttrPlanConfidence = "topomind.plan.confidence"
	AttrPlanGoal       = "topomind.plan.goal"
	AttrReplanReason   = "topomind.replan.reason"

	// Memory attributes
	AttrMemoryNodes       = "topomind.memory.nodes"
	AttrMemoryEdges       = "topomind.memory.edges"
	AttrMemoryPrunedNodes = "topomind.memory.pruned_nodes"

	// LLM attributes (extending standard gen_ai conventions)
	AttrLLMModel    = "gen_ai.request.model"
	AttrLLMProvider = "gen_ai.system"
)

// ToolAttributes returns attributes for a tool execution span.
func ToolAttributes(name, version, connector string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrToolName, name),
	}
	if version != "" {
		attrs = append(attrs, attribute.String(AttrToolVersion, version))
	}
	if connector != "" {
		attrs = append(attrs, attribute.String(AttrToolConnector, connector))
	}
	return attrs
}

// ResultAttributes returns attributes describing a finished execution.
func ResultAttributes(status string, latencyMS int64, stability float64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrToolStatus, status),
		attribute.Int64(AttrToolDurationMs, latencyMS),
		attribute.Float64(AttrToolStability, stability),
	}
}

// PlanAttributes returns attributes for a planning span.
func PlanAttributes(steps int, confidence float64, goal string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.Int(AttrPlanSteps, steps),
		attribute.Float64(AttrPlanConfidence, confidence),
	}
	if goal != "" {
		attrs = append(attrs, attribute.String(AttrPlanGoal, goal))
	}
	return attrs
}
