// Copyright 2026 © The TopoMind Authors
// SPDX-License-Identifier: Apache-2.0

// Package planner converts user input, memory-derived signals, and the
// available tool contracts into a structured execution plan. Planners only
// select tools; they never execute anything. Two engines are provided: a
// deterministic rule engine for offline operation and an LLM engine that
// prompts a model for strict-JSON tool routing.
package planner
