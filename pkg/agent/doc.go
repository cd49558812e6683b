// Copyright 2026 © The TopoMind Authors
// SPDX-License-Identifier: Apache-2.0

// Package agent orchestrates the cognitive loop:
//
//	Input → Memory → Stability → Planning → Execution → Memory
//
// Each turn ingests the user utterance, derives stability signals from the
// memory graph, asks the planner for a single-step plan, executes it, and
// folds the result back into memory. Unreliable results trigger exactly one
// replan with feedback; successful reasoning answers are decomposed into
// semantic observations and re-ingested.
//
// An Agent owns its memory graph and session state and is not internally
// synchronized; concurrent turns against the same instance must be
// serialized by the caller.
package agent
