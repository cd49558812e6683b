// Copyright 2026 © The TopoMind Authors
// SPDX-License-Identifier: Apache-2.0

// Package stability derives planner-facing signals from the memory graph.
// Its main output is the set of entities that have proven persistent
// across turns, ordered deterministically so identical memory state always
// produces identical planner prompts.
package stability
