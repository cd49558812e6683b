// Copyright 2026 © The TopoMind Authors
// SPDX-License-Identifier: Apache-2.0

// Package core defines the immutable value types exchanged between the
// planner, the tool executor, and the memory subsystem: observations,
// tool calls, tool results, plans, and tool contracts.
//
// All records in this package are construct-once. They carry no setters;
// callers that need a modified value build a new one.
package core
