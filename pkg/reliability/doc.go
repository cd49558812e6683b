// Copyright 2026 © The TopoMind Authors
// SPDX-License-Identifier: Apache-2.0

// Package reliability tracks per-tool execution outcomes as continuously
// decayed success ratios, giving the planner a trust score and a volatility
// estimate for each tool.
package reliability
