// Copyright 2026 © The TopoMind Authors
// SPDX-License-Identifier: Apache-2.0

// Package memory implements the agent's long-term memory lifecycle: an
// append-only node/edge graph, reinforcement scoring, decay-based
// importance, deduplication, and threshold-driven forgetting. The Updater
// ties these together into a single ingestion path for observations.
//
// The graph and its companions are owned by exactly one agent instance and
// are not internally synchronized; callers running concurrent turns against
// the same agent must serialize them.
package memory
