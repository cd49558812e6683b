package memory

import (
	"log/slog"
	"sort"
)

// ForgettingConfig controls the pruning policy.
type ForgettingConfig struct {
	// ProtectedTypes are node types that are never auto-forgotten.
	// They encode agent policy and state, not episodic knowledge.
	ProtectedTypes []string

	// BatchSize caps how many nodes one pruning cycle may remove,
	// bounding the cost and blast radius of a single pass.
	BatchSize int
}

// DefaultForgettingConfig protects structural types and caps batches at 25.
func DefaultForgettingConfig() ForgettingConfig {
	return ForgettingConfig{
		ProtectedTypes: []string{"goal", "constraint", "signal"},
		BatchSize:      25,
	}
}

// Forgetting removes low-importance nodes while preserving structural
// memory integrity. Removal cascades: persistence entries and every edge
// touching a removed node go with it.
type Forgetting struct {
	graph     *Graph
	decay     *Decay
	scorer    *PersistenceScorer
	protected map[string]bool
	batchSize int
	logger    *slog.Logger
}

// NewForgetting creates a Forgetting policy over the given components.
func NewForgetting(graph *Graph, decay *Decay, scorer *PersistenceScorer, cfg ForgettingConfig) *Forgetting {
	protected := make(map[string]bool, len(cfg.ProtectedTypes))
	for _, t := range cfg.ProtectedTypes {
		protected[t] = true
	}
	return &Forgetting{
		graph:     graph,
		decay:     decay,
		scorer:    scorer,
		protected: protected,
		batchSize: cfg.BatchSize,
		logger:    slog.Default(),
	}
}

type pruneCandidate struct {
	id         string
	importance float64
}

// Prune removes every unprotected node whose importance falls below the
// threshold, lowest importance first, capped at the configured batch size.
// Returns the removed nodes and edges for observability.
func (f *Forgetting) Prune(threshold float64) (removedNodes []Node, removedEdges []Edge) {
	var candidates []pruneCandidate

	for _, node := range f.graph.Nodes() {
		if f.protected[node.Type()] {
			continue
		}
		importance, err := f.decay.ComputeImportance(node.ID())
		if err != nil {
			continue
		}
		if importance < threshold {
			candidates = append(candidates, pruneCandidate{id: node.ID(), importance: importance})
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].importance != candidates[j].importance {
			return candidates[i].importance < candidates[j].importance
		}
		return candidates[i].id < candidates[j].id
	})
	if f.batchSize > 0 && len(candidates) > f.batchSize {
		candidates = candidates[:f.batchSize]
	}

	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.id
	}

	removedNodes, removedEdges = f.graph.RemoveNodes(ids)
	f.scorer.Remove(ids)

	f.logger.Info("memory pruned",
		slog.Int("nodes", len(removedNodes)),
		slog.Int("edges", len(removedEdges)),
		slog.Int("turn", f.graph.Turn()),
	)

	return removedNodes, removedEdges
}
