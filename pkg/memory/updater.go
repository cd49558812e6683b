package memory

import (
	"log/slog"

	"github.com/jllopis/topomind/pkg/core"
)

// Config bundles the tunables of the whole memory lifecycle.
type Config struct {
	Decay      DecayConfig
	Forgetting ForgettingConfig

	// PruneInterval is the forgetting cycle frequency in turns.
	PruneInterval int

	// PruneThreshold is the importance floor below which unprotected
	// nodes are removed.
	PruneThreshold float64
}

// DefaultConfig returns the tuned memory defaults.
func DefaultConfig() Config {
	return Config{
		Decay:          DefaultDecayConfig(),
		Forgetting:     DefaultForgettingConfig(),
		PruneInterval:  5,
		PruneThreshold: -5,
	}
}

// Updater is the central orchestrator of the memory lifecycle: it converts
// observations into nodes, deduplicates them, tracks reinforcement, and
// periodically triggers forgetting. The graph stores structure; the Updater
// manages memory dynamics.
type Updater struct {
	graph  *Graph
	dedup  *Deduplicator
	scorer *PersistenceScorer
	decay  *Decay
	forget *Forgetting
	cfg    Config
	logger *slog.Logger

	prunedNodes int
	prunedEdges int
}

// NewUpdater wires the memory lifecycle around a graph.
func NewUpdater(graph *Graph, cfg Config) *Updater {
	scorer := NewPersistenceScorer()
	decay := NewDecay(graph, scorer, cfg.Decay)
	return &Updater{
		graph:  graph,
		dedup:  NewDeduplicator(graph),
		scorer: scorer,
		decay:  decay,
		forget: NewForgetting(graph, decay, scorer, cfg.Forgetting),
		cfg:    cfg,
		logger: slog.Default(),
	}
}

// Scorer exposes the persistence scorer for snapshot save/restore without
// transferring ownership.
func (u *Updater) Scorer() *PersistenceScorer { return u.scorer }

// Decay exposes the importance function for diagnostics.
func (u *Updater) Decay() *Decay { return u.decay }

// UpdateFromObservation folds one observation into memory:
// dedup → node creation or reuse → reinforcement → periodic forgetting.
// Returns the id of the reinforced node.
func (u *Updater) UpdateFromObservation(obs core.Observation) string {
	nodeID, ok := u.dedup.FindExisting(obs.Type, obs.Payload)
	if !ok {
		nodeID = u.graph.AddNode(obs.Type, obs.Payload)
		u.logger.Debug("memory node created",
			slog.String("node_id", nodeID),
			slog.String("type", obs.Type),
			slog.String("source", obs.Source),
		)
	}

	u.scorer.RegisterOccurrence(nodeID, u.graph.Turn())

	u.prunedNodes, u.prunedEdges = 0, 0
	if u.cfg.PruneInterval > 0 && u.graph.Turn()%u.cfg.PruneInterval == 0 {
		nodes, edges := u.forget.Prune(u.cfg.PruneThreshold)
		u.prunedNodes, u.prunedEdges = len(nodes), len(edges)
	}

	return nodeID
}

// LastPruned reports how many nodes and edges the most recent
// UpdateFromObservation call removed. Callers feed this into metrics and
// event emission without reaching into the forgetting policy.
func (u *Updater) LastPruned() (nodes, edges int) {
	return u.prunedNodes, u.prunedEdges
}
