package memory

import (
	"math"

	"github.com/jllopis/topomind/pkg/errors"
)

// DecayConfig names the empirical decay constants. They were tuned by
// observation, not derived from a model; keep them overridable.
type DecayConfig struct {
	// AgePenalty is the linear importance cost per turn of age.
	AgePenalty float64

	// ReinforcementExponent dampens repeat occurrences: with 0.5 the
	// tenth reinforcement matters far less than the second.
	ReinforcementExponent float64
}

// DefaultDecayConfig returns the tuned defaults.
func DefaultDecayConfig() DecayConfig {
	return DecayConfig{
		AgePenalty:            0.15,
		ReinforcementExponent: 0.5,
	}
}

// Decay computes the importance of a node from its reinforcement history
// and its age in turns.
type Decay struct {
	graph  *Graph
	scorer *PersistenceScorer
	cfg    DecayConfig
}

// NewDecay creates a Decay over the given graph and scorer.
func NewDecay(graph *Graph, scorer *PersistenceScorer, cfg DecayConfig) *Decay {
	return &Decay{graph: graph, scorer: scorer, cfg: cfg}
}

// ComputeImportance returns the decay-adjusted importance of a node.
// Age counts from the node's last reinforcement, falling back to its
// creation turn if it was never reinforced.
func (d *Decay) ComputeImportance(nodeID string) (float64, error) {
	node, ok := d.graph.GetNode(nodeID)
	if !ok {
		return 0, errors.Newf(errors.CodeNotFound, "node %q not in graph", nodeID)
	}

	lastSeen := d.scorer.LastSeen(nodeID)
	if lastSeen < 0 {
		lastSeen = node.TurnCreated()
	}
	age := float64(d.graph.Turn() - lastSeen)

	reinforcement := math.Pow(float64(d.scorer.Score(nodeID)), d.cfg.ReinforcementExponent)

	return reinforcement - age*d.cfg.AgePenalty, nil
}
