package stability

import (
	"sort"

	"github.com/jllopis/topomind/pkg/memory"
)

// AnalyzerConfig names the persistence thresholds.
type AnalyzerConfig struct {
	// Threshold is the minimum occurrence count for an entity to be
	// considered established.
	Threshold int

	// MinTurnAge discards entities first seen too recently to have
	// demonstrated persistence.
	MinTurnAge int
}

// DefaultAnalyzerConfig returns the tuned defaults.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{Threshold: 2, MinTurnAge: 1}
}

// PersistenceAnalyzer reads entity reinforcement history out of the graph
// and scorer. Read-only: it never mutates memory.
type PersistenceAnalyzer struct {
	graph  *memory.Graph
	scorer *memory.PersistenceScorer
	cfg    AnalyzerConfig
}

// NewPersistenceAnalyzer creates an analyzer over the given memory.
func NewPersistenceAnalyzer(graph *memory.Graph, scorer *memory.PersistenceScorer, cfg AnalyzerConfig) *PersistenceAnalyzer {
	return &PersistenceAnalyzer{graph: graph, scorer: scorer, cfg: cfg}
}

type entityCount struct {
	value string
	count int
}

// PersistentEntities returns the string-valued entities whose reinforcement
// count meets the threshold, excluding ones younger than MinTurnAge turns.
// Ordering is frequency descending, then value ascending. Non-string entity
// values carry no comparable identity for counting and are skipped.
func (a *PersistenceAnalyzer) PersistentEntities() []string {
	currentTurn := a.graph.Turn()
	counts := make(map[string]int)

	for _, node := range a.graph.NodesByType("entity") {
		value, ok := node.Value().(string)
		if !ok {
			continue
		}
		if currentTurn-node.TurnCreated() < a.cfg.MinTurnAge {
			continue
		}
		counts[value] += a.scorer.Score(node.ID())
	}

	var ranked []entityCount
	for value, count := range counts {
		if count >= a.cfg.Threshold {
			ranked = append(ranked, entityCount{value: value, count: count})
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].value < ranked[j].value
	})

	out := make([]string, len(ranked))
	for i, e := range ranked {
		out[i] = e.value
	}
	return out
}
