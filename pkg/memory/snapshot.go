package memory

import (
	"encoding/json"

	"github.com/jllopis/topomind/pkg/errors"
)

// NodeRecord is the persisted form of a node.
type NodeRecord struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Value       any    `json:"value"`
	TurnCreated int    `json:"turn_created"`
}

// EdgeRecord is the persisted form of an edge.
type EdgeRecord struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Relation string `json:"relation"`
}

// Snapshot is the JSON-serializable state of graph and scorer, restored
// only through Restore (which delegates to Graph.LoadState and
// PersistenceScorer loading).
type Snapshot struct {
	Turn   int          `json:"turn"`
	Nodes  []NodeRecord `json:"nodes"`
	Edges  []EdgeRecord `json:"edges"`
	Scores ScorerState  `json:"scores"`
}

// TakeSnapshot captures the current graph and scorer state.
func TakeSnapshot(graph *Graph, scorer *PersistenceScorer) Snapshot {
	snap := Snapshot{
		Turn:   graph.Turn(),
		Scores: scorer.Export(),
	}
	for _, n := range graph.Nodes() {
		snap.Nodes = append(snap.Nodes, NodeRecord{
			ID:          n.ID(),
			Type:        n.Type(),
			Value:       n.Value(),
			TurnCreated: n.TurnCreated(),
		})
	}
	for _, e := range graph.Edges() {
		snap.Edges = append(snap.Edges, EdgeRecord{
			Source:   e.Source(),
			Target:   e.Target(),
			Relation: e.Relation(),
		})
	}
	return snap
}

// Restore replaces graph and scorer state with the snapshot contents.
func Restore(graph *Graph, scorer *PersistenceScorer, snap Snapshot) {
	nodes := make([]Node, 0, len(snap.Nodes))
	for _, r := range snap.Nodes {
		nodes = append(nodes, RestoredNode(r.ID, r.Type, r.Value, r.TurnCreated))
	}
	edges := make([]Edge, 0, len(snap.Edges))
	for _, r := range snap.Edges {
		edges = append(edges, RestoredEdge(r.Source, r.Target, r.Relation))
	}
	graph.LoadState(snap.Turn, nodes, edges)
	scorer.Load(snap.Scores)
}

// MarshalSnapshot encodes a snapshot as JSON.
func MarshalSnapshot(snap Snapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, errors.New(errors.CodeMemoryError, "marshal snapshot", err)
	}
	return data, nil
}

// UnmarshalSnapshot decodes a snapshot, tolerating corrupted score entries.
// Structural damage (unparseable JSON) is an error; malformed score values
// are silently discarded.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	// Decode the score section loosely so one bad entry cannot sink the
	// whole restore.
	var loose struct {
		Turn   int             `json:"turn"`
		Nodes  []NodeRecord    `json:"nodes"`
		Edges  []EdgeRecord    `json:"edges"`
		Scores json.RawMessage `json:"scores"`
	}
	if err := json.Unmarshal(data, &loose); err != nil {
		return Snapshot{}, errors.New(errors.CodeMemoryError, "unmarshal snapshot", err)
	}

	snap := Snapshot{
		Turn:  loose.Turn,
		Nodes: loose.Nodes,
		Edges: loose.Edges,
		Scores: ScorerState{
			Scores:   make(map[string]int),
			LastSeen: make(map[string]int),
		},
	}

	if len(loose.Scores) > 0 {
		var raw map[string]any
		if err := json.Unmarshal(loose.Scores, &raw); err == nil {
			filter := NewPersistenceScorer()
			filter.LoadRaw(raw)
			snap.Scores = filter.Export()
		}
	}

	return snap, nil
}
