package memory

import (
	"testing"

	"github.com/jllopis/topomind/pkg/core"
)

func populatedMemory(t *testing.T) (*Graph, *Updater) {
	t.Helper()
	g := NewGraph()
	g.NewTurn()
	u := NewUpdater(g, DefaultConfig())

	a := u.UpdateFromObservation(core.Observation{Source: "user", Type: core.TypeEntity, Payload: "Einstein"})
	b := u.UpdateFromObservation(core.Observation{Source: "user", Type: core.TypeConcept, Payload: "relativity"})
	g.AddEdge(a, b, "mentions")
	g.NewTurn()
	u.UpdateFromObservation(core.Observation{Source: "user", Type: core.TypeEntity, Payload: "Einstein"})
	return g, u
}

func TestSnapshotRoundTrip(t *testing.T) {
	g, u := populatedMemory(t)

	data, err := MarshalSnapshot(TakeSnapshot(g, u.Scorer()))
	if err != nil {
		t.Fatalf("MarshalSnapshot: %v", err)
	}
	snap, err := UnmarshalSnapshot(data)
	if err != nil {
		t.Fatalf("UnmarshalSnapshot: %v", err)
	}

	restoredGraph := NewGraph()
	restoredScorer := NewPersistenceScorer()
	Restore(restoredGraph, restoredScorer, snap)

	if restoredGraph.Turn() != g.Turn() {
		t.Errorf("turn = %d, want %d", restoredGraph.Turn(), g.Turn())
	}
	if restoredGraph.Len() != g.Len() {
		t.Errorf("node count = %d, want %d", restoredGraph.Len(), g.Len())
	}
	if len(restoredGraph.Edges()) != 1 {
		t.Errorf("edge count = %d, want 1", len(restoredGraph.Edges()))
	}

	entities := restoredGraph.NodesByType("entity")
	if len(entities) != 1 {
		t.Fatalf("entity count = %d, want 1", len(entities))
	}
	if restoredScorer.Score(entities[0].ID()) != 2 {
		t.Errorf("restored score = %d, want 2", restoredScorer.Score(entities[0].ID()))
	}
}

func TestUnmarshalSnapshotRejectsStructuralDamage(t *testing.T) {
	if _, err := UnmarshalSnapshot([]byte("{not json")); err == nil {
		t.Error("expected error for unparseable snapshot")
	}
}

func TestUnmarshalSnapshotDiscardsCorruptScores(t *testing.T) {
	data := []byte(`{
		"turn": 3,
		"nodes": [{"id": "n1", "type": "entity", "value": "x", "turn_created": 1}],
		"edges": [],
		"scores": {"scores": {"n1": "corrupt", "n2": 2}, "last_seen": {"n1": -9}}
	}`)

	snap, err := UnmarshalSnapshot(data)
	if err != nil {
		t.Fatalf("UnmarshalSnapshot: %v", err)
	}
	if _, ok := snap.Scores.Scores["n1"]; ok {
		t.Error("corrupt score entry should be discarded")
	}
	if snap.Scores.Scores["n2"] != 2 {
		t.Error("valid score entry should survive")
	}
	if _, ok := snap.Scores.LastSeen["n1"]; ok {
		t.Error("negative last_seen entry should be discarded")
	}
	if snap.Turn != 3 || len(snap.Nodes) != 1 {
		t.Error("structural fields should decode normally")
	}
}
