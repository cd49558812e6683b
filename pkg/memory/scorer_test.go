package memory

import "testing"

func TestScorerDefaults(t *testing.T) {
	s := NewPersistenceScorer()
	if got := s.Score("unknown"); got != 0 {
		t.Errorf("Score(unknown) = %d, want 0", got)
	}
	if got := s.LastSeen("unknown"); got != -1 {
		t.Errorf("LastSeen(unknown) = %d, want -1", got)
	}
}

func TestScorerAccumulates(t *testing.T) {
	s := NewPersistenceScorer()
	s.RegisterOccurrence("n1", 1)
	s.RegisterOccurrence("n1", 3)
	s.RegisterOccurrence("n1", 4)

	if got := s.Score("n1"); got != 3 {
		t.Errorf("Score = %d, want 3", got)
	}
	if got := s.LastSeen("n1"); got != 4 {
		t.Errorf("LastSeen = %d, want 4", got)
	}
}

func TestScorerRemove(t *testing.T) {
	s := NewPersistenceScorer()
	s.RegisterOccurrence("n1", 1)
	s.Remove([]string{"n1"})
	if got := s.Score("n1"); got != 0 {
		t.Errorf("Score after Remove = %d, want 0", got)
	}
	if got := s.LastSeen("n1"); got != -1 {
		t.Errorf("LastSeen after Remove = %d, want -1", got)
	}
}

func TestScorerExportLoadRoundTrip(t *testing.T) {
	s := NewPersistenceScorer()
	s.RegisterOccurrence("n1", 2)
	s.RegisterOccurrence("n2", 5)

	state := s.Export()
	restored := NewPersistenceScorer()
	restored.Load(state)

	if restored.Score("n1") != 1 || restored.LastSeen("n2") != 5 {
		t.Error("round trip lost scorer state")
	}
}

func TestScorerLoadDiscardsNegatives(t *testing.T) {
	s := NewPersistenceScorer()
	s.Load(ScorerState{
		Scores:   map[string]int{"bad": -3, "ok": 2},
		LastSeen: map[string]int{"bad": -7, "ok": 1},
	})
	if s.Score("bad") != 0 {
		t.Error("negative score should be discarded")
	}
	if s.Score("ok") != 2 {
		t.Error("valid score should survive load")
	}
}

func TestScorerLoadRaw(t *testing.T) {
	s := NewPersistenceScorer()
	s.LoadRaw(map[string]any{
		"scores":    map[string]any{"a": 2, "b": float64(3), "c": "junk", "d": float64(1.5)},
		"last_seen": map[string]any{"a": int64(4)},
	})
	if s.Score("a") != 2 || s.Score("b") != 3 {
		t.Error("numeric raw values should load")
	}
	if s.Score("c") != 0 || s.Score("d") != 0 {
		t.Error("non-integral raw values should be discarded")
	}
	if s.LastSeen("a") != 4 {
		t.Errorf("LastSeen(a) = %d, want 4", s.LastSeen("a"))
	}
}
