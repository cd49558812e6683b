package memory

// PersistenceScorer tracks node reinforcement across turns: how often each
// node has been observed and when it was last seen. It implements no decay
// policy itself; Decay interprets these counters.
type PersistenceScorer struct {
	scores   map[string]int
	lastSeen map[string]int
}

// NewPersistenceScorer creates an empty scorer.
func NewPersistenceScorer() *PersistenceScorer {
	return &PersistenceScorer{
		scores:   make(map[string]int),
		lastSeen: make(map[string]int),
	}
}

// RegisterOccurrence increments the occurrence count for a node and stamps
// its last-seen turn.
func (s *PersistenceScorer) RegisterOccurrence(nodeID string, currentTurn int) {
	s.scores[nodeID]++
	s.lastSeen[nodeID] = currentTurn
}

// Score returns the occurrence count, zero for unknown ids.
func (s *PersistenceScorer) Score(nodeID string) int {
	return s.scores[nodeID]
}

// LastSeen returns the last-seen turn, -1 for unknown ids.
func (s *PersistenceScorer) LastSeen(nodeID string) int {
	if turn, ok := s.lastSeen[nodeID]; ok {
		return turn
	}
	return -1
}

// Remove drops persistence entries for deleted nodes.
func (s *PersistenceScorer) Remove(nodeIDs []string) {
	for _, id := range nodeIDs {
		delete(s.scores, id)
		delete(s.lastSeen, id)
	}
}

// ScorerState is the persisted form of the scorer.
type ScorerState struct {
	Scores   map[string]int `json:"scores"`
	LastSeen map[string]int `json:"last_seen"`
}

// Export copies internal state for the persistence layer.
func (s *PersistenceScorer) Export() ScorerState {
	out := ScorerState{
		Scores:   make(map[string]int, len(s.scores)),
		LastSeen: make(map[string]int, len(s.lastSeen)),
	}
	for k, v := range s.scores {
		out.Scores[k] = v
	}
	for k, v := range s.lastSeen {
		out.LastSeen[k] = v
	}
	return out
}

// Load restores persisted state. Entries with negative values are
// discarded instead of failing the whole restore.
func (s *PersistenceScorer) Load(state ScorerState) {
	for k, v := range state.Scores {
		if v < 0 {
			continue
		}
		s.scores[k] = v
	}
	for k, v := range state.LastSeen {
		if v < 0 {
			continue
		}
		s.lastSeen[k] = v
	}
}

// LoadRaw restores state from a JSON-decoded mapping of unknown shape,
// discarding anything that is not a string key with a non-negative whole
// number value.
func (s *PersistenceScorer) LoadRaw(data map[string]any) {
	s.loadRawSection(data, "scores", s.scores)
	s.loadRawSection(data, "last_seen", s.lastSeen)
}

func (s *PersistenceScorer) loadRawSection(data map[string]any, key string, dst map[string]int) {
	section, ok := data[key].(map[string]any)
	if !ok {
		return
	}
	for k, raw := range section {
		v, ok := asNonNegativeInt(raw)
		if !ok {
			continue
		}
		dst[k] = v
	}
}

// asNonNegativeInt accepts the integer shapes a JSON decode can produce.
func asNonNegativeInt(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		if v >= 0 {
			return v, true
		}
	case int64:
		if v >= 0 {
			return int(v), true
		}
	case float64:
		if v >= 0 && v == float64(int(v)) {
			return int(v), true
		}
	}
	return 0, false
}
