package stability

// Extractor assembles the signal mapping handed to the planner each turn.
type Extractor struct {
	analyzer *PersistenceAnalyzer
}

// NewExtractor creates an extractor over a persistence analyzer.
func NewExtractor(analyzer *PersistenceAnalyzer) *Extractor {
	return &Extractor{analyzer: analyzer}
}

// Signals returns the planner bias for the current memory state. An empty
// stable_entities list means no established topic yet.
func (e *Extractor) Signals() map[string]any {
	entities := e.analyzer.PersistentEntities()
	if entities == nil {
		entities = []string{}
	}
	return map[string]any{
		"stable_entities": entities,
	}
}
