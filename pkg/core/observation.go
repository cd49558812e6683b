package core

// Observation is a normalized perception unit. Everything the agent learns
// (user input, tool outputs, inferred facts) becomes an Observation before
// integration into the memory graph.
type Observation struct {
	// Source identifies the producer: "user", "tool", "inference", "system".
	Source string

	// Type is the memory node type the payload should be stored under.
	Type string

	// Payload is the opaque observed value.
	Payload any

	// Metadata carries optional annotations that never enter the graph.
	Metadata map[string]any
}

// Well-known node types. The set is extensible; these are the types the
// core itself produces or treats specially.
const (
	TypeEntity     = "entity"
	TypeGoal       = "goal"
	TypeConstraint = "constraint"
	TypeResult     = "result"
	TypeAssumption = "assumption"
	TypeSignal     = "signal"
	TypeConcept    = "concept"
	TypeFact       = "fact"
	TypeRelation   = "relation"
)
