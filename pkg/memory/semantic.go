package memory

import (
	"strings"

	"github.com/jllopis/topomind/pkg/core"
)

// Triple is a subject-relation-object assertion extracted from text.
type Triple struct {
	Source   string `json:"source"`
	Relation string `json:"relation"`
	Target   string `json:"target"`
}

// Semantics is the structured decomposition of an answer text.
type Semantics struct {
	Concepts  []string
	Facts     []string
	Relations []Triple
}

// SemanticExtractor decomposes free text into structured sub-observations.
// The current implementation is deliberately lightweight: it keeps the
// output shape while splitting on sentences instead of calling a model.
type SemanticExtractor struct {
	// MinSentenceLen filters out fragments too short to be a fact.
	MinSentenceLen int

	// MaxFacts caps how many sentences one answer may contribute.
	MaxFacts int
}

// NewSemanticExtractor returns an extractor with the tuned defaults.
func NewSemanticExtractor() *SemanticExtractor {
	return &SemanticExtractor{MinSentenceLen: 40, MaxFacts: 3}
}

// Extract splits text into candidate fact sentences.
func (e *SemanticExtractor) Extract(text string) Semantics {
	var facts []string
	for _, s := range strings.Split(text, ".") {
		s = strings.TrimSpace(s)
		if len(s) > e.MinSentenceLen {
			facts = append(facts, s)
		}
	}
	if len(facts) == 0 {
		facts = []string{text}
	}
	if e.MaxFacts > 0 && len(facts) > e.MaxFacts {
		facts = facts[:e.MaxFacts]
	}
	return Semantics{Facts: facts}
}

// ObservationBuilder turns extracted semantics into observations ready for
// the memory ingestion path.
type ObservationBuilder struct {
	extractor *SemanticExtractor
}

// NewObservationBuilder creates a builder with the default extractor.
func NewObservationBuilder() *ObservationBuilder {
	return &ObservationBuilder{extractor: NewSemanticExtractor()}
}

// FromReasonAnswer decomposes a knowledge-tool answer into concept, fact,
// and relation observations, in that order.
func (b *ObservationBuilder) FromReasonAnswer(answer string) []core.Observation {
	semantics := b.extractor.Extract(answer)

	var observations []core.Observation
	for _, c := range semantics.Concepts {
		observations = append(observations, core.Observation{
			Source:  "inference",
			Type:    core.TypeConcept,
			Payload: c,
		})
	}
	for _, f := range semantics.Facts {
		observations = append(observations, core.Observation{
			Source:  "inference",
			Type:    core.TypeFact,
			Payload: f,
		})
	}
	for _, r := range semantics.Relations {
		observations = append(observations, core.Observation{
			Source:  "inference",
			Type:    core.TypeRelation,
			Payload: r,
		})
	}
	return observations
}
