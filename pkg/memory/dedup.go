package memory

import "reflect"

// Deduplicator resolves node identity by exact (type, value) match,
// preventing redundant nodes from being created.
//
// The lookup is a linear scan, O(n) per call. That is acceptable at
// agent-session scale; it is a known scaling limit, not a bug. Replace
// with an index if sessions ever grow past tens of thousands of nodes.
type Deduplicator struct {
	graph *Graph
}

// NewDeduplicator creates a deduplicator over the given graph.
func NewDeduplicator(graph *Graph) *Deduplicator {
	return &Deduplicator{graph: graph}
}

// FindExisting returns the id of a node with the same type and a deeply
// equal value, if one exists.
func (d *Deduplicator) FindExisting(nodeType string, value any) (string, bool) {
	for _, n := range d.graph.Nodes() {
		if n.Type() == nodeType && reflect.DeepEqual(n.Value(), value) {
			return n.ID(), true
		}
	}
	return "", false
}
