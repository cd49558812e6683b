package memory

import (
	"github.com/google/uuid"
)

// Node is an immutable vertex in the memory graph.
type Node struct {
	id          string
	nodeType    string
	value       any
	turnCreated int
}

// ID returns the opaque unique node key.
func (n Node) ID() string { return n.id }

// Type returns the node type ("entity", "fact", ...).
func (n Node) Type() string { return n.nodeType }

// Value returns the opaque payload.
func (n Node) Value() any { return n.value }

// TurnCreated returns the turn the node was first observed.
func (n Node) TurnCreated() int { return n.turnCreated }

// Edge is an immutable directed arc between two nodes.
type Edge struct {
	source   string
	target   string
	relation string
}

// Source returns the origin node id.
func (e Edge) Source() string { return e.source }

// Target returns the destination node id.
func (e Edge) Target() string { return e.target }

// Relation returns the edge's relation tag.
func (e Edge) Relation() string { return e.relation }

// Graph is the append-only memory store. Nodes are never mutated in place:
// the graph only adds nodes, bulk-removes them, or is replaced wholesale
// through LoadState during a persistence restore.
//
// Graph is not internally synchronized.
type Graph struct {
	turn  int
	nodes map[string]Node
	edges []Edge
}

// NewGraph creates an empty graph at turn zero.
func NewGraph() *Graph {
	return &Graph{nodes: make(map[string]Node)}
}

// NewTurn advances the monotonically increasing turn counter.
func (g *Graph) NewTurn() { g.turn++ }

// Turn returns the current turn.
func (g *Graph) Turn() int { return g.turn }

// AddNode stores a new immutable node and returns its generated id.
func (g *Graph) AddNode(nodeType string, value any) string {
	id := uuid.NewString()
	g.nodes[id] = Node{
		id:          id,
		nodeType:    nodeType,
		value:       value,
		turnCreated: g.turn,
	}
	return id
}

// GetNode returns the node with the given id.
func (g *Graph) GetNode(id string) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// NodesByType returns all nodes of the given type.
func (g *Graph) NodesByType(nodeType string) []Node {
	var out []Node
	for _, n := range g.nodes {
		if n.nodeType == nodeType {
			out = append(out, n)
		}
	}
	return out
}

// Nodes returns a snapshot of all nodes.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	return out
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// AddEdge appends a directed edge.
func (g *Graph) AddEdge(source, target, relation string) {
	g.edges = append(g.edges, Edge{source: source, target: target, relation: relation})
}

// Edges returns a snapshot of all edges.
func (g *Graph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

// RemoveNodes deletes the named nodes and every edge touching any of them,
// atomically. Both removed sets are returned for audit purposes. Unknown
// ids are ignored.
func (g *Graph) RemoveNodes(ids []string) (removedNodes []Node, removedEdges []Edge) {
	removing := make(map[string]bool, len(ids))
	for _, id := range ids {
		if n, ok := g.nodes[id]; ok {
			removing[id] = true
			removedNodes = append(removedNodes, n)
		}
	}
	if len(removing) == 0 {
		return nil, nil
	}

	for id := range removing {
		delete(g.nodes, id)
	}

	kept := g.edges[:0]
	for _, e := range g.edges {
		if removing[e.source] || removing[e.target] {
			removedEdges = append(removedEdges, e)
			continue
		}
		kept = append(kept, e)
	}
	g.edges = kept

	return removedNodes, removedEdges
}

// LoadState atomically replaces the whole graph. It is intended only for
// persistence restore, never during normal operation. Edges referencing
// missing nodes are dropped silently: a corrupted snapshot should degrade,
// not block the agent from starting.
func (g *Graph) LoadState(turn int, nodes []Node, edges []Edge) {
	g.turn = turn
	g.nodes = make(map[string]Node, len(nodes))
	for _, n := range nodes {
		g.nodes[n.id] = n
	}
	g.edges = nil
	for _, e := range edges {
		if _, ok := g.nodes[e.source]; !ok {
			continue
		}
		if _, ok := g.nodes[e.target]; !ok {
			continue
		}
		g.edges = append(g.edges, e)
	}
}

// RestoredNode rebuilds a Node from persisted fields. Only snapshot
// restoration should need this.
func RestoredNode(id, nodeType string, value any, turnCreated int) Node {
	return Node{id: id, nodeType: nodeType, value: value, turnCreated: turnCreated}
}

// RestoredEdge rebuilds an Edge from persisted fields.
func RestoredEdge(source, target, relation string) Edge {
	return Edge{source: source, target: target, relation: relation}
}
