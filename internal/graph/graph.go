// Package graph holds the directed multi-relation graph assembled from
// cleaned relation records, with degree limiting and community labeling.
package graph

import (
	"encoding/json"
	"fmt"
)

// UnknownType is the type given to nodes with no declared or inline type.
const UnknownType = "unknown"

// Node is a graph vertex. Degree and ConnectionCount are fixed at assembly
// time and carried unchanged through limiting.
type Node struct {
	ID              string            `json:"id"`
	Type            string            `json:"type"`
	Attributes      []json.RawMessage `json:"detailed_attributes"`
	Degree          int               `json:"degree"`
	ConnectionCount int               `json:"connection_count"`
	CommunityID     *int              `json:"community_id,omitempty"`
}

// Edge is a directed relation. Several edges may join the same ordered pair.
type Edge struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Relation string `json:"relation"`
}

// Graph is a directed multigraph keyed by node ID. Nodes and edges keep
// insertion order.
type Graph struct {
	nodes []*Node
	index map[string]int
	edges []Edge
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{index: make(map[string]int)}
}

// AddNode inserts n unless a node with the same ID exists, and returns the
// stored node.
func (g *Graph) AddNode(n Node) *Node {
	if i, ok := g.index[n.ID]; ok {
		return g.nodes[i]
	}
	if n.Attributes == nil {
		n.Attributes = []json.RawMessage{}
	}
	stored := n
	g.index[n.ID] = len(g.nodes)
	g.nodes = append(g.nodes, &stored)
	return &stored
}

// AddEdge adds a directed edge between two existing nodes.
func (g *Graph) AddEdge(source, target, relation string) error {
	if !g.HasNode(source) {
		return fmt.Errorf("adding edge: unknown source node %q", source)
	}
	if !g.HasNode(target) {
		return fmt.Errorf("adding edge: unknown target node %q", target)
	}
	g.addEdge(source, target, relation)
	return nil
}

// addEdge appends an edge whose endpoints the caller has already added.
func (g *Graph) addEdge(source, target, relation string) {
	g.edges = append(g.edges, Edge{Source: source, Target: target, Relation: relation})
}

// HasNode reports whether id is a node of g.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.index[id]
	return ok
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return g.nodes[i], true
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, len(g.nodes))
	copy(nodes, g.nodes)
	return nodes
}

// Edges returns the edges in insertion order.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, len(g.edges))
	copy(edges, g.edges)
	return edges
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges, counting parallel edges separately.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// IsEmpty reports whether g has no nodes.
func (g *Graph) IsEmpty() bool {
	return len(g.nodes) == 0
}

// Clone returns a deep copy of g.
func (g *Graph) Clone() *Graph {
	return g.induce(func(*Node) bool { return true })
}

// induce returns the subgraph of nodes accepted by keep and the edges between
// them. Node values, including degree, are copied unchanged.
func (g *Graph) induce(keep func(*Node) bool) *Graph {
	sub := New()
	for _, n := range g.nodes {
		if !keep(n) {
			continue
		}
		c := *n
		c.Attributes = append([]json.RawMessage{}, n.Attributes...)
		if n.CommunityID != nil {
			id := *n.CommunityID
			c.CommunityID = &id
		}
		sub.index[c.ID] = len(sub.nodes)
		sub.nodes = append(sub.nodes, &c)
	}
	for _, e := range g.edges {
		if sub.HasNode(e.Source) && sub.HasNode(e.Target) {
			sub.edges = append(sub.edges, e)
		}
	}
	return sub
}

// computeDegrees sets Degree and ConnectionCount to the number of incident
// edges, in and out combined. A self-loop counts twice.
func (g *Graph) computeDegrees() {
	counts := make([]int, len(g.nodes))
	for _, e := range g.edges {
		counts[g.index[e.Source]]++
		counts[g.index[e.Target]]++
	}
	for i, n := range g.nodes {
		n.Degree = counts[i]
		n.ConnectionCount = counts[i]
	}
}

// MarshalJSON encodes the graph as {"nodes": [...], "edges": [...]}.
func (g *Graph) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Nodes []*Node `json:"nodes"`
		Edges []Edge  `json:"edges"`
	}{
		Nodes: g.Nodes(),
		Edges: g.Edges(),
	})
}
