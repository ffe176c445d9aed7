package graph

import (
	"slices"

	"github.com/matsen/kgviz/internal/record"
)

// Assemble builds a graph from declared nodes and relation records.
//
// Every declared node is added first, in declaration order. Each record then
// adds a head -> tail edge; endpoints that were not declared are created on
// the fly, typed by the record's inline type or UnknownType. Records lacking
// head, relation or tail are ignored. Degrees are computed once all edges
// are in.
func Assemble(edges []record.Record, nodes *record.NodeSet) *Graph {
	g := New()

	for _, info := range nodes.All() {
		nodeType := info.Type
		if nodeType == "" {
			nodeType = UnknownType
		}
		g.AddNode(Node{ID: info.ID, Type: nodeType, Attributes: info.Attributes})
	}

	for _, r := range edges {
		if r.Head.Missing() || r.Relation.Missing() || r.Tail.Missing() {
			continue
		}
		head, tail := r.Head.Text, r.Tail.Text
		if !g.HasNode(head) {
			g.AddNode(Node{ID: head, Type: inlineType(r.HeadType)})
		}
		if !g.HasNode(tail) {
			g.AddNode(Node{ID: tail, Type: inlineType(r.TailType)})
		}
		g.addEdge(head, tail, r.Relation.Text)
	}

	g.computeDegrees()
	return g
}

func inlineType(f record.Field) string {
	if f.Missing() || f.Text == "" {
		return UnknownType
	}
	return f.Text
}

// TopByDegree returns up to n nodes ranked by stored degree, highest first.
// Equal degrees keep insertion order. n <= 0 ranks every node.
func TopByDegree(g *Graph, n int) []*Node {
	ranked := g.Nodes()
	slices.SortStableFunc(ranked, func(a, b *Node) int {
		return b.Degree - a.Degree
	})
	if n > 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// Limit returns the subgraph induced by the maxNodes highest-degree nodes of
// g, ranked as TopByDegree ranks them. Kept nodes retain the degree computed
// for the full graph. maxNodes <= 0, or at least the node count, returns a
// copy of g.
func Limit(g *Graph, maxNodes int) *Graph {
	if maxNodes <= 0 || maxNodes >= g.NodeCount() {
		return g.Clone()
	}

	keep := make(map[string]bool, maxNodes)
	for _, n := range TopByDegree(g, maxNodes) {
		keep[n.ID] = true
	}
	return g.induce(func(n *Node) bool { return keep[n.ID] })
}
