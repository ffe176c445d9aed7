package graph

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/simple"
)

// resolution is the modularity resolution parameter; 1 is standard modularity.
const resolution = 1

// Fixed seed for the Louvain node visiting order. The same graph always gets
// the same labels.
const (
	louvainSeed1 = 1
	louvainSeed2 = 2
)

// ErrNoCommunities is returned when detection yields an empty partition.
var ErrNoCommunities = errors.New("community detection returned no communities")

// Partition is the outcome of community labeling. Communities[i] holds the
// IDs of the nodes labeled with community i.
type Partition struct {
	Communities [][]string `json:"communities"`
	Modularity  float64    `json:"modularity"`
}

// Len returns the number of communities.
func (p Partition) Len() int {
	return len(p.Communities)
}

// LabelCommunities partitions g by modularity optimization (Louvain) over
// its undirected projection and sets each node's CommunityID to the index of
// its community. Communities are ordered largest first, ties broken by the
// earliest member in insertion order. Labeling is deterministic: the same
// graph yields the same labels on every call.
//
// Graphs with fewer than two nodes, or no edges once parallel edges,
// opposite directions and self-loops are collapsed, are left unlabeled with
// a nil error. If detection fails, g is left unlabeled and the error is
// returned; callers are expected to carry on without labels.
func LabelCommunities(g *Graph) (p Partition, err error) {
	clearCommunities(g)
	if g.NodeCount() < 2 || g.EdgeCount() == 0 {
		return Partition{}, nil
	}

	u, edges := g.undirected()
	if edges == 0 {
		return Partition{}, nil
	}

	defer func() {
		if r := recover(); r != nil {
			clearCommunities(g)
			p = Partition{}
			err = fmt.Errorf("community detection failed: %v", r)
		}
	}()

	parts := community.Modularize(u, resolution, rand.NewPCG(louvainSeed1, louvainSeed2)).Communities()

	groups := make([][]int, 0, len(parts))
	for _, members := range parts {
		if len(members) == 0 {
			continue
		}
		idx := make([]int, 0, len(members))
		for _, m := range members {
			idx = append(idx, int(m.ID()))
		}
		slices.Sort(idx)
		groups = append(groups, idx)
	}
	if len(groups) == 0 {
		return Partition{}, ErrNoCommunities
	}

	slices.SortFunc(groups, func(a, b []int) int {
		if len(a) != len(b) {
			return len(b) - len(a)
		}
		return a[0] - b[0]
	})

	p.Modularity = community.Q(u, parts, resolution)
	p.Communities = make([][]string, len(groups))
	for cid, idx := range groups {
		ids := make([]string, len(idx))
		for j, i := range idx {
			id := cid
			g.nodes[i].CommunityID = &id
			ids[j] = g.nodes[i].ID
		}
		p.Communities[cid] = ids
	}

	return p, nil
}

// undirected projects g onto a simple undirected graph whose node IDs are
// insertion indices. It returns the projection and its edge count.
func (g *Graph) undirected() (*simple.UndirectedGraph, int) {
	u := simple.NewUndirectedGraph()
	for i := range g.nodes {
		u.AddNode(simple.Node(int64(i)))
	}

	edges := 0
	for _, e := range g.edges {
		s, t := int64(g.index[e.Source]), int64(g.index[e.Target])
		if s == t || u.HasEdgeBetween(s, t) {
			continue
		}
		u.SetEdge(simple.Edge{F: simple.Node(s), T: simple.Node(t)})
		edges++
	}
	return u, edges
}

func clearCommunities(g *Graph) {
	for _, n := range g.nodes {
		n.CommunityID = nil
	}
}

// CommunityCount returns the number of distinct community IDs on g's nodes.
func CommunityCount(g *Graph) int {
	seen := make(map[int]bool)
	for _, n := range g.nodes {
		if n.CommunityID != nil {
			seen[*n.CommunityID] = true
		}
	}
	return len(seen)
}
