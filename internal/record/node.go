package record

import "encoding/json"

// NodeInfo is the metadata declared for one node in graph-shaped input.
type NodeInfo struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Attributes []json.RawMessage `json:"attributes"`
}

// NodeSet maps node IDs to their metadata and remembers first-insertion order.
// The zero value is not usable; a nil *NodeSet behaves as empty.
type NodeSet struct {
	order []string
	byID  map[string]NodeInfo
}

// NewNodeSet returns an empty node set.
func NewNodeSet() *NodeSet {
	return &NodeSet{byID: make(map[string]NodeInfo)}
}

// Put stores n. A repeated ID replaces the earlier metadata but keeps its
// original position.
func (s *NodeSet) Put(n NodeInfo) {
	if n.Attributes == nil {
		n.Attributes = []json.RawMessage{}
	}
	if _, ok := s.byID[n.ID]; !ok {
		s.order = append(s.order, n.ID)
	}
	s.byID[n.ID] = n
}

// Get returns the metadata for id.
func (s *NodeSet) Get(id string) (NodeInfo, bool) {
	if s == nil {
		return NodeInfo{}, false
	}
	n, ok := s.byID[id]
	return n, ok
}

// Has reports whether id is in the set.
func (s *NodeSet) Has(id string) bool {
	_, ok := s.Get(id)
	return ok
}

// Len returns the number of nodes.
func (s *NodeSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// All returns the nodes in insertion order.
func (s *NodeSet) All() []NodeInfo {
	if s == nil {
		return nil
	}
	nodes := make([]NodeInfo, 0, len(s.order))
	for _, id := range s.order {
		nodes = append(nodes, s.byID[id])
	}
	return nodes
}
