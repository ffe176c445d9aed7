// Package viz renders an assembled graph as an interactive vis-network page.
package viz

// GraphData contains all data needed to render the visualization.
type GraphData struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is a styled vis-network node.
type Node struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Group string  `json:"group"`
	Color string  `json:"color"`
	Size  float64 `json:"size"`
	Title string  `json:"title"` // plain-text tooltip

	CommunityID *int `json:"communityId,omitempty"`
}

// Edge is a styled vis-network edge.
type Edge struct {
	ID     string  `json:"id"`
	From   string  `json:"from"`
	To     string  `json:"to"`
	Label  string  `json:"label"`
	Title  string  `json:"title"`
	Width  float64 `json:"width"`
	Arrows string  `json:"arrows"`
}

// IsEmpty returns true if the graph has no nodes.
func (g *GraphData) IsEmpty() bool {
	return len(g.Nodes) == 0
}
