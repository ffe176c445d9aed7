package viz

import (
	"fmt"
	"strings"

	"github.com/matsen/kgviz/internal/config"
	"github.com/matsen/kgviz/internal/graph"
)

// Node size bounds applied when sizing by a metric.
const (
	MinNodeSize = 5
	MaxNodeSize = 75
)

// BuildGraphData styles every node and edge of g according to s.
func BuildGraphData(g *graph.Graph, s config.Settings) *GraphData {
	nodes := g.Nodes()
	edges := g.Edges()

	data := &GraphData{
		Nodes: make([]Node, 0, len(nodes)),
		Edges: make([]Edge, 0, len(edges)),
	}

	for _, n := range nodes {
		data.Nodes = append(data.Nodes, newNode(n, s))
	}

	width := s.ActiveEdgeWidth()
	for i, e := range edges {
		data.Edges = append(data.Edges, Edge{
			ID:     edgeID(e.Source, e.Target, e.Relation, i),
			From:   e.Source,
			To:     e.Target,
			Label:  e.Relation,
			Title:  e.Relation,
			Width:  width,
			Arrows: "to",
		})
	}

	return data
}

func newNode(n *graph.Node, s config.Settings) Node {
	return Node{
		ID:          n.ID,
		Label:       n.ID,
		Group:       n.Type,
		Color:       nodeColor(n, s),
		Size:        nodeSize(n, s),
		Title:       nodeTooltip(n, s),
		CommunityID: n.CommunityID,
	}
}

// nodeColor prefers the community palette when enabled and the node is
// labeled, then the type color, then the default color.
func nodeColor(n *graph.Node, s config.Settings) string {
	if s.ColorByCommunity && n.CommunityID != nil && len(s.CommunityColors) > 0 {
		return s.CommunityColors[*n.CommunityID%len(s.CommunityColors)]
	}
	if c, ok := s.NodeColorsByType[strings.ToLower(n.Type)]; ok {
		return c
	}
	return s.DefaultNodeColor
}

func nodeSize(n *graph.Node, s config.Settings) float64 {
	v, ok := metricValue(n, s.NodeSizeMetric)
	if !ok {
		return s.DefaultNodeSize
	}
	size := s.DefaultNodeSize + v*s.NodeSizeMultiplier
	return max(MinNodeSize, min(size, MaxNodeSize))
}

func nodeTooltip(n *graph.Node, s config.Settings) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ID: %s\nType: %s", n.ID, n.Type)
	if n.CommunityID != nil {
		fmt.Fprintf(&b, "\nCommunity ID: %d", *n.CommunityID)
	}
	if v, ok := metricValue(n, s.NodeSizeMetric); ok {
		fmt.Fprintf(&b, "\n%s: %.2f", metricLabel(s.NodeSizeMetric), v)
	}
	return b.String()
}

func metricValue(n *graph.Node, metric string) (float64, bool) {
	switch metric {
	case config.MetricDegree:
		return float64(n.Degree), true
	case config.MetricConnectionCount:
		return float64(n.ConnectionCount), true
	default:
		return 0, false
	}
}

// metricLabel turns "connection_count" into "Connection count".
func metricLabel(metric string) string {
	label := strings.ReplaceAll(metric, "_", " ")
	if label == "" {
		return label
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

// edgeID generates a unique edge ID for the current visualization session.
// IDs are based on slice position and are not stable across different graph builds.
func edgeID(source, target, relation string, index int) string {
	return fmt.Sprintf("%s-%s-%s-%d", source, target, relation, index)
}
