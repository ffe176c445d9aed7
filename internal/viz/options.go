package viz

import (
	"encoding/json"
	"fmt"

	"github.com/matsen/kgviz/internal/config"
)

// visOptions mirrors the vis-network options object.
type visOptions struct {
	Physics     visPhysics     `json:"physics"`
	Edges       visEdgeOptions `json:"edges"`
	Nodes       visNodeOptions `json:"nodes"`
	Interaction visInteraction `json:"interaction"`
}

type visPhysics struct {
	Enabled bool `json:"enabled"`
	config.Physics
}

type visEdgeOptions struct {
	Color  visEdgeColor `json:"color"`
	Smooth visSmooth    `json:"smooth"`
	Font   visFont      `json:"font"`
}

type visEdgeColor struct {
	Color     string `json:"color"`
	Highlight string `json:"highlight"`
	Hover     string `json:"hover"`
}

type visSmooth struct {
	Enabled bool   `json:"enabled"`
	Type    string `json:"type"`
}

type visFont struct {
	Size  int    `json:"size"`
	Align string `json:"align,omitempty"`
}

type visNodeOptions struct {
	Shape string  `json:"shape"`
	Font  visFont `json:"font"`
}

type visInteraction struct {
	Hover             bool `json:"hover"`
	TooltipDelay      int  `json:"tooltipDelay"`
	NavigationButtons bool `json:"navigationButtons"`
}

func newVisOptions(s config.Settings) visOptions {
	return visOptions{
		Physics: visPhysics{Enabled: true, Physics: s.Physics},
		Edges: visEdgeOptions{
			Color: visEdgeColor{
				Color:     s.EdgeColor,
				Highlight: s.EdgeHighlightColor,
				Hover:     s.EdgeHoverColor,
			},
			Smooth: visSmooth{Enabled: true, Type: s.SmoothType},
			Font:   visFont{Size: 10, Align: "middle"},
		},
		Nodes:       visNodeOptions{Shape: "dot", Font: visFont{Size: 14}},
		Interaction: visInteraction{Hover: true, TooltipDelay: 200, NavigationButtons: true},
	}
}

// OptionsJSON serializes the vis-network options for s.
func OptionsJSON(s config.Settings) (string, error) {
	b, err := json.Marshal(newVisOptions(s))
	if err != nil {
		return "", fmt.Errorf("marshaling vis-network options: %w", err)
	}
	return string(b), nil
}

// ToVisJSON serializes the node and edge arrays for vis.DataSet.
func (g *GraphData) ToVisJSON() (nodes, edges string, err error) {
	nb, err := json.Marshal(g.Nodes)
	if err != nil {
		return "", "", fmt.Errorf("marshaling nodes to JSON: %w", err)
	}
	eb, err := json.Marshal(g.Edges)
	if err != nil {
		return "", "", fmt.Errorf("marshaling edges to JSON: %w", err)
	}
	return string(nb), string(eb), nil
}
