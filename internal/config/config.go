// Package config holds rendering settings: node and edge styling, community
// coloring and the physics layout parameters handed to the visualization.
//
// Settings are plain values. Each run gets its own copy from Default or
// Load, and the With helpers return modified copies, so nothing is shared
// between runs.
package config

import "maps"

// Physics solver names.
const (
	SolverBarnesHut        = "barnesHut"
	SolverForceAtlas2Based = "forceAtlas2Based"
)

// Node size metrics.
const (
	MetricDegree          = "degree"
	MetricConnectionCount = "connection_count"
)

// Edge width styles.
const (
	EdgeStyleNormal = "normal"
	EdgeStyleThin   = "thin"
)

// ValidSolvers lists the supported physics solvers.
var ValidSolvers = []string{SolverBarnesHut, SolverForceAtlas2Based}

// ValidSizeMetrics lists the node attributes usable for sizing.
var ValidSizeMetrics = []string{MetricDegree, MetricConnectionCount}

// Settings configures how an assembled graph is rendered.
type Settings struct {
	NodeColorsByType   map[string]string `yaml:"node_colors_by_type" json:"node_colors_by_type" validate:"dive,keys,required,endkeys,hexcolor"`
	DefaultNodeColor   string            `yaml:"default_node_color" json:"default_node_color" validate:"hexcolor"`
	DefaultNodeSize    float64           `yaml:"default_node_size" json:"default_node_size" validate:"gt=0"`
	NodeSizeMetric     string            `yaml:"node_size_metric" json:"node_size_metric,omitempty" validate:"omitempty,oneof=degree connection_count"`
	NodeSizeMultiplier float64           `yaml:"node_size_multiplier" json:"node_size_multiplier" validate:"gte=0"`

	ColorByCommunity bool     `yaml:"color_by_community" json:"color_by_community"`
	CommunityColors  []string `yaml:"community_colors" json:"community_colors" validate:"dive,hexcolor"`

	EdgeColor          string  `yaml:"edge_color" json:"edge_color" validate:"hexcolor"`
	EdgeHighlightColor string  `yaml:"edge_highlight_color" json:"edge_highlight_color" validate:"hexcolor"`
	EdgeHoverColor     string  `yaml:"edge_hover_color" json:"edge_hover_color" validate:"hexcolor"`
	EdgeStyle          string  `yaml:"edge_style" json:"edge_style" validate:"oneof=normal thin"`
	EdgeWidth          float64 `yaml:"edge_width" json:"edge_width" validate:"gt=0"`
	LightEdgeWidth     float64 `yaml:"light_edge_width" json:"light_edge_width" validate:"gt=0"`
	SmoothType         string  `yaml:"smooth_type" json:"smooth_type" validate:"oneof=dynamic continuous discrete diagonalCross straightCross horizontal vertical curvedCW curvedCCW cubicBezier"`

	// MaxNodes caps the rendered graph by degree; 0 renders every node.
	MaxNodes int `yaml:"max_nodes" json:"max_nodes" validate:"gte=0"`

	Physics Physics `yaml:"physics" json:"physics"`
}

// Physics holds the force-directed layout parameters.
type Physics struct {
	Solver           string           `yaml:"solver" json:"solver" validate:"oneof=barnesHut forceAtlas2Based"`
	BarnesHut        BarnesHut        `yaml:"barnes_hut" json:"barnesHut"`
	ForceAtlas2Based ForceAtlas2Based `yaml:"force_atlas_2_based" json:"forceAtlas2Based"`
	MaxVelocity      float64          `yaml:"max_velocity" json:"maxVelocity" validate:"gt=0"`
	MinVelocity      float64          `yaml:"min_velocity" json:"minVelocity" validate:"gte=0,ltefield=MaxVelocity"`
	Timestep         float64          `yaml:"timestep" json:"timestep" validate:"gt=0"`
	AdaptiveTimestep bool             `yaml:"adaptive_timestep" json:"adaptiveTimestep"`
	Stabilization    Stabilization    `yaml:"stabilization" json:"stabilization"`
}

// BarnesHut parameters; ranges match the viewer's interactive controls.
type BarnesHut struct {
	GravitationalConstant float64 `yaml:"gravitational_constant" json:"gravitationalConstant" validate:"gte=-30000,lte=0"`
	CentralGravity        float64 `yaml:"central_gravity" json:"centralGravity" validate:"gte=0,lte=1"`
	SpringLength          float64 `yaml:"spring_length" json:"springLength" validate:"gte=50,lte=500"`
	SpringConstant        float64 `yaml:"spring_constant" json:"springConstant" validate:"gte=0,lte=0.5"`
	Damping               float64 `yaml:"damping" json:"damping" validate:"gte=0,lte=0.5"`
	AvoidOverlap          float64 `yaml:"avoid_overlap" json:"avoidOverlap" validate:"gte=0,lte=1"`
}

// ForceAtlas2Based parameters.
type ForceAtlas2Based struct {
	Gravity        float64 `yaml:"gravity" json:"gravitationalConstant" validate:"gte=-200,lte=0"`
	CentralGravity float64 `yaml:"central_gravity" json:"centralGravity" validate:"gte=0,lte=0.2"`
	SpringLength   float64 `yaml:"spring_length" json:"springLength" validate:"gte=10,lte=500"`
	SpringConstant float64 `yaml:"spring_constant" json:"springConstant" validate:"gte=0,lte=0.5"`
	Damping        float64 `yaml:"damping" json:"damping" validate:"gte=0,lte=1"`
	AvoidOverlap   float64 `yaml:"avoid_overlap" json:"avoidOverlap" validate:"gte=0,lte=1"`
}

// Stabilization controls the layout warm-up before first display.
type Stabilization struct {
	Enabled          bool `yaml:"enabled" json:"enabled"`
	Iterations       int  `yaml:"iterations" json:"iterations" validate:"gte=0"`
	UpdateInterval   int  `yaml:"update_interval" json:"updateInterval" validate:"gt=0"`
	OnlyDynamicEdges bool `yaml:"only_dynamic_edges" json:"onlyDynamicEdges"`
	Fit              bool `yaml:"fit" json:"fit"`
}

// defaultNodeColorsByType maps lowercase node types to colors.
var defaultNodeColorsByType = map[string]string{
	"person":            "#FF69B4",
	"organization":      "#1E90FF",
	"company":           "#1E90FF",
	"institution":       "#1E90FF",
	"location":          "#32CD32",
	"place":             "#32CD32",
	"city":              "#00FA9A",
	"country":           "#00CED1",
	"event":             "#FFD700",
	"project":           "#FFA500",
	"publication":       "#8A2BE2",
	"concept":           "#DDA0DD",
	"theory":            "#DDA0DD",
	"field_of_study":    "#BA55D3",
	"technology":        "#40E0D0",
	"software":          "#40E0D0",
	"product":           "#6495ED",
	"disease":           "#DC143C",
	"protein":           "#20B2AA",
	"gene":              "#9370DB",
	"chemical_compound": "#F08080",
	"drug":              "#F08080",
	"unknown":           "#B0C4DE",
	"default":           "#B0C4DE",
}

var defaultCommunityColors = []string{
	"#E6194B", "#3CB44B", "#FFE119", "#4363D8", "#F58231", "#911EB4",
	"#46F0F0", "#F032E6", "#BCF60C", "#FABEBE", "#008080", "#E6BEFF",
	"#9A6324", "#FFFAC8", "#800000", "#AAFFC3", "#808000", "#FFD8B1",
	"#000075", "#808080",
}

// Default returns the built-in settings. Each call returns a fresh value.
func Default() Settings {
	return Settings{
		NodeColorsByType:   maps.Clone(defaultNodeColorsByType),
		DefaultNodeColor:   defaultNodeColorsByType["unknown"],
		DefaultNodeSize:    15,
		NodeSizeMultiplier: 3,
		CommunityColors:    append([]string(nil), defaultCommunityColors...),
		EdgeColor:          "#696969",
		EdgeHighlightColor: "#FF4500",
		EdgeHoverColor:     "#FFA07A",
		EdgeStyle:          EdgeStyleNormal,
		EdgeWidth:          1,
		LightEdgeWidth:     0.5,
		SmoothType:         "dynamic",
		Physics: Physics{
			Solver: SolverBarnesHut,
			BarnesHut: BarnesHut{
				GravitationalConstant: -15000,
				CentralGravity:        0.1,
				SpringLength:          200,
				SpringConstant:        0.05,
				Damping:               0.09,
				AvoidOverlap:          0.1,
			},
			ForceAtlas2Based: ForceAtlas2Based{
				Gravity:        -50,
				CentralGravity: 0.01,
				SpringLength:   100,
				SpringConstant: 0.08,
				Damping:        0.4,
				AvoidOverlap:   0,
			},
			MaxVelocity:      35,
			MinVelocity:      0.75,
			Timestep:         0.5,
			AdaptiveTimestep: true,
			Stabilization: Stabilization{
				Enabled:        true,
				Iterations:     500,
				UpdateInterval: 50,
				Fit:            true,
			},
		},
	}
}

// Clone returns a deep copy of s.
func (s Settings) Clone() Settings {
	s.NodeColorsByType = maps.Clone(s.NodeColorsByType)
	s.CommunityColors = append([]string(nil), s.CommunityColors...)
	return s
}

// WithSolver returns a copy of s using the named physics solver.
func (s Settings) WithSolver(solver string) Settings {
	s = s.Clone()
	s.Physics.Solver = solver
	return s
}

// WithSizeMetric returns a copy of s sizing nodes by metric; "" or "default"
// uses the fixed default size.
func (s Settings) WithSizeMetric(metric string) Settings {
	s = s.Clone()
	if metric == "default" {
		metric = ""
	}
	s.NodeSizeMetric = metric
	return s
}

// WithCommunityColoring returns a copy of s with community coloring toggled.
func (s Settings) WithCommunityColoring(enabled bool) Settings {
	s = s.Clone()
	s.ColorByCommunity = enabled
	return s
}

// WithEdgeStyle returns a copy of s using the named edge width style.
func (s Settings) WithEdgeStyle(style string) Settings {
	s = s.Clone()
	s.EdgeStyle = style
	return s
}

// WithMaxNodes returns a copy of s capping the rendered node count.
func (s Settings) WithMaxNodes(n int) Settings {
	s = s.Clone()
	s.MaxNodes = n
	return s
}

// ActiveEdgeWidth returns the edge width for the configured edge style.
func (s Settings) ActiveEdgeWidth() float64 {
	if s.EdgeStyle == EdgeStyleThin {
		return s.LightEdgeWidth
	}
	return s.EdgeWidth
}
