package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/matsen/kgviz/internal/config"
	"github.com/matsen/kgviz/internal/graph"
	"github.com/matsen/kgviz/internal/pipeline"
	"github.com/matsen/kgviz/internal/storage"
	"github.com/matsen/kgviz/internal/viz"
	"github.com/spf13/cobra"
)

var (
	renderOutput           string
	renderTitle            string
	renderMaxNodes         int
	renderSizeMetric       string
	renderColorByCommunity bool
	renderEdgeWidth        string
	renderSolver           string
	renderDB               string
	renderNoCommunities    bool
)

func init() {
	f := renderCmd.Flags()
	f.StringVarP(&renderOutput, "output", "o", "", "Output file path (default: stdout)")
	f.StringVar(&renderTitle, "title", "", "Page title (default: input file name)")
	f.IntVar(&renderMaxNodes, "max-nodes", 0, "Show only the N highest-degree nodes (0: all)")
	f.StringVar(&renderSizeMetric, "size-metric", "", "Size nodes by: default, "+strings.Join(config.ValidSizeMetrics, ", "))
	f.BoolVar(&renderColorByCommunity, "color-by-community", false, "Color nodes by detected community instead of type")
	f.StringVar(&renderEdgeWidth, "edge-width", "", "Edge width style: normal or thin")
	f.StringVar(&renderSolver, "solver", "", "Physics solver: "+strings.Join(config.ValidSolvers, ", "))
	f.StringVar(&renderDB, "db", "", "Render a graph stored by 'kgviz index' instead of reading input")
	f.BoolVar(&renderNoCommunities, "no-communities", false, "Skip community detection")
	rootCmd.AddCommand(renderCmd)
}

var renderCmd = &cobra.Command{
	Use:   "render [file|-]",
	Short: "Render relation data as an interactive HTML graph",
	Long: `Render relation data as a self-contained interactive HTML page.

Nodes are colored by type (or by community with --color-by-community) and
laid out by a force-directed physics simulation.

Examples:
  # Render to stdout
  kgviz render people.json > graph.html

  # Render the 100 best-connected nodes to a file
  kgviz render people.json --max-nodes 100 -o graph.html

  # Read from stdin, size nodes by degree, use ForceAtlas2
  cat people.json | kgviz render - --size-metric degree --solver forceAtlas2Based

  # Render a previously indexed graph
  kgviz render --db kgviz.db -o graph.html`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

// RenderResponse is the JSON response for render when writing to a file.
type RenderResponse struct {
	Output      string `json:"output"`
	Nodes       int    `json:"nodes"`
	Edges       int    `json:"edges"`
	Communities int    `json:"communities"`
}

func runRender(cmd *cobra.Command, args []string) error {
	log := withLogger("render")

	s, _, err := loadSettings()
	if err != nil {
		return err
	}
	s, err = applyRenderFlags(cmd, s)
	if err != nil {
		return err
	}

	g, title, err := renderGraph(args, s)
	if err != nil {
		return err
	}
	if renderTitle != "" {
		title = renderTitle
	}

	page, err := viz.GenerateHTML(g, s, viz.HTMLOptions{Title: title})
	if err != nil {
		return fmt.Errorf("generating HTML: %w", err)
	}

	if renderOutput == "" {
		fmt.Print(page)
		return nil
	}

	if err := viz.WriteHTMLFile(renderOutput, page); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	log.Info("visualization written", "path", renderOutput, "nodes", g.NodeCount(), "edges", g.EdgeCount())

	if humanOutput {
		outputHuman("Visualization written to %s (%d nodes, %d edges)\n", renderOutput, g.NodeCount(), g.EdgeCount())
		return nil
	}
	return outputJSON(RenderResponse{
		Output:      renderOutput,
		Nodes:       g.NodeCount(),
		Edges:       g.EdgeCount(),
		Communities: graph.CommunityCount(g),
	})
}

// renderGraph produces the graph to draw and a default page title, either by
// running the pipeline over the input or by reading an index.
func renderGraph(args []string, s config.Settings) (*graph.Graph, string, error) {
	if renderDB != "" {
		if len(args) > 0 {
			return nil, "", errors.New("give either an input file or --db, not both")
		}
		g, err := loadIndexedGraph(renderDB, s.MaxNodes)
		return g, filepath.Base(renderDB), err
	}

	if len(args) == 0 {
		return nil, "", errors.New("an input file (or - for stdin) is required")
	}
	src := sourceFromArg(args[0])
	res, err := pipeline.Run(src, pipeline.Options{
		MaxNodes:      s.MaxNodes,
		NoCommunities: renderNoCommunities,
		Logger:        withLogger("render"),
	})
	if err != nil {
		return nil, "", err
	}
	return res.Graph, filepath.Base(src.Name), nil
}

// loadIndexedGraph reads a stored graph and limits it. Stored community
// labels are kept unless the limit drops nodes, in which case they are
// recomputed for the displayed subgraph.
func loadIndexedGraph(path string, maxNodes int) (*graph.Graph, error) {
	db, err := storage.OpenDB(path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	full, err := db.LoadGraph()
	if err != nil {
		return nil, fmt.Errorf("reading stored graph: %w", err)
	}
	if full.IsEmpty() {
		return nil, fmt.Errorf("%s: %w", path, pipeline.ErrEmptyResult)
	}

	g := graph.Limit(full, maxNodes)
	if g.NodeCount() < full.NodeCount() && !renderNoCommunities {
		if _, err := graph.LabelCommunities(g); err != nil {
			logger.Warn("community detection failed; continuing without communities", "err", err)
		}
	}
	return g, nil
}

// applyRenderFlags overlays explicitly set flags on s and validates the
// result.
func applyRenderFlags(cmd *cobra.Command, s config.Settings) (config.Settings, error) {
	flags := cmd.Flags()
	if flags.Changed("max-nodes") {
		s = s.WithMaxNodes(renderMaxNodes)
	}
	if flags.Changed("size-metric") {
		s = s.WithSizeMetric(renderSizeMetric)
	}
	if flags.Changed("color-by-community") {
		s = s.WithCommunityColoring(renderColorByCommunity)
	}
	if flags.Changed("edge-width") {
		s = s.WithEdgeStyle(renderEdgeWidth)
	}
	if flags.Changed("solver") {
		s = s.WithSolver(renderSolver)
	}
	if err := s.Validate(); err != nil {
		return config.Settings{}, configErr(err)
	}
	return s, nil
}
