package main

import (
	"github.com/matsen/kgviz/internal/graph"
	"github.com/matsen/kgviz/internal/loader"
	"github.com/matsen/kgviz/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	inspectMaxNodes      int
	inspectLimit         int
	inspectNoCommunities bool
)

func init() {
	inspectCmd.Flags().IntVar(&inspectMaxNodes, "max-nodes", 0, "Limit to the N highest-degree nodes before detecting communities (0: all)")
	inspectCmd.Flags().IntVar(&inspectLimit, "limit", DefaultInspectLimit, "Number of top nodes to list")
	inspectCmd.Flags().BoolVar(&inspectNoCommunities, "no-communities", false, "Skip community detection")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file|->",
	Short: "Report what each processing stage made of the input",
	Long: `Run the processing pipeline and report stage counts, skipped edges,
the best-connected nodes and community sizes, without rendering.

Examples:
  kgviz inspect people.json
  kgviz inspect people.json --human --limit 5`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

// NodeSummary is a node as listed by inspect and top.
type NodeSummary struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Degree      int    `json:"degree"`
	CommunityID *int   `json:"community_id,omitempty"`
}

// CommunitySummary describes one detected community.
type CommunitySummary struct {
	ID      int    `json:"id"`
	Size    int    `json:"size"`
	Example string `json:"example"`
}

// InspectResponse is the response for the inspect command.
type InspectResponse struct {
	Source      string             `json:"source"`
	Stats       pipeline.Stats     `json:"stats"`
	Skipped     []loader.Skip      `json:"skipped"`
	TopNodes    []NodeSummary      `json:"top_nodes"`
	Communities []CommunitySummary `json:"communities"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	res, err := pipeline.Run(sourceFromArg(args[0]), pipeline.Options{
		MaxNodes:      inspectMaxNodes,
		NoCommunities: inspectNoCommunities,
		Logger:        withLogger("inspect"),
	})
	if err != nil {
		return err
	}

	resp := buildInspectResponse(res, inspectLimit)
	if humanOutput {
		printInspectHuman(resp)
		return nil
	}
	return outputJSON(resp)
}

func buildInspectResponse(res *pipeline.Result, limit int) InspectResponse {
	resp := InspectResponse{
		Source:      res.Source,
		Stats:       res.Stats,
		Skipped:     res.Skipped,
		TopNodes:    summarizeNodes(graph.TopByDegree(res.Graph, limit)),
		Communities: make([]CommunitySummary, 0, res.Partition.Len()),
	}
	if resp.Skipped == nil {
		resp.Skipped = []loader.Skip{}
	}
	for i, members := range res.Partition.Communities {
		resp.Communities = append(resp.Communities, CommunitySummary{
			ID:      i,
			Size:    len(members),
			Example: members[0],
		})
	}
	return resp
}

func summarizeNodes(nodes []*graph.Node) []NodeSummary {
	out := make([]NodeSummary, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, NodeSummary{
			ID:          n.ID,
			Type:        n.Type,
			Degree:      n.Degree,
			CommunityID: n.CommunityID,
		})
	}
	return out
}

func printInspectHuman(resp InspectResponse) {
	st := resp.Stats
	outputHuman("Source: %s (%s shape)\n", resp.Source, st.Shape)
	outputHuman("  Loaded: %d nodes, %d edges (%d skipped)\n", st.LoadedNodes, st.LoadedEdges, st.SkippedEdges)
	outputHuman("  After cleaning: %d relations\n", st.CleanedEdges)
	outputHuman("  Graph: %d nodes, %d edges\n", st.GraphNodes, st.GraphEdges)
	if st.Limited {
		outputHuman("  Displayed: %d nodes, %d edges (limited by degree)\n", st.DisplayedNodes, st.DisplayedEdges)
	}
	if st.Communities > 0 {
		outputHuman("  Communities: %d (modularity %.3f)\n", st.Communities, st.Modularity)
	}

	if len(resp.Skipped) > 0 {
		outputHuman("\nSkipped edges:\n")
		for _, s := range resp.Skipped {
			outputHuman("  %s\n", s)
		}
	}

	if len(resp.TopNodes) > 0 {
		outputHuman("\nTop nodes by degree:\n")
		for _, n := range resp.TopNodes {
			outputHuman("  %-30s %-15s %d\n", n.ID, n.Type, n.Degree)
		}
	}

	if len(resp.Communities) > 0 {
		outputHuman("\nCommunities:\n")
		for _, c := range resp.Communities {
			outputHuman("  %d: %d nodes (e.g. %s)\n", c.ID, c.Size, c.Example)
		}
	}
}
