package main

import (
	"errors"
	"fmt"

	"github.com/matsen/kgviz/internal/graph"
	"github.com/matsen/kgviz/internal/storage"
	"github.com/spf13/cobra"
)

// errNodeNotFound is returned when a queried node is not in the index.
var errNodeNotFound = errors.New("node not found")

var (
	neighborsDB string

	edgesDB       string
	edgesRelation string
)

func init() {
	neighborsCmd.Flags().StringVar(&neighborsDB, "db", storage.DefaultDBFile, "SQLite database path")
	rootCmd.AddCommand(neighborsCmd)

	edgesCmd.Flags().StringVar(&edgesDB, "db", storage.DefaultDBFile, "SQLite database path")
	edgesCmd.Flags().StringVar(&edgesRelation, "relation", "", "Relation label to match (required)")
	edgesCmd.MarkFlagRequired("relation")
	rootCmd.AddCommand(edgesCmd)
}

var neighborsCmd = &cobra.Command{
	Use:   "neighbors <node-id>",
	Short: "Show a stored node and its incident edges",
	Long: `Query a database written by 'kgviz index' for one node, its outgoing and
incoming edges, and the distinct nodes it connects to.

Examples:
  kgviz neighbors Ada
  kgviz neighbors Ada --db /tmp/people.db --human`,
	Args: cobra.ExactArgs(1),
	RunE: runNeighbors,
}

var edgesCmd = &cobra.Command{
	Use:   "edges",
	Short: "List stored edges with a given relation",
	Long: `Query a database written by 'kgviz index' for every edge carrying a
relation label, in insertion order. Stored labels are normalized, so match
them in lowercase.

Examples:
  kgviz edges --relation worked_with
  kgviz edges --relation born_in --human`,
	Args: cobra.NoArgs,
	RunE: runEdges,
}

// NeighborsResponse is the response for the neighbors command.
type NeighborsResponse struct {
	Node      NodeSummary  `json:"node"`
	Outgoing  []graph.Edge `json:"outgoing"`
	Incoming  []graph.Edge `json:"incoming"`
	Neighbors []string     `json:"neighbors"`
}

// EdgesResponse is the response for the edges command.
type EdgesResponse struct {
	Relation string       `json:"relation"`
	Count    int          `json:"count"`
	Edges    []graph.Edge `json:"edges"`
}

func runNeighbors(cmd *cobra.Command, args []string) error {
	db, err := storage.OpenDB(neighborsDB)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	resp, err := buildNeighborsResponse(db, args[0])
	if err != nil {
		return err
	}

	if humanOutput {
		n := resp.Node
		outputHuman("%s (%s), degree %d\n", n.ID, n.Type, n.Degree)
		for _, e := range resp.Outgoing {
			outputHuman("  -> %-30s %s\n", e.Target, e.Relation)
		}
		for _, e := range resp.Incoming {
			outputHuman("  <- %-30s %s\n", e.Source, e.Relation)
		}
		return nil
	}
	return outputJSON(resp)
}

// buildNeighborsResponse looks up id and splits its incident edges by
// direction. A self-loop is listed once, as outgoing.
func buildNeighborsResponse(db *storage.DB, id string) (NeighborsResponse, error) {
	node, err := db.GetNode(id)
	if err != nil {
		return NeighborsResponse{}, err
	}
	if node == nil {
		return NeighborsResponse{}, fmt.Errorf("%w: %q", errNodeNotFound, id)
	}

	edges, err := db.GetEdgesByNode(id)
	if err != nil {
		return NeighborsResponse{}, err
	}

	resp := NeighborsResponse{
		Node:      summarizeNodes([]*graph.Node{node})[0],
		Outgoing:  []graph.Edge{},
		Incoming:  []graph.Edge{},
		Neighbors: []string{},
	}
	seen := map[string]bool{id: true}
	for _, e := range edges {
		other := e.Target
		if e.Source == id {
			resp.Outgoing = append(resp.Outgoing, e)
		} else {
			resp.Incoming = append(resp.Incoming, e)
			other = e.Source
		}
		if !seen[other] {
			seen[other] = true
			resp.Neighbors = append(resp.Neighbors, other)
		}
	}
	return resp, nil
}

func runEdges(cmd *cobra.Command, args []string) error {
	db, err := storage.OpenDB(edgesDB)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	resp, err := buildEdgesResponse(db, edgesRelation)
	if err != nil {
		return err
	}

	if humanOutput {
		if resp.Count == 0 {
			outputHuman("No %q edges found\n", resp.Relation)
			return nil
		}
		for _, e := range resp.Edges {
			outputHuman("%-30s -> %s\n", e.Source, e.Target)
		}
		return nil
	}
	return outputJSON(resp)
}

func buildEdgesResponse(db *storage.DB, relation string) (EdgesResponse, error) {
	edges, err := db.GetEdgesByRelation(relation)
	if err != nil {
		return EdgesResponse{}, err
	}
	if edges == nil {
		edges = []graph.Edge{}
	}
	return EdgesResponse{Relation: relation, Count: len(edges), Edges: edges}, nil
}
