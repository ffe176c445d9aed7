// Package pipeline runs the full load, validate, clean, normalize, assemble,
// limit and community-labeling sequence over one input.
package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/matsen/kgviz/internal/graph"
	"github.com/matsen/kgviz/internal/loader"
	"github.com/matsen/kgviz/internal/logging"
	"github.com/matsen/kgviz/internal/record"
)

var (
	// ErrEmptyResult means the input produced nothing to display.
	ErrEmptyResult = errors.New("no nodes or relations to display")
	// ErrValidation means relation records lack required fields.
	ErrValidation = errors.New("relation records failed validation")
)

// Options controls a single run.
type Options struct {
	// MaxNodes caps the displayed graph by degree; 0 keeps every node.
	MaxNodes int
	// NoCommunities skips community labeling.
	NoCommunities bool
	Logger        *log.Logger
}

// Stats summarizes what each stage produced.
type Stats struct {
	Shape          loader.Shape `json:"shape"`
	LoadedNodes    int          `json:"loaded_nodes"`
	LoadedEdges    int          `json:"loaded_edges"`
	SkippedEdges   int          `json:"skipped_edges"`
	CleanedEdges   int          `json:"cleaned_edges"`
	GraphNodes     int          `json:"graph_nodes"`
	GraphEdges     int          `json:"graph_edges"`
	DisplayedNodes int          `json:"displayed_nodes"`
	DisplayedEdges int          `json:"displayed_edges"`
	Communities    int          `json:"communities"`
	Modularity     float64      `json:"modularity"`
	Limited        bool         `json:"limited"`
}

// Result is everything a run produced. Full is the assembled graph before
// limiting; Graph is the limited, community-labeled graph for display.
type Result struct {
	Source    string
	Records   []record.Record
	Full      *graph.Graph
	Graph     *graph.Graph
	Partition graph.Partition
	Skipped   []loader.Skip
	Stats     Stats
}

// ValidationError lists the relation fields missing from the input.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) == 0 {
		return ErrValidation.Error() + ": no relation records"
	}
	return fmt.Sprintf("%s: missing %s", ErrValidation, strings.Join(e.Missing, ", "))
}

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Run processes src end to end. Each call owns its graphs; nothing is
// shared between runs.
func Run(src loader.Source, opts Options) (*Result, error) {
	logger := logging.OrDiscard(opts.Logger)

	loaded, err := loader.New(logger).Load(src)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", src.Name, err)
	}
	if loaded.IsEmpty() {
		logger.Warn("no nodes or edges found", "source", loaded.Source)
		return nil, ErrEmptyResult
	}

	res := &Result{
		Source:  loaded.Source,
		Skipped: loaded.Skipped,
		Stats: Stats{
			Shape:        loaded.Shape,
			LoadedNodes:  loaded.Nodes.Len(),
			LoadedEdges:  len(loaded.Edges),
			SkippedEdges: len(loaded.Skipped),
		},
	}
	logger.Info("data loaded", "source", loaded.Source, "shape", loaded.Shape,
		"nodes", res.Stats.LoadedNodes, "edges", res.Stats.LoadedEdges)

	// Nodes without relations still make a graph.
	if len(loaded.Edges) > 0 {
		records, err := prepare(loaded.Edges, logger)
		if err != nil {
			return nil, err
		}
		res.Records = records
	}
	res.Stats.CleanedEdges = len(res.Records)

	res.Full = graph.Assemble(res.Records, loaded.Nodes)
	if res.Full.IsEmpty() {
		return nil, ErrEmptyResult
	}
	res.Stats.GraphNodes = res.Full.NodeCount()
	res.Stats.GraphEdges = res.Full.EdgeCount()
	logger.Debug("graph assembled", "nodes", res.Stats.GraphNodes, "edges", res.Stats.GraphEdges)

	res.Graph = graph.Limit(res.Full, opts.MaxNodes)
	res.Stats.Limited = res.Graph.NodeCount() < res.Full.NodeCount()
	if res.Stats.Limited {
		logger.Info("graph limited by degree", "max_nodes", opts.MaxNodes,
			"nodes", res.Graph.NodeCount(), "edges", res.Graph.EdgeCount())
	}

	if !opts.NoCommunities {
		p, err := graph.LabelCommunities(res.Graph)
		if err != nil {
			logger.Warn("community detection failed; continuing without communities", "err", err)
		} else {
			res.Partition = p
			logger.Debug("communities labeled", "count", p.Len(), "modularity", p.Modularity)
		}
	}

	res.Stats.DisplayedNodes = res.Graph.NodeCount()
	res.Stats.DisplayedEdges = res.Graph.EdgeCount()
	res.Stats.Communities = res.Partition.Len()
	res.Stats.Modularity = res.Partition.Modularity
	return res, nil
}

// prepare validates, cleans and normalizes relation records.
func prepare(edges []record.Record, logger *log.Logger) ([]record.Record, error) {
	if !record.Validate(edges) {
		err := &ValidationError{Missing: record.MissingFields(edges)}
		logger.Error("validation failed", "missing", err.Missing)
		return nil, err
	}

	cleaned := record.Clean(edges)
	if len(cleaned) == 0 {
		logger.Warn("cleaning removed every relation record", "loaded", len(edges))
		return nil, ErrEmptyResult
	}
	if dropped := len(edges) - len(cleaned); dropped > 0 {
		logger.Info("records cleaned", "kept", len(cleaned), "dropped", dropped)
	}

	return record.Normalize(cleaned), nil
}
