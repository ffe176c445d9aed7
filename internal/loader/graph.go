package loader

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/matsen/kgviz/internal/record"
)

// graphDocument is the nodes+edges input layout. Pointers distinguish an
// absent array from an empty one.
type graphDocument struct {
	Nodes *[]graphNode `json:"nodes"`
	Edges *[]graphEdge `json:"edges"`
}

type graphNode struct {
	ID         record.Field      `json:"id"`
	SourceFile record.Field      `json:"source_file"`
	Attributes []json.RawMessage `json:"attributes"`
}

type graphEdge struct {
	From  record.Field `json:"from"`
	To    record.Field `json:"to"`
	Label record.Field `json:"label"`
}

// Skip describes an edge dropped because an endpoint is not a declared node.
type Skip struct {
	Index  int    `json:"index"` // 1-based position in the edges array
	From   string `json:"from"`
	To     string `json:"to"`
	Label  string `json:"label"`
	Reason string `json:"reason"` // "missing_source", "missing_target", or "missing_both"
}

func (s Skip) String() string {
	return fmt.Sprintf("edge %d (%s -[%s]-> %s): %s", s.Index, s.From, s.Label, s.To, s.Reason)
}

func (l *Loader) decodeGraph(name string, root json.RawMessage) (*Result, error) {
	var doc graphDocument
	if err := json.Unmarshal(root, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	if doc.Nodes == nil || doc.Edges == nil {
		return nil, fmt.Errorf("%w: JSON object must have 'nodes' and 'edges' arrays", ErrSchemaMismatch)
	}

	res := emptyResult(name)
	res.Shape = ShapeGraph

	for i, n := range *doc.Nodes {
		if n.ID.Missing() {
			return nil, fmt.Errorf("%w: node %d is missing 'id'", ErrSchemaMismatch, i+1)
		}
		res.Nodes.Put(record.NodeInfo{
			ID:         n.ID.Text,
			Type:       nodeType(n.ID.Text, n.SourceFile),
			Attributes: n.Attributes,
		})
	}

	edges := *doc.Edges
	res.Edges = make([]record.Record, 0, len(edges))

	for i, e := range edges {
		for _, f := range []struct {
			name  string
			field record.Field
		}{{"from", e.From}, {"to", e.To}, {"label", e.Label}} {
			if f.field.Missing() {
				return nil, fmt.Errorf("%w: edge %d is missing '%s'", ErrSchemaMismatch, i+1, f.name)
			}
		}

		from, okFrom := res.Nodes.Get(e.From.Text)
		to, okTo := res.Nodes.Get(e.To.Text)
		if !okFrom || !okTo {
			skip := Skip{
				Index: i + 1,
				From:  e.From.Text,
				To:    e.To.Text,
				Label: e.Label.Text,
			}
			switch {
			case !okFrom && !okTo:
				skip.Reason = "missing_both"
			case !okFrom:
				skip.Reason = "missing_source"
			default:
				skip.Reason = "missing_target"
			}
			l.logger.Warn("skipping edge with unknown endpoint", "source", name, "edge", skip.Index, "from", skip.From, "to", skip.To, "reason", skip.Reason)
			res.Skipped = append(res.Skipped, skip)
			continue
		}

		res.Edges = append(res.Edges, record.New(from.ID, from.Type, e.Label.Text, to.ID, to.Type))
	}

	return res, nil
}

// nodeType derives a node's type from its source file name: the part before
// the first ".", or the whole name when it has none. Nodes without a usable
// source file are typed by their own ID.
func nodeType(id string, sourceFile record.Field) string {
	if sourceFile.Missing() || sourceFile.Text == "" {
		return id
	}
	prefix, _, _ := strings.Cut(sourceFile.Text, ".")
	if prefix == "" {
		return id
	}
	return prefix
}
