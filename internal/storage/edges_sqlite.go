package storage

import (
	"database/sql"
	"fmt"

	"github.com/matsen/kgviz/internal/graph"
)

// GetAllEdges returns every stored edge in insertion order.
func (d *DB) GetAllEdges() ([]graph.Edge, error) {
	rows, err := d.db.Query(`
		SELECT source_id, target_id, relation
		FROM edges
		ORDER BY ordinal
	`)
	if err != nil {
		return nil, fmt.Errorf("querying edges: %w", err)
	}
	defer rows.Close()

	return scanEdges(rows)
}

// GetEdgesByNode returns all edges incident to the given node, in either
// direction.
func (d *DB) GetEdgesByNode(nodeID string) ([]graph.Edge, error) {
	rows, err := d.db.Query(`
		SELECT source_id, target_id, relation
		FROM edges
		WHERE source_id = ? OR target_id = ?
		ORDER BY ordinal
	`, nodeID, nodeID)
	if err != nil {
		return nil, fmt.Errorf("querying edges by node: %w", err)
	}
	defer rows.Close()

	return scanEdges(rows)
}

// GetEdgesByRelation returns all edges with the given relation.
func (d *DB) GetEdgesByRelation(relation string) ([]graph.Edge, error) {
	rows, err := d.db.Query(`
		SELECT source_id, target_id, relation
		FROM edges
		WHERE relation = ?
		ORDER BY ordinal
	`, relation)
	if err != nil {
		return nil, fmt.Errorf("querying edges by relation: %w", err)
	}
	defer rows.Close()

	return scanEdges(rows)
}

// LoadGraph rebuilds the stored graph. Degrees and community labels are
// restored as stored, not recomputed.
func (d *DB) LoadGraph() (*graph.Graph, error) {
	nodes, err := d.GetAllNodes()
	if err != nil {
		return nil, err
	}
	edges, err := d.GetAllEdges()
	if err != nil {
		return nil, err
	}

	g := graph.New()
	for _, n := range nodes {
		g.AddNode(*n)
	}
	for _, e := range edges {
		if err := g.AddEdge(e.Source, e.Target, e.Relation); err != nil {
			return nil, fmt.Errorf("data integrity error: %w", err)
		}
	}
	return g, nil
}

func scanEdges(rows *sql.Rows) ([]graph.Edge, error) {
	var edges []graph.Edge
	for rows.Next() {
		var e graph.Edge
		if err := rows.Scan(&e.Source, &e.Target, &e.Relation); err != nil {
			return nil, fmt.Errorf("scanning edge: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating edges: %w", err)
	}
	return edges, nil
}
