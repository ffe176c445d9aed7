package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/matsen/kgviz/internal/graph"
	_ "modernc.org/sqlite"
)

// DefaultDBFile is the database file name used when none is given.
const DefaultDBFile = "kgviz.db"

// Metadata keys recorded by ReplaceGraph.
const (
	MetaSource     = "source"
	MetaIndexedAt  = "indexed_at"
	MetaModularity = "modularity"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// selectNodeFields contains the standard field list for node SELECT queries.
const selectNodeFields = `id, type, degree, connection_count, community_id, attributes_json`

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		return nil, errors.Join(fmt.Errorf("creating schema: %w", err), db.Close())
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS nodes (
			ordinal INTEGER NOT NULL,
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			degree INTEGER NOT NULL,
			connection_count INTEGER NOT NULL,
			community_id INTEGER,
			attributes_json TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_nodes_type ON nodes(type);
		CREATE INDEX IF NOT EXISTS idx_nodes_degree ON nodes(degree DESC, ordinal);

		-- Parallel edges are allowed, so edges are keyed by position.
		CREATE TABLE IF NOT EXISTS edges (
			ordinal INTEGER PRIMARY KEY,
			source_id TEXT NOT NULL,
			target_id TEXT NOT NULL,
			relation TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source_id);
		CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target_id);
		CREATE INDEX IF NOT EXISTS idx_edges_relation ON edges(relation);

		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`

	_, err := db.Exec(schema)
	return err
}

// IndexInfo describes a stored graph.
type IndexInfo struct {
	Source     string
	IndexedAt  time.Time
	Modularity float64
}

// ReplaceGraph clears the database and stores g in a single transaction.
func (d *DB) ReplaceGraph(g *graph.Graph, info IndexInfo) (err error) {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, table := range []string{"nodes", "edges", "metadata"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clearing %s table: %w", table, err)
		}
	}

	if err := insertNodes(tx, g.Nodes()); err != nil {
		return err
	}
	if err := insertEdges(tx, g.Edges()); err != nil {
		return err
	}

	if info.IndexedAt.IsZero() {
		info.IndexedAt = time.Now()
	}
	meta := map[string]string{
		MetaSource:     info.Source,
		MetaIndexedAt:  info.IndexedAt.UTC().Format(time.RFC3339),
		MetaModularity: fmt.Sprintf("%g", info.Modularity),
	}
	for k, v := range meta {
		if _, err := tx.Exec(`INSERT INTO metadata (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("writing metadata %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing graph: %w", err)
	}
	return nil
}

func insertNodes(tx *sql.Tx, nodes []*graph.Node) error {
	stmt, err := tx.Prepare(`
		INSERT INTO nodes (ordinal, id, type, degree, connection_count, community_id, attributes_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing nodes insert: %w", err)
	}
	defer stmt.Close()

	for i, n := range nodes {
		attrs, err := json.Marshal(n.Attributes)
		if err != nil {
			return fmt.Errorf("marshaling attributes for %s: %w", n.ID, err)
		}
		var community sql.NullInt64
		if n.CommunityID != nil {
			community = sql.NullInt64{Int64: int64(*n.CommunityID), Valid: true}
		}
		if _, err := stmt.Exec(i, n.ID, n.Type, n.Degree, n.ConnectionCount, community, string(attrs)); err != nil {
			return fmt.Errorf("inserting node %s: %w", n.ID, err)
		}
	}
	return nil
}

func insertEdges(tx *sql.Tx, edges []graph.Edge) error {
	stmt, err := tx.Prepare(`
		INSERT INTO edges (ordinal, source_id, target_id, relation)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing edges insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range edges {
		if _, err := stmt.Exec(i, e.Source, e.Target, e.Relation); err != nil {
			return fmt.Errorf("inserting edge %d: %w", i, err)
		}
	}
	return nil
}

// Info returns the metadata recorded for the stored graph.
func (d *DB) Info() (IndexInfo, error) {
	rows, err := d.db.Query(`SELECT key, value FROM metadata`)
	if err != nil {
		return IndexInfo{}, fmt.Errorf("querying metadata: %w", err)
	}
	defer rows.Close()

	var info IndexInfo
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return IndexInfo{}, fmt.Errorf("scanning metadata: %w", err)
		}
		switch k {
		case MetaSource:
			info.Source = v
		case MetaIndexedAt:
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				info.IndexedAt = t
			}
		case MetaModularity:
			fmt.Sscanf(v, "%g", &info.Modularity)
		}
	}
	return info, rows.Err()
}

// Count returns the number of stored nodes and edges.
func (d *DB) Count() (nodes, edges int, err error) {
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM nodes`).Scan(&nodes); err != nil {
		return 0, 0, fmt.Errorf("counting nodes: %w", err)
	}
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM edges`).Scan(&edges); err != nil {
		return 0, 0, fmt.Errorf("counting edges: %w", err)
	}
	return nodes, edges, nil
}

// GetNode returns the node with the given ID, or nil if it is not stored.
func (d *DB) GetNode(id string) (*graph.Node, error) {
	row := d.db.QueryRow(`SELECT `+selectNodeFields+` FROM nodes WHERE id = ?`, id)
	n, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting node %s: %w", id, err)
	}
	return n, nil
}

// GetAllNodes returns every stored node in insertion order.
func (d *DB) GetAllNodes() ([]*graph.Node, error) {
	rows, err := d.db.Query(`SELECT ` + selectNodeFields + ` FROM nodes ORDER BY ordinal`)
	if err != nil {
		return nil, fmt.Errorf("querying nodes: %w", err)
	}
	defer rows.Close()

	return scanNodes(rows)
}

// TopNodes returns up to limit nodes by degree, highest first, ties in
// insertion order. A non-empty nodeType restricts the result to that type.
// limit <= 0 returns every match.
func (d *DB) TopNodes(limit int, nodeType string) ([]*graph.Node, error) {
	query := `SELECT ` + selectNodeFields + ` FROM nodes`
	var args []any
	if nodeType != "" {
		query += ` WHERE type = ?`
		args = append(args, nodeType)
	}
	query += ` ORDER BY degree DESC, ordinal`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying top nodes: %w", err)
	}
	defer rows.Close()

	return scanNodes(rows)
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanNode(row rowScanner) (*graph.Node, error) {
	var n graph.Node
	var community sql.NullInt64
	var attrs string
	if err := row.Scan(&n.ID, &n.Type, &n.Degree, &n.ConnectionCount, &community, &attrs); err != nil {
		return nil, err
	}
	if community.Valid {
		id := int(community.Int64)
		n.CommunityID = &id
	}
	if err := json.Unmarshal([]byte(attrs), &n.Attributes); err != nil {
		return nil, fmt.Errorf("parsing attributes for %s: %w", n.ID, err)
	}
	return &n, nil
}

func scanNodes(rows *sql.Rows) ([]*graph.Node, error) {
	var nodes []*graph.Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning node: %w", err)
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating nodes: %w", err)
	}
	return nodes, nil
}
