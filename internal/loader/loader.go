// Package loader reads relation data from JSON in either the flat
// relation-list shape or the nodes+edges graph shape.
//
// Loading fails soft: every Load variant returns a non-nil, possibly empty
// Result alongside any error, and logs a diagnostic for the operator.
package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/matsen/kgviz/internal/logging"
	"github.com/matsen/kgviz/internal/record"
)

// Load failure classes.
var (
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrMalformedJSON     = errors.New("malformed JSON")
	ErrSchemaMismatch    = errors.New("schema mismatch")
)

// Shape identifies which input layout a document used.
type Shape string

const (
	ShapeNone  Shape = ""
	ShapeFlat  Shape = "flat"
	ShapeGraph Shape = "graph"
)

// Source names where input comes from: a stream when Reader is set,
// otherwise a filesystem path.
type Source struct {
	Name   string
	Path   string
	Reader io.Reader
}

// File returns a source reading the file at path.
func File(path string) Source {
	return Source{Name: path, Path: path}
}

// Stream returns a source reading r.
func Stream(name string, r io.Reader) Source {
	if name == "" {
		name = "stream"
	}
	return Source{Name: name, Reader: r}
}

// Result is the usable output of a load plus per-record skip diagnostics.
type Result struct {
	Source  string
	Shape   Shape
	Edges   []record.Record
	Nodes   *record.NodeSet
	Skipped []Skip
}

// IsEmpty reports whether the load produced neither edges nor nodes.
func (r *Result) IsEmpty() bool {
	return len(r.Edges) == 0 && r.Nodes.Len() == 0
}

func emptyResult(name string) *Result {
	return &Result{Source: name, Nodes: record.NewNodeSet()}
}

// Loader decodes relation data and reports diagnostics to its logger.
type Loader struct {
	logger *log.Logger
}

// New returns a loader. A nil logger discards diagnostics.
func New(logger *log.Logger) *Loader {
	return &Loader{logger: logging.OrDiscard(logger)}
}

// Load reads src.
func (l *Loader) Load(src Source) (*Result, error) {
	switch {
	case src.Reader != nil:
		return l.LoadReader(src.Name, src.Reader)
	case src.Path != "":
		return l.LoadFile(src.Path)
	default:
		return l.fail(src.Name, fmt.Errorf("%w: no data source provided", ErrSourceUnavailable))
	}
}

// LoadFile reads and decodes the file at path.
func (l *Loader) LoadFile(path string) (*Result, error) {
	if path == "" {
		return l.fail(path, fmt.Errorf("%w: no data source provided", ErrSourceUnavailable))
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l.fail(path, fmt.Errorf("%w: file not found: %s", ErrSourceUnavailable, path))
		}
		return l.fail(path, fmt.Errorf("%w: %v", ErrSourceUnavailable, err))
	}
	if info.IsDir() {
		return l.fail(path, fmt.Errorf("%w: path is not a file: %s", ErrSourceUnavailable, path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return l.fail(path, fmt.Errorf("%w: reading file: %v", ErrSourceUnavailable, err))
	}
	return l.LoadBytes(path, data)
}

// LoadReader reads r to the end and decodes it.
func (l *Loader) LoadReader(name string, r io.Reader) (*Result, error) {
	if r == nil {
		return l.fail(name, fmt.Errorf("%w: no data source provided", ErrSourceUnavailable))
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return l.fail(name, fmt.Errorf("%w: reading stream: %v", ErrSourceUnavailable, err))
	}
	return l.LoadBytes(name, data)
}

// LoadBytes decodes data, choosing the shape from the JSON root: an array is
// the flat shape, an object the graph shape.
func (l *Loader) LoadBytes(name string, data []byte) (*Result, error) {
	if !utf8.Valid(data) {
		return l.fail(name, fmt.Errorf("%w: content is not valid UTF-8", ErrSourceUnavailable))
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return l.fail(name, fmt.Errorf("%w: empty content", ErrSourceUnavailable))
	}

	var root json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		return l.fail(name, fmt.Errorf("%w: %v", ErrMalformedJSON, err))
	}

	var (
		res *Result
		err error
	)
	switch root[0] {
	case '[':
		res, err = decodeFlat(name, root)
	case '{':
		res, err = l.decodeGraph(name, root)
	default:
		err = fmt.Errorf("%w: JSON root must be an array of relations or an object with nodes and edges", ErrSchemaMismatch)
	}
	if err != nil {
		return l.fail(name, err)
	}

	l.logger.Debug("loaded data", "source", name, "shape", res.Shape, "nodes", res.Nodes.Len(), "edges", len(res.Edges), "skipped", len(res.Skipped))
	return res, nil
}

func (l *Loader) fail(name string, err error) (*Result, error) {
	l.logger.Error("loading data failed", "source", name, "err", err)
	return emptyResult(name), err
}

// decodeFlat reads a JSON array of relation objects.
func decodeFlat(name string, root json.RawMessage) (*Result, error) {
	var rows []json.RawMessage
	if err := json.Unmarshal(root, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}

	res := emptyResult(name)
	res.Shape = ShapeFlat
	res.Edges = make([]record.Record, 0, len(rows))

	for i, row := range rows {
		var r record.Record
		if err := json.Unmarshal(row, &r); err != nil {
			return nil, fmt.Errorf("%w: record %d is not a relation object: %v", ErrSchemaMismatch, i+1, err)
		}
		res.Edges = append(res.Edges, r)
	}

	return res, nil
}
