package loader

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matsen/kgviz/internal/logging"
)

const threeNodeGraph = `{
	"nodes": [{"id": "A"}, {"id": "B"}, {"id": "C"}],
	"edges": [
		{"from": "A", "to": "B", "label": "knows"},
		{"from": "B", "to": "C", "label": "knows"}
	]
}`

func TestLoadBytes_GraphShape(t *testing.T) {
	res, err := New(nil).LoadBytes("test", []byte(threeNodeGraph))
	if err != nil {
		t.Fatalf("LoadBytes failed: %v", err)
	}

	if res.Shape != ShapeGraph {
		t.Errorf("Shape = %q, want %q", res.Shape, ShapeGraph)
	}
	if res.Nodes.Len() != 3 {
		t.Errorf("got %d nodes, want 3", res.Nodes.Len())
	}
	if len(res.Edges) != 2 {
		t.Fatalf("got %d edges, want 2", len(res.Edges))
	}

	e := res.Edges[0]
	if e.Head.Text != "A" || e.Tail.Text != "B" || e.Relation.Text != "knows" {
		t.Errorf("first edge = %s -[%s]-> %s, want A -[knows]-> B", e.Head.Text, e.Relation.Text, e.Tail.Text)
	}
	if e.HeadType.Text != "A" {
		t.Errorf("HeadType = %q, want node ID fallback %q", e.HeadType.Text, "A")
	}
}

func TestLoadBytes_NodeTypeFromSourceFile(t *testing.T) {
	input := `{
		"nodes": [
			{"id": "alice", "source_file": "person.alice.json", "attributes": ["age: 30", {"k": 1}]},
			{"id": "acme", "source_file": "organization"},
			{"id": "misc", "source_file": null},
			{"id": "blank", "source_file": ""}
		],
		"edges": []
	}`

	res, err := New(nil).LoadBytes("test", []byte(input))
	if err != nil {
		t.Fatalf("LoadBytes failed: %v", err)
	}

	tests := []struct {
		id       string
		wantType string
	}{
		{"alice", "person"},
		{"acme", "organization"},
		{"misc", "misc"},
		{"blank", "blank"},
	}
	for _, tt := range tests {
		n, ok := res.Nodes.Get(tt.id)
		if !ok {
			t.Errorf("node %q not loaded", tt.id)
			continue
		}
		if n.Type != tt.wantType {
			t.Errorf("node %q type = %q, want %q", tt.id, n.Type, tt.wantType)
		}
	}

	alice, _ := res.Nodes.Get("alice")
	if len(alice.Attributes) != 2 {
		t.Errorf("got %d attributes, want 2", len(alice.Attributes))
	}
	acme, _ := res.Nodes.Get("acme")
	if acme.Attributes == nil || len(acme.Attributes) != 0 {
		t.Errorf("missing attributes should default to empty, got %v", acme.Attributes)
	}
}

func TestLoadBytes_NodesOnly(t *testing.T) {
	res, err := New(nil).LoadBytes("test", []byte(`{"nodes":[{"id":"A"}],"edges":[]}`))
	if err != nil {
		t.Fatalf("LoadBytes failed: %v", err)
	}
	if res.Nodes.Len() != 1 || len(res.Edges) != 0 {
		t.Errorf("got %d nodes, %d edges; want 1, 0", res.Nodes.Len(), len(res.Edges))
	}
	if res.IsEmpty() {
		t.Error("nodes-only result should not be empty")
	}
}

func TestLoadBytes_SkipsDanglingEdges(t *testing.T) {
	input := `{
		"nodes": [{"id": "A"}, {"id": "B"}, {"id": "C"}],
		"edges": [
			{"from": "A", "to": "B", "label": "knows"},
			{"from": "C", "to": "D", "label": "knows"},
			{"from": "D", "to": "A", "label": "knows"},
			{"from": "D", "to": "E", "label": "knows"},
			{"from": "B", "to": "C", "label": "knows"}
		]
	}`

	var logs bytes.Buffer
	logger, err := logging.New(&logs, "warn")
	if err != nil {
		t.Fatal(err)
	}

	res, err := New(logger).LoadBytes("test", []byte(input))
	if err != nil {
		t.Fatalf("LoadBytes failed: %v", err)
	}

	if len(res.Edges) != 2 {
		t.Errorf("got %d edges, want 2", len(res.Edges))
	}
	for _, e := range res.Edges {
		if !res.Nodes.Has(e.Head.Text) || !res.Nodes.Has(e.Tail.Text) {
			t.Errorf("edge %s -> %s references an unknown node", e.Head.Text, e.Tail.Text)
		}
	}

	wantReasons := []string{"missing_target", "missing_source", "missing_both"}
	if len(res.Skipped) != len(wantReasons) {
		t.Fatalf("got %d skips, want %d", len(res.Skipped), len(wantReasons))
	}
	for i, want := range wantReasons {
		if res.Skipped[i].Reason != want {
			t.Errorf("skip %d reason = %q, want %q", i, res.Skipped[i].Reason, want)
		}
	}
	if res.Skipped[0].Index != 2 {
		t.Errorf("first skip index = %d, want 2", res.Skipped[0].Index)
	}

	if got := strings.Count(logs.String(), "skipping edge"); got != 3 {
		t.Errorf("logged %d skip diagnostics, want 3", got)
	}
}

func TestLoadBytes_FlatShape(t *testing.T) {
	input := `[
		{"head": "Alice", "head_type": "Person", "relation": "works_at", "tail": "Acme", "tail_type": "Company"},
		{"head": "Bob", "head_type": "Person", "relation": "knows", "tail_type": "Person"}
	]`

	res, err := New(nil).LoadBytes("test", []byte(input))
	if err != nil {
		t.Fatalf("LoadBytes failed: %v", err)
	}
	if res.Shape != ShapeFlat {
		t.Errorf("Shape = %q, want %q", res.Shape, ShapeFlat)
	}
	if len(res.Edges) != 2 {
		t.Fatalf("got %d records, want 2", len(res.Edges))
	}
	if res.Nodes.Len() != 0 {
		t.Errorf("flat shape should produce no node metadata, got %d", res.Nodes.Len())
	}
	if res.Edges[1].Tail.Present {
		t.Error("second record should have no tail")
	}
}

func TestLoadBytes_Failures(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		wantErr error
	}{
		{name: "empty content", input: []byte("   "), wantErr: ErrSourceUnavailable},
		{name: "invalid UTF-8", input: []byte{'[', 0xff, 0xfe, ']'}, wantErr: ErrSourceUnavailable},
		{name: "syntax error", input: []byte(`{"nodes": [`), wantErr: ErrMalformedJSON},
		{name: "trailing garbage", input: []byte(`[] []`), wantErr: ErrMalformedJSON},
		{name: "scalar root", input: []byte(`"hello"`), wantErr: ErrSchemaMismatch},
		{name: "missing edges array", input: []byte(`{"nodes": []}`), wantErr: ErrSchemaMismatch},
		{name: "missing nodes array", input: []byte(`{"edges": []}`), wantErr: ErrSchemaMismatch},
		{name: "nodes not an array", input: []byte(`{"nodes": {}, "edges": []}`), wantErr: ErrSchemaMismatch},
		{name: "node without id", input: []byte(`{"nodes": [{"source_file": "a.json"}], "edges": []}`), wantErr: ErrSchemaMismatch},
		{name: "edge without label", input: []byte(`{"nodes": [{"id": "A"}, {"id": "B"}], "edges": [{"from": "A", "to": "B"}]}`), wantErr: ErrSchemaMismatch},
		{name: "edge without from", input: []byte(`{"nodes": [{"id": "A"}], "edges": [{"to": "A", "label": "x"}]}`), wantErr: ErrSchemaMismatch},
		{name: "flat row not an object", input: []byte(`[{"head": "A"}, "oops"]`), wantErr: ErrSchemaMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := New(nil).LoadBytes("test", tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if res == nil {
				t.Fatal("result should never be nil")
			}
			if !res.IsEmpty() || len(res.Skipped) != 0 {
				t.Errorf("failed load should be empty, got %d edges, %d nodes", len(res.Edges), res.Nodes.Len())
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "graph.json")
	if err := os.WriteFile(path, []byte(threeNodeGraph), 0644); err != nil {
		t.Fatal(err)
	}

	res, err := New(nil).Load(File(path))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if res.Source != path {
		t.Errorf("Source = %q, want %q", res.Source, path)
	}
	if len(res.Edges) != 2 {
		t.Errorf("got %d edges, want 2", len(res.Edges))
	}
}

func TestLoadFile_Unavailable(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		src  Source
	}{
		{name: "missing file", src: File(filepath.Join(tmpDir, "nope.json"))},
		{name: "directory", src: File(tmpDir)},
		{name: "no source", src: Source{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := New(nil).Load(tt.src)
			if !errors.Is(err, ErrSourceUnavailable) {
				t.Errorf("error = %v, want ErrSourceUnavailable", err)
			}
			if res == nil || !res.IsEmpty() {
				t.Error("expected empty, non-nil result")
			}
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestLoadReader(t *testing.T) {
	res, err := New(nil).Load(Stream("upload.json", strings.NewReader(threeNodeGraph)))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if res.Source != "upload.json" || res.Nodes.Len() != 3 {
		t.Errorf("got source %q with %d nodes", res.Source, res.Nodes.Len())
	}

	_, err = New(nil).Load(Stream("", failingReader{}))
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("error = %v, want ErrSourceUnavailable", err)
	}
}
