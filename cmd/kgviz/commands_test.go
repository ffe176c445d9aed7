package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matsen/kgviz/internal/graph"
	"github.com/matsen/kgviz/internal/loader"
	"github.com/matsen/kgviz/internal/pipeline"
	"github.com/matsen/kgviz/internal/storage"
)

const peopleJSON = `[
	{"head": "Ada", "head_type": "Person", "relation": "worked_with", "tail": "Babbage", "tail_type": "Person"},
	{"head": "Babbage", "head_type": "Person", "relation": "designed", "tail": "Engine", "tail_type": "Technology"},
	{"head": "Ada", "head_type": "Person", "relation": "wrote_about", "tail": "Engine", "tail_type": "Technology"},
	{"head": "Ada", "head_type": "Person", "relation": "born_in", "tail": "London", "tail_type": "City"}
]`

func writeInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "people.json")
	if err := os.WriteFile(path, []byte(peopleJSON), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runPeople(t *testing.T) *pipeline.Result {
	t.Helper()
	res, err := pipeline.Run(loader.File(writeInput(t)), pipeline.Options{})
	if err != nil {
		t.Fatalf("pipeline.Run failed: %v", err)
	}
	return res
}

func TestBuildInspectResponse(t *testing.T) {
	resp := buildInspectResponse(runPeople(t), 2)

	if len(resp.TopNodes) != 2 {
		t.Fatalf("got %d top nodes, want 2", len(resp.TopNodes))
	}
	if resp.TopNodes[0].ID != "Ada" || resp.TopNodes[0].Degree != 3 {
		t.Errorf("top node = %+v, want Ada with degree 3", resp.TopNodes[0])
	}
	if resp.Skipped == nil {
		t.Error("Skipped should be an empty list, not null")
	}

	total := 0
	for _, c := range resp.Communities {
		total += c.Size
	}
	if total != resp.Stats.DisplayedNodes {
		t.Errorf("community sizes sum to %d, want %d", total, resp.Stats.DisplayedNodes)
	}
}

func TestWriteExport_JSONL(t *testing.T) {
	res := runPeople(t)
	exportFormat, exportOutput = FormatJSONL, filepath.Join(t.TempDir(), "out.jsonl")
	t.Cleanup(func() { exportFormat, exportOutput = FormatJSONL, "" })

	count, err := writeExport(res)
	if err != nil {
		t.Fatalf("writeExport failed: %v", err)
	}
	if count != 4 {
		t.Errorf("count = %d, want 4", count)
	}

	data, err := os.ReadFile(exportOutput)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"head_type":"person"`) {
		t.Errorf("exported records are not normalized:\n%s", data)
	}
}

func TestWriteExport_JSON(t *testing.T) {
	res := runPeople(t)
	exportFormat, exportOutput = FormatJSON, filepath.Join(t.TempDir(), "graph.json")
	t.Cleanup(func() { exportFormat, exportOutput = FormatJSONL, "" })

	count, err := writeExport(res)
	if err != nil {
		t.Fatalf("writeExport failed: %v", err)
	}
	if count != 4 {
		t.Errorf("count = %d, want 4 nodes", count)
	}

	data, err := os.ReadFile(exportOutput)
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Nodes []graph.Node `json:"nodes"`
		Edges []graph.Edge `json:"edges"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("export is not graph JSON: %v", err)
	}
	if len(decoded.Nodes) != 4 || len(decoded.Edges) != 4 {
		t.Errorf("got %d nodes, %d edges", len(decoded.Nodes), len(decoded.Edges))
	}
}

// indexPeople stores the people graph and returns the open database.
func indexPeople(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.OpenDB(filepath.Join(t.TempDir(), "kg.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.ReplaceGraph(runPeople(t).Graph, storage.IndexInfo{Source: "people.json"}); err != nil {
		t.Fatal(err)
	}
	return db
}

func TestBuildNeighborsResponse(t *testing.T) {
	db := indexPeople(t)

	tests := []struct {
		id            string
		degree        int
		outgoing      int
		incoming      int
		wantNeighbors []string
	}{
		{id: "Ada", degree: 3, outgoing: 3, incoming: 0, wantNeighbors: []string{"Babbage", "Engine", "London"}},
		{id: "Engine", degree: 2, outgoing: 0, incoming: 2, wantNeighbors: []string{"Babbage", "Ada"}},
		{id: "Babbage", degree: 2, outgoing: 1, incoming: 1, wantNeighbors: []string{"Ada", "Engine"}},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			resp, err := buildNeighborsResponse(db, tt.id)
			if err != nil {
				t.Fatalf("buildNeighborsResponse failed: %v", err)
			}
			if resp.Node.ID != tt.id || resp.Node.Degree != tt.degree {
				t.Errorf("node = %+v, want %s with degree %d", resp.Node, tt.id, tt.degree)
			}
			if len(resp.Outgoing) != tt.outgoing || len(resp.Incoming) != tt.incoming {
				t.Errorf("got %d outgoing, %d incoming; want %d, %d",
					len(resp.Outgoing), len(resp.Incoming), tt.outgoing, tt.incoming)
			}
			if !reflect.DeepEqual(resp.Neighbors, tt.wantNeighbors) {
				t.Errorf("neighbors = %v, want %v", resp.Neighbors, tt.wantNeighbors)
			}
		})
	}
}

func TestBuildNeighborsResponse_UnknownNode(t *testing.T) {
	_, err := buildNeighborsResponse(indexPeople(t), "Nobody")
	if !errors.Is(err, errNodeNotFound) {
		t.Fatalf("error = %v, want errNodeNotFound", err)
	}
	if exitCodeFor(err) != ExitDataError {
		t.Errorf("exit code = %d, want %d", exitCodeFor(err), ExitDataError)
	}
}

func TestBuildEdgesResponse(t *testing.T) {
	db := indexPeople(t)

	resp, err := buildEdgesResponse(db, "designed")
	if err != nil {
		t.Fatalf("buildEdgesResponse failed: %v", err)
	}
	want := []graph.Edge{{Source: "Babbage", Target: "Engine", Relation: "designed"}}
	if resp.Count != 1 || !reflect.DeepEqual(resp.Edges, want) {
		t.Errorf("got %+v, want %v", resp, want)
	}

	none, err := buildEdgesResponse(db, "invented")
	if err != nil {
		t.Fatal(err)
	}
	if none.Count != 0 || none.Edges == nil {
		t.Errorf("unmatched relation = %+v, want an empty list", none)
	}
}

func TestBuildTopResponse(t *testing.T) {
	resp, err := buildTopResponse(indexPeople(t), 1, "")
	if err != nil {
		t.Fatalf("buildTopResponse failed: %v", err)
	}
	if resp.Source != "people.json" {
		t.Errorf("source = %q", resp.Source)
	}
	if resp.TotalNodes != 4 || resp.TotalEdges != 4 {
		t.Errorf("totals = %d nodes, %d edges; want 4, 4", resp.TotalNodes, resp.TotalEdges)
	}
	if len(resp.Nodes) != 1 || resp.Nodes[0].ID != "Ada" {
		t.Errorf("nodes = %+v, want only Ada", resp.Nodes)
	}
}

func TestLoadIndexedGraph(t *testing.T) {
	res := runPeople(t)
	dbPath := filepath.Join(t.TempDir(), "kg.db")

	db, err := storage.OpenDB(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.ReplaceGraph(res.Graph, storage.IndexInfo{Source: "people.json"}); err != nil {
		t.Fatal(err)
	}
	db.Close()

	g, err := loadIndexedGraph(dbPath, 0)
	if err != nil {
		t.Fatalf("loadIndexedGraph failed: %v", err)
	}
	if g.NodeCount() != 4 || g.EdgeCount() != 4 {
		t.Errorf("got %d nodes, %d edges", g.NodeCount(), g.EdgeCount())
	}

	limited, err := loadIndexedGraph(dbPath, 2)
	if err != nil {
		t.Fatal(err)
	}
	if limited.NodeCount() != 2 {
		t.Errorf("limited graph has %d nodes, want 2", limited.NodeCount())
	}
}

func TestLoadIndexedGraph_Empty(t *testing.T) {
	_, err := loadIndexedGraph(filepath.Join(t.TempDir(), "fresh.db"), 0)
	if exitCodeFor(err) != ExitDataError {
		t.Errorf("error = %v, want a data error", err)
	}
}

func TestRenderCommand_WritesFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("KGVIZ_CONFIG", "")

	out := filepath.Join(t.TempDir(), "graph.html")
	rootCmd.SetArgs([]string{"render", writeInput(t), "-o", out, "--solver", "forceAtlas2Based", "--log-level", "error"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		renderOutput, renderSolver = "", ""
		renderCmd.Flags().Lookup("solver").Changed = false
		renderCmd.Flags().Lookup("output").Changed = false
		logLevel = ""
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("render failed: %v", err)
	}

	page, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(page), `"solver":"forceAtlas2Based"`) {
		t.Error("page should use the requested solver")
	}
	if !strings.Contains(string(page), "<title>people.json</title>") {
		t.Error("page title should default to the input file name")
	}
}
