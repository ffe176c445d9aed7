package record

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestField_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantText string
		wantNull bool
	}{
		{name: "string", input: `"Alice"`, wantText: "Alice"},
		{name: "string keeps whitespace", input: `"  NodeA "`, wantText: "  NodeA "},
		{name: "integer", input: `42`, wantText: "42"},
		{name: "float", input: `1.5`, wantText: "1.5"},
		{name: "boolean", input: `true`, wantText: "true"},
		{name: "array", input: `[1, 2]`, wantText: "[1,2]"},
		{name: "null", input: `null`, wantNull: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f Field
			if err := json.Unmarshal([]byte(tt.input), &f); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if !f.Present {
				t.Error("expected Present to be true")
			}
			if f.Null != tt.wantNull {
				t.Errorf("Null = %v, want %v", f.Null, tt.wantNull)
			}
			if f.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", f.Text, tt.wantText)
			}
		})
	}
}

func TestRecord_UnmarshalJSON(t *testing.T) {
	var r Record
	input := `{"head":"Alice","head_type":null,"relation":"knows","tail":7,"Tail_Type":"x"}`
	if err := json.Unmarshal([]byte(input), &r); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if r.Head.Text != "Alice" || r.Head.Missing() {
		t.Errorf("Head = %+v, want present Alice", r.Head)
	}
	if !r.HeadType.Present || !r.HeadType.Null {
		t.Errorf("HeadType = %+v, want present null", r.HeadType)
	}
	if r.Tail.Text != "7" {
		t.Errorf("Tail = %q, want %q", r.Tail.Text, "7")
	}
	// Keys are matched exactly.
	if r.TailType.Present {
		t.Errorf("TailType should be absent, got %+v", r.TailType)
	}
}

func TestRecord_UnmarshalJSON_NotObject(t *testing.T) {
	var r Record
	if err := json.Unmarshal([]byte(`["a","b"]`), &r); err == nil {
		t.Error("expected error for non-object record")
	}
}

func TestRecord_MarshalJSON(t *testing.T) {
	r := Record{Head: Text("A"), Relation: Text("knows"), Tail: Text("B"), TailType: Field{Present: true, Null: true}}
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"head":"A","head_type":null,"relation":"knows","tail":"B","tail_type":null}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}

func TestValidate(t *testing.T) {
	full := New("A", "person", "knows", "B", "person")

	tests := []struct {
		name        string
		edges       []Record
		want        bool
		wantMissing []string
	}{
		{
			name:  "empty input is invalid",
			edges: nil,
			want:  false,
		},
		{
			name:  "all fields present",
			edges: []Record{full, full},
			want:  true,
		},
		{
			name: "null values still count as present",
			edges: []Record{{
				Head:     Text("A"),
				HeadType: Field{Present: true, Null: true},
				Relation: Text("knows"),
				Tail:     Text("B"),
				TailType: Field{Present: true, Null: true},
			}},
			want: true,
		},
		{
			name:        "one record missing tail",
			edges:       []Record{full, {Head: Text("A"), HeadType: Text("x"), Relation: Text("r"), TailType: Text("y")}},
			want:        false,
			wantMissing: []string{"tail"},
		},
		{
			name:        "missing fields reported in schema order",
			edges:       []Record{{TailType: Text("y"), Head: Text("A")}},
			want:        false,
			wantMissing: []string{"head_type", "relation", "tail"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Validate(tt.edges); got != tt.want {
				t.Errorf("Validate() = %v, want %v", got, tt.want)
			}
			got := MissingFields(tt.edges)
			if !reflect.DeepEqual(got, tt.wantMissing) {
				t.Errorf("MissingFields() = %v, want %v", got, tt.wantMissing)
			}
		})
	}
}

func TestClean(t *testing.T) {
	rows := []Record{
		New("A", "Person", "knows", "B", "Person"),
		{Head: Text("A"), HeadType: Text("Person"), Relation: Text("knows"), TailType: Text("Person")},
		{Head: Text("C"), Relation: Text("works_at"), Tail: Text("D"), TailType: Field{Present: true, Null: true}},
		New("A", "Person", "knows", "B", "Person"),
		{Head: Text("E"), HeadType: Text("x"), Relation: Field{Present: true, Null: true}, Tail: Text("F"), TailType: Text("y")},
	}

	got := Clean(rows)

	want := []Record{
		New("A", "Person", "knows", "B", "Person"),
		New("C", Unknown, "works_at", "D", Unknown),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Clean() =\n%+v\nwant\n%+v", got, want)
	}
}

func TestClean_DropsRowMissingTail(t *testing.T) {
	var rows []Record
	input := `[
		{"head":"A","head_type":"person","relation":"knows","tail":"B","tail_type":"person"},
		{"head":"B","head_type":"person","relation":"knows","tail_type":"person"},
		{"head":"C","head_type":"person","relation":"knows","tail":"A","tail_type":"person"}
	]`
	if err := json.Unmarshal([]byte(input), &rows); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	cleaned := Clean(rows)
	if len(cleaned) != len(rows)-1 {
		t.Errorf("got %d rows after cleaning, want %d", len(cleaned), len(rows)-1)
	}
}

func TestClean_AllRowsUnusable(t *testing.T) {
	rows := []Record{{HeadType: Text("x")}, {Tail: Text("B")}}
	if got := Clean(rows); len(got) != 0 {
		t.Errorf("expected empty result, got %d rows", len(got))
	}
}

func TestNormalize(t *testing.T) {
	rows := []Record{New("  NodeA ", " Person ", " Works_At ", "Acme", "ORGANIZATION")}

	got := Normalize(rows)

	if got[0].HeadType.Text != "person" {
		t.Errorf("HeadType = %q, want %q", got[0].HeadType.Text, "person")
	}
	if got[0].TailType.Text != "organization" {
		t.Errorf("TailType = %q, want %q", got[0].TailType.Text, "organization")
	}
	if got[0].Relation.Text != "works_at" {
		t.Errorf("Relation = %q, want %q", got[0].Relation.Text, "works_at")
	}
	if got[0].Head.Text != "  NodeA " {
		t.Errorf("Head = %q, want it unchanged", got[0].Head.Text)
	}
	if got[0].Tail.Text != "Acme" {
		t.Errorf("Tail = %q, want it unchanged", got[0].Tail.Text)
	}
	if rows[0].HeadType.Text != " Person " {
		t.Error("Normalize modified its input")
	}
}

func TestCleanNormalize_Idempotent(t *testing.T) {
	rows := []Record{
		New("A", " Person", "KNOWS ", "B", "person"),
		New("A", "person", "knows", "B", "person"),
		{Head: Text("C"), Relation: Text("Rel"), Tail: Text("D")},
		{Head: Text("E"), Relation: Text("Rel")},
	}

	cleaned := Clean(rows)
	if again := Clean(cleaned); !reflect.DeepEqual(again, cleaned) {
		t.Errorf("Clean not idempotent:\n%+v\n%+v", cleaned, again)
	}

	normalized := Normalize(cleaned)
	if again := Normalize(normalized); !reflect.DeepEqual(again, normalized) {
		t.Errorf("Normalize not idempotent:\n%+v\n%+v", normalized, again)
	}
}

func TestNodeSet(t *testing.T) {
	s := NewNodeSet()
	s.Put(NodeInfo{ID: "b", Type: "first"})
	s.Put(NodeInfo{ID: "a", Type: "x"})
	s.Put(NodeInfo{ID: "b", Type: "second"})

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}

	all := s.All()
	if all[0].ID != "b" || all[1].ID != "a" {
		t.Errorf("order = [%s %s], want [b a]", all[0].ID, all[1].ID)
	}
	if all[0].Type != "second" {
		t.Errorf("repeated ID should replace metadata, got type %q", all[0].Type)
	}
	if all[1].Attributes == nil {
		t.Error("Attributes should default to an empty slice")
	}

	var empty *NodeSet
	if empty.Len() != 0 || empty.Has("a") || empty.All() != nil {
		t.Error("nil NodeSet should behave as empty")
	}
}
