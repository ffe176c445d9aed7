// Package record defines relation records and the validate, clean and
// normalize stages they pass through before graph assembly.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Relation field names, in schema order.
const (
	FieldHead     = "head"
	FieldHeadType = "head_type"
	FieldRelation = "relation"
	FieldTail     = "tail"
	FieldTailType = "tail_type"
)

// FieldNames lists every relation field in schema order.
var FieldNames = []string{FieldHead, FieldHeadType, FieldRelation, FieldTail, FieldTailType}

// Field is one relation value as read from JSON. Strings are kept verbatim;
// numbers, booleans and nested values keep their JSON text.
type Field struct {
	Text    string
	Present bool // key appeared in the input object
	Null    bool // key appeared with a JSON null
}

// Text returns a present, non-null field holding s.
func Text(s string) Field {
	return Field{Text: s, Present: true}
}

// Missing reports whether the field carries no usable value.
func (f Field) Missing() bool {
	return !f.Present || f.Null
}

func (f *Field) UnmarshalJSON(data []byte) error {
	f.Present = true
	data = bytes.TrimSpace(data)

	if string(data) == "null" {
		f.Text = ""
		f.Null = true
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f.Text = s
		f.Null = false
		return nil
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return fmt.Errorf("cannot unmarshal %s into Field", string(data))
	}
	f.Text = buf.String()
	f.Null = false
	return nil
}

func (f Field) MarshalJSON() ([]byte, error) {
	if f.Missing() {
		return []byte("null"), nil
	}
	return json.Marshal(f.Text)
}

func (f Field) String() string {
	return f.Text
}

// Record is a single head -[relation]-> tail row.
type Record struct {
	Head     Field `json:"head" validate:"required"`
	HeadType Field `json:"head_type" validate:"required"`
	Relation Field `json:"relation" validate:"required"`
	Tail     Field `json:"tail" validate:"required"`
	TailType Field `json:"tail_type" validate:"required"`
}

// New returns a record with every field present.
func New(head, headType, relation, tail, tailType string) Record {
	return Record{
		Head:     Text(head),
		HeadType: Text(headType),
		Relation: Text(relation),
		Tail:     Text(tail),
		TailType: Text(tailType),
	}
}

// UnmarshalJSON reads a flat relation object. Keys are matched exactly;
// unknown keys are ignored.
func (r *Record) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	*r = Record{}
	for name, dst := range r.fields() {
		raw, ok := obj[name]
		if !ok {
			continue
		}
		if err := dst.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
	}
	return nil
}

func (r *Record) fields() map[string]*Field {
	return map[string]*Field{
		FieldHead:     &r.Head,
		FieldHeadType: &r.HeadType,
		FieldRelation: &r.Relation,
		FieldTail:     &r.Tail,
		FieldTailType: &r.TailType,
	}
}

// Key returns the identity of the record: all five values.
func (r Record) Key() Key {
	return Key{
		Head:     r.Head.Text,
		HeadType: r.HeadType.Text,
		Relation: r.Relation.Text,
		Tail:     r.Tail.Text,
		TailType: r.TailType.Text,
	}
}

// Key is the comparable form of a cleaned record.
type Key struct {
	Head     string
	HeadType string
	Relation string
	Tail     string
	TailType string
}
