// Package storage persists assembled graphs in SQLite and processed records
// as JSONL.
package storage

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/matsen/kgviz/internal/record"
)

// WriteRecords writes records to a JSONL file, replacing existing content.
func WriteRecords(path string, records []record.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating records file: %w", err)
	}

	if err := EncodeRecords(f, records); err != nil {
		return errors.Join(err, f.Close())
	}
	return f.Close()
}

// EncodeRecords writes records to w, one JSON object per line.
func EncodeRecords(w io.Writer, records []record.Record) error {
	bw := bufio.NewWriter(w)
	for i, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encoding record %d: %w", i, err)
		}

		if _, err := bw.Write(data); err != nil {
			return fmt.Errorf("writing record %d: %w", i, err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing newline: %w", err)
		}
	}
	return bw.Flush()
}
