// Package loader turns task files into graph records.
//
// Two layouts are understood: CSV with a header row (COD, PRE, DUR or
// id, predecessors, duration) and JSON, either a bare array of task objects
// or an object holding them under "tasks".
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joshharrison/critpath/internal/graph"
)

// ParseError locates a malformed value in an input file.
type ParseError struct {
	Row   int // 1-based data row (CSV) or array index (JSON)
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("row %d: %v", e.Row, e.Err)
	}

	return fmt.Sprintf("row %d, field %s: %v", e.Row, e.Field, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// LoadFile reads records from path, choosing the parser by file extension.
func LoadFile(path string) ([]graph.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read task file: %w", err)
	}

	records, err := Parse(filepath.Ext(path), data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return records, nil
}

// Parse decodes data according to format, which is a file extension
// (".csv", ".json") or a bare format name ("csv", "json").
func Parse(format string, data []byte) ([]graph.Record, error) {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "csv":
		return ReadCSV(strings.NewReader(string(data)))
	case "json":
		return ReadJSON(data)
	default:
		return nil, fmt.Errorf("unsupported task file format %q (use .csv or .json)", format)
	}
}

// splitPredecessors splits a predecessor cell on commas, semicolons or whitespace.
func splitPredecessors(cell string) []string {
	fields := strings.FieldsFunc(cell, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) == 0 {
		return nil
	}

	return fields
}
