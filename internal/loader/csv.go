package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/joshharrison/critpath/internal/graph"
)

var (
	idColumns          = []string{"cod", "code", "id", "task"}
	predecessorColumns = []string{"pre", "pred", "predecessors", "depends_on"}
	durationColumns    = []string{"dur", "duration"}
)

// ReadCSV reads task records from CSV with a header row.
// The predecessor column is optional; empty cells mean no predecessors.
func ReadCSV(r io.Reader) ([]graph.Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}

	idCol := findColumn(header, idColumns)
	durCol := findColumn(header, durationColumns)
	preCol := findColumn(header, predecessorColumns)

	if idCol < 0 {
		return nil, fmt.Errorf("CSV header has no id column (one of %s)", strings.Join(idColumns, ", "))
	}
	if durCol < 0 {
		return nil, fmt.Errorf("CSV header has no duration column (one of %s)", strings.Join(durationColumns, ", "))
	}

	var records []graph.Record
	for row := 1; ; row++ {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ParseError{Row: row, Err: err}
		}

		if isBlank(fields) {
			continue
		}

		rec := graph.Record{ID: cell(fields, idCol)}

		durText := cell(fields, durCol)
		if durText == "" {
			return nil, &ParseError{Row: row, Field: header[durCol], Err: errors.New("missing duration")}
		}

		rec.Duration, err = strconv.ParseFloat(durText, 64)
		if err != nil {
			return nil, &ParseError{Row: row, Field: header[durCol], Err: err}
		}

		if preCol >= 0 {
			rec.Predecessors = splitPredecessors(cell(fields, preCol))
		}

		records = append(records, rec)
	}

	return records, nil
}

func findColumn(header []string, names []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		for _, name := range names {
			if h == name {
				return i
			}
		}
	}

	return -1
}

func cell(fields []string, col int) string {
	if col >= len(fields) {
		return ""
	}

	return strings.TrimSpace(fields[col])
}

func isBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}

	return true
}
