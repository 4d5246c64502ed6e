package loader

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/joshharrison/critpath/internal/graph"
)

// ReadJSON reads task records from a JSON array of
// {"id", "duration", "predecessors"} objects, optionally wrapped as {"tasks": [...]}.
// Ids may be strings or integers; predecessors may be an array or a comma separated string.
func ReadJSON(data []byte) ([]graph.Record, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid JSON document")
	}

	tasks := gjson.ParseBytes(data)
	if tasks.IsObject() {
		tasks = tasks.Get("tasks")
		if !tasks.Exists() {
			return nil, errors.New(`JSON object has no "tasks" array`)
		}
	}

	if !tasks.IsArray() {
		return nil, errors.New("expected a JSON array of tasks")
	}

	items := tasks.Array()
	records := make([]graph.Record, 0, len(items))

	for i, item := range items {
		rec, err := recordFromJSON(i, item)
		if err != nil {
			return nil, err
		}

		records = append(records, rec)
	}

	return records, nil
}

func recordFromJSON(index int, item gjson.Result) (graph.Record, error) {
	var rec graph.Record

	if !item.IsObject() {
		return rec, &ParseError{Row: index, Err: errors.New("task must be a JSON object")}
	}

	id, err := idFromJSON(item.Get("id"))
	if err != nil {
		return rec, &ParseError{Row: index, Field: "id", Err: err}
	}
	rec.ID = id

	duration := item.Get("duration")
	if duration.Type != gjson.Number {
		return rec, &ParseError{Row: index, Field: "duration", Err: fmt.Errorf("expected a number, got %s", describe(duration))}
	}
	rec.Duration = duration.Float()

	preds := item.Get("predecessors")
	switch {
	case !preds.Exists() || preds.Type == gjson.Null:
	case preds.IsArray():
		for _, p := range preds.Array() {
			predID, err := idFromJSON(p)
			if err != nil {
				return rec, &ParseError{Row: index, Field: "predecessors", Err: err}
			}
			rec.Predecessors = append(rec.Predecessors, predID)
		}
	case preds.Type == gjson.String:
		rec.Predecessors = splitPredecessors(preds.Str)
	default:
		return rec, &ParseError{Row: index, Field: "predecessors", Err: fmt.Errorf("expected an array or string, got %s", describe(preds))}
	}

	return rec, nil
}

func idFromJSON(v gjson.Result) (string, error) {
	switch v.Type {
	case gjson.String:
		return v.Str, nil
	case gjson.Number:
		return v.Raw, nil
	default:
		return "", fmt.Errorf("expected a string or number id, got %s", describe(v))
	}
}

func describe(v gjson.Result) string {
	if !v.Exists() {
		return "nothing"
	}
	if v.IsArray() {
		return "array"
	}
	if v.IsObject() {
		return "object"
	}

	return v.Type.String()
}
