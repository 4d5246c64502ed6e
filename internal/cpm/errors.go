package cpm

import (
	"fmt"

	"github.com/joshharrison/critpath/internal/graph"
)

// CycleError is returned when the graph cannot be ordered topologically.
type CycleError = graph.CycleError

// EmptyGraphError is returned for a graph without tasks.
type EmptyGraphError struct{}

func (EmptyGraphError) Error() string {
	return "task graph has no tasks to schedule"
}

// InconsistentSlackError signals a broken solver invariant. A correct
// solver never returns it for a graph produced by graph.Build.
type InconsistentSlackError struct {
	TaskID string
	Reason string
}

func (e *InconsistentSlackError) Error() string {
	return fmt.Sprintf("inconsistent schedule for task %q: %s", e.TaskID, e.Reason)
}
