package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyID            = errors.New("empty task id")
	ErrDuplicateID        = errors.New("duplicate task id")
	ErrNegativeDuration   = errors.New("negative duration")
	ErrInvalidDuration    = errors.New("duration is not a finite number")
	ErrUnknownPredecessor = errors.New("unknown predecessor")
	ErrSelfDependency     = errors.New("task depends on itself")
	ErrCycle              = errors.New("dependency cycle")
)

// ValidationError reports malformed or inconsistent input records.
// Kind is one of the Err* sentinels of this package, Issue carries the detail.
type ValidationError struct {
	TaskID string
	Index  int // record position, -1 when the error concerns the whole graph
	Kind   error
	Issue  error
}

func (e *ValidationError) Error() string {
	var where string

	switch {
	case e.TaskID != "":
		where = fmt.Sprintf("task %q", e.TaskID)
	case e.Index >= 0:
		where = fmt.Sprintf("record %d", e.Index)
	default:
		where = "task graph"
	}

	if e.Issue == nil {
		return fmt.Sprintf("invalid %s: %v", where, e.Kind)
	}

	return fmt.Sprintf("invalid %s: %v: %v", where, e.Kind, e.Issue)
}

func (e *ValidationError) Unwrap() []error {
	if e.Issue == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Issue}
}

// CycleError is returned when no topological order covers every task.
type CycleError struct {
	Unsorted []string // tasks left with unresolved predecessors, in input order
	Cycle    []string // one concrete cycle, first task repeated at the end
}

func (e *CycleError) Error() string {
	if len(e.Cycle) == 0 {
		return fmt.Sprintf("dependency cycle among %d tasks: %s",
			len(e.Unsorted), strings.Join(e.Unsorted, ", "))
	}

	return fmt.Sprintf("dependency cycle detected: %s (%d tasks cannot be ordered)",
		strings.Join(e.Cycle, " -> "), len(e.Unsorted))
}

func (e *CycleError) Is(target error) bool {
	return target == ErrCycle
}
