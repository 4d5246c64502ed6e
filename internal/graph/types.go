package graph

// Record is one raw task row as produced by an input loader.
type Record struct {
	ID           string   `json:"id" valid:"required,taskid"`
	Duration     float64  `json:"duration" valid:"finite,nonnegative"`
	Predecessors []string `json:"predecessors,omitempty" valid:"-"`
}

// Task is a validated, schedulable unit of work.
type Task struct {
	ID           string
	Duration     float64
	Predecessors []string // tasks that must finish before this one starts
	Successors   []string // derived from the predecessors of other tasks
}

// TaskGraph is a directed acyclic graph of tasks. It is only produced by
// Build and its structure is never modified afterwards.
type TaskGraph struct {
	tasks  map[string]*Task
	order  []string            // input order
	adj    map[string][]string // task -> tasks that depend on it
	revAdj map[string][]string // task -> tasks it depends on
	roots  []string            // tasks with no predecessors
	leaves []string            // tasks with no successors
}
