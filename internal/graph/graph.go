package graph

import (
	"fmt"
	"math"
	"sort"
	"strings"

	goerrors "github.com/TudorHulban/go-errors"
	"github.com/asaskevich/govalidator"
)

// Build validates raw records and assembles the task graph.
// Nothing is returned alongside an error: the graph is either complete or absent.
func Build(records []Record) (*TaskGraph, error) {
	g := &TaskGraph{
		tasks:  make(map[string]*Task, len(records)),
		order:  make([]string, 0, len(records)),
		adj:    make(map[string][]string),
		revAdj: make(map[string][]string),
	}

	firstSeen := make(map[string]int, len(records))

	// Index all tasks
	for i := range records {
		rec := &records[i]

		if err := validateRecord(i, rec); err != nil {
			return nil, err
		}

		id := strings.TrimSpace(rec.ID)
		if prev, exists := firstSeen[id]; exists {
			return nil, &ValidationError{
				TaskID: id,
				Index:  i,
				Kind:   ErrDuplicateID,
				Issue: goerrors.ErrInvalidInput{
					Caller:    "Build",
					InputName: "ID",
					Issue:     fmt.Errorf("first declared at record %d", prev),
				},
			}
		}
		firstSeen[id] = i

		g.tasks[id] = &Task{
			ID:       id,
			Duration: rec.Duration,
		}
		g.order = append(g.order, id)
	}

	// Resolve predecessor references now that every id is known.
	edgeSet := make(map[[2]string]bool)
	addEdge := func(from, to string) {
		key := [2]string{from, to}
		if edgeSet[key] {
			return
		}
		edgeSet[key] = true
		g.adj[from] = append(g.adj[from], to)
		g.revAdj[to] = append(g.revAdj[to], from)
	}

	for i := range records {
		id := strings.TrimSpace(records[i].ID)

		for _, raw := range records[i].Predecessors {
			pred := strings.TrimSpace(raw)
			if pred == "" {
				continue
			}

			if pred == id {
				return nil, &ValidationError{
					TaskID: id,
					Index:  i,
					Kind:   ErrSelfDependency,
				}
			}

			if _, ok := g.tasks[pred]; !ok {
				return nil, &ValidationError{
					TaskID: id,
					Index:  i,
					Kind:   ErrUnknownPredecessor,
					Issue: goerrors.ErrInvalidInput{
						Caller:    "Build",
						InputName: "Predecessors",
						Issue:     fmt.Errorf("%q is not a task id", pred),
					},
				}
			}

			addEdge(pred, id)
		}
	}

	// Sort adjacency lists for deterministic ordering
	for k := range g.adj {
		sort.Strings(g.adj[k])
	}
	for k := range g.revAdj {
		sort.Strings(g.revAdj[k])
	}

	for _, id := range g.order {
		task := g.tasks[id]
		task.Predecessors = g.revAdj[id]
		task.Successors = g.adj[id]

		if len(g.revAdj[id]) == 0 {
			g.roots = append(g.roots, id)
		}
		if len(g.adj[id]) == 0 {
			g.leaves = append(g.leaves, id)
		}
	}

	if _, err := g.TopoSort(); err != nil {
		return nil, &ValidationError{
			Index: -1,
			Kind:  ErrCycle,
			Issue: err,
		}
	}

	return g, nil
}

func init() {
	govalidator.TagMap["taskid"] = govalidator.Validator(func(str string) bool {
		return strings.TrimSpace(str) != ""
	})

	govalidator.CustomTypeTagMap.Set("finite", func(i interface{}, _ interface{}) bool {
		d, ok := i.(float64)
		return ok && !math.IsNaN(d) && !math.IsInf(d, 0)
	})

	govalidator.CustomTypeTagMap.Set("nonnegative", func(i interface{}, _ interface{}) bool {
		d, ok := i.(float64)
		return ok && !(d < 0)
	})
}

// validatorKinds maps the struct tag validators on Record to error kinds.
var validatorKinds = map[string]error{
	"required":    ErrEmptyID,
	"taskid":      ErrEmptyID,
	"finite":      ErrInvalidDuration,
	"nonnegative": ErrNegativeDuration,
}

func validateRecord(index int, rec *Record) error {
	_, errValidation := govalidator.ValidateStruct(rec)
	if errValidation == nil {
		return nil
	}

	failure, ok := firstFailure(errValidation)
	if !ok {
		return &ValidationError{
			TaskID: strings.TrimSpace(rec.ID),
			Index:  index,
			Kind:   ErrInvalidDuration,
			Issue: goerrors.ErrValidation{
				Caller: "Build",
				Issue:  errValidation,
			},
		}
	}

	kind, known := validatorKinds[failure.Validator]
	if !known {
		kind = ErrInvalidDuration
	}

	result := ValidationError{
		Index: index,
		Kind:  kind,
	}
	if kind != ErrEmptyID {
		result.TaskID = strings.TrimSpace(rec.ID)
	}

	switch kind {
	case ErrEmptyID:
		result.Issue = goerrors.ErrNilInput{
			InputName: "ID",
		}
	case ErrNegativeDuration:
		result.Issue = goerrors.ErrNegativeInput{
			InputName: "Duration",
		}
	default:
		result.Issue = goerrors.ErrValidation{
			Caller: "Build",
			Issue:  failure,
		}
	}

	return &result
}

// firstFailure returns the first field error of a govalidator result,
// which may nest Errors per field.
func firstFailure(err error) (govalidator.Error, bool) {
	switch e := err.(type) {
	case govalidator.Error:
		return e, true

	case govalidator.Errors:
		for _, inner := range e {
			if failure, ok := firstFailure(inner); ok {
				return failure, true
			}
		}
	}

	return govalidator.Error{}, false
}

// TopoSort orders tasks with Kahn's algorithm so that every predecessor comes
// before its successors. Ties are broken by input order.
// Failing to place every task means the graph has a cycle.
func (g *TaskGraph) TopoSort() ([]string, error) {
	position := make(map[string]int, len(g.order))
	inDegree := make(map[string]int, len(g.order))

	for i, id := range g.order {
		position[id] = i
		inDegree[id] = len(g.revAdj[id])
	}

	byPosition := func(ids []string) {
		sort.Slice(ids, func(a, b int) bool {
			return position[ids[a]] < position[ids[b]]
		})
	}

	var queue []string
	for _, id := range g.order {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	order := make([]string, 0, len(g.order))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)

		var newReady []string
		for _, succ := range g.adj[node] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				newReady = append(newReady, succ)
			}
		}
		byPosition(newReady)
		queue = append(queue, newReady...)
	}

	if len(order) != len(g.order) {
		var unsorted []string
		for _, id := range g.order {
			if inDegree[id] > 0 {
				unsorted = append(unsorted, id)
			}
		}

		return nil, &CycleError{
			Unsorted: unsorted,
			Cycle:    g.DetectCycle(),
		}
	}

	return order, nil
}

// DetectCycle returns the cycle path if one exists, or nil if the graph is acyclic.
// Uses DFS with coloring: white (unvisited), gray (in progress), black (done).
func (g *TaskGraph) DetectCycle() []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[string]int)
	parent := make(map[string]string)

	var dfs func(node string) []string
	dfs = func(node string) []string {
		color[node] = gray
		for _, next := range g.adj[node] {
			if color[next] == gray {
				cycle := []string{next, node}
				cur := node
				for cur != next {
					cur = parent[cur]
					cycle = append(cycle, cur)
				}
				for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}
				return cycle
			}
			if color[next] == white {
				parent[next] = node
				if cycle := dfs(next); cycle != nil {
					return cycle
				}
			}
		}
		color[node] = black
		return nil
	}

	for _, id := range g.order {
		if color[id] == white {
			if cycle := dfs(id); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// TaskCount returns the number of tasks in the graph.
func (g *TaskGraph) TaskCount() int {
	return len(g.tasks)
}

// Task returns a copy of the task with the given id.
func (g *TaskGraph) Task(id string) (Task, bool) {
	t, ok := g.tasks[id]
	if !ok {
		return Task{}, false
	}

	return Task{
		ID:           t.ID,
		Duration:     t.Duration,
		Predecessors: cloneStrings(t.Predecessors),
		Successors:   cloneStrings(t.Successors),
	}, true
}

// Duration returns the duration of a task, zero for unknown ids.
func (g *TaskGraph) Duration(id string) float64 {
	if t, ok := g.tasks[id]; ok {
		return t.Duration
	}

	return 0
}

// IDs returns task ids in input order.
func (g *TaskGraph) IDs() []string {
	return cloneStrings(g.order)
}

// Successors returns the ids of tasks that directly depend on id, sorted.
func (g *TaskGraph) Successors(id string) []string {
	return cloneStrings(g.adj[id])
}

// Predecessors returns the ids of tasks id directly depends on, sorted.
func (g *TaskGraph) Predecessors(id string) []string {
	return cloneStrings(g.revAdj[id])
}

// Roots returns tasks without predecessors, in input order.
func (g *TaskGraph) Roots() []string {
	return cloneStrings(g.roots)
}

// Leaves returns tasks without successors, in input order.
func (g *TaskGraph) Leaves() []string {
	return cloneStrings(g.leaves)
}

// records converts the graph back to loader records, in input order.
func (g *TaskGraph) records() []Record {
	records := make([]Record, 0, len(g.order))
	for _, id := range g.order {
		records = append(records, Record{
			ID:           id,
			Duration:     g.tasks[id].Duration,
			Predecessors: cloneStrings(g.revAdj[id]),
		})
	}

	return records
}

// Filter returns a new TaskGraph containing only tasks matching the predicate.
// Dependencies on filtered-out tasks are dropped.
func (g *TaskGraph) Filter(pred func(Task) bool) (*TaskGraph, error) {
	kept := make(map[string]bool)
	for _, id := range g.order {
		task, _ := g.Task(id)
		if pred(task) {
			kept[id] = true
		}
	}

	var filtered []Record
	for _, rec := range g.records() {
		if !kept[rec.ID] {
			continue
		}

		var preds []string
		for _, p := range rec.Predecessors {
			if kept[p] {
				preds = append(preds, p)
			}
		}
		rec.Predecessors = preds

		filtered = append(filtered, rec)
	}

	result, err := Build(filtered)
	if err != nil {
		return nil, fmt.Errorf("rebuild filtered graph: %w", err)
	}

	return result, nil
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}

	out := make([]string, len(in))
	copy(out, in)

	return out
}
