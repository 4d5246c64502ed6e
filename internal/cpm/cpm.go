package cpm

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/joshharrison/critpath/internal/graph"
)

// Solve performs critical path method analysis with the default Config.
func Solve(g *graph.TaskGraph) (*Schedule, error) {
	return SolveWith(g, Config{})
}

// SolveWith performs critical path method analysis on a task graph.
// It either returns a complete schedule or an error, never both.
func SolveWith(g *graph.TaskGraph, config Config) (*Schedule, error) {
	if config.Tolerance <= 0 {
		config.Tolerance = DefaultTolerance
	}
	if config.MaxPaths <= 0 {
		config.MaxPaths = DefaultMaxPaths
	}

	if g == nil || g.TaskCount() == 0 {
		return nil, EmptyGraphError{}
	}

	order, err := g.TopoSort()
	if err != nil {
		return nil, err
	}

	result := &Schedule{
		Tasks:     make(map[string]*TaskSchedule, len(order)),
		TopoOrder: order,
	}

	for _, id := range order {
		result.Tasks[id] = &TaskSchedule{
			TaskID:   id,
			Duration: g.Duration(id),
		}
	}

	result.forwardPass(g)
	result.backwardPass(g)

	// Rounding error grows with the magnitude of the times involved.
	tol := config.Tolerance * math.Max(1, result.ProjectDuration)

	if err := result.computeSlack(tol); err != nil {
		return nil, err
	}

	if err := result.traceCriticalPaths(g, tol, config.MaxPaths); err != nil {
		return nil, err
	}

	result.Waves = computeWaves(result, tol)

	return result, nil
}

// forwardPass computes ES and EF in topological order.
func (s *Schedule) forwardPass(g *graph.TaskGraph) {
	for _, id := range s.TopoOrder {
		ts := s.Tasks[id]

		// ES = max(EF of all predecessors), 0 for start tasks
		es := 0.0
		for _, pred := range g.Predecessors(id) {
			if ef := s.Tasks[pred].EF; ef > es {
				es = ef
			}
		}

		ts.ES = es
		ts.EF = es + ts.Duration
	}
}

// backwardPass computes LF and LS in reverse topological order.
func (s *Schedule) backwardPass(g *graph.TaskGraph) {
	// Project duration is the latest finish among tasks nothing depends on.
	for _, id := range g.Leaves() {
		if ef := s.Tasks[id].EF; ef > s.ProjectDuration {
			s.ProjectDuration = ef
		}
	}

	for i := len(s.TopoOrder) - 1; i >= 0; i-- {
		id := s.TopoOrder[i]
		ts := s.Tasks[id]

		successors := g.Successors(id)
		if len(successors) == 0 {
			ts.LF = s.ProjectDuration
		} else {
			minLS := math.Inf(1)
			for _, succ := range successors {
				if ls := s.Tasks[succ].LS; ls < minLS {
					minLS = ls
				}
			}
			ts.LF = minLS
		}

		ts.LS = ts.LF - ts.Duration
	}
}

// computeSlack sets slack and criticality, cross-checking both slack formulas.
func (s *Schedule) computeSlack(tolerance float64) error {
	for _, id := range s.TopoOrder {
		ts := s.Tasks[id]

		startSlack := ts.LS - ts.ES
		finishSlack := ts.LF - ts.EF

		if math.Abs(startSlack-finishSlack) > tolerance {
			return &InconsistentSlackError{
				TaskID: id,
				Reason: fmt.Sprintf("LS-ES=%g differs from LF-EF=%g", startSlack, finishSlack),
			}
		}

		if startSlack < -tolerance {
			return &InconsistentSlackError{
				TaskID: id,
				Reason: fmt.Sprintf("negative slack %g", startSlack),
			}
		}

		if math.Abs(startSlack) <= tolerance {
			ts.Slack = 0
			ts.IsCritical = true
			s.CriticalTasks = append(s.CriticalTasks, id)

			continue
		}

		ts.Slack = startSlack
	}

	return nil
}

// tightSuccessors returns the critical successors that start exactly when id finishes.
func (s *Schedule) tightSuccessors(g *graph.TaskGraph, id string, tolerance float64) []string {
	var result []string

	ef := s.Tasks[id].EF
	for _, succ := range g.Successors(id) {
		ts := s.Tasks[succ]
		if ts.IsCritical && math.Abs(ts.ES-ef) <= tolerance {
			result = append(result, succ)
		}
	}

	return result
}

// traceCriticalPaths enumerates every chain of critical tasks linked by tight
// precedence edges. Every critical task must lie on such a chain running from
// ES = 0 to EF = project duration; anything else is a solver defect.
func (s *Schedule) traceCriticalPaths(g *graph.TaskGraph, tol float64, maxPaths int) error {
	next := make(map[string][]string, len(s.CriticalTasks))
	hasTightPred := make(map[string]bool, len(s.CriticalTasks))

	for _, id := range s.CriticalTasks {
		next[id] = s.tightSuccessors(g, id, tol)
		for _, succ := range next[id] {
			hasTightPred[succ] = true
		}
	}

	var starts []string
	for _, id := range s.CriticalTasks {
		ts := s.Tasks[id]

		if !hasTightPred[id] {
			if math.Abs(ts.ES) > tol {
				return &InconsistentSlackError{
					TaskID: id,
					Reason: fmt.Sprintf("critical chain starts at ES=%g instead of 0", ts.ES),
				}
			}
			starts = append(starts, id)
		}

		if len(next[id]) == 0 && math.Abs(ts.EF-s.ProjectDuration) > tol {
			return &InconsistentSlackError{
				TaskID: id,
				Reason: fmt.Sprintf("critical chain ends at EF=%g before project end %g",
					ts.EF, s.ProjectDuration),
			}
		}
	}

	var walk func(path []string) bool
	walk = func(path []string) bool {
		last := path[len(path)-1]

		if len(next[last]) == 0 {
			if len(s.CriticalPaths) == maxPaths {
				s.PathsTruncated = true
				return false
			}

			s.CriticalPaths = append(s.CriticalPaths, append([]string(nil), path...))
			return true
		}

		for _, succ := range next[last] {
			if !walk(append(path, succ)) {
				return false
			}
		}

		return true
	}

	for _, start := range starts {
		if !walk([]string{start}) {
			break
		}
	}

	return nil
}

// computeWaves groups tasks by their earliest start time.
func computeWaves(result *Schedule, tolerance float64) []Wave {
	ids := make([]string, len(result.TopoOrder))
	copy(ids, result.TopoOrder)

	sort.SliceStable(ids, func(a, b int) bool {
		return result.Tasks[ids[a]].ES < result.Tasks[ids[b]].ES
	})

	var waves []Wave
	for _, id := range ids {
		ts := result.Tasks[id]

		if len(waves) == 0 || ts.ES-waves[len(waves)-1].Start > tolerance {
			waves = append(waves, Wave{
				Index: len(waves),
				Start: ts.ES,
			})
		}

		w := &waves[len(waves)-1]
		w.TaskIDs = append(w.TaskIDs, id)
		ts.Wave = w.Index
		if ts.IsCritical {
			w.IsCritical = true
		}
	}

	// Sort critical tasks first within wave
	for i := range waves {
		taskIDs := waves[i].TaskIDs
		sort.SliceStable(taskIDs, func(a, b int) bool {
			aCrit := result.Tasks[taskIDs[a]].IsCritical
			bCrit := result.Tasks[taskIDs[b]].IsCritical
			if aCrit != bCrit {
				return aCrit
			}
			return false
		})
	}

	return waves
}

// IsCritical reports whether the task with the given id has zero slack.
func (s *Schedule) IsCritical(id string) bool {
	ts, ok := s.Tasks[id]
	return ok && ts.IsCritical
}

// CriticalPathString renders every critical chain as "A -> B -> C",
// chains separated by " | ".
func (s *Schedule) CriticalPathString() string {
	chains := make([]string, 0, len(s.CriticalPaths))
	for _, path := range s.CriticalPaths {
		chains = append(chains, strings.Join(path, " -> "))
	}

	return strings.Join(chains, " | ")
}

// CriticalEdge reports whether from -> to links two consecutive tasks of
// some critical chain.
func (s *Schedule) CriticalEdge(from, to string) bool {
	for _, path := range s.CriticalPaths {
		for i := 0; i+1 < len(path); i++ {
			if path[i] == from && path[i+1] == to {
				return true
			}
		}
	}

	return false
}
