// Package batch solves several independent projects concurrently.
package batch

import (
	"context"
	"sync"

	"github.com/joshharrison/critpath/internal/cpm"
	"github.com/joshharrison/critpath/internal/graph"
)

// Job names one project to schedule.
type Job struct {
	Name string // usually the task file path
}

// Result pairs a job with its graph and schedule, or the error that stopped it.
type Result struct {
	Job      Job
	Graph    *graph.TaskGraph
	Schedule *cpm.Schedule
	Err      error
}

// SolveFunc loads and solves a single job.
type SolveFunc func(ctx context.Context, job Job) (*graph.TaskGraph, *cpm.Schedule, error)

// Run solves every job with at most maxParallel running at once.
// Results come back in job order. Jobs not started before ctx is done
// report ctx.Err().
func Run(ctx context.Context, jobs []Job, maxParallel int, solve SolveFunc) []Result {
	if maxParallel < 1 {
		maxParallel = 1
	}

	results := make([]Result, len(jobs))
	sem := make(chan struct{}, maxParallel)

	var wg sync.WaitGroup

	for i, job := range jobs {
		results[i].Job = job

		select {
		case <-ctx.Done():
			results[i].Err = ctx.Err()
			continue
		case sem <- struct{}{}: // acquire semaphore
		}

		wg.Add(1)
		go func(i int, job Job) {
			defer wg.Done()
			defer func() { <-sem }() // release semaphore

			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return
			}

			results[i].Graph, results[i].Schedule, results[i].Err = solve(ctx, job)
		}(i, job)
	}

	wg.Wait()

	return results
}

// FirstError returns the first failed result's error, in job order.
func FirstError(results []Result) error {
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}

	return nil
}
