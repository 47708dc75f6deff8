// Package batch executes per-image tasks across a bounded worker pool, with
// a sequential in-process fallback when the pool itself cannot be
// established.
package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/lepinkainen/clearcut/imaging"
)

// ProcessFunc executes the full pipeline for one task
type ProcessFunc func(ctx context.Context, task imaging.Task) error

// Mode records which execution strategy completed the run
type Mode string

const (
	ModeParallel   Mode = "parallel"
	ModeSequential Mode = "sequential"
)

// PoolStartError wraps a failure to establish the worker pool. It triggers
// the sequential fallback instead of aborting the run.
type PoolStartError struct {
	Err error
}

func (e *PoolStartError) Error() string {
	return fmt.Sprintf("failed to start worker pool: %v", e.Err)
}

func (e *PoolStartError) Unwrap() error { return e.Err }

// Summary aggregates the outcome of one run.
// Invariant: Succeeded + Skipped + Failed == Total.
type Summary struct {
	Total     int
	Succeeded int
	Skipped   int
	Failed    int
	Failures  []imaging.Result
	Mode      Mode
}

// Runner executes tasks with task-level isolation: one bad image is recorded
// as a failure and never stops the rest of the run.
type Runner struct {
	Workers int
	Process ProcessFunc

	// OnResult is called once per finished task from a single goroutine.
	// Tasks replayed by the sequential fallback report again.
	OnResult func(imaging.Result)

	// spawn starts one pool worker; tests override it to force the
	// fallback path.
	spawn func(f func()) error
}

// NewRunner creates a runner with the given parallelism
func NewRunner(workers int, process ProcessFunc) *Runner {
	return &Runner{
		Workers: workers,
		Process: process,
		spawn:   func(f func()) error { go f(); return nil },
	}
}

// Run processes every task and returns a summary. It first attempts the
// parallel pool; if the pool cannot be started, every task not yet confirmed
// successful is replayed one at a time in the calling goroutine, so the run
// always completes even in restricted environments.
func (r *Runner) Run(ctx context.Context, tasks []imaging.Task) Summary {
	results, poolErr := r.runParallel(ctx, tasks)
	mode := ModeParallel

	if poolErr != nil {
		mode = ModeSequential

		kept := results[:0:0]
		done := make(map[string]bool, len(results))
		for _, res := range results {
			if res.Err == nil {
				kept = append(kept, res)
				done[res.Task.InputPath] = true
			}
		}

		var remaining []imaging.Task
		for _, task := range tasks {
			if !done[task.InputPath] {
				remaining = append(remaining, task)
			}
		}

		results = append(kept, r.runSequential(ctx, remaining)...)
	}

	return summarize(len(tasks), results, mode)
}

// runParallel distributes tasks over a jobs channel and joins on every
// submitted task before returning, so no task is ever silently dropped.
// Completion order is arbitrary.
func (r *Runner) runParallel(ctx context.Context, tasks []imaging.Task) ([]imaging.Result, error) {
	if r.Workers < 1 {
		return nil, &PoolStartError{Err: fmt.Errorf("invalid worker count %d", r.Workers)}
	}
	if len(tasks) == 0 {
		return nil, nil
	}

	workers := r.Workers
	if workers > len(tasks) {
		workers = len(tasks)
	}

	jobs := make(chan imaging.Task, len(tasks))
	resultCh := make(chan imaging.Result, len(tasks))
	var wg sync.WaitGroup

	started := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		err := r.spawn(func() {
			defer wg.Done()
			for task := range jobs {
				resultCh <- imaging.Result{Task: task, Err: r.process(ctx, task)}
			}
		})
		if err != nil {
			wg.Done()
			if started == 0 {
				return nil, &PoolStartError{Err: err}
			}
			// Degraded pool is still a pool
			break
		}
		started++
	}

	for _, task := range tasks {
		jobs <- task
	}
	close(jobs)

	results := make([]imaging.Result, 0, len(tasks))
	for range tasks {
		res := <-resultCh
		if r.OnResult != nil {
			r.OnResult(res)
		}
		results = append(results, res)
	}
	wg.Wait()

	return results, nil
}

// runSequential replays tasks one at a time in the calling goroutine using
// the identical per-task pipeline and isolation rules
func (r *Runner) runSequential(ctx context.Context, tasks []imaging.Task) []imaging.Result {
	results := make([]imaging.Result, 0, len(tasks))
	for _, task := range tasks {
		res := imaging.Result{Task: task, Err: r.process(ctx, task)}
		if r.OnResult != nil {
			r.OnResult(res)
		}
		results = append(results, res)
	}
	return results
}

// process runs one task, converting a worker panic into a per-task failure
// so a misbehaving decoder can never take down the pool
func (r *Runner) process(ctx context.Context, task imaging.Task) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic while processing: %v", rec)
		}
	}()
	return r.Process(ctx, task)
}

func summarize(total int, results []imaging.Result, mode Mode) Summary {
	s := Summary{Total: total, Mode: mode}
	for _, res := range results {
		switch {
		case res.Err == nil:
			s.Succeeded++
		case errors.Is(res.Err, imaging.ErrOutputExists):
			s.Skipped++
		default:
			s.Failed++
			s.Failures = append(s.Failures, res)
		}
	}
	return s
}
