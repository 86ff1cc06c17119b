// Package workerpool runs independent jobs on a fixed number of goroutines.
package workerpool

import (
	"context"
	"runtime"
	"sync"
)

// DefaultWorkers returns the worker count used when none is configured.
func DefaultWorkers() int {
	return runtime.NumCPU()
}

// WorkerPool provides a reusable worker pool pattern for parallel processing.
// It manages job distribution across multiple workers and collects results.
type WorkerPool[Job any, Result any] struct {
	numWorkers int
	jobs       chan Job
	results    chan Result
	wg         sync.WaitGroup
}

// NewWorkerPool creates a new worker pool with the specified number of workers.
// If numWorkers is 0 or negative, it defaults to DefaultWorkers.
// If numJobs is less than numWorkers, the pool is sized to match numJobs.
func NewWorkerPool[Job any, Result any](numWorkers, numJobs int) *WorkerPool[Job, Result] {
	if numWorkers <= 0 {
		numWorkers = DefaultWorkers()
	}
	if numJobs > 0 {
		numWorkers = min(numWorkers, numJobs)
	}

	return &WorkerPool[Job, Result]{
		numWorkers: numWorkers,
		jobs:       make(chan Job, numJobs),
		results:    make(chan Result, numJobs),
	}
}

// Workers returns the number of goroutines the pool starts.
func (p *WorkerPool[Job, Result]) Workers() int {
	return p.numWorkers
}

// Start begins the worker pool with the provided worker function.
// The workerFn is called for each job and should return a result.
func (p *WorkerPool[Job, Result]) Start(workerFn func(Job) Result) {
	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.results <- workerFn(job)
			}
		}()
	}
}

// Submit adds a job to the worker pool's job queue.
func (p *WorkerPool[Job, Result]) Submit(job Job) {
	p.jobs <- job
}

// Close closes the job channel and waits for all workers to complete.
// After calling Close, the results channel will be closed automatically.
func (p *WorkerPool[Job, Result]) Close() {
	close(p.jobs)
	go func() {
		p.wg.Wait()
		close(p.results)
	}()
}

// Results returns the results channel for collecting worker outputs.
func (p *WorkerPool[Job, Result]) Results() <-chan Result {
	return p.results
}

// Map applies fn to every job on a pool of numWorkers and returns the
// results in job order. Jobs not yet started when ctx is cancelled are
// skipped and ctx.Err() is returned.
func Map[Job any, Result any](ctx context.Context, numWorkers int, jobs []Job, fn func(Job) Result) ([]Result, error) {
	type indexedJob struct {
		i   int
		job Job
	}
	type indexedResult struct {
		i       int
		result  Result
		skipped bool
	}

	pool := NewWorkerPool[indexedJob, indexedResult](numWorkers, len(jobs))
	pool.Start(func(j indexedJob) indexedResult {
		if ctx.Err() != nil {
			return indexedResult{i: j.i, skipped: true}
		}
		return indexedResult{i: j.i, result: fn(j.job)}
	})

	for i, job := range jobs {
		pool.Submit(indexedJob{i: i, job: job})
	}
	pool.Close()

	results := make([]Result, len(jobs))
	for r := range pool.Results() {
		if !r.skipped {
			results[r.i] = r.result
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
