// Package parallel runs scoring work on replicated sessions. A session
// belongs to one goroutine, so parallelism comes from giving every worker
// its own replica and never sharing one.
package parallel

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrPoolShutdown is returned when trying to submit tasks to a shutdown pool.
var ErrPoolShutdown = errors.New("replica pool has been shutdown")

// Replicate builds n replicas concurrently. The first failing build cancels
// the context passed to the others and its error is returned.
func Replicate[S any](ctx context.Context, n int, build func(ctx context.Context, worker int) (S, error)) ([]S, error) {
	replicas := make([]S, n)
	g, gCtx := errgroup.WithContext(ctx)
	for i := range n {
		g.Go(func() error {
			r, err := build(gCtx, i)
			if err != nil {
				return err
			}
			replicas[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return replicas, nil
}

// Each runs fn once per replica, each on its own goroutine, and waits for
// all of them. The first error cancels the context passed to the others.
func Each[S any](ctx context.Context, replicas []S, fn func(ctx context.Context, worker int, replica S) error) error {
	g, gCtx := errgroup.WithContext(ctx)
	for i, r := range replicas {
		g.Go(func() error { return fn(gCtx, i, r) })
	}
	return g.Wait()
}

// Pool is a fixed set of workers, each owning one replica. Tasks run on
// whichever worker takes them first and receive that worker's replica.
type Pool[S any] struct {
	replicas []S
	tasks    chan func(S)
	workerWg sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
}

// NewPool builds one replica per worker and starts the workers. If workers
// is 0 or negative, it defaults to the number of CPU cores.
func NewPool[S any](ctx context.Context, workers int, build func(ctx context.Context, worker int) (S, error)) (*Pool[S], error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	replicas, err := Replicate(ctx, workers, build)
	if err != nil {
		return nil, err
	}

	p := &Pool[S]{
		replicas: replicas,
		tasks:    make(chan func(S), workers*2), // Buffered channel for backpressure
	}
	for _, r := range replicas {
		p.workerWg.Add(1)
		go p.worker(r)
	}
	return p, nil
}

func (p *Pool[S]) worker(replica S) {
	defer p.workerWg.Done()
	for task := range p.tasks {
		task(replica)
	}
}

// Size returns the number of workers.
func (p *Pool[S]) Size() int { return len(p.replicas) }

// Submit queues task. If the queue is full, this call blocks until a
// worker becomes available or ctx is done.
func (p *Pool[S]) Submit(ctx context.Context, task func(replica S)) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolShutdown
	}
	select {
	case p.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do runs task on some replica and waits for its result.
func (p *Pool[S]) Do(ctx context.Context, task func(replica S) error) error {
	done := make(chan error, 1)
	if err := p.Submit(ctx, func(r S) { done <- task(r) }); err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting tasks and waits for the queued ones to finish.
func (p *Pool[S]) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()
	p.workerWg.Wait()
}
