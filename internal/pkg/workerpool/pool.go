// Package workerpool runs submitted tasks on a fixed number of goroutines.
package workerpool

import (
	"context"
	"errors"
	"sync"
)

var ErrPoolClosed = errors.New("worker pool closed")

type Task func(ctx context.Context) error

// Result reports one finished task. Key is whatever the submitter passed.
type Result struct {
	Key string
	Err error
}

type job struct {
	key  string
	task Task
}

type Pool struct {
	workers int
	jobs    chan job

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func New(workers, buffer int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	return &Pool{workers: workers, jobs: make(chan job, buffer)}
}

// Submit queues a task, blocking while the buffer is full.
func (p *Pool) Submit(ctx context.Context, key string, t Task) error {
	if p == nil || t == nil {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.jobs <- job{key: key, task: t}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting tasks. Queued tasks still run.
func (p *Pool) Close() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.jobs)
}

// Run starts the workers. The returned channel is closed once Close has been
// called and the queue drained, or ctx is done.
func (p *Pool) Run(ctx context.Context) <-chan Result {
	out := make(chan Result, p.workers*16)

	p.wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case j, ok := <-p.jobs:
					if !ok {
						return
					}
					err := j.task(ctx)
					select {
					case out <- Result{Key: j.key, Err: err}:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}

	go func() {
		p.wg.Wait()
		close(out)
	}()
	return out
}
