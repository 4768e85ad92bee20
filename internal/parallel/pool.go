// Package parallel runs independent row computations on a bounded number of
// goroutines.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool fans row-parallel numeric work out to at most Workers
// goroutines per call. Goroutines live only for the duration of a ForEach,
// so an idle pool holds no resources.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers int
	closed  atomic.Bool
}

// NewWorkerPool creates a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &WorkerPool{workers: workers}
}

// ForEach calls fn(i) for every i in [0, n) and returns once all calls have
// finished. Rows are handed out through a shared counter, so uneven rows
// balance across workers. After Close, or with a single worker, rows run
// inline on the caller's goroutine.
func (p *WorkerPool) ForEach(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	workers := min(p.workers, n)
	if workers == 1 || p.closed.Load() {
		for i := range n {
			fn(i)
		}
		return
	}

	var (
		next atomic.Int64
		wg   sync.WaitGroup
	)
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for {
				i := int(next.Add(1) - 1)
				if i >= n {
					return
				}
				fn(i)
			}
		}()
	}
	wg.Wait()
}

// ExecuteAll runs every item and returns once all have finished.
func (p *WorkerPool) ExecuteAll(work []func()) {
	p.ForEach(len(work), func(i int) { work[i]() })
}

// Workers returns the maximum number of goroutines per call.
func (p *WorkerPool) Workers() int { return p.workers }

// IsRunning reports whether Close has not been called.
func (p *WorkerPool) IsRunning() bool { return !p.closed.Load() }

// Close marks the pool closed; later calls run inline. Calling it again is
// a no-op.
func (p *WorkerPool) Close() { p.closed.Store(true) }
