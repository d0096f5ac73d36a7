package parallel

import (
	"runtime"
	"sync"
)

type (
	WorkerFunc func(func())
	WaitFunc   func(done bool)
	CancelFunc func()
)

// Pool runs submitted functions on a fixed number of goroutines. A pool of
// one worker runs every function inline on the caller's goroutine.
type Pool struct {
	wg      sync.WaitGroup
	Workers int
	Do      WorkerFunc
	Wait    WaitFunc
	Cancel  CancelFunc
}

// Start returns a pool of numWorkers goroutines, GOMAXPROCS if numWorkers
// is below one. Wait(true) stops accepting work and blocks until every
// submitted function has returned.
func Start(numWorkers int) *Pool {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	pool := &Pool{
		Workers: numWorkers,
		Do: func(f func()) {
			f()
		},
		Wait:   func(bool) {},
		Cancel: func() {},
	}

	if numWorkers > 1 {
		workChan := make(chan func(), numWorkers)

		for range numWorkers {
			pool.wg.Go(func() {
				for f := range workChan {
					f()
				}
			})
		}

		pool.Do = func(f func()) {
			workChan <- f
		}

		pool.Wait = func(done bool) {
			if done {
				pool.Cancel()
			}
			pool.wg.Wait()
		}
		pool.Cancel = sync.OnceFunc(func() { close(workChan) })
	}

	return pool
}

// Map calls fn once for every index in [0, n) and returns when all calls
// are done. Indices are handed out in contiguous batches, one per worker;
// workers == 1 runs sequentially.
func Map(n, workers int, fn func(i int)) {
	if n <= 0 {
		return
	}

	pool := Start(min(workers, n))
	if pool.Workers == 1 {
		for i := range n {
			fn(i)
		}
		return
	}

	batch := (n + pool.Workers - 1) / pool.Workers
	for lo := 0; lo < n; lo += batch {
		hi := min(lo+batch, n)
		pool.Do(func() {
			for i := lo; i < hi; i++ {
				fn(i)
			}
		})
	}
	pool.Wait(true)
}
