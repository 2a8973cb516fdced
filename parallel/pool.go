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

// Pool fans tasks out to a fixed set of worker goroutines. Do queues one
// task; Wait blocks until every queued task has finished and, when done,
// releases the workers. With a single worker everything runs inline.
type Pool struct {
	// Size is the effective worker count after normalization.
	Size int

	tasks  sync.WaitGroup
	Do     WorkerFunc
	Wait   WaitFunc
	Cancel CancelFunc
}

func Start(numWorkers int) *Pool {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	pool := &Pool{
		Size: numWorkers,
		Do: func(f func()) {
			f()
		},
		Wait:   func(bool) {},
		Cancel: func() {},
	}

	if numWorkers > 1 {
		workChan := make(chan func(), numWorkers)

		for range numWorkers {
			go func() {
				for f := range workChan {
					f()
					pool.tasks.Done()
				}
			}()
		}

		pool.Do = func(f func()) {
			pool.tasks.Add(1)
			workChan <- f
		}
		pool.Cancel = sync.OnceFunc(func() { close(workChan) })
		pool.Wait = func(done bool) {
			pool.tasks.Wait()
			if done {
				pool.Cancel()
			}
		}
	}

	return pool
}

// Spans splits n items into at most parts contiguous half-open [lo,hi)
// ranges of near-equal length, in order.
func Spans(n, parts int) [][2]int {
	if n <= 0 {
		return nil
	}
	if parts < 1 {
		parts = 1
	} else if parts > n {
		parts = n
	}

	spans := make([][2]int, 0, parts)
	for i := range parts {
		spans = append(spans, [2]int{i * n / parts, (i + 1) * n / parts})
	}
	return spans
}
