package ipc

import (
	"runtime"
	"sync"
)

// taskRange splits [0, n) into one contiguous chunk per worker and runs fn
// on each chunk in its own goroutine, waiting for all of them. The worker
// index identifies a per-worker accumulator to be merged after the wait.
func taskRange(workers, n int, fn func(worker, start, end int)) {
	var wg sync.WaitGroup
	chunkSize := (n + workers - 1) / workers

	for workerID := 0; workerID < workers; workerID++ {
		start := workerID * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			break
		}
		wg.Add(1)
		go func(worker, start, end int) {
			defer wg.Done()
			fn(worker, start, end)
		}(workerID, start, end)
	}
	wg.Wait()
}

// workerCount sizes the pool for n independent items.
func workerCount(n int) int {
	return max(1, min(runtime.GOMAXPROCS(0), n))
}
