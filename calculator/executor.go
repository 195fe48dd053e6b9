package calculator

import "sync"

// executor runs f(i) for every i in [0, n) and returns once all calls are
// done. Calls write only to their own index, so the order they run in does
// not change the result.
type executor interface {
	dispatch(n int, f func(i int))
}

type inlineExecutor struct{}

func (inlineExecutor) dispatch(n int, f func(i int)) {
	for i := 0; i < n; i++ {
		f(i)
	}
}

type task struct {
	start int
	end   int
}

// sliceExecutor splits the index range into contiguous slices and hands
// them to a fixed number of workers.
type sliceExecutor struct {
	workers int
}

func newExecutor(workers int) executor {
	if workers <= 1 {
		return inlineExecutor{}
	}
	return &sliceExecutor{workers: workers}
}

func (e *sliceExecutor) dispatch(n int, f func(i int)) {
	if n == 0 {
		return
	}
	taskLen := (n + e.workers - 1) / e.workers
	tasks := make(chan task, e.workers)
	var wg sync.WaitGroup
	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range tasks {
				for i := t.start; i < t.end; i++ {
					f(i)
				}
			}
		}()
	}
	for start := 0; start < n; start += taskLen {
		tasks <- task{start: start, end: min(start+taskLen, n)}
	}
	close(tasks)
	wg.Wait()
}
