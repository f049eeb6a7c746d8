package tracer

import (
	"sync"

	"github.com/jimbok8/lbvh-1/log"
)

var logger = log.New("dispatch")

// A WorkDivision identifies one worker's slot within a fixed-size parallel
// partition. Index is unique across [0, Count) for a single dispatch.
type WorkDivision struct {
	Index int
	Count int
}

// Range splits [0, n) into Count contiguous chunks and returns the bounds of
// the chunk owned by this division. Chunks are disjoint, cover [0, n) and
// differ in length by at most one.
func (d WorkDivision) Range(n int) (begin, end int) {
	if d.Count <= 0 || n <= 0 {
		return 0, 0
	}

	chunk := n / d.Count
	extra := n % d.Count

	begin = d.Index*chunk + min(d.Index, extra)
	end = begin + chunk
	if d.Index < extra {
		end++
	}
	return begin, end
}

// A Task is invoked once per WorkDivision. The args passed to Dispatch are
// shared by every invocation.
type Task func(div WorkDivision, args ...interface{})

// Dispatch runs task across exactly workerCount workers and returns once all
// of them have finished. Divisions 0..workerCount-2 each run on a fresh
// goroutine; the last division runs on the calling goroutine. A workerCount
// of zero or less is treated as one, in which case no goroutines are spawned.
//
// Dispatch provides no synchronization other than the final join: if task
// mutates shared state the divisions must write disjoint ranges or the task
// must synchronize itself. Workers cannot be cancelled and run in no
// particular order. A panic inside a spawned worker is not recovered and
// terminates the process.
func Dispatch(task Task, workerCount int, args ...interface{}) {
	if workerCount < 1 {
		workerCount = 1
	}

	logger.Debugf("dispatching task across %d worker(s)", workerCount)

	var wg sync.WaitGroup
	wg.Add(workerCount - 1)
	for i := 0; i < workerCount-1; i++ {
		go func(div WorkDivision) {
			defer wg.Done()
			task(div, args...)
		}(WorkDivision{Index: i, Count: workerCount})
	}

	task(WorkDivision{Index: workerCount - 1, Count: workerCount}, args...)

	wg.Wait()
}

// The Scheduler binds a worker count to Dispatch. Workers are created and
// joined on every Run call; there is no persistent pool behind it.
type Scheduler struct {
	maxWorkers int
}

// Create a scheduler running tasks across maxWorkers workers. A value of
// zero is treated as one.
func NewScheduler(maxWorkers int) *Scheduler {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &Scheduler{maxWorkers: maxWorkers}
}

// Get the number of workers used by each Run call.
func (s *Scheduler) Workers() int {
	return s.maxWorkers
}

// Run the task to completion across all workers.
func (s *Scheduler) Run(task Task, args ...interface{}) {
	Dispatch(task, s.maxWorkers, args...)
}
