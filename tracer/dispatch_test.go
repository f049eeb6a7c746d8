package tracer

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestWorkDivisionRange(t *testing.T) {
	for count := 1; count <= 9; count++ {
		for n := 0; n <= 37; n++ {
			covered := make([]int, n)
			lastEnd := 0
			for i := 0; i < count; i++ {
				begin, end := WorkDivision{Index: i, Count: count}.Range(n)
				if begin != lastEnd {
					t.Fatalf("[count %d, n %d] expected division %d to start at %d; got %d", count, n, i, lastEnd, begin)
				}
				if size := end - begin; size < n/count || size > n/count+1 {
					t.Fatalf("[count %d, n %d] unbalanced division %d with %d items", count, n, i, size)
				}
				for j := begin; j < end; j++ {
					covered[j]++
				}
				lastEnd = end
			}
			if lastEnd != n {
				t.Fatalf("[count %d, n %d] expected divisions to end at %d; got %d", count, n, n, lastEnd)
			}
			for j, c := range covered {
				if c != 1 {
					t.Fatalf("[count %d, n %d] expected item %d to be covered once; got %d", count, n, j, c)
				}
			}
		}
	}
}

func TestDispatchCoversEveryDivision(t *testing.T) {
	type spec struct {
		workers  int
		expCount int
	}
	specs := []spec{
		{0, 1},
		{1, 1},
		{2, 2},
		{4, 4},
		{13, 13},
	}

	for index, s := range specs {
		var mu sync.Mutex
		seen := make(map[int]int)
		Dispatch(func(div WorkDivision, _ ...interface{}) {
			if div.Count != s.expCount {
				t.Errorf("[spec %d] expected division count %d; got %d", index, s.expCount, div.Count)
			}
			mu.Lock()
			seen[div.Index]++
			mu.Unlock()
		}, s.workers)

		exp := make(map[int]int)
		for i := 0; i < s.expCount; i++ {
			exp[i] = 1
		}
		if diff := cmp.Diff(exp, seen); diff != "" {
			t.Fatalf("[spec %d] division mismatch (-want +got):\n%s", index, diff)
		}
	}
}

func TestDispatchDisjointCounters(t *testing.T) {
	const (
		workers = 4
		slots   = 1000
		perSlot = 3
	)

	for run := 0; run < 100; run++ {
		counters := make([]int, slots)
		Dispatch(func(div WorkDivision, args ...interface{}) {
			buf := args[0].([]int)
			inc := args[1].(int)
			begin, end := div.Range(len(buf))
			for i := begin; i < end; i++ {
				for k := 0; k < inc; k++ {
					buf[i]++
				}
			}
		}, workers, counters, perSlot)

		total := 0
		for _, c := range counters {
			total += c
		}
		if exp := slots * perSlot; total != exp {
			t.Fatalf("[run %d] expected counter total %d; got %d", run, exp, total)
		}
	}
}

func TestDispatchZeroWorkersRunsInline(t *testing.T) {
	before := runtime.NumGoroutine()

	calls := 0
	var during int
	Dispatch(func(div WorkDivision, _ ...interface{}) {
		calls++
		during = runtime.NumGoroutine()
		if div != (WorkDivision{Index: 0, Count: 1}) {
			t.Errorf("expected division {0 1}; got %v", div)
		}
	}, 0)

	if calls != 1 {
		t.Fatalf("expected task to be called once; got %d", calls)
	}
	if during > before {
		t.Fatalf("expected no goroutines to be spawned; had %d before and %d during the task", before, during)
	}
}

func TestDispatchJoinsAllWorkers(t *testing.T) {
	var done int32
	Dispatch(func(div WorkDivision, _ ...interface{}) {
		// The inline division returns immediately; spawned workers lag behind.
		if div.Index != div.Count-1 {
			time.Sleep(20 * time.Millisecond)
		}
		atomic.AddInt32(&done, 1)
	}, 6)

	if got := atomic.LoadInt32(&done); got != 6 {
		t.Fatalf("expected all 6 workers to finish before Dispatch returned; got %d", got)
	}
}

func TestScheduler(t *testing.T) {
	if w := NewScheduler(0).Workers(); w != 1 {
		t.Fatalf("expected zero workers to be clamped to 1; got %d", w)
	}

	sch := NewScheduler(3)
	var sum int64
	sch.Run(func(div WorkDivision, args ...interface{}) {
		atomic.AddInt64(&sum, int64(div.Index)*args[0].(int64))
	}, int64(10))

	if sum != 30 {
		t.Fatalf("expected weighted index sum 30; got %d", sum)
	}
}
