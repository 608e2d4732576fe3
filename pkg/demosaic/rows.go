package demosaic

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// forRowRanges calls fn over disjoint [start, end) slices of [lo, hi).
// workers <= 1 runs fn inline; a negative count uses GOMAXPROCS.
// fn must only write rows inside its own range.
func forRowRanges(lo, hi, workers int, fn func(start, end int) error) error {
	n := hi - lo
	if n <= 0 {
		return nil
	}
	if workers < 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		return fn(lo, hi)
	}

	chunk := (n + workers - 1) / workers
	var eg errgroup.Group
	for start := lo; start < hi; start += chunk {
		start, end := start, start+chunk
		if end > hi {
			end = hi
		}
		eg.Go(func() error {
			return fn(start, end)
		})
	}
	return eg.Wait()
}
