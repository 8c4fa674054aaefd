// Package fanout runs a function across a slice of items with bounded
// concurrency, preserving input order in the results. Order creation uses it
// to resolve the referenced products in parallel.
package fanout

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Result holds the outcome of processing a single item.
// Either Value is populated (on success) or Err is non-nil (on failure).
type Result[R any] struct {
	Value R
	Err   error
}

// Run executes fn for each item using at most maxWorkers concurrent calls.
// Results are returned in the same order as the input items.
//
// An item whose turn comes after ctx is done records ctx.Err() and fn is not
// called for it. Calls already running are not interrupted; fn is expected to
// honour ctx itself.
//
// Run blocks until every item is settled. An empty input yields an empty
// non-nil slice. A maxWorkers below 1 is treated as 1.
func Run[T, R any](ctx context.Context, maxWorkers int, items []T, fn func(context.Context, T) (R, error)) []Result[R] {
	if len(items) == 0 {
		return []Result[R]{}
	}
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	results := make([]Result[R], len(items))
	sem := semaphore.NewWeighted(int64(maxWorkers))
	var wg sync.WaitGroup

	for i, item := range items {
		wg.Add(1)
		go func(idx int, it T) {
			defer wg.Done()

			if err := ctx.Err(); err != nil {
				results[idx] = Result[R]{Err: err}
				return
			}
			if err := sem.Acquire(ctx, 1); err != nil {
				results[idx] = Result[R]{Err: err}
				return
			}
			defer sem.Release(1)

			val, err := fn(ctx, it)
			results[idx] = Result[R]{Value: val, Err: err}
		}(i, item)
	}

	wg.Wait()
	return results
}

// FirstErr returns the error of the earliest failed result in input order,
// or nil when every item succeeded.
func FirstErr[R any](results []Result[R]) error {
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}
