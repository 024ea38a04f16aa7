// SPDX-License-Identifier: MPL-2.0

// Package fanout runs independent per-source tasks concurrently and collects
// their (id, result) pairs. A failing task never cancels its peers; callers
// partition the results and report the failures.
package fanout

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Result pairs a source id with what its task produced.
type Result[T any] struct {
	ID    string
	Value T
	Err   error
}

// Run calls fn once per id with at most limit calls in flight (limit <= 0
// means no limit) and waits for all of them. Results are returned in the
// order of ids. A panicking task is recorded as a failure.
func Run[T any](ctx context.Context, limit int, ids []string, fn func(ctx context.Context, id string) (T, error)) []Result[T] {
	results := make([]Result[T], len(ids))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, id := range ids {
		g.Go(func() error {
			results[i] = call(ctx, id, fn)
			// Never return the task error: errgroup would only keep the first
			// and callers need every one.
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Partition splits results into successes and failures, keeping order.
func Partition[T any](results []Result[T]) (succeeded, failed []Result[T]) {
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
			continue
		}
		succeeded = append(succeeded, r)
	}
	return succeeded, failed
}

func call[T any](ctx context.Context, id string, fn func(ctx context.Context, id string) (T, error)) (r Result[T]) {
	r.ID = id
	defer func() {
		if p := recover(); p != nil {
			r.Err = fmt.Errorf("task %s panicked: %v", id, p)
		}
	}()
	r.Value, r.Err = fn(ctx, id)
	return r
}
