/*
Copyright The dkregistry-go Authors.
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package syncutil provides bounded concurrency helpers.
package syncutil

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Map invokes fn once per item with at most limit invocations in flight, and
// collects the results in item order. The first error cancels the remaining
// invocations and is returned once the in-flight ones drain.
func Map[T, R any](ctx context.Context, limit int64, items []T, fn func(ctx context.Context, item T) (R, error)) ([]R, error) {
	results := make([]R, len(items))
	limiter := semaphore.NewWeighted(limit)
	eg, egCtx := errgroup.WithContext(ctx)
	for i, item := range items {
		if err := limiter.Acquire(egCtx, 1); err != nil {
			// a failed invocation cancelled egCtx; its error outranks
			// the bare context error
			if werr := eg.Wait(); werr != nil {
				err = werr
			}
			return nil, err
		}
		eg.Go(func() error {
			defer limiter.Release(1)
			result, err := fn(egCtx, item)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
