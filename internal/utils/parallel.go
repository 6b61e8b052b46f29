package utils

import (
	"golang.org/x/sync/errgroup"
)

// RunOrdered runs fn for every input concurrently and gathers the results in
// input order once all calls have finished. Calls are not cancelled when a
// sibling fails; the first error is returned alongside the partial results,
// whose failed slots hold the zero value. limit <= 0 means unbounded.
func RunOrdered[In, Out any](inputs []In, limit int, fn func(i int, in In) (Out, error)) ([]Out, error) {
	results := make([]Out, len(inputs))
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, in := range inputs {
		g.Go(func() error {
			out, err := fn(i, in)
			if err != nil {
				return err
			}
			results[i] = out
			return nil
		})
	}

	return results, g.Wait()
}
