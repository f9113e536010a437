package search

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Drain drives a criterion to exhaustion and returns every result it
// produced. It is mainly useful for the last stage of a pipeline and in
// tests; intermediate stages are normally consumed one bucket at a time.
func Drain(criterion Criterion, params *CriterionParameters) ([]*CriterionResult, error) {
	var results []*CriterionResult
	for {
		result, err := criterion.Next(params)
		if err != nil {
			return nil, err
		}
		if result == nil {
			return results, nil
		}
		results = append(results, result)
	}
}

// RunPipelines runs independent query pipelines concurrently and waits for
// all of them. Each run is expected to own its read snapshot, Context and
// WordDistanceCache; the snapshot isolation of the store keeps them from
// interfering. The first error cancels the group context.
func RunPipelines(ctx context.Context, runs ...func(ctx context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, run := range runs {
		g.Go(func() error {
			return run(gctx)
		})
	}
	return g.Wait()
}
