package rewriter

import (
	"context"

	"golang.org/x/sync/errgroup"

	"style-rewriter/internal/models"
)

// BatchItem holds the outcome of one request in a batch.
type BatchItem struct {
	Result *models.RewriteResult
	Err    error
}

// RewriteAll runs each request as an independent rewrite with at most
// concurrency in flight. Items come back in request order and one failure
// does not stop the rest.
func (r *Rewriter) RewriteAll(ctx context.Context, reqs []models.RewriteRequest, concurrency int) []BatchItem {
	if concurrency < 1 {
		concurrency = 1
	}
	items := make([]BatchItem, len(reqs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			res, err := r.Rewrite(ctx, req)
			items[i] = BatchItem{Result: res, Err: err}
			return nil
		})
	}
	g.Wait()
	return items
}
