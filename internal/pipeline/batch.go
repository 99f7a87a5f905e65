package pipeline

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// BatchItem is the result of one request of a batch. Exactly one of Outcome and Err is set.
type BatchItem struct {
	Request Request
	Outcome *Outcome
	Err     error
}

// BatchStats summarizes a batch.
type BatchStats struct {
	Total     int
	Succeeded int
	Empty     int
	Failed    int
	Elapsed   time.Duration
}

// Batch processes reqs with at most limit documents in flight. A failing document does not
// stop the others; items come back in request order.
func (p *Processor) Batch(ctx context.Context, reqs []Request, limit int) ([]BatchItem, BatchStats) {
	start := time.Now()
	if limit <= 0 {
		limit = 1
	}
	items := make([]BatchItem, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, req := range reqs {
		items[i].Request = req
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				items[i].Err = err
				return nil
			}
			items[i].Outcome, items[i].Err = p.Process(gctx, req)
			return nil
		})
	}
	_ = g.Wait()

	stats := BatchStats{Total: len(items)}
	for _, it := range items {
		switch {
		case it.Err != nil:
			stats.Failed++
		case it.Outcome.Empty():
			stats.Empty++
		default:
			stats.Succeeded++
		}
	}
	stats.Elapsed = time.Since(start)
	p.logger.Info("pipeline.batch.done",
		"total", stats.Total,
		"succeeded", stats.Succeeded,
		"empty", stats.Empty,
		"failed", stats.Failed,
		"elapsed_ms", stats.Elapsed.Milliseconds(),
	)
	return items, stats
}
