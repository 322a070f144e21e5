package slidedeck

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// BatchJob is one deck to export in a batch.
type BatchJob struct {
	Name       string
	Deck       *Deck
	Assemblers []Assembler
	Sink       Sink
	Options    []Option
}

// BatchResult is the outcome of one BatchJob.
type BatchResult struct {
	Name     string
	Results  []*ExportResult
	Err      error
	Duration time.Duration
}

// ExportBatch exports jobs concurrently, one deck per pooled stage.
// A failing deck does not stop the others; results are returned in job order.
// A stage whose browser or page broke is discarded rather than reused.
func ExportBatch(ctx context.Context, pool *ExporterPool, jobs []BatchJob) []BatchResult {
	results := make([]BatchResult, len(jobs))

	var g errgroup.Group
	g.SetLimit(pool.Size())
	for i, job := range jobs {
		g.Go(func() error {
			start := time.Now()
			results[i] = BatchResult{Name: job.Name}

			stage, err := pool.Acquire(ctx)
			if err != nil {
				results[i].Err = err
				return nil
			}

			res, err := ExportDeck(ctx, stage, job.Deck, job.Assemblers, job.Sink, job.Options...)
			if brokenStage(err) {
				_ = pool.Discard(stage)
			} else {
				pool.Release(stage)
			}
			results[i].Results = res
			results[i].Err = err
			results[i].Duration = time.Since(start)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
