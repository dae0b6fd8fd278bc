package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"github.com/msantosjader/rfb-cnpj-etl/internal/ingesterr"
	"github.com/msantosjader/rfb-cnpj-etl/internal/logx"
	"github.com/msantosjader/rfb-cnpj-etl/internal/pipeline"
	"github.com/msantosjader/rfb-cnpj-etl/internal/store"
)

// Consume runs b.workers loader goroutines (a single one unless
// opts.Parallel is set) pulling batches off the shared queue
// concurrently, each holding its own pooled connection
// and using Postgres' COPY protocol (via pgx.CopyFrom) for the bulk
// insert (spec.md §4.F, §5). Every worker exits once it has drawn its
// own sentinel.
func (b *Backend) Consume(ctx context.Context, queue *pipeline.Queue, opts store.ConsumeOptions) error {
	reporter := opts.Reporter
	if reporter == nil {
		reporter = pipeline.NewReporter(opts.TotalExpected, logx.Enabled(), nil)
	}

	workers := b.workers
	if !opts.Parallel {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for {
				batch := queue.Pop()
				if batch == nil {
					return nil
				}
				if err := b.copyBatch(ctx, batch, reporter, queue); err != nil {
					// A bad batch must not cancel the shared context:
					// that would tear down every sibling worker and
					// abort the run before the repair phase gets to
					// backfill the reference rows FK creation depends
					// on (spec.md §3, §4.F, §7).
					logx.Error("postgres.Consume: batch dropped for table %s (%s): %v", batch.Table, batch.SourceFilename, err)
				}
			}
		})
	}
	return g.Wait()
}

func (b *Backend) copyBatch(ctx context.Context, batch *pipeline.Batch, reporter *pipeline.Reporter, queue *pipeline.Queue) error {
	transformed := pipeline.Apply(batch, pipeline.EncodingWindows1252)

	rows := make([][]any, len(transformed.Rows))
	copy(rows, transformed.Rows)

	_, err := b.pool.CopyFrom(ctx,
		pgx.Identifier{transformed.Table},
		transformed.Columns,
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return ingesterr.WrapStructural("postgres.Consume: copy into "+transformed.Table, err)
	}

	if transformed.Table != "estabelecimento_cnae_sec" {
		reporter.Update(len(transformed.Rows), transformed.SourceFilename, queue.Len(), queue.Cap())
	}
	return nil
}
