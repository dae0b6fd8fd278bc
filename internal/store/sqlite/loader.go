package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/msantosjader/rfb-cnpj-etl/internal/ingesterr"
	"github.com/msantosjader/rfb-cnpj-etl/internal/logx"
	"github.com/msantosjader/rfb-cnpj-etl/internal/pipeline"
	"github.com/msantosjader/rfb-cnpj-etl/internal/store"
)

// Consume drains queue with a single writer goroutine: SQLite allows
// only one writer at a time regardless of the caller's concurrency
// preference (opts.Parallel is accepted but ignored; spec.md §4.E,
// §5). Each batch is transformed and inserted inside its own
// transaction; a batch that fails to insert is logged and skipped
// rather than aborting the run (spec.md §4.E, §7).
func (b *Backend) Consume(ctx context.Context, queue *pipeline.Queue, opts store.ConsumeOptions) error {
	reporter := opts.Reporter
	if reporter == nil {
		reporter = pipeline.NewReporter(opts.TotalExpected, logx.Enabled(), nil)
	}

	remaining := 1 // sqlite has exactly one consumer regardless of worker count
	for remaining > 0 {
		batch := queue.Pop()
		if batch == nil {
			remaining--
			continue
		}
		if err := b.insertBatch(ctx, batch, reporter, queue); err != nil {
			// A bad batch must not abort the run: the repair phase
			// backfills the reference rows that FK creation depends
			// on, and it never gets to run if Consume returns early
			// (spec.md §3, §4.E, §7).
			logx.Error("sqlite.Consume: batch dropped for table %s (%s): %v", batch.Table, batch.SourceFilename, err)
		}
	}
	return nil
}

func (b *Backend) insertBatch(ctx context.Context, batch *pipeline.Batch, reporter *pipeline.Reporter, queue *pipeline.Queue) error {
	transformed := pipeline.Apply(batch, pipeline.EncodingLatin1)

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return ingesterr.WrapStructural("sqlite.Consume: begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertSQL(transformed.Table, transformed.Columns))
	if err != nil {
		return ingesterr.WrapStructural("sqlite.Consume: prepare "+transformed.Table, err)
	}
	defer func() { _ = stmt.Close() }()

	for _, row := range transformed.Rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return ingesterr.WrapStructural(fmt.Sprintf("sqlite.Consume: insert into %s", transformed.Table), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return ingesterr.WrapStructural("sqlite.Consume: commit "+transformed.Table, err)
	}

	if transformed.Table != "estabelecimento_cnae_sec" {
		reporter.Update(len(transformed.Rows), transformed.SourceFilename, queue.Len(), queue.Cap())
	}
	return nil
}

func insertSQL(table string, columns []string) string {
	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = "?"
	}
	verb := "INSERT"
	if table == "empresa" {
		// empresa rows duplicate across the monthly archive's shards;
		// every other table is either a reference table (no duplicates)
		// or sharded by a key that never repeats (spec.md §4.E).
		verb = "INSERT OR IGNORE"
	}
	return fmt.Sprintf("%s INTO %s (%s) VALUES (%s)",
		verb, table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
}
