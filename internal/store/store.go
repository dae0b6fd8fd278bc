// Package store defines the storage backend contract shared by the
// file-embedded (SQLite) and client/server (Postgres) implementations
// (spec.md §4.E, §4.F). Each backend builds its schema, consumes
// batches off the shared pipeline queue, and repairs/indexes the
// loaded data the same way, but differs in how bulk inserts and
// concurrency are implemented underneath this interface.
package store

import (
	"context"

	"github.com/msantosjader/rfb-cnpj-etl/internal/pipeline"
)

// ConsumeOptions configures a single call to Loader.Consume.
type ConsumeOptions struct {
	// TotalExpected is the approximate total row count across every
	// table, used to size the progress reporter. It is a hint, not a
	// hard limit.
	TotalExpected int64
	// LowMemory is carried through from the --low-memory flag. Neither
	// the SQLite nor the Postgres Consume reads it, so it does not change
	// transaction or buffer sizes.
	LowMemory bool
	// Parallel enables the multi-writer loading path where the backend
	// supports it (Postgres); SQLite always loads single-writer
	// regardless of this flag (spec.md §4.F, §5).
	Parallel bool
	Reporter *pipeline.Reporter
}

// Builder creates and repairs a backend's schema.
type Builder interface {
	// InitializeSchema creates every target table, deferring large
	// fact-table primary keys until after load (spec.md §4.A, §4.E).
	InitializeSchema(ctx context.Context) error
	// PatchData runs the idempotent repair phase: reference-row
	// backfill, dedup, cod_pais/cod_porte normalization, and explicit
	// simples deletions (spec.md §4.F).
	PatchData(ctx context.Context) error
	// EnableForeignKeys adds the foreign keys deferred by
	// InitializeSchema, tolerating idempotent re-creation errors
	// (spec.md §4.E, §7).
	EnableForeignKeys(ctx context.Context) error
	// CreateIndexes adds the indexes deferred by InitializeSchema.
	CreateIndexes(ctx context.Context) error
}

// Loader drains the shared batch queue and bulk-inserts rows.
type Loader interface {
	// Consume pulls batches off queue until it has received one
	// sentinel per worker, transforming and inserting each batch as it
	// arrives (spec.md §4.D, §4.E, §4.F).
	Consume(ctx context.Context, queue *pipeline.Queue, opts ConsumeOptions) error
}

// Backend bundles the Builder and Loader contract a registered
// storage implementation must satisfy, plus lifecycle management.
type Backend interface {
	Builder
	Loader
	// Close releases any held connections/handles.
	Close() error
}
