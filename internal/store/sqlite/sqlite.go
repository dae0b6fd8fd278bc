// Package sqlite implements the file-embedded storage backend: a
// single SQLite database file written by one connection/writer, no
// CGO (spec.md §4.E "file-embedded"). It registers itself with
// internal/store/factory on import.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/msantosjader/rfb-cnpj-etl/internal/catalog"
	"github.com/msantosjader/rfb-cnpj-etl/internal/ingesterr"
)

// pragmas tune SQLite for a single bulk-load pass: the database is
// rebuilt from scratch each run, so durability and concurrent-reader
// safety are worth trading away for insert throughput (spec.md §4.E).
var pragmas = []string{
	"PRAGMA journal_mode = MEMORY",
	"PRAGMA synchronous = OFF",
	"PRAGMA foreign_keys = OFF",
	"PRAGMA temp_store = MEMORY",
	"PRAGMA cache_size = -200000",
	"PRAGMA locking_mode = EXCLUSIVE",
	"PRAGMA automatic_index = OFF",
}

// Backend is the file-embedded storage implementation.
type Backend struct {
	db  *sql.DB
	cat *catalog.Catalog
}

// Open opens (creating if absent) the SQLite database at path and
// applies the bulk-load pragma set.
func Open(ctx context.Context, path string, cat *catalog.Catalog) (*Backend, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, ingesterr.WrapStructural("sqlite.Open", err)
	}
	db.SetMaxOpenConns(1) // single-writer: spec.md §4.E, §5
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, ingesterr.WrapStructural(fmt.Sprintf("applying %q", p), err)
		}
	}
	return &Backend{db: db, cat: cat}, nil
}

// Close releases the database handle.
func (b *Backend) Close() error {
	return b.db.Close()
}
