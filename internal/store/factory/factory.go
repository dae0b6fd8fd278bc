// Package factory selects and constructs a storage backend by name,
// mirroring the registry pattern used to select among embedded and
// server storage engines (spec.md §4.E, §6).
package factory

import (
	"context"
	"fmt"

	"github.com/msantosjader/rfb-cnpj-etl/internal/catalog"
	"github.com/msantosjader/rfb-cnpj-etl/internal/store"
)

// Options carries backend-specific connection parameters. Fields
// irrelevant to a given backend are ignored by its factory function.
type Options struct {
	// SQLitePath is the database file path (file-embedded backend).
	SQLitePath string

	// Postgres connection parameters (client/server backend).
	PostgresHost     string
	PostgresPort     int
	PostgresDatabase string
	PostgresUser     string
	PostgresPassword string

	WorkerThreads int
}

// BackendFactory constructs a storage backend for the given catalog
// and options.
type BackendFactory func(ctx context.Context, cat *catalog.Catalog, opts Options) (store.Backend, error)

var backendRegistry = make(map[string]BackendFactory)

// RegisterBackend registers a storage backend factory under name.
// Backend packages call this from an init func so importing the
// backend package alone is enough to make it selectable.
func RegisterBackend(name string, factory BackendFactory) {
	backendRegistry[name] = factory
}

// New constructs the named backend ("sqlite" or "postgres").
func New(ctx context.Context, name string, cat *catalog.Catalog, opts Options) (store.Backend, error) {
	factory, ok := backendRegistry[name]
	if !ok {
		return nil, fmt.Errorf("unknown storage backend: %q (supported: sqlite, postgres)", name)
	}
	return factory(ctx, cat, opts)
}

// Registered reports the backend names currently registered, for
// --help text and validation.
func Registered() []string {
	names := make([]string, 0, len(backendRegistry))
	for name := range backendRegistry {
		names = append(names, name)
	}
	return names
}
