package postgres

import (
	"context"

	"github.com/msantosjader/rfb-cnpj-etl/internal/catalog"
	"github.com/msantosjader/rfb-cnpj-etl/internal/store"
	"github.com/msantosjader/rfb-cnpj-etl/internal/store/factory"
)

func init() {
	factory.RegisterBackend("postgres", func(ctx context.Context, cat *catalog.Catalog, opts factory.Options) (store.Backend, error) {
		params := ConnParams{
			Host:     opts.PostgresHost,
			Port:     opts.PostgresPort,
			Database: opts.PostgresDatabase,
			User:     opts.PostgresUser,
			Password: opts.PostgresPassword,
		}
		return Open(ctx, params, cat, opts.WorkerThreads)
	})
}
