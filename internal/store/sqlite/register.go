package sqlite

import (
	"context"

	"github.com/msantosjader/rfb-cnpj-etl/internal/catalog"
	"github.com/msantosjader/rfb-cnpj-etl/internal/store"
	"github.com/msantosjader/rfb-cnpj-etl/internal/store/factory"
)

func init() {
	factory.RegisterBackend("sqlite", func(ctx context.Context, cat *catalog.Catalog, opts factory.Options) (store.Backend, error) {
		return Open(ctx, opts.SQLitePath, cat)
	})
}
