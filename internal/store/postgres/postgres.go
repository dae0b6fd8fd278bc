// Package postgres implements the client/server storage backend on
// top of jackc/pgx/v5: a pool of writer connections performing COPY
// loads against a Postgres database created with WIN1252 encoding
// (spec.md §4.E "client/server"). It registers itself with
// internal/store/factory on import.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/msantosjader/rfb-cnpj-etl/internal/catalog"
	"github.com/msantosjader/rfb-cnpj-etl/internal/ingesterr"
)

// ConnParams carries the connection fields needed to build a DSN. It
// is a plain struct rather than a URL string so the factory layer
// doesn't need to know pgx's DSN quoting rules.
type ConnParams struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

func (p ConnParams) dsn(database string) string {
	if database == "" {
		database = p.Database
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?client_encoding=WIN1252",
		p.User, p.Password, p.Host, p.Port, database)
}

// Backend is the client/server storage implementation.
type Backend struct {
	pool    *pgxpool.Pool
	cat     *catalog.Catalog
	workers int
}

// Open creates the target database if it doesn't exist (as UNLOGGED-
// friendly WIN1252/template0), then opens a pool against it sized to
// workers writer connections (spec.md §4.F, §5).
func Open(ctx context.Context, params ConnParams, cat *catalog.Catalog, workers int) (*Backend, error) {
	if err := ensureDatabase(ctx, params); err != nil {
		return nil, err
	}

	cfg, err := pgxpool.ParseConfig(params.dsn(""))
	if err != nil {
		return nil, ingesterr.WrapStructural("postgres.Open: parse config", err)
	}
	if workers < 1 {
		workers = 1
	}
	cfg.MaxConns = int32(workers)

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, ingesterr.WrapStructural("postgres.Open: connect", err)
	}
	return &Backend{pool: pool, cat: cat, workers: workers}, nil
}

// ensureDatabase connects to the administrative "postgres" database
// and issues CREATE DATABASE ... TEMPLATE template0 ENCODING 'WIN1252'
// when the target database doesn't exist yet (spec.md §4.E).
func ensureDatabase(ctx context.Context, params ConnParams) error {
	admin, err := pgx.Connect(ctx, params.dsn("postgres"))
	if err != nil {
		return ingesterr.WrapStructural("postgres.ensureDatabase: connect", err)
	}
	defer func() { _ = admin.Close(ctx) }()

	var exists bool
	if err := admin.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)`, params.Database).Scan(&exists); err != nil {
		return ingesterr.WrapStructural("postgres.ensureDatabase: check existence", err)
	}
	if exists {
		return nil
	}

	stmt := fmt.Sprintf(`CREATE DATABASE %s TEMPLATE template0 ENCODING 'WIN1252' LC_COLLATE 'C' LC_CTYPE 'C'`, pgx.Identifier{params.Database}.Sanitize())
	if _, err := admin.Exec(ctx, stmt); err != nil {
		return ingesterr.WrapStructural("postgres.ensureDatabase: create database", err)
	}
	return nil
}

// Close releases the connection pool.
func (b *Backend) Close() error {
	b.pool.Close()
	return nil
}
