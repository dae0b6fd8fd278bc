package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/msantosjader/rfb-cnpj-etl/internal/catalog"
	"github.com/msantosjader/rfb-cnpj-etl/internal/ingesterr"
	"github.com/msantosjader/rfb-cnpj-etl/internal/logx"
)

// InitializeSchema drops and recreates every catalog target as an
// UNLOGGED table (no WAL overhead for a database that gets rebuilt
// from scratch every run) with the large fact tables' primary keys
// deferred to EnableForeignKeys (spec.md §4.A, §4.E).
func (b *Backend) InitializeSchema(ctx context.Context) error {
	logx.Task("CRIANDO ESQUEMA DO BANCO DE DADOS...")

	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return ingesterr.WrapStructural("postgres.InitializeSchema: begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, t := range b.cat.TablesInOrder() {
		if _, err := tx.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", t.Name)); err != nil {
			return ingesterr.WrapStructural("postgres.InitializeSchema: drop "+t.Name, err)
		}
		if _, err := tx.Exec(ctx, createTableSQL(t)); err != nil {
			return ingesterr.WrapStructural("postgres.InitializeSchema: create "+t.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return ingesterr.WrapStructural("postgres.InitializeSchema: commit", err)
	}
	logx.Success("ESQUEMA CRIADO")
	return nil
}

func createTableSQL(t catalog.Target) string {
	var cols []string
	for _, c := range t.Columns {
		cols = append(cols, fmt.Sprintf("%s %s", c.Name, c.Type))
	}
	return fmt.Sprintf("CREATE UNLOGGED TABLE %s (\n  %s\n)", t.Name, strings.Join(cols, ",\n  "))
}

// EnableForeignKeys adds the deferred primary keys and every declared
// foreign key, tolerating Postgres' idempotent "already exists" error
// codes so a re-run (or a resumed run) never fails on this step
// (spec.md §4.E, §7).
func (b *Backend) EnableForeignKeys(ctx context.Context) error {
	logx.Task("ADICIONANDO CHAVES PRIMÁRIAS E ESTRANGEIRAS...")

	deferredPKs := []struct {
		table, constraint, columns string
	}{
		{"empresa", "pk_empresa", "cnpj_basico"},
		{"estabelecimento", "pk_estabelecimento", "cnpj_basico, cnpj_ordem, cnpj_dv"},
	}
	for _, pk := range deferredPKs {
		stmt := fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s PRIMARY KEY (%s)", pk.table, pk.constraint, pk.columns)
		if _, err := b.pool.Exec(ctx, stmt); err != nil && !isIdempotentPgError(err) {
			return ingesterr.WrapStructural("postgres.EnableForeignKeys: "+pk.constraint, err)
		}
	}

	for i, entry := range b.cat.FKList() {
		name := fmt.Sprintf("fk_%s_%d", entry.Table, i)
		stmt := fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
			entry.Table, name, strings.Join(entry.FK.Columns, ", "), entry.FK.RefTable, strings.Join(entry.FK.RefColumns, ", "))
		if _, err := b.pool.Exec(ctx, stmt); err != nil && !isIdempotentPgError(err) {
			return ingesterr.WrapStructural("postgres.EnableForeignKeys: "+name, err)
		}
	}

	logx.Success("CHAVES PRIMÁRIAS E ESTRANGEIRAS ADICIONADAS")
	return nil
}

// CreateIndexes adds every declared secondary index.
func (b *Backend) CreateIndexes(ctx context.Context) error {
	logx.Task("CRIANDO ÍNDICES...")
	for _, entry := range b.cat.IndexList() {
		stmt := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
			entry.Index.Name, entry.Table, strings.Join(entry.Index.Columns, ", "))
		if _, err := b.pool.Exec(ctx, stmt); err != nil {
			return ingesterr.WrapStructural("postgres.CreateIndexes: "+entry.Index.Name, err)
		}
	}
	logx.Success("ÍNDICES CRIADOS")
	return nil
}
