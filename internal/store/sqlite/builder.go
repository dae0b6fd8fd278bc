package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/msantosjader/rfb-cnpj-etl/internal/catalog"
	"github.com/msantosjader/rfb-cnpj-etl/internal/ingesterr"
	"github.com/msantosjader/rfb-cnpj-etl/internal/logx"
)

// InitializeSchema drops any existing tables and recreates every
// catalog target. Primary keys on empresa and estabelecimento are
// deferred (added later by EnableForeignKeys as unique indexes) since
// PK-enforced inserts would otherwise
// serialize and slow the bulk load (spec.md §4.A, §4.E).
func (b *Backend) InitializeSchema(ctx context.Context) error {
	logx.Task("CRIANDO ESQUEMA DO BANCO DE DADOS...")

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return ingesterr.WrapStructural("sqlite.InitializeSchema: begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, t := range b.cat.TablesInOrder() {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", t.Name)); err != nil {
			return ingesterr.WrapStructural("sqlite.InitializeSchema: drop "+t.Name, err)
		}
		if _, err := tx.ExecContext(ctx, createTableSQL(t)); err != nil {
			return ingesterr.WrapStructural("sqlite.InitializeSchema: create "+t.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return ingesterr.WrapStructural("sqlite.InitializeSchema: commit", err)
	}
	logx.Success("ESQUEMA CRIADO")
	return nil
}

// createTableSQL renders a CREATE TABLE statement for t. Large fact
// tables with a deferred primary key get no inline PRIMARY KEY/UNIQUE
// clause; small reference tables declare their PK inline via the
// column type string already ("VARCHAR(n) PRIMARY KEY").
func createTableSQL(t catalog.Target) string {
	var cols []string
	for _, c := range t.Columns {
		cols = append(cols, fmt.Sprintf("%s %s", c.Name, c.Type))
	}
	return fmt.Sprintf("CREATE TABLE %s (\n  %s\n)", t.Name, strings.Join(cols, ",\n  "))
}

// EnableForeignKeys adds the deferred primary keys for empresa and
// estabelecimento (as unique indexes), then flips the foreign_keys
// pragma on. No FK DDL is issued here, and createTableSQL emits no
// REFERENCES clauses either (the catalog's column types carry none), so
// the SQLite schema declares no foreign-key relations for the pragma to
// enforce.
func (b *Backend) EnableForeignKeys(ctx context.Context) error {
	logx.Task("ADICIONANDO CHAVES PRIMÁRIAS E ATIVANDO CHAVES ESTRANGEIRAS...")

	for _, stmt := range []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS pk_empresa ON empresa (cnpj_basico)",
		"CREATE UNIQUE INDEX IF NOT EXISTS pk_estabelecimento ON estabelecimento (cnpj_basico, cnpj_ordem, cnpj_dv)",
	} {
		if _, err := b.db.ExecContext(ctx, stmt); err != nil {
			if !ingesterr.IsIdempotentSQLiteDuplicateIndex(err) {
				return ingesterr.WrapStructural("sqlite.EnableForeignKeys: "+stmt, err)
			}
		}
	}

	if _, err := b.db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return ingesterr.WrapStructural("sqlite.EnableForeignKeys: pragma", err)
	}
	logx.Success("CHAVES PRIMÁRIAS E ESTRANGEIRAS ATIVADAS")
	return nil
}

// CreateIndexes adds every declared secondary index.
func (b *Backend) CreateIndexes(ctx context.Context) error {
	logx.Task("CRIANDO ÍNDICES...")
	for _, entry := range b.cat.IndexList() {
		stmt := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
			entry.Index.Name, entry.Table, strings.Join(entry.Index.Columns, ", "))
		if _, err := b.db.ExecContext(ctx, stmt); err != nil {
			return ingesterr.WrapStructural("sqlite.CreateIndexes: "+entry.Index.Name, err)
		}
	}
	logx.Success("ÍNDICES CRIADOS")
	return nil
}
