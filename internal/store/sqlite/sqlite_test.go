package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/msantosjader/rfb-cnpj-etl/internal/catalog"
	"github.com/msantosjader/rfb-cnpj-etl/internal/pipeline"
	"github.com/msantosjader/rfb-cnpj-etl/internal/store"
)

// newTestBackend opens a private in-memory database; the shared
// ":memory:" DSN leaks state across tests in the same process, so each
// test gets its own URI-form in-memory cache=private handle instead (mirrors
// the file-embedded test pattern used elsewhere in the pack).
func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	ctx := context.Background()
	b, err := Open(ctx, "file::memory:?mode=memory&cache=private", catalog.New())
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	require.NoError(t, b.InitializeSchema(ctx))
	return b
}

func TestInitializeSchema_CreatesEveryTable(t *testing.T) {
	b := newTestBackend(t)
	for _, target := range b.cat.TablesInOrder() {
		var name string
		err := b.db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, target.Name).Scan(&name)
		require.NoError(t, err, "table %s should exist", target.Name)
	}
}

func TestConsume_DuplicateKeyDropsBatchWithoutFailing(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	queue := pipeline.NewQueue(4)
	go func() {
		queue.Push(&pipeline.Batch{
			Table:   "pais",
			Columns: []string{"cod_pais", "nome_pais"},
			Rows: [][]string{
				{"076", "BRASIL"},
				{"076", "BRASIL"}, // duplicate PK: plain INSERT fails, the batch is rolled back, Consume carries on
			},
			SourceFilename: "Paises0.zip",
		})
		queue.PushSentinel()
	}()

	require.NoError(t, b.Consume(ctx, queue, store.ConsumeOptions{TotalExpected: 2}))

	var count int
	require.NoError(t, b.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM pais").Scan(&count))
	require.Equal(t, 0, count)
}

func TestPatchData_BackfillsReferenceRowsAndDeletesBadSimples(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	_, err := b.db.ExecContext(ctx, `INSERT INTO empresa (cnpj_basico, razao_social, cod_natureza_juridica, cod_qualificacao_responsavel, capital_social, cod_porte) VALUES ('24417449', 'X', '1', '1', 0, '')`)
	require.NoError(t, err)
	_, err = b.db.ExecContext(ctx, `INSERT INTO simples (cnpj_basico, opcao_simples) VALUES ('24417449', 'S')`)
	require.NoError(t, err)
	_, err = b.db.ExecContext(ctx, `INSERT INTO estabelecimento (cnpj_basico, cnpj_ordem, cnpj_dv, matriz_filial, cod_situacao_cadastral, cod_motivo_situacao_cadastral, data_inicio_atividade, cod_cnae_principal, uf, cod_pais) VALUES ('24417449','0001','90','1','02','00','2020-01-01','0000000','SP','0')`)
	require.NoError(t, err)

	require.NoError(t, b.PatchData(ctx))

	var porte string
	require.NoError(t, b.db.QueryRowContext(ctx, "SELECT cod_porte FROM empresa WHERE cnpj_basico='24417449'").Scan(&porte))
	require.Equal(t, "00", porte)

	var simplesCount int
	require.NoError(t, b.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM simples WHERE cnpj_basico='24417449'").Scan(&simplesCount))
	require.Equal(t, 0, simplesCount)

	var qualificacaoCount int
	require.NoError(t, b.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM qualificacao_socio WHERE cod_qualificacao='36'").Scan(&qualificacaoCount))
	require.Equal(t, 1, qualificacaoCount)
}
