package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargetsForArchive_SingleTarget(t *testing.T) {
	c := New()
	targets := c.TargetsForArchive("Cnaes.zip")
	require.Len(t, targets, 1)
	assert.Equal(t, "cnae", targets[0].Name)
}

func TestTargetsForArchive_StripsShardDigits(t *testing.T) {
	c := New()
	targets := c.TargetsForArchive("Empresas3.zip")
	require.Len(t, targets, 1)
	assert.Equal(t, "empresa", targets[0].Name)
}

func TestTargetsForArchive_EstablishmentsFansOutToTwoTables(t *testing.T) {
	c := New()
	targets := c.TargetsForArchive("Estabelecimentos7.zip")
	require.Len(t, targets, 2)
	names := []string{targets[0].Name, targets[1].Name}
	assert.ElementsMatch(t, []string{"estabelecimento", "estabelecimento_cnae_sec"}, names)
}

func TestTargetsForArchive_IsCaseInsensitive(t *testing.T) {
	c := New()
	targets := c.TargetsForArchive("eMPRESAS0.ZIP")
	require.Len(t, targets, 1)
	assert.Equal(t, "empresa", targets[0].Name)
}

func TestTargetsForArchive_NoMatch(t *testing.T) {
	c := New()
	assert.Empty(t, c.TargetsForArchive("Unknown9.zip"))
}

func TestTable_DateColumns(t *testing.T) {
	c := New()
	tgt, ok := c.Table("estabelecimento")
	require.True(t, ok)
	names := tgt.ColumnNames()
	for _, idx := range tgt.DateColumns() {
		assert.Contains(t, []string{"data_situacao_cadastral", "data_inicio_atividade", "data_situacao_especial"}, names[idx])
	}
	assert.Len(t, tgt.DateColumns(), 3)
}

func TestFKList_CoversAllForeignKeys(t *testing.T) {
	c := New()
	fks := c.FKList()
	assert.NotEmpty(t, fks)
	var estabFKs int
	for _, f := range fks {
		if f.Table == "estabelecimento" {
			estabFKs++
		}
	}
	assert.Equal(t, 5, estabFKs)
}

func TestIndexList_CoversAllIndexes(t *testing.T) {
	c := New()
	idxs := c.IndexList()
	assert.NotEmpty(t, idxs)
}
