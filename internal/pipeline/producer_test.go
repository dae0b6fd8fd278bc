package pipeline

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msantosjader/rfb-cnpj-etl/internal/catalog"
)

func writeZipFixture(t *testing.T, dir, name, member string, lines []string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create(member)
	require.NoError(t, err)
	for _, l := range lines {
		_, err := w.Write([]byte(l + "\r\n"))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return path
}

// drain pulls batches off q until it sees the sentinel for one consumer.
func drain(q *Queue) []*Batch {
	var batches []*Batch
	for {
		b := q.Pop()
		if b == nil {
			return batches
		}
		batches = append(batches, b)
	}
}

func TestProducer_RoutesRowsAndFlushesAtArchiveEnd(t *testing.T) {
	dir := t.TempDir()
	writeZipFixture(t, dir, "Paises0.zip", "Paises0.txt", []string{
		"001;BRASIL",
		"002;ARGENTINA",
	})

	cat := catalog.New()
	q := NewQueue(10)
	p := NewProducer(cat, q, func(string) int { return 1000 }, 1)

	done := make(chan []*Batch, 1)
	go func() { done <- drain(q) }()

	require.NoError(t, p.Run(dir, false))
	batches := <-done

	require.Len(t, batches, 1)
	assert.Equal(t, "pais", batches[0].Table)
	assert.Len(t, batches[0].Rows, 2)
	assert.Equal(t, []string{"001", "BRASIL"}, batches[0].Rows[0])
}

func TestProducer_FlushesOnThreshold(t *testing.T) {
	dir := t.TempDir()
	writeZipFixture(t, dir, "Paises0.zip", "Paises0.txt", []string{
		"001;BRASIL",
		"002;ARGENTINA",
		"003;CHILE",
	})

	cat := catalog.New()
	q := NewQueue(10)
	p := NewProducer(cat, q, func(string) int { return 2 }, 1)

	done := make(chan []*Batch, 1)
	go func() { done <- drain(q) }()

	require.NoError(t, p.Run(dir, false))
	batches := <-done

	require.Len(t, batches, 2)
	assert.Len(t, batches[0].Rows, 2)
	assert.Len(t, batches[1].Rows, 1)
}

func TestProducer_DropsRowsWithWrongArity(t *testing.T) {
	dir := t.TempDir()
	writeZipFixture(t, dir, "Paises0.zip", "Paises0.txt", []string{
		"001;BRASIL",
		"002", // missing column, dropped
		"003;CHILE",
	})

	cat := catalog.New()
	q := NewQueue(10)
	p := NewProducer(cat, q, func(string) int { return 1000 }, 1)

	done := make(chan []*Batch, 1)
	go func() { done <- drain(q) }()

	require.NoError(t, p.Run(dir, false))
	batches := <-done

	require.Len(t, batches, 1)
	assert.Len(t, batches[0].Rows, 2)
}

func TestProducer_UnrecognizedArchiveIsSkippedNotFatal(t *testing.T) {
	dir := t.TempDir()
	writeZipFixture(t, dir, "Unknown0.zip", "Unknown0.txt", []string{"x;y"})

	cat := catalog.New()
	q := NewQueue(10)
	p := NewProducer(cat, q, func(string) int { return 1000 }, 1)

	done := make(chan []*Batch, 1)
	go func() { done <- drain(q) }()

	require.NoError(t, p.Run(dir, false))
	batches := <-done
	assert.Empty(t, batches)
}

func TestProducer_DerivesSecondaryCNAERowsFromEstablishments(t *testing.T) {
	dir := t.TempDir()
	cat := catalog.New()
	estab, ok := cat.Table("estabelecimento")
	require.True(t, ok)

	cols := estab.ColumnNames()
	row := make([]string, len(cols))
	for i := range row {
		row[i] = "x"
	}
	idx := ResolveEstablishmentFieldIndexes(estab)
	row[idx.CnpjBasico] = "11111111"
	row[idx.CnpjOrdem] = "0001"
	row[idx.CnpjDV] = "99"
	row[idx.CnaeSec] = "6201500,6202300"

	writeZipFixture(t, dir, "Estabelecimentos0.zip", "Estabelecimentos0.txt", []string{
		joinBySemicolon(row),
	})

	q := NewQueue(20)
	p := NewProducer(cat, q, func(string) int { return 1000 }, 1)

	done := make(chan []*Batch, 1)
	go func() { done <- drain(q) }()

	require.NoError(t, p.Run(dir, false))
	batches := <-done

	var derived *Batch
	for _, b := range batches {
		if b.Table == "estabelecimento_cnae_sec" {
			derived = b
		}
	}
	require.NotNil(t, derived)
	require.Len(t, derived.Rows, 2)
	assert.Equal(t, []string{"11111111", "0001", "99", "6201500"}, derived.Rows[0])
	assert.Equal(t, []string{"11111111", "0001", "99", "6202300"}, derived.Rows[1])
}

func joinBySemicolon(fields []string) string {
	out := fields[0]
	for _, f := range fields[1:] {
		out += ";" + f
	}
	return out
}
