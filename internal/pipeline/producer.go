package pipeline

import (
	"archive/zip"
	"bufio"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/msantosjader/rfb-cnpj-etl/internal/catalog"
	"github.com/msantosjader/rfb-cnpj-etl/internal/logx"
	"github.com/msantosjader/rfb-cnpj-etl/internal/textenc"
)

// Producer streams every archive in a directory into the shared queue,
// splitting rows by target table and enforcing per-table batch-size
// thresholds (spec.md §4.C).
type Producer struct {
	cat       *catalog.Catalog
	queue     *Queue
	batchSize func(table string) int
	consumers int
}

// NewProducer builds a Producer. batchSizeFor returns the row-count
// threshold at which a table's in-progress buffer is flushed; callers
// typically pass (*config.Config).BatchSizeFor.
func NewProducer(cat *catalog.Catalog, queue *Queue, batchSizeFor func(table string) int, consumers int) *Producer {
	return &Producer{cat: cat, queue: queue, batchSize: batchSizeFor, consumers: consumers}
}

// Run processes every *.zip archive under dir. When parallel is true
// (the client/server backend's multi-producer mode, spec.md §4.C and
// §9 design note on bounding per-archive parallelism), one goroutine
// per archive runs concurrently; otherwise archives are walked
// sequentially in sorted filename order. Either way, exactly one
// sentinel per consumer is pushed once every archive has been
// processed (spec.md §4.C step 7).
func (p *Producer) Run(dir string, parallel bool) error {
	archives, err := sortedZips(dir)
	if err != nil {
		return fmt.Errorf("listing archives in %s: %w", dir, err)
	}

	if parallel {
		var g errgroup.Group
		for _, a := range archives {
			a := a
			g.Go(func() error {
				p.processArchive(a)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for _, a := range archives {
			p.processArchive(a)
		}
	}

	for i := 0; i < p.consumers; i++ {
		p.queue.PushSentinel()
	}
	return nil
}

func sortedZips(dir string) ([]string, error) {
	entries, err := filepathGlobZip(dir)
	if err != nil {
		return nil, err
	}
	sort.Strings(entries)
	return entries, nil
}

// filepathGlobZip is split out as its own function so producer tests
// can exercise sortedZips' ordering without touching a real directory.
func filepathGlobZip(dir string) ([]string, error) {
	return globZip(dir)
}

// bufferedTable tracks one target table's in-progress row buffer
// within a single archive.
type bufferedTable struct {
	target  catalog.Target
	columns []string
	rows    [][]string
}

// processArchive streams one archive's sole text member, routes rows
// to their target tables' buffers, and flushes on threshold or at EOF.
// A read error for an archive member is logged and the rest of that
// member is skipped; rows read before the error are still flushed. It
// never aborts the run.
func (p *Producer) processArchive(archivePath string) {
	targets := p.cat.TargetsForArchive(archivePath)
	if len(targets) == 0 {
		logx.Error("arquivo %q não corresponde a nenhuma tabela no catálogo", filepath.Base(archivePath))
		return
	}

	buffers := make(map[string]*bufferedTable, len(targets))
	var estabIdx EstablishmentFieldIndexes
	var estabTarget catalog.Target
	hasDerived := false
	for _, t := range targets {
		buffers[t.Name] = &bufferedTable{target: t, columns: t.ColumnNames()}
		if t.Name == "estabelecimento" {
			estabTarget = t
		}
		if t.Derived {
			hasDerived = true
		}
	}
	if hasDerived {
		if estabTarget.Name == "" {
			if full, ok := p.cat.Table("estabelecimento"); ok {
				estabTarget = full
			}
		}
		estabIdx = ResolveEstablishmentFieldIndexes(estabTarget)
	}

	primaryArity := len(buffers[targets[0].Name].columns)
	for _, t := range targets {
		if !t.Derived {
			primaryArity = len(t.ColumnNames())
			break
		}
	}

	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		logx.Error("não foi possível abrir %q: %v", archivePath, err)
		return
	}
	defer func() { _ = zr.Close() }()

	for _, member := range zr.File {
		if err := p.streamMember(archivePath, member, buffers, estabIdx, primaryArity); err != nil {
			logx.Error("erro ao ler %q em %q: %v", member.Name, filepath.Base(archivePath), err)
		}
	}

	for _, buf := range buffers {
		if len(buf.rows) > 0 {
			p.queue.Push(&Batch{Table: buf.target.Name, Columns: buf.columns, Rows: buf.rows, SourceFilename: archivePath})
			buf.rows = nil
		}
	}
}

func (p *Producer) streamMember(archivePath string, member *zip.File, buffers map[string]*bufferedTable, estabIdx EstablishmentFieldIndexes, primaryArity int) error {
	rc, err := member.Open()
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		decoded := textenc.DecodeLine(line)
		decoded = strings.TrimRight(decoded, "\r\n")
		if decoded == "" {
			continue
		}
		row := strings.Split(decoded, ";")
		if len(row) != primaryArity {
			continue // wrong arity: silently dropped per spec.md §4.C
		}

		for _, buf := range buffers {
			if buf.target.Derived {
				key := [3]string{row[estabIdx.CnpjBasico], row[estabIdx.CnpjOrdem], row[estabIdx.CnpjDV]}
				derived := SplitSecondaryCNAE(key, row[estabIdx.CnaeSec])
				buf.rows = append(buf.rows, derived...)
			} else {
				buf.rows = append(buf.rows, row)
			}
			p.flushIfFull(buf, archivePath)
		}
	}
	return scanner.Err()
}

func (p *Producer) flushIfFull(buf *bufferedTable, archivePath string) {
	threshold := p.batchSize(buf.target.Name)
	if threshold <= 0 || len(buf.rows) < threshold {
		return
	}
	p.queue.Push(&Batch{Table: buf.target.Name, Columns: buf.columns, Rows: buf.rows, SourceFilename: archivePath})
	buf.rows = nil
}

// globZip lists *.zip files directly under dir. Extracted as a var so
// tests can swap it for a fake listing.
var globZip = func(dir string) ([]string, error) {
	return filepath.Glob(filepath.Join(dir, "*.zip"))
}
