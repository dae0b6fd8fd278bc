package pipeline

import (
	"strconv"
	"strings"
	"time"

	"github.com/msantosjader/rfb-cnpj-etl/internal/catalog"
	"github.com/msantosjader/rfb-cnpj-etl/internal/textenc"
)

// dateColumnsByTable names, per non-derived target, the columns that
// normalizeDates acts on. Ported from utils/db_transformers.py's
// transform_batch dispatch (it special-cases three tables by name
// rather than deriving the set purely from the declared SQL type, so
// the Go port keeps that same table-by-table literal list).
var dateColumnsByTable = map[string][]string{
	"estabelecimento": {"data_situacao_cadastral", "data_inicio_atividade", "data_situacao_especial"},
	"simples":         {"data_opcao_simples", "data_exclusao_simples", "data_opcao_mei", "data_exclusao_mei"},
	"socio":           {"data_entrada_sociedade"},
}

// numericColumnsByTable names the columns normalizeNumericBR acts on.
var numericColumnsByTable = map[string][]string{
	"empresa": {"capital_social"},
}

// Transformed is a Batch whose values have been sanitized, whose date
// columns have been parsed into time.Time, and whose numeric columns
// have been rewritten as period-decimal strings, ready for bulk
// insertion. A nil value represents SQL NULL.
type Transformed struct {
	Table          string
	Columns        []string
	Rows           [][]any
	SourceFilename string
}

// Encoding selects the sanitization path: Latin1 (SQLite backend, no
// byte re-encoding needed beyond stripping NULs) or Windows1252
// (Postgres backend, whose client_encoding is WIN1252 and so requires
// re-encoding with replacement of uncoercible characters).
type Encoding int

const (
	// EncodingLatin1 only strips null bytes and trims whitespace.
	EncodingLatin1 Encoding = iota
	// EncodingWindows1252 additionally round-trips through windows-1252.
	EncodingWindows1252
)

// Apply runs sanitization, then table-specific numeric/date
// normalization, against b. It is pure: b is never mutated, and no
// state carries across calls (spec.md §4.D).
func Apply(b *Batch, enc Encoding) *Transformed {
	out := &Transformed{
		Table:          b.Table,
		Columns:        b.Columns,
		SourceFilename: b.SourceFilename,
		Rows:           make([][]any, len(b.Rows)),
	}

	colIndex := make(map[string]int, len(b.Columns))
	for i, c := range b.Columns {
		colIndex[c] = i
	}

	numericCols := indexSet(colIndex, numericColumnsByTable[b.Table])
	dateCols := indexSet(colIndex, dateColumnsByTable[b.Table])

	for r, row := range b.Rows {
		transformed := make([]any, len(row))
		for i, v := range row {
			transformed[i] = sanitize(v, enc)
		}
		for i := range numericCols {
			if s, ok := transformed[i].(string); ok {
				transformed[i] = normalizeNumericBR(s)
			}
		}
		for i := range dateCols {
			transformed[i] = normalizeDate(transformed[i])
		}
		out.Rows[r] = transformed
	}
	return out
}

func indexSet(colIndex map[string]int, names []string) map[int]struct{} {
	set := make(map[int]struct{}, len(names))
	for _, n := range names {
		if i, ok := colIndex[n]; ok {
			set[i] = struct{}{}
		}
	}
	return set
}

// sanitize strips embedded NUL bytes and surrounding whitespace from a
// string value, then for Postgres re-encodes through windows-1252 with
// replacement of characters the target encoding cannot represent.
// Non-string values pass through untouched.
func sanitize(v string, enc Encoding) any {
	s := strings.ReplaceAll(v, "\x00", "")
	s = strings.TrimSpace(s)
	if enc == EncodingWindows1252 {
		s = textenc.DecodeLine(textenc.EncodeReplace(s))
	}
	return s
}

// normalizeNumericBR rewrites a Brazilian-locale decimal ("1.234,56")
// to a period-decimal string ("1234.56"). Values that don't contain a
// comma, or that contain characters other than digits/dots/commas, are
// left untouched (spec.md §4.D).
func normalizeNumericBR(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	if !strings.Contains(s, ",") {
		return s
	}
	stripped := strings.NewReplacer(".", "", ",", "").Replace(s)
	if !isAllDigits(stripped) {
		return s
	}
	return strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), ",", ".")
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// normalizeDate converts an 8-digit YYYYMMDD string into a time.Time,
// or nil for any of the known "no date" placeholders or a parse
// failure (spec.md §3 invariant: "00000000" never reaches storage).
func normalizeDate(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	trimmed := strings.TrimSpace(s)
	switch trimmed {
	case "", " ", "0", "00000000":
		return nil
	}
	if len(trimmed) == 8 && isAllDigits(trimmed) {
		y, err1 := strconv.Atoi(trimmed[0:4])
		m, err2 := strconv.Atoi(trimmed[4:6])
		d, err3 := strconv.Atoi(trimmed[6:8])
		if err1 != nil || err2 != nil || err3 != nil {
			return nil
		}
		t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
		if t.Year() != y || int(t.Month()) != m || t.Day() != d {
			// strconv succeeded but the components don't form a real
			// calendar date (e.g. day 31 in a 30-day month); time.Date
			// normalizes instead of erroring, so check it back out.
			return nil
		}
		return t
	}
	return s
}

// SplitSecondaryCNAE derives the estabelecimento_cnae_sec rows from one
// establishment source row: split the comma-separated secondary-CNAE
// field, trim each code, and drop empty entries (spec.md §4.A, §8
// boundary case).
func SplitSecondaryCNAE(key [3]string, secondaryField string) [][]string {
	parts := strings.Split(secondaryField, ",")
	var rows [][]string
	for _, p := range parts {
		code := strings.TrimSpace(p)
		if code == "" {
			continue
		}
		rows = append(rows, []string{key[0], key[1], key[2], code})
	}
	return rows
}

// EstablishmentFieldIndexes resolves, once per archive, the column
// positions needed to derive estabelecimento_cnae_sec rows from an
// estabelecimento source row. Column-name-to-index resolution must
// happen once per archive, not per row (spec.md §4.A).
type EstablishmentFieldIndexes struct {
	CnpjBasico int
	CnpjOrdem  int
	CnpjDV     int
	CnaeSec    int
}

// ResolveEstablishmentFieldIndexes looks up the field positions from the
// estabelecimento target's declared column order.
func ResolveEstablishmentFieldIndexes(estab catalog.Target) EstablishmentFieldIndexes {
	names := estab.ColumnNames()
	idx := func(name string) int {
		for i, n := range names {
			if n == name {
				return i
			}
		}
		return -1
	}
	return EstablishmentFieldIndexes{
		CnpjBasico: idx("cnpj_basico"),
		CnpjOrdem:  idx("cnpj_ordem"),
		CnpjDV:     idx("cnpj_dv"),
		CnaeSec:    idx("cod_cnae_secundario"),
	}
}
