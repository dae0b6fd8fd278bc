// Package catalog is the schema authority for the CNPJ ingestion
// pipeline: it is the single source of truth for target tables, their
// columns, keys and indexes, and for the mapping from an archive's
// filename stem to the tables it feeds. Ported column-for-column from
// the original project's db/schema.py, which this package's source
// comment block treats as the canonical data (see SPEC_FULL.md §11).
package catalog

import (
	"path/filepath"
	"strings"
)

// Column is one column of a Target: its name and its SQL type
// declaration (including nullability and, for small reference tables,
// an inline PRIMARY KEY).
type Column struct {
	Name string
	Type string
}

// ForeignKey references another target's columns by name.
type ForeignKey struct {
	Columns    []string
	RefTable   string
	RefColumns []string
}

// Index is a non-unique secondary index on one or more columns.
type Index struct {
	Name    string
	Columns []string
}

// Target is one table this archive family feeds: its columns, optional
// composite primary key (for tables whose PK is deferred to the repair
// phase rather than declared inline), foreign keys and indexes.
type Target struct {
	Name           string
	SourceStem     string
	Columns        []Column
	PrimaryKey     []string
	ForeignKeys    []ForeignKey
	Indexes        []Index
	// Derived marks a target whose rows are not the source archive's
	// rows verbatim but are produced by a per-row derivation rule (the
	// establishments archive's secondary-CNAE split).
	Derived bool
}

// ColumnNames returns the target's column names in declaration order.
func (t Target) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// DateColumns returns the indexes (within ColumnNames order) of columns
// declared with SQL type DATE — the set normalize-dates transforms act on.
func (t Target) DateColumns() []int {
	var idx []int
	for i, c := range t.Columns {
		if strings.HasPrefix(strings.ToUpper(c.Type), "DATE") {
			idx = append(idx, i)
		}
	}
	return idx
}

// Catalog is the full ordered set of target tables.
type Catalog struct {
	targets []Target
}

// New returns the standard CNPJ catalog.
func New() *Catalog {
	return &Catalog{targets: schemaTargets}
}

// TablesInOrder returns every target table, reference tables first, in
// the dependency order the builder creates and indexes them in.
func (c *Catalog) TablesInOrder() []Target {
	out := make([]Target, len(c.targets))
	copy(out, c.targets)
	return out
}

// stem strips a trailing run of digits from an archive's base filename
// (without extension), e.g. "Estabelecimentos3" -> "Estabelecimentos".
func stem(archiveFilename string) string {
	base := filepath.Base(archiveFilename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimRight(base, "0123456789")
}

// TargetsForArchive resolves an archive's target tables by
// case-insensitively comparing its stem (trailing digits stripped)
// against each target's SourceStem. The Establishments archive matches
// both "estabelecimento" and "estabelecimento_cnae_sec".
func (c *Catalog) TargetsForArchive(archiveFilename string) []Target {
	s := strings.ToLower(stem(archiveFilename))
	var out []Target
	for _, t := range c.targets {
		if strings.ToLower(t.SourceStem) == s {
			out = append(out, t)
		}
	}
	return out
}

// FKList returns every (table, foreign key) pair across the catalog, in
// declaration order — the order enableForeignKeys applies them in.
func (c *Catalog) FKList() []struct {
	Table string
	FK    ForeignKey
} {
	var out []struct {
		Table string
		FK    ForeignKey
	}
	for _, t := range c.targets {
		for _, fk := range t.ForeignKeys {
			out = append(out, struct {
				Table string
				FK    ForeignKey
			}{Table: t.Name, FK: fk})
		}
	}
	return out
}

// IndexList returns every (table, index) pair across the catalog, in
// declaration order.
func (c *Catalog) IndexList() []struct {
	Table string
	Index Index
} {
	var out []struct {
		Table string
		Index Index
	}
	for _, t := range c.targets {
		for _, idx := range t.Indexes {
			out = append(out, struct {
				Table string
				Index Index
			}{Table: t.Name, Index: idx})
		}
	}
	return out
}

// Table looks up a single target by name.
func (c *Catalog) Table(name string) (Target, bool) {
	for _, t := range c.targets {
		if t.Name == name {
			return t, true
		}
	}
	return Target{}, false
}
