package schema

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// UnknownTableError reports a single requested table missing from the
// catalog. Describe collects these instead of aborting the whole batch.
type UnknownTableError struct {
	Table string
}

func (e *UnknownTableError) Error() string {
	return fmt.Sprintf("unknown table: %s", e.Table)
}

// Descriptor is the schema of one table as handed to the renderer.
type Descriptor struct {
	Table         string
	Columns       []Column
	PrimaryKey    map[string]bool
	Relationships []ForeignKey
}

// Introspector answers the table-listing and schema tools on top of an
// abstract catalog.
type Introspector struct {
	catalog CatalogReader
}

func NewIntrospector(catalog CatalogReader) *Introspector {
	return &Introspector{catalog: catalog}
}

// ListTables returns all table names in catalog order.
func (in *Introspector) ListTables(ctx context.Context) ([]string, error) {
	return in.catalog.TableNames(ctx)
}

// FilterTables returns the table names containing q, case-insensitively,
// preserving catalog order.
func (in *Introspector) FilterTables(ctx context.Context, q string) ([]string, error) {
	names, err := in.catalog.TableNames(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(q)
	var matched []string
	for _, name := range names {
		if strings.Contains(strings.ToLower(name), needle) {
			matched = append(matched, name)
		}
	}
	return matched, nil
}

// Describe builds descriptors for the requested tables. Unknown names are
// collected and reported individually; known tables still succeed. The
// returned error is reserved for catalog failures.
func (in *Introspector) Describe(ctx context.Context, tables []string) ([]Descriptor, []*UnknownTableError, error) {
	known, err := in.catalog.TableNames(ctx)
	if err != nil {
		return nil, nil, err
	}
	exists := make(map[string]bool, len(known))
	for _, name := range known {
		exists[name] = true
	}

	var descriptors []Descriptor
	var unknown []*UnknownTableError
	for _, table := range tables {
		if !exists[table] {
			unknown = append(unknown, &UnknownTableError{Table: table})
			continue
		}
		d, err := in.describeOne(ctx, table)
		if err != nil {
			return nil, nil, err
		}
		descriptors = append(descriptors, d)
	}
	return descriptors, unknown, nil
}

func (in *Introspector) describeOne(ctx context.Context, table string) (Descriptor, error) {
	cols, err := in.catalog.Columns(ctx, table)
	if err != nil {
		return Descriptor{}, err
	}
	pk, err := in.catalog.PrimaryKey(ctx, table)
	if err != nil {
		return Descriptor{}, err
	}
	fks, err := in.catalog.ForeignKeys(ctx, table)
	if err != nil {
		return Descriptor{}, err
	}

	pkSet := make(map[string]bool, len(pk))
	for _, name := range pk {
		pkSet[name] = true
	}

	return Descriptor{
		Table:         table,
		Columns:       cols,
		PrimaryKey:    pkSet,
		Relationships: dedupeEdges(fks),
	}, nil
}

// dedupeEdges drops duplicate relationship edges (some catalogs report an
// edge once per matching constraint row) and sorts the remainder by local
// column, then remote table, then remote column for deterministic output.
func dedupeEdges(fks []ForeignKey) []ForeignKey {
	seen := make(map[ForeignKey]bool, len(fks))
	var out []ForeignKey
	for _, fk := range fks {
		if seen[fk] {
			continue
		}
		seen[fk] = true
		out = append(out, fk)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Column != out[j].Column {
			return out[i].Column < out[j].Column
		}
		if out[i].RefTable != out[j].RefTable {
			return out[i].RefTable < out[j].RefTable
		}
		return out[i].RefColumn < out[j].RefColumn
	})
	return out
}
