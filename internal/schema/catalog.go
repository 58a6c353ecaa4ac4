// Package schema reads database catalog metadata and renders it for an AI
// client.
package schema

import (
	"context"
	"database/sql"
	"fmt"
)

// Column describes one table column in declaration order.
type Column struct {
	Name          string
	Type          string
	Nullable      bool
	Default       string
	AutoIncrement bool
}

// ForeignKey is one relationship edge: local column -> remote table.column.
type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
}

// Querier is the slice of the pool the catalog readers need.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// CatalogReader abstracts per-dialect catalog access so the introspector
// never depends on a specific driver.
type CatalogReader interface {
	// TableNames returns table names in catalog order.
	TableNames(ctx context.Context) ([]string, error)

	// Columns returns the table's columns in declaration order.
	Columns(ctx context.Context, table string) ([]Column, error)

	// PrimaryKey returns the names of the primary key columns.
	PrimaryKey(ctx context.Context, table string) ([]string, error)

	// ForeignKeys returns relationship edges as the catalog reports them;
	// duplicates are possible and handled by the caller.
	ForeignKeys(ctx context.Context, table string) ([]ForeignKey, error)
}

// NewCatalogReader picks the reader for the connected dialect.
func NewCatalogReader(dialect string, db Querier) (CatalogReader, error) {
	switch dialect {
	case "postgres":
		return &postgresCatalog{db: db}, nil
	case "mysql":
		return &mysqlCatalog{db: db}, nil
	default:
		return nil, fmt.Errorf("no catalog reader for dialect %q", dialect)
	}
}
