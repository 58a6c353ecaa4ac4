package schema

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

type mysqlCatalog struct {
	db Querier
}

var mstmt = sq.StatementBuilder.PlaceholderFormat(sq.Question)

func (c *mysqlCatalog) TableNames(ctx context.Context) ([]string, error) {
	query, args, err := mstmt.
		Select("table_name").
		From("information_schema.tables").
		Where(sq.Expr("table_schema = DATABASE()")).
		Where(sq.Eq{"table_type": "BASE TABLE"}).
		OrderBy("table_name").
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanStrings(ctx, c.db, query, args)
}

func (c *mysqlCatalog) Columns(ctx context.Context, table string) ([]Column, error) {
	query, args, err := mstmt.
		Select("column_name", "column_type", "is_nullable", "COALESCE(column_default, '')", "extra").
		From("information_schema.columns").
		Where(sq.Expr("table_schema = DATABASE()")).
		Where(sq.Eq{"table_name": table}).
		OrderBy("ordinal_position").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", table, err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var col Column
		var nullable, extra string
		if err := rows.Scan(&col.Name, &col.Type, &nullable, &col.Default, &extra); err != nil {
			return nil, err
		}
		col.Type = strings.ToUpper(col.Type)
		col.Nullable = nullable == "YES"
		col.AutoIncrement = strings.Contains(strings.ToLower(extra), "auto_increment")
		cols = append(cols, col)
	}
	return cols, rows.Err()
}

func (c *mysqlCatalog) PrimaryKey(ctx context.Context, table string) ([]string, error) {
	query, args, err := mstmt.
		Select("column_name").
		From("information_schema.key_column_usage").
		Where(sq.Expr("table_schema = DATABASE()")).
		Where(sq.Eq{"table_name": table, "constraint_name": "PRIMARY"}).
		OrderBy("ordinal_position").
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanStrings(ctx, c.db, query, args)
}

func (c *mysqlCatalog) ForeignKeys(ctx context.Context, table string) ([]ForeignKey, error) {
	query, args, err := mstmt.
		Select("column_name", "referenced_table_name", "referenced_column_name").
		From("information_schema.key_column_usage").
		Where(sq.Expr("table_schema = DATABASE()")).
		Where(sq.Eq{"table_name": table}).
		Where(sq.Expr("referenced_table_name IS NOT NULL")).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("foreign keys of %s: %w", table, err)
	}
	defer rows.Close()

	var fks []ForeignKey
	for rows.Next() {
		var fk ForeignKey
		if err := rows.Scan(&fk.Column, &fk.RefTable, &fk.RefColumn); err != nil {
			return nil, err
		}
		fks = append(fks, fk)
	}
	return fks, rows.Err()
}
