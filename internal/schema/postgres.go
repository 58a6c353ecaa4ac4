package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

type postgresCatalog struct {
	db Querier
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (c *postgresCatalog) TableNames(ctx context.Context) ([]string, error) {
	query, args, err := psql.
		Select("table_name").
		From("information_schema.tables").
		Where(sq.Expr("table_schema = current_schema()")).
		Where(sq.Eq{"table_type": "BASE TABLE"}).
		OrderBy("table_name").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (c *postgresCatalog) Columns(ctx context.Context, table string) ([]Column, error) {
	query, args, err := psql.
		Select("column_name", "data_type", "is_nullable", "COALESCE(column_default, '')", "is_identity").
		From("information_schema.columns").
		Where(sq.Expr("table_schema = current_schema()")).
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
		var nullable, identity string
		if err := rows.Scan(&col.Name, &col.Type, &nullable, &col.Default, &identity); err != nil {
			return nil, err
		}
		col.Type = strings.ToUpper(col.Type)
		col.Nullable = nullable == "YES"
		// Serial columns surface as nextval() defaults rather than identity.
		col.AutoIncrement = identity == "YES" || strings.HasPrefix(col.Default, "nextval(")
		if col.AutoIncrement {
			col.Default = ""
		}
		cols = append(cols, col)
	}
	return cols, rows.Err()
}

func (c *postgresCatalog) PrimaryKey(ctx context.Context, table string) ([]string, error) {
	query, args, err := psql.
		Select("ku.column_name").
		From("information_schema.table_constraints tc").
		Join("information_schema.key_column_usage ku ON tc.constraint_name = ku.constraint_name AND tc.table_schema = ku.table_schema").
		Where(sq.Expr("tc.table_schema = current_schema()")).
		Where(sq.Eq{"tc.constraint_type": "PRIMARY KEY", "tc.table_name": table}).
		OrderBy("ku.ordinal_position").
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanStrings(ctx, c.db, query, args)
}

func (c *postgresCatalog) ForeignKeys(ctx context.Context, table string) ([]ForeignKey, error) {
	query, args, err := psql.
		Select("kcu.column_name", "ccu.table_name", "ccu.column_name").
		From("information_schema.table_constraints tc").
		Join("information_schema.key_column_usage kcu ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema").
		Join("information_schema.constraint_column_usage ccu ON tc.constraint_name = ccu.constraint_name AND tc.table_schema = ccu.table_schema").
		Where(sq.Expr("tc.table_schema = current_schema()")).
		Where(sq.Eq{"tc.constraint_type": "FOREIGN KEY", "tc.table_name": table}).
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

func scanStrings(ctx context.Context, db Querier, query string, args []any) ([]string, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s sql.NullString
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		if s.Valid {
			out = append(out, s.String)
		}
	}
	return out, rows.Err()
}
