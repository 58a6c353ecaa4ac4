package query

import (
	"context"
	"database/sql"
	"strings"

	"sqlbridge-mcp/internal/client"
	"sqlbridge-mcp/internal/logger"
)

// ExecutionError tags a failed statement. The driver's message is preserved
// verbatim; execution errors are never retried.
type ExecutionError struct {
	Err error
}

func (e *ExecutionError) Error() string { return e.Err.Error() }
func (e *ExecutionError) Unwrap() error { return e.Err }

// Result is one statement's outcome: either a row set (HasRows) or an
// affected-row count.
type Result struct {
	Columns      []string
	Rows         [][]any
	RowsAffected int64
	HasRows      bool
}

// Executor runs a single SQL statement under autocommit. No transactions
// span tool invocations.
type Executor struct {
	db *client.DBClient
}

func NewExecutor(db *client.DBClient) *Executor {
	return &Executor{db: db}
}

// Execute binds the optional named params and runs the statement. The
// executor has no read-only restriction; callers own the intent.
func (e *Executor) Execute(ctx context.Context, query string, params map[string]any) (*Result, error) {
	if params == nil {
		params = map[string]any{}
	}
	stmt, args, err := ExpandNamed(query, params, e.db.Dialect())
	if err != nil {
		return nil, &ExecutionError{Err: err}
	}

	if returnsRows(stmt) {
		return e.queryRows(ctx, stmt, args)
	}

	res, err := e.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		logger.LogDatabaseOperation("EXEC", query, 0, err)
		return nil, &ExecutionError{Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		affected = 0
	}
	logger.LogDatabaseOperation("EXEC", query, affected, nil)
	return &Result{RowsAffected: affected}, nil
}

func (e *Executor) queryRows(ctx context.Context, stmt string, args []any) (*Result, error) {
	rows, err := e.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		logger.LogDatabaseOperation("QUERY", stmt, 0, err)
		return nil, &ExecutionError{Err: err}
	}
	defer rows.Close()

	result, err := collectRows(rows)
	if err != nil {
		logger.LogDatabaseOperation("QUERY", stmt, 0, err)
		return nil, &ExecutionError{Err: err}
	}
	logger.LogDatabaseOperation("QUERY", stmt, int64(len(result.Rows)), nil)
	return result, nil
}

func collectRows(rows *sql.Rows) (*Result, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &Result{Columns: columns, HasRows: true}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		result.Rows = append(result.Rows, values)
	}
	return result, rows.Err()
}

// returnsRows decides between the query and exec paths by the statement's
// leading keyword, skipping comments. database/sql cannot tell us
// afterwards, and running the statement twice is not an option.
func returnsRows(stmt string) bool {
	s := strings.TrimSpace(stmt)
	for {
		switch {
		case strings.HasPrefix(s, "--"):
			if i := strings.Index(s, "\n"); i >= 0 {
				s = strings.TrimSpace(s[i+1:])
				continue
			}
			return false
		case strings.HasPrefix(s, "/*"):
			if i := strings.Index(s, "*/"); i >= 0 {
				s = strings.TrimSpace(s[i+2:])
				continue
			}
			return false
		}
		break
	}

	s = strings.TrimLeft(s, "( \t\r\n")
	word := strings.ToUpper(s)
	if i := strings.IndexAny(word, " \t\r\n(;"); i >= 0 {
		word = word[:i]
	}
	switch word {
	case "SELECT", "WITH", "SHOW", "EXPLAIN", "DESCRIBE", "DESC", "VALUES", "TABLE":
		return true
	}
	return false
}
