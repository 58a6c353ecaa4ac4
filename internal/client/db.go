package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"sqlbridge-mcp/internal/config"
	"sqlbridge-mcp/internal/logger"
)

const pingTimeout = 10 * time.Second

// DBClient owns the connection pool. New physical connections go through
// the refreshing connector, so token substitution happens per connection,
// never once at startup.
type DBClient struct {
	mu       sync.Mutex
	db       *sql.DB
	raw      string
	dialect  string
	resolver *Resolver
	opts     config.EngineOptions
}

func NewDBClient(ctx context.Context, rawURL string, resolver *Resolver, opts config.EngineOptions) (*DBClient, error) {
	if err := ValidateMarkerPlacement(rawURL); err != nil {
		return nil, err
	}
	dialect, err := DialectFromURL(rawURL)
	if err != nil {
		return nil, err
	}

	c := &DBClient{
		raw:      rawURL,
		dialect:  dialect,
		resolver: resolver,
		opts:     opts,
	}
	c.db, err = c.open()
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := c.db.PingContext(pingCtx); err != nil {
		c.db.Close()
		return nil, fmt.Errorf("connect %s: %w", dialect, err)
	}
	return c, nil
}

func (c *DBClient) open() (*sql.DB, error) {
	connector, err := newConnector(c.raw, c.dialect, c.resolver)
	if err != nil {
		return nil, err
	}
	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(c.opts.PoolSize + c.opts.MaxOverflow)
	db.SetMaxIdleConns(c.opts.PoolSize)
	db.SetConnMaxLifetime(time.Duration(c.opts.PoolRecycle) * time.Second)
	return db, nil
}

func (c *DBClient) current() *sql.DB {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db
}

// Ensure verifies the pool before a tool call when pre-ping is enabled.
// A failed ping rebuilds the pool once with a fresh connector, which covers
// database restarts and dropped networks on long-lived processes. Token
// fetch failures are not retried; they surface as connection errors.
func (c *DBClient) Ensure(ctx context.Context) error {
	if !c.opts.PrePing {
		return nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	firstErr := c.current().PingContext(pingCtx)
	if firstErr == nil {
		return nil
	}
	if isAuthError(firstErr) {
		return firstErr
	}
	logger.Warn("connection check failed, rebuilding pool", "error", firstErr.Error())

	c.mu.Lock()
	old := c.db
	fresh, err := c.open()
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.db = fresh
	c.mu.Unlock()
	old.Close()

	retryCtx, cancelRetry := context.WithTimeout(ctx, pingTimeout)
	defer cancelRetry()
	if err := fresh.PingContext(retryCtx); err != nil {
		return fmt.Errorf("connect %s: %w", c.dialect, err)
	}
	return nil
}

func isAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

func (c *DBClient) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.current().QueryContext(ctx, query, args...)
}

func (c *DBClient) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.current().ExecContext(ctx, query, args...)
}

func (c *DBClient) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return c.current().QueryRowContext(ctx, query, args...)
}

func (c *DBClient) Dialect() string { return c.dialect }

func (c *DBClient) Close() error {
	return c.current().Close()
}

// Info builds the one-line connection banner embedded in tool descriptions,
// e.g. "Connected to postgres version 16.3 database shop on db.example.com
// as user app.". The password segment never appears.
func (c *DBClient) Info(ctx context.Context) (string, error) {
	versionQuery := "SELECT version()"
	if c.dialect == "mysql" {
		versionQuery = "SELECT VERSION()"
	}

	var version string
	if err := c.QueryRowContext(ctx, versionQuery).Scan(&version); err != nil {
		return "", fmt.Errorf("query server version: %w", err)
	}
	if len(version) > 60 {
		version = version[:60]
	}

	u, err := url.Parse(c.raw)
	if err != nil {
		return "", fmt.Errorf("parse connection url: %w", err)
	}

	banner := fmt.Sprintf("Connected to %s version %s", c.dialect, version)
	if db := trimLeadingSlash(u.Path); db != "" {
		banner += " database " + db
	}
	if u.Hostname() != "" {
		banner += " on " + u.Hostname()
	}
	if u.User != nil && u.User.Username() != "" {
		banner += " as user " + u.User.Username()
	}
	return banner + ".", nil
}

func trimLeadingSlash(s string) string {
	if len(s) > 0 && s[0] == '/' {
		return s[1:]
	}
	return s
}
