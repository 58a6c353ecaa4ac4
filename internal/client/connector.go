package client

import (
	"context"
	"database/sql/driver"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// refreshingConnector is the pool's connection-creation hook: every time
// database/sql needs a fresh physical connection it lands here, the
// connection string is re-resolved (refreshing the token if it is near
// expiry), and the dial goes out with current credentials. Resolving once
// at startup would hand stale tokens to long-lived pools.
type refreshingConnector struct {
	raw      string
	resolver *Resolver
	dial     func(dsn string) (driver.Connector, error)
	drv      driver.Driver
}

func newConnector(raw, dialect string, resolver *Resolver) (*refreshingConnector, error) {
	c := &refreshingConnector{raw: raw, resolver: resolver}
	switch dialect {
	case "postgres":
		c.dial = func(dsn string) (driver.Connector, error) {
			return pq.NewConnector(dsn)
		}
		c.drv = &pq.Driver{}
	case "mysql":
		c.dial = func(dsn string) (driver.Connector, error) {
			cfg, err := mysqlConfigFromURL(dsn)
			if err != nil {
				return nil, err
			}
			return mysql.NewConnector(cfg)
		}
		c.drv = &mysql.MySQLDriver{}
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
	return c, nil
}

func (c *refreshingConnector) Connect(ctx context.Context) (driver.Conn, error) {
	dsn, err := c.resolver.Resolve(ctx, c.raw)
	if err != nil {
		return nil, err
	}
	inner, err := c.dial(dsn)
	if err != nil {
		return nil, err
	}
	return inner.Connect(ctx)
}

func (c *refreshingConnector) Driver() driver.Driver { return c.drv }
