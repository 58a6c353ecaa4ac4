package client

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// DialectFromURL maps the connection URL scheme to a supported dialect.
func DialectFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse connection url: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "postgres", "postgresql":
		return "postgres", nil
	case "mysql":
		return "mysql", nil
	default:
		return "", fmt.Errorf("unsupported database scheme %q (postgres and mysql are supported)", u.Scheme)
	}
}

// mysqlConfigFromURL translates a URL-form connection string into the
// go-sql-driver config. ParseTime is forced on so DATETIME columns scan as
// time.Time and format as ISO-8601 downstream.
func mysqlConfigFromURL(raw string) (*mysql.Config, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse mysql url: %w", err)
	}

	cfg := mysql.NewConfig()
	if u.User != nil {
		cfg.User = u.User.Username()
		cfg.Passwd, _ = u.User.Password()
	}
	port := u.Port()
	if port == "" {
		port = "3306"
	}
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(u.Hostname(), port)
	cfg.DBName = strings.TrimPrefix(u.Path, "/")
	cfg.ParseTime = true

	if cfg.Params == nil {
		cfg.Params = map[string]string{}
	}
	for key, values := range u.Query() {
		if key == "parseTime" || len(values) == 0 {
			continue
		}
		cfg.Params[key] = values[0]
	}
	return cfg, nil
}
