package client

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDialectFromURL(t *testing.T) {
	cases := []struct {
		raw     string
		dialect string
		wantErr bool
	}{
		{"postgres://u:p@h/db", "postgres", false},
		{"postgresql://u:p@h/db", "postgres", false},
		{"mysql://u:p@h/db", "mysql", false},
		{"oracle://u:p@h/db", "", true},
		{"://", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			dialect, err := DialectFromURL(tc.raw)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.dialect, dialect)
		})
	}
}

func TestMySQLConfigFromURL(t *testing.T) {
	cfg, err := mysqlConfigFromURL("mysql://root:pw@db.internal:3307/inventory?charset=utf8mb4")
	require.NoError(t, err)
	require.Equal(t, "root", cfg.User)
	require.Equal(t, "pw", cfg.Passwd)
	require.Equal(t, "tcp", cfg.Net)
	require.Equal(t, "db.internal:3307", cfg.Addr)
	require.Equal(t, "inventory", cfg.DBName)
	require.True(t, cfg.ParseTime)
	require.Equal(t, "utf8mb4", cfg.Params["charset"])
}

func TestMySQLConfigFromURL_Defaults(t *testing.T) {
	cfg, err := mysqlConfigFromURL("mysql://root@localhost/app")
	require.NoError(t, err)
	require.Equal(t, "localhost:3306", cfg.Addr)
	require.Equal(t, "app", cfg.DBName)
	require.Empty(t, cfg.Passwd)
	require.True(t, cfg.ParseTime)
}
