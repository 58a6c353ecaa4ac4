package query

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func rowsResult(columns []string, rows ...[]any) *Result {
	return &Result{Columns: columns, Rows: rows, HasRows: true}
}

func TestFormat_ExecResult(t *testing.T) {
	f := &Formatter{MaxChars: 4000}
	out, err := f.Format(&Result{RowsAffected: 3})
	require.NoError(t, err)
	require.Equal(t, "Success: 3 rows affected", out)
}

func TestFormat_ZeroRows(t *testing.T) {
	f := &Formatter{MaxChars: 4000}
	out, err := f.Format(rowsResult([]string{"id", "name"}))
	require.NoError(t, err)
	require.Equal(t, "Result: 0 rows", out)
}

func TestFormat_VerticalBlocks(t *testing.T) {
	ts := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	f := &Formatter{MaxChars: 4000}
	out, err := f.Format(rowsResult(
		[]string{"id", "name", "deleted_at", "payload"},
		[]any{int64(1), "alice", nil, []byte("blob")},
		[]any{int64(2), "bob", ts, nil},
	))
	require.NoError(t, err)

	want := "1. row\n" +
		"id: 1\n" +
		"name: alice\n" +
		"deleted_at: NULL\n" +
		"payload: blob\n" +
		"\n" +
		"2. row\n" +
		"id: 2\n" +
		"name: bob\n" +
		"deleted_at: 2026-01-02T15:04:05Z\n" +
		"payload: NULL\n" +
		"\n" +
		"Result: 2 rows"
	require.Equal(t, want, out)
}

func TestFormat_RowGranularTruncation(t *testing.T) {
	f := &Formatter{MaxChars: 30}
	out, err := f.Format(rowsResult(
		[]string{"name"},
		[]any{"first-row-is-long-enough-to-exceed-the-budget"},
		[]any{"second"},
		[]any{"third"},
	))
	require.NoError(t, err)

	// The first row blows past MaxChars on its own but still goes out whole.
	require.Contains(t, out, "name: first-row-is-long-enough-to-exceed-the-budget")
	require.NotContains(t, out, "second")
	require.NotContains(t, out, "third")
	require.Contains(t, out, "(output truncated: 2 of 3 rows omitted)")
	require.True(t, strings.HasSuffix(out, "Result: 3 rows"))
}

func TestFormat_NoTruncationNoNotice(t *testing.T) {
	f := &Formatter{MaxChars: 4000}
	out, err := f.Format(rowsResult([]string{"id"}, []any{1}))
	require.NoError(t, err)
	require.NotContains(t, out, "output truncated")
	require.True(t, strings.HasSuffix(out, "Result: 1 rows"))
}

func TestFormat_SpillAlwaysWritesFullData(t *testing.T) {
	dir := t.TempDir()
	// Generous budget: the in-band text is not truncated, the spill file is
	// written regardless.
	f := &Formatter{MaxChars: 4000, SpillDir: dir}
	out, err := f.Format(rowsResult(
		[]string{"id", "name"},
		[]any{int64(1), "alice"},
		[]any{int64(2), nil},
	))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	path := filepath.Join(dir, entries[0].Name())
	require.Contains(t, out, "Full result set: "+path)

	payload, err := os.ReadFile(path)
	require.NoError(t, err)
	var data [][]string
	require.NoError(t, json.Unmarshal(payload, &data))
	require.Equal(t, [][]string{{"1", "alice"}, {"2", "NULL"}}, data)
}

func TestFormat_SpillHoldsRowsBeyondTruncation(t *testing.T) {
	dir := t.TempDir()
	f := &Formatter{MaxChars: 10, SpillDir: dir}
	out, err := f.Format(rowsResult(
		[]string{"v"},
		[]any{"one"}, []any{"two"}, []any{"three"},
	))
	require.NoError(t, err)
	require.Contains(t, out, "output truncated")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	payload, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	var data [][]string
	require.NoError(t, json.Unmarshal(payload, &data))
	require.Len(t, data, 3)
}

func TestFormatValue(t *testing.T) {
	ts := time.Date(2026, 6, 1, 8, 30, 0, 0, time.UTC)
	cases := []struct {
		in   any
		want string
	}{
		{nil, "NULL"},
		{ts, "2026-06-01T08:30:00Z"},
		{[]byte{0x68, 0x69}, "hi"},
		{int64(-5), "-5"},
		{3.14, "3.14"},
		{true, "true"},
		{"plain", "plain"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, FormatValue(tc.in))
	}
}
