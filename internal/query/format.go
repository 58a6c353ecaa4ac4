package query

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sqlbridge-mcp/internal/logger"
)

// Formatter renders a Result as a vertical text block sized for an LLM
// context window. Truncation governs only the in-band text; when SpillDir
// is set the complete result is always written to disk first.
type Formatter struct {
	MaxChars int
	SpillDir string
}

// Format renders the result. Statements without a row set render as a
// success line with the affected count.
func (f *Formatter) Format(res *Result) (string, error) {
	if !res.HasRows {
		return fmt.Sprintf("Success: %d rows affected", res.RowsAffected), nil
	}

	total := len(res.Rows)
	if total == 0 {
		return "Result: 0 rows", nil
	}

	// Spill before rendering: full data must exist on disk regardless of
	// what the in-band text ends up showing.
	var spillPath string
	if f.SpillDir != "" {
		path, err := f.spill(res)
		if err != nil {
			return "", fmt.Errorf("write full result set: %w", err)
		}
		spillPath = path
	}

	var b strings.Builder
	rendered := 0
	for i, row := range res.Rows {
		b.WriteString(fmt.Sprintf("%d. row\n", i+1))
		for col, val := range row {
			b.WriteString(res.Columns[col])
			b.WriteString(": ")
			b.WriteString(FormatValue(val))
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
		rendered++
		// Truncation is row-granular: a row already written goes out whole,
		// even when it alone blows past the budget.
		if b.Len() > f.MaxChars {
			break
		}
	}

	if omitted := total - rendered; omitted > 0 {
		b.WriteString(fmt.Sprintf("(output truncated: %d of %d rows omitted)\n", omitted, total))
	}
	if spillPath != "" {
		b.WriteString(fmt.Sprintf("Full result set: %s (format: [[row1_value1, row1_value2, ...], ...])\n", spillPath))
	}
	b.WriteString(fmt.Sprintf("Result: %d rows", total))
	return b.String(), nil
}

// FormatValue renders one cell. NULL is literal, times are ISO-8601,
// binary is passed through as text, everything else takes its default
// string form.
func FormatValue(val any) string {
	switch v := val.(type) {
	case nil:
		return "NULL"
	case time.Time:
		return v.Format(time.RFC3339)
	case []byte:
		return string(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// spill writes the complete result as a JSON array of rows, each row an
// array of formatted values. The file name is the content hash, so
// identical results share a file.
func (f *Formatter) spill(res *Result) (string, error) {
	data := make([][]string, len(res.Rows))
	for i, row := range res.Rows {
		cells := make([]string, len(row))
		for j, val := range row {
			cells[j] = FormatValue(val)
		}
		data[i] = cells
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(payload)
	path := filepath.Join(f.SpillDir, hex.EncodeToString(sum[:])+".json")
	if err := os.WriteFile(path, payload, 0644); err != nil {
		return "", err
	}
	logger.Debug("full result set written", "path", path, "rows", len(res.Rows))
	return path, nil
}
