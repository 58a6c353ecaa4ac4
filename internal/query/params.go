// Package query executes SQL statements and formats their results.
package query

import (
	"fmt"
	"strconv"
	"strings"
)

// ExpandNamed rewrites :name placeholders into the dialect's positional
// form ($1.. for postgres, ? for mysql) and builds the matching argument
// list. Placeholders inside string literals, quoted identifiers, and
// comments are left alone, as are postgres :: casts. Every occurrence
// binds its own positional slot, so a name may repeat. Params with no
// placeholder are ignored; a placeholder with no param is an error.
func ExpandNamed(query string, params map[string]any, dialect string) (string, []any, error) {
	var b strings.Builder
	var args []any

	appendPlaceholder := func() {
		if dialect == "postgres" {
			b.WriteString("$" + strconv.Itoa(len(args)))
		} else {
			b.WriteByte('?')
		}
	}

	runes := []rune(query)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\'':
			i = copyQuoted(&b, runes, i, '\'')
		case r == '"':
			i = copyQuoted(&b, runes, i, '"')
		case r == '`':
			i = copyQuoted(&b, runes, i, '`')
		case r == '-' && i+1 < len(runes) && runes[i+1] == '-':
			i = copyLineComment(&b, runes, i)
		case r == '/' && i+1 < len(runes) && runes[i+1] == '*':
			i = copyBlockComment(&b, runes, i)
		case r == ':':
			if i+1 < len(runes) && runes[i+1] == ':' {
				// postgres cast
				b.WriteString("::")
				i++
				continue
			}
			start := i + 1
			end := start
			for end < len(runes) && isNameRune(runes[end]) {
				end++
			}
			if end == start {
				b.WriteRune(r)
				continue
			}
			name := string(runes[start:end])
			val, ok := params[name]
			if !ok {
				return "", nil, fmt.Errorf("query references parameter :%s but params does not define it", name)
			}
			args = append(args, val)
			appendPlaceholder()
			i = end - 1
		default:
			b.WriteRune(r)
		}
	}

	return b.String(), args, nil
}

func isNameRune(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}

// copyQuoted copies a quoted region verbatim, honoring doubled-quote
// escapes. Returns the index of the closing quote (or the last rune).
func copyQuoted(b *strings.Builder, runes []rune, start int, quote rune) int {
	b.WriteRune(runes[start])
	for i := start + 1; i < len(runes); i++ {
		b.WriteRune(runes[i])
		if runes[i] == quote {
			if i+1 < len(runes) && runes[i+1] == quote {
				b.WriteRune(runes[i+1])
				i++
				continue
			}
			return i
		}
	}
	return len(runes) - 1
}

func copyLineComment(b *strings.Builder, runes []rune, start int) int {
	for i := start; i < len(runes); i++ {
		b.WriteRune(runes[i])
		if runes[i] == '\n' {
			return i
		}
	}
	return len(runes) - 1
}

func copyBlockComment(b *strings.Builder, runes []rune, start int) int {
	for i := start; i < len(runes); i++ {
		b.WriteRune(runes[i])
		if runes[i] == '/' && i > start+1 && runes[i-1] == '*' {
			return i
		}
	}
	return len(runes) - 1
}
