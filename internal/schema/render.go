package schema

import (
	"fmt"
	"strings"
)

// Render emits one table per block:
//
//	users:
//	    id: primary key, INTEGER, autoincrement
//	    email: VARCHAR(255), nullable
//
//	    Relationships:
//	      id -> orders.user_id
func Render(descriptors []Descriptor) string {
	blocks := make([]string, 0, len(descriptors))
	for _, d := range descriptors {
		blocks = append(blocks, renderTable(d))
	}
	return strings.Join(blocks, "\n")
}

func renderTable(d Descriptor) string {
	lines := []string{d.Table + ":"}

	for _, col := range d.Columns {
		var parts []string
		if d.PrimaryKey[col.Name] {
			parts = append(parts, "primary key")
		}
		parts = append(parts, col.Type)
		if col.Nullable {
			parts = append(parts, "nullable")
		}
		if col.Default != "" {
			parts = append(parts, "default="+col.Default)
		}
		if col.AutoIncrement {
			parts = append(parts, "autoincrement")
		}
		lines = append(lines, fmt.Sprintf("    %s: %s", col.Name, strings.Join(parts, ", ")))
	}

	if len(d.Relationships) > 0 {
		lines = append(lines, "", "    Relationships:")
		for _, fk := range d.Relationships {
			lines = append(lines, fmt.Sprintf("      %s -> %s.%s", fk.Column, fk.RefTable, fk.RefColumn))
		}
	}

	return strings.Join(lines, "\n")
}
