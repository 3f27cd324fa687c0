package postgres

import "strings"

// prefixColumns rewrites a comma-separated column list so every column is
// qualified with table, used when a query joins multiple tables that share
// column names.
func prefixColumns(table, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = table + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
