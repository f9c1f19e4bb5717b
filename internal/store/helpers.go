package store

import (
	"database/sql"
	"strings"
)

// placeholderList returns "?,?,?" for n placeholders.
func placeholderList(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}

// stringsToArgs converts []string to []any for use with database/sql.
func stringsToArgs(vals []string) []any {
	args := make([]any, len(vals))
	for i, v := range vals {
		args[i] = v
	}
	return args
}

// nullable maps "" to SQL NULL on write.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// text unwraps a nullable TEXT column to "".
func text(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}
