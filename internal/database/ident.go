package database

import "strings"

// QuoteIdent wraps a SQL identifier in double-quotes (ANSI standard),
// doubling any embedded quote characters. This safely handles reserved
// words, mixed-case names, and hostile input in positions that cannot be
// bound as parameters, notably SQLite PRAGMA arguments, where table names
// must appear in the statement text itself.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
