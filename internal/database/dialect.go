package database

import "fmt"

// Dialect identifies the database engine. It is a closed set: introspection
// operations branch on it explicitly, so each dialect's full behaviour is
// visible at every call site instead of being spread across subclasses.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
	DialectSQLite   Dialect = "sqlite"
)

// Valid reports whether d is one of the supported dialects.
func (d Dialect) Valid() bool {
	switch d {
	case DialectPostgres, DialectMySQL, DialectSQLite:
		return true
	}
	return false
}

// Placeholder returns the bound-parameter placeholder for the 1-based
// position idx. Postgres uses $1, $2, …; MySQL and SQLite use ?.
func (d Dialect) Placeholder(idx int) string {
	if d == DialectPostgres {
		return fmt.Sprintf("$%d", idx)
	}
	return "?"
}
