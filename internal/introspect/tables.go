package introspect

import (
	"context"

	"github.com/kweron/dbscope/internal/database"
	"github.com/kweron/dbscope/internal/errs"
)

// ListTables returns every user-owned table, excluding each engine's
// system/catalog tables. Schema is populated for the catalog dialects and
// nil for SQLite.
func ListTables(ctx context.Context, r database.Reader, d database.Dialect) ([]TableInfo, error) {
	switch d {
	case database.DialectPostgres:
		const q = `
			SELECT table_name, table_schema
			FROM information_schema.tables
			WHERE table_schema NOT IN ('pg_catalog', 'information_schema')
			  AND table_type = 'BASE TABLE'
			ORDER BY table_name`
		return listCatalogTables(ctx, r, q)

	case database.DialectMySQL:
		// Scoped by database identity rather than schema exclusion.
		const q = `
			SELECT table_name, table_schema
			FROM information_schema.tables
			WHERE table_schema = DATABASE()
			  AND table_type = 'BASE TABLE'
			ORDER BY table_name`
		return listCatalogTables(ctx, r, q)

	case database.DialectSQLite:
		const q = `
			SELECT name
			FROM sqlite_master
			WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
			ORDER BY name`

		rows, err := r.Query(ctx, q)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var tables []TableInfo
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to scan table name", err)
			}
			tables = append(tables, TableInfo{Name: name})
		}
		if err := rows.Err(); err != nil {
			return nil, errs.Wrap(errs.ErrKindQueryFailed, "error iterating tables", err)
		}
		return tables, nil

	default:
		return nil, errs.New(errs.ErrKindInvalidInput, "unsupported dialect")
	}
}

// listCatalogTables runs an information_schema table listing that returns
// (table_name, table_schema) pairs.
func listCatalogTables(ctx context.Context, r database.Reader, q string) ([]TableInfo, error) {
	rows, err := r.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []TableInfo
	for rows.Next() {
		var name, schema string
		if err := rows.Scan(&name, &schema); err != nil {
			return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to scan table name", err)
		}
		s := schema
		tables = append(tables, TableInfo{Name: name, Schema: &s})
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "error iterating tables", err)
	}
	return tables, nil
}
