package introspect

import (
	"context"

	"github.com/kweron/dbscope/internal/database"
	"github.com/kweron/dbscope/internal/errs"
)

// ForeignKeys returns every declared foreign-key constraint in the database
// as relationships of type "foreign_key". The catalog dialects answer in a
// single whole-database query; SQLite only exposes foreign keys through a
// per-table pragma, so the extractor lists tables first and flattens the
// per-table results. A failure anywhere aborts the whole operation.
func ForeignKeys(ctx context.Context, r database.Reader, d database.Dialect) ([]Relationship, error) {
	switch d {
	case database.DialectPostgres:
		const q = `
			SELECT
				tc.table_name,
				kcu.column_name,
				ccu.table_name  AS foreign_table,
				ccu.column_name AS foreign_column,
				tc.constraint_name
			FROM information_schema.table_constraints AS tc
			JOIN information_schema.key_column_usage AS kcu
			  ON tc.constraint_name = kcu.constraint_name
			 AND tc.table_schema    = kcu.table_schema
			JOIN information_schema.constraint_column_usage AS ccu
			  ON ccu.constraint_name = tc.constraint_name
			 AND ccu.table_schema    = tc.table_schema
			WHERE tc.constraint_type = 'FOREIGN KEY'
			ORDER BY tc.constraint_name`
		return scanConstraintRows(ctx, r, q)

	case database.DialectMySQL:
		// The referenced table sits directly on key_column_usage, no join.
		const q = `
			SELECT
				table_name,
				column_name,
				referenced_table_name  AS foreign_table,
				referenced_column_name AS foreign_column,
				constraint_name
			FROM information_schema.key_column_usage
			WHERE referenced_table_name IS NOT NULL
			  AND table_schema = DATABASE()
			ORDER BY constraint_name`
		return scanConstraintRows(ctx, r, q)

	case database.DialectSQLite:
		return sqliteForeignKeys(ctx, r)

	default:
		return nil, errs.New(errs.ErrKindInvalidInput, "unsupported dialect")
	}
}

// scanConstraintRows reads (table, column, foreign table, foreign column,
// constraint name) rows into Relationship records.
func scanConstraintRows(ctx context.Context, r database.Reader, q string) ([]Relationship, error) {
	rows, err := r.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rels []Relationship
	for rows.Next() {
		var (
			rel  Relationship
			name string
		)
		if err := rows.Scan(&rel.TableName, &rel.ColumnName, &rel.ForeignTable, &rel.ForeignColumn, &name); err != nil {
			return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to scan foreign key", err)
		}
		rel.ConstraintName = &name
		rel.Type = RelForeignKey
		rels = append(rels, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "error iterating foreign keys", err)
	}
	return rels, nil
}

// sqliteForeignKeys walks every user table and collects its pragma-derived
// foreign keys. SQLite never names constraints, so ConstraintName stays nil.
// Tables without foreign keys contribute nothing; that is not an error.
func sqliteForeignKeys(ctx context.Context, r database.Reader) ([]Relationship, error) {
	tables, err := ListTables(ctx, r, database.DialectSQLite)
	if err != nil {
		return nil, err
	}

	var rels []Relationship
	for _, t := range tables {
		q := "PRAGMA foreign_key_list(" + database.QuoteIdent(t.Name) + ")"

		rows, err := r.Query(ctx, q)
		if err != nil {
			return nil, err
		}

		got, err := scanPragmaForeignKeys(rows, t.Name)
		if err != nil {
			return nil, err
		}
		rels = append(rels, got...)
	}
	return rels, nil
}

// scanPragmaForeignKeys converts PRAGMA foreign_key_list rows for one table.
// Row shape: (id, seq, table, from, to, on_update, on_delete, match).
// The "to" column is NULL when the key references the target's implicit
// primary key; SQLite resolves that to the rowid alias, conventionally "id".
func scanPragmaForeignKeys(rows database.Rows, table string) ([]Relationship, error) {
	defer rows.Close()

	var rels []Relationship
	for rows.Next() {
		var (
			id, seq                   int
			refTable, from            string
			to                        *string
			onUpdate, onDelete, match string
		)
		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to scan pragma foreign key", err)
		}

		foreignColumn := "id"
		if to != nil {
			foreignColumn = *to
		}

		rels = append(rels, Relationship{
			TableName:     table,
			ColumnName:    from,
			ForeignTable:  refTable,
			ForeignColumn: foreignColumn,
			Type:          RelForeignKey,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "error iterating pragma foreign keys", err)
	}
	return rels, nil
}
