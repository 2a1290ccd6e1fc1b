package introspect

import (
	"context"
	"strings"

	"github.com/kweron/dbscope/internal/database"
	"github.com/kweron/dbscope/internal/errs"
)

// TableSchemas fetches and normalizes the schema of the named tables.
//
// On the catalog dialects all requested tables are resolved in a single
// round trip and the rows grouped back per table; SQLite has no batch form,
// so tables are introspected one PRAGMA at a time. Grouping keys are the raw
// table names as returned by the catalog, with no case normalization.
//
// namespace selects the schema on Postgres (default "public"); MySQL scopes
// by the connected database and SQLite has no namespaces, so both ignore it.
// Tables unknown to the catalog simply produce no TableSchema.
func TableSchemas(ctx context.Context, r database.Reader, d database.Dialect, tables []string, namespace string) ([]TableSchema, error) {
	if len(tables) == 0 {
		return nil, errs.New(errs.ErrKindInvalidInput, "no tables requested")
	}

	switch d {
	case database.DialectPostgres:
		ns := namespace
		if ns == "" {
			ns = "public"
		}
		return postgresSchemas(ctx, r, tables, ns)
	case database.DialectMySQL:
		return mysqlSchemas(ctx, r, tables, namespace)
	case database.DialectSQLite:
		return sqliteSchemas(ctx, r, tables)
	default:
		return nil, errs.New(errs.ErrKindInvalidInput, "unsupported dialect")
	}
}

// postgresSchemas resolves all requested tables in one information_schema
// query. Primary-key membership is derived by joining the key-column usage
// for PRIMARY KEY constraints. Table and schema names are bound parameters,
// never interpolated: catalog identifiers can be attacker-influenced.
func postgresSchemas(ctx context.Context, r database.Reader, tables []string, ns string) ([]TableSchema, error) {
	// $1 is the schema; $2..$n+1 are the table names, reused in both IN lists.
	in := placeholderList(database.DialectPostgres, 2, len(tables))
	q := `
		SELECT
			c.table_name,
			c.column_name,
			c.data_type,
			c.is_nullable,
			c.column_default,
			(pk.column_name IS NOT NULL) AS is_primary_key
		FROM information_schema.columns c
		LEFT JOIN (
			SELECT ku.table_name, ku.column_name
			FROM information_schema.table_constraints tc
			JOIN information_schema.key_column_usage ku
			  ON tc.constraint_name = ku.constraint_name
			 AND tc.table_schema    = ku.table_schema
			WHERE tc.constraint_type = 'PRIMARY KEY'
			  AND tc.table_schema    = $1
			  AND tc.table_name     IN (` + in + `)
		) pk ON pk.table_name = c.table_name AND pk.column_name = c.column_name
		WHERE c.table_schema = $1 AND c.table_name IN (` + in + `)
		ORDER BY c.table_name, c.ordinal_position`

	args := make([]any, 0, len(tables)+1)
	args = append(args, ns)
	for _, t := range tables {
		args = append(args, t)
	}

	rows, err := r.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	g := newSchemaGrouper(&ns)
	for rows.Next() {
		var (
			table      string
			col        ColumnInfo
			isNullable string
		)
		if err := rows.Scan(&table, &col.Name, &col.DataType, &isNullable, &col.DefaultValue, &col.IsPrimaryKey); err != nil {
			return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to scan column row", err)
		}
		col.IsNullable = strings.EqualFold(isNullable, "YES")
		g.add(table, col)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "error iterating columns", err)
	}
	return g.schemas(), nil
}

// mysqlSchemas resolves all requested tables in one round trip. MySQL keeps
// key membership directly on the columns view as a classification string, so
// no join is needed.
func mysqlSchemas(ctx context.Context, r database.Reader, tables []string, namespace string) ([]TableSchema, error) {
	in := placeholderList(database.DialectMySQL, 1, len(tables))
	q := `
		SELECT
			c.table_name,
			c.column_name,
			c.data_type,
			c.is_nullable,
			c.column_default,
			c.column_key
		FROM information_schema.columns c
		WHERE c.table_schema = DATABASE()
		  AND c.table_name IN (` + in + `)
		ORDER BY c.table_name, c.ordinal_position`

	args := make([]any, 0, len(tables))
	for _, t := range tables {
		args = append(args, t)
	}

	rows, err := r.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ns *string
	if namespace != "" {
		ns = &namespace
	}

	g := newSchemaGrouper(ns)
	for rows.Next() {
		var (
			table      string
			col        ColumnInfo
			isNullable string
			columnKey  string
		)
		if err := rows.Scan(&table, &col.Name, &col.DataType, &isNullable, &col.DefaultValue, &columnKey); err != nil {
			return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to scan column row", err)
		}
		col.IsNullable = strings.EqualFold(isNullable, "YES")
		col.IsPrimaryKey = columnKey == "PRI"
		g.add(table, col)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "error iterating columns", err)
	}
	return g.schemas(), nil
}

// sqliteSchemas introspects the requested tables one PRAGMA at a time;
// SQLite has no multi-table form, so the loop is explicit. Any failure
// aborts the whole operation; partial results are never returned.
func sqliteSchemas(ctx context.Context, r database.Reader, tables []string) ([]TableSchema, error) {
	var schemas []TableSchema
	for _, table := range tables {
		// PRAGMA arguments cannot be bound, so the identifier is escaped.
		q := "PRAGMA table_info(" + database.QuoteIdent(table) + ")"

		rows, err := r.Query(ctx, q)
		if err != nil {
			return nil, err
		}

		ts, err := scanPragmaColumns(rows, table)
		if err != nil {
			return nil, err
		}
		if ts != nil {
			schemas = append(schemas, *ts)
		}
	}
	return schemas, nil
}

// scanPragmaColumns converts PRAGMA table_info rows into a TableSchema.
// The pragma encodes nullability as an inverted not-null flag and
// primary-key-ness as a 1-based rank (0 = not part of the key).
// A table unknown to SQLite yields zero rows, and nil is returned.
func scanPragmaColumns(rows database.Rows, table string) (*TableSchema, error) {
	defer rows.Close()

	ts := &TableSchema{TableName: table}
	for rows.Next() {
		var (
			cid     int
			col     ColumnInfo
			notNull int
			pkRank  int
		)
		if err := rows.Scan(&cid, &col.Name, &col.DataType, &notNull, &col.DefaultValue, &pkRank); err != nil {
			return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to scan pragma row", err)
		}
		col.IsNullable = notNull == 0
		col.IsPrimaryKey = pkRank > 0
		ts.Columns = append(ts.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "error iterating pragma rows", err)
	}
	if len(ts.Columns) == 0 {
		return nil, nil
	}
	return ts, nil
}

// schemaGrouper regroups a batched catalog result into one TableSchema per
// distinct table name, preserving first-seen table order and per-table
// column order.
type schemaGrouper struct {
	namespace *string
	order     []string
	byTable   map[string]*TableSchema
}

func newSchemaGrouper(namespace *string) *schemaGrouper {
	return &schemaGrouper{
		namespace: namespace,
		byTable:   make(map[string]*TableSchema),
	}
}

func (g *schemaGrouper) add(table string, col ColumnInfo) {
	ts, ok := g.byTable[table]
	if !ok {
		ts = &TableSchema{TableName: table, Schema: g.namespace}
		g.byTable[table] = ts
		g.order = append(g.order, table)
	}
	ts.Columns = append(ts.Columns, col)
}

func (g *schemaGrouper) schemas() []TableSchema {
	out := make([]TableSchema, 0, len(g.order))
	for _, name := range g.order {
		out = append(out, *g.byTable[name])
	}
	return out
}

// placeholderList renders n comma-separated placeholders starting at the
// given 1-based position ("$2, $3" for Postgres, "?, ?" otherwise).
func placeholderList(d database.Dialect, start, n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(d.Placeholder(start + i))
	}
	return sb.String()
}
