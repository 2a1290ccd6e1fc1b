package metadata

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kweron/dbscope/internal/credentials"
	"github.com/kweron/dbscope/internal/database"
	"github.com/kweron/dbscope/internal/errs"
	"github.com/kweron/dbscope/internal/introspect"
)

// fakeReader scripts query results keyed by SQL substring, so service
// operations can run end to end without a driver.
type fakeReader struct {
	scripts map[string][][]any
	closed  bool
}

func (f *fakeReader) Ping(context.Context) error { return nil }
func (f *fakeReader) Close()                     { f.closed = true }

func (f *fakeReader) Query(_ context.Context, sql string, _ ...any) (database.Rows, error) {
	for substr, rows := range f.scripts {
		if strings.Contains(sql, substr) {
			return &fakeRows{rows: rows}, nil
		}
	}
	return nil, errs.New(errs.ErrKindQueryFailed, "unscripted query: "+sql)
}

func (f *fakeReader) QueryRow(ctx context.Context, sql string, args ...any) database.Row {
	rows, err := f.Query(ctx, sql, args...)
	if err != nil {
		return fakeRow{err: err}
	}
	fr := rows.(*fakeRows)
	if len(fr.rows) == 0 {
		return fakeRow{err: errs.New(errs.ErrKindNotFound, "no rows")}
	}
	return fakeRow{vals: fr.rows[0]}
}

type fakeRows struct {
	rows [][]any
	idx  int
}

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...any) error     { return scanInto(dest, r.rows[r.idx-1]) }
func (r *fakeRows) Columns() ([]string, error) { return nil, nil }
func (r *fakeRows) Close()                     {}
func (r *fakeRows) Err() error                 { return nil }

type fakeRow struct {
	vals []any
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return scanInto(dest, r.vals)
}

func scanInto(dest []any, vals []any) error {
	if len(dest) != len(vals) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(vals))
	}
	for i, d := range dest {
		v := vals[i]
		switch d := d.(type) {
		case *string:
			*d = v.(string)
		case **string:
			if v == nil {
				*d = nil
				break
			}
			s := v.(string)
			*d = &s
		case *int:
			*d = v.(int)
		case *bool:
			*d = v.(bool)
		default:
			return fmt.Errorf("scan: unsupported destination %T", d)
		}
	}
	return nil
}

// sqliteScripts describes a two-table database: orders has a declared
// foreign key to users, and the same column also matches naming inference.
func sqliteScripts() map[string][][]any {
	return map[string][][]any{
		"sqlite_master": {
			{"orders"},
			{"users"},
		},
		`foreign_key_list("orders")`: {
			{0, 0, "users", "user_id", "id", "NO ACTION", "NO ACTION", "NONE"},
		},
		`foreign_key_list("users")`: {},
		`table_info("orders")`: {
			{0, "id", "INTEGER", 1, nil, 1},
			{1, "user_id", "INTEGER", 0, nil, 0},
		},
		`table_info("users")`: {
			{0, "id", "INTEGER", 1, nil, 1},
			{1, "name", "TEXT", 0, nil, 0},
		},
		"sqlite_version": {
			{"3.45.1"},
		},
	}
}

func newTestService(t *testing.T, scripts map[string][][]any) (*Service, *credentials.Store, *int) {
	t.Helper()

	store := credentials.NewStore()
	require.NoError(t, store.Add(credentials.Credentials{
		ID:       "notes",
		Name:     "Notes",
		Dialect:  database.DialectSQLite,
		FilePath: "/data/notes.db",
	}))

	opens := 0
	svc := NewService(store, nil)
	svc.openFn = func(context.Context, *database.Config) (database.Reader, error) {
		opens++
		return &fakeReader{scripts: scripts}, nil
	}
	return svc, store, &opens
}

func TestListTables(t *testing.T) {
	svc, _, opens := newTestService(t, sqliteScripts())

	tables, err := svc.ListTables(context.Background(), "notes")
	require.NoError(t, err)

	require.Len(t, tables, 2)
	assert.Equal(t, "orders", tables[0].Name)
	assert.Equal(t, "users", tables[1].Name)
	assert.Equal(t, 1, *opens, "one fresh connection per operation")
}

func TestListTables_UnknownID(t *testing.T) {
	svc, _, opens := newTestService(t, sqliteScripts())

	_, err := svc.ListTables(context.Background(), "ghost")
	// An unknown connection id fails before anything is opened, and as
	// not-found rather than a query failure.
	assert.True(t, errs.IsNotFound(err))
	assert.Zero(t, *opens)
}

func TestGetSchema(t *testing.T) {
	svc, _, _ := newTestService(t, sqliteScripts())

	schemas, err := svc.GetSchema(context.Background(), "notes", []string{"orders"}, "")
	require.NoError(t, err)

	require.Len(t, schemas, 1)
	assert.Equal(t, "orders", schemas[0].TableName)
	require.Len(t, schemas[0].Columns, 2)
	assert.True(t, schemas[0].Columns[0].IsPrimaryKey)
	assert.Equal(t, "user_id", schemas[0].Columns[1].Name)
}

func TestListRelationships(t *testing.T) {
	svc, _, opens := newTestService(t, sqliteScripts())

	rels, err := svc.ListRelationships(context.Background(), "notes")
	require.NoError(t, err)

	// The declared foreign key and the naming inference both survive; the
	// sets are concatenated, never deduplicated.
	require.Len(t, rels, 2)

	assert.Equal(t, introspect.RelForeignKey, rels[0].Type)
	assert.Equal(t, "orders", rels[0].TableName)
	assert.Equal(t, "user_id", rels[0].ColumnName)
	assert.Equal(t, "users", rels[0].ForeignTable)
	assert.Equal(t, "id", rels[0].ForeignColumn)
	assert.Empty(t, rels[0].Confidence)

	assert.Equal(t, introspect.RelInferred, rels[1].Type)
	assert.Equal(t, "user_id", rels[1].ColumnName)
	assert.Equal(t, "users", rels[1].ForeignTable)
	assert.Equal(t, introspect.ConfidenceHigh, rels[1].Confidence)

	assert.Equal(t, 1, *opens, "the whole graph is built over one connection")
}

func TestTestConnection(t *testing.T) {
	svc, _, _ := newTestService(t, sqliteScripts())

	result, err := svc.TestConnection(context.Background(), credentials.Credentials{
		ID:       "probe",
		Dialect:  database.DialectSQLite,
		FilePath: "/data/notes.db",
	})
	require.NoError(t, err)

	assert.True(t, result.Success)
	require.NotNil(t, result.ServerVersion)
	assert.Equal(t, "3.45.1", *result.ServerVersion)
}

func TestTestConnection_Failure(t *testing.T) {
	svc, _, _ := newTestService(t, sqliteScripts())
	svc.openFn = func(context.Context, *database.Config) (database.Reader, error) {
		return nil, errs.New(errs.ErrKindConnectionFailed, "connection refused")
	}

	result, err := svc.TestConnection(context.Background(), credentials.Credentials{
		Dialect:  database.DialectSQLite,
		FilePath: "/data/notes.db",
	})
	// A failed probe is a result, not an error.
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "connection refused")
	assert.Nil(t, result.ServerVersion)
}
