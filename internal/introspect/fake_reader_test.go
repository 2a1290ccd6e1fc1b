package introspect

import (
	"context"
	"fmt"
	"strings"

	"github.com/kweron/dbscope/internal/database"
	"github.com/kweron/dbscope/internal/errs"
)

// fakeReader scripts query results for driver-free tests. Scripts are
// matched against the executed SQL by substring, in registration order,
// and every executed query is recorded for assertions.
type fakeReader struct {
	scripts []script
	queries []recordedQuery
}

type script struct {
	substr string
	rows   [][]any
	err    error
}

type recordedQuery struct {
	sql  string
	args []any
}

func (f *fakeReader) on(substr string, rows ...[]any) *fakeReader {
	f.scripts = append(f.scripts, script{substr: substr, rows: rows})
	return f
}

func (f *fakeReader) onErr(substr string, err error) *fakeReader {
	f.scripts = append(f.scripts, script{substr: substr, err: err})
	return f
}

func (f *fakeReader) Ping(context.Context) error { return nil }
func (f *fakeReader) Close()                     {}

func (f *fakeReader) Query(_ context.Context, sql string, args ...any) (database.Rows, error) {
	f.queries = append(f.queries, recordedQuery{sql: sql, args: args})
	for _, s := range f.scripts {
		if strings.Contains(sql, s.substr) {
			if s.err != nil {
				return nil, s.err
			}
			return &fakeRows{rows: s.rows}, nil
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

func (r *fakeRows) Scan(dest ...any) error {
	return scanInto(dest, r.rows[r.idx-1])
}

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
			d2, ok := v.(string)
			if !ok {
				return fmt.Errorf("scan: column %d is %T, want string", i, v)
			}
			*d = d2
		case **string:
			if v == nil {
				*d = nil
				break
			}
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("scan: column %d is %T, want string or nil", i, v)
			}
			*d = &s
		case *int:
			d2, ok := v.(int)
			if !ok {
				return fmt.Errorf("scan: column %d is %T, want int", i, v)
			}
			*d = d2
		case *bool:
			d2, ok := v.(bool)
			if !ok {
				return fmt.Errorf("scan: column %d is %T, want bool", i, v)
			}
			*d = d2
		default:
			return fmt.Errorf("scan: unsupported destination %T", d)
		}
	}
	return nil
}
