// Package query executes user-supplied read-only SQL against a saved
// connection. dbscope is an exploration tool: anything that mutates the
// database is rejected before it reaches a driver.
package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kweron/dbscope/internal/credentials"
	"github.com/kweron/dbscope/internal/database"
	"github.com/kweron/dbscope/internal/errs"
)

// Result is the shape returned to the UI for an executed statement.
type Result struct {
	Columns         []string         `json:"columns"`
	Rows            []map[string]any `json:"rows"`
	RowCount        int              `json:"row_count"`
	ExecutionTimeMs int64            `json:"execution_time_ms"`
}

// Statement prefixes that mutate data or schema. The check is a guardrail
// for a read-only tool, not a sandbox: the connection's own privileges are
// the real boundary.
var destructiveKeywords = []string{
	"DROP", "DELETE", "TRUNCATE", "ALTER", "CREATE", "INSERT", "UPDATE", "GRANT", "REVOKE",
}

// allowedPrefixes are the statement forms the runner will execute.
var allowedPrefixes = []string{"SELECT", "WITH", "EXPLAIN", "SHOW", "PRAGMA", "DESCRIBE"}

// Validate rejects SQL the runner refuses to execute: destructive
// statements, multi-statement input, and anything that is not a read.
func Validate(sql string) error {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return errs.New(errs.ErrKindInvalidInput, "empty query")
	}

	upper := strings.ToUpper(trimmed)
	for _, kw := range destructiveKeywords {
		if strings.HasPrefix(upper, kw) {
			return errs.New(errs.ErrKindForbiddenQuery, fmt.Sprintf("%s statements are not allowed", kw))
		}
	}

	// One statement only. A single trailing semicolon is tolerated.
	body := strings.TrimSuffix(trimmed, ";")
	if strings.Contains(body, ";") {
		return errs.New(errs.ErrKindForbiddenQuery, "multiple statements are not allowed")
	}

	for _, p := range allowedPrefixes {
		if strings.HasPrefix(upper, p) {
			return nil
		}
	}
	return errs.New(errs.ErrKindForbiddenQuery, "only read-only statements are allowed")
}

// Runner executes validated queries against stored connections.
type Runner struct {
	store *credentials.Store
}

// NewRunner wires a query runner to the given credential store.
func NewRunner(store *credentials.Store) *Runner {
	return &Runner{store: store}
}

// Execute validates sql, opens a fresh connection for databaseID, runs the
// statement, and returns all rows with timing. The connection is closed
// before returning.
func (r *Runner) Execute(ctx context.Context, databaseID, sql string) (*Result, error) {
	if err := Validate(sql); err != nil {
		return nil, err
	}

	creds, err := r.store.Get(databaseID)
	if err != nil {
		return nil, err
	}

	conn, err := database.Open(ctx, creds.Config())
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	start := time.Now()
	rows, err := conn.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to read column names", err)
	}

	scanned, err := database.ScanRows(rows)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	return &Result{
		Columns:         cols,
		Rows:            scanned,
		RowCount:        len(scanned),
		ExecutionTimeMs: elapsed.Milliseconds(),
	}, nil
}
