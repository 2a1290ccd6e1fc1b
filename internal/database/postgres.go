package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kweron/dbscope/internal/errs"
)

// pgDriver is the PostgreSQL implementation of Reader backed by pgxpool.
// It is safe for concurrent use by multiple goroutines.
type pgDriver struct {
	pool *pgxpool.Pool
}

// openPostgres connects to PostgreSQL and validates the connection with a
// Ping before returning.
func openPostgres(ctx context.Context, cfg *Config) (Reader, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "invalid postgres DSN", err)
	}

	poolCfg.MaxConns = cfg.maxConns()
	poolCfg.MinConns = cfg.minConns()
	poolCfg.ConnConfig.ConnectTimeout = cfg.connectTimeout()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "failed to create connection pool", err)
	}

	d := &pgDriver{pool: pool}
	if err := d.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return d, nil
}

func (d *pgDriver) Ping(ctx context.Context) error {
	if err := d.pool.Ping(ctx); err != nil {
		return mapPgError(err, "ping failed")
	}
	return nil
}

func (d *pgDriver) Close() {
	d.pool.Close()
}

func (d *pgDriver) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	rows, err := d.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapPgError(err, "query failed")
	}
	return &pgxRows{rows: rows}, nil
}

func (d *pgDriver) QueryRow(ctx context.Context, sql string, args ...any) Row {
	return &pgxRow{row: d.pool.QueryRow(ctx, sql, args...)}
}

// --- pgx type wrappers ---

// pgxRows wraps pgx.Rows to satisfy Rows.
type pgxRows struct {
	rows pgx.Rows
}

func (r *pgxRows) Next() bool             { return r.rows.Next() }
func (r *pgxRows) Scan(dest ...any) error { return r.rows.Scan(dest...) }
func (r *pgxRows) Close()                 { r.rows.Close() }
func (r *pgxRows) Err() error             { return r.rows.Err() }

func (r *pgxRows) Columns() ([]string, error) {
	descs := r.rows.FieldDescriptions()
	cols := make([]string, len(descs))
	for i, d := range descs {
		cols[i] = d.Name
	}
	return cols, nil
}

// pgxRow wraps pgx.Row to satisfy Row.
type pgxRow struct {
	row pgx.Row
}

func (r *pgxRow) Scan(dest ...any) error { return r.row.Scan(dest...) }

// --- error mapping ---

// mapPgError translates pgx / pgconn native errors into *errs.Error.
func mapPgError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	// Postgres server-side error (SQLSTATE codes)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		kind := errs.ErrKindQueryFailed
		// Class 08 is connection errors, class 28 is authentication
		if len(pgErr.Code) >= 2 && (pgErr.Code[:2] == "08" || pgErr.Code[:2] == "28") {
			kind = errs.ErrKindConnectionFailed
		}
		return errs.Wrap(kind, fmt.Sprintf("%s: %s", msg, pgErr.Message), err)
	}

	// Fallthrough: connection-level errors (TLS, network, DNS)
	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}
