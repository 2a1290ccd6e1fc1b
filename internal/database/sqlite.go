package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sqlite "modernc.org/sqlite"

	"github.com/kweron/dbscope/internal/errs"
)

// sqliteDriver is the SQLite implementation of Reader backed by database/sql
// and the pure-Go modernc driver. SQLite has no server: "connecting" opens
// the database file, so a Ping catches a missing or corrupt file up front.
type sqliteDriver struct {
	db *sql.DB
}

// SQLite primary result codes relevant to opening a database file.
// https://sqlite.org/rescode.html
const (
	sqliteErrCantOpen = 14
	sqliteErrNotADB   = 26
)

func openSQLite(ctx context.Context, cfg *Config) (Reader, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "failed to open sqlite database", err)
	}

	// A single writer is the SQLite model anyway; keep the pool small.
	db.SetMaxOpenConns(int(cfg.maxConns()))
	db.SetMaxIdleConns(int(cfg.minConns()))

	d := &sqliteDriver{db: db}
	if err := d.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return d, nil
}

func (d *sqliteDriver) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return mapSQLiteError(err, "ping failed")
	}
	return nil
}

func (d *sqliteDriver) Close() {
	_ = d.db.Close()
}

func (d *sqliteDriver) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapSQLiteError(err, "query failed")
	}
	return &sqlRows{rows: rows}, nil
}

func (d *sqliteDriver) QueryRow(ctx context.Context, query string, args ...any) Row {
	return &sqlRow{row: d.db.QueryRowContext(ctx, query, args...)}
}

// mapSQLiteError translates modernc sqlite errors into *errs.Error.
func mapSQLiteError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	if errors.Is(err, sql.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		kind := errs.ErrKindQueryFailed
		switch sqliteErr.Code() & 0xff {
		case sqliteErrCantOpen, sqliteErrNotADB:
			kind = errs.ErrKindConnectionFailed
		}
		return errs.Wrap(kind, fmt.Sprintf("%s: %s", msg, sqliteErr.Error()), err)
	}

	return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
}
