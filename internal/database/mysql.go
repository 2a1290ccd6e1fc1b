package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/kweron/dbscope/internal/errs"
)

// mysqlDriver is the MySQL implementation of Reader backed by database/sql.
// It is safe for concurrent use by multiple goroutines.
type mysqlDriver struct {
	db *sql.DB
}

// openMySQL opens a MySQL connection pool and validates it with a Ping
// before returning.
func openMySQL(ctx context.Context, cfg *Config) (Reader, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "invalid mysql DSN", err)
	}

	db.SetMaxOpenConns(int(cfg.maxConns()))
	db.SetMaxIdleConns(int(cfg.minConns()))

	d := &mysqlDriver{db: db}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.connectTimeout())
	defer cancel()

	if err := d.Ping(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return d, nil
}

func (d *mysqlDriver) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return mapMySQLError(err, "ping failed")
	}
	return nil
}

func (d *mysqlDriver) Close() {
	_ = d.db.Close()
}

func (d *mysqlDriver) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapMySQLError(err, "query failed")
	}
	return &sqlRows{rows: rows}, nil
}

func (d *mysqlDriver) QueryRow(ctx context.Context, query string, args ...any) Row {
	return &sqlRow{row: d.db.QueryRowContext(ctx, query, args...)}
}

// --- error mapping ---

// MySQL error numbers
// Full list: https://dev.mysql.com/doc/mysql-errors/8.0/en/server-error-reference.html
const (
	myErrAccessDenied    = 1045
	myErrUnknownDatabase = 1049
	myErrTooManyConns    = 1040
	myErrBadField        = 1054
	myErrSyntax          = 1064
	myErrNoSuchTable     = 1146
	myErrConnRefused     = 2003
)

// mapMySQLError translates go-sql-driver/mysql errors into *errs.Error.
func mapMySQLError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	if errors.Is(err, sql.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return errs.Wrap(
			classifyMySQLCode(mysqlErr.Number),
			fmt.Sprintf("%s: %s", msg, mysqlErr.Message),
			err,
		)
	}

	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}

// classifyMySQLCode maps MySQL error numbers to ErrKind.
func classifyMySQLCode(code uint16) errs.ErrKind {
	switch code {
	case myErrAccessDenied, myErrUnknownDatabase, myErrTooManyConns, myErrConnRefused:
		return errs.ErrKindConnectionFailed
	case myErrBadField, myErrSyntax, myErrNoSuchTable:
		return errs.ErrKindQueryFailed
	default:
		return errs.ErrKindQueryFailed
	}
}
