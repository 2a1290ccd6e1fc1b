package database

import (
	"context"
	"fmt"

	"github.com/kweron/dbscope/internal/errs"
)

// Open establishes a fresh connection handle for the given config.
// Every top-level operation opens its own handle and closes it before
// returning; nothing in dbscope keeps a connection alive between requests.
func Open(ctx context.Context, cfg *Config) (Reader, error) {
	switch cfg.Dialect {
	case DialectPostgres:
		return openPostgres(ctx, cfg)
	case DialectMySQL:
		return openMySQL(ctx, cfg)
	case DialectSQLite:
		return openSQLite(ctx, cfg)
	default:
		return nil, errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("unsupported dialect: %q", cfg.Dialect))
	}
}
