package database

import (
	"fmt"
	"time"

	"github.com/kweron/dbscope/internal/errs"
)

const (
	defaultPostgresPort = 5432
	defaultMySQLPort    = 3306

	defaultMaxConns       = 4
	defaultMinConns       = 1
	defaultConnectTimeout = 10 * time.Second
)

// Config holds all settings needed to connect to one database.
// Host/User/Password are unused for SQLite; FilePath is SQLite-only.
type Config struct {
	Dialect  Dialect
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string // Postgres only; defaults to "disable"
	FilePath string // SQLite database file

	// Pool tuning
	MaxConns       int32
	MinConns       int32
	ConnectTimeout time.Duration
}

// DSN builds the driver-native connection string for the config's dialect.
// Missing required fields are reported as invalid-input errors so the UI
// can show them before a connection attempt is even made.
func (c *Config) DSN() (string, error) {
	switch c.Dialect {
	case DialectPostgres:
		if c.Host == "" {
			return "", errs.New(errs.ErrKindInvalidInput, "host is required for postgres")
		}
		if c.User == "" {
			return "", errs.New(errs.ErrKindInvalidInput, "username is required for postgres")
		}
		port := c.Port
		if port == 0 {
			port = defaultPostgresPort
		}
		sslMode := c.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, port, c.User, c.Password, c.Database, sslMode,
		), nil

	case DialectMySQL:
		if c.Host == "" {
			return "", errs.New(errs.ErrKindInvalidInput, "host is required for mysql")
		}
		if c.User == "" {
			return "", errs.New(errs.ErrKindInvalidInput, "username is required for mysql")
		}
		port := c.Port
		if port == 0 {
			port = defaultMySQLPort
		}
		// format: user:pass@tcp(host:port)/dbname?parseTime=true
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%d)/%s?parseTime=true",
			c.User, c.Password, c.Host, port, c.Database,
		), nil

	case DialectSQLite:
		if c.FilePath == "" {
			return "", errs.New(errs.ErrKindInvalidInput, "file path is required for sqlite")
		}
		return c.FilePath, nil

	default:
		return "", errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("unsupported dialect: %q", c.Dialect))
	}
}

// maxConns returns the configured pool size, or the default when unset.
func (c *Config) maxConns() int32 {
	if c.MaxConns == 0 {
		return defaultMaxConns
	}
	return c.MaxConns
}

func (c *Config) minConns() int32 {
	if c.MinConns == 0 {
		return defaultMinConns
	}
	return c.MinConns
}

func (c *Config) connectTimeout() time.Duration {
	if c.ConnectTimeout == 0 {
		return defaultConnectTimeout
	}
	return c.ConnectTimeout
}
