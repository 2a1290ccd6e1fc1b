// Package credentials resolves opaque connection identifiers into the
// settings needed to reach a database. Credentials live in memory for the
// lifetime of the application and can be persisted to an encrypted
// connections file on request.
package credentials

import (
	"github.com/kweron/dbscope/internal/database"
)

// Credentials describes one saved database connection.
// Host/Port/Username/Password apply to the client/server dialects;
// FilePath applies to SQLite only.
type Credentials struct {
	ID       string           `json:"id" yaml:"id"`
	Name     string           `json:"name" yaml:"name"`
	Dialect  database.Dialect `json:"dialect" yaml:"dialect"`
	Host     string           `json:"host,omitempty" yaml:"host,omitempty"`
	Port     int              `json:"port,omitempty" yaml:"port,omitempty"`
	Database string           `json:"database" yaml:"database"`
	Username string           `json:"username,omitempty" yaml:"username,omitempty"`
	Password string           `json:"password,omitempty" yaml:"password,omitempty"`
	FilePath string           `json:"file_path,omitempty" yaml:"file_path,omitempty"`
}

// Config converts the stored credentials into a connection config.
func (c *Credentials) Config() *database.Config {
	return &database.Config{
		Dialect:  c.Dialect,
		Host:     c.Host,
		Port:     c.Port,
		User:     c.Username,
		Password: c.Password,
		Database: c.Database,
		FilePath: c.FilePath,
	}
}
