// Package metadata exposes the top-level introspection operations consumed
// by the application's command layer: table listing, schema lookup, and
// relationship discovery.
//
// Every operation is synchronous and self-contained: it resolves the
// connection id, opens a fresh connection handle, runs its queries
// sequentially, and closes the handle before returning. Results are
// recomputed per call: there is no cache, no retry, and no partial result
// on failure.
package metadata

import (
	"context"

	"github.com/kweron/dbscope/internal/credentials"
	"github.com/kweron/dbscope/internal/database"
	"github.com/kweron/dbscope/internal/introspect"
	"github.com/kweron/dbscope/internal/logger"
)

// Service implements the metadata operations over the credential store.
type Service struct {
	store *credentials.Store
	log   *logger.Logger

	// openFn opens a connection for a config; swapped out in tests.
	openFn func(context.Context, *database.Config) (database.Reader, error)
}

// NewService wires a metadata service to the given credential store.
func NewService(store *credentials.Store, log *logger.Logger) *Service {
	if log == nil {
		log = logger.New(nil)
	}
	return &Service{store: store, log: log, openFn: database.Open}
}

// ConnectionTestResult reports the outcome of a connection probe.
type ConnectionTestResult struct {
	Success       bool    `json:"success"`
	Message       string  `json:"message"`
	ServerVersion *string `json:"server_version"`
}

// open resolves databaseID and opens a fresh connection handle for it.
// An unknown id surfaces as a not-found error, distinct from any later
// connection or query failure.
func (s *Service) open(ctx context.Context, databaseID string) (database.Reader, database.Dialect, error) {
	creds, err := s.store.Get(databaseID)
	if err != nil {
		return nil, "", err
	}
	r, err := s.openFn(ctx, creds.Config())
	if err != nil {
		return nil, "", err
	}
	return r, creds.Dialect, nil
}

// ListTables returns every user table of the identified database.
func (s *Service) ListTables(ctx context.Context, databaseID string) ([]introspect.TableInfo, error) {
	r, dialect, err := s.open(ctx, databaseID)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	tables, err := introspect.ListTables(ctx, r, dialect)
	if err != nil {
		return nil, err
	}

	s.log.With().Str("database_id", databaseID).Int("tables", len(tables)).Logger().
		Debug("listed tables")
	return tables, nil
}

// GetSchema returns the normalized schema of the named tables.
// namespace selects the schema on Postgres and is ignored elsewhere.
func (s *Service) GetSchema(ctx context.Context, databaseID string, tables []string, namespace string) ([]introspect.TableSchema, error) {
	r, dialect, err := s.open(ctx, databaseID)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return introspect.TableSchemas(ctx, r, dialect, tables, namespace)
}

// ListRelationships returns the full relationship graph of the identified
// database: declared foreign keys first, then naming-convention inferences
// over the complete schema. The two sets are concatenated, not deduplicated:
// an inferred proposal may repeat a declared constraint, and the consumer
// decides how to present that.
func (s *Service) ListRelationships(ctx context.Context, databaseID string) ([]introspect.Relationship, error) {
	r, dialect, err := s.open(ctx, databaseID)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	explicit, err := introspect.ForeignKeys(ctx, r, dialect)
	if err != nil {
		return nil, err
	}

	schemas, err := s.allSchemas(ctx, r, dialect)
	if err != nil {
		return nil, err
	}
	inferred := introspect.InferRelationships(schemas)

	s.log.With().
		Str("database_id", databaseID).
		Int("explicit", len(explicit)).
		Int("inferred", len(inferred)).
		Logger().Debug("resolved relationships")

	return append(explicit, inferred...), nil
}

// allSchemas builds the normalized schema of every table in the database,
// batching per namespace on the catalog dialects.
func (s *Service) allSchemas(ctx context.Context, r database.Reader, dialect database.Dialect) ([]introspect.TableSchema, error) {
	tables, err := introspect.ListTables(ctx, r, dialect)
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return nil, nil
	}

	// Group table names by namespace; SQLite and single-schema databases
	// collapse to one group.
	var nsOrder []string
	byNS := make(map[string][]string)
	for _, t := range tables {
		ns := ""
		if t.Schema != nil {
			ns = *t.Schema
		}
		if _, ok := byNS[ns]; !ok {
			nsOrder = append(nsOrder, ns)
		}
		byNS[ns] = append(byNS[ns], t.Name)
	}

	var schemas []introspect.TableSchema
	for _, ns := range nsOrder {
		got, err := introspect.TableSchemas(ctx, r, dialect, byNS[ns], ns)
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, got...)
	}
	return schemas, nil
}

// TestConnection opens a connection for the given credentials and probes
// the server version. It never touches the store.
func (s *Service) TestConnection(ctx context.Context, creds credentials.Credentials) (*ConnectionTestResult, error) {
	r, err := s.openFn(ctx, creds.Config())
	if err != nil {
		return &ConnectionTestResult{Success: false, Message: err.Error()}, nil
	}
	defer r.Close()

	var q string
	switch creds.Dialect {
	case database.DialectPostgres:
		q = "SELECT version()"
	case database.DialectMySQL:
		q = "SELECT VERSION()"
	case database.DialectSQLite:
		q = "SELECT sqlite_version()"
	}

	var version string
	if err := r.QueryRow(ctx, q).Scan(&version); err != nil {
		return &ConnectionTestResult{Success: false, Message: err.Error()}, nil
	}

	return &ConnectionTestResult{
		Success:       true,
		Message:       "Connection successful",
		ServerVersion: &version,
	}, nil
}
