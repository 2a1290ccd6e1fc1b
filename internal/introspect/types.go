// Package introspect reads the structure of a connected database (tables,
// columns, and relationships) through one uniform model, papering over the
// three very different metadata catalogs of Postgres, MySQL, and SQLite.
//
// Each operation branches on the dialect explicitly. The differences between
// the engines (batch vs. per-table introspection, join-based vs. flat
// foreign-key views, how nullability and primary keys are encoded) are big
// enough that per-case logic keeps every dialect's behaviour readable in one
// place.
package introspect

// ColumnInfo describes a single column in a table. DataType keeps the
// dialect-native spelling (e.g. "character varying" vs "varchar(255)").
type ColumnInfo struct {
	Name         string  `json:"name"`
	DataType     string  `json:"data_type"`
	IsNullable   bool    `json:"is_nullable"`
	IsPrimaryKey bool    `json:"is_primary_key"`
	DefaultValue *string `json:"default_value"` // nil if no default
}

// TableSchema is the normalized schema of one table.
// Columns are ordered by catalog ordinal position and never empty for an
// existing table. Schema is nil for SQLite, which has no namespaces.
type TableSchema struct {
	TableName string       `json:"table_name"`
	Schema    *string      `json:"schema"`
	Columns   []ColumnInfo `json:"columns"`
}

// TableInfo is a lightweight table listing entry.
// RowCount is reserved for a future counting pass and is always nil today.
type TableInfo struct {
	Name     string  `json:"name"`
	Schema   *string `json:"schema"`
	RowCount *int64  `json:"row_count"`
}

// RelationshipType distinguishes declared foreign keys from guessed ones.
type RelationshipType string

const (
	RelForeignKey RelationshipType = "foreign_key"
	RelInferred   RelationshipType = "inferred"
)

// Confidence ranks an inferred relationship. Empty for explicit ones.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Relationship links a referencing column to a referenced column.
// ConstraintName is set only for declared foreign keys on dialects that
// name their constraints; SQLite and inferred relationships leave it nil.
type Relationship struct {
	TableName      string           `json:"table_name"`
	ColumnName     string           `json:"column_name"`
	ForeignTable   string           `json:"foreign_table"`
	ForeignColumn  string           `json:"foreign_column"`
	ConstraintName *string          `json:"constraint_name"`
	Type           RelationshipType `json:"relationship_type"`
	Confidence     Confidence       `json:"confidence,omitempty"`
}
