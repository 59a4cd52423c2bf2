package adapter

import "context"

// Quoting renders identifiers and literals.
type Quoting interface {
	QuoteString(s string) string
	QuoteTableName(name string) string
	QuoteColumnName(name string) string
	Quote(value any) string
}

// SchemaIntrospection answers schema questions. Every call asks the warehouse.
type SchemaIntrospection interface {
	Tables(ctx context.Context) ([]string, error)
	TableExists(ctx context.Context, name string) (bool, error)
	TableShards(ctx context.Context) (map[string]int, error)
	PhysicalTables(ctx context.Context, name string) ([]string, error)
	Views(ctx context.Context) ([]string, error)
	Columns(ctx context.Context, tableName string) ([]Column, error)
	Indexes(ctx context.Context, tableName string) ([]Index, error)
	PrimaryKey(ctx context.Context, tableName string) ([]string, error)
	ForeignKeys(ctx context.Context, tableName string) ([]ForeignKey, error)
	IndexName(table string, columns []string) string
}

type StatementExecution interface {
	ExecQuery(ctx context.Context, sql, name string) (*Result, error)
	Execute(ctx context.Context, sql, name string) error
	SupportsDDLTransactions() bool
	NativeDatabaseTypes() map[LogicalType]string
	ValidType(t LogicalType) bool
}

// Connection covers the session lifecycle and the constant capability flags.
type Connection interface {
	AdapterName() string
	CurrentDatabase() string
	Active(ctx context.Context) (bool, error)
	Reconnect(ctx context.Context) error
	Reset(ctx context.Context) error
	Disconnect() bool
	Close() error
	SupportsMigrations() bool
	PreparedStatements() bool
}

// Interface is the full adapter surface.
type Interface interface {
	Quoting
	SchemaIntrospection
	StatementExecution
	Connection
	DatabaseMetadata() DatabaseMetadata
	Preview(ctx context.Context, table string, limit int) (*Result, error)
}

var _ Interface = (*Adapter)(nil)
