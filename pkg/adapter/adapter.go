// Package adapter presents BigQuery through a relational connection
// interface: run a statement, list tables and columns, classify errors, and
// report the features BigQuery lacks (migrations, DDL transactions, prepared
// statements, indexes, keys) as constant empty answers.
//
// An Adapter wraps a single warehouse session and, like a database
// connection, is not meant to be shared between goroutines. Run one Adapter
// per connection slot instead.
package adapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"google.golang.org/api/option"

	"github.com/pedrocarmona/big-query-adapter/internal/bigquery"
)

// Name is the adapter name reported to callers.
const Name = "BigQuery"

const defaultMaxIdentifierLen = 255

// Config is everything needed to open, and later reopen, a session.
type Config struct {
	ProjectID      string
	CredentialPath string
	// Datasets limits table enumeration. Empty means every dataset.
	Datasets      []string
	TimeoutMillis int
	// Endpoint points the client at an emulator; authentication is skipped.
	Endpoint        string
	MetadataRPS     float64
	ListConcurrency int

	Logger       *slog.Logger
	Instrumenter Instrumenter
}

// Timeout returns the configured per-query wait budget, zero when unset.
func (c Config) Timeout() time.Duration {
	if c.TimeoutMillis <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutMillis) * time.Millisecond
}

// Warehouse is the session contract the adapter needs from BigQuery.
type Warehouse interface {
	GetProjectID() string
	ListTableRefs(ctx context.Context) ([]bigquery.TableRef, error)
	GetTableSchema(ctx context.Context, datasetID, tableID string) (*bigquery.TableSchema, error)
	Run(ctx context.Context, statement string, timeout time.Duration) (*bigquery.RunResult, error)
	Close() error
}

// Opener creates a new session from configuration.
type Opener func(ctx context.Context, cfg Config) (Warehouse, error)

// OpenBigQuery is the default Opener.
func OpenBigQuery(ctx context.Context, cfg Config) (Warehouse, error) {
	var opts []option.ClientOption
	if cfg.CredentialPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialPath))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint), option.WithoutAuthentication())
	}

	return bigquery.NewClient(ctx, cfg.ProjectID, bigquery.Settings{
		Datasets:        cfg.Datasets,
		MetadataRPS:     cfg.MetadataRPS,
		ListConcurrency: cfg.ListConcurrency,
	}, opts...)
}

// DatabaseMetadata is captured when the adapter is built.
type DatabaseMetadata struct {
	DatabaseName     string
	MaxIdentifierLen int
}

// connection holds the live session. Reconnect swaps the warehouse in place
// so the statement and schema components see the new session immediately.
type connection struct {
	warehouse Warehouse
}

var errConnectionClosed = &ConnectionError{Message: "connection is closed", Err: ErrConnection}

func (c *connection) session() (Warehouse, error) {
	if c.warehouse == nil {
		return nil, errConnectionClosed
	}
	return c.warehouse, nil
}

// Adapter composes quoting, schema introspection and statement execution
// over one warehouse session.
type Adapter struct {
	Quoter
	*SchemaStatements
	*DatabaseStatements

	cfg      Config
	open     Opener
	conn     *connection
	metadata *DatabaseMetadata
	logger   *slog.Logger
}

var (
	_ Quoting             = (*Adapter)(nil)
	_ SchemaIntrospection = (*Adapter)(nil)
	_ StatementExecution  = (*Adapter)(nil)
	_ Connection          = (*Adapter)(nil)
)

// New opens a BigQuery session and returns a connected adapter.
func New(ctx context.Context, cfg Config) (*Adapter, error) {
	return NewWithOpener(ctx, cfg, OpenBigQuery)
}

// NewWithOpener is New with a custom session factory.
func NewWithOpener(ctx context.Context, cfg Config, open Opener) (*Adapter, error) {
	warehouse, err := open(ctx, cfg)
	if err != nil {
		return nil, newConnectionError(cfg.ProjectID, err)
	}
	return newAdapter(cfg, open, warehouse), nil
}

func newAdapter(cfg Config, open Opener, warehouse Warehouse) *Adapter {
	logger := cfg.Logger
	if logger == nil {
		logger = discardLogger()
	}
	instrumenter := cfg.Instrumenter
	if instrumenter == nil {
		instrumenter = LogInstrumenter{Logger: logger}
	}

	conn := &connection{warehouse: warehouse}
	metadata := &DatabaseMetadata{
		DatabaseName:     warehouse.GetProjectID(),
		MaxIdentifierLen: defaultMaxIdentifierLen,
	}

	return &Adapter{
		SchemaStatements: &SchemaStatements{
			conn:     conn,
			metadata: metadata,
		},
		DatabaseStatements: &DatabaseStatements{
			conn:         conn,
			timeout:      cfg.Timeout(),
			instrumenter: instrumenter,
		},
		cfg:      cfg,
		open:     open,
		conn:     conn,
		metadata: metadata,
		logger:   logger,
	}
}

func (a *Adapter) AdapterName() string {
	return Name
}

// DatabaseMetadata returns what was captured when the adapter was built.
func (a *Adapter) DatabaseMetadata() DatabaseMetadata {
	return *a.metadata
}

func (a *Adapter) CurrentDatabase() string {
	return strings.TrimSpace(a.metadata.DatabaseName)
}

// Active runs a trivial statement. A failing probe is returned as a normal
// statement error; the adapter state does not change.
func (a *Adapter) Active(ctx context.Context) (bool, error) {
	probe, _, err := sq.Select("TRUE AS active").ToSql()
	if err != nil {
		return false, err
	}
	if _, err := a.ExecQuery(ctx, probe, "ACTIVE"); err != nil {
		return false, err
	}
	return true, nil
}

// Reconnect opens a fresh session from the stored configuration and swaps it
// in. The previous session is released once the new one is in place. On
// failure the previous session stays in place.
func (a *Adapter) Reconnect(ctx context.Context) error {
	a.Disconnect()

	warehouse, err := a.open(ctx, a.cfg)
	if err != nil {
		return newConnectionError(a.cfg.ProjectID, err)
	}

	old := a.conn.warehouse
	a.conn.warehouse = warehouse
	a.logger.InfoContext(ctx, "reconnected", slog.String("project", warehouse.GetProjectID()))

	if old != nil {
		if err := old.Close(); err != nil {
			a.logger.WarnContext(ctx, "failed to close previous session", slog.Any("error", err))
		}
	}
	return nil
}

// Reset is an alias for Reconnect.
func (a *Adapter) Reset(ctx context.Context) error {
	return a.Reconnect(ctx)
}

// Disconnect is not supported by the backend. It never tears the session
// down and always reports false.
func (a *Adapter) Disconnect() bool {
	return false
}

// Close releases the underlying client. Use it when the process is done with
// the adapter; it is not a reversible disconnect.
func (a *Adapter) Close() error {
	if a.conn.warehouse == nil {
		return nil
	}
	err := a.conn.warehouse.Close()
	a.conn.warehouse = nil
	return err
}

func (a *Adapter) SupportsMigrations() bool {
	return false
}

// PreparedStatements is always false: statements are sent as plain text.
func (a *Adapter) PreparedStatements() bool {
	return false
}

// Preview returns up to limit rows of a table. limit <= 0 means 100.
func (a *Adapter) Preview(ctx context.Context, table string, limit int) (*Result, error) {
	if limit <= 0 {
		limit = 100
	}
	query, _, err := sq.Select("*").From(a.QuoteTableName(table)).Limit(uint64(limit)).ToSql()
	if err != nil {
		return nil, err
	}
	return a.ExecQuery(ctx, query, "PREVIEW")
}
