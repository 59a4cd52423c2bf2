package adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/pedrocarmona/big-query-adapter/internal/bigquery"
	"github.com/pedrocarmona/big-query-adapter/internal/tablename"
)

// Column describes one top-level field of a table. SQLType is empty when the
// BigQuery type has no entry in the type registry (RECORD, NUMERIC, ...).
// Precision, Scale and Limit are never set: BigQuery does not expose them in
// the table schema.
type Column struct {
	Name       string
	SQLType    LogicalType
	NativeType string
	Nullable   bool
	Table      string
	Default    any
	Precision  *int
	Scale      *int
	Limit      *int
}

// Resolved reports whether the column's type was found in the registry.
func (c Column) Resolved() bool {
	return c.SQLType != ""
}

type Index struct {
	Table   string
	Name    string
	Unique  bool
	Columns []string
}

type ForeignKey struct {
	FromTable string
	ToTable   string
	Column    string
	Name      string
}

// SchemaStatements answers schema questions by asking the warehouse every
// time. Nothing is memoised between calls.
type SchemaStatements struct {
	conn     *connection
	metadata *DatabaseMetadata
}

// TableRefs lists every physical table in the allowed datasets.
func (s *SchemaStatements) TableRefs(ctx context.Context) ([]bigquery.TableRef, error) {
	warehouse, err := s.conn.session()
	if err != nil {
		return nil, err
	}
	refs, err := warehouse.ListTableRefs(ctx)
	if err != nil {
		return nil, Translate(err, "")
	}
	return refs, nil
}

// Tables returns the logical table names, date-sharded tables collapsed to
// their _* wildcard.
func (s *SchemaStatements) Tables(ctx context.Context) ([]string, error) {
	refs, err := s.TableRefs(ctx)
	if err != nil {
		return nil, err
	}
	return tablename.Resolve(refs), nil
}

// TableShards counts the physical tables behind each logical table. A plain
// table counts as one.
func (s *SchemaStatements) TableShards(ctx context.Context) (map[string]int, error) {
	refs, err := s.TableRefs(ctx)
	if err != nil {
		return nil, err
	}
	groups := tablename.Group(refs)
	counts := make(map[string]int, len(groups))
	for name, members := range groups {
		counts[name] = len(members)
	}
	return counts, nil
}

// PhysicalTables lists the qualified names a logical table resolves to, in
// enumeration order. It is empty when nothing matches.
func (s *SchemaStatements) PhysicalTables(ctx context.Context, name string) ([]string, error) {
	refs, err := s.TableRefs(ctx)
	if err != nil {
		return nil, err
	}
	matches := tablename.FindAll(refs, name)
	names := make([]string, 0, len(matches))
	for _, ref := range matches {
		names = append(names, ref.QualifiedName())
	}
	return names, nil
}

// TableExists reports whether name is one of the logical tables.
func (s *SchemaStatements) TableExists(ctx context.Context, name string) (bool, error) {
	refs, err := s.TableRefs(ctx)
	if err != nil {
		return false, err
	}
	_, ok := tablename.Find(refs, name)
	return ok, nil
}

// Columns resolves tableName to a physical table (the first shard for a
// wildcard name) and translates its schema.
func (s *SchemaStatements) Columns(ctx context.Context, tableName string) ([]Column, error) {
	refs, err := s.TableRefs(ctx)
	if err != nil {
		return nil, err
	}

	ref, ok := tablename.Find(refs, tableName)
	if !ok {
		return nil, &StatementInvalidError{
			Message: fmt.Sprintf("table %s not found", tableName),
			Err:     ErrTableNotFound,
		}
	}

	warehouse, err := s.conn.session()
	if err != nil {
		return nil, err
	}
	schema, err := warehouse.GetTableSchema(ctx, ref.DatasetID, ref.TableID)
	if err != nil {
		return nil, Translate(err, "")
	}
	if schema == nil {
		return []Column{}, nil
	}
	return TranslateFields(tableName, schema.Fields), nil
}

// TranslateFields maps warehouse fields to columns. A missing field list
// gives an empty slice.
func TranslateFields(tableName string, fields []*bigquery.Field) []Column {
	columns := make([]Column, 0, len(fields))
	for _, field := range fields {
		columns = append(columns, TranslateField(tableName, field))
	}
	return columns
}

func TranslateField(tableName string, field *bigquery.Field) Column {
	sqlType, _ := LogicalTypeFor(field.Type)
	return Column{
		Name:       field.Name,
		SQLType:    sqlType,
		NativeType: field.Type,
		Nullable:   field.Mode == bigquery.ModeNullable,
		Table:      tableName,
	}
}

// Views always returns an empty list.
func (s *SchemaStatements) Views(context.Context) ([]string, error) {
	return []string{}, nil
}

// Indexes always returns an empty list; BigQuery has no indexes.
func (s *SchemaStatements) Indexes(context.Context, string) ([]Index, error) {
	return []Index{}, nil
}

// PrimaryKey always returns an empty list.
func (s *SchemaStatements) PrimaryKey(context.Context, string) ([]string, error) {
	return []string{}, nil
}

func (s *SchemaStatements) ForeignKeys(context.Context, string) ([]ForeignKey, error) {
	return []ForeignKey{}, nil
}

// IndexName builds index_<table>_on_<col>_and_<col> and cuts it to the
// maximum identifier length.
func (s *SchemaStatements) IndexName(table string, columns []string) string {
	name := fmt.Sprintf("index_%s_on_%s", table, strings.Join(columns, "_and_"))

	maximum := s.metadata.MaxIdentifierLen
	if maximum <= 0 {
		maximum = defaultMaxIdentifierLen
	}
	if len(name) > maximum {
		name = name[:maximum]
	}
	return name
}
