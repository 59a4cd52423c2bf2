package bigquery

import (
	"fmt"

	"cloud.google.com/go/bigquery"
)

// Field modes as reported by the BigQuery API.
const (
	ModeNullable = "NULLABLE"
	ModeRequired = "REQUIRED"
	ModeRepeated = "REPEATED"
)

type Dataset struct {
	ID        string
	ProjectID string
}

// TableRef identifies one physical table. It is built fresh on every
// enumeration and never cached.
type TableRef struct {
	ProjectID string
	DatasetID string
	TableID   string
}

// QualifiedName returns project.dataset.table.
func (r TableRef) QualifiedName() string {
	return fmt.Sprintf("%s.%s.%s", r.ProjectID, r.DatasetID, r.TableID)
}

type Field struct {
	Name string
	Type string
	Mode string
}

// TableSchema holds the top-level fields of a table. Fields is nil when the
// API reports no schema at all.
type TableSchema struct {
	Fields []*Field
}

// Row is one result row with its column names in select order.
type Row struct {
	Columns []string
	Values  []any
}

// RunResult is what a query run produced. Complete is false when the job was
// still running once the wait budget ran out; Rows is empty in that case.
type RunResult struct {
	Complete bool
	JobID    string
	Rows     []Row
}

func fieldMode(field *bigquery.FieldSchema) string {
	switch {
	case field.Repeated:
		return ModeRepeated
	case field.Required:
		return ModeRequired
	default:
		return ModeNullable
	}
}

func convertBigQuerySchema(schema bigquery.Schema) []*Field {
	if schema == nil {
		return nil
	}
	fields := make([]*Field, 0, len(schema))
	for _, field := range schema {
		fields = append(fields, &Field{
			Name: field.Name,
			Type: string(field.Type),
			Mode: fieldMode(field),
		})
	}
	return fields
}

func fieldNames(schema bigquery.Schema) []string {
	names := make([]string, len(schema))
	for i, field := range schema {
		names[i] = field.Name
	}
	return names
}
