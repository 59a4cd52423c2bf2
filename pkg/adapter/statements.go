package adapter

import (
	"context"
	"time"

	"github.com/pedrocarmona/big-query-adapter/internal/bigquery"
)

// Result is a query result: column names in select order and one value
// slice per row in the same order. Both are empty, never nil, when there is
// nothing to report.
type Result struct {
	Columns []string
	Rows    [][]any
}

func emptyResult() *Result {
	return &Result{Columns: []string{}, Rows: [][]any{}}
}

// Empty reports whether the result has no rows.
func (r *Result) Empty() bool {
	return len(r.Rows) == 0
}

// NewResult shapes a run into a Result. An incomplete run gives an empty
// result, whatever rows came with it. Column names come from the first row,
// so a complete run without rows also gives an empty result.
func NewResult(run *bigquery.RunResult) *Result {
	result := emptyResult()
	if run == nil || !run.Complete {
		return result
	}

	if len(run.Rows) > 0 {
		result.Columns = append(result.Columns, run.Rows[0].Columns...)
	}
	for _, row := range run.Rows {
		values := make([]any, len(result.Columns))
		copy(values, row.Values)
		result.Rows = append(result.Rows, values)
	}
	return result
}

// DatabaseStatements runs statements against the current session.
type DatabaseStatements struct {
	conn         *connection
	timeout      time.Duration
	instrumenter Instrumenter
}

// ExecQuery runs sql and returns its rows. name labels the statement for the
// instrumenter. Failures come back classified (see Translate).
func (d *DatabaseStatements) ExecQuery(ctx context.Context, sql, name string) (*Result, error) {
	if name == "" {
		name = "SQL"
	}

	var result *Result
	err := d.instrumenter.Instrument(ctx, name, sql, func(ctx context.Context) error {
		warehouse, err := d.conn.session()
		if err != nil {
			return err
		}
		run, err := warehouse.Run(ctx, sql, d.timeout)
		if err != nil {
			return Translate(err, sql)
		}
		result = NewResult(run)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Execute runs sql for its side effects.
func (d *DatabaseStatements) Execute(ctx context.Context, sql, name string) error {
	_, err := d.ExecQuery(ctx, sql, name)
	return err
}

// SupportsDDLTransactions is always false: BigQuery has no transactional DDL.
func (d *DatabaseStatements) SupportsDDLTransactions() bool {
	return false
}

// NativeDatabaseTypes exposes the type registry.
func (d *DatabaseStatements) NativeDatabaseTypes() map[LogicalType]string {
	return NativeDatabaseTypes()
}

// ValidType reports whether t is a registered logical type.
func (d *DatabaseStatements) ValidType(t LogicalType) bool {
	return ValidType(t)
}
