package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/pedrocarmona/big-query-adapter/internal/bigquery"
)

type fakeWarehouse struct {
	projectID string
	refs      []bigquery.TableRef
	schemas   map[string]*bigquery.TableSchema
	run       *bigquery.RunResult

	listErr   error
	schemaErr error
	runErr    error

	statements []string
	timeouts   []time.Duration
	listCalls  int
	closed     bool
}

func (f *fakeWarehouse) GetProjectID() string { return f.projectID }

func (f *fakeWarehouse) ListTableRefs(context.Context) ([]bigquery.TableRef, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.refs, nil
}

func (f *fakeWarehouse) GetTableSchema(_ context.Context, datasetID, tableID string) (*bigquery.TableSchema, error) {
	if f.schemaErr != nil {
		return nil, f.schemaErr
	}
	schema, ok := f.schemas[datasetID+"."+tableID]
	if !ok {
		return nil, errors.New("404 table not found")
	}
	return schema, nil
}

func (f *fakeWarehouse) Run(_ context.Context, statement string, timeout time.Duration) (*bigquery.RunResult, error) {
	f.statements = append(f.statements, statement)
	f.timeouts = append(f.timeouts, timeout)
	if f.runErr != nil {
		return nil, f.runErr
	}
	if f.run == nil {
		return &bigquery.RunResult{Complete: true}, nil
	}
	return f.run, nil
}

func (f *fakeWarehouse) Close() error {
	f.closed = true
	return nil
}

func ref(dataset, table string) bigquery.TableRef {
	return bigquery.TableRef{ProjectID: "proj", DatasetID: dataset, TableID: table}
}

// newTestAdapter builds an adapter whose opener hands out the given
// warehouses in order.
func newTestAdapter(cfg Config, warehouses ...*fakeWarehouse) (*Adapter, *int) {
	opened := 0
	open := func(context.Context, Config) (Warehouse, error) {
		if opened >= len(warehouses) {
			return nil, errors.New("no more sessions")
		}
		w := warehouses[opened]
		opened++
		return w, nil
	}
	a, err := NewWithOpener(context.Background(), cfg, open)
	if err != nil {
		panic(err)
	}
	return a, &opened
}
