package bigquery

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/bigquery"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const defaultListConcurrency = 4

// Settings tune how the client enumerates the warehouse.
type Settings struct {
	// Datasets restricts enumeration to these dataset ids. Empty means all.
	Datasets []string
	// MetadataRPS caps metadata API calls per second. Zero disables the cap.
	MetadataRPS float64
	// ListConcurrency bounds how many datasets are listed at once.
	ListConcurrency int
}

type Client struct {
	bqClient    *bigquery.Client
	projectID   string
	datasets    map[string]bool
	limiter     *rate.Limiter
	concurrency int
}

func NewClient(ctx context.Context, projectID string, settings Settings, opts ...option.ClientOption) (*Client, error) {
	bqClient, err := bigquery.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create BigQuery client: %w", err)
	}

	c := &Client{
		bqClient:    bqClient,
		projectID:   projectID,
		limiter:     rate.NewLimiter(rate.Inf, 0),
		concurrency: settings.ListConcurrency,
	}
	if settings.MetadataRPS > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(settings.MetadataRPS), 1)
	}
	if c.concurrency <= 0 {
		c.concurrency = defaultListConcurrency
	}
	if len(settings.Datasets) > 0 {
		c.datasets = make(map[string]bool, len(settings.Datasets))
		for _, id := range settings.Datasets {
			c.datasets[id] = true
		}
	}

	return c, nil
}

func (c *Client) Close() error {
	return c.bqClient.Close()
}

func (c *Client) GetProjectID() string {
	return c.projectID
}

// ListDatasets returns the datasets visible to the client, filtered by the
// configured allow-list and sorted by id.
func (c *Client) ListDatasets(ctx context.Context) ([]*Dataset, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	datasets := make([]*Dataset, 0)
	it := c.bqClient.Datasets(ctx)

	for {
		dataset, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate datasets: %w", err)
		}
		if !c.allowed(dataset.DatasetID) {
			continue
		}

		datasets = append(datasets, &Dataset{
			ID:        dataset.DatasetID,
			ProjectID: dataset.ProjectID,
		})
	}

	sort.Slice(datasets, func(i, j int) bool {
		return datasets[i].ID < datasets[j].ID
	})

	return datasets, nil
}

func (c *Client) allowed(datasetID string) bool {
	if len(c.datasets) == 0 {
		return true
	}
	return c.datasets[datasetID]
}

func (c *Client) ListTables(ctx context.Context, datasetID string) ([]TableRef, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	tables := make([]TableRef, 0)
	it := c.bqClient.Dataset(datasetID).Tables(ctx)

	for {
		table, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate tables in dataset %s: %w", datasetID, err)
		}

		tables = append(tables, TableRef{
			ProjectID: table.ProjectID,
			DatasetID: table.DatasetID,
			TableID:   table.TableID,
		})
	}

	sort.Slice(tables, func(i, j int) bool {
		return tables[i].TableID < tables[j].TableID
	})

	return tables, nil
}

// ListTableRefs enumerates every table of every allowed dataset. Datasets are
// listed concurrently but the result keeps dataset order, then table order.
func (c *Client) ListTableRefs(ctx context.Context) ([]TableRef, error) {
	datasets, err := c.ListDatasets(ctx)
	if err != nil {
		return nil, err
	}

	perDataset := make([][]TableRef, len(datasets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, dataset := range datasets {
		g.Go(func() error {
			refs, err := c.ListTables(gctx, dataset.ID)
			if err != nil {
				return err
			}
			perDataset[i] = refs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var refs []TableRef
	for _, tables := range perDataset {
		refs = append(refs, tables...)
	}
	return refs, nil
}

func (c *Client) GetTableSchema(ctx context.Context, datasetID, tableID string) (*TableSchema, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	table := c.bqClient.Dataset(datasetID).Table(tableID)
	metadata, err := table.Metadata(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get table metadata: %w", err)
	}

	return &TableSchema{
		Fields: convertBigQuerySchema(metadata.Schema),
	}, nil
}

// Run executes a standard SQL statement. A positive timeout bounds how long
// the call waits for the job; when it runs out the job is left alone and an
// incomplete result is returned.
func (c *Client) Run(ctx context.Context, statement string, timeout time.Duration) (*RunResult, error) {
	q := c.bqClient.Query(statement)
	q.UseStandardSQL = true

	job, err := q.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run query: %w", err)
	}

	waitCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	status, err := job.Wait(waitCtx)
	if err != nil {
		if waitCtx.Err() != nil && ctx.Err() == nil {
			return &RunResult{Complete: false, JobID: job.ID()}, nil
		}
		return nil, fmt.Errorf("failed to wait for job completion: %w", err)
	}

	if status.Err() != nil {
		return nil, fmt.Errorf("query failed: %w", status.Err())
	}

	it, err := job.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read query results: %w", err)
	}

	var columns []string
	rows := make([]Row, 0)

	for {
		var values []bigquery.Value
		err := it.Next(&values)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate query results: %w", err)
		}

		if columns == nil {
			columns = fieldNames(it.Schema)
		}

		rowData := make([]any, len(values))
		for i, val := range values {
			rowData[i] = val
		}
		rows = append(rows, Row{Columns: columns, Values: rowData})
	}

	return &RunResult{
		Complete: true,
		JobID:    job.ID(),
		Rows:     rows,
	}, nil
}
