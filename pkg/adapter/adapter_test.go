package adapter

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigTimeout(t *testing.T) {
	assert.Equal(t, time.Duration(0), Config{}.Timeout())
	assert.Equal(t, time.Duration(0), Config{TimeoutMillis: -5}.Timeout())
	assert.Equal(t, 250*time.Millisecond, Config{TimeoutMillis: 250}.Timeout())
}

func TestNewWithOpenerFailure(t *testing.T) {
	open := func(context.Context, Config) (Warehouse, error) {
		return nil, errors.New("could not find default credentials")
	}

	a, err := NewWithOpener(context.Background(), Config{ProjectID: "proj"}, open)
	assert.Nil(t, a)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnection)
	assert.Contains(t, err.Error(), "proj")
}

func TestAdapterIdentity(t *testing.T) {
	a, _ := newTestAdapter(Config{ProjectID: "proj"}, &fakeWarehouse{projectID: "proj"})

	assert.Equal(t, "BigQuery", a.AdapterName())
	assert.Equal(t, "proj", a.CurrentDatabase())
	assert.Equal(t, DatabaseMetadata{DatabaseName: "proj", MaxIdentifierLen: 255}, a.DatabaseMetadata())
	assert.False(t, a.SupportsMigrations())
	assert.False(t, a.PreparedStatements())
	assert.False(t, a.SupportsDDLTransactions())
}

func TestActive(t *testing.T) {
	warehouse := &fakeWarehouse{projectID: "proj"}
	a, _ := newTestAdapter(Config{}, warehouse)

	ok, err := a.Active(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"SELECT TRUE AS active"}, warehouse.statements)
}

func TestActiveFailure(t *testing.T) {
	warehouse := &fakeWarehouse{projectID: "proj", runErr: errors.New("500 backend error")}
	a, _ := newTestAdapter(Config{}, warehouse)

	ok, err := a.Active(context.Background())
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrStatementInvalid)

	warehouse.runErr = nil
	ok, err = a.Active(context.Background())
	require.NoError(t, err)
	assert.True(t, ok, "a failed probe leaves the session usable")
}

func TestDisconnectIsNoop(t *testing.T) {
	warehouse := &fakeWarehouse{projectID: "proj"}
	a, _ := newTestAdapter(Config{}, warehouse)

	assert.False(t, a.Disconnect())
	assert.False(t, warehouse.closed)

	ok, err := a.Active(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReconnectSwapsSession(t *testing.T) {
	first := &fakeWarehouse{projectID: "proj"}
	second := &fakeWarehouse{projectID: "proj"}
	a, opened := newTestAdapter(Config{}, first, second)

	require.NoError(t, a.Reconnect(context.Background()))
	assert.Equal(t, 2, *opened)
	assert.True(t, first.closed)

	_, err := a.ExecQuery(context.Background(), "SELECT 1", "")
	require.NoError(t, err)
	assert.Empty(t, first.statements)
	assert.Equal(t, []string{"SELECT 1"}, second.statements)

	_, err = a.Tables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, first.listCalls)
	assert.Equal(t, 1, second.listCalls)
}

func TestReconnectFailureKeepsSession(t *testing.T) {
	first := &fakeWarehouse{projectID: "proj"}
	a, _ := newTestAdapter(Config{ProjectID: "proj"}, first)

	err := a.Reconnect(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnection)
	assert.False(t, first.closed)

	_, err = a.ExecQuery(context.Background(), "SELECT 1", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT 1"}, first.statements)
}

func TestReset(t *testing.T) {
	second := &fakeWarehouse{projectID: "proj"}
	a, opened := newTestAdapter(Config{}, &fakeWarehouse{projectID: "proj"}, second)

	require.NoError(t, a.Reset(context.Background()))
	assert.Equal(t, 2, *opened)
}

func TestClose(t *testing.T) {
	warehouse := &fakeWarehouse{projectID: "proj"}
	a, _ := newTestAdapter(Config{}, warehouse)

	require.NoError(t, a.Close())
	assert.True(t, warehouse.closed)
	require.NoError(t, a.Close())

	_, err := a.ExecQuery(context.Background(), "SELECT 1", "")
	assert.ErrorIs(t, err, ErrConnection)

	_, err = a.Tables(context.Background())
	assert.ErrorIs(t, err, ErrConnection)
}

func TestPreview(t *testing.T) {
	warehouse := &fakeWarehouse{projectID: "proj"}
	a, _ := newTestAdapter(Config{}, warehouse)

	_, err := a.Preview(context.Background(), "proj.analytics.events_*", 10)
	require.NoError(t, err)
	_, err = a.Preview(context.Background(), "proj.analytics.users", 0)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"SELECT * FROM `proj.analytics.events_*` LIMIT 10",
		"SELECT * FROM `proj.analytics.users` LIMIT 100",
	}, warehouse.statements)
}

func TestLogInstrumenter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	warehouse := &fakeWarehouse{projectID: "proj"}
	a, _ := newTestAdapter(Config{Logger: logger}, warehouse)

	_, err := a.ExecQuery(context.Background(), "SELECT 1", "probe")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "statement executed")
	assert.Contains(t, buf.String(), "name=probe")

	buf.Reset()
	warehouse.runErr = errors.New("Query has timed out")
	_, err = a.ExecQuery(context.Background(), "SELECT 2", "")
	require.Error(t, err)
	assert.Contains(t, buf.String(), "statement failed")
	assert.Contains(t, buf.String(), "kind=query_timeout")
}

func TestInstrumenterSeesTranslatedError(t *testing.T) {
	var seen error
	cfg := Config{
		Instrumenter: InstrumenterFunc(func(ctx context.Context, _, _ string, fn func(context.Context) error) error {
			seen = fn(ctx)
			return seen
		}),
	}
	a, _ := newTestAdapter(cfg, &fakeWarehouse{projectID: "proj", runErr: errors.New("23505 dup")})

	_, err := a.ExecQuery(context.Background(), "INSERT", "")
	assert.ErrorIs(t, err, ErrRecordNotUnique)
	assert.ErrorIs(t, seen, ErrRecordNotUnique)
}
