package adapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBigQueryIsRegistered(t *testing.T) {
	_, ok := Get(RegistryName)
	assert.True(t, ok)
	assert.Contains(t, ListAdapters(), "bigquery")
}

func TestRegisterAndOpen(t *testing.T) {
	warehouse := &fakeWarehouse{projectID: "proj"}
	Register("test_fake", func(ctx context.Context, cfg Config) (Interface, error) {
		return NewWithOpener(ctx, cfg, func(context.Context, Config) (Warehouse, error) {
			return warehouse, nil
		})
	})

	factory, ok := Get("test_fake")
	assert.True(t, ok)
	assert.NotNil(t, factory)

	a, err := Open(context.Background(), "test_fake", Config{})
	require.NoError(t, err)
	assert.Equal(t, "BigQuery", a.AdapterName())
	assert.Equal(t, "proj", a.CurrentDatabase())
}

func TestOpenEmptyName(t *testing.T) {
	_, err := Open(context.Background(), "", Config{})
	require.Error(t, err)
	assert.Equal(t, "adapter name not specified", err.Error())
}

func TestOpenUnknown(t *testing.T) {
	_, err := Open(context.Background(), "nope", Config{})

	var target *UnknownAdapterError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "nope", target.Name)
	assert.Contains(t, target.Available, "bigquery")
	assert.Contains(t, err.Error(), `"nope"`)
}

func TestListAdaptersSorted(t *testing.T) {
	Register("zz_test", func(context.Context, Config) (Interface, error) { return nil, nil })
	Register("aa_test", func(context.Context, Config) (Interface, error) { return nil, nil })

	names := ListAdapters()
	assert.IsNonDecreasing(t, names)
}
