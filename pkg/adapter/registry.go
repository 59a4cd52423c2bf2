package adapter

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// RegistryName is the name the BigQuery adapter is registered under.
const RegistryName = "bigquery"

// Factory builds a connected adapter from configuration.
type Factory func(ctx context.Context, cfg Config) (Interface, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

func init() {
	Register(RegistryName, func(ctx context.Context, cfg Config) (Interface, error) {
		return New(ctx, cfg)
	})
}

// Register adds an adapter factory to the registry, replacing any factory
// already registered under name.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Get retrieves an adapter factory by name.
func Get(name string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[name]
	return f, ok
}

// Open builds an adapter by registered name.
func Open(ctx context.Context, name string, cfg Config) (Interface, error) {
	if name == "" {
		return nil, errors.New("adapter name not specified")
	}

	factory, ok := Get(name)
	if !ok {
		return nil, &UnknownAdapterError{
			Name:      name,
			Available: ListAdapters(),
		}
	}
	return factory(ctx, cfg)
}

// ListAdapters returns all registered adapter names (sorted).
func ListAdapters() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnknownAdapterError is returned when an unknown adapter name is requested.
type UnknownAdapterError struct {
	Name      string
	Available []string
}

func (e *UnknownAdapterError) Error() string {
	return fmt.Sprintf("unknown adapter %q (available: %v)", e.Name, e.Available)
}
