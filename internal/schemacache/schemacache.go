// Package schemacache writes and reads schema snapshots: the logical tables of
// a project and their translated columns, as JSON files. Nothing here is
// consulted by the adapter itself; snapshots are produced and read on request.
package schemacache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/pedrocarmona/big-query-adapter/pkg/adapter"
)

// Column is the persisted form of adapter.Column.
type Column struct {
	Name       string `json:"name"`
	SQLType    string `json:"sql_type,omitempty"`
	NativeType string `json:"native_type"`
	Nullable   bool   `json:"nullable"`
}

type Snapshot struct {
	Project     string              `json:"project"`
	GeneratedAt time.Time           `json:"generated_at"`
	Tables      map[string][]Column `json:"tables"`
}

// TableNames returns the snapshot's logical table names, sorted.
func (s *Snapshot) TableNames() []string {
	names := make([]string, 0, len(s.Tables))
	for name := range s.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Introspector is the part of the adapter a snapshot is built from.
type Introspector interface {
	CurrentDatabase() string
	Tables(ctx context.Context) ([]string, error)
	Columns(ctx context.Context, tableName string) ([]adapter.Column, error)
}

// Build asks the adapter for every logical table and its columns.
func Build(ctx context.Context, src Introspector) (*Snapshot, error) {
	tables, err := src.Tables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	snap := &Snapshot{
		Project:     src.CurrentDatabase(),
		GeneratedAt: time.Now().UTC(),
		Tables:      make(map[string][]Column, len(tables)),
	}
	for _, table := range tables {
		columns, err := src.Columns(ctx, table)
		if err != nil {
			return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
		}
		snap.Tables[table] = fromAdapter(columns)
	}
	return snap, nil
}

func fromAdapter(columns []adapter.Column) []Column {
	out := make([]Column, 0, len(columns))
	for _, c := range columns {
		out = append(out, Column{
			Name:       c.Name,
			SQLType:    string(c.SQLType),
			NativeType: c.NativeType,
			Nullable:   c.Nullable,
		})
	}
	return out
}

// Dump writes snap to path, creating parent directories.
func Dump(path string, snap *Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Load reads a snapshot written by Dump.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}
	if snap.Tables == nil {
		snap.Tables = map[string][]Column{}
	}
	return &snap, nil
}

// Store keeps one snapshot per project under a base directory.
type Store struct {
	baseDir string
}

// New creates a store in the OS-appropriate cache directory.
func New() (*Store, error) {
	cacheDir, err := getCacheDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get cache directory: %w", err)
	}
	return NewAt(filepath.Join(cacheDir, "bqadapter")), nil
}

func NewAt(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// getCacheDir returns the appropriate cache directory for the OS
func getCacheDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		cacheDir := os.Getenv("LOCALAPPDATA")
		if cacheDir == "" {
			cacheDir = os.Getenv("TEMP")
		}
		if cacheDir == "" {
			return "", errors.New("cannot determine cache directory on Windows")
		}
		return cacheDir, nil
	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(homeDir, "Library", "Caches"), nil
	default:
		cacheDir := os.Getenv("XDG_CACHE_HOME")
		if cacheDir != "" {
			return cacheDir, nil
		}
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(homeDir, ".cache"), nil
	}
}

// Path is where the snapshot of project lives.
func (s *Store) Path(project string) string {
	safe := strings.NewReplacer("/", "_", string(filepath.Separator), "_").Replace(project)
	return filepath.Join(s.baseDir, fmt.Sprintf("schema_%s.json", safe))
}

func (s *Store) Save(snap *Snapshot) (string, error) {
	path := s.Path(snap.Project)
	return path, Dump(path, snap)
}

// Get returns the stored snapshot of project, if any.
func (s *Store) Get(project string) (*Snapshot, bool) {
	snap, err := Load(s.Path(project))
	if err != nil {
		return nil, false
	}
	return snap, true
}

// Clear removes the stored snapshot of project.
func (s *Store) Clear(project string) error {
	err := os.Remove(s.Path(project))
	if os.IsNotExist(err) {
		return nil // Not an error if file doesn't exist
	}
	return err
}
