// Package config loads bqadapter settings.
//
// Precedence (highest to lowest): flags > env vars > config file > defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/pedrocarmona/big-query-adapter/pkg/adapter"
)

const (
	// EnvPrefix is stripped from environment variables: BQADAPTER_TIMEOUT_MS -> timeout_ms.
	EnvPrefix = "BQADAPTER_"

	DefaultConfigFile = "bqadapter.yaml"
	DefaultLogLevel   = "warn"
	DefaultFormat     = "table"
)

// Output formats accepted by the query commands.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatCSV   = "csv"
)

var ErrNoProject = errors.New("no project specified: set --project, BQADAPTER_PROJECT or GOOGLE_CLOUD_PROJECT")

type Config struct {
	Project     string   `koanf:"project"`
	Keyfile     string   `koanf:"keyfile"`
	Datasets    []string `koanf:"datasets"`
	TimeoutMS   int      `koanf:"timeout_ms"`
	Emulator    string   `koanf:"emulator"`
	MetadataRPS float64  `koanf:"metadata_rps"`
	Concurrency int      `koanf:"concurrency"`
	LogLevel    string   `koanf:"log_level"`
	Format      string   `koanf:"format"`

	// FileUsed is the config file that was read, empty when none was.
	FileUsed string `koanf:"-"`
}

func defaults() map[string]any {
	return map[string]any{
		"timeout_ms":   0,
		"metadata_rps": 0.0,
		"concurrency":  4,
		"log_level":    DefaultLogLevel,
		"format":       DefaultFormat,
	}
}

// findConfigFile returns the explicit path, or bqadapter.yaml / bqadapter.yml
// in the working directory when present.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{DefaultConfigFile, "bqadapter.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load reads configuration. flags may be nil; only flags that were set on the
// command line override other sources.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, any) {
		key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		if key == "datasets" {
			return key, splitList(value)
		}
		return key, value
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.FileUsed = used

	if cfg.Project == "" {
		cfg.Project = projectFromEnv()
	}
	cfg.Datasets = compact(cfg.Datasets)

	return &cfg, nil
}

// projectFromEnv falls back to the variables the Google Cloud tooling sets,
// then to the gcloud default project.
func projectFromEnv() string {
	if project := os.Getenv("GOOGLE_CLOUD_PROJECT"); project != "" {
		return project
	}
	if project := os.Getenv("GCP_PROJECT"); project != "" {
		return project
	}
	return gcloudProject()
}

// gcloudProject is replaced in tests.
var gcloudProject = getGCloudDefaultProject

func getGCloudDefaultProject() string {
	cmd := exec.Command("gcloud", "config", "get-value", "project")
	output, err := cmd.Output()
	if err != nil {
		return ""
	}

	projectID := strings.TrimSpace(string(output))
	if projectID == "(unset)" {
		return ""
	}
	return projectID
}

func splitList(s string) []string {
	return compact(strings.Split(s, ","))
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate checks the settings needed to open a session.
func (c *Config) Validate() error {
	if c.Project == "" {
		return ErrNoProject
	}
	if c.Keyfile != "" {
		if _, err := os.Stat(c.Keyfile); err != nil {
			return fmt.Errorf("credentials file not found: %s", c.Keyfile)
		}
	}
	if c.TimeoutMS < 0 {
		return fmt.Errorf("timeout_ms must not be negative, got %d", c.TimeoutMS)
	}
	if c.MetadataRPS < 0 {
		return fmt.Errorf("metadata_rps must not be negative, got %g", c.MetadataRPS)
	}
	switch c.Format {
	case FormatTable, FormatJSON, FormatCSV:
	default:
		return fmt.Errorf("unknown output format %q (want table, json or csv)", c.Format)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// AdapterConfig maps the settings onto an adapter configuration.
func (c *Config) AdapterConfig(logger *slog.Logger) adapter.Config {
	return adapter.Config{
		ProjectID:       c.Project,
		CredentialPath:  c.Keyfile,
		Datasets:        c.Datasets,
		TimeoutMillis:   c.TimeoutMS,
		Endpoint:        c.Emulator,
		MetadataRPS:     c.MetadataRPS,
		ListConcurrency: c.Concurrency,
		Logger:          logger,
	}
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if name == "" {
		name = DefaultLogLevel
	}
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", name, err)
	}
	return level, nil
}
