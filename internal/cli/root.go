// Package cli provides the bqadapter command-line interface.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pedrocarmona/big-query-adapter/internal/config"
	"github.com/pedrocarmona/big-query-adapter/pkg/adapter"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

// Connector opens an adapter from configuration.
type Connector func(ctx context.Context, cfg adapter.Config) (adapter.Interface, error)

func openRegistered(ctx context.Context, cfg adapter.Config) (adapter.Interface, error) {
	return adapter.Open(ctx, adapter.RegistryName, cfg)
}

// App carries what the commands share once the root command has run.
type App struct {
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
	connect Connector
}

type Option func(*App)

// WithConnector replaces the adapter factory, mainly for tests.
func WithConnector(c Connector) Option {
	return func(a *App) { a.connect = c }
}

// NewRootCmd creates and returns the root command.
func NewRootCmd(opts ...Option) *cobra.Command {
	app := &App{connect: openRegistered}
	for _, opt := range opts {
		opt(app)
	}

	rootCmd := &cobra.Command{
		Use:   "bqadapter",
		Short: "Relational access to BigQuery",
		Long: `bqadapter exposes a BigQuery project through a relational connection
interface: run statements, list logical tables (date-sharded tables are
grouped under a _* wildcard), inspect columns and browse the schema.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			return app.load(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.cfgFile, "config", "", "config file (default: ./"+config.DefaultConfigFile+")")
	flags.StringP("project", "p", "", "Google Cloud project id")
	flags.String("keyfile", "", "path to a service account key file")
	flags.StringSlice("datasets", nil, "only enumerate these datasets (comma separated)")
	flags.Int("timeout-ms", 0, "how long to wait for a query before giving up on it (0 waits forever)")
	flags.String("emulator", "", "BigQuery emulator endpoint, disables authentication")
	flags.Float64("metadata-rps", 0, "cap on metadata API calls per second (0 is unlimited)")
	flags.Int("concurrency", 4, "datasets listed in parallel")
	flags.String("log-level", config.DefaultLogLevel, "log level (debug|info|warn|error)")
	flags.StringP("format", "o", config.DefaultFormat, "output format (table|json|csv)")

	_ = rootCmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{config.FormatTable, config.FormatJSON, config.FormatCSV}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newVersionCommand())
	rootCmd.AddCommand(app.newQueryCommand())
	rootCmd.AddCommand(app.newExecCommand())
	rootCmd.AddCommand(app.newTablesCommand())
	rootCmd.AddCommand(app.newShardsCommand())
	rootCmd.AddCommand(app.newColumnsCommand())
	rootCmd.AddCommand(app.newPreviewCommand())
	rootCmd.AddCommand(app.newPingCommand())
	rootCmd.AddCommand(app.newSchemaCommand())
	rootCmd.AddCommand(app.newBrowseCommand())

	return rootCmd
}

func (a *App) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgFile, cmd.Root().PersistentFlags())
	if err != nil {
		return err
	}

	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	if cfg.FileUsed != "" {
		a.logger.Debug("using config file", slog.String("path", cfg.FileUsed))
	}
	return nil
}

// open validates the configuration and connects.
func (a *App) open(ctx context.Context) (adapter.Interface, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}
	return a.connect(ctx, a.cfg.AdapterConfig(a.logger))
}

// withAdapter opens an adapter, runs fn and closes the adapter again.
func (a *App) withAdapter(cmd *cobra.Command, fn func(ctx context.Context, ad adapter.Interface) error) error {
	ctx := cmd.Context()
	ad, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := ad.Close(); cerr != nil {
			a.logger.Warn("failed to close adapter", slog.Any("error", cerr))
		}
	}()
	return fn(ctx, ad)
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display bqadapter version and build information.`,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "bqadapter v%s (%s)\n", Version, GitCommit)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "adapters: %v\n", adapter.ListAdapters())
		},
	}
}
