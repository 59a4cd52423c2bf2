package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pedrocarmona/big-query-adapter/internal/config"
	"github.com/pedrocarmona/big-query-adapter/internal/schemacache"
	"github.com/pedrocarmona/big-query-adapter/internal/tui"
	"github.com/pedrocarmona/big-query-adapter/pkg/adapter"
)

func (a *App) newQueryCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "query SQL",
		Short: "Run a statement and print its rows",
		Long: `Run a standard SQL statement and print the result.

A statement that does not finish within --timeout-ms prints no rows; the job
keeps running in BigQuery.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sql := strings.Join(args, " ")
			return a.withAdapter(cmd, func(ctx context.Context, ad adapter.Interface) error {
				result, err := ad.ExecQuery(ctx, sql, name)
				if err != nil {
					return describe(err)
				}
				return renderResult(cmd.OutOrStdout(), result, a.cfg.Format)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "label for the statement in logs")
	return cmd
}

func (a *App) newExecCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "exec SQL",
		Short: "Run a statement for its side effects",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sql := strings.Join(args, " ")
			return a.withAdapter(cmd, func(ctx context.Context, ad adapter.Interface) error {
				if err := ad.Execute(ctx, sql, "EXEC"); err != nil {
					return describe(err)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "OK")
				return nil
			})
		},
	}
}

func (a *App) newTablesCommand() *cobra.Command {
	var shards bool

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List logical tables",
		Long: `List the logical tables of the configured datasets. Date-sharded tables
(name_YYYYMMDD) are listed once as name_*.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withAdapter(cmd, func(ctx context.Context, ad adapter.Interface) error {
				tables, err := ad.Tables(ctx)
				if err != nil {
					return describe(err)
				}
				if !shards {
					return renderNames(cmd.OutOrStdout(), "table", tables, a.cfg.Format)
				}

				counts, err := ad.TableShards(ctx)
				if err != nil {
					return describe(err)
				}
				return renderShardCounts(cmd.OutOrStdout(), tables, counts, a.cfg.Format)
			})
		},
	}
	cmd.Flags().BoolVar(&shards, "shards", false, "also show how many physical tables each name covers")
	return cmd
}

func (a *App) newShardsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shards TABLE",
		Short: "List the physical tables behind a logical table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withAdapter(cmd, func(ctx context.Context, ad adapter.Interface) error {
				names, err := ad.PhysicalTables(ctx, args[0])
				if err != nil {
					return describe(err)
				}
				if len(names) == 0 {
					return fmt.Errorf("table %s not found: %w", args[0], adapter.ErrTableNotFound)
				}
				return renderNames(cmd.OutOrStdout(), "table", names, a.cfg.Format)
			})
		},
	}
}

func (a *App) newColumnsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "columns TABLE",
		Short: "Show the columns of a logical table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withAdapter(cmd, func(ctx context.Context, ad adapter.Interface) error {
				columns, err := ad.Columns(ctx, args[0])
				if err != nil {
					return describe(err)
				}
				return renderColumns(cmd.OutOrStdout(), columns, a.cfg.Format)
			})
		},
	}
}

func (a *App) newPreviewCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "preview TABLE",
		Short: "Print the first rows of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withAdapter(cmd, func(ctx context.Context, ad adapter.Interface) error {
				result, err := ad.Preview(ctx, args[0], limit)
				if err != nil {
					return describe(err)
				}
				return renderResult(cmd.OutOrStdout(), result, a.cfg.Format)
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum rows")
	return cmd
}

func (a *App) newPingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the project answers queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withAdapter(cmd, func(ctx context.Context, ad adapter.Interface) error {
				if _, err := ad.Active(ctx); err != nil {
					return describe(err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: active (%s)\n", ad.CurrentDatabase(), ad.AdapterName())
				return nil
			})
		},
	}
}

func (a *App) newSchemaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Dump and inspect schema snapshots",
	}
	cmd.AddCommand(a.newSchemaDumpCommand())
	cmd.AddCommand(a.newSchemaShowCommand())
	cmd.AddCommand(a.newSchemaClearCommand())
	return cmd
}

// loadSnapshot reads the given snapshot file, or the stored snapshot of the
// configured project when path is empty.
func (a *App) loadSnapshot(path string) (*schemacache.Snapshot, string, error) {
	if path != "" {
		snap, err := schemacache.Load(path)
		return snap, path, err
	}

	if a.cfg.Project == "" {
		return nil, "", errors.New("no snapshot given: pass --snapshot or --project")
	}
	store, err := schemacache.New()
	if err != nil {
		return nil, "", err
	}
	path = store.Path(a.cfg.Project)
	snap, ok := store.Get(a.cfg.Project)
	if !ok {
		return nil, path, fmt.Errorf("no snapshot for project %s at %s: run schema dump first", a.cfg.Project, path)
	}
	return snap, path, nil
}

func (a *App) newSchemaDumpCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Write every logical table and its columns to a snapshot file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withAdapter(cmd, func(ctx context.Context, ad adapter.Interface) error {
				snap, err := schemacache.Build(ctx, ad)
				if err != nil {
					return describe(err)
				}

				path := output
				if path == "" {
					store, err := schemacache.New()
					if err != nil {
						return err
					}
					if path, err = store.Save(snap); err != nil {
						return err
					}
				} else if err := schemacache.Dump(path, snap); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %d tables to %s\n", len(snap.Tables), path)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&output, "output-file", "", "snapshot path (default: the user cache directory)")
	return cmd
}

func (a *App) newSchemaShowCommand() *cobra.Command {
	var snapshot string

	cmd := &cobra.Command{
		Use:   "show [TABLE]",
		Short: "Print a snapshot written by schema dump",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, path, err := a.loadSnapshot(snapshot)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(args) == 0 {
				_, _ = fmt.Fprintf(w, "# %s (%s)\n", snap.Project, snap.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
				return renderNames(w, "table", snap.TableNames(), a.cfg.Format)
			}

			columns, ok := snap.Tables[args[0]]
			if !ok {
				return fmt.Errorf("table %s is not in snapshot %s", args[0], path)
			}
			rows := make([][]any, 0, len(columns))
			for _, c := range columns {
				logical := c.SQLType
				if logical == "" {
					logical = "-"
				}
				rows = append(rows, []any{c.Name, logical, c.NativeType, c.Nullable})
			}
			return renderTable(w, []string{"name", "type", "native_type", "nullable"}, rows)
		},
	}
	cmd.Flags().StringVar(&snapshot, "snapshot", "", "snapshot file to read")
	return cmd
}

func (a *App) newSchemaClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored snapshot of the project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.Project == "" {
				return config.ErrNoProject
			}
			store, err := schemacache.New()
			if err != nil {
				return err
			}
			if err := store.Clear(a.cfg.Project); err != nil {
				return fmt.Errorf("failed to clear snapshot: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", store.Path(a.cfg.Project))
			return nil
		},
	}
}

func (a *App) newBrowseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse logical tables interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withAdapter(cmd, func(ctx context.Context, ad adapter.Interface) error {
				model := tui.NewModel(ctx, ad, nil)
				p := tea.NewProgram(model,
					tea.WithAltScreen(),
					tea.WithContext(ctx),
					tea.WithInput(cmd.InOrStdin()),
					tea.WithOutput(os.Stdout),
				)
				if _, err := p.Run(); err != nil {
					return fmt.Errorf("browser failed: %w", err)
				}
				return nil
			})
		},
	}
}

// describe prefixes adapter errors with their kind so scripted callers can
// tell a timeout from a uniqueness violation.
func describe(err error) error {
	switch adapter.KindOf(err) {
	case adapter.KindTimeout:
		return fmt.Errorf("query timeout: %w", err)
	case adapter.KindUniqueness:
		return fmt.Errorf("record not unique: %w", err)
	case adapter.KindConnectivity:
		return fmt.Errorf("connection: %w", err)
	default:
		return err
	}
}
