package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/pedrocarmona/big-query-adapter/internal/config"
	"github.com/pedrocarmona/big-query-adapter/pkg/adapter"
)

func renderResult(w io.Writer, result *adapter.Result, format string) error {
	switch format {
	case config.FormatJSON:
		return renderJSON(w, jsonResult{Columns: result.Columns, Rows: result.Rows})
	case config.FormatCSV:
		return renderCSV(w, result.Columns, result.Rows)
	default:
		return renderTable(w, result.Columns, result.Rows)
	}
}

// jsonResult keeps the select order of the columns, which a map per row
// would lose.
type jsonResult struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

func renderTable(w io.Writer, cols []string, rows [][]any) error {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(cols))
	for i, col := range cols {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, values := range rows {
		row := make(table.Row, len(values))
		for i, v := range values {
			row[i] = formatValue(v)
		}
		t.AppendRow(row)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(rows))
	return nil
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderCSV(w io.Writer, cols []string, rows [][]any) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return err
	}
	for _, values := range rows {
		record := make([]string, len(values))
		for i, v := range values {
			record[i] = formatValue(v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// columnRows flattens columns for the table and CSV renderers.
func columnRows(columns []adapter.Column) ([]string, [][]any) {
	cols := []string{"name", "type", "native_type", "nullable"}
	rows := make([][]any, 0, len(columns))
	for _, c := range columns {
		logical := string(c.SQLType)
		if !c.Resolved() {
			logical = "-"
		}
		rows = append(rows, []any{c.Name, logical, c.NativeType, c.Nullable})
	}
	return cols, rows
}

func renderColumns(w io.Writer, columns []adapter.Column, format string) error {
	if format == config.FormatJSON {
		out := make([]map[string]any, 0, len(columns))
		for _, c := range columns {
			out = append(out, map[string]any{
				"name":        c.Name,
				"type":        c.SQLType,
				"native_type": c.NativeType,
				"nullable":    c.Nullable,
			})
		}
		return renderJSON(w, out)
	}

	cols, rows := columnRows(columns)
	if format == config.FormatCSV {
		return renderCSV(w, cols, rows)
	}
	return renderTable(w, cols, rows)
}

func renderNames(w io.Writer, header string, names []string, format string) error {
	switch format {
	case config.FormatJSON:
		return renderJSON(w, names)
	case config.FormatCSV:
		rows := make([][]any, 0, len(names))
		for _, n := range names {
			rows = append(rows, []any{n})
		}
		return renderCSV(w, []string{header}, rows)
	default:
		for _, n := range names {
			_, _ = fmt.Fprintln(w, n)
		}
		return nil
	}
}

type shardCount struct {
	Table  string `json:"table"`
	Shards int    `json:"shards"`
}

// renderShardCounts prints tables in the given order with their shard count.
func renderShardCounts(w io.Writer, tables []string, counts map[string]int, format string) error {
	if format == config.FormatJSON {
		out := make([]shardCount, 0, len(tables))
		for _, name := range tables {
			out = append(out, shardCount{Table: name, Shards: counts[name]})
		}
		return renderJSON(w, out)
	}

	cols := []string{"table", "shards"}
	rows := make([][]any, 0, len(tables))
	for _, name := range tables {
		rows = append(rows, []any{name, counts[name]})
	}
	if format == config.FormatCSV {
		return renderCSV(w, cols, rows)
	}
	return renderTable(w, cols, rows)
}
