package adapter

import (
	"fmt"
	"strings"
	"time"
)

// Quoter renders identifiers and literals in BigQuery standard SQL.
type Quoter struct{}

// QuoteString escapes single quotes by doubling them.
func (Quoter) QuoteString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// QuoteTableName wraps the whole, possibly qualified, name in backticks.
func (Quoter) QuoteTableName(name string) string {
	return "`" + name + "`"
}

func (q Quoter) QuoteColumnName(name string) string {
	return q.QuoteTableName(name)
}

// Quote renders a Go value as a SQL literal.
func (q Quoter) Quote(value any) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + q.QuoteString(v) + "'"
	case []byte:
		return "'" + q.QuoteString(string(v)) + "'"
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case time.Time:
		return "TIMESTAMP '" + v.UTC().Format("2006-01-02 15:04:05.999999") + "'"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(v)
	default:
		return "'" + q.QuoteString(fmt.Sprint(v)) + "'"
	}
}
