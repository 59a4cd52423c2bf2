package adapter

import "maps"

// LogicalType is a column type as the adapter reports it upward.
type LogicalType string

const (
	Boolean   LogicalType = "boolean"
	Integer   LogicalType = "integer"
	Float     LogicalType = "float"
	String    LogicalType = "string"
	DateTime  LogicalType = "datetime"
	Date      LogicalType = "date"
	Timestamp LogicalType = "timestamp"
	Time      LogicalType = "time"
)

var nativeDatabaseTypes = map[LogicalType]string{
	Boolean:   "BOOL",
	Integer:   "INTEGER",
	Float:     "FLOAT",
	String:    "STRING",
	DateTime:  "DATETIME",
	Date:      "DATE",
	Timestamp: "TIMESTAMP",
	Time:      "TIME",
}

var logicalTypes = invert(nativeDatabaseTypes)

func invert(m map[LogicalType]string) map[string]LogicalType {
	out := make(map[string]LogicalType, len(m))
	for logical, native := range m {
		out[native] = logical
	}
	return out
}

// NativeDatabaseTypes returns a copy of the logical to BigQuery type map.
func NativeDatabaseTypes() map[LogicalType]string {
	return maps.Clone(nativeDatabaseTypes)
}

// NativeTypeFor returns the BigQuery type name for a logical type.
func NativeTypeFor(t LogicalType) (string, bool) {
	native, ok := nativeDatabaseTypes[t]
	return native, ok
}

// LogicalTypeFor is the reverse lookup used when reading table schemas.
// Names are matched exactly, so types outside the registry (RECORD, NUMERIC,
// BOOLEAN, ...) are reported as unresolved.
func LogicalTypeFor(native string) (LogicalType, bool) {
	logical, ok := logicalTypes[native]
	return logical, ok
}

// ValidType reports whether t is one of the registered logical types.
func ValidType(t LogicalType) bool {
	_, ok := nativeDatabaseTypes[t]
	return ok
}
