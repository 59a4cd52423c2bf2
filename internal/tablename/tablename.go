// Package tablename collapses date-sharded BigQuery tables into wildcard
// table names and maps wildcard names back to physical tables.
//
// A physical table whose id ends in _YYYYMMDD, where the suffix is a real
// calendar date, belongs to the logical table <prefix>_*. Every other table
// is its own logical table.
package tablename

import (
	"regexp"
	"strings"
	"time"
)

// WildcardSuffix marks a logical name that stands for a family of shards.
const WildcardSuffix = "_*"

const shardDateLayout = "20060102"

// Ref is anything that has a fully qualified project.dataset.table name.
type Ref interface {
	QualifiedName() string
}

// IsPartitioned reports whether the last underscore-separated segment of the
// name is a valid YYYYMMDD date. An 8-digit suffix that is not a real date
// (e.g. 99999999) does not count.
func IsPartitioned(qualified string) bool {
	segments := strings.Split(qualified, "_")
	if len(segments) < 2 {
		return false
	}
	return isShardDate(segments[len(segments)-1])
}

func isShardDate(s string) bool {
	if len(s) != len(shardDateLayout) {
		return false
	}
	_, err := time.Parse(shardDateLayout, s)
	return err == nil
}

// LogicalName returns the wildcard name for a sharded table and the name
// unchanged otherwise.
func LogicalName(qualified string) string {
	if !IsPartitioned(qualified) {
		return qualified
	}
	segments := strings.Split(qualified, "_")
	return strings.Join(segments[:len(segments)-1], "_") + WildcardSuffix
}

// IsWildcard reports whether a logical name ends in _*.
func IsWildcard(logical string) bool {
	return strings.HasSuffix(logical, WildcardSuffix)
}

// Resolve returns the distinct logical names of refs, in the order each name
// is first seen.
func Resolve[R Ref](refs []R) []string {
	seen := make(map[string]bool, len(refs))
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		name := LogicalName(ref.QualifiedName())
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// Group maps each logical name to its physical members, preserving the
// enumeration order inside each group.
func Group[R Ref](refs []R) map[string][]R {
	groups := make(map[string][]R)
	for _, ref := range refs {
		name := LogicalName(ref.QualifiedName())
		groups[name] = append(groups[name], ref)
	}
	return groups
}

// Matcher decides whether a physical qualified name belongs to a logical name.
type Matcher func(qualified string) bool

// NewMatcher builds the matcher for a logical name. A wildcard name matches
// its prefix followed by exactly eight digits; any other name matches only
// itself.
func NewMatcher(logical string) Matcher {
	if !IsWildcard(logical) {
		return func(qualified string) bool { return qualified == logical }
	}
	prefix := strings.TrimSuffix(logical, "*")
	pattern := regexp.MustCompile("^" + regexp.QuoteMeta(prefix) + "[0-9]{8}$")
	return pattern.MatchString
}

// Find returns the first ref that belongs to logical. When several shards
// match, the first one in enumeration order wins.
func Find[R Ref](refs []R, logical string) (R, bool) {
	match := NewMatcher(logical)
	for _, ref := range refs {
		if match(ref.QualifiedName()) {
			return ref, true
		}
	}
	var zero R
	return zero, false
}

// FindAll returns every ref that belongs to logical.
func FindAll[R Ref](refs []R, logical string) []R {
	match := NewMatcher(logical)
	var found []R
	for _, ref := range refs {
		if match(ref.QualifiedName()) {
			found = append(found, ref)
		}
	}
	return found
}
