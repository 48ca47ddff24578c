package verify

import (
	"sort"
	"strings"

	"mysql2pg/internal/introspect"
)

// Column diff statuses. The three-tier match (identical/converted/mapped)
// separates conversions the loader is expected to perform from unreviewed
// type drift; none of them fails the run on its own.
const (
	DiffIdentical = "identical"
	DiffConverted = "converted"
	DiffMapped    = "mapped"
	DiffMissing   = "missing"
)

// TypeEquivalence maps a normalized source base type to the set of target
// native type identifiers sanctioned as its counterpart. Injectable so
// engine-specific vocabularies can be swapped without touching the diff.
type TypeEquivalence map[string]map[string]bool

// DefaultEquivalence is the canonical MySQL → PostgreSQL table.
func DefaultEquivalence() TypeEquivalence {
	return TypeEquivalence{
		"int":        set("int4", "int8", "integer"),
		"bigint":     set("int8", "bigint", "numeric"),
		"smallint":   set("int2", "smallint"),
		"mediumint":  set("int4", "integer"),
		"tinyint":    set("bool", "boolean", "smallint"),
		"varchar":    set("varchar", "text"),
		"char":       set("bpchar", "char"),
		"text":       set("text"),
		"tinytext":   set("text"),
		"mediumtext": set("text"),
		"longtext":   set("text"),
		"datetime":   set("timestamp"),
		"timestamp":  set("timestamp", "timestamptz"),
		"date":       set("date"),
		"time":       set("time", "timetz"),
		"year":       set("int4", "integer"),
		"decimal":    set("numeric"),
		"float":      set("float4", "float8", "real"),
		"double":     set("float8", "double precision"),
		"blob":       set("bytea"),
		"tinyblob":   set("bytea"),
		"mediumblob": set("bytea"),
		"longblob":   set("bytea"),
		"binary":     set("bytea"),
		"varbinary":  set("bytea"),
		"bit":        set("bool", "bit"),
		"enum":       set("text", "varchar"),
		"set":        set("text", "varchar"),
		"json":       set("json", "jsonb"),
		"boolean":    set("bool"),
	}
}

func set(types ...string) map[string]bool {
	m := make(map[string]bool, len(types))
	for _, t := range types {
		m[t] = true
	}
	return m
}

// BaseType strips any parenthesized precision/length qualifier and
// normalizes case: "tinyint(1) unsigned" → "tinyint".
func BaseType(declared string) string {
	base := declared
	if i := strings.IndexByte(base, '('); i >= 0 {
		base = base[:i]
	}
	base = strings.ToLower(strings.TrimSpace(base))
	// MySQL appends modifiers after the qualifier: "int unsigned".
	if i := strings.IndexByte(base, ' '); i >= 0 {
		base = base[:i]
	}
	return base
}

// ColumnDiff is one classified column pair, keyed by table.column.
type ColumnDiff struct {
	Table      string `json:"table"`
	Column     string `json:"column"`
	SourceType string `json:"source_type,omitempty"`
	TargetType string `json:"target_type,omitempty"`
	Status     string `json:"status"`
}

// Key returns the case-normalized pairing key.
func (d ColumnDiff) Key() string {
	return strings.ToLower(d.Table) + "." + strings.ToLower(d.Column)
}

// DiffColumnTypes classifies every column in the union of both catalogs.
// The function is total: each key lands in exactly one status. Columns that
// exist only on the target (objects the loader materialized) classify as
// mapped — flagged for review, never fatal.
func DiffColumnTypes(source, target []introspect.ColumnDescriptor, equiv TypeEquivalence) []ColumnDiff {
	srcByKey := make(map[string]introspect.ColumnDescriptor, len(source))
	for _, c := range source {
		srcByKey[columnKey(c)] = c
	}
	dstByKey := make(map[string]introspect.ColumnDescriptor, len(target))
	for _, c := range target {
		dstByKey[columnKey(c)] = c
	}

	keys := make([]string, 0, len(srcByKey)+len(dstByKey))
	for k := range srcByKey {
		keys = append(keys, k)
	}
	for k := range dstByKey {
		if _, ok := srcByKey[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var diffs []ColumnDiff
	for _, key := range keys {
		s, inSource := srcByKey[key]
		d, inTarget := dstByKey[key]

		switch {
		case inSource && inTarget:
			srcBase := BaseType(s.DataType)
			dstType := strings.ToLower(strings.TrimSpace(d.NativeType))
			diff := ColumnDiff{
				Table:      s.Table,
				Column:     s.Column,
				SourceType: s.DataType,
				TargetType: d.NativeType,
			}
			switch {
			case srcBase == dstType:
				diff.Status = DiffIdentical
			case equiv[srcBase][dstType]:
				diff.Status = DiffConverted
			default:
				diff.Status = DiffMapped
			}
			diffs = append(diffs, diff)
		case inSource:
			diffs = append(diffs, ColumnDiff{
				Table:      s.Table,
				Column:     s.Column,
				SourceType: s.DataType,
				Status:     DiffMissing,
			})
		default:
			diffs = append(diffs, ColumnDiff{
				Table:      d.Table,
				Column:     d.Column,
				TargetType: d.NativeType,
				Status:     DiffMapped,
			})
		}
	}
	return diffs
}

func columnKey(c introspect.ColumnDescriptor) string {
	return strings.ToLower(c.Table) + "." + strings.ToLower(c.Column)
}
