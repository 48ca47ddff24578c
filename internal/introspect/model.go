package introspect

import "fmt"

// RowCount is a tagged row count: Valid is false when counting the table
// failed, which never compares equal to anything (including another
// unavailable count).
type RowCount struct {
	Rows  int64
	Valid bool
}

// Known wraps an exact count.
func Known(n int64) RowCount {
	return RowCount{Rows: n, Valid: true}
}

// Unavailable marks a count that could not be obtained.
var Unavailable = RowCount{}

// TableInventory maps table name to its row count. Source-side keys are
// lower-cased; target-side keys keep the engine's casing.
type TableInventory map[string]RowCount

// ColumnDescriptor is one column of one engine's catalog.
type ColumnDescriptor struct {
	Table      string
	Column     string
	DataType   string // declared type, source side keeps precision: varchar(50), tinyint(1)
	NativeType string // engine-native identifier (udt_name on the target)
	Nullable   bool
	Default    string
}

type PrimaryKey struct {
	Table  string `json:"table"`
	Column string `json:"column"`
}

type ForeignKey struct {
	Table     string `json:"table"`
	Column    string `json:"column"`
	RefTable  string `json:"ref_table"`
	RefColumn string `json:"ref_column"`
}

type Index struct {
	Table string `json:"table"`
	Name  string `json:"index"`
}

// ConstraintInventory is target-side only: the source engine's constraint
// model differs structurally, so the auditor reports presence and counts
// without cross-engine comparison.
type ConstraintInventory struct {
	PrimaryKeys []PrimaryKey `json:"primary_keys"`
	ForeignKeys []ForeignKey `json:"foreign_keys"`
	Indexes     []Index      `json:"indexes"`
	Sequences   []string     `json:"sequences"`
}

// UnavailableError marks an introspection call that could not produce its
// result at all (connection or catalog query failure). Callers record it as a
// verification error instead of aborting the run.
type UnavailableError struct {
	Engine string // "mysql" or "postgresql"
	Op     string // what was being introspected
	Err    error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s %s unavailable: %v", e.Engine, e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}
