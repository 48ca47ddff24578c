package verify

import (
	"encoding/json"
	"fmt"

	"mysql2pg/internal/console"
	"mysql2pg/internal/introspect"
)

// TypeConversion is one reportable (non-identical) column diff in the
// structured report's shape.
type TypeConversion struct {
	Table      string `json:"table"`
	Column     string `json:"column"`
	TargetType string `json:"target_type"`
	Conversion string `json:"conversion_description"`
}

// Report is the verification verdict. Built once per run and not mutated
// after construction completes.
type Report struct {
	TargetSchema    string                          `json:"target_schema"`
	RowCounts       RowCountResult                  `json:"row_counts"`
	TypeConversions []TypeConversion                `json:"type_conversions"`
	Constraints     *introspect.ConstraintInventory `json:"constraints"`
	AllPassed       bool                            `json:"all_passed"`
	Errors          []string                        `json:"errors"`
}

// JSON renders the structured form for downstream consumption.
func (r *Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

func conversionFor(d ColumnDiff) TypeConversion {
	src := d.SourceType
	if src == "" {
		src = "—"
	}
	dst := d.TargetType
	if dst == "" {
		dst = "—"
	}
	return TypeConversion{
		Table:      d.Table,
		Column:     d.Column,
		TargetType: d.TargetType,
		Conversion: fmt.Sprintf("%s → %s (%s)", src, dst, d.Status),
	}
}

// RenderSummary prints the condensed per-check lines, or the full tabulation
// in verbose mode.
func (r *Report) RenderSummary(con *console.Console) {
	if con.Verbose {
		r.renderRowCountTable(con)
	} else {
		icon := "✓"
		if !r.RowCounts.AllPassed() {
			icon = "✗"
		}
		con.Printf("  %s Row counts: %d/%d tables match", icon, r.RowCounts.Passed, r.RowCounts.Total)
		if r.RowCounts.Extra > 0 {
			con.Printf(" (%d extra)", r.RowCounts.Extra)
		}
		con.Println()
	}

	if con.Verbose && len(r.TypeConversions) > 0 {
		con.Printf("\n  Type Mapping Verification\n")
		con.Printf("  %-32s %-16s %s\n", "Table.Column", "PG Type", "Conversion")
		for _, tc := range r.TypeConversions {
			con.Printf("  %-32s %-16s %s\n", tc.Table+"."+tc.Column, tc.TargetType, tc.Conversion)
		}
	}
	con.Printf("  ✓ Type mapping: %d conversions detected\n", len(r.TypeConversions))

	if r.Constraints != nil {
		checks := []struct {
			name  string
			count int
		}{
			{"Primary Keys", len(r.Constraints.PrimaryKeys)},
			{"Foreign Keys", len(r.Constraints.ForeignKeys)},
			{"Indexes", len(r.Constraints.Indexes)},
			{"Sequences", len(r.Constraints.Sequences)},
		}
		if con.Verbose {
			con.Printf("\n  Constraints & Indexes\n")
			total := 0
			for _, c := range checks {
				mark := "✓"
				if c.count == 0 {
					mark = "—"
				}
				con.Printf("  %-20s %6d  %s\n", c.name, c.count, mark)
				total += c.count
			}
		} else {
			total := 0
			for _, c := range checks {
				total += c.count
			}
			con.Printf("  ✓ Constraints: %d objects verified\n", total)
		}
	}

	if len(r.Errors) > 0 {
		con.Printf("\n  Verification Issues:\n")
		for _, e := range r.Errors {
			con.Printf("    ✗ %s\n", e)
		}
	}
}

func (r *Report) renderRowCountTable(con *console.Console) {
	con.Printf("\n  Row Count Comparison (schema %q)\n", r.TargetSchema)
	con.Printf("  %-24s %12s %12s   %s\n", "Table", "MySQL", "PostgreSQL", "Status")
	for _, t := range r.RowCounts.Tables {
		con.Printf("  %-24s %12s %12s   %s\n",
			t.Table, formatCount(t.SourceCount), formatCount(t.TargetCount), t.Status)
	}
}

func formatCount(n *int64) string {
	if n == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *n)
}
