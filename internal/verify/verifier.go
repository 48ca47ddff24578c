package verify

import (
	"fmt"

	"mysql2pg/internal/config"
	"mysql2pg/internal/console"
	"mysql2pg/internal/introspect"
)

// Inputs carries everything gathered from both catalogs for one verification
// pass. A nil inventory or catalog means that side could not be introspected
// at all; Errors accumulates every failure hit while gathering.
type Inputs struct {
	TargetSchema  string
	SourceCounts  introspect.TableInventory
	TargetCounts  introspect.TableInventory
	SourceColumns []introspect.ColumnDescriptor
	TargetColumns []introspect.ColumnDescriptor
	Constraints   *introspect.ConstraintInventory
	Errors        []string
}

// Run executes the full verification pass: resolve the target schema once,
// reconcile row counts, diff column types, audit constraints. Every failure
// below this level is recorded and degrades the report instead of aborting
// it; the caller gets partial results plus an explicit list of what could
// not be checked.
//
// All queries are sequential and read-only; reruns are safe.
func Run(con *console.Console, mysqlCfg *config.MySQLConfig, pgCfg *config.PGConfig, equiv TypeEquivalence) *Report {
	var in Inputs

	// Resolved once and threaded into every target-side call.
	in.TargetSchema = introspect.ResolveTargetSchema(pgCfg, mysqlCfg.Database)
	con.Detailf("  Validating against schema: %q\n", in.TargetSchema)

	sourceCounts, sourceTableErrs, err := introspect.SourceTableRowCounts(mysqlCfg)
	if err != nil {
		in.Errors = append(in.Errors, fmt.Sprintf("MySQL connection failed: %v", err))
	}
	in.SourceCounts = sourceCounts
	for _, e := range sourceTableErrs {
		in.Errors = append(in.Errors, e.Error())
	}

	targetCounts, targetTableErrs, err := introspect.TargetTableRowCounts(pgCfg, in.TargetSchema)
	if err != nil {
		in.Errors = append(in.Errors, fmt.Sprintf("PostgreSQL connection failed: %v", err))
	}
	in.TargetCounts = targetCounts
	for _, e := range targetTableErrs {
		in.Errors = append(in.Errors, e.Error())
	}
	if sourceCounts == nil || targetCounts == nil {
		con.Printf("  ✗ Row counts skipped — database connection issues\n")
	}

	in.SourceColumns, err = introspect.SourceColumnTypes(mysqlCfg)
	if err != nil {
		in.Errors = append(in.Errors, fmt.Sprintf("MySQL schema query failed: %v", err))
	}
	in.TargetColumns, err = introspect.TargetColumnTypes(pgCfg, in.TargetSchema)
	if err != nil {
		in.Errors = append(in.Errors, fmt.Sprintf("PostgreSQL type query failed: %v", err))
	}

	in.Constraints, err = introspect.TargetConstraints(pgCfg, in.TargetSchema)
	if err != nil {
		in.Errors = append(in.Errors, fmt.Sprintf("PostgreSQL constraint query failed: %v", err))
	}

	report := Assemble(in, equiv)
	report.RenderSummary(con)
	return report
}

// Assemble builds the verdict from gathered inputs. The overall verdict is
// the row-count pass bit AND an empty error list: a connection failure
// anywhere during gathering flips it even if every count that was obtained
// matched.
func Assemble(in Inputs, equiv TypeEquivalence) *Report {
	report := &Report{
		TargetSchema:    in.TargetSchema,
		TypeConversions: []TypeConversion{},
		Errors:          in.Errors,
	}
	if report.Errors == nil {
		report.Errors = []string{}
	}

	rowCountsOK := false
	if in.SourceCounts != nil && in.TargetCounts != nil {
		report.RowCounts = CompareRowCounts(in.SourceCounts, in.TargetCounts)
		rowCountsOK = report.RowCounts.AllPassed()
	}

	if in.SourceColumns != nil && in.TargetColumns != nil {
		for _, d := range DiffColumnTypes(in.SourceColumns, in.TargetColumns, equiv) {
			if d.Status == DiffIdentical {
				continue
			}
			report.TypeConversions = append(report.TypeConversions, conversionFor(d))
		}
	}

	report.Constraints = in.Constraints
	report.AllPassed = rowCountsOK && len(report.Errors) == 0
	return report
}
