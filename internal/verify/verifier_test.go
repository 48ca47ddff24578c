package verify_test

import (
	"testing"

	"mysql2pg/internal/introspect"
	"mysql2pg/internal/verify"
)

func TestAssemblePerTableErrorFlipsVerdictNotPassBit(t *testing.T) {
	// One target table could not be counted (e.g. a permission error): its
	// status is UNAVAILABLE and the failure lands in the error list. The
	// row-count pass bit stays true — it is strictly "no MISSING and no
	// MISMATCH" — but the overall verdict still fails.
	in := verify.Inputs{
		TargetSchema: "public",
		SourceCounts: introspect.TableInventory{
			"users":   introspect.Known(10),
			"secrets": introspect.Known(3),
		},
		TargetCounts: introspect.TableInventory{
			"users":   introspect.Known(10),
			"secrets": introspect.Unavailable,
		},
		Errors: []string{`could not count rows in PostgreSQL table "secrets": pq: permission denied`},
	}

	report := verify.Assemble(in, verify.DefaultEquivalence())

	if len(report.Errors) != 1 {
		t.Fatalf("Expected exactly one error entry, got %d: %v", len(report.Errors), report.Errors)
	}
	if !report.RowCounts.AllPassed() {
		t.Error("Expected the row-count pass bit true: UNAVAILABLE is neither MISSING nor MISMATCH")
	}
	if report.AllPassed {
		t.Error("Expected the overall verdict false while errors accumulated")
	}

	for _, row := range report.RowCounts.Tables {
		if row.Table == "secrets" && row.Status != verify.StatusUnavailable {
			t.Errorf("Expected secrets UNAVAILABLE, got %s", row.Status)
		}
	}
}

func TestAssembleCleanRunPasses(t *testing.T) {
	in := verify.Inputs{
		TargetSchema: "public",
		SourceCounts: introspect.TableInventory{"users": introspect.Known(10)},
		TargetCounts: introspect.TableInventory{"users": introspect.Known(10)},
		SourceColumns: []introspect.ColumnDescriptor{
			{Table: "users", Column: "active", DataType: "tinyint(1)", NativeType: "tinyint"},
		},
		TargetColumns: []introspect.ColumnDescriptor{
			{Table: "users", Column: "active", DataType: "boolean", NativeType: "bool"},
		},
	}

	report := verify.Assemble(in, verify.DefaultEquivalence())

	if !report.AllPassed {
		t.Error("Expected a clean run to pass")
	}
	if len(report.TypeConversions) != 1 {
		t.Fatalf("Expected the tinyint → bool conversion reported, got %v", report.TypeConversions)
	}
	if report.Errors == nil {
		t.Error("Expected a non-nil error list so the report serializes as [] not null")
	}
}

func TestAssembleMissingInventorySkipsRowCounts(t *testing.T) {
	in := verify.Inputs{
		TargetSchema: "public",
		SourceCounts: introspect.TableInventory{"users": introspect.Known(10)},
		Errors:       []string{"PostgreSQL connection failed: dial tcp: connection refused"},
	}

	report := verify.Assemble(in, verify.DefaultEquivalence())

	if report.AllPassed {
		t.Error("Expected the verdict false when one side could not be introspected")
	}
	if len(report.RowCounts.Tables) != 0 {
		t.Errorf("Expected no row-count rows without both inventories, got %d", len(report.RowCounts.Tables))
	}
}
