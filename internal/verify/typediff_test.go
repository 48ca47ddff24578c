package verify_test

import (
	"testing"

	"mysql2pg/internal/introspect"
	"mysql2pg/internal/verify"
)

func col(table, column, dataType, nativeType string) introspect.ColumnDescriptor {
	return introspect.ColumnDescriptor{
		Table:      table,
		Column:     column,
		DataType:   dataType,
		NativeType: nativeType,
	}
}

func diffFor(diffs []verify.ColumnDiff, table, column string) (verify.ColumnDiff, bool) {
	for _, d := range diffs {
		if d.Table == table && d.Column == column {
			return d, true
		}
	}
	return verify.ColumnDiff{}, false
}

func TestBaseType(t *testing.T) {
	cases := map[string]string{
		"tinyint(1)":          "tinyint",
		"VARCHAR(255)":        "varchar",
		"int unsigned":        "int",
		"decimal(10,2)":       "decimal",
		"bigint(20) unsigned": "bigint",
		"text":                "text",
		" TIMESTAMP ":         "timestamp",
	}
	for declared, want := range cases {
		if got := verify.BaseType(declared); got != want {
			t.Errorf("BaseType(%q): expected %q, got %q", declared, want, got)
		}
	}
}

func TestDiffColumnTypes_TinyintToBoolIsConverted(t *testing.T) {
	source := []introspect.ColumnDescriptor{col("users", "active", "tinyint(1)", "tinyint(1)")}
	target := []introspect.ColumnDescriptor{col("users", "active", "boolean", "bool")}

	diffs := verify.DiffColumnTypes(source, target, verify.DefaultEquivalence())
	d, ok := diffFor(diffs, "users", "active")
	if !ok {
		t.Fatal("Expected a diff entry for users.active")
	}
	if d.Status != verify.DiffConverted {
		t.Errorf("Expected tinyint(1) → bool classified converted, got %s", d.Status)
	}
}

func TestDiffColumnTypes_Identical(t *testing.T) {
	source := []introspect.ColumnDescriptor{col("users", "bio", "text", "text")}
	target := []introspect.ColumnDescriptor{col("users", "bio", "text", "text")}

	diffs := verify.DiffColumnTypes(source, target, verify.DefaultEquivalence())
	if diffs[0].Status != verify.DiffIdentical {
		t.Errorf("Expected identical, got %s", diffs[0].Status)
	}
}

func TestDiffColumnTypes_UnsanctionedPairIsMapped(t *testing.T) {
	source := []introspect.ColumnDescriptor{col("events", "payload", "varchar(64)", "varchar(64)")}
	target := []introspect.ColumnDescriptor{col("events", "payload", "uuid", "uuid")}

	diffs := verify.DiffColumnTypes(source, target, verify.DefaultEquivalence())
	if diffs[0].Status != verify.DiffMapped {
		t.Errorf("Expected mapped for varchar → uuid, got %s", diffs[0].Status)
	}
}

func TestDiffColumnTypes_SourceOnlyIsMissing(t *testing.T) {
	source := []introspect.ColumnDescriptor{col("users", "legacy_flag", "tinyint(1)", "tinyint(1)")}

	diffs := verify.DiffColumnTypes(source, nil, verify.DefaultEquivalence())
	if diffs[0].Status != verify.DiffMissing {
		t.Errorf("Expected missing for a source-only column, got %s", diffs[0].Status)
	}
}

func TestDiffColumnTypes_TargetOnlyIsMapped(t *testing.T) {
	target := []introspect.ColumnDescriptor{col("orders", "synthetic_id", "", "int8")}

	diffs := verify.DiffColumnTypes(nil, target, verify.DefaultEquivalence())
	if diffs[0].Status != verify.DiffMapped {
		t.Errorf("Expected mapped for a target-only column, got %s", diffs[0].Status)
	}
}

func TestDiffColumnTypes_CaseInsensitivePairing(t *testing.T) {
	source := []introspect.ColumnDescriptor{col("Users", "Email", "varchar(128)", "varchar(128)")}
	target := []introspect.ColumnDescriptor{col("users", "email", "varchar", "varchar")}

	diffs := verify.DiffColumnTypes(source, target, verify.DefaultEquivalence())
	if len(diffs) != 1 {
		t.Fatalf("Expected the two spellings paired into one entry, got %d", len(diffs))
	}
	if diffs[0].Status != verify.DiffConverted {
		t.Errorf("Expected converted, got %s", diffs[0].Status)
	}
}

func TestDiffColumnTypes_Totality(t *testing.T) {
	source := []introspect.ColumnDescriptor{
		col("a", "x", "int", "int(11)"),
		col("a", "y", "text", "text"),
		col("b", "z", "datetime", "datetime"),
	}
	target := []introspect.ColumnDescriptor{
		col("a", "x", "integer", "int4"),
		col("b", "z", "timestamp", "timestamp"),
		col("c", "w", "text", "text"),
	}

	diffs := verify.DiffColumnTypes(source, target, verify.DefaultEquivalence())
	if len(diffs) != 4 {
		t.Fatalf("Expected 4 entries for the key union, got %d", len(diffs))
	}
	seen := make(map[string]int)
	for _, d := range diffs {
		seen[d.Key()]++
		switch d.Status {
		case verify.DiffIdentical, verify.DiffConverted, verify.DiffMapped, verify.DiffMissing:
		default:
			t.Errorf("Column %s has unknown status %q", d.Key(), d.Status)
		}
	}
	for key, n := range seen {
		if n != 1 {
			t.Errorf("Column %s classified %d times, expected exactly once", key, n)
		}
	}
}
