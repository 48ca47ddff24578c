package verify_test

import (
	"testing"

	"mysql2pg/internal/introspect"
	"mysql2pg/internal/verify"
)

func statusOf(result verify.RowCountResult, table string) string {
	for _, t := range result.Tables {
		if t.Table == table {
			return t.Status
		}
	}
	return ""
}

func TestCompareRowCounts_Classification(t *testing.T) {
	source := introspect.TableInventory{
		"users":    introspect.Known(10),
		"orders":   introspect.Known(5),
		"payments": introspect.Known(7),
		"dropped":  introspect.Known(3),
	}
	target := introspect.TableInventory{
		"users":    introspect.Known(10),
		"orders":   introspect.Known(4),
		"payments": introspect.Known(7),
		"surplus":  introspect.Known(1),
	}

	result := verify.CompareRowCounts(source, target)

	cases := map[string]string{
		"users":    verify.StatusOK,
		"orders":   verify.StatusMismatch,
		"payments": verify.StatusOK,
		"dropped":  verify.StatusMissing,
		"surplus":  verify.StatusExtra,
	}
	for table, want := range cases {
		if got := statusOf(result, table); got != want {
			t.Errorf("Table %s: expected %s, got %s", table, want, got)
		}
	}
	if result.Total != 5 {
		t.Errorf("Expected 5 tables in the union, got %d", result.Total)
	}
	if result.Passed != 2 || result.Failed != 2 || result.Extra != 1 {
		t.Errorf("Expected passed=2 failed=2 extra=1, got passed=%d failed=%d extra=%d",
			result.Passed, result.Failed, result.Extra)
	}
	if result.AllPassed() {
		t.Error("Expected overall fail with a MISSING and a MISMATCH table")
	}
}

func TestCompareRowCounts_SortedUnion(t *testing.T) {
	source := introspect.TableInventory{"zeta": introspect.Known(1), "alpha": introspect.Known(1)}
	target := introspect.TableInventory{"mid": introspect.Known(1)}

	result := verify.CompareRowCounts(source, target)
	want := []string{"alpha", "mid", "zeta"}
	for i, name := range want {
		if result.Tables[i].Table != name {
			t.Errorf("Expected %s at index %d, got %s", name, i, result.Tables[i].Table)
		}
	}
}

func TestCompareRowCounts_ExtraNeverFails(t *testing.T) {
	// Source has users(10), orders(5); target also has the sequence-backed
	// orders_seq(1). Extra objects are a warning, not a defect.
	source := introspect.TableInventory{
		"users":  introspect.Known(10),
		"orders": introspect.Known(5),
	}
	target := introspect.TableInventory{
		"users":      introspect.Known(10),
		"orders":     introspect.Known(5),
		"orders_seq": introspect.Known(1),
	}

	result := verify.CompareRowCounts(source, target)

	if got := statusOf(result, "orders_seq"); got != verify.StatusExtra {
		t.Errorf("Expected orders_seq EXTRA, got %s", got)
	}
	if !result.AllPassed() {
		t.Error("Expected overall pass: EXTRA alone never flips the verdict")
	}
}

func TestCompareRowCounts_UnavailableIsNeverOKNorMismatch(t *testing.T) {
	source := introspect.TableInventory{"logs": introspect.Known(100)}
	target := introspect.TableInventory{"logs": introspect.Unavailable}

	result := verify.CompareRowCounts(source, target)

	if got := statusOf(result, "logs"); got != verify.StatusUnavailable {
		t.Errorf("Expected UNAVAILABLE, got %s", got)
	}
	for _, row := range result.Tables {
		if row.Passed {
			t.Errorf("Table %s must not pass with an unavailable count", row.Table)
		}
		if row.TargetCount != nil {
			t.Errorf("Unavailable target count must render as absent, got %d", *row.TargetCount)
		}
	}
	if result.Failed != 1 {
		t.Errorf("Expected the unavailable table counted as failed, got %d", result.Failed)
	}
}

func TestCompareRowCounts_UnavailableOnBothSidesNeverEqual(t *testing.T) {
	source := introspect.TableInventory{"t": introspect.Unavailable}
	target := introspect.TableInventory{"t": introspect.Unavailable}

	result := verify.CompareRowCounts(source, target)
	if got := statusOf(result, "t"); got != verify.StatusUnavailable {
		t.Errorf("Two unavailable counts must not compare equal, got %s", got)
	}
}

func TestCompareRowCounts_PassBitIgnoresExtraAndUnavailable(t *testing.T) {
	// The pass bit is strictly "no MISSING and no MISMATCH"; unavailable
	// tables fail the run through the error list instead.
	source := introspect.TableInventory{"a": introspect.Known(1), "b": introspect.Unavailable}
	target := introspect.TableInventory{"a": introspect.Known(1), "b": introspect.Known(2), "c": introspect.Known(9)}

	result := verify.CompareRowCounts(source, target)
	if !result.AllPassed() {
		t.Error("Expected pass bit true without MISSING/MISMATCH tables")
	}
}

func TestCompareRowCounts_EveryTableGetsExactlyOneStatus(t *testing.T) {
	source := introspect.TableInventory{
		"a": introspect.Known(1),
		"b": introspect.Known(2),
		"c": introspect.Unavailable,
	}
	target := introspect.TableInventory{
		"b": introspect.Known(3),
		"c": introspect.Known(4),
		"d": introspect.Known(5),
	}

	result := verify.CompareRowCounts(source, target)
	seen := make(map[string]int)
	for _, row := range result.Tables {
		seen[row.Table]++
		switch row.Status {
		case verify.StatusOK, verify.StatusMissing, verify.StatusExtra,
			verify.StatusMismatch, verify.StatusUnavailable:
		default:
			t.Errorf("Table %s has unknown status %q", row.Table, row.Status)
		}
	}
	for _, table := range []string{"a", "b", "c", "d"} {
		if seen[table] != 1 {
			t.Errorf("Table %s appears %d times, expected exactly once", table, seen[table])
		}
	}
}
