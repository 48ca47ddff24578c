package verify

import (
	"sort"

	"mysql2pg/internal/introspect"
)

// Per-table classification statuses.
const (
	StatusOK          = "OK"          // counts known on both sides and equal
	StatusMissing     = "MISSING"     // in source, not in target: hard failure
	StatusExtra       = "EXTRA"       // in target only: warning, never a failure
	StatusMismatch    = "MISMATCH"    // known on both sides, unequal: hard failure
	StatusUnavailable = "UNAVAILABLE" // a side could not be counted: never OK, never MISMATCH
)

// TableCount is one row of the comparison. Counts are nil when the table is
// absent on that side or its count was unavailable.
type TableCount struct {
	Table       string `json:"table"`
	SourceCount *int64 `json:"source_count"`
	TargetCount *int64 `json:"target_count"`
	Status      string `json:"status"`
	Passed      bool   `json:"passed"`
}

// RowCountResult is the row-count reconciler output. Extra tables get their
// own tally instead of being folded into Passed, so "no defect" and
// "positively verified" stay distinguishable.
type RowCountResult struct {
	Tables []TableCount `json:"tables"`
	Passed int          `json:"passed"`
	Failed int          `json:"failed"`
	Extra  int          `json:"extra"`
	Total  int          `json:"total"`
}

// AllPassed is the reconciler's pass bit: true iff no table classified
// MISSING or MISMATCH. EXTRA never flips it; UNAVAILABLE surfaces through
// the run's error list instead.
func (r *RowCountResult) AllPassed() bool {
	for _, t := range r.Tables {
		if t.Status == StatusMissing || t.Status == StatusMismatch {
			return false
		}
	}
	return true
}

// CompareRowCounts classifies every table in the union of both inventories,
// sorted lexicographically.
func CompareRowCounts(source, target introspect.TableInventory) RowCountResult {
	keys := make([]string, 0, len(source)+len(target))
	seen := make(map[string]bool, len(source)+len(target))
	for k := range source {
		keys = append(keys, k)
		seen[k] = true
	}
	for k := range target {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	result := RowCountResult{Total: len(keys)}
	for _, table := range keys {
		s, inSource := source[table]
		g, inTarget := target[table]

		row := TableCount{
			Table:       table,
			SourceCount: countPtr(s, inSource),
			TargetCount: countPtr(g, inTarget),
		}

		switch {
		case !inTarget:
			row.Status = StatusMissing
			result.Failed++
		case !inSource:
			row.Status = StatusExtra
			result.Extra++
		case !s.Valid || !g.Valid:
			// Unavailable counts never compare equal, not even to each other.
			row.Status = StatusUnavailable
			result.Failed++
		case s.Rows == g.Rows:
			row.Status = StatusOK
			row.Passed = true
			result.Passed++
		default:
			row.Status = StatusMismatch
			result.Failed++
		}

		result.Tables = append(result.Tables, row)
	}
	return result
}

func countPtr(c introspect.RowCount, present bool) *int64 {
	if !present || !c.Valid {
		return nil
	}
	n := c.Rows
	return &n
}
