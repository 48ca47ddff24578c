package introspect

import (
	"sort"
	"strings"

	"mysql2pg/internal/config"
)

// DefaultSchema is the target engine's conventional namespace.
const DefaultSchema = "public"

// ResolveTargetSchema decides which target schema holds the migrated tables.
// The loader's placement depends on whether its ALTER SCHEMA rename
// succeeded, so the namespace is discovered from the catalog rather than
// assumed. Resolution never fails: any connectivity or query problem falls
// back to the default schema so verification can still proceed.
//
// Callers resolve once per run and thread the result into every subsequent
// target-side call.
func ResolveTargetSchema(cfg *config.PGConfig, sourceDatabase string) string {
	db, err := openTarget(cfg, "schema discovery")
	if err != nil {
		return DefaultSchema
	}
	defer db.Close()

	rows, err := db.Query(
		`SELECT table_schema, COUNT(*) AS table_count
		   FROM information_schema.tables
		  WHERE table_type = 'BASE TABLE'
		    AND table_schema NOT IN ('pg_catalog', 'information_schema')
		  GROUP BY table_schema`)
	if err != nil {
		return DefaultSchema
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var schema string
		var n int
		if err := rows.Scan(&schema, &n); err != nil {
			return DefaultSchema
		}
		counts[schema] = n
	}
	if err := rows.Err(); err != nil {
		return DefaultSchema
	}

	return PickSchema(counts, sourceDatabase)
}

// PickSchema applies the placement preference order over a catalog snapshot:
// the source database's name first (the loader's rename convention), then
// the default schema, then whichever candidate holds the most tables with
// ties broken by smallest name.
func PickSchema(counts map[string]int, sourceDatabase string) string {
	if len(counts) == 0 {
		return DefaultSchema
	}

	if n := counts[strings.ToLower(sourceDatabase)]; n > 0 {
		return strings.ToLower(sourceDatabase)
	}
	if n := counts[DefaultSchema]; n > 0 {
		return DefaultSchema
	}

	var best string
	bestCount := -1
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if counts[name] > bestCount {
			best = name
			bestCount = counts[name]
		}
	}
	return best
}
