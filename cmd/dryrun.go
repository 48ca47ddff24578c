package cmd

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"mysql2pg/internal/config"
	"mysql2pg/internal/console"
	"mysql2pg/internal/introspect"
	"mysql2pg/internal/runner"
)

// runDryRun validates config and connectivity and previews what would be
// migrated, without mutating anything. Returns the process exit code.
func runDryRun(con *console.Console, mysqlCfg *config.MySQLConfig, pgCfg *config.PGConfig) int {
	con.Printf("  🔍 DRY RUN — No data will be migrated\n\n")

	allOK := true

	// ── 1. Config ─────────────────────────────────────────────
	con.Printf("[1/4] Configuration\n")
	con.Printf("  Source:  mysql://%s:****@%s:%d/%s\n", mysqlCfg.User, mysqlCfg.Host, mysqlCfg.Port, mysqlCfg.Database)
	con.Printf("  Target:  postgresql://%s:****@%s:%d/%s\n", pgCfg.User, pgCfg.Host, pgCfg.Port, pgCfg.Database)
	con.Printf("  ✓ Config is valid\n\n")

	// ── 2. MySQL connection ───────────────────────────────────
	con.Printf("[2/4] MySQL connection\n")
	connected := config.TestMySQL(mysqlCfg, con)
	if connected {
		con.Printf("  ✓ MySQL is reachable\n\n")
	} else {
		con.Printf("  ✗ MySQL is not reachable.\n\n")
		allOK = false
	}

	// ── 3. Docker ─────────────────────────────────────────────
	con.Printf("[3/4] Docker availability\n")
	ctx := context.Background()
	if run, err := runner.New(ctx); err != nil {
		con.Printf("  ✗ Docker is not running: %v\n", err)
		con.Printf("  Start it: sudo systemctl start docker\n\n")
		allOK = false
	} else {
		con.Printf("  ✓ Docker is running\n")
		if pgCfg.IsLocal() {
			reportImage(ctx, con, run, runner.PGImage)
		} else {
			con.Printf("  Skipping PG image check (remote host: %s)\n", pgCfg.Host)
		}
		reportImage(ctx, con, run, runner.LoaderImage)
		con.Println()
	}

	// ── 4. Source preview ─────────────────────────────────────
	con.Printf("[4/4] Source database preview\n")
	if !connected {
		con.Printf("  Skipped — MySQL connection failed.\n\n")
	} else if !previewSource(con, mysqlCfg) {
		allOK = false
	}

	// ── Summary ───────────────────────────────────────────────
	if allOK {
		con.Printf("\n  ✓ Dry run passed — everything looks good!\n")
		con.Printf("  Ready to migrate. Run: mysql2pg\n")
		return exitOK
	}
	con.Printf("\n  ✗ Dry run found issues.\n")
	con.Printf("  Fix the errors above before running the actual migration.\n")
	return exitFailed
}

func reportImage(ctx context.Context, con *console.Console, run *runner.Runner, ref string) {
	if run.HasImage(ctx, ref) {
		con.Printf("  ✓ Image %s is available\n", ref)
	} else {
		con.Printf("  ⚠ Image %s will be pulled on first run\n", ref)
	}
}

func previewSource(con *console.Console, mysqlCfg *config.MySQLConfig) bool {
	inventory, tableErrs, err := introspect.SourceTableRowCounts(mysqlCfg)
	if err != nil {
		con.Printf("  ✗ Could not preview schema: %v\n", err)
		return false
	}
	for _, e := range tableErrs {
		con.Warnf("%v\n", e)
	}
	if len(inventory) == 0 {
		con.Printf("  ⚠ No tables found in the MySQL database.\n\n")
		return true
	}

	columns, err := introspect.SourceColumnTypes(mysqlCfg)
	if err != nil {
		con.Printf("  ✗ Could not preview schema: %v\n", err)
		return false
	}
	colsPerTable := make(map[string]int)
	for _, c := range columns {
		colsPerTable[strings.ToLower(c.Table)]++
	}

	names := make([]string, 0, len(inventory))
	for name := range inventory {
		names = append(names, name)
	}
	sort.Strings(names)

	con.Printf("  %-24s %12s %9s\n", "Table", "Rows", "Columns")
	var totalRows int64
	totalCols := 0
	for _, name := range names {
		count := inventory[name]
		rows := "-"
		if count.Valid {
			rows = formatInt(count.Rows)
			totalRows += count.Rows
		}
		cols := colsPerTable[name]
		totalCols += cols
		con.Printf("  %-24s %12s %9d\n", name, rows, cols)
	}
	con.Printf("  %-24s %12s %9d\n", formatInt(int64(len(names)))+" tables", formatInt(totalRows), totalCols)
	con.Printf("\n  ✓ %d tables with %s total rows ready to migrate\n\n", len(names), formatInt(totalRows))
	return true
}

func formatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}
