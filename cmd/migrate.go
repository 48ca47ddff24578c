package cmd

import (
	"bufio"
	"context"
	"log"
	"os"
	"strings"
	"time"

	"mysql2pg/internal/config"
	"mysql2pg/internal/console"
	"mysql2pg/internal/introspect"
	"mysql2pg/internal/loader"
	"mysql2pg/internal/runner"
	"mysql2pg/internal/verify"
)

const (
	exitOK          = 0
	exitFailed      = 1
	exitInterrupted = 130

	htmlReportFile = "migration_report.html"
	healthyTimeout = 60 * time.Second
)

// runMigration drives the full pipeline. A pending interrupt is honored
// between the major phases, never mid-query.
func runMigration(ctx context.Context, con *console.Console, mysqlCfg *config.MySQLConfig, pgCfg *config.PGConfig) int {
	con.Printf("  ✓ Config loaded from %s\n\n", config.FileName)

	log.Println("Testing MySQL connection...")
	if !config.TestMySQL(mysqlCfg, con) {
		con.Printf("\nCannot connect to MySQL. Check your credentials and try again.\n")
		return exitFailed
	}
	con.Printf("  ✓ MySQL connection successful\n\n")

	con.Printf("  Migration Summary\n")
	con.Printf("    Source:  mysql://%s:****@%s:%d/%s\n", mysqlCfg.User, mysqlCfg.Host, mysqlCfg.Port, mysqlCfg.Database)
	con.Printf("    Target:  postgresql://%s:****@%s:%d/%s\n\n", pgCfg.User, pgCfg.Host, pgCfg.Port, pgCfg.Database)

	if !confirm(con, "Proceed with migration?") {
		con.Printf("Migration cancelled.\n")
		return exitOK
	}
	con.Println()

	if interrupted(ctx, con) {
		return exitInterrupted
	}

	// ── [1/6] Target container ────────────────────────────────
	run, err := runner.New(ctx)
	if err != nil {
		con.Printf("✗ %v\n", err)
		con.Printf("  Make sure Docker Engine is installed and running: sudo systemctl start docker\n")
		return exitFailed
	}

	if pgCfg.IsLocal() {
		con.Printf("[1/6] Starting PostgreSQL container...\n")
		if err := run.EnsurePostgres(ctx, pgCfg, con); err != nil {
			con.Printf("✗ %v\n", err)
			return exitFailed
		}
		log.Println("Waiting for PostgreSQL to be healthy...")
		if !run.WaitHealthy(ctx, runner.PGContainer, healthyTimeout) {
			con.Printf("✗ PostgreSQL did not become healthy within %s. Check: docker logs %s\n",
				healthyTimeout, runner.PGContainer)
			return exitFailed
		}
		con.Printf("  ✓ PostgreSQL is ready\n\n")
	} else {
		con.Printf("[1/6] Using remote PostgreSQL at %s\n", pgCfg.Host)
		con.Printf("  Skipping container startup.\n\n")
	}

	if interrupted(ctx, con) {
		return exitInterrupted
	}

	// ── [2/6] Loader config ───────────────────────────────────
	con.Printf("[2/6] Generating pgloader configuration...\n")
	configDir, err := loader.Generate(mysqlCfg, pgCfg, con)
	if err != nil {
		con.Printf("✗ %v\n", err)
		return exitFailed
	}
	con.Println()

	if interrupted(ctx, con) {
		return exitInterrupted
	}

	// ── [3/6] Run the loader ──────────────────────────────────
	con.Printf("[3/6] Running pgloader migration...\n")
	con.Printf("  This may take a while depending on database size.\n")

	// The pre-fetched inventory only drives the progress bar; the loader
	// failing to match it is not an error.
	var expected []string
	var totalRows int64
	if inv, _, err := introspect.SourceTableRowCounts(mysqlCfg); err == nil {
		for name, count := range inv {
			expected = append(expected, name)
			if count.Valid {
				totalRows += count.Rows
			}
		}
	} else {
		con.Printf("  Could not pre-fetch table list — using basic progress.\n")
	}

	if !loader.Run(ctx, run, mysqlCfg, expected, totalRows, configDir, con) {
		con.Printf("\nMigration failed. Check the loader output above.\n")
		return exitFailed
	}
	con.Printf("\n  ✓ pgloader migration complete\n\n")

	if interrupted(ctx, con) {
		return exitInterrupted
	}

	// ── [4/6] Verify ──────────────────────────────────────────
	con.Printf("[4/6] Validating migration...\n")
	report := verify.Run(con, mysqlCfg, pgCfg, verify.DefaultEquivalence())

	// ── [5/6] HTML report ─────────────────────────────────────
	con.Printf("\n[5/6] Writing HTML report...\n")
	if err := verify.WriteHTML(htmlReportFile, report, mysqlCfg.Database, pgCfg.Database); err != nil {
		// Non-fatal: the exit code is governed solely by the verdict.
		log.Printf("HTML report error: %v", err)
	} else {
		con.Printf("  ✓ Detailed report generated: %s\n", htmlReportFile)
	}

	// ── [6/6] Summary ─────────────────────────────────────────
	con.Printf("\n[6/6] Migration summary\n")
	if report.AllPassed {
		con.Printf("\n  ✓ Migration completed successfully!\n")
		con.Printf("  All tables and types have been verified.\n")
		con.Printf("  Detailed results saved to: %s\n", htmlReportFile)
		return exitOK
	}
	con.Printf("\n  ✗ Migration finished with issues\n")
	con.Printf("  Some checks failed. See the summary above or the HTML report.\n")
	con.Printf("  Detailed results saved to: %s\n", htmlReportFile)
	return exitFailed
}

func interrupted(ctx context.Context, con *console.Console) bool {
	if ctx.Err() != nil {
		con.Printf("\nInterrupted.\n")
		return true
	}
	return false
}

func confirm(con *console.Console, prompt string) bool {
	if yesFlag {
		return true
	}
	con.Printf("  %s [Y/n] ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "" || answer == "y" || answer == "yes"
}
