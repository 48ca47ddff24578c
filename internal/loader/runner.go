package loader

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"mysql2pg/internal/config"
	"mysql2pg/internal/console"
	"mysql2pg/internal/runner"

	"github.com/gosuri/uiprogress"
)

const (
	waitTimeout = 10 * time.Minute
	successLog  = "pgloader/pgloader.log"
	failureLog  = "pgloader/pgloader_error.log"
	tailLines   = 50
)

var rowFigures = regexp.MustCompile(`\d+\s+\d+`)

// ContainerRunner is the container capability this package consumes: start
// the loader, follow its output, wait for the exit code, clean up.
type ContainerRunner interface {
	RunLoader(ctx context.Context, configDir string, extraHosts []string, con *console.Console) (string, error)
	StreamLogs(ctx context.Context, id string, fn func(line string)) error
	Wait(ctx context.Context, id string, timeout time.Duration) (int64, error)
	Remove(ctx context.Context, name string) error
}

// Run invokes the loader container and blocks until it finishes or times
// out. When the expected table list is known, per-table completion detected
// in the log stream drives a progress bar; otherwise lines are echoed raw.
// The full captured output is persisted to a log artifact regardless of
// outcome.
func Run(ctx context.Context, r ContainerRunner, mysql *config.MySQLConfig, expected []string, totalRows int64, configDir string, con *console.Console) bool {
	var extraHosts []string
	if mysql.DockerHost() == "host.docker.internal" {
		extraHosts = append(extraHosts, "host.docker.internal:host-gateway")
	}

	id, err := r.RunLoader(ctx, configDir, extraHosts, con)
	if err != nil {
		con.Printf("\n✗ %v\n", err)
		return false
	}
	defer r.Remove(context.Background(), id)

	var captured []string
	completed := make(map[string]bool)

	con.Println()
	if len(expected) > 0 {
		uiprogress.Start()
		bar := uiprogress.AddBar(len(expected)).AppendCompleted().PrependElapsed()
		bar.PrependFunc(func(b *uiprogress.Bar) string {
			return fmt.Sprintf("Migrating %d tables (%d rows)", len(expected), totalRows)
		})

		err = r.StreamLogs(ctx, id, func(line string) {
			captured = append(captured, line)
			lower := strings.ToLower(line)
			for _, tbl := range expected {
				if !completed[tbl] && strings.Contains(lower, tbl) && rowFigures.MatchString(line) {
					completed[tbl] = true
					bar.Incr()
					break
				}
			}
		})
		uiprogress.Stop()
	} else {
		con.Printf("  Could not pre-fetch the table list — echoing loader output.\n")
		err = r.StreamLogs(ctx, id, func(line string) {
			captured = append(captured, line)
			con.Printf("  %s\n", line)
		})
	}
	if err != nil {
		con.Warnf("log streaming interrupted: %v\n", err)
	}

	exitCode, err := r.Wait(ctx, id, waitTimeout)
	if err != nil {
		con.Printf("\n✗ Loader container timed out or failed: %v\n", err)
		con.Printf("  Check container status: docker ps -a | grep %s\n", runner.LoaderContainer)
		return false
	}

	logs := strings.Join(captured, "\n")
	logPath := successLog
	if exitCode != 0 {
		logPath = failureLog
	}
	if werr := os.WriteFile(logPath, []byte(logs), 0o600); werr == nil {
		con.Printf("\n  Full loader log saved to: %s\n", logPath)
	} else {
		con.Warnf("could not save loader log to %s: %v\n", logPath, werr)
	}

	if exitCode != 0 {
		con.Printf("\n  ✗ Loader exited with code %d\n", exitCode)
		if hint := Diagnose(logs); hint != "" {
			con.Printf("\n  %s\n", hint)
		}
		echoTail(con, captured)
		return false
	}

	if n := len(completed); n > 0 {
		con.Printf("\n  ✓ %d tables processed by the loader\n", n)
	}
	echoSummary(con, captured)
	return true
}

// echoTail prints the last portion of the output after a failure.
func echoTail(con *console.Console, lines []string) {
	if len(lines) == 0 {
		return
	}
	start := len(lines) - tailLines
	if start < 0 {
		start = 0
	}
	con.Printf("\n  Last loader output:\n")
	for _, line := range lines[start:] {
		con.Printf("  %s\n", line)
	}
}

// echoSummary prints the loader's own summary table from the captured logs.
func echoSummary(con *console.Console, lines []string) {
	var summary []string
	inSummary := false
	for _, line := range lines {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "table name") && (strings.Contains(lower, "rows") || strings.Contains(lower, "read")) {
			inSummary = true
		}
		if inSummary {
			summary = append(summary, line)
		}
	}
	if len(summary) == 0 {
		return
	}
	if len(summary) > 30 {
		summary = summary[len(summary)-30:]
	}
	con.Printf("\n  Loader summary:\n")
	for _, line := range summary {
		con.Printf("  %s\n", line)
	}
}
