package loader_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mysql2pg/internal/config"
	"mysql2pg/internal/console"
	"mysql2pg/internal/loader"
)

// fakeRunner scripts the container lifecycle: it replays canned log lines
// and returns a fixed exit code.
type fakeRunner struct {
	lines    []string
	exitCode int64
	waitErr  error
	removed  []string
}

func (f *fakeRunner) RunLoader(ctx context.Context, configDir string, extraHosts []string, con *console.Console) (string, error) {
	return "loader-1", nil
}

func (f *fakeRunner) StreamLogs(ctx context.Context, id string, fn func(line string)) error {
	for _, line := range f.lines {
		fn(line)
	}
	return nil
}

func (f *fakeRunner) Wait(ctx context.Context, id string, timeout time.Duration) (int64, error) {
	return f.exitCode, f.waitErr
}

func (f *fakeRunner) Remove(ctx context.Context, name string) error {
	f.removed = append(f.removed, name)
	return nil
}

func chdirTemp(t *testing.T) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(prev) })
	if err := os.MkdirAll("pgloader", 0o755); err != nil {
		t.Fatal(err)
	}
}

func remoteMySQL() *config.MySQLConfig {
	return &config.MySQLConfig{Host: "10.0.0.5", Port: 3306, User: "root", Password: "x", Database: "shopdb"}
}

func TestRunFailureWritesArtifactAndDiagnoses(t *testing.T) {
	chdirTemp(t)

	fake := &fakeRunner{
		lines: []string{
			"2026-08-29 pgloader version 3.6.9",
			"ERROR mysql: Access denied for user 'root'@'172.17.0.3'",
		},
		exitCode: 1,
	}
	var buf bytes.Buffer
	con := console.New(false)
	con.Out = &buf

	ok := loader.Run(context.Background(), fake, remoteMySQL(), nil, 0, "/tmp/pgloader", con)

	if ok {
		t.Fatal("Expected failure outcome for a nonzero loader exit")
	}
	raw, err := os.ReadFile(filepath.Join("pgloader", "pgloader_error.log"))
	if err != nil {
		t.Fatalf("Error-log artifact not written: %v", err)
	}
	if !strings.Contains(string(raw), "Access denied") {
		t.Errorf("Artifact missing the captured output:\n%s", raw)
	}
	out := buf.String()
	if !strings.Contains(out, "exited with code 1") {
		t.Errorf("Expected the exit code reported, got:\n%s", out)
	}
	if !strings.Contains(out, "authentication failed") {
		t.Errorf("Expected the auth diagnostic selected, got:\n%s", out)
	}
	if !strings.Contains(out, "Access denied") {
		t.Errorf("Expected the output tail echoed after failure, got:\n%s", out)
	}
	if len(fake.removed) == 0 {
		t.Error("Expected the loader container removed after the run")
	}
}

func TestRunSuccessWritesLogAndEchoesSummary(t *testing.T) {
	chdirTemp(t)

	fake := &fakeRunner{
		lines: []string{
			"       table name     errors       rows      bytes      total time",
			"     shopdb.users          0         10     1.2 kB          0.050s",
		},
		exitCode: 0,
	}
	var buf bytes.Buffer
	con := console.New(false)
	con.Out = &buf

	ok := loader.Run(context.Background(), fake, remoteMySQL(), nil, 0, "/tmp/pgloader", con)

	if !ok {
		t.Fatal("Expected success outcome for exit code 0")
	}
	if _, err := os.Stat(filepath.Join("pgloader", "pgloader.log")); err != nil {
		t.Errorf("Success log artifact not written: %v", err)
	}
	if !strings.Contains(buf.String(), "shopdb.users") {
		t.Errorf("Expected the loader summary echoed, got:\n%s", buf.String())
	}
}

func TestRunWaitFailure(t *testing.T) {
	chdirTemp(t)

	fake := &fakeRunner{waitErr: errors.New("context deadline exceeded")}
	var buf bytes.Buffer
	con := console.New(false)
	con.Out = &buf

	if loader.Run(context.Background(), fake, remoteMySQL(), nil, 0, "/tmp/pgloader", con) {
		t.Fatal("Expected failure when the container wait fails")
	}
	if !strings.Contains(buf.String(), "timed out or failed") {
		t.Errorf("Expected the wait failure reported, got:\n%s", buf.String())
	}
}
