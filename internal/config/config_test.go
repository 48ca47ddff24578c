package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mysql2pg/internal/config"
)

func validPair() (*config.MySQLConfig, *config.PGConfig) {
	mysql := &config.MySQLConfig{
		Host: "localhost", Port: 3306,
		User: "root", Password: "secret", Database: "shopdb",
	}
	pg := &config.PGConfig{
		Host: "localhost", Port: 5433,
		User: "postgres", Password: "postgres", Database: "shopdb",
	}
	return mysql, pg
}

func TestValidateCleanConfig(t *testing.T) {
	mysql, pg := validPair()
	if issues := config.Validate(mysql, pg); len(issues) != 0 {
		t.Errorf("Expected no issues, got: %v", issues)
	}
}

func TestValidateEmptyFields(t *testing.T) {
	mysql, pg := validPair()
	mysql.Host = ""
	mysql.Password = "  "
	pg.Database = ""

	issues := config.Validate(mysql, pg)
	if len(issues) != 3 {
		t.Fatalf("Expected 3 issues, got %d: %v", len(issues), issues)
	}
	joined := strings.Join(issues, "\n")
	for _, want := range []string{"mysql.host", "mysql.password", "postgresql.database"} {
		if !strings.Contains(joined, want) {
			t.Errorf("Expected an issue naming %s, got: %v", want, issues)
		}
	}
}

func TestValidatePlaceholders(t *testing.T) {
	mysql, pg := validPair()
	mysql.Password = config.PlaceholderPassword
	mysql.Database = config.PlaceholderDatabase

	issues := config.Validate(mysql, pg)
	if len(issues) != 2 {
		t.Fatalf("Expected 2 placeholder issues, got %d: %v", len(issues), issues)
	}
	for _, issue := range issues {
		if !strings.Contains(issue, "placeholder") {
			t.Errorf("Expected a placeholder complaint, got: %s", issue)
		}
	}
}

func TestValidatePortRange(t *testing.T) {
	mysql, pg := validPair()
	mysql.Port = 0
	pg.Port = 70000

	issues := config.Validate(mysql, pg)
	if len(issues) != 2 {
		t.Fatalf("Expected 2 port issues, got %d: %v", len(issues), issues)
	}
}

func TestMySQLDSN(t *testing.T) {
	mysql, _ := validPair()
	want := "root:secret@tcp(localhost:3306)/shopdb?timeout=10s"
	if got := mysql.DSN(); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestPGDSNDisablesSSL(t *testing.T) {
	_, pg := validPair()
	dsn := pg.DSN()
	for _, want := range []string{"host=localhost", "port=5433", "sslmode=disable", "connect_timeout=10"} {
		if !strings.Contains(dsn, want) {
			t.Errorf("Expected %q in DSN, got %q", want, dsn)
		}
	}
}

func TestDockerHostRewrite(t *testing.T) {
	cases := map[string]string{
		"localhost":    "host.docker.internal",
		"127.0.0.1":    "host.docker.internal",
		"192.168.1.20": "192.168.1.20",
	}
	for host, want := range cases {
		mysql := &config.MySQLConfig{Host: host}
		if got := mysql.DockerHost(); got != want {
			t.Errorf("DockerHost(%s): expected %s, got %s", host, want, got)
		}
	}
}

func TestIsLocal(t *testing.T) {
	for host, want := range map[string]bool{
		"localhost":      true,
		"127.0.0.1":      true,
		"db.example.com": false,
	} {
		pg := &config.PGConfig{Host: host}
		if got := pg.IsLocal(); got != want {
			t.Errorf("IsLocal(%s): expected %v, got %v", host, want, got)
		}
	}
}

func TestInitRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.FileName)

	if err := config.Init(path, false); err != nil {
		t.Fatalf("First init failed: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Template not written: %v", err)
	}
	if !strings.Contains(string(raw), config.PlaceholderPassword) {
		t.Error("Template must ship the password placeholder")
	}

	if err := config.Init(path, false); err == nil {
		t.Error("Expected an error overwriting without --force")
	}
	if err := config.Init(path, true); err != nil {
		t.Errorf("Expected --force to overwrite, got: %v", err)
	}
}
