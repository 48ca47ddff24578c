// Package loader generates the pgloader configuration and drives the loader
// container, consuming it only through its log stream and exit code.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mysql2pg/internal/config"
	"mysql2pg/internal/console"
	"mysql2pg/internal/runner"
)

const (
	TemplateFile = "pgloader/migration.load.template"
	OutputFile   = "pgloader/migration.load"
)

// encodeCredential percent-encodes every byte outside the unreserved set.
// Nothing is treated as safe: credentials containing '/', ':', '@' or spaces
// must not be able to break the URI grammar.
func encodeCredential(s string) string {
	const upperhex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
			c == '-' || c == '_' || c == '.' || c == '~' {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0x0f])
	}
	return b.String()
}

// SourceURI builds the loader's source connection URI, addressed so it
// resolves from inside the container network.
func SourceURI(mysql *config.MySQLConfig) string {
	return fmt.Sprintf("mysql://%s:%s@%s:%d/%s",
		encodeCredential(mysql.User), encodeCredential(mysql.Password),
		mysql.DockerHost(), mysql.Port, encodeCredential(mysql.Database))
}

// TargetURI builds the loader's target connection URI. A local target is
// reached through the container name on the bridge network, not the
// published host port.
func TargetURI(pg *config.PGConfig) string {
	host, port := pg.Host, pg.Port
	if pg.IsLocal() {
		host, port = runner.PGContainer, 5432
	}
	return fmt.Sprintf("postgresql://%s:%s@%s:%d/%s",
		encodeCredential(pg.User), encodeCredential(pg.Password),
		host, port, encodeCredential(pg.Database))
}

func redact(uri string) string {
	at := strings.Index(uri, "@")
	colon := strings.Index(uri, "://")
	if at < 0 || colon < 0 {
		return uri
	}
	userinfo := uri[colon+3 : at]
	if i := strings.Index(userinfo, ":"); i >= 0 {
		userinfo = userinfo[:i] + ":****"
	}
	return uri[:colon+3] + userinfo + uri[at:]
}

// Generate renders the loader config from the template and writes it next to
// the template. It returns the absolute directory to mount into the loader
// container.
func Generate(mysql *config.MySQLConfig, pg *config.PGConfig, con *console.Console) (string, error) {
	raw, err := os.ReadFile(TemplateFile)
	if err != nil {
		return "", fmt.Errorf("pgloader template not found (%s): %w", TemplateFile, err)
	}

	sourceURI := SourceURI(mysql)
	targetURI := TargetURI(pg)

	cfg := string(raw)
	cfg = strings.ReplaceAll(cfg, "$SOURCE_URI", sourceURI)
	cfg = strings.ReplaceAll(cfg, "$TARGET_URI", targetURI)
	// Raw database name: the rename directive needs the unencoded identifier.
	cfg = strings.ReplaceAll(cfg, "{mysql_database}", mysql.Database)

	if err := os.MkdirAll(filepath.Dir(OutputFile), 0o755); err != nil {
		return "", fmt.Errorf("cannot create loader config directory: %w", err)
	}
	if err := os.WriteFile(OutputFile, []byte(cfg), 0o600); err != nil {
		return "", fmt.Errorf("cannot write pgloader config: %w", err)
	}

	con.Printf("  Generated URIs:\n    Source: %s\n    Target: %s\n", redact(sourceURI), redact(targetURI))
	con.Printf("  ✓ Config written to %s\n", OutputFile)

	dir, err := filepath.Abs(filepath.Dir(OutputFile))
	if err != nil {
		return "", err
	}
	return dir, nil
}
