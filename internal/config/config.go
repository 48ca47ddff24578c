package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Placeholder values shipped in the --init template. Leaving them unedited is
// a validation error, not a connection error.
const (
	PlaceholderPassword = "YOUR_MYSQL_PASSWORD"
	PlaceholderDatabase = "YOUR_DATABASE_NAME"
)

// MySQLConfig describes the source engine connection.
type MySQLConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// PGConfig describes the target engine connection.
type PGConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// DSN returns a driver DSN with a bounded connect timeout.
func (c *MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?timeout=10s",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

// DockerHost is the hostname containers must use to reach the source engine.
func (c *MySQLConfig) DockerHost() string {
	if c.Host == "localhost" || c.Host == "127.0.0.1" {
		return "host.docker.internal"
	}
	return c.Host
}

func (c *PGConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable connect_timeout=10",
		c.Host, c.Port, c.User, c.Password, c.Database)
}

// IsLocal reports whether the target runs on this machine, in which case the
// pipeline manages its container and the loader connects over the bridge
// network instead of the published port.
func (c *PGConfig) IsLocal() bool {
	return c.Host == "localhost" || c.Host == "127.0.0.1"
}

// Load unmarshals and validates the mysql/postgresql sections read by viper.
func Load() (*MySQLConfig, *PGConfig, error) {
	if viper.ConfigFileUsed() == "" {
		return nil, nil, fmt.Errorf("config file not found: run 'mysql2pg --init' to create %s", FileName)
	}

	var mysql MySQLConfig
	var pg PGConfig
	if err := viper.UnmarshalKey("mysql", &mysql); err != nil {
		return nil, nil, fmt.Errorf("failed to parse mysql config: %w", err)
	}
	if err := viper.UnmarshalKey("postgresql", &pg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse postgresql config: %w", err)
	}

	// Defaults the template leaves implicit.
	if pg.Host == "" {
		pg.Host = "localhost"
	}
	if pg.User == "" {
		pg.User = "postgres"
	}

	if issues := Validate(&mysql, &pg); len(issues) > 0 {
		var b strings.Builder
		fmt.Fprintf(&b, "config validation failed (%d issue", len(issues))
		if len(issues) > 1 {
			b.WriteString("s")
		}
		b.WriteString("):\n")
		for _, issue := range issues {
			fmt.Fprintf(&b, "  • %s\n", issue)
		}
		fmt.Fprintf(&b, "Edit %s and fix the issues above.", viper.ConfigFileUsed())
		return nil, nil, fmt.Errorf("%s", b.String())
	}

	mysql.Host = strings.TrimSpace(mysql.Host)
	mysql.User = strings.TrimSpace(mysql.User)
	mysql.Database = strings.TrimSpace(mysql.Database)
	pg.Host = strings.TrimSpace(pg.Host)
	pg.User = strings.TrimSpace(pg.User)
	pg.Database = strings.TrimSpace(pg.Database)

	return &mysql, &pg, nil
}

// Validate returns one line per problem, each naming the field and the fix.
func Validate(mysql *MySQLConfig, pg *PGConfig) []string {
	var issues []string

	check := func(section, key, value string) {
		if strings.TrimSpace(value) == "" {
			issues = append(issues, fmt.Sprintf("%s.%s — value is empty", section, key))
		}
	}
	check("mysql", "host", mysql.Host)
	check("mysql", "user", mysql.User)
	check("mysql", "password", mysql.Password)
	check("mysql", "database", mysql.Database)
	check("postgresql", "database", pg.Database)
	check("postgresql", "password", pg.Password)

	if mysql.Password == PlaceholderPassword {
		issues = append(issues, fmt.Sprintf("mysql.password — still has placeholder value %q", PlaceholderPassword))
	}
	if mysql.Database == PlaceholderDatabase {
		issues = append(issues, fmt.Sprintf("mysql.database — still has placeholder value %q", PlaceholderDatabase))
	}

	for _, p := range []struct {
		label string
		port  int
	}{
		{"mysql.port", mysql.Port},
		{"postgresql.port", pg.Port},
	} {
		if p.port < 1 || p.port > 65535 {
			issues = append(issues, fmt.Sprintf("%s must be between 1 and 65535, got: %d", p.label, p.port))
		}
	}

	return issues
}

// FileName is the config file viper looks for (without extension: mysql2pg).
const FileName = "mysql2pg.yaml"

const defaultConfig = `# mysql2pg migration config
mysql:
  host: localhost
  port: 3306
  user: root
  password: ` + PlaceholderPassword + `
  database: ` + PlaceholderDatabase + `

postgresql:
  host: localhost
  port: 5432
  user: postgres
  database: myapp
  password: postgres
`

// Init writes the default config template. It refuses to overwrite an
// existing file unless force is set.
func Init(path string, force bool) error {
	if path == "" {
		path = FileName
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
	}
	if err := os.WriteFile(path, []byte(defaultConfig), 0o600); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	return nil
}
