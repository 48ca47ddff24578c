package config

import (
	"database/sql"
	"errors"

	"mysql2pg/internal/console"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// TestMySQL checks source connectivity before anything is mutated. On failure
// it prints troubleshooting guidance keyed to the server error code and
// returns false.
func TestMySQL(cfg *MySQLConfig, con *console.Console) bool {
	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		con.Printf("  ✗ MySQL driver error: %v\n", err)
		return false
	}
	defer db.Close()

	if err := db.Ping(); err == nil {
		return true
	} else {
		con.Printf("  ✗ MySQL connection failed: %v\n", err)

		var myErr *mysql.MySQLError
		switch {
		case errors.As(err, &myErr) && myErr.Number == 1045:
			con.Printf("\n  Troubleshooting:\n")
			con.Printf("    • Access denied for user %q\n", cfg.User)
			con.Printf("    • Check the password in %s\n", FileName)
			con.Printf("    • Verify MySQL user grants: SELECT user, host FROM mysql.user;\n")
		case errors.As(err, &myErr) && myErr.Number == 1049:
			con.Printf("\n  Troubleshooting:\n")
			con.Printf("    • Database %q does not exist\n", cfg.Database)
			con.Printf("    • List databases: mysql -u root -p -e 'SHOW DATABASES;'\n")
			con.Printf("    • Check the spelling in %s\n", FileName)
		default:
			con.Printf("\n  Troubleshooting:\n")
			con.Printf("    1. Is MySQL running on %s:%d?\n", cfg.Host, cfg.Port)
			con.Printf("    2. Check: sudo systemctl status mysql\n")
			con.Printf("    3. Firewall: sudo ufw allow from 172.16.0.0/12 to any port 3306\n")
			con.Printf("    4. MySQL bind-address: set bind-address = 0.0.0.0 in my.cnf\n")
		}
		return false
	}
}

// TestPostgres checks target connectivity. Only meaningful for remote
// targets; a local target container is started by the pipeline itself.
func TestPostgres(cfg *PGConfig, con *console.Console) bool {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		con.Printf("  ✗ PostgreSQL driver error: %v\n", err)
		return false
	}
	defer db.Close()

	if err := db.Ping(); err == nil {
		return true
	} else {
		con.Printf("  ✗ PostgreSQL connection failed: %v\n", err)

		var pqErr *pq.Error
		switch {
		case errors.As(err, &pqErr) && pqErr.Code == "28P01":
			con.Printf("    • Authentication failed for user %q — check postgresql.password in %s\n", cfg.User, FileName)
		case errors.As(err, &pqErr) && pqErr.Code == "3D000":
			con.Printf("    • Database %q does not exist on %s:%d\n", cfg.Database, cfg.Host, cfg.Port)
		default:
			con.Printf("    • Is PostgreSQL accepting connections on %s:%d?\n", cfg.Host, cfg.Port)
		}
		return false
	}
}
