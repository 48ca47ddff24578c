package introspect

import (
	"database/sql"
	"fmt"
	"strings"

	"mysql2pg/internal/config"
)

func openSource(cfg *config.MySQLConfig, op string) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, &UnavailableError{Engine: "mysql", Op: op, Err: err}
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &UnavailableError{Engine: "mysql", Op: op, Err: err}
	}
	return db, nil
}

// SourceTableRowCounts lists the source database's base tables and counts
// each one exactly. A failing count marks that single table unavailable and
// is reported in the second return value; it never aborts the batch. Keys are
// lower-cased to allow case-insensitive comparison against the target.
func SourceTableRowCounts(cfg *config.MySQLConfig) (TableInventory, []error, error) {
	db, err := openSource(cfg, "row counts")
	if err != nil {
		return nil, nil, err
	}
	defer db.Close()

	rows, err := db.Query(
		`SELECT TABLE_NAME FROM information_schema.TABLES WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE'`,
		cfg.Database)
	if err != nil {
		return nil, nil, &UnavailableError{Engine: "mysql", Op: "table list", Err: err}
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, nil, &UnavailableError{Engine: "mysql", Op: "table list", Err: err}
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, &UnavailableError{Engine: "mysql", Op: "table list", Err: err}
	}

	inventory := make(TableInventory, len(tables))
	var tableErrs []error
	for _, table := range tables {
		var n int64
		if err := db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM `%s`", table)).Scan(&n); err != nil {
			inventory[strings.ToLower(table)] = Unavailable
			tableErrs = append(tableErrs, fmt.Errorf("could not count rows in MySQL table `%s`: %w", table, err))
			continue
		}
		inventory[strings.ToLower(table)] = Known(n)
	}
	return inventory, tableErrs, nil
}

// SourceColumnTypes returns the full source column catalog, ordered by table
// then ordinal position. COLUMN_TYPE keeps the precision qualifier
// (tinyint(1), varchar(50)) which the type diff strips later.
func SourceColumnTypes(cfg *config.MySQLConfig) ([]ColumnDescriptor, error) {
	db, err := openSource(cfg, "column types")
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(
		`SELECT TABLE_NAME, COLUMN_NAME, COLUMN_TYPE, DATA_TYPE, IS_NULLABLE, COLUMN_DEFAULT
		   FROM information_schema.COLUMNS
		  WHERE TABLE_SCHEMA = ?
		  ORDER BY TABLE_NAME, ORDINAL_POSITION`,
		cfg.Database)
	if err != nil {
		return nil, &UnavailableError{Engine: "mysql", Op: "column types", Err: err}
	}
	defer rows.Close()

	var cols []ColumnDescriptor
	for rows.Next() {
		var table, column, colType, dataType, nullable, colDefault sql.NullString
		if err := rows.Scan(&table, &column, &colType, &dataType, &nullable, &colDefault); err != nil {
			return nil, &UnavailableError{Engine: "mysql", Op: "column types", Err: err}
		}
		if !table.Valid || !column.Valid {
			continue
		}
		cols = append(cols, ColumnDescriptor{
			Table:      table.String,
			Column:     column.String,
			DataType:   colType.String,
			NativeType: dataType.String,
			Nullable:   nullable.String == "YES",
			Default:    colDefault.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, &UnavailableError{Engine: "mysql", Op: "column types", Err: err}
	}
	return cols, nil
}
