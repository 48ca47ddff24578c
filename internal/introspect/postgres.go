package introspect

import (
	"database/sql"
	"fmt"

	"mysql2pg/internal/config"
)

func openTarget(cfg *config.PGConfig, op string) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, &UnavailableError{Engine: "postgresql", Op: op, Err: err}
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &UnavailableError{Engine: "postgresql", Op: op, Err: err}
	}
	return db, nil
}

// TargetTableRowCounts counts every base table in the resolved schema. Table
// casing is preserved: the target engine is case-sensitive by convention and
// the loader lower-cases names on the way in, so keys already align with the
// lower-cased source inventory.
func TargetTableRowCounts(cfg *config.PGConfig, schema string) (TableInventory, []error, error) {
	db, err := openTarget(cfg, "row counts")
	if err != nil {
		return nil, nil, err
	}
	defer db.Close()

	rows, err := db.Query(
		`SELECT table_name FROM information_schema.tables WHERE table_schema = $1 AND table_type = 'BASE TABLE'`,
		schema)
	if err != nil {
		return nil, nil, &UnavailableError{Engine: "postgresql", Op: "table list", Err: err}
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, nil, &UnavailableError{Engine: "postgresql", Op: "table list", Err: err}
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, &UnavailableError{Engine: "postgresql", Op: "table list", Err: err}
	}

	inventory := make(TableInventory, len(tables))
	var tableErrs []error
	for _, table := range tables {
		var n int64
		q := fmt.Sprintf(`SELECT COUNT(*) FROM %q.%q`, schema, table)
		if err := db.QueryRow(q).Scan(&n); err != nil {
			inventory[table] = Unavailable
			tableErrs = append(tableErrs, fmt.Errorf("could not count rows in PostgreSQL table %q: %w", table, err))
			continue
		}
		inventory[table] = Known(n)
	}
	return inventory, tableErrs, nil
}

// TargetColumnTypes returns the target column catalog for the schema,
// ordered by table then ordinal position for deterministic diff output.
func TargetColumnTypes(cfg *config.PGConfig, schema string) ([]ColumnDescriptor, error) {
	db, err := openTarget(cfg, "column types")
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(
		`SELECT table_name, column_name, data_type, udt_name, is_nullable, column_default
		   FROM information_schema.columns
		  WHERE table_schema = $1
		  ORDER BY table_name, ordinal_position`,
		schema)
	if err != nil {
		return nil, &UnavailableError{Engine: "postgresql", Op: "column types", Err: err}
	}
	defer rows.Close()

	var cols []ColumnDescriptor
	for rows.Next() {
		var table, column, dataType, udtName, nullable, colDefault sql.NullString
		if err := rows.Scan(&table, &column, &dataType, &udtName, &nullable, &colDefault); err != nil {
			return nil, &UnavailableError{Engine: "postgresql", Op: "column types", Err: err}
		}
		cols = append(cols, ColumnDescriptor{
			Table:      table.String,
			Column:     column.String,
			DataType:   dataType.String,
			NativeType: udtName.String,
			Nullable:   nullable.String == "YES",
			Default:    colDefault.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, &UnavailableError{Engine: "postgresql", Op: "column types", Err: err}
	}
	return cols, nil
}

// TargetConstraints inventories primary keys, foreign keys, indexes and
// sequences in the schema. Informational only: no source comparison is
// attempted because the engines' constraint models differ structurally.
func TargetConstraints(cfg *config.PGConfig, schema string) (*ConstraintInventory, error) {
	db, err := openTarget(cfg, "constraints")
	if err != nil {
		return nil, err
	}
	defer db.Close()

	inv := &ConstraintInventory{}

	pkRows, err := db.Query(
		`SELECT tc.table_name, kcu.column_name
		   FROM information_schema.table_constraints tc
		   JOIN information_schema.key_column_usage kcu
		     ON tc.constraint_name = kcu.constraint_name
		    AND tc.table_schema = kcu.table_schema
		  WHERE tc.constraint_type = 'PRIMARY KEY'
		    AND tc.table_schema = $1
		  ORDER BY tc.table_name`,
		schema)
	if err != nil {
		return nil, &UnavailableError{Engine: "postgresql", Op: "primary keys", Err: err}
	}
	defer pkRows.Close()
	for pkRows.Next() {
		var pk PrimaryKey
		if err := pkRows.Scan(&pk.Table, &pk.Column); err != nil {
			return nil, &UnavailableError{Engine: "postgresql", Op: "primary keys", Err: err}
		}
		inv.PrimaryKeys = append(inv.PrimaryKeys, pk)
	}
	if err := pkRows.Err(); err != nil {
		return nil, &UnavailableError{Engine: "postgresql", Op: "primary keys", Err: err}
	}

	fkRows, err := db.Query(
		`SELECT tc.table_name, kcu.column_name,
		        ccu.table_name AS ref_table, ccu.column_name AS ref_column
		   FROM information_schema.table_constraints tc
		   JOIN information_schema.key_column_usage kcu
		     ON tc.constraint_name = kcu.constraint_name
		    AND tc.table_schema = kcu.table_schema
		   JOIN information_schema.constraint_column_usage ccu
		     ON ccu.constraint_name = tc.constraint_name
		    AND ccu.table_schema = tc.table_schema
		  WHERE tc.constraint_type = 'FOREIGN KEY'
		    AND tc.table_schema = $1
		  ORDER BY tc.table_name`,
		schema)
	if err != nil {
		return nil, &UnavailableError{Engine: "postgresql", Op: "foreign keys", Err: err}
	}
	defer fkRows.Close()
	for fkRows.Next() {
		var fk ForeignKey
		if err := fkRows.Scan(&fk.Table, &fk.Column, &fk.RefTable, &fk.RefColumn); err != nil {
			return nil, &UnavailableError{Engine: "postgresql", Op: "foreign keys", Err: err}
		}
		inv.ForeignKeys = append(inv.ForeignKeys, fk)
	}
	if err := fkRows.Err(); err != nil {
		return nil, &UnavailableError{Engine: "postgresql", Op: "foreign keys", Err: err}
	}

	idxRows, err := db.Query(
		`SELECT tablename, indexname FROM pg_indexes WHERE schemaname = $1 ORDER BY tablename, indexname`,
		schema)
	if err != nil {
		return nil, &UnavailableError{Engine: "postgresql", Op: "indexes", Err: err}
	}
	defer idxRows.Close()
	for idxRows.Next() {
		var idx Index
		if err := idxRows.Scan(&idx.Table, &idx.Name); err != nil {
			return nil, &UnavailableError{Engine: "postgresql", Op: "indexes", Err: err}
		}
		inv.Indexes = append(inv.Indexes, idx)
	}
	if err := idxRows.Err(); err != nil {
		return nil, &UnavailableError{Engine: "postgresql", Op: "indexes", Err: err}
	}

	seqRows, err := db.Query(
		`SELECT sequence_name FROM information_schema.sequences WHERE sequence_schema = $1 ORDER BY sequence_name`,
		schema)
	if err != nil {
		return nil, &UnavailableError{Engine: "postgresql", Op: "sequences", Err: err}
	}
	defer seqRows.Close()
	for seqRows.Next() {
		var name string
		if err := seqRows.Scan(&name); err != nil {
			return nil, &UnavailableError{Engine: "postgresql", Op: "sequences", Err: err}
		}
		inv.Sequences = append(inv.Sequences, name)
	}
	if err := seqRows.Err(); err != nil {
		return nil, &UnavailableError{Engine: "postgresql", Op: "sequences", Err: err}
	}

	return inv, nil
}
