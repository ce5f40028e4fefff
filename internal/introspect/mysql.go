package introspect

import (
	"context"
	"database/sql"
)

// MySQL introspects a live MySQL database via information_schema, scoped to
// the connection's current database (DATABASE()).
type MySQL struct {
	DB *sql.DB
}

var _ Introspector = MySQL{}

func (m MySQL) TableExists(ctx context.Context, table string) (bool, error) {
	return exists(ctx, m.DB,
		`SELECT 1 FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?`,
		table)
}

func (m MySQL) ColumnExists(ctx context.Context, table, column string) (bool, error) {
	return exists(ctx, m.DB,
		`SELECT 1 FROM information_schema.columns WHERE table_schema = DATABASE() AND table_name = ? AND column_name = ?`,
		table, column)
}

func (m MySQL) ColumnType(ctx context.Context, table, column string) (string, error) {
	return scanString(ctx, m.DB,
		`SELECT UPPER(data_type) FROM information_schema.columns WHERE table_schema = DATABASE() AND table_name = ? AND column_name = ?`,
		table, column)
}

func (m MySQL) PrimaryKeyExists(ctx context.Context, table string) (bool, error) {
	return exists(ctx, m.DB,
		`SELECT 1 FROM information_schema.table_constraints WHERE table_schema = DATABASE() AND table_name = ? AND constraint_type = 'PRIMARY KEY'`,
		table)
}

func (m MySQL) PrimaryKeyName(ctx context.Context, table string) (string, error) {
	return scanString(ctx, m.DB,
		`SELECT constraint_name FROM information_schema.table_constraints WHERE table_schema = DATABASE() AND table_name = ? AND constraint_type = 'PRIMARY KEY'`,
		table)
}

func (m MySQL) ForeignKeyExists(ctx context.Context, table, name string) (bool, error) {
	return exists(ctx, m.DB,
		`SELECT 1 FROM information_schema.table_constraints WHERE table_schema = DATABASE() AND table_name = ? AND constraint_name = ? AND constraint_type = 'FOREIGN KEY'`,
		table, name)
}

func (m MySQL) IndexExists(ctx context.Context, table, index string) (bool, error) {
	return exists(ctx, m.DB,
		`SELECT 1 FROM information_schema.statistics WHERE table_schema = DATABASE() AND table_name = ? AND index_name = ?`,
		table, index)
}

func (m MySQL) MatchingForeignKeys(ctx context.Context, fkTable, fkCol, pkTable, pkCol string) ([]string, error) {
	return scanStrings(ctx, m.DB,
		`SELECT constraint_name FROM information_schema.key_column_usage
		 WHERE table_schema = DATABASE() AND table_name = ? AND column_name = ?
		   AND referenced_table_name = ? AND referenced_column_name = ?`,
		fkTable, fkCol, pkTable, pkCol)
}

// exists runs a query expected to return at most one row and reports
// whether any row was returned.
func exists(ctx context.Context, db *sql.DB, query string, args ...any) (bool, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	defer rows.Close()
	return rows.Next(), rows.Err()
}

// scanString runs a query expected to return at most one row with one
// string column, returning "" if no row was returned.
func scanString(ctx context.Context, db *sql.DB, query string, args ...any) (string, error) {
	var s string
	err := db.QueryRowContext(ctx, query, args...).Scan(&s)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return s, err
}

// scanStrings runs a query expected to return zero or more rows with one
// string column.
func scanStrings(ctx context.Context, db *sql.DB, query string, args ...any) ([]string, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
