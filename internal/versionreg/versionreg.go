// Package versionreg reads and writes the version-tracking table every
// backend uses to record which migrations have been applied.
package versionreg

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ternmigrate/tern/internal/naming"
)

// Registry reads and writes one backend's version table.
type Registry struct {
	DB               *sql.DB
	Table            string
	VersionColumnSQL string // column type for "created", per-backend (dialect.Compiler.VersionColumnType)
}

// New returns a Registry bound to table, using columnType for the "created"
// column's per-backend timestamp type.
func New(db *sql.DB, table, columnType string) *Registry {
	return &Registry{DB: db, Table: naming.ToSQLName(table), VersionColumnSQL: columnType}
}

// CreateTableSQL returns the DDL statement for `init` to create the version
// table if it does not already exist.
func (r *Registry) CreateTableSQL() string {
	return fmt.Sprintf(
		"CREATE TABLE %s (version VARCHAR(14) NOT NULL, created %s NOT NULL)",
		r.Table, r.VersionColumnSQL,
	)
}

// Exists reports whether the version table itself has been created.
func (r *Registry) Exists(ctx context.Context) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, fmt.Sprintf("SELECT 1 FROM %s", r.Table)).Scan(&one)
	if err == sql.ErrNoRows {
		// The table exists but holds no versions yet.
		return true, nil
	}
	if err != nil {
		// Table-doesn't-exist surfaces as a driver error distinct from "no
		// rows".
		return false, nil
	}
	return true, nil
}

// Record inserts a newly-applied version. timestampExpr renders the current
// time as the dialect-appropriate literal (e.g. a Unix epoch integer for
// BIGINT columns, "CURRENT_TIMESTAMP" for TIMESTAMP/DATETIME columns).
func (r *Registry) Record(ctx context.Context, version, timestampExpr string) error {
	stmt := fmt.Sprintf("INSERT INTO %s (version, created) VALUES ('%s', %s)", r.Table, version, timestampExpr)
	_, err := r.DB.ExecContext(ctx, stmt)
	return err
}

// Forget removes a version, used by rollback to mark its predecessor as
// current again.
func (r *Registry) Forget(ctx context.Context, version string) error {
	stmt := fmt.Sprintf("DELETE FROM %s WHERE version = '%s'", r.Table, version)
	_, err := r.DB.ExecContext(ctx, stmt)
	return err
}

// Applied returns every recorded version, sorted ascending.
func (r *Registry) Applied(ctx context.Context) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, fmt.Sprintf("SELECT version FROM %s ORDER BY version ASC", r.Table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// Current returns the highest recorded version, or "" if none.
func (r *Registry) Current(ctx context.Context) (string, error) {
	versions, err := r.Applied(ctx)
	if err != nil || len(versions) == 0 {
		return "", err
	}
	return versions[len(versions)-1], nil
}
