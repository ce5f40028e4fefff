// Package introspect defines the live-database introspector used by the
// dialect compilers to make idempotency decisions, and backend-specific
// implementations that query information_schema / system catalogs.
//
// A nil Introspector is valid and useful for testing or TERN_DRYRUN: every
// dialect compiler treats a nil introspector as "assume empty schema".
package introspect

import "context"

// Introspector answers read-only existence questions about the live
// database. Implementations must be safe to call repeatedly within one
// migration; they are not expected to be safe for concurrent use — migrations
// execute single-threaded.
type Introspector interface {
	// TableExists reports whether the named table exists.
	TableExists(ctx context.Context, table string) (bool, error)
	// ColumnExists reports whether the named column exists on the table.
	ColumnExists(ctx context.Context, table, column string) (bool, error)
	// ColumnType returns the column's declared type (upper-cased base type,
	// e.g. "TEXT", "BLOB"), used by create-index's non-indexable filter.
	ColumnType(ctx context.Context, table, column string) (string, error)
	// PrimaryKeyExists reports whether the table has a primary key.
	PrimaryKeyExists(ctx context.Context, table string) (bool, error)
	// PrimaryKeyName returns the name of the table's primary-key
	// constraint, required by SQL Server and PostgreSQL's drop-PK path.
	PrimaryKeyName(ctx context.Context, table string) (string, error)
	// ForeignKeyExists reports whether a foreign key with the given name
	// exists on the table.
	ForeignKeyExists(ctx context.Context, table, name string) (bool, error)
	// IndexExists reports whether the named index exists on the table.
	IndexExists(ctx context.Context, table, index string) (bool, error)
	// MatchingForeignKeys returns the names of foreign keys already
	// covering the (fkTable, fkCol) -> (pkTable, pkCol) relationship,
	// used by H2's auto-drop-duplicate-FK path.
	MatchingForeignKeys(ctx context.Context, fkTable, fkCol, pkTable, pkCol string) ([]string, error)
}

// Null is the "no live database" introspector: every existence check
// answers false / empty. Useful for testing.
type Null struct{}

func (Null) TableExists(context.Context, string) (bool, error)              { return false, nil }
func (Null) ColumnExists(context.Context, string, string) (bool, error)     { return false, nil }
func (Null) ColumnType(context.Context, string, string) (string, error)     { return "", nil }
func (Null) PrimaryKeyExists(context.Context, string) (bool, error)         { return false, nil }
func (Null) PrimaryKeyName(context.Context, string) (string, error)         { return "", nil }
func (Null) ForeignKeyExists(context.Context, string, string) (bool, error) { return false, nil }
func (Null) IndexExists(context.Context, string, string) (bool, error)      { return false, nil }
func (Null) MatchingForeignKeys(context.Context, string, string, string, string) ([]string, error) {
	return nil, nil
}

var _ Introspector = Null{}
