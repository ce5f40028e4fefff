package introspect

import (
	"context"
	"database/sql"
	"strings"
)

// H2V1 introspects an H2 1.x database. H2 stores unquoted identifiers
// upper-cased, so every identifier is upper-cased before being matched
// against INFORMATION_SCHEMA, which is itself scoped by SCHEMA().
type H2V1 struct {
	DB *sql.DB
}

var _ Introspector = H2V1{}

func (h H2V1) TableExists(ctx context.Context, table string) (bool, error) {
	return exists(ctx, h.DB,
		`SELECT 1 FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_SCHEMA = SCHEMA() AND TABLE_NAME = ?`,
		up(table))
}

func (h H2V1) ColumnExists(ctx context.Context, table, column string) (bool, error) {
	return exists(ctx, h.DB,
		`SELECT 1 FROM INFORMATION_SCHEMA.COLUMNS WHERE TABLE_SCHEMA = SCHEMA() AND TABLE_NAME = ? AND COLUMN_NAME = ?`,
		up(table), up(column))
}

func (h H2V1) ColumnType(ctx context.Context, table, column string) (string, error) {
	return scanString(ctx, h.DB,
		`SELECT TYPE_NAME FROM INFORMATION_SCHEMA.COLUMNS WHERE TABLE_SCHEMA = SCHEMA() AND TABLE_NAME = ? AND COLUMN_NAME = ?`,
		up(table), up(column))
}

func (h H2V1) PrimaryKeyExists(ctx context.Context, table string) (bool, error) {
	return exists(ctx, h.DB,
		`SELECT 1 FROM INFORMATION_SCHEMA.CONSTRAINTS WHERE TABLE_SCHEMA = SCHEMA() AND TABLE_NAME = ? AND CONSTRAINT_TYPE = 'PRIMARY KEY'`,
		up(table))
}

func (h H2V1) PrimaryKeyName(ctx context.Context, table string) (string, error) {
	return scanString(ctx, h.DB,
		`SELECT CONSTRAINT_NAME FROM INFORMATION_SCHEMA.CONSTRAINTS WHERE TABLE_SCHEMA = SCHEMA() AND TABLE_NAME = ? AND CONSTRAINT_TYPE = 'PRIMARY KEY'`,
		up(table))
}

func (h H2V1) ForeignKeyExists(ctx context.Context, table, name string) (bool, error) {
	return exists(ctx, h.DB,
		`SELECT 1 FROM INFORMATION_SCHEMA.CONSTRAINTS WHERE TABLE_SCHEMA = SCHEMA() AND TABLE_NAME = ? AND CONSTRAINT_NAME = ? AND CONSTRAINT_TYPE = 'REFERENTIAL'`,
		up(table), up(name))
}

func (h H2V1) IndexExists(ctx context.Context, table, index string) (bool, error) {
	return exists(ctx, h.DB,
		`SELECT 1 FROM INFORMATION_SCHEMA.INDEXES WHERE TABLE_SCHEMA = SCHEMA() AND TABLE_NAME = ? AND INDEX_NAME = ?`,
		up(table), up(index))
}

// MatchingForeignKeys uses information_schema.cross_references, the H2 1.x
// catalog view listing (fktable,fkcolumn) -> (pktable,pkcolumn) pairs per
// named constraint.
func (h H2V1) MatchingForeignKeys(ctx context.Context, fkTable, fkCol, pkTable, pkCol string) ([]string, error) {
	return scanStrings(ctx, h.DB,
		`SELECT FK_NAME FROM INFORMATION_SCHEMA.CROSS_REFERENCES
		  WHERE FKTABLE_SCHEMA = SCHEMA() AND FKTABLE_NAME = ? AND FKCOLUMN_NAME = ?
		    AND PKTABLE_NAME = ? AND PKCOLUMN_NAME = ?`,
		up(fkTable), up(fkCol), up(pkTable), up(pkCol))
}

// H2V2 introspects an H2 2.x database. Identifier handling matches H2V1;
// the matching-foreign-keys query must instead be derived by joining
// table_constraints, referential_constraints and constraint_column_usage,
// since H2 2.x dropped the cross_references view.
type H2V2 struct {
	DB *sql.DB
}

var _ Introspector = H2V2{}

func (h H2V2) TableExists(ctx context.Context, table string) (bool, error) {
	return exists(ctx, h.DB,
		`SELECT 1 FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_SCHEMA = SCHEMA() AND TABLE_NAME = ?`,
		up(table))
}

func (h H2V2) ColumnExists(ctx context.Context, table, column string) (bool, error) {
	return exists(ctx, h.DB,
		`SELECT 1 FROM INFORMATION_SCHEMA.COLUMNS WHERE TABLE_SCHEMA = SCHEMA() AND TABLE_NAME = ? AND COLUMN_NAME = ?`,
		up(table), up(column))
}

func (h H2V2) ColumnType(ctx context.Context, table, column string) (string, error) {
	return scanString(ctx, h.DB,
		`SELECT DATA_TYPE FROM INFORMATION_SCHEMA.COLUMNS WHERE TABLE_SCHEMA = SCHEMA() AND TABLE_NAME = ? AND COLUMN_NAME = ?`,
		up(table), up(column))
}

func (h H2V2) PrimaryKeyExists(ctx context.Context, table string) (bool, error) {
	return exists(ctx, h.DB,
		`SELECT 1 FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS WHERE TABLE_SCHEMA = SCHEMA() AND TABLE_NAME = ? AND CONSTRAINT_TYPE = 'PRIMARY KEY'`,
		up(table))
}

func (h H2V2) PrimaryKeyName(ctx context.Context, table string) (string, error) {
	return scanString(ctx, h.DB,
		`SELECT CONSTRAINT_NAME FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS WHERE TABLE_SCHEMA = SCHEMA() AND TABLE_NAME = ? AND CONSTRAINT_TYPE = 'PRIMARY KEY'`,
		up(table))
}

func (h H2V2) ForeignKeyExists(ctx context.Context, table, name string) (bool, error) {
	return exists(ctx, h.DB,
		`SELECT 1 FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS WHERE TABLE_SCHEMA = SCHEMA() AND TABLE_NAME = ? AND CONSTRAINT_NAME = ? AND CONSTRAINT_TYPE = 'FOREIGN KEY'`,
		up(table), up(name))
}

func (h H2V2) IndexExists(ctx context.Context, table, index string) (bool, error) {
	return exists(ctx, h.DB,
		`SELECT 1 FROM INFORMATION_SCHEMA.INDEXES WHERE TABLE_SCHEMA = SCHEMA() AND TABLE_NAME = ? AND INDEX_NAME = ?`,
		up(table), up(index))
}

func (h H2V2) MatchingForeignKeys(ctx context.Context, fkTable, fkCol, pkTable, pkCol string) ([]string, error) {
	return scanStrings(ctx, h.DB,
		`SELECT tc.CONSTRAINT_NAME
		   FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
		   JOIN INFORMATION_SCHEMA.REFERENTIAL_CONSTRAINTS rc
		     ON tc.CONSTRAINT_NAME = rc.CONSTRAINT_NAME AND tc.CONSTRAINT_SCHEMA = rc.CONSTRAINT_SCHEMA
		   JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu
		     ON tc.CONSTRAINT_NAME = kcu.CONSTRAINT_NAME AND tc.CONSTRAINT_SCHEMA = kcu.CONSTRAINT_SCHEMA
		   JOIN INFORMATION_SCHEMA.CONSTRAINT_COLUMN_USAGE ccu
		     ON rc.UNIQUE_CONSTRAINT_NAME = ccu.CONSTRAINT_NAME AND rc.UNIQUE_CONSTRAINT_SCHEMA = ccu.CONSTRAINT_SCHEMA
		  WHERE tc.CONSTRAINT_TYPE = 'FOREIGN KEY'
		    AND tc.TABLE_SCHEMA = SCHEMA()
		    AND tc.TABLE_NAME = ? AND kcu.COLUMN_NAME = ?
		    AND ccu.TABLE_NAME = ? AND ccu.COLUMN_NAME = ?`,
		up(fkTable), up(fkCol), up(pkTable), up(pkCol))
}

func up(s string) string { return strings.ToUpper(s) }
