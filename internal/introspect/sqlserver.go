package introspect

import (
	"context"
	"database/sql"
)

// SQLServer introspects a live Microsoft SQL Server database. Table/column/
// constraint existence is scoped by table_catalog (the database name), not
// just table_schema, because information_schema is visible across the
// connection's accessible databases.
type SQLServer struct {
	DB       *sql.DB
	Database string
}

var _ Introspector = SQLServer{}

func (s SQLServer) TableExists(ctx context.Context, table string) (bool, error) {
	return exists(ctx, s.DB,
		`SELECT 1 FROM information_schema.tables WHERE table_catalog = @p1 AND table_name = @p2`,
		s.Database, table)
}

func (s SQLServer) ColumnExists(ctx context.Context, table, column string) (bool, error) {
	return exists(ctx, s.DB,
		`SELECT 1 FROM information_schema.columns WHERE table_catalog = @p1 AND table_name = @p2 AND column_name = @p3`,
		s.Database, table, column)
}

func (s SQLServer) ColumnType(ctx context.Context, table, column string) (string, error) {
	return scanString(ctx, s.DB,
		`SELECT UPPER(data_type) FROM information_schema.columns WHERE table_catalog = @p1 AND table_name = @p2 AND column_name = @p3`,
		s.Database, table, column)
}

func (s SQLServer) PrimaryKeyExists(ctx context.Context, table string) (bool, error) {
	return exists(ctx, s.DB,
		`SELECT 1 FROM information_schema.table_constraints WHERE table_catalog = @p1 AND table_name = @p2 AND constraint_type = 'PRIMARY KEY'`,
		s.Database, table)
}

func (s SQLServer) PrimaryKeyName(ctx context.Context, table string) (string, error) {
	return scanString(ctx, s.DB,
		`SELECT constraint_name FROM information_schema.table_constraints WHERE table_catalog = @p1 AND table_name = @p2 AND constraint_type = 'PRIMARY KEY'`,
		s.Database, table)
}

func (s SQLServer) ForeignKeyExists(ctx context.Context, table, name string) (bool, error) {
	return exists(ctx, s.DB,
		`SELECT 1 FROM information_schema.table_constraints WHERE table_catalog = @p1 AND table_name = @p2 AND constraint_name = @p3 AND constraint_type = 'FOREIGN KEY'`,
		s.Database, table, name)
}

// IndexExists is scoped correctly by database name (see type doc).
func (s SQLServer) IndexExists(ctx context.Context, table, index string) (bool, error) {
	return exists(ctx, s.DB,
		`SELECT 1 FROM sys.indexes i
		   JOIN sys.tables t ON i.object_id = t.object_id
		  WHERE DB_NAME() = @p1 AND t.name = @p2 AND i.name = @p3`,
		s.Database, table, index)
}

func (s SQLServer) MatchingForeignKeys(ctx context.Context, fkTable, fkCol, pkTable, pkCol string) ([]string, error) {
	return scanStrings(ctx, s.DB,
		`SELECT tc.constraint_name
		   FROM information_schema.table_constraints tc
		   JOIN information_schema.key_column_usage kcu
		     ON tc.constraint_name = kcu.constraint_name AND tc.table_catalog = kcu.table_catalog
		   JOIN information_schema.referential_constraints rc
		     ON tc.constraint_name = rc.constraint_name AND tc.constraint_catalog = rc.constraint_catalog
		   JOIN information_schema.key_column_usage pkcu
		     ON rc.unique_constraint_name = pkcu.constraint_name AND rc.unique_constraint_catalog = pkcu.constraint_catalog
		  WHERE tc.constraint_type = 'FOREIGN KEY'
		    AND tc.table_catalog = @p1
		    AND tc.table_name = @p2 AND kcu.column_name = @p3
		    AND pkcu.table_name = @p4 AND pkcu.column_name = @p5`,
		s.Database, fkTable, fkCol, pkTable, pkCol)
}

// DatabaseExists checks sys.databases for the given database name, used by
// `tern init` on SQL Server to create the database before creating the
// version table.
func DatabaseExists(ctx context.Context, db *sql.DB, name string) (bool, error) {
	return exists(ctx, db, `SELECT 1 FROM sys.databases WHERE name = @p1`, name)
}
