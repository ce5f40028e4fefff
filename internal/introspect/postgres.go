package introspect

import (
	"context"
	"database/sql"
)

// PostgreSQL introspects a live PostgreSQL database via information_schema,
// scoped to the "public" schema (PostgreSQL's default search path entry).
type PostgreSQL struct {
	DB *sql.DB
}

var _ Introspector = PostgreSQL{}

func (p PostgreSQL) TableExists(ctx context.Context, table string) (bool, error) {
	return exists(ctx, p.DB,
		`SELECT 1 FROM information_schema.tables WHERE table_schema = 'public' AND table_name = $1`,
		table)
}

func (p PostgreSQL) ColumnExists(ctx context.Context, table, column string) (bool, error) {
	return exists(ctx, p.DB,
		`SELECT 1 FROM information_schema.columns WHERE table_schema = 'public' AND table_name = $1 AND column_name = $2`,
		table, column)
}

func (p PostgreSQL) ColumnType(ctx context.Context, table, column string) (string, error) {
	return scanString(ctx, p.DB,
		`SELECT UPPER(data_type) FROM information_schema.columns WHERE table_schema = 'public' AND table_name = $1 AND column_name = $2`,
		table, column)
}

func (p PostgreSQL) PrimaryKeyExists(ctx context.Context, table string) (bool, error) {
	return exists(ctx, p.DB,
		`SELECT 1 FROM information_schema.table_constraints WHERE table_schema = 'public' AND table_name = $1 AND constraint_type = 'PRIMARY KEY'`,
		table)
}

func (p PostgreSQL) PrimaryKeyName(ctx context.Context, table string) (string, error) {
	return scanString(ctx, p.DB,
		`SELECT constraint_name FROM information_schema.table_constraints WHERE table_schema = 'public' AND table_name = $1 AND constraint_type = 'PRIMARY KEY'`,
		table)
}

func (p PostgreSQL) ForeignKeyExists(ctx context.Context, table, name string) (bool, error) {
	return exists(ctx, p.DB,
		`SELECT 1 FROM information_schema.table_constraints WHERE table_schema = 'public' AND table_name = $1 AND constraint_name = $2 AND constraint_type = 'FOREIGN KEY'`,
		table, name)
}

func (p PostgreSQL) IndexExists(ctx context.Context, table, index string) (bool, error) {
	return exists(ctx, p.DB,
		`SELECT 1 FROM pg_indexes WHERE schemaname = 'public' AND tablename = $1 AND indexname = $2`,
		table, index)
}

func (p PostgreSQL) MatchingForeignKeys(ctx context.Context, fkTable, fkCol, pkTable, pkCol string) ([]string, error) {
	return scanStrings(ctx, p.DB,
		`SELECT tc.constraint_name
		   FROM information_schema.table_constraints tc
		   JOIN information_schema.key_column_usage kcu
		     ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
		   JOIN information_schema.constraint_column_usage ccu
		     ON tc.constraint_name = ccu.constraint_name AND tc.table_schema = ccu.table_schema
		  WHERE tc.constraint_type = 'FOREIGN KEY'
		    AND tc.table_schema = 'public'
		    AND tc.table_name = $1 AND kcu.column_name = $2
		    AND ccu.table_name = $3 AND ccu.column_name = $4`,
		fkTable, fkCol, pkTable, pkCol)
}
