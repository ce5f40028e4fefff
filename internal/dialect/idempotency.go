package dialect

import (
	"context"
	"strings"

	"github.com/ternmigrate/tern/internal/command"
	"github.com/ternmigrate/tern/internal/introspect"
	"github.com/ternmigrate/tern/internal/plan"
)

// The idempotency rules below are uniform across every backend; only the
// SQL each compiler assembles when a rule does *not* fire differs.

// skipCreateTable: if the table exists and no prior drop-table for it is in
// the plan, skip.
func skipCreateTable(ctx context.Context, intro introspect.Introspector, pl *plan.Plan, table string) (bool, error) {
	intro = orNull(intro)
	exists, err := intro.TableExists(ctx, table)
	if err != nil || !exists {
		return false, err
	}
	if pl.DroppedTable(table) {
		return false, nil
	}
	return true, nil
}

// skipAddColumn: if the column exists and no prior alter-table in the plan
// has dropped it on the same table, skip.
func skipAddColumn(ctx context.Context, intro introspect.Introspector, pl *plan.Plan, table, column string) (bool, error) {
	intro = orNull(intro)
	exists, err := intro.ColumnExists(ctx, table, column)
	if err != nil || !exists {
		return false, err
	}
	if pl.DroppedColumn(table, column) {
		return false, nil
	}
	return true, nil
}

// skipDropColumn: if the column does not exist, skip. No intra-plan
// "add then drop" check is performed — dropping a column added earlier in
// the same migration is not a case any backend needs to special-case.
func skipDropColumn(ctx context.Context, intro introspect.Introspector, table, column string) (bool, error) {
	intro = orNull(intro)
	exists, err := intro.ColumnExists(ctx, table, column)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

// skipAddForeignKey: if a foreign key named name exists and no prior
// alter-table in the plan dropped it, skip.
func skipAddForeignKey(ctx context.Context, intro introspect.Introspector, pl *plan.Plan, table, name string) (bool, error) {
	intro = orNull(intro)
	exists, err := intro.ForeignKeyExists(ctx, table, name)
	if err != nil || !exists {
		return false, err
	}
	if pl.DroppedForeignKey(table, name) {
		return false, nil
	}
	return true, nil
}

// skipDropConstraint: if the FK does not exist, skip; for the
// primary-key sentinel, check primary-key existence instead.
func skipDropConstraint(ctx context.Context, intro introspect.Introspector, table, name string) (bool, error) {
	intro = orNull(intro)
	if name == command.PrimaryKeySentinel {
		exists, err := intro.PrimaryKeyExists(ctx, table)
		if err != nil {
			return false, err
		}
		return !exists, nil
	}
	exists, err := intro.ForeignKeyExists(ctx, table, name)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

// skipAddPrimaryKey: if the table already has a primary key and no prior
// alter-table in the plan drops it, skip the ADD PRIMARY KEY fragment.
// Callers that drop the primary key within the same alter-table must bypass
// this check themselves — the plan only covers prior commands.
func skipAddPrimaryKey(ctx context.Context, intro introspect.Introspector, pl *plan.Plan, table string) (bool, error) {
	intro = orNull(intro)
	exists, err := intro.PrimaryKeyExists(ctx, table)
	if err != nil || !exists {
		return false, err
	}
	if pl.DroppedForeignKey(table, command.PrimaryKeySentinel) {
		return false, nil
	}
	return true, nil
}

// skipCreateIndex: if the index exists and no prior drop-index for the
// same (table,index) is in the plan, skip.
func skipCreateIndex(ctx context.Context, intro introspect.Introspector, pl *plan.Plan, table, index string) (bool, error) {
	intro = orNull(intro)
	exists, err := intro.IndexExists(ctx, table, index)
	if err != nil || !exists {
		return false, err
	}
	if pl.DroppedIndex(table, index) {
		return false, nil
	}
	return true, nil
}

// skipDropIndex: if the index does not exist, skip.
func skipDropIndex(ctx context.Context, intro introspect.Introspector, table, index string) (bool, error) {
	intro = orNull(intro)
	exists, err := intro.IndexExists(ctx, table, index)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

// declaredColumnType resolves a column's base type, preferring the live
// introspector and falling back to a prior create-table/alter-table
// add-columns entry in this migration's plan.
func declaredColumnType(ctx context.Context, intro introspect.Introspector, pl *plan.Plan, table, column string) string {
	intro = orNull(intro)
	if t, err := intro.ColumnType(ctx, table, column); err == nil && t != "" {
		return strings.ToUpper(t)
	}
	if tokens, ok := pl.ColumnType(table, column); ok && len(tokens) > 0 {
		return strings.ToUpper(strings.Join(tokens, " "))
	}
	return ""
}

// nonIndexableType reports whether ty (already upper-cased) names a
// large-object type H2 refuses to index.
func nonIndexableType(ty string, extraV2 bool) bool {
	set := map[string]bool{
		"CLOB": true, "NCLOB": true, "BLOB": true, "TINYBLOB": true,
		"MEDIUMBLOB": true, "LONGBLOB": true, "IMAGE": true, "OID": true,
		"TINYTEXT": true, "TEXT": true, "MEDIUMTEXT": true, "LONGTEXT": true,
		"NTEXT": true,
	}
	if extraV2 && ty == "CHARACTER LARGE OBJECT" {
		return true
	}
	for prefix := range set {
		if strings.HasPrefix(ty, prefix) {
			return true
		}
	}
	return false
}
