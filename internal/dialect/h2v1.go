package dialect

import (
	"context"
	"fmt"

	"github.com/ternmigrate/tern/internal/command"
	"github.com/ternmigrate/tern/internal/introspect"
	"github.com/ternmigrate/tern/internal/naming"
	"github.com/ternmigrate/tern/internal/plan"
)

// H2V1 compiles commands for H2 1.x.
type H2V1 struct{}

var _ Compiler = H2V1{}

func (H2V1) Name() string              { return "h2" }
func (H2V1) VersionColumnType() string { return "BIGINT" }

func (c H2V1) Compile(ctx context.Context, cmd command.Command, intro introspect.Introspector, pl *plan.Plan) ([]string, error) {
	switch cc := cmd.(type) {
	case command.CreateTable:
		return c.compileCreateTable(ctx, cc, intro, pl)
	case command.DropTable:
		return []string{fmt.Sprintf("DROP TABLE %s", naming.ToSQLName(cc.Table))}, nil
	case command.AlterTable:
		return c.compileAlterTable(ctx, cc, intro, pl)
	case command.CreateIndex:
		return compileCreateIndexGeneric(ctx, cc, intro, pl, h2ColumnFilter(intro, pl, false))
	case command.DropIndex:
		return compileDropIndexGeneric(ctx, cc, intro)
	case command.InsertInto:
		return compileInsertInto(cc, h2InsertLiteral)
	case command.Update:
		return compileUpdate(cc, "h2")
	default:
		return nil, fmt.Errorf("h2v1: %w: %T", command.ErrUnknownCommand, cmd)
	}
}

// h2ColumnFilter builds the column-exclusion filter create-index uses on
// both H2 versions: a column is excluded when its declared type is a
// large-object type create-index cannot cover; extraV2 adds the v2-only
// CHARACTER LARGE OBJECT exclusion.
func h2ColumnFilter(intro introspect.Introspector, pl *plan.Plan, extraV2 bool) columnFilter {
	return func(ctx context.Context, table, column string) (bool, error) {
		ty := declaredColumnType(ctx, intro, pl, table, column)
		return nonIndexableType(ty, extraV2), nil
	}
}

func (c H2V1) compileCreateTable(ctx context.Context, ct command.CreateTable, intro introspect.Introspector, pl *plan.Plan) ([]string, error) {
	skip, err := skipCreateTable(ctx, intro, pl, ct.Table)
	if err != nil {
		return nil, err
	}
	if skip {
		return nil, nil
	}
	cols := make([]command.Column, len(ct.Columns))
	for i, col := range ct.Columns {
		cols[i] = h2SanitizeColumn(col, true)
	}
	// Table-options are unsupported on H2; dropped rather than routed
	// through a placeholder expansion, since H2 accepts PK/constraints in
	// a single CREATE TABLE regardless of options.
	return []string{buildCreateTableStatement(ct.Table, cols, ct.PrimaryKey, ct.Constraints)}, nil
}

func (c H2V1) compileAlterTable(ctx context.Context, at command.AlterTable, intro introspect.Introspector, pl *plan.Plan) ([]string, error) {
	table := naming.ToSQLName(at.Table)
	var stmts []string

	for _, name := range at.DropConstraints {
		skip, err := skipDropConstraint(ctx, intro, at.Table, name)
		if err != nil {
			return nil, err
		}
		if skip {
			continue
		}
		if name == command.PrimaryKeySentinel {
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s DROP PRIMARY KEY", table))
		} else {
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s DROP FOREIGN KEY %s", table, naming.ToSQLName(name)))
		}
	}

	if len(at.DropColumns) > 0 {
		var kept []string
		for _, col := range at.DropColumns {
			skip, err := skipDropColumn(ctx, intro, at.Table, col)
			if err != nil {
				return nil, err
			}
			if !skip {
				kept = append(kept, col)
			}
		}
		for _, col := range kept {
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", table, naming.ToSQLName(col)))
		}
	}

	if len(at.AddColumns) > 0 {
		var frags []string
		for _, col := range at.AddColumns {
			skip, err := skipAddColumn(ctx, intro, pl, at.Table, col.Name)
			if err != nil {
				return nil, err
			}
			if skip {
				continue
			}
			frags = append(frags, columnFragment(h2SanitizeColumn(col, true)))
		}
		if len(frags) > 0 {
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD COLUMN (%s)", table, joinComma(frags)))
		}
	}

	for _, col := range at.ModifyColumns {
		sc := h2SanitizeColumn(col, true)
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s", table, columnFragment(sc)))
	}

	if len(at.PrimaryKey) > 0 {
		skip := false
		if !droppingPrimaryKey(at.DropConstraints) {
			var err error
			skip, err = skipAddPrimaryKey(ctx, intro, pl, at.Table)
			if err != nil {
				return nil, err
			}
		}
		if !skip {
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD PRIMARY KEY (%s)", table, naming.ToSQLList(at.PrimaryKey)))
		}
	}

	for _, con := range at.AddConstraints {
		skip, err := skipAddForeignKey(ctx, intro, pl, at.Table, con.Name)
		if err != nil {
			return nil, err
		}
		if skip {
			continue
		}
		drops, err := h2DuplicateForeignKeyDrops(ctx, intro, at.Table, con, at.DropConstraints, func(name string) string {
			return fmt.Sprintf("ALTER TABLE %s DROP FOREIGN KEY %s", table, naming.ToSQLName(name))
		})
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, drops...)
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD %s", table, constraintFragment(con)))
	}

	return stmts, nil
}
