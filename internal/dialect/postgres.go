package dialect

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternmigrate/tern/internal/command"
	"github.com/ternmigrate/tern/internal/introspect"
	"github.com/ternmigrate/tern/internal/naming"
	"github.com/ternmigrate/tern/internal/plan"
)

// PostgreSQL compiles commands for the PostgreSQL backend. Column-spec
// tokens pass through verbatim, same as MySQL.
type PostgreSQL struct{}

var _ Compiler = PostgreSQL{}

func (PostgreSQL) Name() string              { return "postgresql" }
func (PostgreSQL) VersionColumnType() string { return "TIMESTAMP" }

func (c PostgreSQL) Compile(ctx context.Context, cmd command.Command, intro introspect.Introspector, pl *plan.Plan) ([]string, error) {
	switch cc := cmd.(type) {
	case command.CreateTable:
		return c.compileCreateTable(ctx, cc, intro, pl)
	case command.DropTable:
		return []string{fmt.Sprintf("DROP TABLE %s", naming.ToSQLName(cc.Table))}, nil
	case command.AlterTable:
		return c.compileAlterTable(ctx, cc, intro, pl)
	case command.CreateIndex:
		return compileCreateIndexGeneric(ctx, cc, intro, pl, nil)
	case command.DropIndex:
		return compileDropIndexGeneric(ctx, cc, intro)
	case command.InsertInto:
		return compileInsertInto(cc, quotedLiteral)
	case command.Update:
		return compileUpdate(cc, "postgresql")
	default:
		return nil, fmt.Errorf("postgresql: %w: %T", command.ErrUnknownCommand, cmd)
	}
}

func (c PostgreSQL) compileCreateTable(ctx context.Context, ct command.CreateTable, intro introspect.Introspector, pl *plan.Plan) ([]string, error) {
	skip, err := skipCreateTable(ctx, intro, pl, ct.Table)
	if err != nil {
		return nil, err
	}
	if skip {
		return nil, nil
	}
	if len(ct.TableOptions) > 0 {
		return c.placeholderExpand(ctx, ct)
	}
	return []string{buildCreateTableStatement(ct.Table, ct.Columns, ct.PrimaryKey, ct.Constraints)}, nil
}

// placeholderExpand: table-options are unsupported on PostgreSQL, so they
// are dropped silently rather than emitted — the placeholder rewrite here
// exists only to keep columns, PK and constraints flowing through the same
// uniform ALTER-based path the other backends use when options are present.
func (c PostgreSQL) placeholderExpand(ctx context.Context, ct command.CreateTable) ([]string, error) {
	table := naming.ToSQLName(ct.Table)
	stmts := []string{fmt.Sprintf("CREATE TABLE %s (__placeholder int)", table)}
	for _, col := range ct.Columns {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", table, columnFragment(col)))
	}
	for _, con := range ct.Constraints {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD %s", table, constraintFragment(con)))
	}
	if len(ct.PrimaryKey) > 0 {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD PRIMARY KEY (%s)", table, naming.ToSQLList(ct.PrimaryKey)))
	}
	stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s DROP COLUMN __placeholder", table))
	return stmts, nil
}

// compileAlterTable emits one ALTER TABLE statement per fragment, in a
// fixed category order: charset (unsupported, dropped), old-constraints,
// removals, additions, modifications, primary-key-add, new-constraints.
// Table-options are unsupported on PostgreSQL.
func (c PostgreSQL) compileAlterTable(ctx context.Context, at command.AlterTable, intro introspect.Introspector, pl *plan.Plan) ([]string, error) {
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
			pkName, err := orNull(intro).PrimaryKeyName(ctx, at.Table)
			if err != nil {
				return nil, err
			}
			if pkName == "" {
				pkName = at.Table + "_pkey"
			}
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", table, naming.ToSQLName(pkName)))
		} else {
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", table, naming.ToSQLName(name)))
		}
	}

	for _, col := range at.DropColumns {
		skip, err := skipDropColumn(ctx, intro, at.Table, col)
		if err != nil {
			return nil, err
		}
		if skip {
			continue
		}
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", table, naming.ToSQLName(col)))
	}

	for _, col := range at.AddColumns {
		skip, err := skipAddColumn(ctx, intro, pl, at.Table, col.Name)
		if err != nil {
			return nil, err
		}
		if skip {
			continue
		}
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", table, columnFragment(col)))
	}

	for _, col := range at.ModifyColumns {
		stmts = append(stmts, postgresModifyColumnStatements(table, col)...)
	}

	if len(at.PrimaryKey) > 0 {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD PRIMARY KEY (%s)", table, naming.ToSQLList(at.PrimaryKey)))
	}

	for _, con := range at.AddConstraints {
		skip, err := skipAddForeignKey(ctx, intro, pl, at.Table, con.Name)
		if err != nil {
			return nil, err
		}
		if skip {
			continue
		}
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD %s", table, constraintFragment(con)))
	}

	return stmts, nil
}

// postgresModifyColumnStatements splits a column's token list into the
// separate ALTER COLUMN ... TYPE / SET NOT NULL / SET DEFAULT statements
// PostgreSQL requires (unlike MySQL's single MODIFY COLUMN).
func postgresModifyColumnStatements(table string, col command.Column) []string {
	name := naming.ToSQLName(col.Name)
	var stmts []string
	for i, tok := range col.Tokens {
		switch {
		case i == 0:
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s", table, name, tok))
		case strings.EqualFold(tok, "NOT NULL"):
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET NOT NULL", table, name))
		case strings.HasPrefix(strings.ToUpper(tok), "DEFAULT"):
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET %s", table, name, tok))
		}
	}
	return stmts
}
