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

// MySQL compiles commands for the MySQL backend. Column-spec tokens pass
// through verbatim, with no per-backend rewriting.
type MySQL struct{}

var _ Compiler = MySQL{}

func (MySQL) Name() string               { return "mysql" }
func (MySQL) VersionColumnType() string  { return "BIGINT" }

func (c MySQL) Compile(ctx context.Context, cmd command.Command, intro introspect.Introspector, pl *plan.Plan) ([]string, error) {
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
		return compileInsertInto(cc, mysqlLiteral)
	case command.Update:
		return compileUpdate(cc, "mysql")
	default:
		return nil, fmt.Errorf("mysql: %w: %T", command.ErrUnknownCommand, cmd)
	}
}

func (c MySQL) compileCreateTable(ctx context.Context, ct command.CreateTable, intro introspect.Introspector, pl *plan.Plan) ([]string, error) {
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

// buildCreateTableStatement emits the single-statement CREATE TABLE form
// used when no table-options force the placeholder expansion.
func buildCreateTableStatement(table string, cols []command.Column, pk []string, constraints []command.Constraint) string {
	var parts []string
	for _, col := range cols {
		parts = append(parts, columnFragment(col))
	}
	if len(pk) > 0 {
		parts = append(parts, fmt.Sprintf("PRIMARY KEY (%s)", naming.ToSQLList(pk)))
	}
	for _, con := range constraints {
		parts = append(parts, constraintFragment(con))
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", naming.ToSQLName(table), joinComma(parts))
}

func columnFragment(col command.Column) string {
	if len(col.Tokens) == 0 {
		return naming.ToSQLName(col.Name)
	}
	return naming.ToSQLName(col.Name) + " " + strings.Join(col.Tokens, " ")
}

func constraintFragment(con command.Constraint) string {
	return fmt.Sprintf("CONSTRAINT %s FOREIGN KEY %s", naming.ToSQLName(con.Name), con.Ref)
}

// placeholderExpand handles table-options, which MySQL can't set inline on
// CREATE TABLE when columns are also involved: it CREATEs the table with a
// single placeholder column, then ALTERs it into the requested shape one
// fragment at a time.
func (c MySQL) placeholderExpand(ctx context.Context, ct command.CreateTable) ([]string, error) {
	stmts := []string{fmt.Sprintf("CREATE TABLE %s (__placeholder int)", naming.ToSQLName(ct.Table))}
	stmts = append(stmts, mysqlOptionStatements(ct.Table, ct.TableOptions)...)
	for _, col := range ct.Columns {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", naming.ToSQLName(ct.Table), columnFragment(col)))
	}
	for _, con := range ct.Constraints {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD %s", naming.ToSQLName(ct.Table), constraintFragment(con)))
	}
	if len(ct.PrimaryKey) > 0 {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD PRIMARY KEY (%s)", naming.ToSQLName(ct.Table), naming.ToSQLList(ct.PrimaryKey)))
	}
	stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s DROP COLUMN __placeholder", naming.ToSQLName(ct.Table)))
	return stmts, nil
}

func mysqlOptionStatements(table string, opts []command.TableOption) []string {
	if len(opts) == 0 {
		return nil
	}
	frags := make([]string, len(opts))
	for i, o := range opts {
		frags[i] = fmt.Sprintf("%s=%s", o.Name, o.Value)
	}
	return []string{fmt.Sprintf("ALTER TABLE %s %s", naming.ToSQLName(table), strings.Join(frags, ", "))}
}

// compileAlterTable emits one ALTER TABLE statement per fragment, in a
// fixed category order: options, charset, old-constraints, removals,
// additions, modifications, primary-key-add, new-constraints. All
// table-options share one comma-joined statement; every other leaf fragment
// gets its own statement rather than combining same-category fragments into
// a single comma-joined ALTER.
func (c MySQL) compileAlterTable(ctx context.Context, at command.AlterTable, intro introspect.Introspector, pl *plan.Plan) ([]string, error) {
	table := naming.ToSQLName(at.Table)
	var stmts []string

	stmts = append(stmts, mysqlOptionStatements(at.Table, at.TableOptions)...)

	if at.Charset != nil {
		frag := "CONVERT TO CHARACTER SET " + at.Charset.Name
		if at.Charset.Collation != "" {
			frag += " COLLATE " + at.Charset.Collation
		}
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s %s", table, frag))
	}

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
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s MODIFY COLUMN %s", table, columnFragment(col)))
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

// mysqlLiteral renders a value literal MySQL-style: strings get
// double-quoted, which is non-standard SQL but what MySQL accepts.
func mysqlLiteral(v any) string {
	if s, ok := v.(string); ok {
		return `"` + s + `"`
	}
	return fmt.Sprintf("%v", v)
}
