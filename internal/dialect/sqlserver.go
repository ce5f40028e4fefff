package dialect

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ternmigrate/tern/internal/command"
	"github.com/ternmigrate/tern/internal/introspect"
	"github.com/ternmigrate/tern/internal/naming"
	"github.com/ternmigrate/tern/internal/plan"
)

// SQLServer compiles commands for Microsoft SQL Server. Reserved words
// (public, user) are bracket-quoted; column specs pass through the
// token-rewrite table and the ENUM/VARBINARY pattern rewrites in tokens.go.
type SQLServer struct{}

var _ Compiler = SQLServer{}

func (SQLServer) Name() string              { return "sqlserver" }
func (SQLServer) VersionColumnType() string { return "DATETIME" }

func sqlServerQuote(name string) string {
	return naming.NewSQLServerQuoter().Quote(name, false)
}

func (c SQLServer) Compile(ctx context.Context, cmd command.Command, intro introspect.Introspector, pl *plan.Plan) ([]string, error) {
	switch cc := cmd.(type) {
	case command.CreateTable:
		return c.compileCreateTable(ctx, cc, intro, pl)
	case command.DropTable:
		return []string{fmt.Sprintf("DROP TABLE %s", sqlServerQuote(cc.Table))}, nil
	case command.AlterTable:
		return c.compileAlterTable(ctx, cc, intro, pl)
	case command.CreateIndex:
		return c.compileCreateIndex(ctx, cc, intro, pl)
	case command.DropIndex:
		return c.compileDropIndex(ctx, cc, intro)
	case command.InsertInto:
		return compileInsertInto(cc, quotedLiteral)
	case command.Update:
		return compileUpdate(cc, "sqlserver")
	default:
		return nil, fmt.Errorf("sqlserver: %w: %T", command.ErrUnknownCommand, cmd)
	}
}

func (c SQLServer) columnFragment(col command.Column) string {
	rw := sqlServerRewriteColumn(col)
	if len(rw.Tokens) == 0 {
		return sqlServerQuote(rw.Name)
	}
	return sqlServerQuote(rw.Name) + " " + strings.Join(rw.Tokens, " ")
}

func sqlServerOptionFragments(opts []command.TableOption) []string {
	frags := make([]string, len(opts))
	for i, o := range opts {
		frags[i] = fmt.Sprintf("%s=%s", o.Name, o.Value)
	}
	return frags
}

func (c SQLServer) compileCreateTable(ctx context.Context, ct command.CreateTable, intro introspect.Introspector, pl *plan.Plan) ([]string, error) {
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
	var parts []string
	for _, col := range ct.Columns {
		parts = append(parts, c.columnFragment(col))
	}
	if len(ct.PrimaryKey) > 0 {
		quoted := make([]string, len(ct.PrimaryKey))
		for i, p := range ct.PrimaryKey {
			quoted[i] = sqlServerQuote(p)
		}
		parts = append(parts, fmt.Sprintf("PRIMARY KEY (%s)", naming.ToSQLListRaw(quoted)))
	}
	for _, con := range ct.Constraints {
		parts = append(parts, fmt.Sprintf("CONSTRAINT %s FOREIGN KEY %s", sqlServerQuote(con.Name), con.Ref))
	}
	return []string{fmt.Sprintf("CREATE TABLE %s (%s)", sqlServerQuote(ct.Table), joinComma(parts))}, nil
}

// placeholderExpand mirrors the MySQL/PostgreSQL placeholder expansion but
// groups adds into the single statement shape SQL Server's alter-table uses.
func (c SQLServer) placeholderExpand(ctx context.Context, ct command.CreateTable) ([]string, error) {
	table := sqlServerQuote(ct.Table)
	stmts := []string{fmt.Sprintf("CREATE TABLE %s (__placeholder int)", table)}

	var addFrags []string
	for _, col := range ct.Columns {
		addFrags = append(addFrags, "COLUMN "+c.columnFragment(col))
	}
	for _, con := range ct.Constraints {
		addFrags = append(addFrags, fmt.Sprintf("CONSTRAINT %s FOREIGN KEY %s", sqlServerQuote(con.Name), con.Ref))
	}
	if len(addFrags) > 0 {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD %s", table, joinComma(addFrags)))
	}

	if len(ct.PrimaryKey) > 0 {
		quoted := make([]string, len(ct.PrimaryKey))
		for i, p := range ct.PrimaryKey {
			quoted[i] = sqlServerQuote(p)
		}
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD PRIMARY KEY (%s)", table, naming.ToSQLListRaw(quoted)))
	}

	if len(ct.TableOptions) > 0 {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s %s", table, joinComma(sqlServerOptionFragments(ct.TableOptions))))
	}

	stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s DROP COLUMN __placeholder", table))
	return stmts, nil
}

// compileAlterTable groups changes into at most four statements: one DROP
// (constraints and columns as comma-separated clauses), one ADD (columns and
// constraints), one ALTER carrying modify-columns followed by primary-key-add,
// and finally one statement for table-options, in that order, each present
// only if non-empty.
func (c SQLServer) compileAlterTable(ctx context.Context, at command.AlterTable, intro introspect.Introspector, pl *plan.Plan) ([]string, error) {
	table := sqlServerQuote(at.Table)
	var stmts []string

	var dropFrags []string
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
				pkName = at.Table + "_pk"
			}
			dropFrags = append(dropFrags, "CONSTRAINT "+sqlServerQuote(pkName))
		} else {
			dropFrags = append(dropFrags, "CONSTRAINT "+sqlServerQuote(name))
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
		dropFrags = append(dropFrags, "COLUMN "+sqlServerQuote(col))
	}
	if len(dropFrags) > 0 {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s DROP %s", table, joinComma(dropFrags)))
	}

	var addFrags []string
	for _, col := range at.AddColumns {
		skip, err := skipAddColumn(ctx, intro, pl, at.Table, col.Name)
		if err != nil {
			return nil, err
		}
		if skip {
			continue
		}
		addFrags = append(addFrags, "COLUMN "+c.columnFragment(col))
	}
	for _, con := range at.AddConstraints {
		skip, err := skipAddForeignKey(ctx, intro, pl, at.Table, con.Name)
		if err != nil {
			return nil, err
		}
		if skip {
			continue
		}
		addFrags = append(addFrags, fmt.Sprintf("CONSTRAINT %s FOREIGN KEY %s", sqlServerQuote(con.Name), con.Ref))
	}
	if len(addFrags) > 0 {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD %s", table, joinComma(addFrags)))
	}

	var tailFrags []string
	for _, col := range at.ModifyColumns {
		tailFrags = append(tailFrags, "COLUMN "+c.columnFragment(col))
	}
	if len(at.PrimaryKey) > 0 {
		quoted := make([]string, len(at.PrimaryKey))
		for i, p := range at.PrimaryKey {
			quoted[i] = sqlServerQuote(p)
		}
		tailFrags = append(tailFrags, fmt.Sprintf("PRIMARY KEY (%s)", naming.ToSQLListRaw(quoted)))
	}
	if len(tailFrags) > 0 {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER %s", table, joinComma(tailFrags)))
	}
	if len(at.TableOptions) > 0 {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s %s", table, joinComma(sqlServerOptionFragments(at.TableOptions))))
	}

	return stmts, nil
}

func (c SQLServer) compileCreateIndex(ctx context.Context, ci command.CreateIndex, intro introspect.Introspector, pl *plan.Plan) ([]string, error) {
	skip, err := skipCreateIndex(ctx, intro, pl, ci.On, ci.Index)
	if err != nil {
		return nil, err
	}
	if skip {
		return nil, nil
	}
	if len(ci.Columns) == 0 {
		slog.Warn("create-index: no indexable columns remain, skipping", slog.String("index", ci.Index), slog.String("table", ci.On))
		return nil, nil
	}
	quoted := make([]string, len(ci.Columns))
	for i, col := range ci.Columns {
		quoted[i] = sqlServerQuote(col)
	}
	unique := ""
	if ci.Unique {
		unique = "UNIQUE "
	}
	return []string{fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)", unique, sqlServerQuote(ci.Index), sqlServerQuote(ci.On), naming.ToSQLListRaw(quoted))}, nil
}

func (c SQLServer) compileDropIndex(ctx context.Context, di command.DropIndex, intro introspect.Introspector) ([]string, error) {
	skip, err := skipDropIndex(ctx, intro, di.On, di.Index)
	if err != nil {
		return nil, err
	}
	if skip {
		return nil, nil
	}
	return []string{fmt.Sprintf("DROP INDEX %s ON %s", sqlServerQuote(di.Index), sqlServerQuote(di.On))}, nil
}
