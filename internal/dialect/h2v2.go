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

// H2V2 compiles commands for H2 2.x. Identifiers are upper-cased and
// reserved words (VALUE, USER) backtick-quoted, unlike H2 1.x and every
// other backend.
type H2V2 struct{}

var _ Compiler = H2V2{}

func (H2V2) Name() string              { return "h2" }
func (H2V2) VersionColumnType() string { return "TIMESTAMP DEFAULT CURRENT_TIMESTAMP" }

func h2v2Quote(name string) string {
	return naming.NewH2v2Quoter().Quote(name, false)
}

func (c H2V2) Compile(ctx context.Context, cmd command.Command, intro introspect.Introspector, pl *plan.Plan) ([]string, error) {
	switch cc := cmd.(type) {
	case command.CreateTable:
		return c.compileCreateTable(ctx, cc, intro, pl)
	case command.DropTable:
		return []string{fmt.Sprintf("DROP TABLE %s", h2v2Quote(cc.Table))}, nil
	case command.AlterTable:
		return c.compileAlterTable(ctx, cc, intro, pl)
	case command.CreateIndex:
		return c.compileCreateIndex(ctx, cc, intro, pl)
	case command.DropIndex:
		return c.compileDropIndex(ctx, cc, intro)
	case command.InsertInto:
		return c.compileInsertInto(cc)
	case command.Update:
		return compileUpdate(cc, "h2")
	default:
		return nil, fmt.Errorf("h2v2: %w: %T", command.ErrUnknownCommand, cmd)
	}
}

func (c H2V2) columnFragment(col command.Column) string {
	sc := h2SanitizeColumn(col, false)
	if len(sc.Tokens) == 0 {
		return h2v2Quote(sc.Name)
	}
	return h2v2Quote(sc.Name) + " " + strings.Join(sc.Tokens, " ")
}

func (c H2V2) compileCreateTable(ctx context.Context, ct command.CreateTable, intro introspect.Introspector, pl *plan.Plan) ([]string, error) {
	skip, err := skipCreateTable(ctx, intro, pl, ct.Table)
	if err != nil {
		return nil, err
	}
	if skip {
		return nil, nil
	}
	var parts []string
	for _, col := range ct.Columns {
		parts = append(parts, c.columnFragment(col))
	}
	if len(ct.PrimaryKey) > 0 {
		quoted := make([]string, len(ct.PrimaryKey))
		for i, p := range ct.PrimaryKey {
			quoted[i] = h2v2Quote(p)
		}
		parts = append(parts, fmt.Sprintf("PRIMARY KEY (%s)", naming.ToSQLListRaw(quoted)))
	}
	for _, con := range ct.Constraints {
		parts = append(parts, fmt.Sprintf("CONSTRAINT %s FOREIGN KEY %s", h2v2Quote(con.Name), con.Ref))
	}
	return []string{fmt.Sprintf("CREATE TABLE %s (%s)", h2v2Quote(ct.Table), joinComma(parts))}, nil
}

func (c H2V2) compileAlterTable(ctx context.Context, at command.AlterTable, intro introspect.Introspector, pl *plan.Plan) ([]string, error) {
	table := h2v2Quote(at.Table)
	var stmts []string

	// H2 2.x accepts "IF EXISTS" on constraint drops, so the idempotency
	// check here is belt-and-suspenders rather than load-bearing.
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
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT IF EXISTS %s", table, h2v2Quote(name)))
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
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", table, h2v2Quote(col)))
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
			frags = append(frags, c.columnFragment(col))
		}
		if len(frags) > 0 {
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD COLUMN (%s)", table, joinComma(frags)))
		}
	}

	for _, col := range at.ModifyColumns {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s", table, c.columnFragment(col)))
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
			quoted := make([]string, len(at.PrimaryKey))
			for i, p := range at.PrimaryKey {
				quoted[i] = h2v2Quote(p)
			}
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD PRIMARY KEY (%s)", table, naming.ToSQLListRaw(quoted)))
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
			return fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT IF EXISTS %s", table, h2v2Quote(name))
		})
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, drops...)
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY %s", table, h2v2Quote(con.Name), con.Ref))
	}

	return stmts, nil
}

func (c H2V2) compileCreateIndex(ctx context.Context, ci command.CreateIndex, intro introspect.Introspector, pl *plan.Plan) ([]string, error) {
	skip, err := skipCreateIndex(ctx, intro, pl, ci.On, ci.Index)
	if err != nil {
		return nil, err
	}
	if skip {
		return nil, nil
	}
	filter := h2ColumnFilter(intro, pl, true)
	var cols []string
	for _, col := range ci.Columns {
		excluded, err := filter(ctx, ci.On, col)
		if err != nil {
			return nil, err
		}
		if !excluded {
			cols = append(cols, h2v2Quote(col))
		}
	}
	if len(cols) == 0 {
		slog.Warn("create-index: no indexable columns remain, skipping", slog.String("index", ci.Index), slog.String("table", ci.On))
		return nil, nil
	}
	unique := ""
	if ci.Unique {
		unique = "UNIQUE "
	}
	return []string{fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)", unique, h2v2Quote(ci.Index), h2v2Quote(ci.On), naming.ToSQLListRaw(cols))}, nil
}

func (c H2V2) compileDropIndex(ctx context.Context, di command.DropIndex, intro introspect.Introspector) ([]string, error) {
	skip, err := skipDropIndex(ctx, intro, di.On, di.Index)
	if err != nil {
		return nil, err
	}
	if skip {
		return nil, nil
	}
	return []string{fmt.Sprintf("DROP INDEX %s ON %s", h2v2Quote(di.Index), h2v2Quote(di.On))}, nil
}

func (c H2V2) compileInsertInto(ii command.InsertInto) ([]string, error) {
	return compileInsertInto(ii, h2InsertLiteral)
}
