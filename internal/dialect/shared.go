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

// columnFilter, when non-nil, reports whether a column must be excluded
// from a create-index's column list (used by the H2 non-indexable-type
// filter).
type columnFilter func(ctx context.Context, table, column string) (bool, error)

// compileCreateIndexGeneric implements the shared create-index algorithm:
// idempotency check, then "CREATE [UNIQUE] INDEX idx ON table (cols)", with
// an optional per-backend column filter.
func compileCreateIndexGeneric(ctx context.Context, ci command.CreateIndex, intro introspect.Introspector, pl *plan.Plan, filter columnFilter) ([]string, error) {
	skip, err := skipCreateIndex(ctx, intro, pl, ci.On, ci.Index)
	if err != nil {
		return nil, err
	}
	if skip {
		return nil, nil
	}

	cols := ci.Columns
	if filter != nil {
		kept := make([]string, 0, len(cols))
		for _, c := range cols {
			excluded, err := filter(ctx, ci.On, c)
			if err != nil {
				return nil, err
			}
			if !excluded {
				kept = append(kept, c)
			}
		}
		cols = kept
	}
	if len(cols) == 0 {
		slog.Warn("create-index: no indexable columns remain, skipping", slog.String("index", ci.Index), slog.String("table", ci.On))
		return nil, nil
	}

	unique := ""
	if ci.Unique {
		unique = "UNIQUE"
	}
	stmt := Build("CREATE").P(unique, "INDEX", naming.ToSQLName(ci.Index), "ON", naming.ToSQLName(ci.On)).Wrap(naming.ToSQLList(cols)).String()
	return []string{stmt}, nil
}

// compileDropIndexGeneric implements the shared drop-index algorithm.
func compileDropIndexGeneric(ctx context.Context, di command.DropIndex, intro introspect.Introspector) ([]string, error) {
	skip, err := skipDropIndex(ctx, intro, di.On, di.Index)
	if err != nil {
		return nil, err
	}
	if skip {
		return nil, nil
	}
	return []string{Build("DROP INDEX").P(naming.ToSQLName(di.Index), "ON", naming.ToSQLName(di.On)).String()}, nil
}

// compileInsertInto implements the shared insert-into algorithm: literal
// rows via `literal`, or a raw query, verbatim.
func compileInsertInto(ii command.InsertInto, literal func(any) string) ([]string, error) {
	if len(ii.Values) > 0 {
		rows := make([]string, len(ii.Values))
		for i, row := range ii.Values {
			vals := make([]string, len(row))
			for j, v := range row {
				vals[j] = literal(v)
			}
			rows[i] = "(" + strings.Join(vals, ",") + ")"
		}
		colsFrag := ""
		if len(ii.Columns) > 0 {
			colsFrag = " (" + naming.ToSQLList(ii.Columns) + ")"
		}
		stmt := fmt.Sprintf("INSERT INTO %s%s VALUES %s", naming.ToSQLName(ii.Table), colsFrag, strings.Join(rows, ","))
		return []string{stmt}, nil
	}
	if ii.Query != "" {
		return []string{fmt.Sprintf("INSERT INTO %s %s", naming.ToSQLName(ii.Table), ii.Query)}, nil
	}
	return nil, fmt.Errorf("%w: insert-into requires values or query", command.ErrValidation)
}

// compileUpdate implements the shared update algorithm: a dialect-specific
// override takes precedence over the generic query text.
func compileUpdate(u command.Update, dialectName string) ([]string, error) {
	if ov, ok := u.Overrides[dialectName]; ok && ov != "" {
		return []string{ov}, nil
	}
	if u.Query == "" {
		return nil, fmt.Errorf("%w: update requires query", command.ErrValidation)
	}
	return []string{u.Query}, nil
}

// quotedLiteral single-quotes strings and renders everything else with its
// default representation — the PostgreSQL/H2 literalization rule.
func quotedLiteral(v any) string {
	if s, ok := v.(string); ok {
		return "'" + strings.ReplaceAll(s, "'", "''") + "'"
	}
	return fmt.Sprintf("%v", v)
}
