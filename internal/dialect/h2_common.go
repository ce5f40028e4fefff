package dialect

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/ternmigrate/tern/internal/command"
	"github.com/ternmigrate/tern/internal/introspect"
)

// fkRefRE matches the "(col) REFERENCES other(col)" tail of a constraint
// ref-spec, used to auto-drop duplicate foreign keys on H2.
var fkRefRE = regexp.MustCompile(`\((\w+)\)\s+REFERENCES\s+(\w+)\((\w+)\)`)

// h2DuplicateForeignKeyDrops finds foreign keys already covering the same
// (fktable,fkcol,pktable,pkcol) tuple as con and returns drop statements for
// any of them not already scheduled for drop in this alter-table's own
// DropConstraints and not sharing con's name. A ref-spec that fails to
// parse is logged as an error and treated as "nothing to auto-drop" rather
// than failing the migration.
func h2DuplicateForeignKeyDrops(ctx context.Context, intro introspect.Introspector, table string, con command.Constraint, alreadyDropping []string, dropStmt func(name string) string) ([]string, error) {
	m := fkRefRE.FindStringSubmatch(con.Ref)
	if m == nil {
		slog.Error("h2: could not parse foreign key ref-spec, skipping auto-drop of duplicates",
			slog.String("table", table), slog.String("constraint", con.Name), slog.String("ref", con.Ref))
		return nil, nil
	}
	fkCol, pkTable, pkCol := m[1], m[2], m[3]
	matches, err := orNull(intro).MatchingForeignKeys(ctx, table, fkCol, pkTable, pkCol)
	if err != nil {
		return nil, err
	}
	scheduled := make(map[string]bool, len(alreadyDropping))
	for _, n := range alreadyDropping {
		scheduled[n] = true
	}
	var stmts []string
	for _, name := range matches {
		if name == con.Name || scheduled[name] {
			continue
		}
		stmts = append(stmts, dropStmt(name))
	}
	return stmts, nil
}

func h2InsertLiteral(v any) string {
	return quotedLiteral(v)
}

// droppingPrimaryKey reports whether the current alter-table's own
// drop-constraints list includes the primary-key sentinel.
func droppingPrimaryKey(dropConstraints []string) bool {
	for _, n := range dropConstraints {
		if n == command.PrimaryKeySentinel {
			return true
		}
	}
	return false
}
