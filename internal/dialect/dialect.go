// Package dialect implements the five backend-specific compilers that
// translate a declarative command (internal/command) into zero-or-more SQL
// statements, subject to idempotency under live-database introspection
// (internal/introspect) and intra-migration plan awareness (internal/plan).
package dialect

import (
	"context"

	"github.com/ternmigrate/tern/internal/command"
	"github.com/ternmigrate/tern/internal/introspect"
	"github.com/ternmigrate/tern/internal/plan"
)

// Compiler is the shared contract every backend implements. Compile returns
// the SQL statements a single command expands to; an empty (nil) result
// means "skip this command — a pre-existing state already satisfies it",
// and is not an error. A returned error aborts the migration.
type Compiler interface {
	Compile(ctx context.Context, cmd command.Command, intro introspect.Introspector, pl *plan.Plan) ([]string, error)

	// Name identifies the backend for logging and dialect-specific update
	// overrides (e.g. "h2", "sqlserver").
	Name() string

	// VersionColumnType is the SQL type of the version registry's
	// `created` column on this backend.
	VersionColumnType() string
}

// orNull substitutes introspect.Null for a nil introspector, so every
// compiler can treat "no live database" uniformly.
func orNull(i introspect.Introspector) introspect.Introspector {
	if i == nil {
		return introspect.Null{}
	}
	return i
}
