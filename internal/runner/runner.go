// Package runner ties the dialect compiler, live introspector, plan
// recorder, SQL executor and version registry together to apply or roll
// back one or more migrations.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/ternmigrate/tern/internal/command"
	"github.com/ternmigrate/tern/internal/dialect"
	"github.com/ternmigrate/tern/internal/executor"
	"github.com/ternmigrate/tern/internal/introspect"
	"github.com/ternmigrate/tern/internal/metrics"
	"github.com/ternmigrate/tern/internal/migrationfile"
	"github.com/ternmigrate/tern/internal/plan"
	"github.com/ternmigrate/tern/internal/versionreg"
)

// Runner applies and rolls back migrations for one configured backend.
type Runner struct {
	Compiler     dialect.Compiler
	Introspector introspect.Introspector
	Executor     *executor.Executor
	Registry     *versionreg.Registry
	// Metrics, if set, is told about every command compiled so /metrics can
	// break down compile counts by dialect and command kind. Nil is valid
	// and simply disables that counter.
	Metrics *metrics.Metrics
}

// New returns a Runner bound to one backend's compiler/introspector pair.
// m may be nil.
func New(compiler dialect.Compiler, intro introspect.Introspector, exec *executor.Executor, reg *versionreg.Registry, m *metrics.Metrics) *Runner {
	return &Runner{Compiler: compiler, Introspector: intro, Executor: exec, Registry: reg, Metrics: m}
}

// Apply runs one migration's up sequence: compile, execute and record.
func (r *Runner) Apply(ctx context.Context, f migrationfile.File) error {
	return r.run(ctx, f.Up, f.VersionID, true)
}

// Rollback runs one migration's down sequence and forgets its version.
func (r *Runner) Rollback(ctx context.Context, f migrationfile.File) error {
	return r.run(ctx, f.Down, f.VersionID, false)
}

func (r *Runner) run(ctx context.Context, cmds []command.Command, version string, recordOnSuccess bool) error {
	pl := plan.New()
	for _, cmd := range cmds {
		stmts, err := r.Compiler.Compile(ctx, cmd, r.Introspector, pl)
		if err != nil {
			return fmt.Errorf("compile %s: %w", cmd.Kind(), err)
		}
		if r.Metrics != nil {
			r.Metrics.RecordCompile(r.Compiler.Name(), string(cmd.Kind()))
		}
		pl.Append(cmd)
		if len(stmts) == 0 {
			slog.Info("skip: idempotency check satisfied, nothing to do", slog.String("kind", string(cmd.Kind())))
			continue
		}
		if err := r.Executor.ExecAll(ctx, stmts); err != nil {
			return fmt.Errorf("execute %s: %w", cmd.Kind(), err)
		}
	}

	if recordOnSuccess {
		return r.Registry.Record(ctx, version, timestampExpr(r.Compiler.VersionColumnType(), time.Now()))
	}
	return r.Registry.Forget(ctx, version)
}

// ApplyAll applies pending migrations in ascending order. Without only, a
// migration is pending when its version-id is strictly greater than the
// highest applied one. With only, the candidate set is instead the missing
// migrations (on disk but unrecorded, possibly predating the highest
// applied version after a branch merge) filtered to the named version-ids.
func (r *Runner) ApplyAll(ctx context.Context, files []migrationfile.File, applied []string, only map[string]bool) error {
	recorded := make(map[string]bool, len(applied))
	for _, v := range applied {
		recorded[v] = true
	}
	var current string
	if len(applied) > 0 {
		current = applied[len(applied)-1]
	}
	for _, f := range files {
		if len(only) > 0 {
			if !only[f.VersionID] || recorded[f.VersionID] {
				continue
			}
		} else if f.VersionID <= current {
			continue
		}
		if err := r.Apply(ctx, f); err != nil {
			return fmt.Errorf("version %s: %w", f.VersionID, err)
		}
	}
	return nil
}

// Missing returns the version-ids present on disk but not recorded, in
// ascending order.
func Missing(files []migrationfile.File, applied []string) []string {
	recorded := make(map[string]bool, len(applied))
	for _, v := range applied {
		recorded[v] = true
	}
	var missing []string
	for _, f := range files {
		if !recorded[f.VersionID] {
			missing = append(missing, f.VersionID)
		}
	}
	return missing
}

// timestampExpr renders "now" as a dialect-appropriate SQL literal: a Unix
// epoch integer for BIGINT "created" columns (MySQL, H2 v1), the
// CURRENT_TIMESTAMP niladic function everywhere else (PostgreSQL, SQL Server
// and H2 v2).
func timestampExpr(columnType string, now time.Time) string {
	if columnType == "BIGINT" {
		return strconv.FormatInt(now.Unix(), 10)
	}
	return "CURRENT_TIMESTAMP"
}
