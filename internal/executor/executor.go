// Package executor runs compiled SQL statements against the live database,
// honoring TERN_DRYRUN and stripping driver error prefixes for readability.
package executor

import (
	"context"
	"database/sql"
	"log/slog"
	"regexp"
	"time"

	"github.com/ternmigrate/tern/internal/config"
)

// Executor runs statements against one *sql.DB, optionally suppressing
// Exec calls under dry-run.
type Executor struct {
	DB      *sql.DB
	DryRun  bool
	Dialect string
	// OnStatement, if set, is called after every statement (success or
	// failure) with its latency — wired to internal/metrics by cmd/tern.
	OnStatement func(dialect string, duration time.Duration, err error)
}

// New returns an Executor; TERN_DRYRUN is read once at construction time,
// not re-checked per statement.
func New(db *sql.DB, dialect string) *Executor {
	return &Executor{DB: db, Dialect: dialect, DryRun: config.DryRun()}
}

// Exec runs one statement. Under dry-run, it logs the statement and returns
// immediately without touching the driver.
func (e *Executor) Exec(ctx context.Context, stmt string) error {
	if e.DryRun {
		slog.Info("dry-run: skipping statement", slog.String("sql", stmt))
		return nil
	}
	start := time.Now()
	_, err := e.DB.ExecContext(ctx, stmt)
	duration := time.Since(start)
	if e.OnStatement != nil {
		e.OnStatement(e.Dialect, duration, err)
	}
	if err != nil {
		return CleanDriverError(err)
	}
	slog.Debug("executed statement", slog.String("sql", stmt), slog.Duration("duration", duration))
	return nil
}

// ExecAll runs statements in order, stopping at the first failure.
func (e *Executor) ExecAll(ctx context.Context, stmts []string) error {
	for _, stmt := range stmts {
		if err := e.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

var driverErrorPrefixRE = regexp.MustCompile(`^(FATAL|ERROR):\s*`)

// CleanDriverError strips a leading "FATAL: "/"ERROR: " prefix MySQL and
// PostgreSQL drivers attach to batch-update error messages.
func CleanDriverError(err error) error {
	if err == nil {
		return nil
	}
	msg := driverErrorPrefixRE.ReplaceAllString(err.Error(), "")
	if msg == err.Error() {
		return err
	}
	return &driverError{msg: msg, cause: err}
}

type driverError struct {
	msg   string
	cause error
}

func (e *driverError) Error() string { return e.msg }
func (e *driverError) Unwrap() error { return e.cause }
