// Package registry maps a configured db.subprotocol to the dialect compiler
// and live introspector pair that drive a migration. H2 is special-cased:
// the constructor resolves the H2 major version once against the live
// connection and caches the resolved compiler for the rest of the process's
// lifetime, rather than re-querying per operation.
package registry

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/ternmigrate/tern/internal/dialect"
	"github.com/ternmigrate/tern/internal/introspect"
)

// Backend bundles the compiler and introspector one configured connection
// resolves to.
type Backend struct {
	Compiler     dialect.Compiler
	Introspector introspect.Introspector
}

// Constructor builds a Backend for one live *sql.DB connection.
type Constructor func(ctx context.Context, db *sql.DB, database string) (Backend, error)

// constructors is the subprotocol -> migrator constructor mapping, populated
// at package init and changed afterwards only through Register.
var constructors = map[string]Constructor{
	"mysql": func(ctx context.Context, db *sql.DB, database string) (Backend, error) {
		return Backend{Compiler: dialect.MySQL{}, Introspector: introspect.MySQL{DB: db}}, nil
	},
	"postgresql": func(ctx context.Context, db *sql.DB, database string) (Backend, error) {
		return Backend{Compiler: dialect.PostgreSQL{}, Introspector: introspect.PostgreSQL{DB: db}}, nil
	},
	"sqlserver": func(ctx context.Context, db *sql.DB, database string) (Backend, error) {
		return Backend{Compiler: dialect.SQLServer{}, Introspector: introspect.SQLServer{DB: db, Database: database}}, nil
	},
	"h2": newH2Backend,
}

// New resolves the Backend for the configured subprotocol, returning
// ErrUnsupportedBackend if it names no registered constructor.
func New(ctx context.Context, subprotocol string, db *sql.DB, database string) (Backend, error) {
	ctor, ok := constructors[subprotocol]
	if !ok {
		return Backend{}, fmt.Errorf("%w: %q", ErrUnsupportedBackend, subprotocol)
	}
	return ctor(ctx, db, database)
}

// Register adds or overrides a subprotocol's constructor. Intended for
// startup-time extension only.
func Register(subprotocol string, ctor Constructor) {
	constructors[subprotocol] = ctor
}

// newH2Backend issues SELECT h2version() once, parses the major version,
// and delegates to the matching compiler/introspector pair.
func newH2Backend(ctx context.Context, db *sql.DB, database string) (Backend, error) {
	major, err := h2MajorVersion(ctx, db)
	if err != nil {
		return Backend{}, fmt.Errorf("h2: resolving version: %w", err)
	}
	if major >= 2 {
		return Backend{Compiler: dialect.H2V2{}, Introspector: introspect.H2V2{DB: db}}, nil
	}
	return Backend{Compiler: dialect.H2V1{}, Introspector: introspect.H2V1{DB: db}}, nil
}

func h2MajorVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version string
	if err := db.QueryRowContext(ctx, `SELECT h2version()`).Scan(&version); err != nil {
		return 0, err
	}
	major := version
	if i := strings.IndexByte(version, '.'); i >= 0 {
		major = version[:i]
	}
	n, err := strconv.Atoi(strings.TrimSpace(major))
	if err != nil {
		return 0, fmt.Errorf("unparseable h2version() result %q: %w", version, err)
	}
	return n, nil
}
