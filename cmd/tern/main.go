// Package main is the entry point for tern, the declarative SQL
// schema-migration CLI.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/microsoft/go-mssqldb"

	"github.com/ternmigrate/tern/internal/config"
	"github.com/ternmigrate/tern/internal/dsn"
	"github.com/ternmigrate/tern/internal/executor"
	"github.com/ternmigrate/tern/internal/introspect"
	"github.com/ternmigrate/tern/internal/logging"
	"github.com/ternmigrate/tern/internal/metrics"
	"github.com/ternmigrate/tern/internal/migrationfile"
	"github.com/ternmigrate/tern/internal/registry"
	"github.com/ternmigrate/tern/internal/runner"
	"github.com/ternmigrate/tern/internal/statusserver"
	"github.com/ternmigrate/tern/internal/versionreg"
	"github.com/ternmigrate/tern/internal/watch"
)

var (
	version = "dev"
	commit  = "unknown"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:     "tern",
		Short:   "A declarative, backend-independent SQL schema-migration tool",
		Long:    `tern applies and rolls back versioned schema migrations, expressed as dialect-independent YAML commands, against PostgreSQL, MySQL, SQL Server and H2.`,
		Version: fmt.Sprintf("%s (%s)", version, commit),
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "tern.yaml", "Path to tern configuration file")

	rootCmd.AddCommand(
		newInitCmd(),
		newMigrateCmd(),
		newRollbackCmd(),
		newResetCmd(),
		newVersionCmd(),
		newVersionsCmd(),
		newMissingCmd(),
		newNewCmd(),
		newConfigCmd(),
		newWatchCmd(),
		newServeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

// env bundles the collaborators one CLI invocation needs, built once per
// command from the loaded configuration.
type env struct {
	cfg     *config.Config
	db      *sql.DB
	backend registry.Backend
	reg     *versionreg.Registry
	exec    *executor.Executor
	run     *runner.Runner
	metrics *metrics.Metrics
}

func newEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logging.New(logging.Config{
		FilePath:  cfg.Logging.File,
		MaxSizeMB: cfg.Logging.MaxSizeMB,
		Debug:     strings.EqualFold(cfg.Logging.Level, "debug"),
		Color:     cfg.Color,
	})

	driverName, err := dsn.Driver(cfg.DB.Subprotocol)
	if err != nil {
		return nil, err
	}
	source, err := dsn.Build(cfg.DB)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driverName, source)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	database := cfg.DB.Database
	if cfg.DB.Subprotocol == "h2" && cfg.DB.Schema != "" {
		database = cfg.DB.Schema
	}
	backend, err := registry.New(ctx, cfg.DB.Subprotocol, db, database)
	if err != nil {
		db.Close()
		return nil, err
	}

	m := metrics.New()
	reg := versionreg.New(db, cfg.VersionTable, backend.Compiler.VersionColumnType())
	exec := executor.New(db, backend.Compiler.Name())
	exec.OnStatement = m.RecordStatement

	return &env{
		cfg:     cfg,
		db:      db,
		backend: backend,
		reg:     reg,
		exec:    exec,
		run:     runner.New(backend.Compiler, backend.Introspector, exec, reg, m),
		metrics: m,
	}, nil
}

func (e *env) Close() {
	if e.db != nil {
		e.db.Close()
	}
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the target database and version-tracking table if they do not already exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if err := ensureDatabase(ctx, cfg.DB); err != nil {
				return fmt.Errorf("init: %w", err)
			}

			e, err := newEnv(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			exists, err := e.reg.Exists(ctx)
			if err != nil {
				return err
			}
			if exists {
				slog.Info("version table already exists", slog.String("table", e.cfg.VersionTable))
				return nil
			}
			if err := e.exec.Exec(ctx, e.reg.CreateTableSQL()); err != nil {
				return fmt.Errorf("init: %w", err)
			}
			slog.Info("created version table", slog.String("table", e.cfg.VersionTable))
			return nil
		},
	}
}

// ensureDatabase creates the target database itself on backends that
// require it to exist before a connection to it can be opened. SQL Server
// rejects a connection string naming a nonexistent initial catalog, so this
// opens a separate connection scoped to the "master" database, checks
// sys.databases, and issues CREATE DATABASE if it's missing. Other backends
// either connect without a database (H2) or create it as part of
// provisioning outside tern's scope, so this is a no-op for them.
func ensureDatabase(ctx context.Context, db config.DatabaseConfig) error {
	if db.Subprotocol != "sqlserver" {
		return nil
	}

	driverName, err := dsn.Driver(db.Subprotocol)
	if err != nil {
		return err
	}
	admin := db
	admin.Database = "master"
	source, err := dsn.Build(admin)
	if err != nil {
		return err
	}
	conn, err := sql.Open(driverName, source)
	if err != nil {
		return fmt.Errorf("open master database: %w", err)
	}
	defer conn.Close()

	exists, err := introspect.DatabaseExists(ctx, conn, db.Database)
	if err != nil {
		return fmt.Errorf("checking database %q: %w", db.Database, err)
	}
	if exists {
		return nil
	}
	if _, err := conn.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE [%s]", db.Database)); err != nil {
		return fmt.Errorf("creating database %q: %w", db.Database, err)
	}
	slog.Info("created database", slog.String("database", db.Database))
	return nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [only-versions]",
		Short: "Apply pending migrations",
		Long:  `Applies every migration strictly after the current version. If only-versions is given (comma/space/semicolon-separated), only the named version-ids that are not yet recorded are applied, including any older than the current version.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := newEnv(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			files, err := migrationfile.Discover(e.cfg.MigrationDir)
			if err != nil {
				return err
			}
			applied, err := e.reg.Applied(ctx)
			if err != nil {
				return err
			}

			var only map[string]bool
			if len(args) == 1 {
				only = parseVersionList(args[0])
			}

			start := time.Now()
			applyErr := e.run.ApplyAll(ctx, files, applied, only)
			e.metrics.RecordMigration(e.backend.Compiler.Name(), applyErr, time.Since(start))
			if applyErr != nil {
				return applyErr
			}
			slog.Info("migrate: up to date")
			return nil
		},
	}
}

func newRollbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rollback",
		Short: "Run the down program of the newest-applied migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := newEnv(ctx)
			if err != nil {
				return err
			}
			defer e.Close()
			return rollbackOne(ctx, e)
		},
	}
}

func rollbackOne(ctx context.Context, e *env) error {
	current, err := e.reg.Current(ctx)
	if err != nil {
		return err
	}
	if current == "" {
		slog.Info("rollback: no migrations applied")
		return nil
	}
	files, err := migrationfile.Discover(e.cfg.MigrationDir)
	if err != nil {
		return err
	}
	var target *migrationfile.File
	for i := range files {
		if files[i].VersionID == current {
			target = &files[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("rollback: no migration file found for applied version %s", current)
	}

	start := time.Now()
	err = e.run.Rollback(ctx, *target)
	e.metrics.RecordRollback(e.backend.Compiler.Name(), err, time.Since(start))
	if err != nil {
		return fmt.Errorf("rollback %s: %w", current, err)
	}
	slog.Info("rolled back", slog.String("version", current))
	return nil
}

func newResetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Roll back every applied migration, in reverse order",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				fmt.Print("This rolls back every applied migration. Continue? [y/N] ")
				var reply string
				fmt.Scanln(&reply)
				if strings.ToLower(strings.TrimSpace(reply)) != "y" {
					slog.Info("reset: aborted")
					return nil
				}
			}
			ctx := cmd.Context()
			e, err := newEnv(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			for {
				current, err := e.reg.Current(ctx)
				if err != nil {
					return err
				}
				if current == "" {
					break
				}
				if err := rollbackOne(ctx, e); err != nil {
					return err
				}
			}
			slog.Info("reset: complete")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the highest recorded version",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := newEnv(ctx)
			if err != nil {
				return err
			}
			defer e.Close()
			current, err := e.reg.Current(ctx)
			if err != nil {
				return err
			}
			if current == "" {
				fmt.Println("(none)")
				return nil
			}
			fmt.Println(current)
			return nil
		},
	}
}

func newVersionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "versions",
		Short: "Print every recorded version",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := newEnv(ctx)
			if err != nil {
				return err
			}
			defer e.Close()
			versions, err := e.reg.Applied(ctx)
			if err != nil {
				return err
			}
			for _, v := range versions {
				fmt.Println(v)
			}
			return nil
		},
	}
}

func newMissingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "missing",
		Short: "Print versions present on disk but not yet recorded",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := newEnv(ctx)
			if err != nil {
				return err
			}
			defer e.Close()
			files, err := migrationfile.Discover(e.cfg.MigrationDir)
			if err != nil {
				return err
			}
			applied, err := e.reg.Applied(ctx)
			if err != nil {
				return err
			}
			for _, v := range runner.Missing(files, applied) {
				fmt.Println(v)
			}
			return nil
		},
	}
}

func newNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new <name>",
		Short: "Create a new timestamped migration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			path, err := migrationfile.New(cfg.MigrationDir, args[0], time.Now())
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration, with the password redacted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(os.Stdout)
			defer enc.Close()
			return enc.Encode(cfg.Redacted())
		},
	}
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the migration directory and re-validate files on save",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			w, err := watch.New(cfg.MigrationDir)
			if err != nil {
				return err
			}
			defer w.Close()

			slog.Info("watch: watching for changes", slog.String("dir", cfg.MigrationDir))
			w.Run(func() {
				if _, err := migrationfile.Discover(cfg.MigrationDir); err != nil {
					slog.Error("watch: validation failed", slog.String("error", err.Error()))
					return
				}
				slog.Info("watch: migrations valid")
			})
			return nil
		},
	}
}

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a read-only HTTP status/health/metrics endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := newEnv(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			s := statusserver.New(addr, version, e.metrics, slog.Default())
			s.Ready = func() error { return e.db.PingContext(ctx) }
			s.CurrentVersion = e.reg.Current
			return s.Start()
		},
	}
	cmd.Flags().StringVar(&addr, "listen", ":9090", "Address to listen on")
	return cmd
}

// parseVersionList splits a comma/space/semicolon-separated only-versions
// argument into a membership set.
func parseVersionList(s string) map[string]bool {
	set := make(map[string]bool)
	for _, field := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == ' '
	}) {
		if field != "" {
			set[field] = true
		}
	}
	return set
}
