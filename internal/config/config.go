// Package config loads tern's YAML configuration: the migration directory,
// version-table name, target database connection, and ambient CLI settings.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the effective configuration for one tern invocation.
type Config struct {
	MigrationDir string        `yaml:"migration-dir"`
	VersionTable string        `yaml:"version-table"`
	DB           DatabaseConfig `yaml:"db"`
	Color        bool          `yaml:"color"`
	Logging      LoggingConfig `yaml:"logging"`
}

// DatabaseConfig identifies the target backend and connection parameters.
// Database is used by mysql/postgresql/sqlserver; Schema is used by h2.
type DatabaseConfig struct {
	Subprotocol string `yaml:"subprotocol"` // mysql, postgresql, h2, sqlserver
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Database    string `yaml:"database"`
	Schema      string `yaml:"schema"`
	User        string `yaml:"user"`
	Password    string `yaml:"password"`
}

// LoggingConfig holds the logging settings cmd/tern passes to
// internal/logging. Only a Level of "debug" changes the level; any other
// value logs at info. Format is not read: file output is always JSON and
// stderr output is always text.
type LoggingConfig struct {
	Level    string `yaml:"level"`     // debug, info, warn, error
	Format   string `yaml:"format"`    // json, text (not read)
	File     string `yaml:"file"`      // rotated file sink path; stderr if empty
	MaxSizeMB int   `yaml:"max_size_mb"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		MigrationDir: "migrations",
		VersionTable: "schema_version",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from a YAML file, expanding environment variable
// references, then applies TERN_-prefixed environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		// #nosec G304 -- path is operator-supplied via --config
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("TERN_MIGRATION_DIR"); v != "" {
		c.MigrationDir = v
	}
	if v := os.Getenv("TERN_VERSION_TABLE"); v != "" {
		c.VersionTable = v
	}
	if v := os.Getenv("TERN_DB_SUBPROTOCOL"); v != "" {
		c.DB.Subprotocol = v
	}
	if v := os.Getenv("TERN_DB_HOST"); v != "" {
		c.DB.Host = v
	}
	if v := os.Getenv("TERN_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.DB.Port = port
		}
	}
	if v := os.Getenv("TERN_DB_DATABASE"); v != "" {
		c.DB.Database = v
	}
	if v := os.Getenv("TERN_DB_SCHEMA"); v != "" {
		c.DB.Schema = v
	}
	if v := os.Getenv("TERN_DB_USER"); v != "" {
		c.DB.User = v
	}
	if v := os.Getenv("TERN_DB_PASSWORD"); v != "" {
		c.DB.Password = v
	}
	if v := os.Getenv("TERN_COLOR"); v != "" {
		c.Color = strings.ToLower(v) == "true" || v == "1"
	}
	if v := os.Getenv("TERN_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("TERN_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("TERN_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
}

// Validate reports whether the configuration is complete enough to act on.
func (c *Config) Validate() error {
	if c.MigrationDir == "" {
		return fmt.Errorf("migration-dir is required")
	}
	if c.VersionTable == "" {
		return fmt.Errorf("version-table is required")
	}
	validBackends := map[string]bool{"mysql": true, "postgresql": true, "h2": true, "sqlserver": true}
	if !validBackends[c.DB.Subprotocol] {
		return fmt.Errorf("invalid db.subprotocol: %q", c.DB.Subprotocol)
	}
	return nil
}

// Redacted returns a copy of c with the database password replaced by a
// placeholder, used by `tern config` so secrets never reach stdout.
func (c *Config) Redacted() *Config {
	cp := *c
	if cp.DB.Password != "" {
		cp.DB.Password = "********"
	}
	return &cp
}

// DryRun reports whether TERN_DRYRUN is set to any non-empty value.
func DryRun() bool {
	return os.Getenv("TERN_DRYRUN") != ""
}
