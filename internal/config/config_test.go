package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "migrations", cfg.MigrationDir)
	assert.Equal(t, "schema_version", cfg.VersionTable)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{"valid default with subprotocol", &Config{MigrationDir: "m", VersionTable: "v", DB: DatabaseConfig{Subprotocol: "mysql"}}, false},
		{"missing migration-dir", &Config{VersionTable: "v", DB: DatabaseConfig{Subprotocol: "mysql"}}, true},
		{"missing version-table", &Config{MigrationDir: "m", DB: DatabaseConfig{Subprotocol: "mysql"}}, true},
		{"unsupported backend", &Config{MigrationDir: "m", VersionTable: "v", DB: DatabaseConfig{Subprotocol: "oracle"}}, true},
		{"valid h2", &Config{MigrationDir: "m", VersionTable: "v", DB: DatabaseConfig{Subprotocol: "h2"}}, false},
		{"valid sqlserver", &Config{MigrationDir: "m", VersionTable: "v", DB: DatabaseConfig{Subprotocol: "sqlserver"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_Redacted(t *testing.T) {
	cfg := &Config{DB: DatabaseConfig{Password: "hunter2"}}
	red := cfg.Redacted()
	assert.Equal(t, "********", red.DB.Password)
	assert.Equal(t, "hunter2", cfg.DB.Password)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TERN_MIGRATION_DIR", "/tmp/mig")
	t.Setenv("TERN_DB_SUBPROTOCOL", "postgresql")
	t.Setenv("TERN_DB_PORT", "5433")
	t.Setenv("TERN_COLOR", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/mig", cfg.MigrationDir)
	assert.Equal(t, "postgresql", cfg.DB.Subprotocol)
	assert.Equal(t, 5433, cfg.DB.Port)
	assert.True(t, cfg.Color)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tern.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
migration-dir: db/migrations
version-table: schema_migrations
db:
  subprotocol: mysql
  host: localhost
  port: 3306
  database: app
  user: root
  password: secret
color: true
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "db/migrations", cfg.MigrationDir)
	assert.Equal(t, "schema_migrations", cfg.VersionTable)
	assert.Equal(t, "mysql", cfg.DB.Subprotocol)
	assert.Equal(t, 3306, cfg.DB.Port)
	assert.True(t, cfg.Color)
}

func TestDryRun(t *testing.T) {
	t.Setenv("TERN_DRYRUN", "")
	assert.False(t, DryRun())
	t.Setenv("TERN_DRYRUN", "1")
	assert.True(t, DryRun())
}
