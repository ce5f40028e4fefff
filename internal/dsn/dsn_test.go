package dsn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternmigrate/tern/internal/config"
)

func TestDriver(t *testing.T) {
	for _, tc := range []struct {
		subprotocol string
		want        string
	}{
		{"mysql", "mysql"},
		{"postgresql", "postgres"},
		{"sqlserver", "sqlserver"},
		{"h2", "h2"},
	} {
		got, err := Driver(tc.subprotocol)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	_, err := Driver("oracle")
	require.Error(t, err)
}

func TestBuild_MySQL(t *testing.T) {
	got, err := Build(config.DatabaseConfig{
		Subprotocol: "mysql", Host: "db", Port: 3307, Database: "app", User: "u", Password: "p",
	})
	require.NoError(t, err)
	assert.Equal(t, "u:p@tcp(db:3307)/app?parseTime=true", got)
}

func TestBuild_MySQL_DefaultPort(t *testing.T) {
	got, err := Build(config.DatabaseConfig{Subprotocol: "mysql", Host: "db", Database: "app"})
	require.NoError(t, err)
	assert.Contains(t, got, "tcp(db:3306)")
}

func TestBuild_PostgreSQL(t *testing.T) {
	got, err := Build(config.DatabaseConfig{
		Subprotocol: "postgresql", Host: "db", Port: 5433, Database: "app", User: "u", Password: "p",
	})
	require.NoError(t, err)
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=app sslmode=disable", got)
}

func TestBuild_SQLServer(t *testing.T) {
	got, err := Build(config.DatabaseConfig{
		Subprotocol: "sqlserver", Host: "db", Port: 1434, Database: "app", User: "u", Password: "p",
	})
	require.NoError(t, err)
	assert.Equal(t, "sqlserver://u:p@db:1434?database=app", got)
}

func TestBuild_H2_PrefersSchemaOverDatabase(t *testing.T) {
	got, err := Build(config.DatabaseConfig{
		Subprotocol: "h2", Host: "db", Schema: "myschema", Database: "ignored", User: "u", Password: "p",
	})
	require.NoError(t, err)
	assert.Contains(t, got, "/myschema;")
	assert.NotContains(t, got, "ignored")
}

func TestBuild_UnsupportedSubprotocol(t *testing.T) {
	_, err := Build(config.DatabaseConfig{Subprotocol: "oracle"})
	require.Error(t, err)
}
