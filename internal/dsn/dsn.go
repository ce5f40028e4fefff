// Package dsn builds the driver name and data-source-name string
// sql.Open needs for one configured backend's db settings.
package dsn

import (
	"fmt"

	"github.com/ternmigrate/tern/internal/config"
)

// Driver returns the database/sql driver name registered for subprotocol.
// H2 has no first-party Go driver; callers targeting H2 must register their
// own driver under this name before sql.Open is called.
func Driver(subprotocol string) (string, error) {
	switch subprotocol {
	case "mysql":
		return "mysql", nil
	case "postgresql":
		return "postgres", nil
	case "sqlserver":
		return "sqlserver", nil
	case "h2":
		return "h2", nil
	default:
		return "", fmt.Errorf("dsn: unsupported subprotocol %q", subprotocol)
	}
}

// Build renders the data source name sql.Open expects for db.
func Build(db config.DatabaseConfig) (string, error) {
	switch db.Subprotocol {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", db.User, db.Password, db.Host, port(db.Port, 3306), db.Database), nil
	case "postgresql":
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable", db.Host, port(db.Port, 5432), db.User, db.Password, db.Database), nil
	case "sqlserver":
		return fmt.Sprintf("sqlserver://%s:%s@%s:%d?database=%s", db.User, db.Password, db.Host, port(db.Port, 1433), db.Database), nil
	case "h2":
		schema := db.Schema
		if schema == "" {
			schema = db.Database
		}
		return fmt.Sprintf("tcp://%s:%d/%s;USER=%s;PASSWORD=%s", db.Host, port(db.Port, 9092), schema, db.User, db.Password), nil
	default:
		return "", fmt.Errorf("dsn: unsupported subprotocol %q", db.Subprotocol)
	}
}

func port(p, fallback int) int {
	if p == 0 {
		return fallback
	}
	return p
}
