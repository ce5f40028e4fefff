package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	m := New()
	if m == nil {
		t.Fatal("Expected non-nil Metrics")
	}
	if m.MigrationsApplied == nil {
		t.Error("Expected MigrationsApplied to be initialized")
	}
	if m.CommandsCompiled == nil {
		t.Error("Expected CommandsCompiled to be initialized")
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.RecordMigration("mysql", nil, 10*time.Millisecond)

	handler := m.Handler()

	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}

	body, _ := io.ReadAll(rr.Body)
	if !strings.Contains(string(body), "tern_migrations_applied_total") {
		t.Error("Expected metrics output to contain tern_migrations_applied_total")
	}
	if !strings.Contains(string(body), "go_") {
		t.Error("Expected metrics output to contain Go runtime metrics")
	}
}

func TestMetrics_RecordMigration(t *testing.T) {
	m := New()
	m.RecordMigration("postgresql", nil, 5*time.Millisecond)
	m.RecordMigration("postgresql", io.EOF, 5*time.Millisecond)
}

func TestMetrics_RecordRollback(t *testing.T) {
	m := New()
	m.RecordRollback("mysql", nil, 5*time.Millisecond)
}

func TestMetrics_RecordCompile(t *testing.T) {
	m := New()
	m.RecordCompile("mysql", "create-table")
}

func TestMetrics_RecordStatement(t *testing.T) {
	m := New()
	m.RecordStatement("sqlserver", 2*time.Millisecond, nil)
	m.RecordStatement("sqlserver", 2*time.Millisecond, io.EOF)
}
