package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

type fakeChecker struct{ err error }

func (f fakeChecker) Check(ctx context.Context) error { return f.err }

func TestStorageHealthChecker(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "storage")
	checker := &StorageHealthChecker{Dir: dir}
	if err := checker.Check(context.Background()); err != nil {
		t.Fatalf("Check: %v", err)
	}
	// The probe cleans up after itself.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("leftover files: %v", entries)
	}
}

func TestStorageHealthCheckerUnwritable(t *testing.T) {
	// A regular file where a directory is expected fails regardless of
	// privileges.
	file := filepath.Join(t.TempDir(), "occupied")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	checker := &StorageHealthChecker{Dir: filepath.Join(file, "sub")}
	if err := checker.Check(context.Background()); err == nil {
		t.Fatal("expected error for unusable storage dir")
	}
}

func TestHealthHandlerHealthy(t *testing.T) {
	h := HealthHandler(map[string]HealthChecker{"database": fakeChecker{}})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var status HealthStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatal(err)
	}
	if status.Status != "healthy" || status.Checks["database"].Status != "healthy" {
		t.Errorf("unexpected status: %+v", status)
	}
}

func TestHealthHandlerUnhealthy(t *testing.T) {
	h := HealthHandler(map[string]HealthChecker{
		"database": fakeChecker{err: fmt.Errorf("connection refused")},
	})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	var status HealthStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatal(err)
	}
	if status.Checks["database"].Message != "connection refused" {
		t.Errorf("check message = %q", status.Checks["database"].Message)
	}
}
