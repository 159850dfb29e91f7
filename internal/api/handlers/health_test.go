package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthzAlwaysOK(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	Healthz(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json content type, got %q", ct)
	}
}

func TestHealthWithoutDatabaseIsUnhealthy(t *testing.T) {
	checker := NewHealthChecker(nil, "1.2.3", "abc1234")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	checker.Health()(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	var health HealthCheck
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("invalid health response: %v", err)
	}
	if health.Status != "unhealthy" {
		t.Errorf("expected unhealthy status, got %q", health.Status)
	}
	if health.Version != "1.2.3" {
		t.Errorf("expected version 1.2.3, got %q", health.Version)
	}
	if health.Checks["database"].Status != "fail" {
		t.Errorf("expected database check to fail, got %q", health.Checks["database"].Status)
	}
}

func TestReadyzWithoutDatabaseIsNotReady(t *testing.T) {
	checker := NewHealthChecker(nil, "dev", "unknown")

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()

	checker.Readyz()(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
