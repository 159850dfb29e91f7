package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPMiddlewarePassesThrough(t *testing.T) {
	handler := HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Fatalf("middleware must not alter the status, got %d", rec.Code)
	}
	if rec.Body.String() != "short and stout" {
		t.Fatalf("middleware must not alter the body, got %q", rec.Body.String())
	}
}

func TestResponseWriterDefaultsTo200(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec}

	_, _ = rw.Write([]byte("ok"))

	if rw.statusCode != http.StatusOK {
		t.Fatalf("implicit write should record 200, got %d", rw.statusCode)
	}
	if rw.bytesWritten != 2 {
		t.Fatalf("expected 2 bytes recorded, got %d", rw.bytesWritten)
	}
}
