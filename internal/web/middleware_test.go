package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-logr/logr/funcr"
)

func TestWithLoggerMiddleware(t *testing.T) {
	var lines []string
	log := funcr.New(func(prefix, args string) {
		lines = append(lines, args)
	}, funcr.Options{})

	handler := middleware.RequestID(WithLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		GetLogger(r).Info("handled")
		w.WriteHeader(http.StatusOK)
	})))

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if len(lines) != 1 {
		t.Fatalf("expected one log line, got %d", len(lines))
	}
	if !strings.Contains(lines[0], `"requestID"`) {
		t.Errorf("expected the request ID on the log line, got %s", lines[0])
	}
}

func TestGetLoggerWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)

	log := GetLogger(req)
	if log.Enabled() {
		t.Error("expected a discarding logger without the middleware")
	}
}
