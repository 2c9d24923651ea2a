package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/M-uzair-abbasi/YaarFetch/internal/server/middleware"
)

func TestRequestLoggerRecordsOriginAndIP(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := middleware.Chain(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
		middleware.RequestMetadataMiddleware(),
		middleware.NewRequestLogger(logger),
	)

	r := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	r.RemoteAddr = "203.0.113.9:4711"
	r.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	logged := buf.String()
	if !strings.Contains(logged, "origin=http://localhost:3000") {
		t.Errorf("log line missing declared origin: %s", logged)
	}
	if !strings.Contains(logged, "ip=203.0.113.9") {
		t.Errorf("log line missing caller IP: %s", logged)
	}
	if !strings.Contains(logged, "method=GET") {
		t.Errorf("log line missing method: %s", logged)
	}
}

func TestRequestLoggerEmptyOrigin(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := middleware.Chain(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}),
		middleware.RequestMetadataMiddleware(),
		middleware.NewRequestLogger(logger),
	)

	r := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if !strings.Contains(buf.String(), `origin=""`) {
		t.Errorf("expected empty origin field for same-origin request: %s", buf.String())
	}
}
