package health_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"siren-node/internal/health"
)

func get(t *testing.T, handler http.Handler, path string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec.Code
}

func TestServer_Endpoints(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	deviceReady := false
	srv := health.NewServer(":0", func() bool { return deviceReady }, logger)
	handler := srv.Handler()

	if code := get(t, handler, "/healthz"); code != http.StatusOK {
		t.Errorf("healthz: got %d, want 200", code)
	}
	if code := get(t, handler, "/readyz"); code != http.StatusServiceUnavailable {
		t.Errorf("readyz while degraded: got %d, want 503", code)
	}

	deviceReady = true
	if code := get(t, handler, "/readyz"); code != http.StatusOK {
		t.Errorf("readyz while ready: got %d, want 200", code)
	}

	if code := get(t, handler, "/metrics"); code != http.StatusOK {
		t.Errorf("metrics: got %d, want 200", code)
	}
}
