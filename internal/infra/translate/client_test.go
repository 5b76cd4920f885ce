package translate_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/metric/noop"

	"siren-node/internal/infra/translate"
	"siren-node/internal/observe"
)

func newClient(t *testing.T, baseURL string) *translate.Client {
	t.Helper()
	metrics, err := observe.NewMetrics(noop.NewMeterProvider())
	if err != nil {
		t.Fatalf("creating metrics: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return translate.NewClient(baseURL, metrics, logger)
}

func TestClient_Translate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Text   string `json:"q"`
			Target string `json:"target"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if req.Target != "hi" {
			t.Errorf("target: got %q, want hi", req.Target)
		}
		json.NewEncoder(w).Encode(map[string]string{"translatedText": "बाढ़ की चेतावनी"})
	}))
	defer srv.Close()

	got := newClient(t, srv.URL).Translate(context.Background(), "Flood warning", "hi")
	if got != "बाढ़ की चेतावनी" {
		t.Errorf("translation: got %q", got)
	}
}

func TestClient_PrimaryLanguageShortCircuits(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		requests++
	}))
	defer srv.Close()

	client := newClient(t, srv.URL)
	if got := client.Translate(context.Background(), "Flood warning", "en"); got != "Flood warning" {
		t.Errorf("got %q, want source text", got)
	}
	if got := client.Translate(context.Background(), "  ", "hi"); got != "  " {
		t.Errorf("got %q, want untouched empty text", got)
	}
	if requests != 0 {
		t.Errorf("server hit %d times, want 0", requests)
	}
}

func TestClient_FallsBackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "translator down", http.StatusBadGateway)
	}))
	defer srv.Close()

	got := newClient(t, srv.URL).Translate(context.Background(), "Flood warning", "hi")
	if got != "Flood warning" {
		t.Errorf("got %q, want fallback to source text", got)
	}
}

func TestClient_FallsBackOnEchoedTranslation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Text string `json:"q"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(map[string]string{"translatedText": req.Text})
	}))
	defer srv.Close()

	metrics, err := observe.NewMetrics(noop.NewMeterProvider())
	if err != nil {
		t.Fatalf("creating metrics: %v", err)
	}
	var logs bytes.Buffer
	client := translate.NewClient(srv.URL, metrics, slog.New(slog.NewTextHandler(&logs, nil)))

	got := client.Translate(context.Background(), "Flood warning", "hi")
	if got != "Flood warning" {
		t.Errorf("got %q, want fallback to source text", got)
	}
	// The no-op translation must be visible, not silently accepted.
	if !strings.Contains(logs.String(), "translation failed") {
		t.Errorf("echo fallback not logged, got: %s", logs.String())
	}
}

func TestClient_FallsBackOnEmptyTranslation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"translatedText": "  "})
	}))
	defer srv.Close()

	got := newClient(t, srv.URL).Translate(context.Background(), "Flood warning", "hi")
	if got != "Flood warning" {
		t.Errorf("got %q, want fallback to source text", got)
	}
}

func TestClient_FallsBackWhenUnreachable(t *testing.T) {
	got := newClient(t, "http://127.0.0.1:1").Translate(context.Background(), "Flood warning", "hi")
	if got != "Flood warning" {
		t.Errorf("got %q, want fallback to source text", got)
	}
}
