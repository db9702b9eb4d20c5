package server

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"fraudnotifier/internal/config"
)

func testServerConfig(webhook http.Handler) Config {
	cfg := config.Defaults()
	return Config{
		Server:  cfg.Server,
		Metrics: cfg.Metrics,
		Webhook: webhook,
		Logger:  slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
	}
}

func TestRoutes_WebhookPath(t *testing.T) {
	called := false
	h := Routes(testServerConfig(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		called = true
		rw.WriteHeader(http.StatusOK)
	})))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("{}")))

	if !called {
		t.Fatal("webhook handler not invoked")
	}
	if rr.Header().Get("X-Request-Id") == "" {
		t.Error("expected a generated request id")
	}
}

func TestRoutes_RequestIDPropagated(t *testing.T) {
	h := Routes(testServerConfig(http.NotFoundHandler()))
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get("X-Request-Id"); got != "req-123" {
		t.Fatalf("expected req-123, got %q", got)
	}
}

func TestRoutes_Healthz(t *testing.T) {
	h := Routes(testServerConfig(http.NotFoundHandler()))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"ok"`) {
		t.Errorf("unexpected body %s", rr.Body.String())
	}
}

func TestRoutes_Metrics(t *testing.T) {
	h := Routes(testServerConfig(http.NotFoundHandler()))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "fraudnotifier_notification_latency_seconds") {
		t.Error("expected notifier metrics in exposition output")
	}
}

func TestRoutes_MetricsDisabled(t *testing.T) {
	cfg := testServerConfig(http.NotFoundHandler())
	cfg.Metrics.Enabled = false
	rr := httptest.NewRecorder()
	Routes(cfg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 with metrics disabled, got %d", rr.Code)
	}
}
