package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mohammad-safakhou/scout/config"
)

func TestRouterMountsMetricsWhenTelemetryEnabled(t *testing.T) {
	e := newRouter(&config.Config{Telemetry: config.TelemetryConfig{Enabled: true}})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", rec.Code)
	}
}

func TestRouterOmitsMetricsWhenTelemetryDisabled(t *testing.T) {
	e := newRouter(&config.Config{Telemetry: config.TelemetryConfig{Enabled: false}})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 from /metrics, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /healthz, got %d", rec.Code)
	}
}
