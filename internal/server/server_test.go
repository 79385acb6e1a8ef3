package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/config"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Server:     config.ServerConfig{ShutdownTimeout: time.Second},
		Database:   config.PostgresConfig{Driver: "memory"},
		Monitoring: config.MonitoringConfig{Namespace: "test"},
		Ingest:     config.IngestConfig{SideEffectTimeout: time.Second, DeviceQueueSize: 8},
		Simulator:  config.SimulatorConfig{Enabled: true, TickSpec: "@every 1h", IngestSpec: "@every 1h", Seed: 3},
		Retention:  config.RetentionConfig{Readings: time.Hour, Schedule: "@daily"},
	}
}

func startMemoryServer(t *testing.T) *Server {
	t.Helper()
	s := New(memoryConfig())
	if err := s.initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	t.Cleanup(func() { s.shutdown(context.Background()) })
	return s
}

func serve(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestMemoryServerHealth(t *testing.T) {
	s := startMemoryServer(t)

	rec := serve(s, http.MethodGet, "/v1/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("health = %d", rec.Code)
	}
	var report healthReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatal(err)
	}
	if report.Status != "ok" || report.LastReadingAge != "never" {
		t.Errorf("report = %+v", report)
	}
	if report.Components["database"].Status != "memory" {
		t.Errorf("database component = %+v", report.Components["database"])
	}

	serve(s, http.MethodPost, "/v1/readings", `{"air_temp":23.5,"water_temp":21.2,"humidity":65,"ph":6.1,"tds":750}`)
	rec = serve(s, http.MethodGet, "/v1/health", "")
	json.Unmarshal(rec.Body.Bytes(), &report)
	if report.LastReadingAt == nil || report.LastReadingAge == "never" {
		t.Errorf("expected last reading age, got %+v", report)
	}
}

func TestMemoryServerSeedsAndWires(t *testing.T) {
	s := startMemoryServer(t)

	rec := serve(s, http.MethodGet, "/v1/crops", "")
	var crops []map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &crops)
	if len(crops) != 4 {
		t.Errorf("seeded crops = %d, want 4", len(crops))
	}

	if rec := serve(s, http.MethodGet, "/v1/simulation", ""); rec.Code != http.StatusOK {
		t.Errorf("simulation = %d, want 200 with simulator enabled", rec.Code)
	}

	rec = serve(s, http.MethodGet, "/v1/metrics", "")
	if !strings.Contains(rec.Body.String(), "test_readings_ingested_total") &&
		!strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Errorf("metrics endpoint not wired: %.200s", rec.Body.String())
	}
}

func TestInitializeRejectsBadSimulatorSpec(t *testing.T) {
	cfg := memoryConfig()
	cfg.Simulator.TickSpec = "sometimes"
	s := New(cfg)
	defer s.shutdown(context.Background())
	if err := s.initialize(context.Background()); err == nil {
		t.Fatal("expected error for invalid tick spec")
	}
}
