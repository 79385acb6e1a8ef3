package monitoring

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordEventCounts(t *testing.T) {
	s := NewService(Config{})
	s.RecordEvent("crop.deleted", map[string]string{"crop_id": "crop_1"})
	s.RecordEvent("crop.deleted", nil)

	if got := testutil.ToFloat64(s.events.WithLabelValues("crop.deleted")); got != 2 {
		t.Errorf("events_total{event=crop.deleted} = %v, want 2", got)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	s := NewService(Config{Namespace: "test"})
	s.ObserveIngest("success", 20*time.Millisecond)
	s.AlertCreated("critical")
	s.DeviceCommand("heater", "applied")
	s.SideEffectFailed("alerts")

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	for _, want := range []string{
		`test_readings_ingested_total{outcome="success"} 1`,
		`test_alerts_created_total{severity="critical"} 1`,
		`test_device_commands_total{device_type="heater",outcome="applied"} 1`,
		`test_side_effect_errors_total{kind="alerts"} 1`,
		`test_ingest_duration_seconds_count 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
