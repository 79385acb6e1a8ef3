package engine

import (
	"testing"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/models"
)

func TestGenerateAlertsNoneWhenNormal(t *testing.T) {
	alerts := GenerateAlerts(nominal(), models.NormalStatus(), lettuce())
	if len(alerts) != 0 {
		t.Errorf("expected no alerts, got %d", len(alerts))
	}
}

func TestGenerateAlertsOnePerAbnormalMetric(t *testing.T) {
	m := models.Measurements{AirTemp: 30, WaterTemp: 17, Humidity: 65, PH: 7.5, TDS: 600}
	profile := lettuce()
	status := Evaluate(m, profile)

	alerts := GenerateAlerts(m, status, profile)
	if len(alerts) != 3 {
		t.Fatalf("expected 3 alerts, got %d: %+v", len(alerts), alerts)
	}

	want := []struct {
		sensor   models.Metric
		severity models.Severity
		message  string
	}{
		{models.MetricAirTemp, models.SeverityCritical, "Air temperature (30°C) exceeds limits for Lettuce"},
		{models.MetricWaterTemp, models.SeverityWarning, "Water temperature (17°C) approaching limits for Lettuce"},
		{models.MetricPH, models.SeverityCritical, "pH level (7.5) exceeds limits for Lettuce"},
	}
	for i, w := range want {
		a := alerts[i]
		if a.SensorType != w.sensor || a.Type != w.severity || a.Message != w.message {
			t.Errorf("alert %d = %+v, want %+v", i, a, w)
		}
		if a.IsRead {
			t.Errorf("alert %d should be unread", i)
		}
	}
}

func TestAlertMessageUnits(t *testing.T) {
	tests := []struct {
		metric   models.Metric
		value    float64
		severity models.Severity
		want     string
	}{
		{models.MetricHumidity, 45, models.SeverityWarning, "Humidity (45%) approaching limits for Basil"},
		{models.MetricTDS, 1200.5, models.SeverityCritical, "Nutrient level (1200.5ppm) exceeds limits for Basil"},
		{models.MetricWaterTemp, 15.5, models.SeverityCritical, "Water temperature (15.5°C) exceeds limits for Basil"},
	}
	for _, tt := range tests {
		if got := AlertMessage(tt.metric, tt.value, tt.severity, "Basil"); got != tt.want {
			t.Errorf("AlertMessage(%s) = %q, want %q", tt.metric, got, tt.want)
		}
	}
}

func TestSuppressUnread(t *testing.T) {
	alerts := []models.Alert{
		{SensorType: models.MetricAirTemp},
		{SensorType: models.MetricPH},
		{SensorType: models.MetricTDS},
	}
	kept := SuppressUnread(alerts, map[models.Metric]bool{models.MetricPH: true})
	if len(kept) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(kept))
	}
	for _, a := range kept {
		if a.SensorType == models.MetricPH {
			t.Errorf("ph alert should have been suppressed")
		}
	}

	if got := SuppressUnread(alerts, nil); len(got) != 3 {
		t.Errorf("nil unread set should keep everything, got %d", len(got))
	}
}

func TestParseAlertPolicy(t *testing.T) {
	if ParseAlertPolicy("suppress-unread") != AlertPolicySuppressUnread {
		t.Error("expected suppress-unread")
	}
	if ParseAlertPolicy("") != AlertPolicyNoDedup || ParseAlertPolicy("bogus") != AlertPolicyNoDedup {
		t.Error("expected no-dedup fallback")
	}
}
