package engine

import (
	"fmt"
	"strconv"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/models"
)

// AlertPolicy selects the alert generator variant.
type AlertPolicy string

const (
	// AlertPolicyNoDedup re-emits an alert on every out-of-band evaluation.
	AlertPolicyNoDedup AlertPolicy = "no-dedup"
	// AlertPolicySuppressUnread skips metrics that still have an unread alert.
	AlertPolicySuppressUnread AlertPolicy = "suppress-unread"
)

// ParseAlertPolicy falls back to AlertPolicyNoDedup for unknown values.
func ParseAlertPolicy(s string) AlertPolicy {
	if AlertPolicy(s) == AlertPolicySuppressUnread {
		return AlertPolicySuppressUnread
	}
	return AlertPolicyNoDedup
}

type metricLabel struct {
	label string
	unit  string
}

var metricLabels = map[models.Metric]metricLabel{
	models.MetricAirTemp:   {"Air temperature", "°C"},
	models.MetricWaterTemp: {"Water temperature", "°C"},
	models.MetricHumidity:  {"Humidity", "%"},
	models.MetricPH:        {"pH level", ""},
	models.MetricTDS:       {"Nutrient level", "ppm"},
}

// GenerateAlerts returns one unread alert per metric whose severity is not normal,
// in canonical metric order. IDs and timestamps are left to the store.
func GenerateAlerts(m models.Measurements, status models.StatusVector, profile *models.CropProfile) []models.Alert {
	alerts := []models.Alert{}
	if profile == nil {
		return alerts
	}
	for _, metric := range models.AllMetrics {
		severity := status.Get(metric)
		if severity == models.SeverityNormal || severity == "" {
			continue
		}
		alerts = append(alerts, models.Alert{
			Message:    AlertMessage(metric, m.Get(metric), severity, profile.Name),
			SensorType: metric,
			Type:       severity,
		})
	}
	return alerts
}

// AlertMessage renders e.g. "Water temperature (15.5°C) exceeds limits for Lettuce".
func AlertMessage(metric models.Metric, value float64, severity models.Severity, cropName string) string {
	l := metricLabels[metric]
	phrase := "approaching"
	if severity == models.SeverityCritical {
		phrase = "exceeds"
	}
	return fmt.Sprintf("%s (%s%s) %s limits for %s",
		l.label, strconv.FormatFloat(value, 'f', -1, 64), l.unit, phrase, cropName)
}

// SuppressUnread drops alerts for sensor types that already have an unread alert.
func SuppressUnread(alerts []models.Alert, unread map[models.Metric]bool) []models.Alert {
	kept := make([]models.Alert, 0, len(alerts))
	for _, a := range alerts {
		if unread[a.SensorType] {
			continue
		}
		kept = append(kept, a)
	}
	return kept
}
