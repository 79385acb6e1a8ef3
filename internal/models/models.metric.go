// FilePath: internal/models/models.metric.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Severity classifies a metric value relative to a crop profile
type Severity string

const (
	SeverityNormal   Severity = "normal"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Metric names one of the five monitored values of a reading
type Metric string

const (
	MetricAirTemp   Metric = "airTemp"
	MetricWaterTemp Metric = "waterTemp"
	MetricHumidity  Metric = "humidity"
	MetricPH        Metric = "ph"
	MetricTDS       Metric = "tds"
)

// AllMetrics lists the monitored metrics in their canonical order.
var AllMetrics = []Metric{MetricAirTemp, MetricWaterTemp, MetricHumidity, MetricPH, MetricTDS}

// Measurements holds the five raw values of a single sample
type Measurements struct {
	AirTemp   float64 `json:"air_temp" db:"air_temp"`
	WaterTemp float64 `json:"water_temp" db:"water_temp"`
	Humidity  float64 `json:"humidity" db:"humidity"`
	PH        float64 `json:"ph" db:"ph"`
	TDS       float64 `json:"tds" db:"tds"`
}

// Get returns the value of the given metric.
func (m Measurements) Get(metric Metric) float64 {
	switch metric {
	case MetricAirTemp:
		return m.AirTemp
	case MetricWaterTemp:
		return m.WaterTemp
	case MetricHumidity:
		return m.Humidity
	case MetricPH:
		return m.PH
	case MetricTDS:
		return m.TDS
	}
	return 0
}

// StatusVector maps each metric of one reading to its severity
type StatusVector struct {
	AirTemp   Severity `json:"airTemp"`
	WaterTemp Severity `json:"waterTemp"`
	Humidity  Severity `json:"humidity"`
	PH        Severity `json:"ph"`
	TDS       Severity `json:"tds"`
}

// NormalStatus returns a vector with every metric set to normal.
func NormalStatus() StatusVector {
	return StatusVector{
		AirTemp:   SeverityNormal,
		WaterTemp: SeverityNormal,
		Humidity:  SeverityNormal,
		PH:        SeverityNormal,
		TDS:       SeverityNormal,
	}
}

func (s StatusVector) Get(metric Metric) Severity {
	switch metric {
	case MetricAirTemp:
		return s.AirTemp
	case MetricWaterTemp:
		return s.WaterTemp
	case MetricHumidity:
		return s.Humidity
	case MetricPH:
		return s.PH
	case MetricTDS:
		return s.TDS
	}
	return SeverityNormal
}

func (s *StatusVector) Set(metric Metric, severity Severity) {
	switch metric {
	case MetricAirTemp:
		s.AirTemp = severity
	case MetricWaterTemp:
		s.WaterTemp = severity
	case MetricHumidity:
		s.Humidity = severity
	case MetricPH:
		s.PH = severity
	case MetricTDS:
		s.TDS = severity
	}
}

// AllNormal reports whether no metric is out of band.
func (s StatusVector) AllNormal() bool {
	for _, m := range AllMetrics {
		if s.Get(m) != SeverityNormal {
			return false
		}
	}
	return true
}

// Value implements the driver.Valuer interface
func (s StatusVector) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements the sql.Scanner interface
func (s *StatusVector) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	case nil:
		*s = NormalStatus()
		return nil
	default:
		return fmt.Errorf("unsupported status type %T", value)
	}
	return json.Unmarshal(raw, s)
}
