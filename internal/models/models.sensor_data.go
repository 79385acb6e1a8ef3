// FilePath: internal/models/models.sensor_data.go
package models

import (
	"strings"
	"time"
)

// SensorReading is a persisted, classified sample
type SensorReading struct {
	ID string `json:"id" db:"id"`
	Measurements
	Status    StatusVector `json:"status" db:"status"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	CropID    *string      `json:"crop_id" db:"crop_id"`
}

// RawReading is an unvalidated sample as submitted by a field device.
// Pointers distinguish absent fields from zero values.
type RawReading struct {
	AirTemp   *float64 `json:"air_temp"`
	WaterTemp *float64 `json:"water_temp"`
	Humidity  *float64 `json:"humidity"`
	PH        *float64 `json:"ph"`
	TDS       *float64 `json:"tds"`
	CropID    *string  `json:"crop_id,omitempty"`
}

// NewRawReading wraps complete measurements into a RawReading.
func NewRawReading(m Measurements) RawReading {
	return RawReading{
		AirTemp:   &m.AirTemp,
		WaterTemp: &m.WaterTemp,
		Humidity:  &m.Humidity,
		PH:        &m.PH,
		TDS:       &m.TDS,
	}
}

// MissingFields returns the JSON names of every absent metric field.
func (r RawReading) MissingFields() []string {
	missing := []string{}
	if r.AirTemp == nil {
		missing = append(missing, "air_temp")
	}
	if r.WaterTemp == nil {
		missing = append(missing, "water_temp")
	}
	if r.Humidity == nil {
		missing = append(missing, "humidity")
	}
	if r.PH == nil {
		missing = append(missing, "ph")
	}
	if r.TDS == nil {
		missing = append(missing, "tds")
	}
	return missing
}

// Measurements dereferences the raw fields. Callers must check MissingFields first.
func (r RawReading) Measurements() Measurements {
	return Measurements{
		AirTemp:   *r.AirTemp,
		WaterTemp: *r.WaterTemp,
		Humidity:  *r.Humidity,
		PH:        *r.PH,
		TDS:       *r.TDS,
	}
}

// ProfileID returns the explicitly requested crop id, if any.
func (r RawReading) ProfileID() string {
	if r.CropID == nil {
		return ""
	}
	return strings.TrimSpace(*r.CropID)
}

// ReadingStatus is a reading evaluated against the current active profile for display
type ReadingStatus struct {
	Reading   *SensorReading `json:"reading"`
	Crop      *CropProfile   `json:"crop,omitempty"`
	Status    StatusVector   `json:"status"`
	Feed      string         `json:"feed"`
	UpdatedAt time.Time      `json:"updated_at"`
}
