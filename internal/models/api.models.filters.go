package models

import "time"

// ReadingFilters defines the available filter options for reading history
type ReadingFilters struct {
	Limit  int       `json:"limit" schema:"limit"`
	Since  time.Time `json:"since" schema:"since"`
	CropID string    `json:"crop_id" schema:"crop_id"`
}

// AlertFilters defines the available filter options for alerts
type AlertFilters struct {
	Unread     bool   `json:"unread" schema:"unread"`
	SensorType Metric `json:"sensor_type" schema:"sensor_type"`
	Limit      int    `json:"limit" schema:"limit"`
	Offset     int    `json:"offset" schema:"offset"`
}

const (
	DefaultHistoryLimit = 24
	MaxHistoryLimit     = 500
	DefaultAlertLimit   = 50
	MaxAlertLimit       = 200
)

// Normalize clamps the pagination values into their allowed ranges.
func (f *ReadingFilters) Normalize() {
	if f.Limit <= 0 {
		f.Limit = DefaultHistoryLimit
	}
	if f.Limit > MaxHistoryLimit {
		f.Limit = MaxHistoryLimit
	}
}

func (f *AlertFilters) Normalize() {
	if f.Limit <= 0 || f.Limit > MaxAlertLimit {
		f.Limit = DefaultAlertLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}
