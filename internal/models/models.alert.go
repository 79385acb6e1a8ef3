// FilePath: internal/models/models.alert.go
package models

import "time"

// Alert is a human-readable notice about an out-of-band metric
type Alert struct {
	ID         string    `json:"id" db:"id"`
	Message    string    `json:"message" db:"message"`
	SensorType Metric    `json:"sensor_type" db:"sensor_type"`
	Type       Severity  `json:"type" db:"type"`
	IsRead     bool      `json:"is_read" db:"is_read"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
