// FilePath: internal/models/models.crop.go
package models

import "time"

// CropProfile holds the acceptable bounds of every metric for one crop
type CropProfile struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	MinAirTemp   float64   `json:"min_air_temp" db:"min_air_temp"`
	MaxAirTemp   float64   `json:"max_air_temp" db:"max_air_temp"`
	MinWaterTemp float64   `json:"min_water_temp" db:"min_water_temp"`
	MaxWaterTemp float64   `json:"max_water_temp" db:"max_water_temp"`
	MinHumidity  float64   `json:"min_humidity" db:"min_humidity"`
	MaxHumidity  float64   `json:"max_humidity" db:"max_humidity"`
	MinPH        float64   `json:"min_ph" db:"min_ph"`
	MaxPH        float64   `json:"max_ph" db:"max_ph"`
	MinTDS       float64   `json:"min_tds" db:"min_tds"`
	MaxTDS       float64   `json:"max_tds" db:"max_tds"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Bounds returns the (min, max) pair configured for a metric.
func (c *CropProfile) Bounds(metric Metric) (min, max float64) {
	switch metric {
	case MetricAirTemp:
		return c.MinAirTemp, c.MaxAirTemp
	case MetricWaterTemp:
		return c.MinWaterTemp, c.MaxWaterTemp
	case MetricHumidity:
		return c.MinHumidity, c.MaxHumidity
	case MetricPH:
		return c.MinPH, c.MaxPH
	case MetricTDS:
		return c.MinTDS, c.MaxTDS
	}
	return 0, 0
}

// DefaultCropProfiles are seeded into an empty store.
func DefaultCropProfiles() []CropProfile {
	return []CropProfile{
		{Name: "Lettuce", MinAirTemp: 15, MaxAirTemp: 24, MinWaterTemp: 18, MaxWaterTemp: 23, MinHumidity: 50, MaxHumidity: 70, MinPH: 5.5, MaxPH: 6.5, MinTDS: 560, MaxTDS: 840},
		{Name: "Basil", MinAirTemp: 18, MaxAirTemp: 30, MinWaterTemp: 20, MaxWaterTemp: 25, MinHumidity: 60, MaxHumidity: 80, MinPH: 5.5, MaxPH: 6.5, MinTDS: 700, MaxTDS: 1120},
		{Name: "Strawberry", MinAirTemp: 18, MaxAirTemp: 26, MinWaterTemp: 18, MaxWaterTemp: 22, MinHumidity: 65, MaxHumidity: 75, MinPH: 5.5, MaxPH: 6.2, MinTDS: 840, MaxTDS: 1260},
		{Name: "Tomato", MinAirTemp: 20, MaxAirTemp: 30, MinWaterTemp: 20, MaxWaterTemp: 26, MinHumidity: 60, MaxHumidity: 80, MinPH: 5.8, MaxPH: 6.3, MinTDS: 1120, MaxTDS: 1540},
	}
}
