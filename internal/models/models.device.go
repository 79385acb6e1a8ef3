// FilePath: internal/models/models.device.go
package models

import "time"

type DeviceType string

const (
	DeviceTypePump       DeviceType = "pump"
	DeviceTypeFan        DeviceType = "fan"
	DeviceTypeHeater     DeviceType = "heater"
	DeviceTypeHumidifier DeviceType = "humidifier"
	DeviceTypeLight      DeviceType = "light"
	DeviceTypePHAdjuster DeviceType = "ph_adjuster"
	DeviceTypeOther      DeviceType = "other"
)

// Device is a physical actuator that can be switched on or off
type Device struct {
	ID          string     `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	DeviceType  DeviceType `json:"device_type" db:"device_type"`
	IsOn        bool       `json:"is_on" db:"is_on"`
	LastUpdated time.Time  `json:"last_updated" db:"last_updated"`
}

// DeviceCommand asks for a device to be switched into the desired state
type DeviceCommand struct {
	DeviceID   string     `json:"device_id"`
	DeviceType DeviceType `json:"device_type"`
	DesiredOn  bool       `json:"desired_on"`
}

// DefaultDevices are seeded into an empty store.
func DefaultDevices() []Device {
	return []Device{
		{ID: "nutrient-pump", Name: "Nutrient Pump", DeviceType: DeviceTypePump},
		{ID: "water-pump", Name: "Water Circulation", DeviceType: DeviceTypeOther, IsOn: true},
		{ID: "fan", Name: "Ventilation Fan", DeviceType: DeviceTypeFan, IsOn: true},
		{ID: "heater", Name: "Water Heater", DeviceType: DeviceTypeHeater},
		{ID: "humidifier", Name: "Humidifier", DeviceType: DeviceTypeHumidifier},
		{ID: "grow-light", Name: "Grow Light", DeviceType: DeviceTypeLight, IsOn: true},
		{ID: "ph-doser", Name: "pH Doser", DeviceType: DeviceTypePHAdjuster},
	}
}
