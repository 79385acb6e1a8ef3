package engine

import (
	"time"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/models"
)

// Grow lights follow a fixed daily window [LightsOnHour, LightsOffHour).
const (
	LightsOnHour  = 6
	LightsOffHour = 20
)

// DesiredState decides whether a device of the given type should be on.
// The second result is false for types that auto-control does not manage.
func DesiredState(deviceType models.DeviceType, m models.Measurements, profile *models.CropProfile, now time.Time) (bool, bool) {
	switch deviceType {
	case models.DeviceTypeHeater:
		return m.WaterTemp < profile.MinWaterTemp, true
	case models.DeviceTypeHumidifier:
		return m.Humidity < profile.MinHumidity, true
	case models.DeviceTypeFan:
		return m.AirTemp > profile.MaxAirTemp, true
	case models.DeviceTypePump:
		return m.TDS < profile.MinTDS, true
	case models.DeviceTypePHAdjuster:
		return m.PH < profile.MinPH || m.PH > profile.MaxPH, true
	case models.DeviceTypeLight:
		h := now.Hour()
		return h >= LightsOnHour && h < LightsOffHour, true
	}
	return false, false
}

// ResolveDeviceTargets computes the desired state of every controllable device and
// returns commands only for devices whose current state differs. Devices of type
// "other" or of unknown types are left alone.
func ResolveDeviceTargets(m models.Measurements, profile *models.CropProfile, devices []*models.Device, now time.Time) []models.DeviceCommand {
	commands := []models.DeviceCommand{}
	if profile == nil {
		return commands
	}
	for _, d := range devices {
		if d == nil {
			continue
		}
		desired, managed := DesiredState(d.DeviceType, m, profile, now)
		if !managed || desired == d.IsOn {
			continue
		}
		commands = append(commands, models.DeviceCommand{
			DeviceID:   d.ID,
			DeviceType: d.DeviceType,
			DesiredOn:  desired,
		})
	}
	return commands
}
