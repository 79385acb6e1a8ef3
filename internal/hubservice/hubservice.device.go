package hubservice

import (
	"context"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// DeviceService handles manual actuator control
type DeviceService interface {
	ListDevices(ctx context.Context) ([]*models.Device, error)
	ToggleDevice(ctx context.Context, id string) (*models.Device, error)
}

func (s *HubService) ListDevices(ctx context.Context) ([]*models.Device, error) {
	return s.Devices.List(ctx)
}

// ToggleDevice flips a device in one statement, so concurrent toggles never
// lose an update.
func (s *HubService) ToggleDevice(ctx context.Context, id string) (*models.Device, error) {
	device, err := s.Devices.Toggle(ctx, id)
	if err != nil {
		return nil, err
	}
	nuts.L.Infof("[DeviceService] %s (%s) switched %s manually", device.Name, device.ID, onOff(device.IsOn))
	return device, nil
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
