// FilePath: api/resources/api.resource.devices.go
package resources

import (
	"net/http"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/hubservice"
	"github.com/gorilla/mux"
)

// DeviceHandlers encapsulates the actuator HTTP handlers
type DeviceHandlers struct {
	hubservice *hubservice.HubService
}

// @Summary List devices
// @Tags devices
// @Produce json
// @Success 200 {array} models.Device
// @Router /devices [get]
func (h *DeviceHandlers) ListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := h.hubservice.ListDevices(r.Context())
	if err != nil {
		respondWithError(w, toAPIError(r, err, "failed to list devices"))
		return
	}
	respondWithJSON(w, http.StatusOK, devices)
}

// @Summary Toggle a device
// @Description Flip is_on and return the updated device
// @Tags devices
// @Produce json
// @Param id path string true "Device ID"
// @Success 200 {object} models.Device
// @Failure 404 {object} errors.APIError
// @Router /devices/{id}/toggle [post]
func (h *DeviceHandlers) ToggleDevice(w http.ResponseWriter, r *http.Request) {
	device, err := h.hubservice.ToggleDevice(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, toAPIError(r, err, "failed to toggle device"))
		return
	}
	respondWithJSON(w, http.StatusOK, device)
}
