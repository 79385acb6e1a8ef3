// FilePath: api/resources/api.resource.alerts.go
package resources

import (
	"net/http"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/hubservice"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/models"
	"github.com/gorilla/mux"
)

// AlertHandlers encapsulates the alert HTTP handlers
type AlertHandlers struct {
	hubservice *hubservice.HubService
}

// @Summary List alerts
// @Tags alerts
// @Produce json
// @Param unread query bool false "Only unread alerts"
// @Param sensor_type query string false "Only alerts for this metric"
// @Param limit query int false "Page size (default 50, max 200)"
// @Param offset query int false "Page offset"
// @Success 200 {array} models.Alert
// @Router /alerts [get]
func (h *AlertHandlers) ListAlerts(w http.ResponseWriter, r *http.Request) {
	var filters models.AlertFilters
	if err := decodeQuery(r, &filters); err != nil {
		respondWithError(w, toAPIError(r, err, ""))
		return
	}

	alerts, err := h.hubservice.ListAlerts(r.Context(), filters)
	if err != nil {
		respondWithError(w, toAPIError(r, err, "failed to list alerts"))
		return
	}
	respondWithJSON(w, http.StatusOK, alerts)
}

// @Summary Dismiss an alert
// @Tags alerts
// @Param id path string true "Alert ID"
// @Success 204
// @Failure 404 {object} errors.APIError
// @Router /alerts/{id}/read [post]
func (h *AlertHandlers) MarkRead(w http.ResponseWriter, r *http.Request) {
	if err := h.hubservice.MarkAlertRead(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondWithError(w, toAPIError(r, err, "failed to dismiss alert"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// @Summary Dismiss all alerts
// @Tags alerts
// @Produce json
// @Success 200 {object} map[string]int64
// @Router /alerts/read-all [post]
func (h *AlertHandlers) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.hubservice.MarkAllAlertsRead(r.Context())
	if err != nil {
		respondWithError(w, toAPIError(r, err, "failed to dismiss alerts"))
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]int64{"updated": n})
}
