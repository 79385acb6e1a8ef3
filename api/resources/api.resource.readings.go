// FilePath: api/resources/api.resource.readings.go
package resources

import (
	"encoding/json"
	"net/http"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/errors"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/hubservice"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// ReadingHandlers encapsulates the sensor reading HTTP handlers
type ReadingHandlers struct {
	hubservice *hubservice.HubService
}

// IngestResponse is the success envelope of the ingestion endpoint
type IngestResponse struct {
	Data   *models.SensorReading `json:"data"`
	Status string                `json:"status"`
}

// IngestErrorResponse is the failure envelope of the ingestion endpoint
type IngestErrorResponse struct {
	Error string `json:"error"`
}

// @Summary Ingest a sensor reading
// @Description Validate, classify and store a reading. Alerts and device control follow asynchronously.
// @Tags readings
// @Accept json
// @Produce json
// @Param reading body models.RawReading true "Sensor reading"
// @Success 200 {object} IngestResponse
// @Failure 400 {object} IngestErrorResponse
// @Failure 404 {object} IngestErrorResponse
// @Failure 503 {object} IngestErrorResponse
// @Failure 500 {object} IngestErrorResponse
// @Router /readings [post]
func (h *ReadingHandlers) IngestReading(w http.ResponseWriter, r *http.Request) {
	var raw models.RawReading
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		respondWithIngestError(w, r, errors.NewValidationError("invalid request body", err))
		return
	}

	reading, err := h.hubservice.IngestReading(r.Context(), raw)
	if err != nil {
		respondWithIngestError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, IngestResponse{Data: reading, Status: "success"})
}

// @Summary Generate a sample reading
// @Description Draw a reading around the active profile's bounds and ingest it
// @Tags readings
// @Produce json
// @Success 200 {object} IngestResponse
// @Failure 503 {object} IngestErrorResponse
// @Router /readings/sample [post]
func (h *ReadingHandlers) GenerateSample(w http.ResponseWriter, r *http.Request) {
	reading, err := h.hubservice.GenerateSample(r.Context())
	if err != nil {
		respondWithIngestError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, IngestResponse{Data: reading, Status: "success"})
}

// @Summary Reading history
// @Description Newest readings first
// @Tags readings
// @Produce json
// @Param limit query int false "Number of readings (default 24, max 500)"
// @Param since query string false "RFC3339 lower bound on created_at"
// @Param crop_id query string false "Only readings evaluated against this crop"
// @Success 200 {array} models.SensorReading
// @Failure 400 {object} errors.APIError
// @Router /readings [get]
func (h *ReadingHandlers) ListReadings(w http.ResponseWriter, r *http.Request) {
	var filters models.ReadingFilters
	if err := decodeQuery(r, &filters); err != nil {
		respondWithError(w, toAPIError(r, err, ""))
		return
	}

	readings, err := h.hubservice.ReadingHistory(r.Context(), filters)
	if err != nil {
		respondWithError(w, toAPIError(r, err, "failed to list readings"))
		return
	}
	respondWithJSON(w, http.StatusOK, readings)
}

// @Summary Latest reading
// @Tags readings
// @Produce json
// @Success 200 {object} models.SensorReading
// @Failure 404 {object} errors.APIError
// @Router /readings/latest [get]
func (h *ReadingHandlers) LatestReading(w http.ResponseWriter, r *http.Request) {
	reading, err := h.hubservice.LatestReading(r.Context())
	if err != nil {
		respondWithError(w, toAPIError(r, err, "failed to load latest reading"))
		return
	}
	respondWithJSON(w, http.StatusOK, reading)
}

// @Summary Current status
// @Description Latest reading re-evaluated against the active crop profile
// @Tags readings
// @Produce json
// @Success 200 {object} models.ReadingStatus
// @Failure 404 {object} errors.APIError
// @Router /readings/status [get]
func (h *ReadingHandlers) ReadingStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.hubservice.ReadingStatus(r.Context())
	if err != nil {
		respondWithError(w, toAPIError(r, err, "failed to evaluate status"))
		return
	}
	respondWithJSON(w, http.StatusOK, status)
}

func respondWithIngestError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := toAPIError(r, err, "failed to ingest reading")
	if apiErr.Code >= http.StatusInternalServerError {
		nuts.L.Errorf("[API] Ingestion failed: %s", apiErr.Error())
	}
	respondWithJSON(w, apiErr.Code, IngestErrorResponse{Error: apiErr.Message})
}
