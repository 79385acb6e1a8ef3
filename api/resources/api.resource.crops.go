// FilePath: api/resources/api.resource.crops.go
package resources

import (
	"encoding/json"
	"net/http"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/errors"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/hubservice"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/models"
	"github.com/gorilla/mux"
)

// CropHandlers encapsulates the crop profile HTTP handlers
type CropHandlers struct {
	hubservice *hubservice.HubService
}

// @Summary List crop profiles
// @Tags crops
// @Produce json
// @Success 200 {array} models.CropProfile
// @Router /crops [get]
func (h *CropHandlers) ListCrops(w http.ResponseWriter, r *http.Request) {
	crops, err := h.hubservice.ListCrops(r.Context())
	if err != nil {
		respondWithError(w, toAPIError(r, err, "failed to list crops"))
		return
	}
	respondWithJSON(w, http.StatusOK, crops)
}

// @Summary Create a crop profile
// @Tags crops
// @Accept json
// @Produce json
// @Param crop body models.CropProfile true "Crop profile"
// @Success 201 {object} models.CropProfile
// @Failure 400 {object} errors.APIError
// @Router /crops [post]
func (h *CropHandlers) CreateCrop(w http.ResponseWriter, r *http.Request) {
	var crop models.CropProfile
	if err := json.NewDecoder(r.Body).Decode(&crop); err != nil {
		respondWithError(w, toAPIError(r, errors.NewValidationError("invalid request body", err), ""))
		return
	}

	if err := h.hubservice.CreateCrop(r.Context(), &crop); err != nil {
		respondWithError(w, toAPIError(r, err, "failed to create crop"))
		return
	}
	respondWithJSON(w, http.StatusCreated, crop)
}

// @Summary Get a crop profile
// @Tags crops
// @Produce json
// @Param id path string true "Crop ID"
// @Success 200 {object} models.CropProfile
// @Failure 404 {object} errors.APIError
// @Router /crops/{id} [get]
func (h *CropHandlers) GetCrop(w http.ResponseWriter, r *http.Request) {
	crop, err := h.hubservice.GetCrop(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, toAPIError(r, err, "failed to load crop"))
		return
	}
	respondWithJSON(w, http.StatusOK, crop)
}

// @Summary Update a crop profile
// @Tags crops
// @Accept json
// @Produce json
// @Param id path string true "Crop ID"
// @Param crop body models.CropProfile true "Updated crop profile"
// @Success 200 {object} models.CropProfile
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /crops/{id} [put]
func (h *CropHandlers) UpdateCrop(w http.ResponseWriter, r *http.Request) {
	var crop models.CropProfile
	if err := json.NewDecoder(r.Body).Decode(&crop); err != nil {
		respondWithError(w, toAPIError(r, errors.NewValidationError("invalid request body", err), ""))
		return
	}

	crop.ID = mux.Vars(r)["id"]
	if err := h.hubservice.UpdateCrop(r.Context(), &crop); err != nil {
		respondWithError(w, toAPIError(r, err, "failed to update crop"))
		return
	}
	respondWithJSON(w, http.StatusOK, crop)
}

// @Summary Delete a crop profile
// @Description Readings keep their values but lose the crop reference
// @Tags crops
// @Param id path string true "Crop ID"
// @Success 204
// @Failure 404 {object} errors.APIError
// @Router /crops/{id} [delete]
func (h *CropHandlers) DeleteCrop(w http.ResponseWriter, r *http.Request) {
	if err := h.hubservice.DeleteCrop(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondWithError(w, toAPIError(r, err, "failed to delete crop"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// @Summary Active crop profile
// @Tags crops
// @Produce json
// @Success 200 {object} models.CropProfile
// @Failure 404 {object} errors.APIError
// @Router /crops/active [get]
func (h *CropHandlers) GetActiveCrop(w http.ResponseWriter, r *http.Request) {
	crop, err := h.hubservice.ActiveCrop(r.Context())
	if err != nil {
		respondWithError(w, toAPIError(r, err, "failed to resolve active crop"))
		return
	}
	respondWithJSON(w, http.StatusOK, crop)
}

// @Summary Select the active crop profile
// @Tags crops
// @Produce json
// @Param id path string true "Crop ID"
// @Success 200 {object} models.CropProfile
// @Failure 404 {object} errors.APIError
// @Failure 503 {object} errors.APIError
// @Router /crops/active/{id} [put]
func (h *CropHandlers) SetActiveCrop(w http.ResponseWriter, r *http.Request) {
	crop, err := h.hubservice.SetActiveCrop(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, toAPIError(r, err, "failed to select crop"))
		return
	}
	respondWithJSON(w, http.StatusOK, crop)
}
