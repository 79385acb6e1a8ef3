// FilePath: api/resources/api.resource.simulation.go
package resources

import (
	"net/http"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/errors"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/simulator"
)

// SimulationHandlers exposes the simulator state
type SimulationHandlers struct {
	simulator *simulator.Simulator
}

// @Summary Simulator snapshot
// @Description Current simulated values, their status against the active crop and the rolling history
// @Tags simulation
// @Produce json
// @Success 200 {object} simulator.Snapshot
// @Failure 503 {object} errors.APIError
// @Router /simulation [get]
func (h *SimulationHandlers) Snapshot(w http.ResponseWriter, r *http.Request) {
	if h.simulator == nil {
		respondWithError(w, toAPIError(r, errors.NewUnavailableError("simulator is disabled", nil), ""))
		return
	}
	respondWithJSON(w, http.StatusOK, h.simulator.Snapshot(r.Context()))
}

// @Summary Advance the simulator
// @Description Run one random-walk step immediately
// @Tags simulation
// @Produce json
// @Success 200 {object} simulator.Snapshot
// @Failure 503 {object} errors.APIError
// @Router /simulation/tick [post]
func (h *SimulationHandlers) Tick(w http.ResponseWriter, r *http.Request) {
	if h.simulator == nil {
		respondWithError(w, toAPIError(r, errors.NewUnavailableError("simulator is disabled", nil), ""))
		return
	}
	h.simulator.Tick()
	respondWithJSON(w, http.StatusOK, h.simulator.Snapshot(r.Context()))
}
