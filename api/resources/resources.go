// FilePath: api/resources/resources.go
package resources

import (
	"encoding/json"
	"net/http"
	"reflect"
	"time"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/api/middleware"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/errors"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/hubservice"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/simulator"
	"github.com/gorilla/schema"
	nuts "github.com/vaudience/go-nuts"
)

// Resources holds all HTTP resource handlers
type Resources struct {
	Readings    *ReadingHandlers
	Devices     *DeviceHandlers
	Crops       *CropHandlers
	Alerts      *AlertHandlers
	Simulation  *SimulationHandlers
	HealthCheck func(w http.ResponseWriter, r *http.Request)
	Metrics     func(w http.ResponseWriter, r *http.Request)
	Realtime    http.Handler
}

// NewResources creates a new Resources instance. sim may be nil when the
// simulator is disabled.
func NewResources(svc *hubservice.HubService, sim *simulator.Simulator) *Resources {
	return &Resources{
		Readings:   &ReadingHandlers{hubservice: svc},
		Devices:    &DeviceHandlers{hubservice: svc},
		Crops:      &CropHandlers{hubservice: svc},
		Alerts:     &AlertHandlers{hubservice: svc},
		Simulation: &SimulationHandlers{simulator: sim},
		HealthCheck: func(w http.ResponseWriter, r *http.Request) {
			respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": nuts.GetVersion()})
		},
		Metrics: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		},
	}
}

// SetHealthCheck sets the health check handler
func (r *Resources) SetHealthCheck(h func(w http.ResponseWriter, r *http.Request)) {
	r.HealthCheck = h
}

// SetMetrics sets the metrics handler
func (r *Resources) SetMetrics(h func(w http.ResponseWriter, r *http.Request)) {
	r.Metrics = h
}

// SetRealtime sets the websocket handler for row-change events
func (r *Resources) SetRealtime(h http.Handler) {
	r.Realtime = h
}

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	d.RegisterConverter(time.Time{}, func(s string) reflect.Value {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return reflect.Value{}
		}
		return reflect.ValueOf(t)
	})
	return d
}

func decodeQuery(r *http.Request, dst interface{}) error {
	if err := decoder.Decode(dst, r.URL.Query()); err != nil {
		return errors.NewValidationError("invalid query parameters", err)
	}
	return nil
}

// toAPIError keeps typed errors and wraps anything else as internal.
func toAPIError(r *http.Request, err error, fallback string) *errors.APIError {
	apiErr, ok := errors.AsAPIError(err)
	if !ok {
		apiErr = errors.NewInternalError(fallback, err)
	}
	return apiErr.WithRequestID(middleware.RequestID(r.Context()))
}

func respondWithError(w http.ResponseWriter, err *errors.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	json.NewEncoder(w).Encode(err)
	if err.Code >= http.StatusInternalServerError {
		nuts.L.Errorf("[API] %s", err.Error())
	} else {
		nuts.L.Debugf("[API] %s", err.Error())
	}
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
