package api

import (
	"net/http"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/api/middleware"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/api/resources"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/docs"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/hubservice"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/simulator"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/swaggo/swag"
)

type Options struct {
	AllowedOrigins []string
	Simulator      *simulator.Simulator
	Health         http.HandlerFunc
	Metrics        http.Handler
	Realtime       http.Handler
}

type Router struct {
	router    *mux.Router
	handler   http.Handler
	resources *resources.Resources
}

func NewRouter(svc *hubservice.HubService, opts Options) *Router {
	r := &Router{
		router:    mux.NewRouter(),
		resources: resources.NewResources(svc, opts.Simulator),
	}
	if opts.Health != nil {
		r.resources.SetHealthCheck(opts.Health)
	}
	if opts.Metrics != nil {
		r.resources.SetMetrics(opts.Metrics.ServeHTTP)
	}
	if opts.Realtime != nil {
		r.resources.SetRealtime(opts.Realtime)
	}

	r.setupRoutes()

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	var h http.Handler = r.router
	h = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", middleware.RequestIDHeader}),
		handlers.ExposedHeaders([]string{middleware.RequestIDHeader}),
	)(h)
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(middleware.RecoveryLogger))(h)
	h = handlers.CombinedLoggingHandler(middleware.AccessLog, h)
	r.handler = middleware.RequestIDs(h)
	return r
}

func (r *Router) setupRoutes() {
	// API version prefix
	api := r.router.PathPrefix("/v1").Subrouter()

	api.HandleFunc("/health", r.resources.HealthCheck).Methods(http.MethodGet)
	api.HandleFunc("/metrics", r.resources.Metrics).Methods(http.MethodGet)
	api.HandleFunc("/swagger.json", serveSwagger).Methods(http.MethodGet)
	if r.resources.Realtime != nil {
		api.Handle("/realtime", r.resources.Realtime).Methods(http.MethodGet)
	}

	// Readings
	readings := api.PathPrefix("/readings").Subrouter()
	readings.HandleFunc("", r.resources.Readings.IngestReading).Methods(http.MethodPost)
	readings.HandleFunc("", r.resources.Readings.ListReadings).Methods(http.MethodGet)
	readings.HandleFunc("/latest", r.resources.Readings.LatestReading).Methods(http.MethodGet)
	readings.HandleFunc("/status", r.resources.Readings.ReadingStatus).Methods(http.MethodGet)
	readings.HandleFunc("/sample", r.resources.Readings.GenerateSample).Methods(http.MethodPost)

	// Devices
	devices := api.PathPrefix("/devices").Subrouter()
	devices.HandleFunc("", r.resources.Devices.ListDevices).Methods(http.MethodGet)
	devices.HandleFunc("/{id}/toggle", r.resources.Devices.ToggleDevice).Methods(http.MethodPost)

	// Crops; /active is registered before /{id}
	crops := api.PathPrefix("/crops").Subrouter()
	crops.HandleFunc("", r.resources.Crops.ListCrops).Methods(http.MethodGet)
	crops.HandleFunc("", r.resources.Crops.CreateCrop).Methods(http.MethodPost)
	crops.HandleFunc("/active", r.resources.Crops.GetActiveCrop).Methods(http.MethodGet)
	crops.HandleFunc("/active/{id}", r.resources.Crops.SetActiveCrop).Methods(http.MethodPut)
	crops.HandleFunc("/{id}", r.resources.Crops.GetCrop).Methods(http.MethodGet)
	crops.HandleFunc("/{id}", r.resources.Crops.UpdateCrop).Methods(http.MethodPut)
	crops.HandleFunc("/{id}", r.resources.Crops.DeleteCrop).Methods(http.MethodDelete)

	// Alerts
	alerts := api.PathPrefix("/alerts").Subrouter()
	alerts.HandleFunc("", r.resources.Alerts.ListAlerts).Methods(http.MethodGet)
	alerts.HandleFunc("/read-all", r.resources.Alerts.MarkAllRead).Methods(http.MethodPost)
	alerts.HandleFunc("/{id}/read", r.resources.Alerts.MarkRead).Methods(http.MethodPost)

	// Simulation
	api.HandleFunc("/simulation", r.resources.Simulation.Snapshot).Methods(http.MethodGet)
	api.HandleFunc("/simulation/tick", r.resources.Simulation.Tick).Methods(http.MethodPost)
}

func serveSwagger(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(doc))
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}
