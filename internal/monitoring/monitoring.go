package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	nuts "github.com/vaudience/go-nuts"
)

// Config holds monitoring configuration
type Config struct {
	Namespace string
}

// Service owns the Prometheus registry and every collector of the hub
type Service struct {
	config   Config
	registry *prometheus.Registry

	events           *prometheus.CounterVec
	readingsIngested *prometheus.CounterVec
	ingestDuration   prometheus.Histogram
	alertsCreated    *prometheus.CounterVec
	deviceCommands   *prometheus.CounterVec
	sideEffectErrors *prometheus.CounterVec
	deviceQueueDepth prometheus.Gauge
}

// NewService creates a new monitoring service with its own registry
func NewService(config Config) *Service {
	if config.Namespace == "" {
		config.Namespace = "hydro"
	}
	ns := config.Namespace

	s := &Service{
		config:   config,
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "events_total",
			Help:      "Lifecycle events recorded by the hub.",
		}, []string{"event"}),
		readingsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "readings_ingested_total",
			Help:      "Sensor readings submitted for ingestion, by outcome.",
		}, []string{"outcome"}),
		ingestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "ingest_duration_seconds",
			Help:      "Latency of the synchronous part of ingestion.",
			Buckets:   prometheus.DefBuckets,
		}),
		alertsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "alerts_created_total",
			Help:      "Alerts persisted by the alert generator, by severity.",
		}, []string{"severity"}),
		deviceCommands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "device_commands_total",
			Help:      "Auto-control commands, by device type and outcome.",
		}, []string{"device_type", "outcome"}),
		sideEffectErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "side_effect_errors_total",
			Help:      "Failed ingestion side effects, by kind.",
		}, []string{"kind"}),
		deviceQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "device_queue_depth",
			Help:      "Commands waiting in the device writer queue.",
		}),
	}

	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		s.events,
		s.readingsIngested,
		s.ingestDuration,
		s.alertsCreated,
		s.deviceCommands,
		s.sideEffectErrors,
		s.deviceQueueDepth,
	)
	return s
}

// Handler exposes the registry in the Prometheus text format
func (s *Service) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests and extra collectors
func (s *Service) Registry() *prometheus.Registry {
	return s.registry
}

// RecordEvent records a monitored event with labels
func (s *Service) RecordEvent(eventName string, labels map[string]string) {
	nuts.L.Debugf("[Monitoring] Event %s recorded at %v with labels: %v", eventName, time.Now(), labels)
	s.events.WithLabelValues(eventName).Inc()
}

func (s *Service) ObserveIngest(outcome string, d time.Duration) {
	s.readingsIngested.WithLabelValues(outcome).Inc()
	s.ingestDuration.Observe(d.Seconds())
}

func (s *Service) AlertCreated(severity string) {
	s.alertsCreated.WithLabelValues(severity).Inc()
}

func (s *Service) DeviceCommand(deviceType, outcome string) {
	s.deviceCommands.WithLabelValues(deviceType, outcome).Inc()
}

func (s *Service) SideEffectFailed(kind string) {
	s.sideEffectErrors.WithLabelValues(kind).Inc()
}

func (s *Service) SetDeviceQueueDepth(n int) {
	s.deviceQueueDepth.Set(float64(n))
}
