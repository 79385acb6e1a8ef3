package ingest

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/engine"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/errors"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/models"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// CommandSink accepts auto-control commands for asynchronous application.
type CommandSink interface {
	Submit(cmd models.DeviceCommand) bool
}

// Config tunes the side-effect stage.
type Config struct {
	SideEffectTimeout time.Duration
	AlertPolicy       engine.AlertPolicy
}

// Ingestor validates, classifies and stores sensor readings, then dispatches
// alerting and auto-control without making the caller wait for them.
type Ingestor struct {
	profiles *ProfileResolver
	readings repository.ReadingRepository
	alerts   repository.AlertRepository
	devices  repository.DeviceRepository
	commands CommandSink
	mirror   repository.ReadingMirror
	metrics  Metrics
	config   Config
	now      func() time.Time

	wg sync.WaitGroup
}

type Option func(*Ingestor)

func WithMirror(m repository.ReadingMirror) Option {
	return func(i *Ingestor) { i.mirror = m }
}

func WithMetrics(m Metrics) Option {
	return func(i *Ingestor) { i.metrics = m }
}

// WithClock overrides the wall clock used by the light schedule.
func WithClock(now func() time.Time) Option {
	return func(i *Ingestor) { i.now = now }
}

func New(
	profiles *ProfileResolver,
	readings repository.ReadingRepository,
	alerts repository.AlertRepository,
	devices repository.DeviceRepository,
	commands CommandSink,
	config Config,
	opts ...Option,
) *Ingestor {
	if config.SideEffectTimeout <= 0 {
		config.SideEffectTimeout = 10 * time.Second
	}
	if config.AlertPolicy == "" {
		config.AlertPolicy = engine.AlertPolicyNoDedup
	}
	i := &Ingestor{
		profiles: profiles,
		readings: readings,
		alerts:   alerts,
		devices:  devices,
		commands: commands,
		metrics:  nopMetrics{},
		config:   config,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Ingest runs the synchronous path: validate, resolve profile, evaluate, persist.
// The returned reading is stored; alerts and device commands follow asynchronously.
func (i *Ingestor) Ingest(ctx context.Context, raw models.RawReading) (*models.SensorReading, error) {
	start := time.Now()
	reading, err := i.ingest(ctx, raw)
	i.metrics.ObserveIngest(outcome(err), time.Since(start))
	return reading, err
}

func (i *Ingestor) ingest(ctx context.Context, raw models.RawReading) (*models.SensorReading, error) {
	if err := Validate(raw); err != nil {
		return nil, err
	}

	profile, err := i.profiles.Resolve(ctx, raw.ProfileID())
	if err != nil {
		return nil, err
	}

	m := raw.Measurements()
	status, err := engine.EvaluateForIngestion(m, profile)
	if err != nil {
		return nil, err
	}

	cropID := profile.ID
	reading := &models.SensorReading{
		Measurements: m,
		Status:       status,
		CropID:       &cropID,
	}
	if err := i.readings.Insert(ctx, reading); err != nil {
		return nil, err
	}

	nuts.L.Debugf("[Ingest] Stored reading %s for %s, status %+v", reading.ID, profile.Name, status)

	snapshot := *reading
	i.wg.Add(1)
	go i.handleSideEffects(&snapshot, profile)

	return reading, nil
}

// Validate rejects readings with absent or non-finite metric values.
func Validate(raw models.RawReading) error {
	if missing := raw.MissingFields(); len(missing) > 0 {
		return errors.NewValidationError(
			fmt.Sprintf("missing required fields: %v", missing), nil,
		).WithDetails(map[string]any{"missing": missing})
	}
	m := raw.Measurements()
	for _, metric := range models.AllMetrics {
		v := m.Get(metric)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.NewValidationError(fmt.Sprintf("%s must be a finite number", metric), nil)
		}
	}
	return nil
}

// Wait blocks until every dispatched side effect has finished.
func (i *Ingestor) Wait() {
	i.wg.Wait()
}

// handleSideEffects runs detached from the request context. Alerts and device
// control are independent: a failure in one does not skip the other.
func (i *Ingestor) handleSideEffects(reading *models.SensorReading, profile *models.CropProfile) {
	defer i.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			nuts.L.Errorf("[Ingest] Side effects for reading %s panicked: %v", reading.ID, r)
			i.metrics.SideEffectFailed("panic")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), i.config.SideEffectTimeout)
	defer cancel()

	if err := i.createAlerts(ctx, reading, profile); err != nil {
		nuts.L.Errorf("[Ingest] Alert side effect failed for reading %s: %v", reading.ID, err)
		i.metrics.SideEffectFailed("alerts")
	}
	if err := i.controlDevices(ctx, reading, profile); err != nil {
		nuts.L.Errorf("[Ingest] Device side effect failed for reading %s: %v", reading.ID, err)
		i.metrics.SideEffectFailed("devices")
	}
	if i.mirror != nil {
		i.mirror.WriteReading(reading)
	}
}

func (i *Ingestor) createAlerts(ctx context.Context, reading *models.SensorReading, profile *models.CropProfile) error {
	alerts := engine.GenerateAlerts(reading.Measurements, reading.Status, profile)
	if len(alerts) == 0 {
		return nil
	}

	if i.config.AlertPolicy == engine.AlertPolicySuppressUnread {
		unread, err := i.alerts.UnreadSensorTypes(ctx)
		if err != nil {
			nuts.L.Warnf("[Ingest] Could not load unread alerts, emitting all: %v", err)
		} else {
			alerts = engine.SuppressUnread(alerts, unread)
		}
		if len(alerts) == 0 {
			return nil
		}
	}

	if err := i.alerts.CreateBatch(ctx, alerts); err != nil {
		return errors.NewSideEffectError("failed to persist alerts", err)
	}
	for _, a := range alerts {
		i.metrics.AlertCreated(string(a.Type))
	}
	return nil
}

func (i *Ingestor) controlDevices(ctx context.Context, reading *models.SensorReading, profile *models.CropProfile) error {
	devices, err := i.devices.List(ctx)
	if err != nil {
		return errors.NewSideEffectError("failed to load device snapshot", err)
	}

	commands := engine.ResolveDeviceTargets(reading.Measurements, profile, devices, i.now())
	for _, cmd := range commands {
		i.commands.Submit(cmd)
	}
	return nil
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}
	if apiErr, ok := errors.AsAPIError(err); ok {
		return string(apiErr.Type)
	}
	return "error"
}
