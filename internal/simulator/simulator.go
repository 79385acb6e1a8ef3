package simulator

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/engine"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/models"
	"github.com/robfig/cron/v3"
	nuts "github.com/vaudience/go-nuts"
)

// walk bounds one metric's random walk.
type walk struct {
	step     float64
	min, max float64
	decimals int
}

var walks = map[models.Metric]walk{
	models.MetricAirTemp:   {step: 0.15, min: 15, max: 35, decimals: 1},
	models.MetricWaterTemp: {step: 0.1, min: 15, max: 30, decimals: 1},
	models.MetricHumidity:  {step: 1, min: 40, max: 90, decimals: 0},
	models.MetricPH:        {step: 0.05, min: 4.5, max: 7.5, decimals: 1},
	models.MetricTDS:       {step: 10, min: 500, max: 1800, decimals: 0},
}

// InitialValues is where every simulation starts.
var InitialValues = models.Measurements{AirTemp: 23.5, WaterTemp: 21.2, Humidity: 65, PH: 6.1, TDS: 750}

const historySize = 25

// Simulated link drops: checked on connectionSpec, a drop happens with
// dropChance and lasts between minOutage and minOutage+outageJitter.
const (
	connectionSpec = "@every 30s"
	dropChance     = 0.05
	minOutage      = 3 * time.Second
	outageJitter   = 5 * time.Second
)

// ProfileSource supplies the profile simulated values are graded against.
type ProfileSource interface {
	Default(ctx context.Context) (*models.CropProfile, error)
}

// Sink receives simulated readings, normally the ingestion pipeline.
type Sink interface {
	Ingest(ctx context.Context, raw models.RawReading) (*models.SensorReading, error)
}

type HistoryPoint struct {
	Timestamp time.Time `json:"timestamp"`
	models.Measurements
}

// Snapshot is the pull view of the simulation.
type Snapshot struct {
	Values    models.Measurements `json:"values"`
	Status    models.StatusVector `json:"status"`
	Crop      *models.CropProfile `json:"crop,omitempty"`
	UpdatedAt time.Time           `json:"updated_at"`
	Ticks     int64               `json:"ticks"`
	Connected bool                `json:"connected"`
	History   []HistoryPoint      `json:"history"`
}

// Simulator owns a random-walk sensor state. State only changes on ticks the
// simulator schedules itself; readers pull snapshots.
type Simulator struct {
	profiles ProfileSource
	sink     Sink
	now      func() time.Time

	mu        sync.RWMutex
	rng       *rand.Rand
	raw       models.Measurements
	values    models.Measurements
	updatedAt time.Time
	ticks     int64
	history   []HistoryPoint

	dropChance   float64
	offlineUntil time.Time

	cron *cron.Cron
}

type Option func(*Simulator)

// WithSink feeds simulated values into ingestion on the ingest schedule.
func WithSink(sink Sink) Option {
	return func(s *Simulator) { s.sink = sink }
}

func WithClock(now func() time.Time) Option {
	return func(s *Simulator) { s.now = now }
}

// New creates a simulator. A zero seed picks a time-based one.
func New(profiles ProfileSource, seed int64, opts ...Option) *Simulator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s := &Simulator{
		profiles: profiles,
		now:      time.Now,
		rng:      rand.New(rand.NewSource(seed)),
		raw:        InitialValues,
		values:     InitialValues,
		dropChance: dropChance,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.updatedAt = s.now()
	s.history = seedHistory(s.updatedAt)
	return s
}

// seedHistory produces a smooth 24h curve ending at now.
func seedHistory(now time.Time) []HistoryPoint {
	points := make([]HistoryPoint, 0, historySize)
	for i := historySize - 1; i >= 0; i-- {
		x := float64(i)
		points = append(points, HistoryPoint{
			Timestamp: now.Add(-time.Duration(i) * time.Hour),
			Measurements: models.Measurements{
				AirTemp:   round(22+math.Sin(x/4)*3, 1),
				WaterTemp: round(20+math.Sin(x/8)*2, 1),
				Humidity:  round(65+math.Sin(x/6)*8, 0),
				PH:        round(6.0+math.Sin(x/12)*0.4, 1),
				TDS:       round(800+math.Sin(x/6)*150, 0),
			},
		})
	}
	return points
}

// Tick advances every metric by one bounded random step. The walk runs on
// unrounded values; only the published values are rounded.
func (s *Simulator) Tick() models.Measurements {
	s.mu.Lock()
	defer s.mu.Unlock()

	var raw, next models.Measurements
	for _, metric := range models.AllMetrics {
		w := walks[metric]
		v := s.raw.Get(metric) + (s.rng.Float64()-0.5)*2*w.step
		v = math.Max(w.min, math.Min(w.max, v))
		setMetric(&raw, metric, v)
		setMetric(&next, metric, round(v, w.decimals))
	}
	s.raw = raw
	s.values = next
	s.updatedAt = s.now()
	s.ticks++
	return next
}

// CheckConnection may start a simulated outage of the sensor link.
func (s *Simulator) CheckConnection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if now.Before(s.offlineUntil) || s.rng.Float64() >= s.dropChance {
		return
	}
	s.offlineUntil = now.Add(minOutage + time.Duration(s.rng.Float64()*float64(outageJitter)))
	nuts.L.Infof("[Simulator] Sensor link dropped until %s", s.offlineUntil.Format(time.TimeOnly))
}

// Connected reports whether the simulated sensor link is up.
func (s *Simulator) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.now().Before(s.offlineUntil)
}

func setMetric(m *models.Measurements, metric models.Metric, v float64) {
	switch metric {
	case models.MetricAirTemp:
		m.AirTemp = v
	case models.MetricWaterTemp:
		m.WaterTemp = v
	case models.MetricHumidity:
		m.Humidity = v
	case models.MetricPH:
		m.PH = v
	case models.MetricTDS:
		m.TDS = v
	}
}

// RecordHistory appends the current values to the rolling 24h history.
func (s *Simulator) RecordHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, HistoryPoint{Timestamp: s.now(), Measurements: s.values})
	if len(s.history) > historySize {
		s.history = s.history[len(s.history)-historySize:]
	}
}

func (s *Simulator) Values() models.Measurements {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values
}

// Snapshot grades the current values with the display policy, so a missing
// profile shows everything as normal.
func (s *Simulator) Snapshot(ctx context.Context) Snapshot {
	s.mu.RLock()
	snap := Snapshot{
		Values:    s.values,
		UpdatedAt: s.updatedAt,
		Ticks:     s.ticks,
		Connected: !s.now().Before(s.offlineUntil),
		History:   append([]HistoryPoint(nil), s.history...),
	}
	s.mu.RUnlock()

	if s.profiles != nil {
		crop, err := s.profiles.Default(ctx)
		if err != nil {
			nuts.L.Warnf("[Simulator] Could not resolve profile: %v", err)
		}
		snap.Crop = crop
	}
	snap.Status = engine.EvaluateForDisplay(snap.Values, snap.Crop)
	return snap
}

// Feed pushes the current values through the sink. Nothing is sent during a
// simulated outage.
func (s *Simulator) Feed(ctx context.Context) (*models.SensorReading, error) {
	if s.sink == nil || !s.Connected() {
		return nil, nil
	}
	return s.sink.Ingest(ctx, models.NewRawReading(s.Values()))
}

// Start schedules ticks, hourly history and, with a sink, the ingest feed.
func (s *Simulator) Start(tickSpec, ingestSpec string) error {
	c := cron.New()
	if _, err := c.AddFunc(tickSpec, func() { s.Tick() }); err != nil {
		return err
	}
	if _, err := c.AddFunc("@hourly", s.RecordHistory); err != nil {
		return err
	}
	if _, err := c.AddFunc(connectionSpec, s.CheckConnection); err != nil {
		return err
	}
	if s.sink != nil && ingestSpec != "" {
		_, err := c.AddFunc(ingestSpec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if reading, err := s.Feed(ctx); err != nil {
				nuts.L.Errorf("[Simulator] Feed failed: %v", err)
			} else if reading != nil {
				nuts.L.Debugf("[Simulator] Fed reading %s", reading.ID)
			}
		})
		if err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.cron = c
	s.mu.Unlock()
	c.Start()
	nuts.L.Infof("[Simulator] Started (tick %s, ingest %q)", tickSpec, ingestSpec)
	return nil
}

// Stop halts scheduling and waits for running jobs.
func (s *Simulator) Stop() {
	s.mu.RLock()
	c := s.cron
	s.mu.RUnlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
	nuts.L.Infof("[Simulator] Stopped")
}
