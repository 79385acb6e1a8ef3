package ingest

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/engine"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/errors"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/models"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/repository"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/repository/memory"
)

var noon = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store    *memory.Store
	writer   *DeviceWriter
	ingestor *Ingestor
	crop     *models.CropProfile
}

func lettuce() *models.CropProfile {
	return &models.CropProfile{
		ID: "crop_lettuce", Name: "Lettuce",
		MinAirTemp: 15, MaxAirTemp: 24,
		MinWaterTemp: 18, MaxWaterTemp: 23,
		MinHumidity: 50, MaxHumidity: 70,
		MinPH: 5.5, MaxPH: 6.5,
		MinTDS: 560, MaxTDS: 840,
		CreatedAt: noon.Add(-24 * time.Hour),
	}
}

func seedDevices(t *testing.T, store *memory.Store) {
	t.Helper()
	devices := []models.Device{
		{ID: "heater", Name: "Water Heater", DeviceType: models.DeviceTypeHeater},
		{ID: "humidifier", Name: "Humidifier", DeviceType: models.DeviceTypeHumidifier},
		{ID: "fan", Name: "Ventilation Fan", DeviceType: models.DeviceTypeFan},
		{ID: "nutrient-pump", Name: "Nutrient Pump", DeviceType: models.DeviceTypePump},
		{ID: "ph-doser", Name: "pH Doser", DeviceType: models.DeviceTypePHAdjuster},
		{ID: "grow-light", Name: "Grow Light", DeviceType: models.DeviceTypeLight, IsOn: true},
		{ID: "water-pump", Name: "Water Circulation", DeviceType: models.DeviceTypeOther, IsOn: true},
	}
	for i := range devices {
		if err := store.Devices().Create(context.Background(), &devices[i]); err != nil {
			t.Fatal(err)
		}
	}
}

type fixtureOpts struct {
	noCrop  bool
	policy  engine.AlertPolicy
	alerts  repository.AlertRepository
	reading repository.ReadingRepository
}

func newFixture(t *testing.T, opts fixtureOpts) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{store: store}
	if !opts.noCrop {
		f.crop = lettuce()
		if err := store.Crops().Create(context.Background(), f.crop); err != nil {
			t.Fatal(err)
		}
	}
	seedDevices(t, store)

	f.writer = NewDeviceWriter(store.Devices(), 32, time.Second)
	t.Cleanup(f.writer.Stop)

	var alerts repository.AlertRepository = store.Alerts()
	if opts.alerts != nil {
		alerts = opts.alerts
	}
	var readings repository.ReadingRepository = store.Readings()
	if opts.reading != nil {
		readings = opts.reading
	}

	f.ingestor = New(
		NewProfileResolver(store.Crops(), store.Active()),
		readings,
		alerts,
		store.Devices(),
		f.writer,
		Config{SideEffectTimeout: time.Second, AlertPolicy: opts.policy},
		WithClock(func() time.Time { return noon }),
	)
	return f
}

// settle waits for side effects and for the device writer to drain.
func (f *fixture) settle() {
	f.ingestor.Wait()
	f.writer.Stop()
}

func (f *fixture) device(t *testing.T, id string) *models.Device {
	t.Helper()
	d, err := f.store.Devices().Get(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func (f *fixture) alerts(t *testing.T) []*models.Alert {
	t.Helper()
	list, err := f.store.Alerts().List(context.Background(), models.AlertFilters{})
	if err != nil {
		t.Fatal(err)
	}
	return list
}

func nominal() models.Measurements {
	return models.Measurements{AirTemp: 23.5, WaterTemp: 21.2, Humidity: 65, PH: 6.1, TDS: 750}
}

func TestIngestNominalReading(t *testing.T) {
	f := newFixture(t, fixtureOpts{})

	reading, err := f.ingestor.Ingest(context.Background(), models.NewRawReading(nominal()))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	f.settle()

	if reading.ID == "" || reading.CreatedAt.IsZero() {
		t.Errorf("expected persisted reading, got %+v", reading)
	}
	if !reading.Status.AllNormal() {
		t.Errorf("expected all normal, got %+v", reading.Status)
	}
	if reading.CropID == nil || *reading.CropID != f.crop.ID {
		t.Errorf("expected crop reference %s, got %v", f.crop.ID, reading.CropID)
	}
	if alerts := f.alerts(t); len(alerts) != 0 {
		t.Errorf("expected no alerts, got %+v", alerts)
	}
	for _, id := range []string{"heater", "humidifier", "fan", "nutrient-pump", "ph-doser"} {
		if f.device(t, id).IsOn {
			t.Errorf("%s should stay off", id)
		}
	}
	if !f.device(t, "grow-light").IsOn {
		t.Error("grow light should stay on at noon")
	}
}

func TestIngestColdWater(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	m := nominal()
	m.WaterTemp = 15.5

	reading, err := f.ingestor.Ingest(context.Background(), models.NewRawReading(m))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	f.settle()

	if reading.Status.WaterTemp != models.SeverityCritical {
		t.Errorf("waterTemp = %s, want critical", reading.Status.WaterTemp)
	}

	alerts := f.alerts(t)
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	if alerts[0].Message != "Water temperature (15.5°C) exceeds limits for Lettuce" {
		t.Errorf("unexpected message %q", alerts[0].Message)
	}
	if alerts[0].SensorType != models.MetricWaterTemp || alerts[0].Type != models.SeverityCritical || alerts[0].IsRead {
		t.Errorf("unexpected alert %+v", alerts[0])
	}

	if !f.device(t, "heater").IsOn {
		t.Error("heater should have been switched on")
	}
	if !f.device(t, "water-pump").IsOn {
		t.Error("untyped devices must be left alone")
	}
}

func TestIngestMissingFieldPersistsNothing(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	raw := models.NewRawReading(nominal())
	raw.PH = nil

	_, err := f.ingestor.Ingest(context.Background(), raw)
	if !errors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	f.settle()

	if n := f.store.Readings().Count(); n != 0 {
		t.Errorf("expected nothing persisted, got %d readings", n)
	}
	if alerts := f.alerts(t); len(alerts) != 0 {
		t.Errorf("expected no alerts, got %d", len(alerts))
	}
}

func TestIngestWithoutProfileIsConfigurationError(t *testing.T) {
	f := newFixture(t, fixtureOpts{noCrop: true})

	_, err := f.ingestor.Ingest(context.Background(), models.NewRawReading(nominal()))
	if !errors.IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if n := f.store.Readings().Count(); n != 0 {
		t.Errorf("reading must not be stored without a profile, got %d", n)
	}
}

func TestIngestExplicitProfile(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	ctx := context.Background()
	basil := &models.CropProfile{ID: "crop_basil", Name: "Basil", MinAirTemp: 18, MaxAirTemp: 30, MinWaterTemp: 20, MaxWaterTemp: 25, MinHumidity: 60, MaxHumidity: 80, MinPH: 5.5, MaxPH: 6.5, MinTDS: 700, MaxTDS: 1120}
	_ = f.store.Crops().Create(ctx, basil)

	raw := models.NewRawReading(nominal())
	id := " crop_basil "
	raw.CropID = &id

	reading, err := f.ingestor.Ingest(ctx, raw)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if *reading.CropID != "crop_basil" {
		t.Errorf("expected explicit crop, got %s", *reading.CropID)
	}
	// 65% humidity is inside basil's 60-80 band, 21.2 is inside 20-25
	if !reading.Status.AllNormal() {
		t.Errorf("expected all normal against basil, got %+v", reading.Status)
	}

	unknown := "crop_nope"
	raw.CropID = &unknown
	if _, err := f.ingestor.Ingest(ctx, raw); !errors.IsNotFound(err) {
		t.Errorf("expected not found for unknown crop, got %v", err)
	}
	f.settle()
}

func TestIngestUsesActiveCrop(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	ctx := context.Background()
	tomato := &models.CropProfile{ID: "crop_tomato", Name: "Tomato", MinAirTemp: 20, MaxAirTemp: 30, MinWaterTemp: 20, MaxWaterTemp: 26, MinHumidity: 60, MaxHumidity: 80, MinPH: 5.8, MaxPH: 6.3, MinTDS: 1120, MaxTDS: 1540, CreatedAt: noon}
	_ = f.store.Crops().Create(ctx, tomato)
	_ = f.store.Active().Set(ctx, "crop_tomato")

	reading, err := f.ingestor.Ingest(ctx, models.NewRawReading(nominal()))
	if err != nil {
		t.Fatal(err)
	}
	if *reading.CropID != "crop_tomato" {
		t.Errorf("expected active crop, got %s", *reading.CropID)
	}
	// 750ppm is below tomato's 1120 minus 10%
	if reading.Status.TDS != models.SeverityCritical {
		t.Errorf("tds = %s, want critical", reading.Status.TDS)
	}

	// a stale selection falls back to the oldest profile
	_ = f.store.Active().Set(ctx, "crop_deleted")
	reading, err = f.ingestor.Ingest(ctx, models.NewRawReading(nominal()))
	if err != nil {
		t.Fatal(err)
	}
	if *reading.CropID != f.crop.ID {
		t.Errorf("expected fallback to %s, got %s", f.crop.ID, *reading.CropID)
	}
	f.settle()
}

type failingAlerts struct {
	repository.AlertRepository
}

func (failingAlerts) CreateBatch(ctx context.Context, alerts []models.Alert) error {
	return stderrors.New("alerts table locked")
}

func TestIngestSideEffectFailureDoesNotFailIngest(t *testing.T) {
	store := memory.NewStore()
	f := newFixture(t, fixtureOpts{alerts: failingAlerts{AlertRepository: store.Alerts()}})
	m := nominal()
	m.WaterTemp = 15.5

	reading, err := f.ingestor.Ingest(context.Background(), models.NewRawReading(m))
	if err != nil {
		t.Fatalf("side effect failure leaked into ingest: %v", err)
	}
	f.settle()

	if reading.ID == "" {
		t.Error("expected persisted reading")
	}
	if !f.device(t, "heater").IsOn {
		t.Error("device control must run even when alert persistence fails")
	}
}

type failingReadings struct {
	repository.ReadingRepository
}

func (failingReadings) Insert(ctx context.Context, reading *models.SensorReading) error {
	return errors.NewDatabaseError("failed to insert reading", stderrors.New("connection refused"))
}

func TestIngestPersistenceFailureSkipsSideEffects(t *testing.T) {
	store := memory.NewStore()
	f := newFixture(t, fixtureOpts{reading: failingReadings{ReadingRepository: store.Readings()}})
	m := nominal()
	m.WaterTemp = 15.5

	_, err := f.ingestor.Ingest(context.Background(), models.NewRawReading(m))
	if !errors.IsDatabase(err) {
		t.Fatalf("expected database error, got %v", err)
	}
	f.settle()

	if alerts := f.alerts(t); len(alerts) != 0 {
		t.Errorf("no alerts expected when the reading was not stored, got %d", len(alerts))
	}
	if f.device(t, "heater").IsOn {
		t.Error("no device change expected when the reading was not stored")
	}
}

func TestAlertPolicies(t *testing.T) {
	tests := []struct {
		policy engine.AlertPolicy
		want   int
	}{
		{engine.AlertPolicyNoDedup, 3},
		{engine.AlertPolicySuppressUnread, 1},
	}
	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			f := newFixture(t, fixtureOpts{policy: tt.policy})
			m := nominal()
			m.WaterTemp = 15.5
			for i := 0; i < 3; i++ {
				if _, err := f.ingestor.Ingest(context.Background(), models.NewRawReading(m)); err != nil {
					t.Fatal(err)
				}
				f.ingestor.Wait()
			}
			f.settle()

			if got := len(f.alerts(t)); got != tt.want {
				t.Errorf("got %d alerts, want %d", got, tt.want)
			}
		})
	}
}

func TestIngestConcurrent(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	const n = 40

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m := nominal()
			if i%2 == 0 {
				m.WaterTemp = 15.5
			}
			if _, err := f.ingestor.Ingest(context.Background(), models.NewRawReading(m)); err != nil {
				errs <- fmt.Errorf("reading %d: %w", i, err)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
	f.settle()

	if got := f.store.Readings().Count(); got != n {
		t.Errorf("stored %d readings, want %d", got, n)
	}
	if got := len(f.alerts(t)); got != n/2 {
		t.Errorf("got %d alerts, want %d", got, n/2)
	}
}

func TestValidateRejectsNonFinite(t *testing.T) {
	m := nominal()
	raw := models.NewRawReading(m)
	nan := math.NaN()
	raw.TDS = &nan
	if err := Validate(raw); !errors.IsValidation(err) {
		t.Errorf("expected validation error for NaN, got %v", err)
	}
}
