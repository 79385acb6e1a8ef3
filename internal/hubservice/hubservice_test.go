package hubservice

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/cleanup"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/errors"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/ingest"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/models"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/repository/memory"
)

var noon = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*HubService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	writer := ingest.NewDeviceWriter(store.Devices(), 16, time.Second)
	t.Cleanup(writer.Stop)

	ing := ingest.New(
		ingest.NewProfileResolver(store.Crops(), store.Active()),
		store.Readings(), store.Alerts(), store.Devices(), writer,
		ingest.Config{},
		ingest.WithClock(func() time.Time { return noon }),
	)
	t.Cleanup(ing.Wait)

	svc := New(
		store.Crops(), store.Devices(), store.Readings(), store.Alerts(), store.Active(),
		ing, cleanup.New(store.Crops(), store.Readings(), store.Active(), nil),
	)
	svc.now = func() time.Time { return noon }
	if err := svc.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	return svc, store
}

func seeded(t *testing.T) (*HubService, *memory.Store) {
	t.Helper()
	svc, store := newService(t)
	if err := svc.Seed(context.Background()); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	return svc, store
}

func TestValidateMissingRepository(t *testing.T) {
	svc := &HubService{}
	if err := svc.Validate(); err == nil {
		t.Fatal("expected error for empty service")
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := seeded(t)
	if err := svc.Seed(ctx); err != nil {
		t.Fatal(err)
	}

	crops, _ := svc.ListCrops(ctx)
	if len(crops) != len(models.DefaultCropProfiles()) {
		t.Errorf("crops = %d, want %d", len(crops), len(models.DefaultCropProfiles()))
	}
	devices, _ := svc.ListDevices(ctx)
	if len(devices) != len(models.DefaultDevices()) {
		t.Errorf("devices = %d, want %d", len(devices), len(models.DefaultDevices()))
	}

	active, err := svc.ActiveCrop(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if active.Name != "Lettuce" {
		t.Errorf("default profile = %s, want Lettuce (first seeded)", active.Name)
	}
}

func TestCreateCropValidation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		crop models.CropProfile
	}{
		{"empty name", models.CropProfile{Name: "  "}},
		{"inverted bounds", models.CropProfile{Name: "Mint", MinPH: 7, MaxPH: 6}},
		{"nan bound", models.CropProfile{Name: "Mint", MinTDS: math.NaN()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			crop := tt.crop
			if err := svc.CreateCrop(ctx, &crop); !errors.IsValidation(err) {
				t.Errorf("err = %v, want validation error", err)
			}
		})
	}
}

func TestCropLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	mint := &models.CropProfile{Name: " Mint ", MinAirTemp: 15, MaxAirTemp: 25, MinWaterTemp: 18, MaxWaterTemp: 22,
		MinHumidity: 50, MaxHumidity: 70, MinPH: 6, MaxPH: 7, MinTDS: 800, MaxTDS: 1200}
	if err := svc.CreateCrop(ctx, mint); err != nil {
		t.Fatalf("CreateCrop: %v", err)
	}
	if mint.ID == "" || mint.Name != "Mint" {
		t.Fatalf("created crop = %+v", mint)
	}

	update := *mint
	update.MaxTDS = 1300
	update.CreatedAt = time.Time{}
	if err := svc.UpdateCrop(ctx, &update); err != nil {
		t.Fatalf("UpdateCrop: %v", err)
	}
	got, _ := svc.GetCrop(ctx, mint.ID)
	if got.MaxTDS != 1300 || !got.CreatedAt.Equal(mint.CreatedAt) {
		t.Errorf("updated crop = %+v", got)
	}

	if _, err := svc.SetActiveCrop(ctx, mint.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteCrop(ctx, mint.ID); err != nil {
		t.Fatalf("DeleteCrop: %v", err)
	}
	if _, err := svc.ActiveCrop(ctx); !errors.IsNotFound(err) {
		t.Errorf("ActiveCrop after deleting the only crop: err = %v", err)
	}
}

func TestUpdateUnknownCrop(t *testing.T) {
	svc, _ := newService(t)
	err := svc.UpdateCrop(context.Background(), &models.CropProfile{ID: "crop_missing", Name: "X"})
	if !errors.IsNotFound(err) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestSetActiveCropUnknown(t *testing.T) {
	svc, _ := seeded(t)
	if _, err := svc.SetActiveCrop(context.Background(), "crop_missing"); !errors.IsNotFound(err) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestReadingStatusIsFailOpen(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)

	cold := models.Measurements{AirTemp: 5, WaterTemp: 5, Humidity: 10, PH: 3, TDS: 10}
	store.Readings().Insert(ctx, &models.SensorReading{Measurements: cold, CreatedAt: noon.Add(-time.Minute)})

	status, err := svc.ReadingStatus(ctx)
	if err != nil {
		t.Fatalf("ReadingStatus: %v", err)
	}
	if status.Crop != nil {
		t.Errorf("crop = %+v, want nil without profiles", status.Crop)
	}
	if !status.Status.AllNormal() {
		t.Errorf("status = %+v, want all normal without a profile", status.Status)
	}
	if status.Feed != "online" {
		t.Errorf("feed = %s, want online", status.Feed)
	}
}

func TestReadingStatusUsesActiveProfile(t *testing.T) {
	ctx := context.Background()
	svc, store := seeded(t)

	m := models.Measurements{AirTemp: 20, WaterTemp: 15.5, Humidity: 60, PH: 6, TDS: 700}
	store.Readings().Insert(ctx, &models.SensorReading{Measurements: m, CreatedAt: noon.Add(-20 * time.Minute)})

	status, err := svc.ReadingStatus(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if status.Status.WaterTemp != models.SeverityCritical {
		t.Errorf("water temp = %s, want critical", status.Status.WaterTemp)
	}
	if status.Feed != "offline" {
		t.Errorf("feed = %s, want offline", status.Feed)
	}
}

func TestReadingStatusWithoutReadings(t *testing.T) {
	svc, _ := seeded(t)
	if _, err := svc.ReadingStatus(context.Background()); !errors.IsNotFound(err) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestGenerateSample(t *testing.T) {
	ctx := context.Background()
	svc, store := seeded(t)

	reading, err := svc.GenerateSample(ctx)
	if err != nil {
		t.Fatalf("GenerateSample: %v", err)
	}
	active, _ := svc.ActiveCrop(ctx)
	if reading.CropID == nil || *reading.CropID != active.ID {
		t.Errorf("sample crop = %v, want %s", reading.CropID, active.ID)
	}
	if store.Readings().Count() != 1 {
		t.Errorf("readings = %d, want 1", store.Readings().Count())
	}
}

func TestGenerateSampleWithoutProfile(t *testing.T) {
	svc, _ := newService(t)
	if _, err := svc.GenerateSample(context.Background()); !errors.IsConfiguration(err) {
		t.Errorf("err = %v, want configuration error", err)
	}
}

func TestToggleDevice(t *testing.T) {
	ctx := context.Background()
	svc, _ := seeded(t)

	d, err := svc.ToggleDevice(ctx, "heater")
	if err != nil {
		t.Fatal(err)
	}
	if !d.IsOn {
		t.Error("heater should be on after first toggle")
	}
	d, _ = svc.ToggleDevice(ctx, "heater")
	if d.IsOn {
		t.Error("heater should be off after second toggle")
	}
	if _, err := svc.ToggleDevice(ctx, "nope"); !errors.IsNotFound(err) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestAlerts(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)
	store.Alerts().CreateBatch(ctx, []models.Alert{
		{Message: "a", SensorType: models.MetricPH, Type: models.SeverityWarning},
		{Message: "b", SensorType: models.MetricTDS, Type: models.SeverityCritical},
	})

	all, err := svc.ListAlerts(ctx, models.AlertFilters{})
	if err != nil || len(all) != 2 {
		t.Fatalf("ListAlerts = %d, %v", len(all), err)
	}
	if err := svc.MarkAlertRead(ctx, all[0].ID); err != nil {
		t.Fatal(err)
	}
	unread, _ := svc.ListAlerts(ctx, models.AlertFilters{Unread: true})
	if len(unread) != 1 {
		t.Errorf("unread = %d, want 1", len(unread))
	}
	n, _ := svc.MarkAllAlertsRead(ctx)
	if n != 1 {
		t.Errorf("MarkAllAlertsRead = %d, want 1", n)
	}
}

func TestFeedState(t *testing.T) {
	for age, want := range map[time.Duration]string{
		time.Minute:      "online",
		10 * time.Minute: "stale",
		time.Hour:        "offline",
	} {
		if got := feedState(age); got != want {
			t.Errorf("feedState(%v) = %s, want %s", age, got, want)
		}
	}
}
