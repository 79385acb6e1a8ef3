package simulator

import (
	"context"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/models"
)

type fixedProfile struct {
	crop *models.CropProfile
}

func (f fixedProfile) Default(ctx context.Context) (*models.CropProfile, error) {
	return f.crop, nil
}

type captureSink struct {
	got []models.RawReading
}

func (c *captureSink) Ingest(ctx context.Context, raw models.RawReading) (*models.SensorReading, error) {
	c.got = append(c.got, raw)
	return &models.SensorReading{ID: "rd_sim", Measurements: raw.Measurements()}, nil
}

func lettuce() *models.CropProfile {
	p := models.DefaultCropProfiles()[0]
	p.ID = "crop_lettuce"
	return &p
}

func hasDecimals(v float64, decimals int) bool {
	p := math.Pow(10, float64(decimals))
	return math.Abs(v*p-math.Round(v*p)) < 1e-6
}

func TestTickStaysWithinClamps(t *testing.T) {
	s := New(nil, 42)
	prev := s.Values()
	for i := 0; i < 20000; i++ {
		v := s.Tick()
		for _, metric := range models.AllMetrics {
			w := walks[metric]
			got := v.Get(metric)
			if got < w.min || got > w.max {
				t.Fatalf("tick %d: %s = %v outside [%v, %v]", i, metric, got, w.min, w.max)
			}
			// rounding on both ends can add one unit of the last decimal
			limit := w.step + math.Pow(10, -float64(w.decimals)) + 1e-9
			if d := math.Abs(got - prev.Get(metric)); d > limit {
				t.Fatalf("tick %d: %s moved %v, more than %v", i, metric, d, limit)
			}
			if !hasDecimals(got, w.decimals) {
				t.Fatalf("tick %d: %s = %v not rounded to %d decimals", i, metric, got, w.decimals)
			}
		}
		prev = v
	}
}

func TestTickIsDeterministicForSeed(t *testing.T) {
	a, b := New(nil, 7), New(nil, 7)
	for i := 0; i < 100; i++ {
		if a.Tick() != b.Tick() {
			t.Fatalf("diverged at tick %d", i)
		}
	}
}

func TestSnapshotUsesDisplayPolicy(t *testing.T) {
	s := New(fixedProfile{}, 1)
	snap := s.Snapshot(context.Background())
	if snap.Crop != nil {
		t.Errorf("expected no crop, got %+v", snap.Crop)
	}
	if !snap.Status.AllNormal() {
		t.Errorf("no profile must show all normal, got %+v", snap.Status)
	}

	s = New(fixedProfile{crop: lettuce()}, 1)
	snap = s.Snapshot(context.Background())
	if snap.Values != InitialValues {
		t.Errorf("unexpected initial values %+v", snap.Values)
	}
	if !snap.Status.AllNormal() {
		t.Errorf("initial values are inside lettuce bands, got %+v", snap.Status)
	}
	if len(snap.History) != historySize {
		t.Errorf("expected %d seeded history points, got %d", historySize, len(snap.History))
	}
}

func TestRecordHistoryKeepsWindow(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := New(nil, 3, WithClock(func() time.Time { return now }))
	s.Tick()
	s.RecordHistory()
	s.RecordHistory()

	snap := s.Snapshot(context.Background())
	if len(snap.History) != historySize {
		t.Fatalf("history grew to %d", len(snap.History))
	}
	last := snap.History[len(snap.History)-1]
	if last.Measurements != s.Values() || !last.Timestamp.Equal(now) {
		t.Errorf("unexpected last point %+v", last)
	}
}

func TestFeedIngestsCurrentValues(t *testing.T) {
	sink := &captureSink{}
	s := New(nil, 5, WithSink(sink))
	s.Tick()

	reading, err := s.Feed(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(sink.got) != 1 || sink.got[0].Measurements() != s.Values() {
		t.Errorf("sink received %+v", sink.got)
	}
	if reading.ID != "rd_sim" {
		t.Errorf("unexpected reading %+v", reading)
	}
}

func TestConnectionDropsAndRecovers(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sink := &captureSink{}
	s := New(nil, 9, WithSink(sink), WithClock(func() time.Time { return now }))

	s.dropChance = 0
	s.CheckConnection()
	if !s.Snapshot(context.Background()).Connected {
		t.Fatal("link should stay up without drops")
	}

	s.dropChance = 1
	s.CheckConnection()
	if s.Connected() || s.Snapshot(context.Background()).Connected {
		t.Fatal("expected a simulated outage")
	}
	if reading, err := s.Feed(context.Background()); reading != nil || err != nil || len(sink.got) != 0 {
		t.Errorf("feed during outage = %+v, %v, %d sent", reading, err, len(sink.got))
	}

	now = now.Add(minOutage + outageJitter)
	if !s.Connected() {
		t.Error("link should recover after the outage window")
	}
	if _, err := s.Feed(context.Background()); err != nil || len(sink.got) != 1 {
		t.Errorf("feed after recovery: %v, %d sent", err, len(sink.got))
	}
}

func TestStartRejectsBadSpec(t *testing.T) {
	s := New(nil, 1)
	if err := s.Start("not a spec", ""); err == nil {
		t.Error("expected error for invalid cron spec")
	}
	s.Stop()
}

func TestStartTicks(t *testing.T) {
	s := New(nil, 1)
	if err := s.Start("@every 1s", ""); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for s.Snapshot(context.Background()).Ticks == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	s.Stop()
	if s.Snapshot(context.Background()).Ticks == 0 {
		t.Error("expected at least one scheduled tick")
	}
}

func TestGenerateSampleRange(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	profile := lettuce()
	for i := 0; i < 5000; i++ {
		m := GenerateSample(profile, rng)
		for _, metric := range models.AllMetrics {
			min, max := profile.Bounds(metric)
			spread := (max - min) * SampleVariance
			// rounding may push a value up to one unit past the range
			if v := m.Get(metric); v < min-spread-0.5 || v > max+spread+0.5 {
				t.Fatalf("%s = %v outside [%v, %v]", metric, v, min-spread, max+spread)
			}
		}
		if !hasDecimals(m.Humidity, 0) || !hasDecimals(m.TDS, 0) {
			t.Fatalf("humidity and tds must be whole numbers, got %v and %v", m.Humidity, m.TDS)
		}
		if !hasDecimals(m.AirTemp, 1) || !hasDecimals(m.PH, 1) {
			t.Fatalf("expected one decimal, got %v and %v", m.AirTemp, m.PH)
		}
	}
}
