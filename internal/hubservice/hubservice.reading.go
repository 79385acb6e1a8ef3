package hubservice

import (
	"context"
	"time"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/engine"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/errors"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/models"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/simulator"
	nuts "github.com/vaudience/go-nuts"
)

// ReadingService handles sensor reading business logic
type ReadingService interface {
	IngestReading(ctx context.Context, raw models.RawReading) (*models.SensorReading, error)
	LatestReading(ctx context.Context) (*models.SensorReading, error)
	ReadingHistory(ctx context.Context, filters models.ReadingFilters) ([]*models.SensorReading, error)
	ReadingStatus(ctx context.Context) (*models.ReadingStatus, error)
	GenerateSample(ctx context.Context) (*models.SensorReading, error)
}

func (s *HubService) IngestReading(ctx context.Context, raw models.RawReading) (*models.SensorReading, error) {
	return s.Ingestor.Ingest(ctx, raw)
}

func (s *HubService) LatestReading(ctx context.Context) (*models.SensorReading, error) {
	return s.Readings.Latest(ctx)
}

func (s *HubService) ReadingHistory(ctx context.Context, filters models.ReadingFilters) ([]*models.SensorReading, error) {
	filters.Normalize()
	return s.Readings.History(ctx, filters)
}

// ReadingStatus re-evaluates the latest reading against the current profile.
// Display never fails on a missing profile; every metric then shows normal.
func (s *HubService) ReadingStatus(ctx context.Context) (*models.ReadingStatus, error) {
	latest, err := s.Readings.Latest(ctx)
	if err != nil {
		return nil, err
	}

	profile, err := s.Profiles.Default(ctx)
	if err != nil {
		nuts.L.Warnf("[ReadingService] Profile lookup failed, showing status without bounds: %v", err)
		profile = nil
	}

	return &models.ReadingStatus{
		Reading:   latest,
		Crop:      profile,
		Status:    engine.EvaluateForDisplay(latest.Measurements, profile),
		Feed:      feedState(s.now().Sub(latest.CreatedAt)),
		UpdatedAt: latest.CreatedAt,
	}, nil
}

// GenerateSample draws each metric uniformly from the default profile's band
// widened by 20% of its width on both sides, then pushes the reading through
// the normal ingestion path.
func (s *HubService) GenerateSample(ctx context.Context) (*models.SensorReading, error) {
	profile, err := s.Profiles.Default(ctx)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, errors.NewConfigurationError("no crop profile available to sample from", nil)
	}

	s.rngMu.Lock()
	m := simulator.GenerateSample(profile, s.rng)
	s.rngMu.Unlock()

	raw := models.NewRawReading(m)
	raw.CropID = &profile.ID
	return s.Ingestor.Ingest(ctx, raw)
}

// feedState describes how fresh the newest reading is.
func feedState(age time.Duration) string {
	switch {
	case age < 5*time.Minute:
		return "online"
	case age < 15*time.Minute:
		return "stale"
	default:
		return "offline"
	}
}
