package hubservice

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/cleanup"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/errors"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/ingest"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/models"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// HubService contains all repositories and service-wide dependencies
type HubService struct {
	Crops    repository.CropRepository
	Devices  repository.DeviceRepository
	Readings repository.ReadingRepository
	Alerts   repository.AlertRepository
	Active   repository.ActiveCropStore
	Profiles *ingest.ProfileResolver
	Ingestor *ingest.Ingestor
	Cleanup  *cleanup.CleanupService

	rngMu sync.Mutex
	rng   *rand.Rand
	now   func() time.Time
}

// New creates a new HubService instance
func New(
	crops repository.CropRepository,
	devices repository.DeviceRepository,
	readings repository.ReadingRepository,
	alerts repository.AlertRepository,
	active repository.ActiveCropStore,
	ingestor *ingest.Ingestor,
	cleanupSvc *cleanup.CleanupService,
) *HubService {
	return &HubService{
		Crops:    crops,
		Devices:  devices,
		Readings: readings,
		Alerts:   alerts,
		Active:   active,
		Profiles: ingest.NewProfileResolver(crops, active),
		Ingestor: ingestor,
		Cleanup:  cleanupSvc,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      time.Now,
	}
}

// Validate checks if all required repositories are initialized
func (s *HubService) Validate() error {
	if s.Crops == nil {
		return ErrMissingRepository("crops")
	}
	if s.Devices == nil {
		return ErrMissingRepository("devices")
	}
	if s.Readings == nil {
		return ErrMissingRepository("readings")
	}
	if s.Alerts == nil {
		return ErrMissingRepository("alerts")
	}
	if s.Active == nil {
		return ErrMissingRepository("active crop store")
	}
	if s.Ingestor == nil {
		return errors.NewInternalError("missing ingestion pipeline", nil)
	}
	if s.Cleanup == nil {
		return errors.NewInternalError("missing cleanup service", nil)
	}
	return nil
}

func ErrMissingRepository(name string) error {
	return errors.NewInternalError("missing repository: "+name, nil)
}

// Seed fills empty crop and device tables with the stock set.
func (s *HubService) Seed(ctx context.Context) error {
	crops, err := s.Crops.Count(ctx)
	if err != nil {
		return err
	}
	if crops == 0 {
		base := s.now().UTC()
		for i, c := range models.DefaultCropProfiles() {
			crop := c
			// distinct timestamps keep the seed order as the fallback order
			crop.CreatedAt = base.Add(time.Duration(i) * time.Millisecond)
			if err := s.Crops.Create(ctx, &crop); err != nil {
				return err
			}
		}
		nuts.L.Infof("[HubService] Seeded default crop profiles")
	}

	devices, err := s.Devices.Count(ctx)
	if err != nil {
		return err
	}
	if devices == 0 {
		for _, d := range models.DefaultDevices() {
			device := d
			if err := s.Devices.Create(ctx, &device); err != nil {
				return err
			}
		}
		nuts.L.Infof("[HubService] Seeded default devices")
	}
	return nil
}
