package cleanup

import (
	"context"
	"fmt"
	"time"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/errors"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/repository"
	"github.com/robfig/cron/v3"
	nuts "github.com/vaudience/go-nuts"
)

// EventRecorder receives lifecycle events, normally the monitoring service.
type EventRecorder interface {
	RecordEvent(eventName string, labels map[string]string)
}

// CleanupService coordinates deletions that span several tables and the
// periodic retention of old readings.
type CleanupService struct {
	crops    repository.CropRepository
	readings repository.ReadingRepository
	active   repository.ActiveCropStore
	events   *nuts.EventEmitter
	recorder EventRecorder
	now      func() time.Time

	cron *cron.Cron
}

// New creates a new CleanupService
func New(
	crops repository.CropRepository,
	readings repository.ReadingRepository,
	active repository.ActiveCropStore,
	recorder EventRecorder,
) *CleanupService {
	return &CleanupService{
		crops:    crops,
		readings: readings,
		active:   active,
		events:   nuts.NewEventEmitter(),
		recorder: recorder,
		now:      time.Now,
	}
}

// DeleteCrop removes a crop profile. Stored readings keep their data but lose
// the crop reference, and the active selection is cleared when it pointed here.
func (s *CleanupService) DeleteCrop(ctx context.Context, cropID string) error {
	if _, err := s.crops.Get(ctx, cropID); err != nil {
		return err
	}

	tx, err := s.crops.BeginTx(ctx)
	if err != nil {
		return errors.NewDatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback() // Will be ignored if transaction is committed

	if err := s.readings.ClearCrop(ctx, tx, cropID); err != nil {
		return fmt.Errorf("failed to detach readings: %w", err)
	}
	if err := s.crops.DeleteTx(ctx, tx, cropID); err != nil {
		return fmt.Errorf("failed to delete crop: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return errors.NewDatabaseError("failed to commit transaction", err)
	}

	// the crop is gone either way; a stale selection falls back to the first profile
	if err := s.active.ClearIf(ctx, cropID); err != nil {
		nuts.L.Warnf("[Cleanup] Could not clear active crop %s: %v", cropID, err)
	}

	s.emit("crop.deleted", cropID)
	return nil
}

// PruneReadings deletes readings older than the retention window. Alerts are kept.
func (s *CleanupService) PruneReadings(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-retention)
	n, err := s.readings.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	nuts.L.Infof("[Cleanup] Pruned %d readings older than %s", n, cutoff.Format(time.RFC3339))
	s.emit("readings.pruned", fmt.Sprint(n))
	return n, nil
}

// StartRetention schedules PruneReadings on a cron spec.
func (s *CleanupService) StartRetention(spec string, retention time.Duration) error {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := s.PruneReadings(ctx, retention); err != nil {
			nuts.L.Errorf("[Cleanup] Retention run failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid retention schedule %q: %w", spec, err)
	}
	s.cron = c
	c.Start()
	nuts.L.Infof("[Cleanup] Retention scheduled (%s, keep %s)", spec, retention)
	return nil
}

// Stop waits for a running retention job to finish.
func (s *CleanupService) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// OnCleanup registers a callback for cleanup events
func (s *CleanupService) OnCleanup(event string, handler func(id string)) {
	// the emitter matches listener parameters by reflection, so the handler
	// is registered with its exact signature
	if _, err := s.events.On(event, nuts.NID("cleanup", 8), handler); err != nil {
		nuts.L.Errorf("[Cleanup] Failed to register %s handler: %v", event, err)
	}
}

func (s *CleanupService) emit(event, id string) {
	if err := s.events.Emit(event, id); err != nil {
		nuts.L.Warnf("[Cleanup] Emitting %s failed: %v", event, err)
	}
	if s.recorder != nil {
		s.recorder.RecordEvent(event, map[string]string{"id": id})
	}
}
