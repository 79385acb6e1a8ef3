package repository

import (
	"context"
	"time"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/database"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/models"
)

// CropRepository defines the interface for crop profile operations
type CropRepository interface {
	database.Repository
	Create(ctx context.Context, crop *models.CropProfile) error
	Get(ctx context.Context, id string) (*models.CropProfile, error)
	// First returns the oldest profile by (created_at, id), or a not-found error.
	First(ctx context.Context) (*models.CropProfile, error)
	Update(ctx context.Context, crop *models.CropProfile) error
	Delete(ctx context.Context, id string) error
	DeleteTx(ctx context.Context, tx database.Transaction, id string) error
	List(ctx context.Context) ([]*models.CropProfile, error)
	Count(ctx context.Context) (int64, error)
}

// DeviceRepository defines the interface for actuator state
type DeviceRepository interface {
	Create(ctx context.Context, device *models.Device) error
	Get(ctx context.Context, id string) (*models.Device, error)
	List(ctx context.Context) ([]*models.Device, error)
	// SetState writes an absolute state, used by auto-control.
	SetState(ctx context.Context, id string, on bool) (*models.Device, error)
	// Toggle flips the state atomically, used by manual control.
	Toggle(ctx context.Context, id string) (*models.Device, error)
	Count(ctx context.Context) (int64, error)
}

// ReadingRepository defines the interface for classified sensor readings
type ReadingRepository interface {
	Insert(ctx context.Context, reading *models.SensorReading) error
	Latest(ctx context.Context) (*models.SensorReading, error)
	History(ctx context.Context, filters models.ReadingFilters) ([]*models.SensorReading, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
	ClearCrop(ctx context.Context, tx database.Transaction, cropID string) error
}

// AlertRepository defines the interface for alerts
type AlertRepository interface {
	CreateBatch(ctx context.Context, alerts []models.Alert) error
	List(ctx context.Context, filters models.AlertFilters) ([]*models.Alert, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) (int64, error)
	UnreadSensorTypes(ctx context.Context) (map[models.Metric]bool, error)
}

// ActiveCropStore remembers which crop profile is currently grown
type ActiveCropStore interface {
	// Get returns "" when no crop is selected.
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, cropID string) error
	// ClearIf removes the selection only when it still points at cropID.
	ClearIf(ctx context.Context, cropID string) error
}

// ReadingMirror receives a copy of every persisted reading
type ReadingMirror interface {
	WriteReading(reading *models.SensorReading)
}
