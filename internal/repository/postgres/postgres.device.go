package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/database"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/errors"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

type DeviceRepo struct {
	PostgresBaseRepo
}

func NewDeviceRepository(db database.DB) *DeviceRepo {
	return &DeviceRepo{PostgresBaseRepo: PostgresBaseRepo{db: db}}
}

func (r *DeviceRepo) Create(ctx context.Context, device *models.Device) error {
	if device.ID == "" {
		device.ID = nuts.NID("dev", 12)
	}
	if device.LastUpdated.IsZero() {
		device.LastUpdated = time.Now().UTC()
	}

	query := `
		INSERT INTO devices (id, name, device_type, is_on, last_updated)
		VALUES (:id, :name, :device_type, :is_on, :last_updated)`

	if _, err := r.db.GetDB().NamedExecContext(ctx, query, device); err != nil {
		return errors.NewDatabaseError("failed to create device", err)
	}
	return nil
}

func (r *DeviceRepo) Get(ctx context.Context, id string) (*models.Device, error) {
	device := &models.Device{}
	err := r.db.GetDB().GetContext(ctx, device, `SELECT * FROM devices WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("device not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get device", err)
	}
	return device, nil
}

func (r *DeviceRepo) List(ctx context.Context) ([]*models.Device, error) {
	devices := []*models.Device{}
	if err := r.db.GetDB().SelectContext(ctx, &devices, `SELECT * FROM devices ORDER BY name ASC`); err != nil {
		return nil, errors.NewDatabaseError("failed to list devices", err)
	}
	return devices, nil
}

func (r *DeviceRepo) SetState(ctx context.Context, id string, on bool) (*models.Device, error) {
	query := `
		UPDATE devices SET is_on = $1, last_updated = $2
		WHERE id = $3
		RETURNING *`
	return r.updateReturning(ctx, query, on, time.Now().UTC(), id)
}

// Toggle negates is_on in a single statement so concurrent toggles never lose an update.
func (r *DeviceRepo) Toggle(ctx context.Context, id string) (*models.Device, error) {
	query := `
		UPDATE devices SET is_on = NOT is_on, last_updated = $1
		WHERE id = $2
		RETURNING *`
	return r.updateReturning(ctx, query, time.Now().UTC(), id)
}

func (r *DeviceRepo) updateReturning(ctx context.Context, query string, args ...interface{}) (*models.Device, error) {
	device := &models.Device{}
	err := r.db.GetDB().GetContext(ctx, device, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("device not found", err)
		}
		return nil, errors.NewDatabaseError("failed to update device", err)
	}
	return device, nil
}

func (r *DeviceRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetDB().GetContext(ctx, &count, `SELECT COUNT(*) FROM devices`); err != nil {
		return 0, errors.NewDatabaseError("failed to count devices", err)
	}
	return count, nil
}
