package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/database"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/errors"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

const readingColumns = `id, air_temp, water_temp, humidity, ph, tds, status, crop_id, created_at`

type ReadingRepo struct {
	PostgresBaseRepo
}

func NewReadingRepository(db database.DB) *ReadingRepo {
	return &ReadingRepo{PostgresBaseRepo: PostgresBaseRepo{db: db}}
}

// Insert assigns id and timestamp when unset and stores the classified reading.
func (r *ReadingRepo) Insert(ctx context.Context, reading *models.SensorReading) error {
	if reading.ID == "" {
		reading.ID = nuts.NID("rd", 12)
	}
	if reading.CreatedAt.IsZero() {
		reading.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO sensor_readings (` + readingColumns + `)
		VALUES (:id, :air_temp, :water_temp, :humidity, :ph, :tds, :status, :crop_id, :created_at)`

	if _, err := r.db.GetDB().NamedExecContext(ctx, query, reading); err != nil {
		return errors.NewDatabaseError("failed to insert reading", err)
	}
	return nil
}

func (r *ReadingRepo) Latest(ctx context.Context) (*models.SensorReading, error) {
	reading := &models.SensorReading{}
	query := `
		SELECT ` + readingColumns + `
		FROM sensor_readings
		ORDER BY created_at DESC
		LIMIT 1`

	err := r.db.GetDB().GetContext(ctx, reading, query)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("no readings recorded yet", err)
		}
		return nil, errors.NewDatabaseError("failed to get latest reading", err)
	}
	return reading, nil
}

// History returns readings newest first.
func (r *ReadingRepo) History(ctx context.Context, filters models.ReadingFilters) ([]*models.SensorReading, error) {
	filters.Normalize()

	where := []string{}
	args := []interface{}{}
	if !filters.Since.IsZero() {
		args = append(args, filters.Since)
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filters.CropID != "" {
		args = append(args, filters.CropID)
		where = append(where, fmt.Sprintf("crop_id = $%d", len(args)))
	}

	query := `SELECT ` + readingColumns + ` FROM sensor_readings`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, filters.Limit)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args))

	readings := []*models.SensorReading{}
	if err := r.db.GetDB().SelectContext(ctx, &readings, query, args...); err != nil {
		return nil, errors.NewDatabaseError("failed to get reading history", err)
	}
	return readings, nil
}

func (r *ReadingRepo) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.GetDB().ExecContext(ctx, `DELETE FROM sensor_readings WHERE created_at < $1`, before)
	if err != nil {
		return 0, errors.NewDatabaseError("failed to delete old readings", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewDatabaseError("failed to get rows affected", err)
	}

	nuts.L.Infof("[ReadingRepo] Deleted %d readings older than %v", rows, before)
	return rows, nil
}

// ClearCrop detaches readings from a crop that is about to be deleted.
func (r *ReadingRepo) ClearCrop(ctx context.Context, tx database.Transaction, cropID string) error {
	_, err := tx.ExecContext(ctx, `UPDATE sensor_readings SET crop_id = NULL WHERE crop_id = $1`, cropID)
	if err != nil {
		return errors.NewDatabaseError("failed to detach readings from crop", err)
	}
	return nil
}
