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

type CropRepo struct {
	PostgresBaseRepo
}

func NewCropRepository(db database.DB) *CropRepo {
	return &CropRepo{PostgresBaseRepo: PostgresBaseRepo{db: db}}
}

func (r *CropRepo) Create(ctx context.Context, crop *models.CropProfile) error {
	if crop.ID == "" {
		crop.ID = nuts.NID("crop", 12)
	}
	if crop.CreatedAt.IsZero() {
		crop.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO crops (
			id, name, min_air_temp, max_air_temp, min_water_temp, max_water_temp,
			min_humidity, max_humidity, min_ph, max_ph, min_tds, max_tds, created_at
		) VALUES (
			:id, :name, :min_air_temp, :max_air_temp, :min_water_temp, :max_water_temp,
			:min_humidity, :max_humidity, :min_ph, :max_ph, :min_tds, :max_tds, :created_at
		)`

	if _, err := r.db.GetDB().NamedExecContext(ctx, query, crop); err != nil {
		return errors.NewDatabaseError("failed to create crop", err)
	}
	return nil
}

func (r *CropRepo) Get(ctx context.Context, id string) (*models.CropProfile, error) {
	crop := &models.CropProfile{}
	query := `SELECT * FROM crops WHERE id = $1`

	err := r.db.GetDB().GetContext(ctx, crop, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("crop not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get crop", err)
	}
	return crop, nil
}

func (r *CropRepo) First(ctx context.Context) (*models.CropProfile, error) {
	crop := &models.CropProfile{}
	query := `SELECT * FROM crops ORDER BY created_at ASC, id ASC LIMIT 1`

	err := r.db.GetDB().GetContext(ctx, crop, query)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("no crop profiles configured", err)
		}
		return nil, errors.NewDatabaseError("failed to get default crop", err)
	}
	return crop, nil
}

func (r *CropRepo) Update(ctx context.Context, crop *models.CropProfile) error {
	query := `
		UPDATE crops SET
			name = :name,
			min_air_temp = :min_air_temp,
			max_air_temp = :max_air_temp,
			min_water_temp = :min_water_temp,
			max_water_temp = :max_water_temp,
			min_humidity = :min_humidity,
			max_humidity = :max_humidity,
			min_ph = :min_ph,
			max_ph = :max_ph,
			min_tds = :min_tds,
			max_tds = :max_tds
		WHERE id = :id`

	result, err := r.db.GetDB().NamedExecContext(ctx, query, crop)
	if err != nil {
		return errors.NewDatabaseError("failed to update crop", err)
	}
	return expectOne(result, "crop")
}

func (r *CropRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.GetDB().ExecContext(ctx, `DELETE FROM crops WHERE id = $1`, id)
	if err != nil {
		return errors.NewDatabaseError("failed to delete crop", err)
	}
	return expectOne(result, "crop")
}

func (r *CropRepo) DeleteTx(ctx context.Context, tx database.Transaction, id string) error {
	result, err := tx.ExecContext(ctx, `DELETE FROM crops WHERE id = $1`, id)
	if err != nil {
		return errors.NewDatabaseError("failed to delete crop", err)
	}
	return expectOne(result, "crop")
}

func (r *CropRepo) List(ctx context.Context) ([]*models.CropProfile, error) {
	crops := []*models.CropProfile{}
	query := `SELECT * FROM crops ORDER BY name ASC`

	if err := r.db.GetDB().SelectContext(ctx, &crops, query); err != nil {
		return nil, errors.NewDatabaseError("failed to list crops", err)
	}
	return crops, nil
}

func (r *CropRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetDB().GetContext(ctx, &count, `SELECT COUNT(*) FROM crops`); err != nil {
		return 0, errors.NewDatabaseError("failed to count crops", err)
	}
	return count, nil
}
