package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/database"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/errors"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

type AlertRepo struct {
	PostgresBaseRepo
}

func NewAlertRepository(db database.DB) *AlertRepo {
	return &AlertRepo{PostgresBaseRepo: PostgresBaseRepo{db: db}}
}

// CreateBatch stores all alerts in one statement; ids and timestamps are assigned here.
func (r *AlertRepo) CreateBatch(ctx context.Context, alerts []models.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range alerts {
		if alerts[i].ID == "" {
			alerts[i].ID = nuts.NID("alert", 12)
		}
		if alerts[i].CreatedAt.IsZero() {
			alerts[i].CreatedAt = now
		}
	}

	query := `
		INSERT INTO alerts (id, message, sensor_type, type, is_read, created_at)
		VALUES (:id, :message, :sensor_type, :type, :is_read, :created_at)`

	if _, err := r.db.GetDB().NamedExecContext(ctx, query, alerts); err != nil {
		return errors.NewDatabaseError("failed to create alerts", err)
	}
	return nil
}

func (r *AlertRepo) List(ctx context.Context, filters models.AlertFilters) ([]*models.Alert, error) {
	filters.Normalize()

	where := []string{}
	args := []interface{}{}
	if filters.Unread {
		where = append(where, "is_read = false")
	}
	if filters.SensorType != "" {
		args = append(args, filters.SensorType)
		where = append(where, fmt.Sprintf("sensor_type = $%d", len(args)))
	}

	query := `SELECT * FROM alerts`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, filters.Limit, filters.Offset)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	alerts := []*models.Alert{}
	if err := r.db.GetDB().SelectContext(ctx, &alerts, query, args...); err != nil {
		return nil, errors.NewDatabaseError("failed to list alerts", err)
	}
	return alerts, nil
}

func (r *AlertRepo) MarkRead(ctx context.Context, id string) error {
	result, err := r.db.GetDB().ExecContext(ctx, `UPDATE alerts SET is_read = true WHERE id = $1`, id)
	if err != nil {
		return errors.NewDatabaseError("failed to mark alert read", err)
	}
	return expectOne(result, "alert")
}

func (r *AlertRepo) MarkAllRead(ctx context.Context) (int64, error) {
	result, err := r.db.GetDB().ExecContext(ctx, `UPDATE alerts SET is_read = true WHERE is_read = false`)
	if err != nil {
		return 0, errors.NewDatabaseError("failed to mark alerts read", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewDatabaseError("failed to get rows affected", err)
	}
	return rows, nil
}

func (r *AlertRepo) UnreadSensorTypes(ctx context.Context) (map[models.Metric]bool, error) {
	types := []models.Metric{}
	query := `SELECT DISTINCT sensor_type FROM alerts WHERE is_read = false`
	if err := r.db.GetDB().SelectContext(ctx, &types, query); err != nil {
		return nil, errors.NewDatabaseError("failed to get unread alert types", err)
	}

	unread := make(map[models.Metric]bool, len(types))
	for _, t := range types {
		unread[t] = true
	}
	return unread, nil
}
