package hubservice

import (
	"context"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/models"
)

// AlertService handles alert listing and acknowledgement
type AlertService interface {
	ListAlerts(ctx context.Context, filters models.AlertFilters) ([]*models.Alert, error)
	MarkAlertRead(ctx context.Context, id string) error
	MarkAllAlertsRead(ctx context.Context) (int64, error)
}

func (s *HubService) ListAlerts(ctx context.Context, filters models.AlertFilters) ([]*models.Alert, error) {
	filters.Normalize()
	return s.Alerts.List(ctx, filters)
}

func (s *HubService) MarkAlertRead(ctx context.Context, id string) error {
	return s.Alerts.MarkRead(ctx, id)
}

func (s *HubService) MarkAllAlertsRead(ctx context.Context) (int64, error) {
	return s.Alerts.MarkAllRead(ctx)
}
