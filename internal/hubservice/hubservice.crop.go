package hubservice

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/errors"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// CropService handles crop profile business logic
type CropService interface {
	ListCrops(ctx context.Context) ([]*models.CropProfile, error)
	GetCrop(ctx context.Context, id string) (*models.CropProfile, error)
	CreateCrop(ctx context.Context, crop *models.CropProfile) error
	UpdateCrop(ctx context.Context, crop *models.CropProfile) error
	DeleteCrop(ctx context.Context, id string) error
	ActiveCrop(ctx context.Context) (*models.CropProfile, error)
	SetActiveCrop(ctx context.Context, id string) (*models.CropProfile, error)
}

func (s *HubService) ListCrops(ctx context.Context) ([]*models.CropProfile, error) {
	return s.Crops.List(ctx)
}

func (s *HubService) GetCrop(ctx context.Context, id string) (*models.CropProfile, error) {
	return s.Crops.Get(ctx, id)
}

// CreateCrop creates a new crop profile with proper validation
func (s *HubService) CreateCrop(ctx context.Context, crop *models.CropProfile) error {
	if err := validateCrop(crop); err != nil {
		return err
	}
	crop.ID = nuts.NID("crop", 12)
	crop.CreatedAt = s.now().UTC()

	nuts.L.Infof("[CropService] Creating crop profile: %s (%s)", crop.Name, crop.ID)
	return s.Crops.Create(ctx, crop)
}

// UpdateCrop replaces every bound of an existing profile. created_at is kept.
func (s *HubService) UpdateCrop(ctx context.Context, crop *models.CropProfile) error {
	existing, err := s.Crops.Get(ctx, crop.ID)
	if err != nil {
		return err
	}
	if err := validateCrop(crop); err != nil {
		return err
	}
	crop.CreatedAt = existing.CreatedAt

	nuts.L.Infof("[CropService] Updating crop profile %s", crop.ID)
	return s.Crops.Update(ctx, crop)
}

func (s *HubService) DeleteCrop(ctx context.Context, id string) error {
	nuts.L.Infof("[CropService] Deleting crop profile: %s", id)
	return s.Cleanup.DeleteCrop(ctx, id)
}

// ActiveCrop returns the profile readings are currently evaluated against.
func (s *HubService) ActiveCrop(ctx context.Context) (*models.CropProfile, error) {
	crop, err := s.Profiles.Default(ctx)
	if err != nil {
		return nil, err
	}
	if crop == nil {
		return nil, errors.NewNotFoundError("no crop profiles configured", nil)
	}
	return crop, nil
}

func (s *HubService) SetActiveCrop(ctx context.Context, id string) (*models.CropProfile, error) {
	crop, err := s.Crops.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Active.Set(ctx, crop.ID); err != nil {
		return nil, err
	}
	nuts.L.Infof("[CropService] Active crop is now %s (%s)", crop.Name, crop.ID)
	return crop, nil
}

func validateCrop(crop *models.CropProfile) error {
	crop.Name = strings.TrimSpace(crop.Name)
	if crop.Name == "" {
		return errors.NewValidationError("crop name is required", nil)
	}
	invalid := map[string]string{}
	for _, metric := range models.AllMetrics {
		min, max := crop.Bounds(metric)
		switch {
		case math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0):
			invalid[string(metric)] = "bounds must be finite numbers"
		case min > max:
			invalid[string(metric)] = fmt.Sprintf("min %v is greater than max %v", min, max)
		}
	}
	if len(invalid) > 0 {
		return errors.NewValidationError("invalid crop bounds", nil).WithDetails(map[string]any{"bounds": invalid})
	}
	return nil
}
