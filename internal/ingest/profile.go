package ingest

import (
	"context"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/errors"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/models"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// ProfileResolver picks the crop profile a reading is evaluated against.
type ProfileResolver struct {
	crops  repository.CropRepository
	active repository.ActiveCropStore
}

func NewProfileResolver(crops repository.CropRepository, active repository.ActiveCropStore) *ProfileResolver {
	return &ProfileResolver{crops: crops, active: active}
}

// Resolve fetches explicitID when given. An unknown id is a not-found error,
// never a silent fallback.
func (r *ProfileResolver) Resolve(ctx context.Context, explicitID string) (*models.CropProfile, error) {
	if explicitID != "" {
		return r.crops.Get(ctx, explicitID)
	}
	return r.Default(ctx)
}

// Default returns the active crop when it is set and still exists, otherwise
// the oldest profile. It returns (nil, nil) when no profile exists at all.
func (r *ProfileResolver) Default(ctx context.Context) (*models.CropProfile, error) {
	if r.active != nil {
		id, err := r.active.Get(ctx)
		if err != nil {
			nuts.L.Warnf("[ProfileResolver] Active crop unavailable, using first profile: %v", err)
		}
		if id != "" {
			crop, err := r.crops.Get(ctx, id)
			if err == nil {
				return crop, nil
			}
			if !errors.IsNotFound(err) {
				return nil, err
			}
			nuts.L.Warnf("[ProfileResolver] Active crop %s no longer exists", id)
		}
	}

	crop, err := r.crops.First(ctx)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return crop, nil
}
