package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/database"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/models"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/repository"
	"github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"
)

const cropKeyPrefix = "hydro:crop:"

// CropRepository is a read-through cache in front of another CropRepository.
// Profiles are read on every ingestion but change rarely. Redis failures are
// logged and fall back to the wrapped store.
type CropRepository struct {
	next   repository.CropRepository
	client redis.UniversalClient
	ttl    time.Duration
}

func NewCropRepository(next repository.CropRepository, client redis.UniversalClient, ttl time.Duration) *CropRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CropRepository{next: next, client: client, ttl: ttl}
}

func cropKey(id string) string {
	return cropKeyPrefix + id
}

func (r *CropRepository) Get(ctx context.Context, id string) (*models.CropProfile, error) {
	raw, err := r.client.Get(ctx, cropKey(id)).Bytes()
	if err == nil {
		crop := &models.CropProfile{}
		if err := json.Unmarshal(raw, crop); err == nil {
			return crop, nil
		}
		nuts.L.Warnf("[CropCache] Dropping undecodable entry for %s", id)
	} else if err != redis.Nil {
		nuts.L.Warnf("[CropCache] Get %s failed: %v", id, err)
	}

	crop, err := r.next.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, crop)
	return crop, nil
}

func (r *CropRepository) store(ctx context.Context, crop *models.CropProfile) {
	raw, err := json.Marshal(crop)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, cropKey(crop.ID), raw, r.ttl).Err(); err != nil {
		nuts.L.Warnf("[CropCache] Set %s failed: %v", crop.ID, err)
	}
}

func (r *CropRepository) invalidate(ctx context.Context, id string) {
	if err := r.client.Del(ctx, cropKey(id)).Err(); err != nil {
		nuts.L.Warnf("[CropCache] Invalidate %s failed: %v", id, err)
	}
}

func (r *CropRepository) Update(ctx context.Context, crop *models.CropProfile) error {
	if err := r.next.Update(ctx, crop); err != nil {
		return err
	}
	r.invalidate(ctx, crop.ID)
	return nil
}

func (r *CropRepository) Delete(ctx context.Context, id string) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

// DeleteTx defers invalidation to the commit of a transaction opened through
// BeginTx. Until then concurrent readers may still see and cache the row, so
// dropping the entry earlier would let it come back.
func (r *CropRepository) DeleteTx(ctx context.Context, tx database.Transaction, id string) error {
	if err := r.next.DeleteTx(ctx, tx, id); err != nil {
		return err
	}
	if itx, ok := tx.(*invalidatingTx); ok {
		itx.pending = append(itx.pending, id)
		return nil
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *CropRepository) BeginTx(ctx context.Context) (database.Transaction, error) {
	tx, err := r.next.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	return &invalidatingTx{Transaction: tx, repo: r}, nil
}

// invalidatingTx drops the cache entries of crops deleted in it once the
// commit succeeded. A rollback leaves the cache alone.
type invalidatingTx struct {
	database.Transaction
	repo    *CropRepository
	pending []string
}

func (t *invalidatingTx) Commit() error {
	if err := t.Transaction.Commit(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, id := range t.pending {
		t.repo.invalidate(ctx, id)
	}
	t.pending = nil
	return nil
}

func (r *CropRepository) Create(ctx context.Context, crop *models.CropProfile) error {
	return r.next.Create(ctx, crop)
}

func (r *CropRepository) First(ctx context.Context) (*models.CropProfile, error) {
	return r.next.First(ctx)
}

func (r *CropRepository) List(ctx context.Context) ([]*models.CropProfile, error) {
	return r.next.List(ctx)
}

func (r *CropRepository) Count(ctx context.Context) (int64, error) {
	return r.next.Count(ctx)
}
