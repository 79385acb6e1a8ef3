package cache

import (
	"context"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/errors"
	"github.com/redis/go-redis/v9"
)

const activeCropKey = "hydro:active_crop"

// clearIfScript deletes the key only while it still holds ARGV[1].
var clearIfScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ActiveCropStore keeps the active crop selection in Redis so every hub
// instance agrees on it.
type ActiveCropStore struct {
	client redis.UniversalClient
}

func NewActiveCropStore(client redis.UniversalClient) *ActiveCropStore {
	return &ActiveCropStore{client: client}
}

func (s *ActiveCropStore) Get(ctx context.Context) (string, error) {
	id, err := s.client.Get(ctx, activeCropKey).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", errors.NewUnavailableError("failed to read active crop", err)
	}
	return id, nil
}

func (s *ActiveCropStore) Set(ctx context.Context, cropID string) error {
	if err := s.client.Set(ctx, activeCropKey, cropID, 0).Err(); err != nil {
		return errors.NewUnavailableError("failed to store active crop", err)
	}
	return nil
}

func (s *ActiveCropStore) ClearIf(ctx context.Context, cropID string) error {
	if err := clearIfScript.Run(ctx, s.client, []string{activeCropKey}, cropID).Err(); err != nil && err != redis.Nil {
		return errors.NewUnavailableError("failed to clear active crop", err)
	}
	return nil
}
