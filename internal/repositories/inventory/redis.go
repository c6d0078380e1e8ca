package inventory

import (
	"context"
	"encoding/json"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/rpg-advancement/internal/entities"
	"github.com/KirkDiggler/rpg-advancement/internal/errors"
	redisclient "github.com/KirkDiggler/rpg-advancement/internal/redis"
)

type redisRepository struct {
	client redisclient.Client
}

// RedisConfig contains configuration for the Redis inventory repository
type RedisConfig struct {
	Client redisclient.Client
}

// Validate validates the RedisConfig
func (cfg *RedisConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Client == nil {
		return errors.InvalidArgument("client cannot be nil")
	}
	return nil
}

// NewRedis creates a Redis-backed inventory repository
func NewRedis(cfg *RedisConfig) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &redisRepository{client: cfg.Client}, nil
}

func (r *redisRepository) OwnedQuantity(ctx context.Context, input OwnedQuantityInput) (*OwnedQuantityOutput, error) {
	if err := validateOwned(input); err != nil {
		return nil, err
	}

	qty, err := r.client.HGet(ctx, redisclient.InventoryKey(input.CharacterID), input.ItemID).Int()
	if err != nil {
		if err == redis.Nil {
			return &OwnedQuantityOutput{}, nil
		}
		return nil, errors.Wrapf(err, "failed to read inventory for item %s", input.ItemID)
	}
	return &OwnedQuantityOutput{Quantity: int32(qty)}, nil
}

func (r *redisRepository) GetRestrictions(ctx context.Context, input GetRestrictionsInput) (*GetRestrictionsOutput, error) {
	if input.ItemID == "" {
		return nil, errors.InvalidArgument(errItemIDEmpty)
	}

	raw, err := r.client.Get(ctx, redisclient.ItemRestrictionsKey(input.ItemID)).Result()
	if err != nil {
		if err == redis.Nil {
			return &GetRestrictionsOutput{Restrictions: &entities.ItemRestrictions{}}, nil
		}
		return nil, errors.Wrapf(err, "failed to read restrictions for item %s", input.ItemID)
	}

	var restrictions entities.ItemRestrictions
	if err := json.Unmarshal([]byte(raw), &restrictions); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal restrictions for item %s", input.ItemID)
	}
	return &GetRestrictionsOutput{Restrictions: &restrictions}, nil
}

func (r *redisRepository) SetRestrictions(ctx context.Context, input SetRestrictionsInput) (*SetRestrictionsOutput, error) {
	if input.ItemID == "" {
		return nil, errors.InvalidArgument(errItemIDEmpty)
	}

	data, err := json.Marshal(input.Restrictions)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal restrictions")
	}
	if err := r.client.Set(ctx, redisclient.ItemRestrictionsKey(input.ItemID), data, 0).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to write restrictions for item %s", input.ItemID)
	}
	return &SetRestrictionsOutput{}, nil
}
