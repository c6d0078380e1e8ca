package history

import (
	"context"
	"encoding/json"

	"github.com/KirkDiggler/rpg-advancement/internal/entities"
	"github.com/KirkDiggler/rpg-advancement/internal/errors"
	redisclient "github.com/KirkDiggler/rpg-advancement/internal/redis"
)

type redisRepository struct {
	client redisclient.Client
}

// RedisConfig contains configuration for the Redis history repository
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

// NewRedis creates a Redis-backed history reader
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &redisRepository{client: cfg.Client}, nil
}

func (r *redisRepository) ListByCharacter(ctx context.Context, input ListByCharacterInput) (*ListByCharacterOutput, error) {
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	raws, err := r.client.LRange(ctx, redisclient.HistoryKey(input.CharacterID), 0, -1).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list class history")
	}

	rows := make([]*entities.ClassHistory, 0, len(raws))
	for _, raw := range raws {
		var row entities.ClassHistory
		if err := json.Unmarshal([]byte(raw), &row); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal class history")
		}
		rows = append(rows, &row)
	}
	return &ListByCharacterOutput{History: rows}, nil
}
