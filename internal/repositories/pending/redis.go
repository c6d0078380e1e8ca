package pending

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/rpg-advancement/internal/entities"
	"github.com/KirkDiggler/rpg-advancement/internal/errors"
	"github.com/KirkDiggler/rpg-advancement/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-advancement/internal/pkg/idgen"
	redisclient "github.com/KirkDiggler/rpg-advancement/internal/redis"
)

type redisRepository struct {
	client      redisclient.Client
	clock       clock.Clock
	idGenerator idgen.Generator
	ttl         time.Duration
}

// RedisConfig contains configuration for the Redis pending repository
type RedisConfig struct {
	Client      redisclient.Client
	Clock       clock.Clock
	IDGenerator idgen.Generator
	TTL         time.Duration
}

// Validate validates the RedisConfig
func (cfg *RedisConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	vb := errors.NewValidationBuilder()
	if cfg.Client == nil {
		vb.RequiredField("Client")
	}
	if cfg.TTL < 0 {
		vb.Field("TTL", "cannot be negative")
	}
	return vb.Build()
}

// NewRedis creates a Redis-backed pending repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}
	gen := cfg.IDGenerator
	if gen == nil {
		gen = idgen.NewUUID("pending")
	}
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}

	return &redisRepository{client: cfg.Client, clock: c, idGenerator: gen, ttl: ttl}, nil
}

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}
	if len(input.Options) == 0 {
		return nil, errors.InvalidArgument(errOptionsEmpty)
	}

	now := r.clock.Now()
	record := &entities.PendingAdvancement{
		ID:          r.idGenerator.Generate(),
		CharacterID: input.CharacterID,
		UserID:      input.UserID,
		Options:     input.Options,
		Status:      entities.PendingStatusAvailable,
		CreatedAt:   now.Unix(),
		UpdatedAt:   now.Unix(),
		ExpiresAt:   now.Add(r.ttl).Unix(),
	}
	write, err := stageRecord(ctx, record)
	if err != nil {
		return nil, err
	}

	indexKey := redisclient.PendingIndexKey(input.CharacterID)
	var replacedID string

	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		replacedID = ""
		prior, expire, err := StageExpireRedis(ctx, tx, input.CharacterID, now.Unix())
		if err != nil {
			return err
		}
		if expire != nil {
			replacedID = prior.ID
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if expire != nil {
				expire(pipe)
			}
			write(pipe)
			pipe.Set(ctx, indexKey, record.ID, record.Retention())
			return nil
		})
		return err
	}, indexKey)
	if err != nil {
		return nil, translateWatchErr(err, "failed to create pending advancement")
	}

	return &CreateOutput{Pending: record, ReplacedID: replacedID}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errPendingIDEmpty)
	}

	characterID, err := r.client.Get(ctx, redisclient.PendingOwnerKey(input.ID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("pending advancement %s not found", input.ID)
		}
		return nil, errors.Wrap(err, "failed to look up pending advancement")
	}

	record, err := loadOffer(ctx, r.client, characterID, input.ID)
	if err != nil {
		return nil, err
	}
	return &GetOutput{Pending: record}, nil
}

func (r *redisRepository) ListAvailable(ctx context.Context, input ListAvailableInput) (*ListAvailableOutput, error) {
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	record, err := currentOffer(ctx, r.client, input.CharacterID)
	if err != nil {
		return nil, err
	}

	out := &ListAvailableOutput{Pending: []*entities.PendingAdvancement{}}
	if record != nil && record.Status == entities.PendingStatusAvailable && !record.IsExpired(r.clock.Now().Unix()) {
		out.Pending = append(out.Pending, record)
	}
	return out, nil
}

func (r *redisRepository) GetLatest(ctx context.Context, input GetLatestInput) (*GetLatestOutput, error) {
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	record, err := currentOffer(ctx, r.client, input.CharacterID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, errors.NotFoundf("character %s has no pending advancement", input.CharacterID)
	}
	return &GetLatestOutput{Pending: record}, nil
}

func (r *redisRepository) MarkAccepted(ctx context.Context, input MarkAcceptedInput) (*MarkAcceptedOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errPendingIDEmpty)
	}

	characterID, err := r.client.Get(ctx, redisclient.PendingOwnerKey(input.ID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("pending advancement %s not found", input.ID)
		}
		return nil, errors.Wrap(err, "failed to look up pending advancement")
	}

	var accepted *entities.PendingAdvancement
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		record, write, err := StageAcceptRedis(ctx, tx, characterID, input.ID, r.clock.Now().Unix())
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			write(pipe)
			return nil
		})
		accepted = record
		return err
	}, redisclient.PendingIndexKey(characterID))
	if err != nil {
		return nil, translateWatchErr(err, "failed to accept pending advancement")
	}

	return &MarkAcceptedOutput{Pending: accepted}, nil
}

func (r *redisRepository) Clear(ctx context.Context, input ClearInput) (*ClearOutput, error) {
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	indexKey := redisclient.PendingIndexKey(input.CharacterID)
	cleared := 0

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		cleared = 0
		record, err := currentOffer(ctx, tx, input.CharacterID)
		if err != nil || record == nil {
			return err
		}
		if record.Status != entities.PendingStatusAvailable {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, redisclient.PendingKey(input.CharacterID, record.ID))
			pipe.Del(ctx, redisclient.PendingOwnerKey(record.ID))
			pipe.Del(ctx, indexKey)
			return nil
		})
		if err == nil {
			cleared = 1
		}
		return err
	}, indexKey)
	if err != nil {
		return nil, translateWatchErr(err, "failed to clear pending advancements")
	}

	return &ClearOutput{Cleared: cleared}, nil
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// currentOffer follows the character index; nil when there is none
func currentOffer(ctx context.Context, c stringGetter, characterID string) (*entities.PendingAdvancement, error) {
	id, err := c.Get(ctx, redisclient.PendingIndexKey(characterID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to read pending index")
	}

	record, err := loadOffer(ctx, c, characterID, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

func loadOffer(ctx context.Context, c stringGetter, characterID, id string) (*entities.PendingAdvancement, error) {
	raw, err := c.Get(ctx, redisclient.PendingKey(characterID, id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("pending advancement %s not found", id)
		}
		return nil, errors.Wrap(err, "failed to read pending advancement")
	}

	var record entities.PendingAdvancement
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal pending advancement")
	}
	return &record, nil
}

func translateWatchErr(err error, message string) error {
	if errors.Is(err, redis.TxFailedErr) {
		return errors.Aborted("pending advancement was modified concurrently")
	}
	var appErr *errors.Error
	if errors.As(err, &appErr) {
		return err
	}
	return errors.Wrap(err, message)
}
