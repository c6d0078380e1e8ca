package progress

import (
	"context"
	"strconv"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/rpg-advancement/internal/errors"
	redisclient "github.com/KirkDiggler/rpg-advancement/internal/redis"
)

const errCharacterIDEmpty = "character ID cannot be empty"

type redisRepository struct {
	client redisclient.Client
}

// RedisConfig contains configuration for the Redis progress repository
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

// NewRedis creates a Redis-backed progress repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &redisRepository{client: cfg.Client}, nil
}

func (r *redisRepository) CountVictories(ctx context.Context, input CountVictoriesInput) (*CountVictoriesOutput, error) {
	if input.CharacterID == "" || input.DungeonID == "" {
		return nil, errors.InvalidArgument("character ID and dungeon ID are required")
	}

	n, err := r.client.HGet(ctx, redisclient.DungeonClearsKey(input.CharacterID), input.DungeonID).Int()
	if err != nil {
		if err == redis.Nil {
			return &CountVictoriesOutput{}, nil
		}
		return nil, errors.Wrapf(err, "failed to count victories in %s", input.DungeonID)
	}
	return &CountVictoriesOutput{Count: int32(n)}, nil
}

func (r *redisRepository) IsQuestCompleted(ctx context.Context, input IsQuestCompletedInput) (*IsQuestCompletedOutput, error) {
	if input.CharacterID == "" || input.QuestID == "" {
		return nil, errors.InvalidArgument("character ID and quest ID are required")
	}

	ok, err := r.client.SIsMember(ctx, redisclient.QuestsKey(input.CharacterID), input.QuestID).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check quest %s", input.QuestID)
	}
	return &IsQuestCompletedOutput{Completed: ok}, nil
}

func (r *redisRepository) HasAchievement(ctx context.Context, input HasAchievementInput) (*HasAchievementOutput, error) {
	if input.CharacterID == "" || input.AchievementID == "" {
		return nil, errors.InvalidArgument("character ID and achievement ID are required")
	}

	ok, err := r.client.SIsMember(ctx, redisclient.AchievementsKey(input.CharacterID), input.AchievementID).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check achievement %s", input.AchievementID)
	}
	return &HasAchievementOutput{Unlocked: ok}, nil
}

func (r *redisRepository) GetProfile(ctx context.Context, input GetProfileInput) (*GetProfileOutput, error) {
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	fields, err := r.client.HMGet(ctx, redisclient.ProfileKey(input.CharacterID),
		FieldPvPRank, FieldGuildLevel, FieldPlaytimeMinutes).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read progress profile")
	}

	values := make([]int64, len(fields))
	for i, f := range fields {
		s, ok := f.(string)
		if !ok {
			continue
		}
		if values[i], err = strconv.ParseInt(s, 10, 64); err != nil {
			return nil, errors.Wrapf(err, "invalid profile value %q", s)
		}
	}

	return &GetProfileOutput{
		PvPRank:         int32(values[0]),
		GuildLevel:      int32(values[1]),
		PlaytimeMinutes: values[2],
	}, nil
}
