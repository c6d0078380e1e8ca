package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/rpg-advancement/internal/entities"
	"github.com/KirkDiggler/rpg-advancement/internal/errors"
	redisclient "github.com/KirkDiggler/rpg-advancement/internal/redis"
)

const (
	errClassIDEmpty   = "class ID cannot be empty"
	errMappingIDEmpty = "mapping ID cannot be empty"
)

// Store is a catalog that can be (re)loaded from a document
type Store interface {
	Repository

	// Seed replaces the stored catalog with the document contents
	Seed(ctx context.Context, input SeedInput) (*SeedOutput, error)
}

// SeedInput defines the input for seeding the catalog
type SeedInput struct {
	Document *Document
}

// SeedOutput reports what was written
type SeedOutput struct {
	Classes  int
	Mappings int
	Items    int
}

type redisRepository struct {
	client redisclient.Client
}

// RedisConfig contains configuration for the Redis catalog
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

// NewRedis creates a Redis-backed catalog
func NewRedis(cfg *RedisConfig) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &redisRepository{client: cfg.Client}, nil
}

func (r *redisRepository) Seed(ctx context.Context, input SeedInput) (*SeedOutput, error) {
	if input.Document == nil {
		return nil, errors.InvalidArgument("document cannot be nil")
	}
	if err := input.Document.Validate(); err != nil {
		return nil, err
	}

	watched := []string{redisclient.MappingsKey()}
	for tier := entities.MinTier; tier <= entities.MaxTier; tier++ {
		watched = append(watched, redisclient.TierKey(tier))
	}

	var removed int
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		stale, err := r.seededKeys(ctx, tx)
		if err != nil {
			return err
		}
		removed = len(stale)

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			// drop everything the previous seed wrote so removed classes and
			// mappings leave no index behind
			if len(stale) > 0 {
				pipe.Del(ctx, stale...)
			}
			return stageDocument(ctx, pipe, input.Document)
		})
		return err
	}, watched...)
	if err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			return nil, errors.Aborted("catalog was reseeded concurrently")
		}
		var appErr *errors.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, errors.Wrap(err, "failed to seed catalog")
	}

	slog.DebugContext(ctx, "replaced catalog keys", "stale_keys", removed)
	slog.InfoContext(ctx, "catalog seeded",
		"classes", len(input.Document.Classes),
		"mappings", len(input.Document.Mappings),
		"items", len(input.Document.Items))

	return &SeedOutput{
		Classes:  len(input.Document.Classes),
		Mappings: len(input.Document.Mappings),
		Items:    len(input.Document.Items),
	}, nil
}

// seededKeys lists the keys written by the previous seed, found through the
// tier and mapping index sets
func (r *redisRepository) seededKeys(ctx context.Context, tx *redis.Tx) ([]string, error) {
	keys := []string{redisclient.MappingsKey()}
	for tier := entities.MinTier; tier <= entities.MaxTier; tier++ {
		ids, err := tx.SMembers(ctx, redisclient.TierKey(tier)).Result()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read tier %d", tier)
		}
		keys = append(keys, redisclient.TierKey(tier))
		for _, id := range ids {
			keys = append(keys, redisclient.ClassKey(id), redisclient.MappingsFromKey(id))
		}
	}

	mappingIDs, err := tx.SMembers(ctx, redisclient.MappingsKey()).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read mapping index")
	}
	for _, id := range mappingIDs {
		keys = append(keys, redisclient.MappingKey(id))
	}
	return keys, nil
}

func stageDocument(ctx context.Context, pipe redis.Pipeliner, doc *Document) error {
	for _, c := range doc.Classes {
		data, err := json.Marshal(c)
		if err != nil {
			return errors.Wrapf(err, "failed to marshal class %s", c.ID)
		}
		pipe.Set(ctx, redisclient.ClassKey(c.ID), data, 0)
		pipe.SAdd(ctx, redisclient.TierKey(c.Tier), c.ID)
	}
	for _, m := range doc.Mappings {
		data, err := json.Marshal(m)
		if err != nil {
			return errors.Wrapf(err, "failed to marshal mapping %s", m.ID)
		}
		pipe.Set(ctx, redisclient.MappingKey(m.ID), data, 0)
		pipe.SAdd(ctx, redisclient.MappingsKey(), m.ID)
		pipe.SAdd(ctx, redisclient.MappingsFromKey(m.FromClassID), m.ID)
	}
	for _, it := range doc.Items {
		data, err := json.Marshal(it.Restrictions)
		if err != nil {
			return errors.Wrapf(err, "failed to marshal item %s", it.ID)
		}
		pipe.Set(ctx, redisclient.ItemRestrictionsKey(it.ID), data, 0)
	}
	return nil
}

func (r *redisRepository) GetClass(ctx context.Context, input GetClassInput) (*GetClassOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errClassIDEmpty)
	}

	var class entities.CharacterClass
	if err := r.getJSON(ctx, redisclient.ClassKey(input.ID), &class); err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NotFoundf("class %s not found", input.ID)
		}
		return nil, err
	}
	return &GetClassOutput{Class: &class}, nil
}

func (r *redisRepository) GetMapping(ctx context.Context, input GetMappingInput) (*GetMappingOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errMappingIDEmpty)
	}

	var mapping entities.AdvancementMapping
	if err := r.getJSON(ctx, redisclient.MappingKey(input.ID), &mapping); err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NotFoundf("mapping %s not found", input.ID)
		}
		return nil, err
	}
	return &GetMappingOutput{Mapping: &mapping}, nil
}

func (r *redisRepository) ListMappingsFrom(ctx context.Context, input ListMappingsFromInput) (*ListMappingsFromOutput, error) {
	if input.ClassID == "" {
		return nil, errors.InvalidArgument(errClassIDEmpty)
	}

	ids, err := r.client.SMembers(ctx, redisclient.MappingsFromKey(input.ClassID)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list mappings")
	}
	sort.Strings(ids)

	mappings := make([]*entities.AdvancementMapping, 0, len(ids))
	for _, id := range ids {
		out, err := r.GetMapping(ctx, GetMappingInput{ID: id})
		if err != nil {
			if errors.IsNotFound(err) {
				slog.WarnContext(ctx, "mapping index references missing mapping",
					"class_id", input.ClassID,
					"mapping_id", id)
				continue
			}
			return nil, err
		}
		mappings = append(mappings, out.Mapping)
	}
	return &ListMappingsFromOutput{Mappings: mappings}, nil
}

func (r *redisRepository) ListClassesByTier(ctx context.Context, input ListClassesByTierInput) (*ListClassesByTierOutput, error) {
	if input.Tier < entities.MinTier || input.Tier > entities.MaxTier {
		return nil, errors.InvalidArgumentf("tier must be between %d and %d", entities.MinTier, entities.MaxTier)
	}

	ids, err := r.client.SMembers(ctx, redisclient.TierKey(input.Tier)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list tier")
	}
	sort.Strings(ids)

	classes := make([]*entities.CharacterClass, 0, len(ids))
	for _, id := range ids {
		out, err := r.GetClass(ctx, GetClassInput{ID: id})
		if err != nil {
			return nil, err
		}
		classes = append(classes, out.Class)
	}
	return &ListClassesByTierOutput{Classes: classes}, nil
}

func (r *redisRepository) getJSON(ctx context.Context, key string, v any) error {
	result, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return errors.NotFound("key not found")
		}
		return errors.Wrapf(err, "failed to read %s", key)
	}
	if err := json.Unmarshal([]byte(result), v); err != nil {
		return errors.Wrapf(err, "failed to unmarshal %s", key)
	}
	return nil
}
