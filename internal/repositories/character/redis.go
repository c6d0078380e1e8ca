package character

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/rpg-advancement/internal/entities"
	"github.com/KirkDiggler/rpg-advancement/internal/errors"
	"github.com/KirkDiggler/rpg-advancement/internal/pkg/clock"
	redisclient "github.com/KirkDiggler/rpg-advancement/internal/redis"
	"github.com/KirkDiggler/rpg-advancement/internal/repositories/pending"
)

const (
	defaultLockTTL    = 5 * time.Second
	defaultLockWait   = 2 * time.Second
	lockRetryInterval = 20 * time.Millisecond
)

// releaseLock deletes the lock only if we still own it
var releaseLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisRepository struct {
	client   redisclient.Client
	clock    clock.Clock
	lockTTL  time.Duration
	lockWait time.Duration
}

// RedisConfig contains configuration for the Redis character repository.
type RedisConfig struct {
	Client redisclient.Client
	Clock  clock.Clock

	// LockTTL bounds how long a crashed holder can block a character
	LockTTL time.Duration
	// LockWait is how long Transact retries before giving up with Aborted
	LockWait time.Duration
}

// Validate validates the RedisConfig.
func (cfg *RedisConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Client == nil {
		return errors.InvalidArgument("client cannot be nil")
	}
	if cfg.LockTTL < 0 || cfg.LockWait < 0 {
		return errors.InvalidArgument("lock durations cannot be negative")
	}
	return nil
}

// NewRedis creates a new Redis-backed character repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}
	ttl := cfg.LockTTL
	if ttl == 0 {
		ttl = defaultLockTTL
	}
	wait := cfg.LockWait
	if wait == 0 {
		wait = defaultLockWait
	}

	return &redisRepository{
		client:   cfg.Client,
		clock:    c,
		lockTTL:  ttl,
		lockWait: wait,
	}, nil
}

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Character == nil {
		return nil, errors.InvalidArgument(errCharacterNil)
	}
	if input.Character.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	data, err := json.Marshal(input.Character)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal character data")
	}

	created, err := r.client.SetNX(ctx, redisclient.CharacterKey(input.Character.ID), data, 0).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create character")
	}
	if !created {
		return nil, errors.AlreadyExistsf("character with ID %s already exists", input.Character.ID)
	}

	return &CreateOutput{Character: input.Character}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	char, err := loadCharacter(ctx, r.client, input.ID)
	if err != nil {
		return nil, err
	}
	return &GetOutput{Character: char}, nil
}

func (r *redisRepository) Transact(ctx context.Context, input TransactInput) (*TransactOutput, error) {
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}
	if input.Fn == nil {
		return nil, errors.InvalidArgument(errFnNil)
	}

	release, err := r.acquireLock(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}
	defer release()

	var committed *entities.Character
	watched := []string{
		redisclient.CharacterKey(input.CharacterID),
		redisclient.EquipmentKey(input.CharacterID),
		redisclient.InventoryKey(input.CharacterID),
		redisclient.PendingIndexKey(input.CharacterID),
	}

	err = r.client.Watch(ctx, func(rtx *redis.Tx) error {
		char, err := loadCharacter(ctx, rtx, input.CharacterID)
		if err != nil {
			return err
		}

		tx := &redisTx{
			rtx:       rtx,
			clock:     r.clock,
			character: char,
			consumed:  make(map[string]int32),
			claimed:   make(map[string]bool),
		}
		if err := input.Fn(ctx, tx); err != nil {
			return err
		}

		committed = tx.character
		if len(tx.ops) == 0 {
			return nil
		}

		_, err = rtx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, op := range tx.ops {
				op(pipe)
			}
			return nil
		})
		return err
	}, watched...)
	if err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			return nil, errors.Abortedf("character %s was modified concurrently", input.CharacterID)
		}
		var appErr *errors.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, errors.Wrapf(err, "failed to commit transaction for character %s", input.CharacterID)
	}

	return &TransactOutput{Character: committed}, nil
}

func (r *redisRepository) acquireLock(ctx context.Context, characterID string) (func(), error) {
	key := redisclient.CharacterLockKey(characterID)
	token := uuid.NewString()
	deadline := time.Now().Add(r.lockWait)

	for {
		ok, err := r.client.SetNX(ctx, key, token, r.lockTTL).Result()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to lock character %s", characterID)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, errors.Abortedf("character %s is locked by another advancement", characterID)
		}

		select {
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), "lock wait cancelled")
		case <-time.After(lockRetryInterval):
		}
	}

	return func() {
		// Release even if the caller's context is already cancelled
		releaseCtx := context.WithoutCancel(ctx)
		if err := releaseLock.Run(releaseCtx, r.client, []string{key}, token).Err(); err != nil {
			slog.WarnContext(releaseCtx, "failed to release character lock",
				"character_id", characterID,
				"error", err)
		}
	}, nil
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func loadCharacter(ctx context.Context, c stringGetter, characterID string) (*entities.Character, error) {
	result, err := c.Get(ctx, redisclient.CharacterKey(characterID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("character with ID %s not found", characterID)
		}
		return nil, errors.Wrapf(err, "failed to get character")
	}

	var char entities.Character
	if err := json.Unmarshal([]byte(result), &char); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal character data")
	}
	return &char, nil
}

// redisTx reads through the WATCHed connection and stages writes for a
// single MULTI/EXEC
type redisTx struct {
	rtx       *redis.Tx
	clock     clock.Clock
	character *entities.Character
	consumed  map[string]int32
	claimed   map[string]bool
	ops       []func(pipe redis.Pipeliner)
}

func (t *redisTx) Character() *entities.Character {
	cp := *t.character
	return &cp
}

func (t *redisTx) EquippedItems(ctx context.Context) ([]entities.EquippedItem, error) {
	rows, err := t.rtx.HGetAll(ctx, redisclient.EquipmentKey(t.character.ID)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list equipment")
	}

	items := make([]entities.EquippedItem, 0, len(rows))
	for itemID, raw := range rows {
		var item entities.EquippedItem
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal equipped item %s", itemID)
		}
		if item.Equipped {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ItemID < items[j].ItemID })
	return items, nil
}

func (t *redisTx) ItemQuantity(ctx context.Context, itemID string) (int32, error) {
	if itemID == "" {
		return 0, errors.InvalidArgument(errItemIDEmpty)
	}

	qty, err := t.rtx.HGet(ctx, redisclient.InventoryKey(t.character.ID), itemID).Int()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, errors.Wrapf(err, "failed to read inventory for item %s", itemID)
	}
	return int32(qty) - t.consumed[itemID], nil
}

func (t *redisTx) ConsumeItem(ctx context.Context, itemID string, qty int32) error {
	if qty <= 0 {
		return errors.InvalidArgumentf("quantity must be positive, got %d", qty)
	}

	owned, err := t.ItemQuantity(ctx, itemID)
	if err != nil {
		return err
	}
	if owned < qty {
		return insufficientItem(itemID, qty, owned)
	}

	t.consumed[itemID] += qty
	remaining := owned - qty
	key := redisclient.InventoryKey(t.character.ID)
	t.ops = append(t.ops, func(pipe redis.Pipeliner) {
		if remaining == 0 {
			pipe.HDel(ctx, key, itemID)
			return
		}
		pipe.HSet(ctx, key, itemID, remaining)
	})
	return nil
}

func (t *redisTx) Unequip(ctx context.Context, itemIDs []string) error {
	if len(itemIDs) == 0 {
		return nil
	}

	key := redisclient.EquipmentKey(t.character.ID)
	raws, err := t.rtx.HMGet(ctx, key, itemIDs...).Result()
	if err != nil {
		return errors.Wrap(err, "failed to read equipment")
	}

	updates := make([]interface{}, 0, len(itemIDs)*2)
	for i, raw := range raws {
		s, ok := raw.(string)
		if !ok {
			return errors.NotFoundf("item %s is not equipped", itemIDs[i])
		}
		var item entities.EquippedItem
		if err := json.Unmarshal([]byte(s), &item); err != nil {
			return errors.Wrapf(err, "failed to unmarshal equipped item %s", itemIDs[i])
		}
		item.Equipped = false
		data, err := json.Marshal(item)
		if err != nil {
			return errors.Wrapf(err, "failed to marshal equipped item %s", itemIDs[i])
		}
		updates = append(updates, itemIDs[i], data)
	}

	t.ops = append(t.ops, func(pipe redis.Pipeliner) {
		pipe.HSet(ctx, key, updates...)
	})
	return nil
}

func (t *redisTx) ClaimPending(ctx context.Context, pendingID string) error {
	if pendingID == "" {
		return errors.InvalidArgument(errPendingIDEmpty)
	}
	if t.claimed[pendingID] {
		return errors.InvalidStatef("pending advancement %s was already accepted", pendingID)
	}

	_, write, err := pending.StageAcceptRedis(ctx, t.rtx, t.character.ID, pendingID, t.clock.Now().Unix())
	if err != nil {
		return err
	}

	t.claimed[pendingID] = true
	t.ops = append(t.ops, write)
	return nil
}

func (t *redisTx) ExpirePending(ctx context.Context) error {
	_, write, err := pending.StageExpireRedis(ctx, t.rtx, t.character.ID, t.clock.Now().Unix())
	if err != nil {
		return err
	}
	if write != nil {
		t.ops = append(t.ops, write)
	}
	return nil
}

func (t *redisTx) SaveCharacter(ctx context.Context, character *entities.Character) error {
	if character == nil {
		return errors.InvalidArgument(errCharacterNil)
	}
	if character.ID != t.character.ID {
		return errors.InvalidArgumentf("transaction is scoped to character %s", t.character.ID)
	}

	data, err := json.Marshal(character)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal character data")
	}

	cp := *character
	t.character = &cp
	key := redisclient.CharacterKey(character.ID)
	t.ops = append(t.ops, func(pipe redis.Pipeliner) {
		pipe.Set(ctx, key, data, 0)
	})
	return nil
}

func (t *redisTx) AppendHistory(ctx context.Context, history *entities.ClassHistory) error {
	if history == nil {
		return errors.InvalidArgument("history cannot be nil")
	}

	data, err := json.Marshal(history)
	if err != nil {
		return errors.Wrap(err, "failed to marshal class history")
	}

	key := redisclient.HistoryKey(t.character.ID)
	t.ops = append(t.ops, func(pipe redis.Pipeliner) {
		pipe.RPush(ctx, key, data)
	})
	return nil
}

func insufficientItem(itemID string, required, owned int32) error {
	return errors.RequirementsNotMet("not enough items to consume").
		WithMeta(errors.MetaMissing, &entities.MissingRequirements{
			Items: []entities.MissingItem{{ItemID: itemID, Required: required, Current: owned}},
		})
}
