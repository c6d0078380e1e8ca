package pending

import (
	"context"
	"database/sql"
	"encoding/json"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/rpg-advancement/internal/entities"
	"github.com/KirkDiggler/rpg-advancement/internal/errors"
	redisclient "github.com/KirkDiggler/rpg-advancement/internal/redis"
)

// The helpers below are shared by this package's stores and by the character
// transaction, so accepting or expiring an offer follows one set of rules
// whichever path commits it.

// RedisWrite is a write staged for a MULTI/EXEC pipeline
type RedisWrite func(pipe redis.Pipeliner)

// StageAcceptRedis reads the offer through the watching connection, adds its
// key to the watch set and returns the writes that accept it.
// Returns errors.NotFound if the offer doesn't exist
// Returns errors.InvalidState if it is no longer available
func StageAcceptRedis(ctx context.Context, rtx *redis.Tx, characterID, pendingID string, now int64) (*entities.PendingAdvancement, RedisWrite, error) {
	if err := rtx.Watch(ctx, redisclient.PendingKey(characterID, pendingID)).Err(); err != nil {
		return nil, nil, errors.Wrap(err, "failed to watch pending advancement")
	}

	record, err := loadOffer(ctx, rtx, characterID, pendingID)
	if err != nil {
		return nil, nil, err
	}
	if err := record.Accept(now); err != nil {
		return nil, nil, err
	}

	write, err := stageRecord(ctx, record)
	if err != nil {
		return nil, nil, err
	}
	return record, write, nil
}

// StageExpireRedis returns the writes that expire the character's available
// offer, or a nil write when there is nothing to expire. The caller must be
// watching the character's pending index.
func StageExpireRedis(ctx context.Context, rtx *redis.Tx, characterID string, now int64) (*entities.PendingAdvancement, RedisWrite, error) {
	record, err := currentOffer(ctx, rtx, characterID)
	if err != nil || record == nil {
		return nil, nil, err
	}
	if !record.Expire(now) {
		return nil, nil, nil
	}

	write, err := stageRecord(ctx, record)
	if err != nil {
		return nil, nil, err
	}
	return record, write, nil
}

// stageRecord rewrites the record and its owner pointer. Both keys, and the
// index that may point at them, expire after the record's retention.
func stageRecord(ctx context.Context, record *entities.PendingAdvancement) (RedisWrite, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal pending advancement")
	}

	key := redisclient.PendingKey(record.CharacterID, record.ID)
	ownerKey := redisclient.PendingOwnerKey(record.ID)
	indexKey := redisclient.PendingIndexKey(record.CharacterID)
	retention := record.Retention()

	return func(pipe redis.Pipeliner) {
		pipe.Set(ctx, key, data, retention)
		pipe.Set(ctx, ownerKey, record.CharacterID, retention)
		if retention > 0 {
			pipe.Expire(ctx, indexKey, retention)
		}
	}, nil
}

// Querier is the part of *sql.DB and *sql.Tx the shared statements use
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// AcceptSQL locks the offer row and accepts it. A non-empty characterID
// scopes the lookup to that character.
// Returns errors.NotFound if the offer doesn't exist
// Returns errors.InvalidState if it is no longer available
func AcceptSQL(ctx context.Context, q Querier, characterID, pendingID string, now int64) (*entities.PendingAdvancement, error) {
	query := `SELECT ` + pendingColumns + ` FROM pending_advancements WHERE id = $1`
	args := []any{pendingID}
	if characterID != "" {
		query += ` AND character_id = $2`
		args = append(args, characterID)
	}

	record, err := scanPending(q.QueryRowContext(ctx, query+` FOR UPDATE`, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFoundf("pending advancement %s not found", pendingID)
		}
		return nil, errors.Wrap(err, "failed to read pending advancement")
	}
	if err := record.Accept(now); err != nil {
		return nil, err
	}

	_, err = q.ExecContext(ctx,
		`UPDATE pending_advancements SET status = $1, updated_at = $2 WHERE id = $3`,
		string(record.Status), record.UpdatedAt, record.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to accept pending advancement")
	}
	return record, nil
}

// ExpireSQL expires the character's available offer and returns its ID, or
// "" when there was none
func ExpireSQL(ctx context.Context, q Querier, characterID string, now int64) (string, error) {
	var id string
	err := q.QueryRowContext(ctx, `
		UPDATE pending_advancements
		SET status = 'expired', updated_at = $1
		WHERE character_id = $2 AND status = 'available'
		RETURNING id`, now, characterID).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", errors.Wrap(err, "failed to expire pending advancement")
	}
	return id, nil
}
