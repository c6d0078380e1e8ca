// Package testutils provides shared fixtures and Redis helpers for tests
package testutils

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-advancement/internal/entities"
	"github.com/KirkDiggler/rpg-advancement/internal/redis"
)

// CreateTestRedisClient creates an in-memory Redis client for testing
func CreateTestRedisClient(t *testing.T) (redis.Client, func()) {
	return CreateTestRedisClientWithContext(t, nil)
}

// CreateTestRedisClientWithContext creates an in-memory Redis client and lets
// the test populate miniredis before the client connects
func CreateTestRedisClientWithContext(t *testing.T, setupFunc func(mr *miniredis.Miniredis)) (redis.Client, func()) {
	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to create miniredis")

	if setupFunc != nil {
		setupFunc(mr)
	}

	client, err := redis.New(&redis.Config{Addr: mr.Addr()})
	require.NoError(t, err, "failed to create redis client")

	cleanup := func() {
		_ = client.Close()
		mr.Close()
	}

	return client, cleanup
}

// SetInventory sets the owned quantity of an item
func SetInventory(t *testing.T, client redis.Client, characterID, itemID string, qty int32) {
	t.Helper()
	err := client.HSet(context.Background(), redis.InventoryKey(characterID), itemID, qty).Err()
	require.NoError(t, err)
}

// EquipItem places an item in a slot
func EquipItem(t *testing.T, client redis.Client, characterID, itemID, slot string) {
	t.Helper()
	data, err := json.Marshal(entities.EquippedItem{ItemID: itemID, Slot: slot, Equipped: true})
	require.NoError(t, err)
	require.NoError(t, client.HSet(context.Background(), redis.EquipmentKey(characterID), itemID, data).Err())
}

// RecordVictories sets the victory count for a dungeon
func RecordVictories(t *testing.T, client redis.Client, characterID, dungeonID string, count int32) {
	t.Helper()
	err := client.HSet(context.Background(), redis.DungeonClearsKey(characterID), dungeonID, count).Err()
	require.NoError(t, err)
}

// CompleteQuest marks a quest completed
func CompleteQuest(t *testing.T, client redis.Client, characterID, questID string) {
	t.Helper()
	require.NoError(t, client.SAdd(context.Background(), redis.QuestsKey(characterID), questID).Err())
}

// UnlockAchievement marks an achievement unlocked
func UnlockAchievement(t *testing.T, client redis.Client, characterID, achievementID string) {
	t.Helper()
	require.NoError(t, client.SAdd(context.Background(), redis.AchievementsKey(characterID), achievementID).Err())
}

// SetProfile writes a numeric progress profile field such as pvp_rank
func SetProfile(t *testing.T, client redis.Client, characterID, field string, value int64) {
	t.Helper()
	err := client.HSet(context.Background(), redis.ProfileKey(characterID), field, strconv.FormatInt(value, 10)).Err()
	require.NoError(t, err)
}
