package redis

import (
	"fmt"
	"strconv"
)

// Keys that belong to one character embed the id in a {hash tag} so a
// cluster keeps them on the same slot for WATCH/MULTI.

// CharacterKey holds the JSON character row
func CharacterKey(characterID string) string {
	return fmt.Sprintf("character:{%s}", characterID)
}

// CharacterLockKey is the per-character advancement lock
func CharacterLockKey(characterID string) string {
	return fmt.Sprintf("lock:character:{%s}", characterID)
}

// EquipmentKey is a hash of item id -> JSON equipped item
func EquipmentKey(characterID string) string {
	return fmt.Sprintf("equipment:character:{%s}", characterID)
}

// InventoryKey is a hash of item id -> owned quantity
func InventoryKey(characterID string) string {
	return fmt.Sprintf("inventory:character:{%s}", characterID)
}

// HistoryKey is the append-only list of class history rows
func HistoryKey(characterID string) string {
	return fmt.Sprintf("class_history:character:{%s}", characterID)
}

// PendingIndexKey points at the character's current pending advancement id
func PendingIndexKey(characterID string) string {
	return fmt.Sprintf("pending:character:{%s}", characterID)
}

// PendingKey holds a JSON pending advancement. The record lives next to its
// character so acceptance can be committed in the same MULTI.
func PendingKey(characterID, pendingID string) string {
	return fmt.Sprintf("pending:{%s}:%s", characterID, pendingID)
}

// PendingOwnerKey maps a pending id back to its character
func PendingOwnerKey(pendingID string) string {
	return "pending:owner:" + pendingID
}

// DungeonClearsKey is a hash of dungeon id -> victory count
func DungeonClearsKey(characterID string) string {
	return fmt.Sprintf("progress:dungeons:{%s}", characterID)
}

// QuestsKey is the set of completed quest ids
func QuestsKey(characterID string) string {
	return fmt.Sprintf("progress:quests:{%s}", characterID)
}

// AchievementsKey is the set of unlocked achievement ids
func AchievementsKey(characterID string) string {
	return fmt.Sprintf("progress:achievements:{%s}", characterID)
}

// ProfileKey is a hash with pvp_rank, guild_level and playtime_minutes
func ProfileKey(characterID string) string {
	return fmt.Sprintf("progress:profile:{%s}", characterID)
}

// Catalog keys share one hash tag so a reseed commits in a single MULTI.
const catalogTag = "catalog:{catalog}:"

// ItemRestrictionsKey holds the JSON class restrictions of an item
func ItemRestrictionsKey(itemID string) string {
	return catalogTag + "item_restrictions:" + itemID
}

// ClassKey holds a JSON class definition
func ClassKey(classID string) string {
	return catalogTag + "class:" + classID
}

// TierKey is the set of class ids in a tier
func TierKey(tier int32) string {
	return catalogTag + "tier:" + strconv.Itoa(int(tier))
}

// MappingKey holds a JSON advancement mapping
func MappingKey(mappingID string) string {
	return catalogTag + "mapping:" + mappingID
}

// MappingsKey is the set of every seeded mapping id
func MappingsKey() string {
	return catalogTag + "mappings"
}

// MappingsFromKey is the set of mapping ids leaving a class
func MappingsFromKey(classID string) string {
	return catalogTag + "mappings_from:" + classID
}
