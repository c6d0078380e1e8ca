// Package progress answers the achievement queries requirements are checked
// against: dungeon clears, quests, achievements and profile thresholds
package progress

//go:generate mockgen -destination=mock/mock_repository.go -package=progressmock github.com/KirkDiggler/rpg-advancement/internal/repositories/progress Repository

import (
	"context"
)

// Profile fields stored per character
const (
	FieldPvPRank         = "pvp_rank"
	FieldGuildLevel      = "guild_level"
	FieldPlaytimeMinutes = "playtime_minutes"
)

// Repository defines the progress queries the engine consumes
type Repository interface {
	// CountVictories returns how many times the character cleared a dungeon
	CountVictories(ctx context.Context, input CountVictoriesInput) (*CountVictoriesOutput, error)

	// IsQuestCompleted reports whether the character completed a quest
	IsQuestCompleted(ctx context.Context, input IsQuestCompletedInput) (*IsQuestCompletedOutput, error)

	// HasAchievement reports whether the character unlocked an achievement
	HasAchievement(ctx context.Context, input HasAchievementInput) (*HasAchievementOutput, error)

	// GetProfile returns the character's pvp rank, guild level and playtime
	GetProfile(ctx context.Context, input GetProfileInput) (*GetProfileOutput, error)
}

// CountVictoriesInput defines the input for counting dungeon clears
type CountVictoriesInput struct {
	CharacterID string
	DungeonID   string
}

// CountVictoriesOutput defines the output for counting dungeon clears
type CountVictoriesOutput struct {
	Count int32
}

// IsQuestCompletedInput defines the input for a quest query
type IsQuestCompletedInput struct {
	CharacterID string
	QuestID     string
}

// IsQuestCompletedOutput defines the output for a quest query
type IsQuestCompletedOutput struct {
	Completed bool
}

// HasAchievementInput defines the input for an achievement query
type HasAchievementInput struct {
	CharacterID   string
	AchievementID string
}

// HasAchievementOutput defines the output for an achievement query
type HasAchievementOutput struct {
	Unlocked bool
}

// GetProfileInput defines the input for a profile query
type GetProfileInput struct {
	CharacterID string
}

// GetProfileOutput defines the output for a profile query
type GetProfileOutput struct {
	PvPRank         int32
	GuildLevel      int32
	PlaytimeMinutes int64
}
