package testutils

import (
	"github.com/KirkDiggler/rpg-advancement/internal/entities"
	"github.com/KirkDiggler/rpg-advancement/internal/repositories/catalog"
)

// Fixture ids shared across tests
const (
	TestCharacterID = "char-test-001"
	TestUserID      = "user-test-001"

	ClassNoviceWarrior = "novice_warrior"
	ClassNoviceMage    = "novice_mage"
	ClassNoviceAdept   = "novice_adept"
	ClassKnight        = "knight"
	ClassBerserker     = "berserker"
	ClassSorcerer      = "sorcerer"
	ClassPaladin       = "paladin"
	ClassGuardian      = "guardian"
	ClassWarlord       = "warlord"

	MappingAwakenKnight      = "awaken_knight"
	MappingAwakenBerserker   = "awaken_berserker"
	MappingAwakenSorcerer    = "awaken_sorcerer"
	MappingPromotePaladin    = "promote_paladin"
	MappingPromoteGuardian   = "promote_guardian"
	MappingPromoteWarlord    = "promote_warlord"
	MappingBerserkerGuardian = "berserker_guardian"

	DungeonCrypt  = "dungeon_1"
	QuestOath     = "quest_oath"
	ItemSigil     = "item_7"
	ItemGreatAxe  = "item_great_axe"
	ItemHeavyMail = "item_heavy_mail"
)

// CatalogDocument returns a small three-tier catalog.
//
// The warrior line awakens into knight (70) or berserker (30). Knights promote
// automatically to paladin (5 crypt clears) or guardian (consumes one sigil).
// Berserkers are offered a choice between warlord and guardian. Sorcerers
// have no promotion path.
func CatalogDocument() *catalog.Document {
	return &catalog.Document{
		Classes: []entities.CharacterClass{
			{
				ID: ClassNoviceWarrior, Name: "Novice Warrior", Type: entities.ClassTypeWarrior,
				Tier: 1, RequiredLevel: 1,
				StatBonuses: entities.StatBlock{Strength: 2, Vitality: 1},
			},
			{
				ID: ClassNoviceMage, Name: "Novice Mage", Type: entities.ClassTypeMage,
				Tier: 1, RequiredLevel: 1,
				StatBonuses: entities.StatBlock{Intelligence: 3},
			},
			{
				ID: ClassNoviceAdept, Name: "Novice Adept", Type: entities.ClassTypePriest,
				Tier: 1, RequiredLevel: 5,
				StatBonuses: entities.StatBlock{Intelligence: 1, Luck: 2},
			},
			{
				ID: ClassKnight, Name: "Knight", Type: entities.ClassTypeKnight,
				Tier: 2, RequiredLevel: 10, PreviousClassID: ClassNoviceWarrior,
				StatBonuses:  entities.StatBlock{Strength: 5, Vitality: 4, Dexterity: 1},
				SkillUnlocks: []entities.SkillUnlock{{SkillID: "shield_bash", Name: "Shield Bash", Level: 10}},
			},
			{
				ID: ClassBerserker, Name: "Berserker", Type: entities.ClassTypeWarrior,
				Tier: 2, RequiredLevel: 10, PreviousClassID: ClassNoviceWarrior,
				StatBonuses:  entities.StatBlock{Strength: 8, Vitality: 2},
				SkillUnlocks: []entities.SkillUnlock{{SkillID: "rage", Name: "Rage", Level: 10}},
			},
			{
				ID: ClassSorcerer, Name: "Sorcerer", Type: entities.ClassTypeMage,
				Tier: 2, RequiredLevel: 10, PreviousClassID: ClassNoviceMage,
				StatBonuses: entities.StatBlock{Intelligence: 9},
			},
			{
				ID: ClassPaladin, Name: "Paladin", Type: entities.ClassTypeKnight,
				Tier: 3, RequiredLevel: 20, PreviousClassID: ClassKnight,
				StatBonuses: entities.StatBlock{Strength: 8, Vitality: 6, Intelligence: 3, Dexterity: 1},
			},
			{
				ID: ClassGuardian, Name: "Guardian", Type: entities.ClassTypeTank,
				Tier: 3, RequiredLevel: 20, PreviousClassID: ClassKnight,
				StatBonuses: entities.StatBlock{Strength: 6, Vitality: 10},
			},
			{
				ID: ClassWarlord, Name: "Warlord", Type: entities.ClassTypeWarrior,
				Tier: 3, RequiredLevel: 20, PreviousClassID: ClassBerserker,
				StatBonuses:  entities.StatBlock{Strength: 14, Vitality: 3},
				Requirements: &entities.Requirements{Quests: []string{QuestOath}},
			},
		},
		Mappings: []entities.AdvancementMapping{
			{ID: MappingAwakenKnight, FromClassID: ClassNoviceWarrior, ToClassID: ClassKnight, LevelRequired: 10, Weight: 70, IsAwakening: true},
			{ID: MappingAwakenBerserker, FromClassID: ClassNoviceWarrior, ToClassID: ClassBerserker, LevelRequired: 10, Weight: 30, IsAwakening: true},
			{ID: MappingAwakenSorcerer, FromClassID: ClassNoviceMage, ToClassID: ClassSorcerer, LevelRequired: 10, Weight: 0, IsAwakening: true},
			{
				ID: MappingPromotePaladin, FromClassID: ClassKnight, ToClassID: ClassPaladin, LevelRequired: 20, Weight: 50,
				Requirements: &entities.Requirements{
					Dungeons: []entities.DungeonRequirement{{DungeonID: DungeonCrypt, RequiredCompletions: 5}},
				},
			},
			{
				ID: MappingPromoteGuardian, FromClassID: ClassKnight, ToClassID: ClassGuardian, LevelRequired: 20, Weight: 50,
				Requirements: &entities.Requirements{
					Items: []entities.ItemRequirement{{ItemID: ItemSigil, Quantity: 1, Consume: true}},
				},
			},
			{ID: MappingPromoteWarlord, FromClassID: ClassBerserker, ToClassID: ClassWarlord, LevelRequired: 20, Weight: 60, AllowPlayerChoice: true},
			{ID: MappingBerserkerGuardian, FromClassID: ClassBerserker, ToClassID: ClassGuardian, LevelRequired: 20, Weight: 40},
		},
		Items: []catalog.ItemDefinition{
			{
				ID: ItemGreatAxe, Name: "Great Axe",
				Restrictions: entities.ItemRestrictions{AllowedClassTypes: []entities.ClassType{entities.ClassTypeWarrior}},
			},
			{
				ID: ItemHeavyMail, Name: "Heavy Mail",
				Restrictions: entities.ItemRestrictions{RequiredTier: 2},
			},
		},
	}
}

// NewCharacter returns a classless level 1 character with base stats of 5
func NewCharacter(id string) *entities.Character {
	base := entities.StatBlock{Strength: 5, Intelligence: 5, Dexterity: 5, Vitality: 5, Luck: 5}
	return &entities.Character{
		ID:        id,
		UserID:    TestUserID,
		Name:      "Aria",
		Level:     1,
		Stats:     base,
		BaseStats: base,
		CreatedAt: 1700000000,
		UpdatedAt: 1700000000,
	}
}
