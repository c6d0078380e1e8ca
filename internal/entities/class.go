// Package entities holds the advancement engine's data model
package entities

import (
	"github.com/KirkDiggler/rpg-advancement/internal/errors"
)

// MinTier and MaxTier bound the class hierarchy
const (
	MinTier int32 = 1
	MaxTier int32 = 10
)

// ClassType is one of the ten class archetypes
type ClassType string

// Class archetypes
const (
	ClassTypeWarrior     ClassType = "warrior"
	ClassTypeMage        ClassType = "mage"
	ClassTypeArcher      ClassType = "archer"
	ClassTypeAssassin    ClassType = "assassin"
	ClassTypePriest      ClassType = "priest"
	ClassTypeKnight      ClassType = "knight"
	ClassTypeTank        ClassType = "tank"
	ClassTypeHealer      ClassType = "healer"
	ClassTypeSummoner    ClassType = "summoner"
	ClassTypeNecromancer ClassType = "necromancer"
)

// AllClassTypes lists every archetype in display order
var AllClassTypes = []ClassType{
	ClassTypeWarrior,
	ClassTypeMage,
	ClassTypeArcher,
	ClassTypeAssassin,
	ClassTypePriest,
	ClassTypeKnight,
	ClassTypeTank,
	ClassTypeHealer,
	ClassTypeSummoner,
	ClassTypeNecromancer,
}

// IsValid reports whether t is a known archetype
func (t ClassType) IsValid() bool {
	for _, known := range AllClassTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseClassType converts a raw string into a ClassType
func ParseClassType(s string) (ClassType, error) {
	t := ClassType(s)
	if !t.IsValid() {
		return "", errors.InvalidArgumentf("unknown class type %q", s)
	}
	return t, nil
}

// StatBlock holds the five core stats
type StatBlock struct {
	Strength     int32 `json:"strength" yaml:"strength"`
	Intelligence int32 `json:"intelligence" yaml:"intelligence"`
	Dexterity    int32 `json:"dexterity" yaml:"dexterity"`
	Vitality     int32 `json:"vitality" yaml:"vitality"`
	Luck         int32 `json:"luck" yaml:"luck"`
}

// Add returns s + o per attribute
func (s StatBlock) Add(o StatBlock) StatBlock {
	return StatBlock{
		Strength:     s.Strength + o.Strength,
		Intelligence: s.Intelligence + o.Intelligence,
		Dexterity:    s.Dexterity + o.Dexterity,
		Vitality:     s.Vitality + o.Vitality,
		Luck:         s.Luck + o.Luck,
	}
}

// Sub returns s - o per attribute
func (s StatBlock) Sub(o StatBlock) StatBlock {
	return StatBlock{
		Strength:     s.Strength - o.Strength,
		Intelligence: s.Intelligence - o.Intelligence,
		Dexterity:    s.Dexterity - o.Dexterity,
		Vitality:     s.Vitality - o.Vitality,
		Luck:         s.Luck - o.Luck,
	}
}

// Total sums the five stats
func (s StatBlock) Total() int64 {
	return int64(s.Strength) + int64(s.Intelligence) + int64(s.Dexterity) +
		int64(s.Vitality) + int64(s.Luck)
}

// IsZero reports whether every stat is zero
func (s StatBlock) IsZero() bool {
	return s == StatBlock{}
}

// SkillUnlock describes a skill granted by a class
type SkillUnlock struct {
	SkillID string `json:"skill_id" yaml:"skill_id"`
	Name    string `json:"name" yaml:"name"`
	Level   int32  `json:"level" yaml:"level"`
}

// CharacterClass is a class definition. Classes are authored out of band and
// read-only to the engine.
type CharacterClass struct {
	ID              string        `json:"id" yaml:"id"`
	Name            string        `json:"name" yaml:"name"`
	Type            ClassType     `json:"type" yaml:"type"`
	Tier            int32         `json:"tier" yaml:"tier"`
	RequiredLevel   int32         `json:"required_level" yaml:"required_level"`
	StatBonuses     StatBlock     `json:"stat_bonuses" yaml:"stat_bonuses"`
	SkillUnlocks    []SkillUnlock `json:"skill_unlocks,omitempty" yaml:"skill_unlocks,omitempty"`
	Requirements    *Requirements `json:"requirements,omitempty" yaml:"requirements,omitempty"`
	PreviousClassID string        `json:"previous_class_id,omitempty" yaml:"previous_class_id,omitempty"`
}

// AdvancementMapping is a directed edge between two classes
type AdvancementMapping struct {
	ID                string        `json:"id" yaml:"id"`
	FromClassID       string        `json:"from_class_id" yaml:"from_class_id"`
	ToClassID         string        `json:"to_class_id" yaml:"to_class_id"`
	LevelRequired     int32         `json:"level_required" yaml:"level_required"`
	Weight            int32         `json:"weight" yaml:"weight"`
	AllowPlayerChoice bool          `json:"allow_player_choice" yaml:"allow_player_choice"`
	IsAwakening       bool          `json:"is_awakening" yaml:"is_awakening"`
	Requirements      *Requirements `json:"requirements,omitempty" yaml:"requirements,omitempty"`
}
