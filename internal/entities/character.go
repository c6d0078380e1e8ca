package entities

// Character is the slice of a player character the engine reads and mutates.
// ClassID is empty until the first awakening.
type Character struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name,omitempty"`
	Level     int32     `json:"level"`
	ClassID   string    `json:"class_id,omitempty"`
	Stats     StatBlock `json:"stats"`
	BaseStats StatBlock `json:"base_stats"`
	CreatedAt int64     `json:"created_at"`
	UpdatedAt int64     `json:"updated_at"`
}

// HasClass reports whether the character has an active class
func (c *Character) HasClass() bool {
	return c.ClassID != ""
}

// EquippedItem is an inventory row placed in an equipment slot
type EquippedItem struct {
	ItemID   string `json:"item_id"`
	Slot     string `json:"slot"`
	Equipped bool   `json:"equipped"`
}

// ItemRestrictions are the class constraints of an item. A zero
// RequiredTier means any tier.
type ItemRestrictions struct {
	RequiredTier         int32       `json:"required_tier,omitempty" yaml:"required_tier,omitempty"`
	AllowedClassTypes    []ClassType `json:"allowed_class_types,omitempty" yaml:"allowed_class_types,omitempty"`
	RestrictedClassTypes []ClassType `json:"restricted_class_types,omitempty" yaml:"restricted_class_types,omitempty"`
}

// Allows reports whether a character of class can keep the item equipped
func (r *ItemRestrictions) Allows(class *CharacterClass) bool {
	if r == nil {
		return true
	}
	if class == nil {
		return r.RequiredTier == 0 && len(r.AllowedClassTypes) == 0
	}
	if r.RequiredTier > 0 && class.Tier < r.RequiredTier {
		return false
	}
	for _, t := range r.RestrictedClassTypes {
		if t == class.Type {
			return false
		}
	}
	if len(r.AllowedClassTypes) == 0 {
		return true
	}
	for _, t := range r.AllowedClassTypes {
		if t == class.Type {
			return true
		}
	}
	return false
}
