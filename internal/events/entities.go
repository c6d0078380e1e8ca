package events

// CharacterEntity identifies a character to the rpg-toolkit event bus
type CharacterEntity struct {
	ID string
}

// GetID returns the character's ID
func (c *CharacterEntity) GetID() string {
	return c.ID
}

// GetType returns the entity type for rpg-toolkit
func (c *CharacterEntity) GetType() string {
	return "character"
}

// ClassEntity identifies a class to the rpg-toolkit event bus
type ClassEntity struct {
	ID string
}

// GetID returns the class ID
func (c *ClassEntity) GetID() string {
	return c.ID
}

// GetType returns the entity type for rpg-toolkit
func (c *ClassEntity) GetType() string {
	return "character_class"
}
