// Package inventory answers item ownership and item restriction queries
package inventory

//go:generate mockgen -destination=mock/mock_repository.go -package=inventorymock github.com/KirkDiggler/rpg-advancement/internal/repositories/inventory Repository

import (
	"context"

	"github.com/KirkDiggler/rpg-advancement/internal/entities"
	"github.com/KirkDiggler/rpg-advancement/internal/errors"
)

// Repository defines the inventory queries the engine consumes
type Repository interface {
	// OwnedQuantity sums a character's quantity of an item across rows
	// Returns errors.InvalidArgument for empty IDs
	OwnedQuantity(ctx context.Context, input OwnedQuantityInput) (*OwnedQuantityOutput, error)

	// GetRestrictions returns an item's class restrictions. Items without
	// restrictions return an empty value, not NotFound.
	GetRestrictions(ctx context.Context, input GetRestrictionsInput) (*GetRestrictionsOutput, error)
}

// Store adds the writes used when loading item metadata
type Store interface {
	Repository

	// SetRestrictions replaces an item's class restrictions
	SetRestrictions(ctx context.Context, input SetRestrictionsInput) (*SetRestrictionsOutput, error)
}

// OwnedQuantityInput defines the input for an ownership query
type OwnedQuantityInput struct {
	CharacterID string
	ItemID      string
}

// OwnedQuantityOutput defines the output for an ownership query
type OwnedQuantityOutput struct {
	Quantity int32
}

// GetRestrictionsInput defines the input for a restriction lookup
type GetRestrictionsInput struct {
	ItemID string
}

// GetRestrictionsOutput defines the output for a restriction lookup
type GetRestrictionsOutput struct {
	Restrictions *entities.ItemRestrictions
}

// SetRestrictionsInput defines the input for writing restrictions
type SetRestrictionsInput struct {
	ItemID       string
	Restrictions entities.ItemRestrictions
}

// SetRestrictionsOutput defines the output for writing restrictions
type SetRestrictionsOutput struct{}

const (
	errCharacterIDEmpty = "character ID cannot be empty"
	errItemIDEmpty      = "item ID cannot be empty"
)

func validateOwned(input OwnedQuantityInput) error {
	vb := errors.NewValidationBuilder()
	if input.CharacterID == "" {
		vb.Field("CharacterID", errCharacterIDEmpty)
	}
	if input.ItemID == "" {
		vb.Field("ItemID", errItemIDEmpty)
	}
	return vb.Build()
}
