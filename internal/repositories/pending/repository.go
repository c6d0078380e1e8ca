// Package pending stores advancement offers waiting on the player
package pending

//go:generate mockgen -destination=mock/mock_repository.go -package=pendingmock github.com/KirkDiggler/rpg-advancement/internal/repositories/pending Repository

import (
	"context"
	"time"

	"github.com/KirkDiggler/rpg-advancement/internal/entities"
)

// DefaultTTL is how long an offer stays available when no TTL is configured
const DefaultTTL = 7 * 24 * time.Hour

// Repository defines persistence for pending advancements. A character has at
// most one available offer at a time.
type Repository interface {
	// Create stores a new available offer. Any offer still available for the
	// character becomes expired.
	// Returns errors.InvalidArgument for validation failures
	// Returns errors.Aborted if a concurrent writer raced the replacement
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves an offer by ID in any status
	// Returns errors.NotFound if the offer doesn't exist
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// GetLatest returns the character's most recent offer in any status
	// Returns errors.NotFound if the character never had one, or it was cleared
	GetLatest(ctx context.Context, input GetLatestInput) (*GetLatestOutput, error)

	// ListAvailable returns the character's unexpired available offers
	ListAvailable(ctx context.Context, input ListAvailableInput) (*ListAvailableOutput, error)

	// MarkAccepted moves an offer from available to accepted
	// Returns errors.NotFound if the offer doesn't exist
	// Returns errors.InvalidState if it is no longer available
	MarkAccepted(ctx context.Context, input MarkAcceptedInput) (*MarkAcceptedOutput, error)

	// Clear deletes the character's available offers
	Clear(ctx context.Context, input ClearInput) (*ClearOutput, error)
}

// CreateInput defines the input for creating an offer
type CreateInput struct {
	CharacterID string
	UserID      string
	Options     []entities.PendingOption
}

// CreateOutput defines the output for creating an offer
type CreateOutput struct {
	Pending *entities.PendingAdvancement
	// ReplacedID is the offer that was expired by this one, if any
	ReplacedID string
}

// GetInput defines the input for getting an offer
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting an offer
type GetOutput struct {
	Pending *entities.PendingAdvancement
}

// GetLatestInput defines the input for getting a character's latest offer
type GetLatestInput struct {
	CharacterID string
}

// GetLatestOutput defines the output for getting a character's latest offer
type GetLatestOutput struct {
	Pending *entities.PendingAdvancement
}

// ListAvailableInput defines the input for listing offers
type ListAvailableInput struct {
	CharacterID string
}

// ListAvailableOutput defines the output for listing offers
type ListAvailableOutput struct {
	Pending []*entities.PendingAdvancement
}

// MarkAcceptedInput defines the input for accepting an offer
type MarkAcceptedInput struct {
	ID string
}

// MarkAcceptedOutput defines the output for accepting an offer
type MarkAcceptedOutput struct {
	Pending *entities.PendingAdvancement
}

// ClearInput defines the input for clearing offers
type ClearInput struct {
	CharacterID string
}

// ClearOutput defines the output for clearing offers
type ClearOutput struct {
	Cleared int
}

const (
	errCharacterIDEmpty = "character ID cannot be empty"
	errPendingIDEmpty   = "pending ID cannot be empty"
	errOptionsEmpty     = "options cannot be empty"
)
