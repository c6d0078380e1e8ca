// Package character provides the interface for character persistence and
// the locked transaction every advancement runs in
package character

//go:generate mockgen -destination=mock/mock_repository.go -package=charactermock github.com/KirkDiggler/rpg-advancement/internal/repositories/character Repository,Tx

import (
	"context"

	"github.com/KirkDiggler/rpg-advancement/internal/entities"
)

// Repository defines the interface for character persistence
type Repository interface {
	// Create stores a new character
	// Returns errors.InvalidArgument for validation failures
	// Returns errors.AlreadyExists if character with same ID exists
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves a character by ID without taking the lock
	// Returns errors.InvalidArgument for empty IDs
	// Returns errors.NotFound if character doesn't exist
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Transact runs fn while holding the character's write lock. Writes made
	// through the Tx are committed atomically when fn returns nil and
	// discarded otherwise.
	// Returns errors.NotFound if character doesn't exist
	// Returns errors.Aborted if the lock could not be acquired or a
	// concurrent writer invalidated the transaction
	// Returns whatever error fn returns
	Transact(ctx context.Context, input TransactInput) (*TransactOutput, error)
}

// Tx is the view of one character inside a locked transaction
type Tx interface {
	// Character returns the character as loaded under the lock
	Character() *entities.Character

	// EquippedItems lists items currently equipped
	EquippedItems(ctx context.Context) ([]entities.EquippedItem, error)

	// ItemQuantity returns the owned quantity of an item, net of
	// consumption staged in this transaction
	ItemQuantity(ctx context.Context, itemID string) (int32, error)

	// ConsumeItem removes qty units of an item. Rows reaching zero are
	// removed.
	// Returns errors.RequirementsNotMet if the character owns fewer than qty
	ConsumeItem(ctx context.Context, itemID string, qty int32) error

	// Unequip clears the equipped flag of the items; the items stay owned
	Unequip(ctx context.Context, itemIDs []string) error

	// ClaimPending moves a pending advancement of this character from
	// available to accepted
	// Returns errors.NotFound if the record doesn't exist
	// Returns errors.InvalidState if it is not available
	ClaimPending(ctx context.Context, pendingID string) error

	// ExpirePending retires the character's available offer, if any. A
	// transition that does not come from the offer makes it stale.
	ExpirePending(ctx context.Context) error

	// SaveCharacter stages the updated character row
	SaveCharacter(ctx context.Context, character *entities.Character) error

	// AppendHistory stages a class history row
	AppendHistory(ctx context.Context, history *entities.ClassHistory) error
}

// TxFunc is the unit of work run under the character lock
type TxFunc func(ctx context.Context, tx Tx) error

// CreateInput defines the input for creating a character
type CreateInput struct {
	Character *entities.Character
}

// CreateOutput defines the output for creating a character
type CreateOutput struct {
	Character *entities.Character
}

// GetInput defines the input for getting a character
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting a character
type GetOutput struct {
	Character *entities.Character
}

// TransactInput defines the input for a locked transaction
type TransactInput struct {
	CharacterID string
	Fn          TxFunc
}

// TransactOutput defines the output for a locked transaction
type TransactOutput struct {
	// Character is the row as committed
	Character *entities.Character
}

const (
	errCharacterNil     = "character cannot be nil"
	errCharacterIDEmpty = "character ID cannot be empty"
	errFnNil            = "transaction function cannot be nil"
	errItemIDEmpty      = "item ID cannot be empty"
	errPendingIDEmpty   = "pending ID cannot be empty"
)
