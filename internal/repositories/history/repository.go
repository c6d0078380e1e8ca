// Package history reads the append-only class history. Rows are written by
// the character transaction.
package history

//go:generate mockgen -destination=mock/mock_repository.go -package=historymock github.com/KirkDiggler/rpg-advancement/internal/repositories/history Repository

import (
	"context"

	"github.com/KirkDiggler/rpg-advancement/internal/entities"
)

// Repository defines read access to class history
type Repository interface {
	// ListByCharacter returns a character's history oldest first
	// Returns errors.InvalidArgument for empty IDs
	ListByCharacter(ctx context.Context, input ListByCharacterInput) (*ListByCharacterOutput, error)
}

// ListByCharacterInput defines the input for listing history
type ListByCharacterInput struct {
	CharacterID string
}

// ListByCharacterOutput defines the output for listing history
type ListByCharacterOutput struct {
	History []*entities.ClassHistory
}

// SumDeltas adds up the stat deltas of every row
func SumDeltas(rows []*entities.ClassHistory) entities.StatBlock {
	var total entities.StatBlock
	for _, row := range rows {
		total = total.Add(row.StatDelta)
	}
	return total
}

const errCharacterIDEmpty = "character ID cannot be empty"
