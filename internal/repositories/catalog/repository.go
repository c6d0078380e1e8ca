// Package catalog provides read access to class definitions and advancement
// mappings
package catalog

//go:generate mockgen -destination=mock/mock_repository.go -package=catalogmock github.com/KirkDiggler/rpg-advancement/internal/repositories/catalog Repository

import (
	"context"

	"github.com/KirkDiggler/rpg-advancement/internal/entities"
)

// Repository defines read-only access to the class catalog
type Repository interface {
	// GetClass retrieves a class definition by ID
	// Returns errors.InvalidArgument for empty IDs
	// Returns errors.NotFound if the class doesn't exist
	GetClass(ctx context.Context, input GetClassInput) (*GetClassOutput, error)

	// GetMapping retrieves an advancement mapping by ID
	// Returns errors.InvalidArgument for empty IDs
	// Returns errors.NotFound if the mapping doesn't exist
	GetMapping(ctx context.Context, input GetMappingInput) (*GetMappingOutput, error)

	// ListMappingsFrom returns every mapping leaving a class, ordered by ID
	ListMappingsFrom(ctx context.Context, input ListMappingsFromInput) (*ListMappingsFromOutput, error)

	// ListClassesByTier returns every class in a tier, ordered by ID
	ListClassesByTier(ctx context.Context, input ListClassesByTierInput) (*ListClassesByTierOutput, error)
}

// GetClassInput defines the input for getting a class
type GetClassInput struct {
	ID string
}

// GetClassOutput defines the output for getting a class
type GetClassOutput struct {
	Class *entities.CharacterClass
}

// GetMappingInput defines the input for getting a mapping
type GetMappingInput struct {
	ID string
}

// GetMappingOutput defines the output for getting a mapping
type GetMappingOutput struct {
	Mapping *entities.AdvancementMapping
}

// ListMappingsFromInput defines the input for listing outgoing mappings
type ListMappingsFromInput struct {
	ClassID string
}

// ListMappingsFromOutput defines the output for listing outgoing mappings
type ListMappingsFromOutput struct {
	Mappings []*entities.AdvancementMapping
}

// ListClassesByTierInput defines the input for listing a tier
type ListClassesByTierInput struct {
	Tier int32
}

// ListClassesByTierOutput defines the output for listing a tier
type ListClassesByTierOutput struct {
	Classes []*entities.CharacterClass
}

// FindMapping returns the mapping between two classes, or nil when there is
// no edge
func FindMapping(ctx context.Context, repo Repository, fromClassID, toClassID string) (*entities.AdvancementMapping, error) {
	out, err := repo.ListMappingsFrom(ctx, ListMappingsFromInput{ClassID: fromClassID})
	if err != nil {
		return nil, err
	}
	for _, m := range out.Mappings {
		if m.ToClassID == toClassID {
			return m, nil
		}
	}
	return nil, nil
}
