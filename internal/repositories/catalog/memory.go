package catalog

import (
	"context"
	"sort"

	"github.com/KirkDiggler/rpg-advancement/internal/entities"
	"github.com/KirkDiggler/rpg-advancement/internal/errors"
)

type memoryRepository struct {
	classes      map[string]*entities.CharacterClass
	mappings     map[string]*entities.AdvancementMapping
	mappingsFrom map[string][]*entities.AdvancementMapping
	tiers        map[int32][]*entities.CharacterClass
}

// NewMemory builds an immutable in-process catalog from a validated document
func NewMemory(doc *Document) (Repository, error) {
	if doc == nil {
		return nil, errors.InvalidArgument("document cannot be nil")
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	r := &memoryRepository{
		classes:      make(map[string]*entities.CharacterClass, len(doc.Classes)),
		mappings:     make(map[string]*entities.AdvancementMapping, len(doc.Mappings)),
		mappingsFrom: make(map[string][]*entities.AdvancementMapping),
		tiers:        make(map[int32][]*entities.CharacterClass),
	}

	for i := range doc.Classes {
		c := doc.Classes[i]
		r.classes[c.ID] = &c
		r.tiers[c.Tier] = append(r.tiers[c.Tier], &c)
	}
	for i := range doc.Mappings {
		m := doc.Mappings[i]
		r.mappings[m.ID] = &m
		r.mappingsFrom[m.FromClassID] = append(r.mappingsFrom[m.FromClassID], &m)
	}
	for _, list := range r.tiers {
		sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	}
	for _, list := range r.mappingsFrom {
		sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	}

	return r, nil
}

func (r *memoryRepository) GetClass(_ context.Context, input GetClassInput) (*GetClassOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errClassIDEmpty)
	}
	c, ok := r.classes[input.ID]
	if !ok {
		return nil, errors.NotFoundf("class %s not found", input.ID)
	}
	cp := *c
	return &GetClassOutput{Class: &cp}, nil
}

func (r *memoryRepository) GetMapping(_ context.Context, input GetMappingInput) (*GetMappingOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errMappingIDEmpty)
	}
	m, ok := r.mappings[input.ID]
	if !ok {
		return nil, errors.NotFoundf("mapping %s not found", input.ID)
	}
	cp := *m
	return &GetMappingOutput{Mapping: &cp}, nil
}

func (r *memoryRepository) ListMappingsFrom(_ context.Context, input ListMappingsFromInput) (*ListMappingsFromOutput, error) {
	if input.ClassID == "" {
		return nil, errors.InvalidArgument(errClassIDEmpty)
	}
	src := r.mappingsFrom[input.ClassID]
	out := make([]*entities.AdvancementMapping, 0, len(src))
	for _, m := range src {
		cp := *m
		out = append(out, &cp)
	}
	return &ListMappingsFromOutput{Mappings: out}, nil
}

func (r *memoryRepository) ListClassesByTier(_ context.Context, input ListClassesByTierInput) (*ListClassesByTierOutput, error) {
	if input.Tier < entities.MinTier || input.Tier > entities.MaxTier {
		return nil, errors.InvalidArgumentf("tier must be between %d and %d", entities.MinTier, entities.MaxTier)
	}
	src := r.tiers[input.Tier]
	out := make([]*entities.CharacterClass, 0, len(src))
	for _, c := range src {
		cp := *c
		out = append(out, &cp)
	}
	return &ListClassesByTierOutput{Classes: out}, nil
}
