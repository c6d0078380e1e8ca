// Package transition applies a class change to a character inside the
// character's locked transaction
package transition

//go:generate mockgen -destination=mock/mock_applier.go -package=transitionmock github.com/KirkDiggler/rpg-advancement/internal/engine/transition Applier

import (
	"context"
	"log/slog"

	"github.com/KirkDiggler/rpg-advancement/internal/engine/requirements"
	"github.com/KirkDiggler/rpg-advancement/internal/entities"
	"github.com/KirkDiggler/rpg-advancement/internal/errors"
	"github.com/KirkDiggler/rpg-advancement/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-advancement/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-advancement/internal/repositories/catalog"
	"github.com/KirkDiggler/rpg-advancement/internal/repositories/character"
	"github.com/KirkDiggler/rpg-advancement/internal/repositories/inventory"
)

// Applier runs a class transition atomically. Any failure leaves the
// character, its inventory, equipment, pending offers and history untouched.
type Applier interface {
	// Apply moves the character along a mapping, or to a first class when
	// no mapping is given
	// Returns errors.InvalidState if the character is not in the expected
	// class or the target is not the next tier
	// Returns errors.RequirementsNotMet with diagnostics when the locked
	// re-check fails
	// Returns errors.NotFound for unknown characters, classes or pending
	// records
	Apply(ctx context.Context, input *ApplyInput) (*ApplyOutput, error)
}

// ApplyInput defines the input for Apply
type ApplyInput struct {
	CharacterID string

	// Mapping is the edge taken. Nil means a first class assignment to
	// TargetClassID.
	Mapping       *entities.AdvancementMapping
	TargetClassID string

	Reason            entities.HistoryReason
	TriggeredByUserID string

	// PendingID is claimed in the same transaction when set
	PendingID string

	// SkipRequirements keeps only the level check. Awakening draws use it.
	SkipRequirements bool
}

// Result is what a successful transition changed
type Result struct {
	Success           bool                   `json:"success"`
	NewClassID        string                 `json:"new_class_id"`
	PreviousClassID   string                 `json:"previous_class_id,omitempty"`
	StatDelta         entities.StatBlock     `json:"stat_delta"`
	UnlockedSkills    []entities.SkillUnlock `json:"unlocked_skills,omitempty"`
	UnequippedItemIDs []string               `json:"unequipped_item_ids,omitempty"`
}

// ApplyOutput defines the output for Apply
type ApplyOutput struct {
	Result    *Result
	History   *entities.ClassHistory
	Character *entities.Character
}

// Config holds the dependencies for the applier
type Config struct {
	Characters  character.Repository
	Catalog     catalog.Repository
	Inventory   inventory.Repository
	Evaluator   requirements.Evaluator
	Clock       clock.Clock
	IDGenerator idgen.Generator
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}

	vb := errors.NewValidationBuilder()
	if c.Characters == nil {
		vb.RequiredField("Characters")
	}
	if c.Catalog == nil {
		vb.RequiredField("Catalog")
	}
	if c.Inventory == nil {
		vb.RequiredField("Inventory")
	}
	if c.Evaluator == nil {
		vb.RequiredField("Evaluator")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}
	return vb.Build()
}

type applier struct {
	characters character.Repository
	catalog    catalog.Repository
	inventory  inventory.Repository
	evaluator  requirements.Evaluator
	clock      clock.Clock
	idGen      idgen.Generator
}

// NewApplier creates a transition applier
func NewApplier(cfg *Config) (Applier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}

	return &applier{
		characters: cfg.Characters,
		catalog:    cfg.Catalog,
		inventory:  cfg.Inventory,
		evaluator:  cfg.Evaluator,
		clock:      c,
		idGen:      cfg.IDGenerator,
	}, nil
}

func (a *applier) Apply(ctx context.Context, input *ApplyInput) (*ApplyOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("CharacterID", input.CharacterID, vb)
	errors.ValidateRequired("Reason", string(input.Reason), vb)
	if input.Mapping == nil && input.TargetClassID == "" {
		vb.Field("TargetClassID", "target class is required without a mapping")
	}
	if input.Mapping != nil && input.TargetClassID != "" && input.TargetClassID != input.Mapping.ToClassID {
		vb.Fieldf("TargetClassID", "does not match mapping target %s", input.Mapping.ToClassID)
	}
	if err := vb.Build(); err != nil {
		return nil, err
	}

	output := &ApplyOutput{}
	_, err := a.characters.Transact(ctx, character.TransactInput{
		CharacterID: input.CharacterID,
		Fn: func(ctx context.Context, tx character.Tx) error {
			res, history, char, err := a.apply(ctx, tx, input)
			if err != nil {
				return err
			}
			output.Result = res
			output.History = history
			output.Character = char
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "class transition applied",
		"character_id", input.CharacterID,
		"previous_class_id", output.Result.PreviousClassID,
		"new_class_id", output.Result.NewClassID,
		"reason", input.Reason,
		"unequipped_count", len(output.Result.UnequippedItemIDs))

	return output, nil
}

func (a *applier) apply(ctx context.Context, tx character.Tx, input *ApplyInput) (*Result, *entities.ClassHistory, *entities.Character, error) {
	char := tx.Character()

	targetID := input.TargetClassID
	if input.Mapping != nil {
		if char.ClassID != input.Mapping.FromClassID {
			return nil, nil, nil, errors.InvalidStatef("character %s is %s, not %s",
				char.ID, displayClass(char.ClassID), input.Mapping.FromClassID)
		}
		targetID = input.Mapping.ToClassID
	} else if char.HasClass() {
		return nil, nil, nil, errors.InvalidState("User already has a class")
	}

	target, err := a.getClass(ctx, targetID)
	if err != nil {
		return nil, nil, nil, err
	}

	var previous *entities.CharacterClass
	if char.HasClass() {
		previous, err = a.getClass(ctx, char.ClassID)
		if err != nil {
			return nil, nil, nil, err
		}
	}

	if err := checkTier(previous, target); err != nil {
		return nil, nil, nil, err
	}

	if err := a.checkRequirements(ctx, tx, char, input, target); err != nil {
		return nil, nil, nil, err
	}

	if input.PendingID != "" {
		if err := tx.ClaimPending(ctx, input.PendingID); err != nil {
			return nil, nil, nil, err
		}
	} else if err := tx.ExpirePending(ctx); err != nil {
		return nil, nil, nil, err
	}

	if !input.SkipRequirements {
		if err := consumeItems(ctx, tx, input.Mapping, target); err != nil {
			return nil, nil, nil, err
		}
	}

	var delta entities.StatBlock
	if previous != nil {
		delta = target.StatBonuses.Sub(previous.StatBonuses)
	} else {
		delta = target.StatBonuses
	}

	now := a.clock.Now().Unix()
	updated := *char
	updated.Stats = char.Stats.Add(delta)
	updated.ClassID = target.ID
	updated.UpdatedAt = now
	if err := tx.SaveCharacter(ctx, &updated); err != nil {
		return nil, nil, nil, err
	}

	unequipped, err := a.unequipIncompatible(ctx, tx, target)
	if err != nil {
		return nil, nil, nil, err
	}

	history := &entities.ClassHistory{
		ID:                a.idGen.Generate(),
		CharacterID:       char.ID,
		PreviousClassID:   char.ClassID,
		NewClassID:        target.ID,
		Reason:            input.Reason,
		TriggeredByUserID: input.TriggeredByUserID,
		StatDelta:         delta,
		CreatedAt:         now,
	}
	if err := tx.AppendHistory(ctx, history); err != nil {
		return nil, nil, nil, err
	}

	return &Result{
		Success:           true,
		NewClassID:        target.ID,
		PreviousClassID:   char.ClassID,
		StatDelta:         delta,
		UnlockedSkills:    target.SkillUnlocks,
		UnequippedItemIDs: unequipped,
	}, history, &updated, nil
}

func (a *applier) getClass(ctx context.Context, id string) (*entities.CharacterClass, error) {
	out, err := a.catalog.GetClass(ctx, catalog.GetClassInput{ID: id})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get class %s", id)
	}
	return out.Class, nil
}

func checkTier(previous, target *entities.CharacterClass) error {
	if previous == nil {
		if target.Tier != entities.MinTier {
			return errors.InvalidStatef("first class must be tier %d, %s is tier %d",
				entities.MinTier, target.ID, target.Tier)
		}
		return nil
	}
	if target.Tier != previous.Tier+1 {
		return errors.InvalidStatef("%s is tier %d, expected tier %d after %s",
			target.ID, target.Tier, previous.Tier+1, previous.ID)
	}
	return nil
}

func (a *applier) checkRequirements(ctx context.Context, tx character.Tx, char *entities.Character, input *ApplyInput, target *entities.CharacterClass) error {
	if input.SkipRequirements {
		required := target.RequiredLevel
		if input.Mapping != nil {
			required = max(required, input.Mapping.LevelRequired)
		}
		if char.Level < required {
			return requirements.NotMet(target.ID, &entities.MissingRequirements{
				Level: &entities.MissingThreshold{Required: int64(required), Current: int64(char.Level)},
			})
		}
		return nil
	}

	res, err := a.evaluator.EvaluateMapping(ctx, &requirements.EvaluateMappingInput{
		Character:   char,
		Mapping:     input.Mapping,
		TargetClass: target,
		Items:       tx,
	})
	if err != nil {
		return err
	}
	if !res.CanAdvance {
		return requirements.NotMet(target.ID, res.Missing)
	}
	return nil
}

func consumeItems(ctx context.Context, tx character.Tx, mapping *entities.AdvancementMapping, target *entities.CharacterClass) error {
	reqs := target.Requirements
	if mapping != nil {
		reqs = reqs.Merge(mapping.Requirements)
	}
	if reqs == nil {
		return nil
	}

	for _, item := range reqs.Items {
		if !item.Consume || item.Quantity <= 0 {
			continue
		}
		if err := tx.ConsumeItem(ctx, item.ItemID, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func (a *applier) unequipIncompatible(ctx context.Context, tx character.Tx, target *entities.CharacterClass) ([]string, error) {
	equipped, err := tx.EquippedItems(ctx)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, item := range equipped {
		out, err := a.inventory.GetRestrictions(ctx, inventory.GetRestrictionsInput{ItemID: item.ItemID})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to get restrictions for item %s", item.ItemID)
		}
		if !out.Restrictions.Allows(target) {
			ids = append(ids, item.ItemID)
		}
	}

	if err := tx.Unequip(ctx, ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func displayClass(id string) string {
	if id == "" {
		return "classless"
	}
	return id
}
