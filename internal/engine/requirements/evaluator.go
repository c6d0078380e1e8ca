// Package requirements checks whether a character qualifies for a class
// transition and reports what is missing when it does not
package requirements

//go:generate mockgen -destination=mock/mock_evaluator.go -package=requirementsmock github.com/KirkDiggler/rpg-advancement/internal/engine/requirements Evaluator

import (
	"context"

	"github.com/KirkDiggler/rpg-advancement/internal/entities"
	"github.com/KirkDiggler/rpg-advancement/internal/errors"
	"github.com/KirkDiggler/rpg-advancement/internal/repositories/catalog"
	"github.com/KirkDiggler/rpg-advancement/internal/repositories/character"
	"github.com/KirkDiggler/rpg-advancement/internal/repositories/inventory"
	"github.com/KirkDiggler/rpg-advancement/internal/repositories/progress"
)

// Evaluator answers "can this character take this transition". Unmet
// requirements are a normal result, never an error; errors are reserved for
// lookups that failed.
type Evaluator interface {
	// Evaluate loads the character and finds the mapping from its current
	// class to the target class
	// Returns errors.NotFound if the character or target class doesn't exist
	Evaluate(ctx context.Context, input *EvaluateInput) (*EvaluateOutput, error)

	// EvaluateMapping checks an already loaded character against a mapping
	// and its target class. A nil Mapping checks the class alone.
	EvaluateMapping(ctx context.Context, input *EvaluateMappingInput) (*EvaluateMappingOutput, error)
}

// ItemCounter answers item possession. character.Tx satisfies it, so a
// locked transaction can evaluate against its own snapshot.
type ItemCounter interface {
	ItemQuantity(ctx context.Context, itemID string) (int32, error)
}

// EvaluateInput defines the input for Evaluate
type EvaluateInput struct {
	CharacterID   string
	TargetClassID string
}

// EvaluateOutput defines the output for Evaluate
type EvaluateOutput struct {
	CanAdvance bool
	Missing    *entities.MissingRequirements
	// Mapping is nil when there is no edge, or for a first class
	Mapping     *entities.AdvancementMapping
	Character   *entities.Character
	TargetClass *entities.CharacterClass
}

// EvaluateMappingInput defines the input for EvaluateMapping
type EvaluateMappingInput struct {
	Character   *entities.Character
	Mapping     *entities.AdvancementMapping
	TargetClass *entities.CharacterClass
	// Items overrides the inventory repository when set
	Items ItemCounter
}

// EvaluateMappingOutput defines the output for EvaluateMapping
type EvaluateMappingOutput struct {
	CanAdvance bool
	Missing    *entities.MissingRequirements
}

// Config holds the dependencies for the evaluator
type Config struct {
	Characters character.Repository
	Catalog    catalog.Repository
	Progress   progress.Repository
	Inventory  inventory.Repository
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
	if c.Progress == nil {
		vb.RequiredField("Progress")
	}
	if c.Inventory == nil {
		vb.RequiredField("Inventory")
	}
	return vb.Build()
}

type evaluator struct {
	characters character.Repository
	catalog    catalog.Repository
	progress   progress.Repository
	inventory  inventory.Repository
}

// NewEvaluator creates a requirement evaluator
func NewEvaluator(cfg *Config) (Evaluator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &evaluator{
		characters: cfg.Characters,
		catalog:    cfg.Catalog,
		progress:   cfg.Progress,
		inventory:  cfg.Inventory,
	}, nil
}

func (e *evaluator) Evaluate(ctx context.Context, input *EvaluateInput) (*EvaluateOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("CharacterID", input.CharacterID, vb)
	errors.ValidateRequired("TargetClassID", input.TargetClassID, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	charOut, err := e.characters.Get(ctx, character.GetInput{ID: input.CharacterID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get character %s", input.CharacterID)
	}
	char := charOut.Character

	classOut, err := e.catalog.GetClass(ctx, catalog.GetClassInput{ID: input.TargetClassID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get target class %s", input.TargetClassID)
	}
	target := classOut.Class

	output := &EvaluateOutput{Character: char, TargetClass: target}

	if !char.HasClass() {
		// A first class has no incoming edge; only tier 1 is reachable
		if target.Tier != entities.MinTier {
			output.Missing = &entities.MissingRequirements{NoAdvancementPath: true}
			return output, nil
		}
		res, err := e.EvaluateMapping(ctx, &EvaluateMappingInput{Character: char, TargetClass: target})
		if err != nil {
			return nil, err
		}
		output.CanAdvance = res.CanAdvance
		output.Missing = res.Missing
		return output, nil
	}

	mapping, err := catalog.FindMapping(ctx, e.catalog, char.ClassID, target.ID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list mappings from %s", char.ClassID)
	}
	if mapping == nil {
		output.Missing = &entities.MissingRequirements{NoAdvancementPath: true}
		return output, nil
	}
	output.Mapping = mapping

	res, err := e.EvaluateMapping(ctx, &EvaluateMappingInput{
		Character:   char,
		Mapping:     mapping,
		TargetClass: target,
	})
	if err != nil {
		return nil, err
	}
	output.CanAdvance = res.CanAdvance
	output.Missing = res.Missing
	return output, nil
}

func (e *evaluator) EvaluateMapping(ctx context.Context, input *EvaluateMappingInput) (*EvaluateMappingOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.Character == nil {
		return nil, errors.InvalidArgument("character is required")
	}
	if input.TargetClass == nil {
		return nil, errors.InvalidArgument("target class is required")
	}

	char := input.Character
	missing := &entities.MissingRequirements{}

	requiredLevel := input.TargetClass.RequiredLevel
	reqs := input.TargetClass.Requirements
	if input.Mapping != nil {
		requiredLevel = max(requiredLevel, input.Mapping.LevelRequired)
		reqs = reqs.Merge(input.Mapping.Requirements)
	}

	if char.Level < requiredLevel {
		missing.Level = &entities.MissingThreshold{
			Required: int64(requiredLevel),
			Current:  int64(char.Level),
		}
	}

	if !reqs.IsEmpty() {
		if err := e.checkDungeons(ctx, char.ID, reqs.Dungeons, missing); err != nil {
			return nil, err
		}
		if err := e.checkQuests(ctx, char.ID, reqs.Quests, missing); err != nil {
			return nil, err
		}
		items := input.Items
		if items == nil {
			items = &inventoryCounter{repo: e.inventory, characterID: char.ID}
		}
		if err := checkItems(ctx, items, reqs.Items, missing); err != nil {
			return nil, err
		}
		checkStats(char.Stats, reqs.Stats, missing)
		if err := e.checkAchievements(ctx, char.ID, reqs.Achievements, missing); err != nil {
			return nil, err
		}
		if err := e.checkProfile(ctx, char.ID, reqs, missing); err != nil {
			return nil, err
		}
	}

	return &EvaluateMappingOutput{
		CanAdvance: missing.IsEmpty(),
		Missing:    missing,
	}, nil
}

func (e *evaluator) checkDungeons(ctx context.Context, characterID string, reqs []entities.DungeonRequirement, missing *entities.MissingRequirements) error {
	for _, req := range reqs {
		out, err := e.progress.CountVictories(ctx, progress.CountVictoriesInput{
			CharacterID: characterID,
			DungeonID:   req.DungeonID,
		})
		if err != nil {
			return errors.Wrapf(err, "failed to count victories in %s", req.DungeonID)
		}
		if out.Count < req.RequiredCompletions {
			missing.Dungeons = append(missing.Dungeons, entities.MissingDungeon{
				DungeonID: req.DungeonID,
				Required:  req.RequiredCompletions,
				Current:   out.Count,
			})
		}
	}
	return nil
}

func (e *evaluator) checkQuests(ctx context.Context, characterID string, quests []string, missing *entities.MissingRequirements) error {
	for _, questID := range quests {
		out, err := e.progress.IsQuestCompleted(ctx, progress.IsQuestCompletedInput{
			CharacterID: characterID,
			QuestID:     questID,
		})
		if err != nil {
			return errors.Wrapf(err, "failed to check quest %s", questID)
		}
		if !out.Completed {
			missing.Quests = append(missing.Quests, questID)
		}
	}
	return nil
}

func (e *evaluator) checkAchievements(ctx context.Context, characterID string, achievements []string, missing *entities.MissingRequirements) error {
	for _, achievementID := range achievements {
		out, err := e.progress.HasAchievement(ctx, progress.HasAchievementInput{
			CharacterID:   characterID,
			AchievementID: achievementID,
		})
		if err != nil {
			return errors.Wrapf(err, "failed to check achievement %s", achievementID)
		}
		if !out.Unlocked {
			missing.Achievements = append(missing.Achievements, achievementID)
		}
	}
	return nil
}

func (e *evaluator) checkProfile(ctx context.Context, characterID string, reqs *entities.Requirements, missing *entities.MissingRequirements) error {
	if reqs.MinPvPRank == 0 && reqs.MinGuildLevel == 0 && reqs.MinPlaytimeMinutes == 0 {
		return nil
	}

	profile, err := e.progress.GetProfile(ctx, progress.GetProfileInput{CharacterID: characterID})
	if err != nil {
		return errors.Wrap(err, "failed to get progress profile")
	}

	if profile.PvPRank < reqs.MinPvPRank {
		missing.PvPRank = &entities.MissingThreshold{Required: int64(reqs.MinPvPRank), Current: int64(profile.PvPRank)}
	}
	if profile.GuildLevel < reqs.MinGuildLevel {
		missing.GuildLevel = &entities.MissingThreshold{Required: int64(reqs.MinGuildLevel), Current: int64(profile.GuildLevel)}
	}
	if profile.PlaytimeMinutes < reqs.MinPlaytimeMinutes {
		missing.Playtime = &entities.MissingThreshold{Required: reqs.MinPlaytimeMinutes, Current: profile.PlaytimeMinutes}
	}
	return nil
}

func checkItems(ctx context.Context, items ItemCounter, reqs []entities.ItemRequirement, missing *entities.MissingRequirements) error {
	for _, req := range reqs {
		owned, err := items.ItemQuantity(ctx, req.ItemID)
		if err != nil {
			return errors.Wrapf(err, "failed to count item %s", req.ItemID)
		}
		if owned < req.Quantity {
			missing.Items = append(missing.Items, entities.MissingItem{
				ItemID:   req.ItemID,
				Required: req.Quantity,
				Current:  owned,
			})
		}
	}
	return nil
}

func checkStats(stats entities.StatBlock, req *entities.StatRequirement, missing *entities.MissingRequirements) {
	if req == nil {
		return
	}

	var below []string
	for _, s := range []struct {
		name     string
		have, at int32
	}{
		{"strength", stats.Strength, req.Min.Strength},
		{"intelligence", stats.Intelligence, req.Min.Intelligence},
		{"dexterity", stats.Dexterity, req.Min.Dexterity},
		{"vitality", stats.Vitality, req.Min.Vitality},
		{"luck", stats.Luck, req.Min.Luck},
	} {
		if s.have < s.at {
			below = append(below, s.name)
		}
	}

	total := stats.Total()
	if total >= req.MinTotal && len(below) == 0 {
		return
	}

	missing.Stats = &entities.MissingStats{
		RequiredTotal: req.MinTotal,
		CurrentTotal:  total,
		Below:         below,
		Required:      req.Min,
		Current:       stats,
	}
}

type inventoryCounter struct {
	repo        inventory.Repository
	characterID string
}

func (c *inventoryCounter) ItemQuantity(ctx context.Context, itemID string) (int32, error) {
	out, err := c.repo.OwnedQuantity(ctx, inventory.OwnedQuantityInput{
		CharacterID: c.characterID,
		ItemID:      itemID,
	})
	if err != nil {
		return 0, err
	}
	return out.Quantity, nil
}

// MissingFromError extracts the diagnostics carried by a RequirementsNotMet
// error, or nil
func MissingFromError(err error) *entities.MissingRequirements {
	meta := errors.GetMeta(err)
	if meta == nil {
		return nil
	}
	missing, _ := meta[errors.MetaMissing].(*entities.MissingRequirements)
	return missing
}

// NotMet builds the RequirementsNotMet error for a failed evaluation
func NotMet(targetClassID string, missing *entities.MissingRequirements) error {
	return errors.RequirementsNotMet("requirements not met for "+targetClassID).
		WithMeta(errors.MetaMissing, missing)
}
