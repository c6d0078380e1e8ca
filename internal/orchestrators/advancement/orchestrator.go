// Package advancement is the entry point for class advancement: first
// classes, promotions, pending choices and level-up reactions
package advancement

import (
	"context"
	"log/slog"
	"sort"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/KirkDiggler/rpg-advancement/internal/engine/requirements"
	"github.com/KirkDiggler/rpg-advancement/internal/engine/selection"
	"github.com/KirkDiggler/rpg-advancement/internal/engine/transition"
	"github.com/KirkDiggler/rpg-advancement/internal/entities"
	"github.com/KirkDiggler/rpg-advancement/internal/errors"
	"github.com/KirkDiggler/rpg-advancement/internal/events"
	"github.com/KirkDiggler/rpg-advancement/internal/repositories/catalog"
	"github.com/KirkDiggler/rpg-advancement/internal/repositories/character"
	"github.com/KirkDiggler/rpg-advancement/internal/repositories/history"
	"github.com/KirkDiggler/rpg-advancement/internal/repositories/pending"
)

// Service defines the advancement operations exposed to callers
type Service interface {
	// Awaken assigns a first class drawn uniformly among the tier 1 classes
	// the character's level allows
	// Returns errors.InvalidState if the character already has a class
	Awaken(ctx context.Context, input *AwakenInput) (*AwakenOutput, error)

	// GetAvailableAdvancements lists every outgoing transition with its
	// diagnostics
	GetAvailableAdvancements(ctx context.Context, input *GetAvailableAdvancementsInput) (*GetAvailableAdvancementsOutput, error)

	// PerformAdvancement moves the character to a target class
	// Returns errors.NoAdvancementPath if no mapping leads there
	// Returns errors.InvalidState if the target is not the next tier
	// Returns errors.RequirementsNotMet carrying the missing diagnostics
	PerformAdvancement(ctx context.Context, input *PerformAdvancementInput) (*PerformAdvancementOutput, error)

	// ListPending returns the character's available offer, if any
	ListPending(ctx context.Context, input *ListPendingInput) (*ListPendingOutput, error)

	// AcceptPending takes one option of the available offer. A failed
	// re-check leaves the offer available.
	// Returns errors.NotFound if there is no offer or the option isn't on it
	// Returns errors.InvalidState if the offer was already resolved
	AcceptPending(ctx context.Context, input *AcceptPendingInput) (*AcceptPendingOutput, error)

	// ClearPending drops the character's available offer
	ClearPending(ctx context.Context, input *ClearPendingInput) (*ClearPendingOutput, error)

	// GetClassHistory returns the class history oldest first
	GetClassHistory(ctx context.Context, input *GetClassHistoryInput) (*GetClassHistoryOutput, error)

	// EvaluateLevelUp reacts to a level gain. Failures are logged and
	// reported as OutcomeFailed, never returned.
	EvaluateLevelUp(ctx context.Context, input *EvaluateLevelUpInput) (*EvaluateLevelUpOutput, error)
}

// Config holds the dependencies for the advancement orchestrator
type Config struct {
	Characters character.Repository
	Catalog    catalog.Repository
	Pending    pending.Repository
	History    history.Repository
	Evaluator  requirements.Evaluator
	Applier    transition.Applier

	// Notifier defaults to events.NopNotifier
	Notifier events.Notifier

	// Roller defaults to dice.DefaultRoller
	Roller dice.Roller

	// LateAwakeningLevel defaults to selection.DefaultLateAwakeningLevel
	LateAwakeningLevel int32
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
	if c.Pending == nil {
		vb.RequiredField("Pending")
	}
	if c.History == nil {
		vb.RequiredField("History")
	}
	if c.Evaluator == nil {
		vb.RequiredField("Evaluator")
	}
	if c.Applier == nil {
		vb.RequiredField("Applier")
	}
	if c.LateAwakeningLevel < 0 {
		vb.InvalidField("LateAwakeningLevel", "cannot be negative")
	}
	return vb.Build()
}

type orchestrator struct {
	characters         character.Repository
	catalog            catalog.Repository
	pending            pending.Repository
	history            history.Repository
	evaluator          requirements.Evaluator
	applier            transition.Applier
	notifier           events.Notifier
	roller             dice.Roller
	lateAwakeningLevel int32
}

// NewOrchestrator creates a new advancement orchestrator with the provided
// dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	o := &orchestrator{
		characters:         cfg.Characters,
		catalog:            cfg.Catalog,
		pending:            cfg.Pending,
		history:            cfg.History,
		evaluator:          cfg.Evaluator,
		applier:            cfg.Applier,
		notifier:           cfg.Notifier,
		roller:             cfg.Roller,
		lateAwakeningLevel: cfg.LateAwakeningLevel,
	}
	if o.notifier == nil {
		o.notifier = events.NopNotifier{}
	}
	if o.roller == nil {
		o.roller = dice.DefaultRoller
	}
	if o.lateAwakeningLevel == 0 {
		o.lateAwakeningLevel = selection.DefaultLateAwakeningLevel
	}
	return o, nil
}

func (o *orchestrator) Awaken(ctx context.Context, input *AwakenInput) (*AwakenOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument("character ID is required")
	}

	char, err := o.getCharacter(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}
	if char.HasClass() {
		return nil, errors.InvalidState("User already has a class")
	}

	tierOut, err := o.catalog.ListClassesByTier(ctx, catalog.ListClassesByTierInput{Tier: entities.MinTier})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list first classes")
	}

	var eligible []*entities.CharacterClass
	var lowest int32
	for i, class := range tierOut.Classes {
		if i == 0 || class.RequiredLevel < lowest {
			lowest = class.RequiredLevel
		}
		if char.Level >= class.RequiredLevel {
			eligible = append(eligible, class)
		}
	}
	if len(tierOut.Classes) == 0 {
		return nil, errors.FailedPrecondition("catalog has no first classes")
	}
	if len(eligible) == 0 {
		return nil, requirements.NotMet("any first class", &entities.MissingRequirements{
			Level: &entities.MissingThreshold{Required: int64(lowest), Current: int64(char.Level)},
		})
	}

	idx, err := selection.Uniform(o.roller, len(eligible))
	if err != nil {
		return nil, errors.Wrap(err, "failed to draw first class")
	}

	applied, err := o.applier.Apply(ctx, &transition.ApplyInput{
		CharacterID:       input.CharacterID,
		TargetClassID:     eligible[idx].ID,
		Reason:            entities.ReasonAwakening,
		TriggeredByUserID: input.UserID,
		SkipRequirements:  true,
	})
	if err != nil {
		return nil, err
	}

	o.notifyAdvanced(ctx, applied)
	return &AwakenOutput{Result: applied.Result}, nil
}

func (o *orchestrator) GetAvailableAdvancements(ctx context.Context, input *GetAvailableAdvancementsInput) (*GetAvailableAdvancementsOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument("character ID is required")
	}

	char, err := o.getCharacter(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}

	var candidates []*Candidate
	if !char.HasClass() {
		candidates, err = o.firstClassCandidates(ctx, char)
	} else {
		candidates, err = o.mappingCandidates(ctx, char)
	}
	if err != nil {
		return nil, err
	}

	output := &GetAvailableAdvancementsOutput{Candidates: candidates}
	if len(candidates) == 0 {
		output.Missing = &entities.MissingRequirements{NoAdvancementPath: true}
		return output, nil
	}

	var closest *entities.MissingRequirements
	for _, c := range candidates {
		if c.Available {
			output.CanAdvance = true
			return output, nil
		}
		if closest == nil || c.Missing.Count() < closest.Count() {
			closest = c.Missing
		}
	}
	output.Missing = closest
	return output, nil
}

func (o *orchestrator) firstClassCandidates(ctx context.Context, char *entities.Character) ([]*Candidate, error) {
	tierOut, err := o.catalog.ListClassesByTier(ctx, catalog.ListClassesByTierInput{Tier: entities.MinTier})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list first classes")
	}

	candidates := make([]*Candidate, 0, len(tierOut.Classes))
	for _, class := range tierOut.Classes {
		res, err := o.evaluator.EvaluateMapping(ctx, &requirements.EvaluateMappingInput{
			Character:   char,
			TargetClass: class,
		})
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, &Candidate{
			ToClassID:   class.ID,
			ToClassName: class.Name,
			Tier:        class.Tier,
			IsAwakening: true,
			Available:   res.CanAdvance,
			Missing:     res.Missing,
		})
	}
	return candidates, nil
}

func (o *orchestrator) mappingCandidates(ctx context.Context, char *entities.Character) ([]*Candidate, error) {
	mappingsOut, err := o.catalog.ListMappingsFrom(ctx, catalog.ListMappingsFromInput{ClassID: char.ClassID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list mappings from %s", char.ClassID)
	}

	candidates := make([]*Candidate, 0, len(mappingsOut.Mappings))
	for _, mapping := range mappingsOut.Mappings {
		target, err := o.getClass(ctx, mapping.ToClassID)
		if err != nil {
			return nil, err
		}
		res, err := o.evaluator.EvaluateMapping(ctx, &requirements.EvaluateMappingInput{
			Character:   char,
			Mapping:     mapping,
			TargetClass: target,
		})
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, &Candidate{
			MappingID:         mapping.ID,
			ToClassID:         target.ID,
			ToClassName:       target.Name,
			Tier:              target.Tier,
			Weight:            mapping.Weight,
			AllowPlayerChoice: mapping.AllowPlayerChoice,
			IsAwakening:       mapping.IsAwakening,
			Available:         res.CanAdvance,
			Missing:           res.Missing,
		})
	}
	return candidates, nil
}

func (o *orchestrator) PerformAdvancement(ctx context.Context, input *PerformAdvancementInput) (*PerformAdvancementOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("CharacterID", input.CharacterID, vb)
	errors.ValidateRequired("TargetClassID", input.TargetClassID, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	eval, err := o.evaluator.Evaluate(ctx, &requirements.EvaluateInput{
		CharacterID:   input.CharacterID,
		TargetClassID: input.TargetClassID,
	})
	if err != nil {
		return nil, err
	}
	if eval.Mapping == nil {
		return nil, errors.NoAdvancementPath(eval.Character.ClassID, input.TargetClassID)
	}

	current, err := o.getClass(ctx, eval.Character.ClassID)
	if err != nil {
		return nil, err
	}
	if eval.TargetClass.Tier != current.Tier+1 {
		return nil, errors.InvalidStatef("%s is tier %d, expected tier %d",
			eval.TargetClass.ID, eval.TargetClass.Tier, current.Tier+1)
	}
	if !eval.CanAdvance {
		return nil, requirements.NotMet(input.TargetClassID, eval.Missing)
	}

	reason := entities.ReasonPromotion
	if eval.Mapping.IsAwakening {
		reason = entities.ReasonAwakening
	}

	applied, err := o.applier.Apply(ctx, &transition.ApplyInput{
		CharacterID:       input.CharacterID,
		Mapping:           eval.Mapping,
		Reason:            reason,
		TriggeredByUserID: input.UserID,
	})
	if err != nil {
		return nil, err
	}

	o.notifyAdvanced(ctx, applied)
	return &PerformAdvancementOutput{Result: applied.Result}, nil
}

func (o *orchestrator) ListPending(ctx context.Context, input *ListPendingInput) (*ListPendingOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	available, err := o.availablePending(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}
	return &ListPendingOutput{Pending: available}, nil
}

func (o *orchestrator) AcceptPending(ctx context.Context, input *AcceptPendingInput) (*AcceptPendingOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("CharacterID", input.CharacterID, vb)
	errors.ValidateRequired("MappingID", input.MappingID, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	offer, err := o.availablePending(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}
	if offer == nil {
		return nil, o.noAvailablePending(ctx, input.CharacterID)
	}
	if _, ok := offer.Option(input.MappingID); !ok {
		return nil, errors.NotFoundf("mapping %s is not offered by pending advancement %s", input.MappingID, offer.ID)
	}

	mappingOut, err := o.catalog.GetMapping(ctx, catalog.GetMappingInput{ID: input.MappingID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get mapping %s", input.MappingID)
	}

	applied, err := o.applier.Apply(ctx, &transition.ApplyInput{
		CharacterID:       input.CharacterID,
		Mapping:           mappingOut.Mapping,
		Reason:            entities.ReasonPendingAdvancement,
		TriggeredByUserID: input.UserID,
		PendingID:         offer.ID,
	})
	if err != nil {
		return nil, err
	}

	o.notifyAdvanced(ctx, applied)
	return &AcceptPendingOutput{Result: applied.Result, PendingID: offer.ID}, nil
}

func (o *orchestrator) ClearPending(ctx context.Context, input *ClearPendingInput) (*ClearPendingOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	out, err := o.pending.Clear(ctx, pending.ClearInput{CharacterID: input.CharacterID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to clear pending advancement for %s", input.CharacterID)
	}
	return &ClearPendingOutput{Cleared: out.Cleared}, nil
}

func (o *orchestrator) GetClassHistory(ctx context.Context, input *GetClassHistoryInput) (*GetClassHistoryOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	out, err := o.history.ListByCharacter(ctx, history.ListByCharacterInput{CharacterID: input.CharacterID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list class history for %s", input.CharacterID)
	}
	return &GetClassHistoryOutput{History: out.History}, nil
}

func (o *orchestrator) EvaluateLevelUp(ctx context.Context, input *EvaluateLevelUpInput) (*EvaluateLevelUpOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	output, err := o.evaluateLevelUp(ctx, input)
	if err != nil {
		slog.ErrorContext(ctx, "level-up evaluation failed",
			"character_id", input.CharacterID,
			"old_level", input.OldLevel,
			"new_level", input.NewLevel,
			"retryable", errors.IsRetryable(err),
			"error", err)
		return &EvaluateLevelUpOutput{Outcome: OutcomeFailed, Error: err.Error()}, nil
	}

	slog.InfoContext(ctx, "level-up evaluated",
		"character_id", input.CharacterID,
		"new_level", input.NewLevel,
		"outcome", output.Outcome)
	return output, nil
}

func (o *orchestrator) evaluateLevelUp(ctx context.Context, input *EvaluateLevelUpInput) (*EvaluateLevelUpOutput, error) {
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument("character ID is required")
	}

	char, err := o.getCharacter(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}
	if !char.HasClass() {
		return &EvaluateLevelUpOutput{Outcome: OutcomeNone}, nil
	}

	current, err := o.getClass(ctx, char.ClassID)
	if err != nil {
		return nil, err
	}
	mappingsOut, err := o.catalog.ListMappingsFrom(ctx, catalog.ListMappingsFromInput{ClassID: char.ClassID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list mappings from %s", char.ClassID)
	}

	if current.Tier == entities.MinTier {
		awakenings := selection.AwakeningCandidates(mappingsOut.Mappings, input.OldLevel, input.NewLevel)
		if len(awakenings) > 0 {
			return o.awakenByDraw(ctx, char, awakenings)
		}
	}

	return o.promote(ctx, char, selection.PromotionCandidates(mappingsOut.Mappings, input.NewLevel, o.lateAwakeningLevel))
}

func (o *orchestrator) awakenByDraw(ctx context.Context, char *entities.Character, candidates []*entities.AdvancementMapping) (*EvaluateLevelUpOutput, error) {
	mapping, err := selection.DrawMapping(o.roller, candidates)
	if err != nil {
		return nil, err
	}

	applied, err := o.applier.Apply(ctx, &transition.ApplyInput{
		CharacterID:      char.ID,
		Mapping:          mapping,
		Reason:           entities.ReasonAwakening,
		SkipRequirements: true,
	})
	if err != nil {
		return nil, err
	}

	o.notifyAdvanced(ctx, applied)
	return &EvaluateLevelUpOutput{Outcome: OutcomeAwakened, Result: applied.Result}, nil
}

func (o *orchestrator) promote(ctx context.Context, char *entities.Character, mappings []*entities.AdvancementMapping) (*EvaluateLevelUpOutput, error) {
	if len(mappings) == 0 {
		return o.noAdvancement(ctx, char.ID)
	}

	evaluated := make([]selection.Candidate, 0, len(mappings))
	for _, mapping := range mappings {
		target, err := o.getClass(ctx, mapping.ToClassID)
		if err != nil {
			return nil, err
		}
		res, err := o.evaluator.EvaluateMapping(ctx, &requirements.EvaluateMappingInput{
			Character:   char,
			Mapping:     mapping,
			TargetClass: target,
		})
		if err != nil {
			return nil, err
		}
		evaluated = append(evaluated, selection.Candidate{
			Mapping: mapping,
			Passed:  res.CanAdvance,
			Missing: res.Missing,
		})
	}

	decision := selection.Decide(evaluated)
	switch decision.Mode {
	case selection.ModeNone:
		return o.noAdvancement(ctx, char.ID)

	case selection.ModePlayerChoice:
		options := make([]entities.PendingOption, 0, len(evaluated))
		for _, c := range evaluated {
			options = append(options, entities.PendingOption{
				MappingID: c.Mapping.ID,
				ToClassID: c.Mapping.ToClassID,
				Available: c.Passed,
				Missing:   c.Missing,
			})
		}
		// available options first so clients can render the offer directly
		sort.SliceStable(options, func(i, j int) bool {
			return options[i].Available && !options[j].Available
		})

		created, err := o.pending.Create(ctx, pending.CreateInput{
			CharacterID: char.ID,
			UserID:      char.UserID,
			Options:     options,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to create pending advancement")
		}

		events.NotifyAndLog(ctx, o.notifier, &events.Notification{
			Type:        events.TypePendingCreated,
			CharacterID: char.ID,
			UserID:      char.UserID,
			PendingID:   created.Pending.ID,
			OccurredAt:  created.Pending.CreatedAt,
		})
		return &EvaluateLevelUpOutput{Outcome: OutcomePendingCreated, Pending: created.Pending}, nil

	default:
		mapping, err := selection.DrawMapping(o.roller, selection.Mappings(decision.Passing))
		if err != nil {
			return nil, err
		}
		applied, err := o.applier.Apply(ctx, &transition.ApplyInput{
			CharacterID: char.ID,
			Mapping:     mapping,
			Reason:      entities.ReasonPromotion,
		})
		if err != nil {
			return nil, err
		}

		o.notifyAdvanced(ctx, applied)
		return &EvaluateLevelUpOutput{Outcome: OutcomePromoted, Result: applied.Result}, nil
	}
}

// noAdvancement drops any offer left from an earlier level, since its
// options were evaluated against a character that no longer exists.
func (o *orchestrator) noAdvancement(ctx context.Context, characterID string) (*EvaluateLevelUpOutput, error) {
	out, err := o.pending.Clear(ctx, pending.ClearInput{CharacterID: characterID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to clear pending advancement for %s", characterID)
	}
	if out.Cleared > 0 {
		slog.InfoContext(ctx, "cleared stale pending advancement",
			"character_id", characterID,
			"cleared", out.Cleared)
	}
	return &EvaluateLevelUpOutput{Outcome: OutcomeNone}, nil
}

func (o *orchestrator) availablePending(ctx context.Context, characterID string) (*entities.PendingAdvancement, error) {
	out, err := o.pending.ListAvailable(ctx, pending.ListAvailableInput{CharacterID: characterID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list pending advancements for %s", characterID)
	}
	if len(out.Pending) == 0 {
		return nil, nil
	}
	return out.Pending[0], nil
}

// noAvailablePending explains why a character has nothing to accept: an
// offer that was already resolved is an InvalidState, while a character
// that never had one is a NotFound.
func (o *orchestrator) noAvailablePending(ctx context.Context, characterID string) error {
	out, err := o.pending.GetLatest(ctx, pending.GetLatestInput{CharacterID: characterID})
	if err != nil {
		if errors.IsNotFound(err) {
			return errors.NotFoundf("character %s has no pending advancement", characterID)
		}
		return errors.Wrapf(err, "failed to get pending advancement for %s", characterID)
	}

	status := out.Pending.Status
	if status == entities.PendingStatusAvailable {
		// still marked available but no longer listed, so its deadline passed
		status = entities.PendingStatusExpired
	}
	return errors.InvalidStatef("pending advancement %s is %s", out.Pending.ID, status)
}

func (o *orchestrator) getCharacter(ctx context.Context, id string) (*entities.Character, error) {
	out, err := o.characters.Get(ctx, character.GetInput{ID: id})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get character %s", id)
	}
	return out.Character, nil
}

func (o *orchestrator) getClass(ctx context.Context, id string) (*entities.CharacterClass, error) {
	out, err := o.catalog.GetClass(ctx, catalog.GetClassInput{ID: id})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get class %s", id)
	}
	return out.Class, nil
}

func (o *orchestrator) notifyAdvanced(ctx context.Context, applied *transition.ApplyOutput) {
	events.NotifyAndLog(ctx, o.notifier, &events.Notification{
		Type:            events.TypeClassAdvanced,
		CharacterID:     applied.History.CharacterID,
		UserID:          applied.Character.UserID,
		PreviousClassID: applied.History.PreviousClassID,
		NewClassID:      applied.History.NewClassID,
		Reason:          string(applied.History.Reason),
		OccurredAt:      applied.History.CreatedAt,
	})
}

// LevelUpHandler adapts a Service to the level-up subscriber
func LevelUpHandler(svc Service) events.Handler {
	return events.HandlerFunc(func(ctx context.Context, event events.LevelUp) error {
		out, err := svc.EvaluateLevelUp(ctx, &EvaluateLevelUpInput{
			CharacterID: event.CharacterID,
			OldLevel:    event.OldLevel,
			NewLevel:    event.NewLevel,
		})
		if err != nil {
			return err
		}
		if out.Outcome == OutcomeFailed {
			return errors.Internal(out.Error)
		}
		return nil
	})
}
