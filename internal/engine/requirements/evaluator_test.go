package requirements_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/rpg-advancement/internal/engine/requirements"
	"github.com/KirkDiggler/rpg-advancement/internal/entities"
	"github.com/KirkDiggler/rpg-advancement/internal/errors"
	"github.com/KirkDiggler/rpg-advancement/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-advancement/internal/repositories/catalog"
	catalogmock "github.com/KirkDiggler/rpg-advancement/internal/repositories/catalog/mock"
	"github.com/KirkDiggler/rpg-advancement/internal/repositories/character"
	inventorymock "github.com/KirkDiggler/rpg-advancement/internal/repositories/inventory/mock"
	"github.com/KirkDiggler/rpg-advancement/internal/repositories/progress"
	progressmock "github.com/KirkDiggler/rpg-advancement/internal/repositories/progress/mock"
	"github.com/KirkDiggler/rpg-advancement/internal/testutils"
)

type fixedItems map[string]int32

func (f fixedItems) ItemQuantity(_ context.Context, itemID string) (int32, error) {
	return f[itemID], nil
}

type EvaluatorTestSuite struct {
	suite.Suite
	ctrl          *gomock.Controller
	mockProgress  *progressmock.MockRepository
	mockInventory *inventorymock.MockRepository
	catalog       catalog.Repository
	characters    character.Repository
	evaluator     requirements.Evaluator
	cleanup       func()
	ctx           context.Context
}

func TestEvaluatorSuite(t *testing.T) {
	suite.Run(t, new(EvaluatorTestSuite))
}

func (s *EvaluatorTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.mockProgress = progressmock.NewMockRepository(s.ctrl)
	s.mockInventory = inventorymock.NewMockRepository(s.ctrl)

	var err error
	s.catalog, err = catalog.NewMemory(testutils.CatalogDocument())
	s.Require().NoError(err)

	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanup = cleanup
	s.characters, err = character.NewRedis(&character.RedisConfig{
		Client: client,
		Clock:  clock.NewFixed(time.Unix(1700000000, 0)),
	})
	s.Require().NoError(err)

	s.evaluator, err = requirements.NewEvaluator(&requirements.Config{
		Characters: s.characters,
		Catalog:    s.catalog,
		Progress:   s.mockProgress,
		Inventory:  s.mockInventory,
	})
	s.Require().NoError(err)
}

func (s *EvaluatorTestSuite) TearDownTest() {
	s.ctrl.Finish()
	s.cleanup()
}

func (s *EvaluatorTestSuite) createCharacter(classID string, level int32) *entities.Character {
	char := testutils.NewCharacter(testutils.TestCharacterID)
	char.ClassID = classID
	char.Level = level
	_, err := s.characters.Create(s.ctx, character.CreateInput{Character: char})
	s.Require().NoError(err)
	return char
}

func (s *EvaluatorTestSuite) expectVictories(count int32) *gomock.Call {
	return s.mockProgress.EXPECT().
		CountVictories(s.ctx, progress.CountVictoriesInput{
			CharacterID: testutils.TestCharacterID,
			DungeonID:   testutils.DungeonCrypt,
		}).
		Return(&progress.CountVictoriesOutput{Count: count}, nil)
}

func (s *EvaluatorTestSuite) TestNewEvaluatorValidation() {
	_, err := requirements.NewEvaluator(nil)
	s.True(errors.IsInvalidArgument(err))

	_, err = requirements.NewEvaluator(&requirements.Config{Catalog: s.catalog})
	s.True(errors.IsInvalidArgument(err))
}

func (s *EvaluatorTestSuite) TestEvaluateValidation() {
	_, err := s.evaluator.Evaluate(s.ctx, &requirements.EvaluateInput{})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.evaluator.Evaluate(s.ctx, nil)
	s.True(errors.IsInvalidArgument(err))
}

func (s *EvaluatorTestSuite) TestEvaluateMissingDungeonClears() {
	s.createCharacter(testutils.ClassKnight, 20)
	s.expectVictories(3)

	out, err := s.evaluator.Evaluate(s.ctx, &requirements.EvaluateInput{
		CharacterID:   testutils.TestCharacterID,
		TargetClassID: testutils.ClassPaladin,
	})
	s.Require().NoError(err)
	s.False(out.CanAdvance)
	s.Equal(testutils.MappingPromotePaladin, out.Mapping.ID)
	s.Equal([]entities.MissingDungeon{
		{DungeonID: testutils.DungeonCrypt, Required: 5, Current: 3},
	}, out.Missing.Dungeons)
	s.Equal(1, out.Missing.Count())
}

func (s *EvaluatorTestSuite) TestEvaluatePasses() {
	s.createCharacter(testutils.ClassKnight, 20)
	s.expectVictories(5)

	out, err := s.evaluator.Evaluate(s.ctx, &requirements.EvaluateInput{
		CharacterID:   testutils.TestCharacterID,
		TargetClassID: testutils.ClassPaladin,
	})
	s.Require().NoError(err)
	s.True(out.CanAdvance)
	s.True(out.Missing.IsEmpty())
}

func (s *EvaluatorTestSuite) TestEvaluateAccumulatesLevelAndRequirements() {
	s.createCharacter(testutils.ClassKnight, 15)
	s.expectVictories(0)

	out, err := s.evaluator.Evaluate(s.ctx, &requirements.EvaluateInput{
		CharacterID:   testutils.TestCharacterID,
		TargetClassID: testutils.ClassPaladin,
	})
	s.Require().NoError(err)
	s.False(out.CanAdvance)
	s.Equal(&entities.MissingThreshold{Required: 20, Current: 15}, out.Missing.Level)
	s.Len(out.Missing.Dungeons, 1)
}

func (s *EvaluatorTestSuite) TestEvaluateMergesClassRequirements() {
	// Warlord carries a quest requirement on the class, not the mapping
	s.createCharacter(testutils.ClassBerserker, 20)
	s.mockProgress.EXPECT().
		IsQuestCompleted(s.ctx, progress.IsQuestCompletedInput{
			CharacterID: testutils.TestCharacterID,
			QuestID:     testutils.QuestOath,
		}).
		Return(&progress.IsQuestCompletedOutput{Completed: false}, nil)

	out, err := s.evaluator.Evaluate(s.ctx, &requirements.EvaluateInput{
		CharacterID:   testutils.TestCharacterID,
		TargetClassID: testutils.ClassWarlord,
	})
	s.Require().NoError(err)
	s.False(out.CanAdvance)
	s.Equal([]string{testutils.QuestOath}, out.Missing.Quests)
}

func (s *EvaluatorTestSuite) TestEvaluateNoAdvancementPath() {
	s.Run("no mapping between classes", func() {
		s.createCharacter(testutils.ClassKnight, 30)

		out, err := s.evaluator.Evaluate(s.ctx, &requirements.EvaluateInput{
			CharacterID:   testutils.TestCharacterID,
			TargetClassID: testutils.ClassWarlord,
		})
		s.Require().NoError(err)
		s.False(out.CanAdvance)
		s.True(out.Missing.NoAdvancementPath)
		s.Nil(out.Mapping)
	})
}

func (s *EvaluatorTestSuite) TestEvaluateClassless() {
	s.createCharacter("", 1)

	s.Run("tier one checks the class level", func() {
		out, err := s.evaluator.Evaluate(s.ctx, &requirements.EvaluateInput{
			CharacterID:   testutils.TestCharacterID,
			TargetClassID: testutils.ClassNoviceAdept,
		})
		s.Require().NoError(err)
		s.False(out.CanAdvance)
		s.Equal(&entities.MissingThreshold{Required: 5, Current: 1}, out.Missing.Level)
		s.Nil(out.Mapping)
	})

	s.Run("higher tiers are unreachable", func() {
		out, err := s.evaluator.Evaluate(s.ctx, &requirements.EvaluateInput{
			CharacterID:   testutils.TestCharacterID,
			TargetClassID: testutils.ClassKnight,
		})
		s.Require().NoError(err)
		s.True(out.Missing.NoAdvancementPath)
	})
}

func (s *EvaluatorTestSuite) TestEvaluateIsPure() {
	s.createCharacter(testutils.ClassKnight, 20)
	s.expectVictories(3).Times(2)

	input := &requirements.EvaluateInput{
		CharacterID:   testutils.TestCharacterID,
		TargetClassID: testutils.ClassPaladin,
	}
	first, err := s.evaluator.Evaluate(s.ctx, input)
	s.Require().NoError(err)
	second, err := s.evaluator.Evaluate(s.ctx, input)
	s.Require().NoError(err)

	s.Equal(first, second)

	after, err := s.characters.Get(s.ctx, character.GetInput{ID: testutils.TestCharacterID})
	s.Require().NoError(err)
	s.Equal(first.Character, after.Character)
}

func (s *EvaluatorTestSuite) TestEvaluateCollaboratorFailure() {
	s.createCharacter(testutils.ClassKnight, 20)
	s.mockProgress.EXPECT().
		CountVictories(gomock.Any(), gomock.Any()).
		Return(nil, errors.Unavailable("progress store down"))

	_, err := s.evaluator.Evaluate(s.ctx, &requirements.EvaluateInput{
		CharacterID:   testutils.TestCharacterID,
		TargetClassID: testutils.ClassPaladin,
	})
	s.Require().Error(err)
	s.Equal(errors.CodeUnavailable, errors.GetCode(err))
}

func (s *EvaluatorTestSuite) TestEvaluateUnknownCharacter() {
	_, err := s.evaluator.Evaluate(s.ctx, &requirements.EvaluateInput{
		CharacterID:   "missing",
		TargetClassID: testutils.ClassPaladin,
	})
	s.True(errors.IsNotFound(err))
}

func (s *EvaluatorTestSuite) TestEvaluateCatalogLookups() {
	s.createCharacter(testutils.ClassKnight, 20)
	mockCatalog := catalogmock.NewMockRepository(s.ctrl)
	evaluator, err := requirements.NewEvaluator(&requirements.Config{
		Characters: s.characters,
		Catalog:    mockCatalog,
		Progress:   s.mockProgress,
		Inventory:  s.mockInventory,
	})
	s.Require().NoError(err)

	s.Run("unknown target class", func() {
		mockCatalog.EXPECT().
			GetClass(s.ctx, catalog.GetClassInput{ID: "ghost"}).
			Return(nil, errors.NotFound("class not found"))

		_, err := evaluator.Evaluate(s.ctx, &requirements.EvaluateInput{
			CharacterID:   testutils.TestCharacterID,
			TargetClassID: "ghost",
		})
		s.True(errors.IsNotFound(err))
	})

	s.Run("mapping listing fails", func() {
		mockCatalog.EXPECT().
			GetClass(s.ctx, catalog.GetClassInput{ID: testutils.ClassPaladin}).
			Return(&catalog.GetClassOutput{Class: &entities.CharacterClass{ID: testutils.ClassPaladin, Tier: 3}}, nil)
		mockCatalog.EXPECT().
			ListMappingsFrom(s.ctx, catalog.ListMappingsFromInput{ClassID: testutils.ClassKnight}).
			Return(nil, errors.Unavailable("catalog down"))

		_, err := evaluator.Evaluate(s.ctx, &requirements.EvaluateInput{
			CharacterID:   testutils.TestCharacterID,
			TargetClassID: testutils.ClassPaladin,
		})
		s.Equal(errors.CodeUnavailable, errors.GetCode(err))
	})
}

func (s *EvaluatorTestSuite) TestEvaluateMappingEveryCategory() {
	char := testutils.NewCharacter(testutils.TestCharacterID)
	char.Level = 40
	target := &entities.CharacterClass{ID: "archmage", Tier: 4, RequiredLevel: 40}
	mapping := &entities.AdvancementMapping{
		ID: "to_archmage", ToClassID: "archmage", LevelRequired: 40,
		Requirements: &entities.Requirements{
			Items:              []entities.ItemRequirement{{ItemID: "orb", Quantity: 2}},
			Stats:              &entities.StatRequirement{MinTotal: 30, Min: entities.StatBlock{Intelligence: 10}},
			Achievements:       []string{"first_blood", "explorer"},
			MinPvPRank:         3,
			MinGuildLevel:      2,
			MinPlaytimeMinutes: 600,
		},
	}

	s.mockProgress.EXPECT().
		HasAchievement(s.ctx, progress.HasAchievementInput{CharacterID: char.ID, AchievementID: "first_blood"}).
		Return(&progress.HasAchievementOutput{Unlocked: true}, nil)
	s.mockProgress.EXPECT().
		HasAchievement(s.ctx, progress.HasAchievementInput{CharacterID: char.ID, AchievementID: "explorer"}).
		Return(&progress.HasAchievementOutput{Unlocked: false}, nil)
	s.mockProgress.EXPECT().
		GetProfile(s.ctx, progress.GetProfileInput{CharacterID: char.ID}).
		Return(&progress.GetProfileOutput{PvPRank: 1, GuildLevel: 2, PlaytimeMinutes: 90}, nil)

	out, err := s.evaluator.EvaluateMapping(s.ctx, &requirements.EvaluateMappingInput{
		Character:   char,
		Mapping:     mapping,
		TargetClass: target,
		Items:       fixedItems{"orb": 1},
	})
	s.Require().NoError(err)
	s.False(out.CanAdvance)

	s.Nil(out.Missing.Level)
	s.Equal([]entities.MissingItem{{ItemID: "orb", Required: 2, Current: 1}}, out.Missing.Items)
	s.Require().NotNil(out.Missing.Stats)
	s.Equal(int64(25), out.Missing.Stats.CurrentTotal)
	s.Equal([]string{"intelligence"}, out.Missing.Stats.Below)
	s.Equal([]string{"explorer"}, out.Missing.Achievements)
	s.Equal(&entities.MissingThreshold{Required: 3, Current: 1}, out.Missing.PvPRank)
	s.Nil(out.Missing.GuildLevel)
	s.Equal(&entities.MissingThreshold{Required: 600, Current: 90}, out.Missing.Playtime)
	s.Equal(5, out.Missing.Count())
}

func (s *EvaluatorTestSuite) TestEvaluateMappingUsesInventoryByDefault() {
	char := testutils.NewCharacter(testutils.TestCharacterID)
	char.Level = 20
	mapping := &entities.AdvancementMapping{
		ID: testutils.MappingPromoteGuardian, LevelRequired: 20,
		Requirements: &entities.Requirements{
			Items: []entities.ItemRequirement{{ItemID: testutils.ItemSigil, Quantity: 1, Consume: true}},
		},
	}
	s.mockInventory.EXPECT().
		OwnedQuantity(s.ctx, gomock.Any()).
		Return(nil, errors.Internal("inventory unreachable"))

	_, err := s.evaluator.EvaluateMapping(s.ctx, &requirements.EvaluateMappingInput{
		Character:   char,
		Mapping:     mapping,
		TargetClass: &entities.CharacterClass{ID: testutils.ClassGuardian, Tier: 3},
	})
	s.Error(err)
}

func (s *EvaluatorTestSuite) TestEvaluateMappingValidation() {
	_, err := s.evaluator.EvaluateMapping(s.ctx, &requirements.EvaluateMappingInput{
		TargetClass: &entities.CharacterClass{ID: "x"},
	})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.evaluator.EvaluateMapping(s.ctx, &requirements.EvaluateMappingInput{
		Character: testutils.NewCharacter("c"),
	})
	s.True(errors.IsInvalidArgument(err))
}

func (s *EvaluatorTestSuite) TestMissingFromError() {
	missing := &entities.MissingRequirements{Quests: []string{testutils.QuestOath}}
	err := requirements.NotMet(testutils.ClassWarlord, missing)

	s.True(errors.IsRequirementsNotMet(err))
	s.Same(missing, requirements.MissingFromError(err))
	s.Same(missing, requirements.MissingFromError(errors.Wrap(err, "advancement failed")))
	s.Nil(requirements.MissingFromError(errors.NotFound("nope")))
	s.Nil(requirements.MissingFromError(nil))
}
