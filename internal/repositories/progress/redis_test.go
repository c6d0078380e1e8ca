package progress_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-advancement/internal/errors"
	"github.com/KirkDiggler/rpg-advancement/internal/redis"
	"github.com/KirkDiggler/rpg-advancement/internal/repositories/progress"
	"github.com/KirkDiggler/rpg-advancement/internal/testutils"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	client  redis.Client
	cleanup func()
	repo    progress.Repository
	ctx     context.Context
}

func TestRedisRepositorySuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.client, s.cleanup = testutils.CreateTestRedisClient(s.T())

	repo, err := progress.NewRedis(&progress.RedisConfig{Client: s.client})
	s.Require().NoError(err)
	s.repo = repo
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *RedisRepositoryTestSuite) TestCountVictories() {
	testutils.RecordVictories(s.T(), s.client, testutils.TestCharacterID, testutils.DungeonCrypt, 3)

	out, err := s.repo.CountVictories(s.ctx, progress.CountVictoriesInput{CharacterID: testutils.TestCharacterID, DungeonID: testutils.DungeonCrypt})
	s.Require().NoError(err)
	s.Equal(int32(3), out.Count)

	out, err = s.repo.CountVictories(s.ctx, progress.CountVictoriesInput{CharacterID: testutils.TestCharacterID, DungeonID: "other"})
	s.Require().NoError(err)
	s.Zero(out.Count)

	_, err = s.repo.CountVictories(s.ctx, progress.CountVictoriesInput{CharacterID: testutils.TestCharacterID})
	s.True(errors.IsInvalidArgument(err))
}

func (s *RedisRepositoryTestSuite) TestQuestsAndAchievements() {
	testutils.CompleteQuest(s.T(), s.client, testutils.TestCharacterID, testutils.QuestOath)
	testutils.UnlockAchievement(s.T(), s.client, testutils.TestCharacterID, "first_blood")

	quest, err := s.repo.IsQuestCompleted(s.ctx, progress.IsQuestCompletedInput{CharacterID: testutils.TestCharacterID, QuestID: testutils.QuestOath})
	s.Require().NoError(err)
	s.True(quest.Completed)

	quest, err = s.repo.IsQuestCompleted(s.ctx, progress.IsQuestCompletedInput{CharacterID: testutils.TestCharacterID, QuestID: "other"})
	s.Require().NoError(err)
	s.False(quest.Completed)

	ach, err := s.repo.HasAchievement(s.ctx, progress.HasAchievementInput{CharacterID: testutils.TestCharacterID, AchievementID: "first_blood"})
	s.Require().NoError(err)
	s.True(ach.Unlocked)
}

func (s *RedisRepositoryTestSuite) TestGetProfile() {
	out, err := s.repo.GetProfile(s.ctx, progress.GetProfileInput{CharacterID: testutils.TestCharacterID})
	s.Require().NoError(err)
	s.Equal(&progress.GetProfileOutput{}, out)

	testutils.SetProfile(s.T(), s.client, testutils.TestCharacterID, progress.FieldPvPRank, 12)
	testutils.SetProfile(s.T(), s.client, testutils.TestCharacterID, progress.FieldPlaytimeMinutes, 6000)

	out, err = s.repo.GetProfile(s.ctx, progress.GetProfileInput{CharacterID: testutils.TestCharacterID})
	s.Require().NoError(err)
	s.Equal(int32(12), out.PvPRank)
	s.Zero(out.GuildLevel)
	s.Equal(int64(6000), out.PlaytimeMinutes)
}
