package pending_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-advancement/internal/entities"
	"github.com/KirkDiggler/rpg-advancement/internal/errors"
	"github.com/KirkDiggler/rpg-advancement/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-advancement/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-advancement/internal/redis"
	"github.com/KirkDiggler/rpg-advancement/internal/repositories/pending"
	"github.com/KirkDiggler/rpg-advancement/internal/testutils"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	mr      *miniredis.Miniredis
	client  redis.Client
	cleanup func()
	clock   *clock.Fixed
	repo    pending.Repository
	ctx     context.Context
	options []entities.PendingOption
}

func TestRedisRepositorySuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.client, s.cleanup = testutils.CreateTestRedisClientWithContext(s.T(), func(mr *miniredis.Miniredis) {
		s.mr = mr
	})
	s.clock = clock.NewFixed(time.Unix(1700000000, 0))

	repo, err := pending.NewRedis(&pending.RedisConfig{
		Client:      s.client,
		Clock:       s.clock,
		IDGenerator: idgen.NewSequential("pending"),
		TTL:         time.Hour,
	})
	s.Require().NoError(err)
	s.repo = repo

	s.options = []entities.PendingOption{
		{MappingID: testutils.MappingPromoteWarlord, ToClassID: testutils.ClassWarlord, Available: true},
		{MappingID: testutils.MappingBerserkerGuardian, ToClassID: testutils.ClassGuardian, Available: true},
	}
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *RedisRepositoryTestSuite) create() *entities.PendingAdvancement {
	out, err := s.repo.Create(s.ctx, pending.CreateInput{
		CharacterID: testutils.TestCharacterID,
		UserID:      testutils.TestUserID,
		Options:     s.options,
	})
	s.Require().NoError(err)
	return out.Pending
}

func (s *RedisRepositoryTestSuite) TestCreateAndList() {
	created := s.create()
	s.Equal("pending_1", created.ID)
	s.Equal(entities.PendingStatusAvailable, created.Status)
	s.Equal(s.clock.Now().Add(time.Hour).Unix(), created.ExpiresAt)

	out, err := s.repo.ListAvailable(s.ctx, pending.ListAvailableInput{CharacterID: testutils.TestCharacterID})
	s.Require().NoError(err)
	s.Require().Len(out.Pending, 1)
	s.Equal(created.ID, out.Pending[0].ID)
	s.Len(out.Pending[0].Options, 2)

	got, err := s.repo.Get(s.ctx, pending.GetInput{ID: created.ID})
	s.Require().NoError(err)
	s.Equal(testutils.TestUserID, got.Pending.UserID)
}

func (s *RedisRepositoryTestSuite) TestCreateReplacesPriorOffer() {
	first := s.create()

	out, err := s.repo.Create(s.ctx, pending.CreateInput{
		CharacterID: testutils.TestCharacterID,
		UserID:      testutils.TestUserID,
		Options:     s.options[:1],
	})
	s.Require().NoError(err)
	s.Equal(first.ID, out.ReplacedID)

	prior, err := s.repo.Get(s.ctx, pending.GetInput{ID: first.ID})
	s.Require().NoError(err)
	s.Equal(entities.PendingStatusExpired, prior.Pending.Status)

	list, err := s.repo.ListAvailable(s.ctx, pending.ListAvailableInput{CharacterID: testutils.TestCharacterID})
	s.Require().NoError(err)
	s.Require().Len(list.Pending, 1)
	s.Equal(out.Pending.ID, list.Pending[0].ID)

	_, err = s.repo.MarkAccepted(s.ctx, pending.MarkAcceptedInput{ID: first.ID})
	s.True(errors.IsInvalidState(err))
}

func (s *RedisRepositoryTestSuite) TestExpiredOffersAreHidden() {
	created := s.create()
	s.clock.Advance(2 * time.Hour)

	out, err := s.repo.ListAvailable(s.ctx, pending.ListAvailableInput{CharacterID: testutils.TestCharacterID})
	s.Require().NoError(err)
	s.Empty(out.Pending)

	_, err = s.repo.MarkAccepted(s.ctx, pending.MarkAcceptedInput{ID: created.ID})
	s.True(errors.IsInvalidState(err))
}

func (s *RedisRepositoryTestSuite) TestMarkAcceptedExactlyOnce() {
	created := s.create()

	const attempts = 4
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		failures  []error
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.repo.MarkAccepted(s.ctx, pending.MarkAcceptedInput{ID: created.ID})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			failures = append(failures, err)
		}()
	}
	wg.Wait()

	s.Equal(1, successes)
	for _, err := range failures {
		s.True(errors.IsInvalidState(err) || errors.IsAborted(err), "unexpected error %v", err)
	}

	got, err := s.repo.Get(s.ctx, pending.GetInput{ID: created.ID})
	s.Require().NoError(err)
	s.Equal(entities.PendingStatusAccepted, got.Pending.Status)

	list, err := s.repo.ListAvailable(s.ctx, pending.ListAvailableInput{CharacterID: testutils.TestCharacterID})
	s.Require().NoError(err)
	s.Empty(list.Pending)
}

func (s *RedisRepositoryTestSuite) TestGetLatest() {
	_, err := s.repo.GetLatest(s.ctx, pending.GetLatestInput{CharacterID: testutils.TestCharacterID})
	s.True(errors.IsNotFound(err), "never offered")

	created := s.create()
	_, err = s.repo.MarkAccepted(s.ctx, pending.MarkAcceptedInput{ID: created.ID})
	s.Require().NoError(err)

	out, err := s.repo.GetLatest(s.ctx, pending.GetLatestInput{CharacterID: testutils.TestCharacterID})
	s.Require().NoError(err)
	s.Equal(created.ID, out.Pending.ID)
	s.Equal(entities.PendingStatusAccepted, out.Pending.Status)

	_, err = s.repo.MarkAccepted(s.ctx, pending.MarkAcceptedInput{ID: created.ID})
	s.Require().True(errors.IsInvalidState(err))
	s.Contains(err.Error(), "is accepted")

	_, err = s.repo.GetLatest(s.ctx, pending.GetLatestInput{})
	s.True(errors.IsInvalidArgument(err))
}

func (s *RedisRepositoryTestSuite) TestKeysExpireWithOffer() {
	created := s.create()

	keys := []string{
		redis.PendingKey(testutils.TestCharacterID, created.ID),
		redis.PendingOwnerKey(created.ID),
		redis.PendingIndexKey(testutils.TestCharacterID),
	}
	for _, key := range keys {
		ttl, err := s.client.TTL(s.ctx, key).Result()
		s.Require().NoError(err)
		s.Equal(time.Hour, ttl, key)
	}

	_, err := s.repo.MarkAccepted(s.ctx, pending.MarkAcceptedInput{ID: created.ID})
	s.Require().NoError(err)
	for _, key := range keys {
		ttl, err := s.client.TTL(s.ctx, key).Result()
		s.Require().NoError(err)
		s.Positive(ttl, key)
	}

	s.mr.FastForward(time.Hour + time.Second)
	for _, key := range keys {
		exists, err := s.client.Exists(s.ctx, key).Result()
		s.Require().NoError(err)
		s.Zero(exists, key)
	}
}

func (s *RedisRepositoryTestSuite) TestClear() {
	created := s.create()

	out, err := s.repo.Clear(s.ctx, pending.ClearInput{CharacterID: testutils.TestCharacterID})
	s.Require().NoError(err)
	s.Equal(1, out.Cleared)

	_, err = s.repo.Get(s.ctx, pending.GetInput{ID: created.ID})
	s.True(errors.IsNotFound(err))

	out, err = s.repo.Clear(s.ctx, pending.ClearInput{CharacterID: testutils.TestCharacterID})
	s.Require().NoError(err)
	s.Zero(out.Cleared)
}

func (s *RedisRepositoryTestSuite) TestValidation() {
	_, err := s.repo.Create(s.ctx, pending.CreateInput{CharacterID: testutils.TestCharacterID})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.repo.Get(s.ctx, pending.GetInput{})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.repo.Get(s.ctx, pending.GetInput{ID: "missing"})
	s.True(errors.IsNotFound(err))

	_, err = pending.NewRedis(&pending.RedisConfig{})
	s.True(errors.IsInvalidArgument(err))
}
