package inventory_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-advancement/internal/entities"
	"github.com/KirkDiggler/rpg-advancement/internal/errors"
	"github.com/KirkDiggler/rpg-advancement/internal/repositories/inventory"
	"github.com/KirkDiggler/rpg-advancement/internal/testutils"
)

type InventoryTestSuite struct {
	suite.Suite
	ctx context.Context
}

func TestInventorySuite(t *testing.T) {
	suite.Run(t, new(InventoryTestSuite))
}

func (s *InventoryTestSuite) SetupTest() {
	s.ctx = context.Background()
}

func (s *InventoryTestSuite) TestRedis() {
	client, cleanup := testutils.CreateTestRedisClient(s.T())
	defer cleanup()

	repo, err := inventory.NewRedis(&inventory.RedisConfig{Client: client})
	s.Require().NoError(err)

	testutils.SetInventory(s.T(), client, testutils.TestCharacterID, testutils.ItemSigil, 3)

	s.Run("owned", func() {
		out, err := repo.OwnedQuantity(s.ctx, inventory.OwnedQuantityInput{CharacterID: testutils.TestCharacterID, ItemID: testutils.ItemSigil})
		s.Require().NoError(err)
		s.Equal(int32(3), out.Quantity)
	})

	s.Run("not owned", func() {
		out, err := repo.OwnedQuantity(s.ctx, inventory.OwnedQuantityInput{CharacterID: testutils.TestCharacterID, ItemID: "other"})
		s.Require().NoError(err)
		s.Zero(out.Quantity)
	})

	s.Run("validation", func() {
		_, err := repo.OwnedQuantity(s.ctx, inventory.OwnedQuantityInput{ItemID: testutils.ItemSigil})
		s.True(errors.IsInvalidArgument(err))
	})

	s.Run("restrictions round trip", func() {
		want := entities.ItemRestrictions{RequiredTier: 2, RestrictedClassTypes: []entities.ClassType{entities.ClassTypeMage}}
		_, err := repo.SetRestrictions(s.ctx, inventory.SetRestrictionsInput{ItemID: testutils.ItemHeavyMail, Restrictions: want})
		s.Require().NoError(err)

		out, err := repo.GetRestrictions(s.ctx, inventory.GetRestrictionsInput{ItemID: testutils.ItemHeavyMail})
		s.Require().NoError(err)
		s.Equal(want, *out.Restrictions)
	})

	s.Run("unrestricted item", func() {
		out, err := repo.GetRestrictions(s.ctx, inventory.GetRestrictionsInput{ItemID: "plain"})
		s.Require().NoError(err)
		s.True(out.Restrictions.Allows(&entities.CharacterClass{Tier: 1, Type: entities.ClassTypeMage}))
	})
}

func (s *InventoryTestSuite) TestPostgres() {
	db, mock, err := sqlmock.New()
	s.Require().NoError(err)
	defer func() { _ = db.Close() }()

	repo, err := inventory.NewPostgres(&inventory.PostgresConfig{DB: db})
	s.Require().NoError(err)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(quantity\), 0\) FROM inventory_items`).
		WithArgs(testutils.TestCharacterID, testutils.ItemSigil).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(4))
	owned, err := repo.OwnedQuantity(s.ctx, inventory.OwnedQuantityInput{CharacterID: testutils.TestCharacterID, ItemID: testutils.ItemSigil})
	s.Require().NoError(err)
	s.Equal(int32(4), owned.Quantity)

	mock.ExpectQuery(`SELECT required_tier, allowed_class_types, restricted_class_types FROM item_restrictions`).
		WithArgs(testutils.ItemGreatAxe).
		WillReturnRows(sqlmock.NewRows([]string{"required_tier", "allowed_class_types", "restricted_class_types"}).
			AddRow(0, "{warrior}", "{}"))
	restr, err := repo.GetRestrictions(s.ctx, inventory.GetRestrictionsInput{ItemID: testutils.ItemGreatAxe})
	s.Require().NoError(err)
	s.Equal([]entities.ClassType{entities.ClassTypeWarrior}, restr.Restrictions.AllowedClassTypes)
	s.Empty(restr.Restrictions.RestrictedClassTypes)

	mock.ExpectExec(`INSERT INTO item_restrictions`).
		WithArgs(testutils.ItemHeavyMail, 2, pq.Array([]string{}), pq.Array([]string{})).
		WillReturnResult(sqlmock.NewResult(0, 1))
	_, err = repo.SetRestrictions(s.ctx, inventory.SetRestrictionsInput{
		ItemID:       testutils.ItemHeavyMail,
		Restrictions: entities.ItemRestrictions{RequiredTier: 2},
	})
	s.Require().NoError(err)

	s.NoError(mock.ExpectationsWereMet())
}
