package character_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-advancement/internal/entities"
	"github.com/KirkDiggler/rpg-advancement/internal/errors"
	"github.com/KirkDiggler/rpg-advancement/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-advancement/internal/repositories/character"
	"github.com/KirkDiggler/rpg-advancement/internal/testutils"
)

const statsJSON = `{"strength":5,"intelligence":5,"dexterity":5,"vitality":5,"luck":5}`

var characterColumns = []string{"id", "user_id", "name", "level", "class_id", "stats", "base_stats", "created_at", "updated_at"}

var pendingColumns = []string{"id", "character_id", "user_id", "options", "status", "created_at", "updated_at", "expires_at"}

type PostgresRepositoryTestSuite struct {
	suite.Suite
	db   *sql.DB
	mock sqlmock.Sqlmock
	repo character.Repository
	ctx  context.Context
}

func TestPostgresRepositorySuite(t *testing.T) {
	suite.Run(t, new(PostgresRepositoryTestSuite))
}

func (s *PostgresRepositoryTestSuite) SetupTest() {
	var err error
	s.db, s.mock, err = sqlmock.New()
	s.Require().NoError(err)
	s.ctx = context.Background()

	s.repo, err = character.NewPostgres(&character.PostgresConfig{
		DB:       s.db,
		Clock:    clock.NewFixed(time.Unix(1700000000, 0)),
		LockWait: 250 * time.Millisecond,
	})
	s.Require().NoError(err)
}

func (s *PostgresRepositoryTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	_ = s.db.Close()
}

func (s *PostgresRepositoryTestSuite) characterRow(classID interface{}) *sqlmock.Rows {
	return sqlmock.NewRows(characterColumns).
		AddRow(testutils.TestCharacterID, testutils.TestUserID, "Aria", 10, classID,
			[]byte(statsJSON), []byte(statsJSON), 1700000000, 1700000000)
}

func (s *PostgresRepositoryTestSuite) expectLockedCharacter(classID interface{}) {
	s.mock.ExpectBegin()
	s.mock.ExpectExec(`SET LOCAL lock_timeout = '250ms'`).WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectQuery(`SELECT (.+) FROM characters WHERE id = \$1 FOR UPDATE`).
		WithArgs(testutils.TestCharacterID).
		WillReturnRows(s.characterRow(classID))
}

func (s *PostgresRepositoryTestSuite) TestGet() {
	s.Run("found", func() {
		s.mock.ExpectQuery(`SELECT (.+) FROM characters WHERE id = \$1`).
			WithArgs(testutils.TestCharacterID).
			WillReturnRows(s.characterRow(testutils.ClassKnight))

		out, err := s.repo.Get(s.ctx, character.GetInput{ID: testutils.TestCharacterID})
		s.Require().NoError(err)
		s.Equal(testutils.ClassKnight, out.Character.ClassID)
		s.Equal(int32(5), out.Character.Stats.Luck)
	})

	s.Run("classless", func() {
		s.mock.ExpectQuery(`SELECT (.+) FROM characters`).
			WithArgs(testutils.TestCharacterID).
			WillReturnRows(s.characterRow(nil))

		out, err := s.repo.Get(s.ctx, character.GetInput{ID: testutils.TestCharacterID})
		s.Require().NoError(err)
		s.False(out.Character.HasClass())
	})

	s.Run("not found", func() {
		s.mock.ExpectQuery(`SELECT (.+) FROM characters`).
			WithArgs("nope").
			WillReturnError(sql.ErrNoRows)

		_, err := s.repo.Get(s.ctx, character.GetInput{ID: "nope"})
		s.True(errors.IsNotFound(err))
	})
}

func (s *PostgresRepositoryTestSuite) TestCreateDuplicate() {
	s.mock.ExpectExec(`INSERT INTO characters`).
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := s.repo.Create(s.ctx, character.CreateInput{Character: testutils.NewCharacter(testutils.TestCharacterID)})
	s.True(errors.IsAlreadyExists(err))
}

func (s *PostgresRepositoryTestSuite) TestTransactCommits() {
	s.expectLockedCharacter(testutils.ClassNoviceWarrior)
	s.mock.ExpectQuery(`SELECT item_id, slot FROM equipped_items`).
		WithArgs(testutils.TestCharacterID).
		WillReturnRows(sqlmock.NewRows([]string{"item_id", "slot"}).AddRow(testutils.ItemHeavyMail, "body"))
	s.mock.ExpectExec(`UPDATE equipped_items SET equipped = FALSE`).
		WithArgs(testutils.TestCharacterID, pq.Array([]string{testutils.ItemHeavyMail})).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectExec(`UPDATE characters SET level = \$2, class_id = \$3`).
		WithArgs(testutils.TestCharacterID, 10, testutils.ClassKnight, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectExec(`INSERT INTO class_history`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	out, err := s.repo.Transact(s.ctx, character.TransactInput{
		CharacterID: testutils.TestCharacterID,
		Fn: func(ctx context.Context, tx character.Tx) error {
			items, err := tx.EquippedItems(ctx)
			if err != nil {
				return err
			}
			if err := tx.Unequip(ctx, []string{items[0].ItemID}); err != nil {
				return err
			}
			ch := tx.Character()
			ch.ClassID = testutils.ClassKnight
			if err := tx.SaveCharacter(ctx, ch); err != nil {
				return err
			}
			return tx.AppendHistory(ctx, &entities.ClassHistory{
				ID:              "hist-1",
				CharacterID:     ch.ID,
				PreviousClassID: testutils.ClassNoviceWarrior,
				NewClassID:      testutils.ClassKnight,
				Reason:          entities.ReasonAwakening,
			})
		},
	})
	s.Require().NoError(err)
	s.Equal(testutils.ClassKnight, out.Character.ClassID)
}

func (s *PostgresRepositoryTestSuite) TestConsumeItemAcrossStacks() {
	s.expectLockedCharacter(testutils.ClassKnight)
	s.mock.ExpectQuery(`SELECT id, quantity FROM inventory_items (.+) FOR UPDATE`).
		WithArgs(testutils.TestCharacterID, testutils.ItemSigil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "quantity"}).AddRow(1, 1).AddRow(2, 4))
	s.mock.ExpectExec(`DELETE FROM inventory_items WHERE id = \$1`).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectExec(`UPDATE inventory_items SET quantity = quantity - \$1 WHERE id = \$2`).
		WithArgs(1, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	_, err := s.repo.Transact(s.ctx, character.TransactInput{
		CharacterID: testutils.TestCharacterID,
		Fn: func(ctx context.Context, tx character.Tx) error {
			return tx.ConsumeItem(ctx, testutils.ItemSigil, 2)
		},
	})
	s.Require().NoError(err)
}

func (s *PostgresRepositoryTestSuite) TestConsumeItemShortRollsBack() {
	s.expectLockedCharacter(testutils.ClassKnight)
	s.mock.ExpectQuery(`SELECT id, quantity FROM inventory_items`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "quantity"}))
	s.mock.ExpectRollback()

	_, err := s.repo.Transact(s.ctx, character.TransactInput{
		CharacterID: testutils.TestCharacterID,
		Fn: func(ctx context.Context, tx character.Tx) error {
			return tx.ConsumeItem(ctx, testutils.ItemSigil, 1)
		},
	})
	s.True(errors.IsRequirementsNotMet(err))
}

func (s *PostgresRepositoryTestSuite) pendingRow(id, status string) *sqlmock.Rows {
	return sqlmock.NewRows(pendingColumns).
		AddRow(id, testutils.TestCharacterID, testutils.TestUserID, []byte(`[]`), status, 1, 1, 1700003600)
}

func (s *PostgresRepositoryTestSuite) TestClaimPending() {
	s.Run("claimed", func() {
		s.expectLockedCharacter(testutils.ClassBerserker)
		s.mock.ExpectQuery(`SELECT (.+) FROM pending_advancements WHERE id = \$1 AND character_id = \$2 FOR UPDATE`).
			WithArgs("pending-1", testutils.TestCharacterID).
			WillReturnRows(s.pendingRow("pending-1", "available"))
		s.mock.ExpectExec(`UPDATE pending_advancements SET status = \$1`).
			WithArgs("accepted", int64(1700000000), "pending-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		s.mock.ExpectCommit()

		_, err := s.repo.Transact(s.ctx, character.TransactInput{
			CharacterID: testutils.TestCharacterID,
			Fn: func(ctx context.Context, tx character.Tx) error {
				return tx.ClaimPending(ctx, "pending-1")
			},
		})
		s.Require().NoError(err)
	})

	s.Run("already accepted", func() {
		s.expectLockedCharacter(testutils.ClassBerserker)
		s.mock.ExpectQuery(`SELECT (.+) FROM pending_advancements WHERE id = \$1 AND character_id = \$2 FOR UPDATE`).
			WithArgs("pending-1", testutils.TestCharacterID).
			WillReturnRows(s.pendingRow("pending-1", "accepted"))
		s.mock.ExpectRollback()

		_, err := s.repo.Transact(s.ctx, character.TransactInput{
			CharacterID: testutils.TestCharacterID,
			Fn: func(ctx context.Context, tx character.Tx) error {
				return tx.ClaimPending(ctx, "pending-1")
			},
		})
		s.Require().True(errors.IsInvalidState(err))
		s.Contains(err.Error(), "is accepted")
	})

	s.Run("unknown", func() {
		s.expectLockedCharacter(testutils.ClassBerserker)
		s.mock.ExpectQuery(`SELECT (.+) FROM pending_advancements`).
			WillReturnError(sql.ErrNoRows)
		s.mock.ExpectRollback()

		_, err := s.repo.Transact(s.ctx, character.TransactInput{
			CharacterID: testutils.TestCharacterID,
			Fn: func(ctx context.Context, tx character.Tx) error {
				return tx.ClaimPending(ctx, "pending-9")
			},
		})
		s.True(errors.IsNotFound(err))
	})
}

func (s *PostgresRepositoryTestSuite) TestExpirePending() {
	s.Run("expires the available offer", func() {
		s.expectLockedCharacter(testutils.ClassBerserker)
		s.mock.ExpectQuery(`UPDATE pending_advancements SET status = 'expired', updated_at = \$1 WHERE character_id = \$2 AND status = 'available' RETURNING id`).
			WithArgs(int64(1700000000), testutils.TestCharacterID).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("pending-1"))
		s.mock.ExpectCommit()

		_, err := s.repo.Transact(s.ctx, character.TransactInput{
			CharacterID: testutils.TestCharacterID,
			Fn: func(ctx context.Context, tx character.Tx) error {
				return tx.ExpirePending(ctx)
			},
		})
		s.Require().NoError(err)
	})

	s.Run("nothing to expire", func() {
		s.expectLockedCharacter(testutils.ClassBerserker)
		s.mock.ExpectQuery(`UPDATE pending_advancements SET status = 'expired'`).
			WillReturnError(sql.ErrNoRows)
		s.mock.ExpectCommit()

		_, err := s.repo.Transact(s.ctx, character.TransactInput{
			CharacterID: testutils.TestCharacterID,
			Fn: func(ctx context.Context, tx character.Tx) error {
				return tx.ExpirePending(ctx)
			},
		})
		s.Require().NoError(err)
	})
}

func (s *PostgresRepositoryTestSuite) TestLockTimeoutAborts() {
	s.mock.ExpectBegin()
	s.mock.ExpectExec(`SET LOCAL lock_timeout`).WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectQuery(`FOR UPDATE`).
		WillReturnError(&pq.Error{Code: "55P03"})
	s.mock.ExpectRollback()

	_, err := s.repo.Transact(s.ctx, character.TransactInput{
		CharacterID: testutils.TestCharacterID,
		Fn:          func(context.Context, character.Tx) error { return nil },
	})
	s.True(errors.IsAborted(err))
}
