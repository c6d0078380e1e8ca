package character

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/KirkDiggler/rpg-advancement/internal/entities"
	"github.com/KirkDiggler/rpg-advancement/internal/errors"
	"github.com/KirkDiggler/rpg-advancement/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-advancement/internal/postgres"
	"github.com/KirkDiggler/rpg-advancement/internal/repositories/pending"
)

const selectCharacter = `
	SELECT id, user_id, name, level, class_id, stats, base_stats, created_at, updated_at
	FROM characters
	WHERE id = $1`

type postgresRepository struct {
	db       *sql.DB
	clock    clock.Clock
	lockWait time.Duration
}

// PostgresConfig contains configuration for the Postgres character repository
type PostgresConfig struct {
	DB    *sql.DB
	Clock clock.Clock

	// LockWait becomes the transaction's lock_timeout; zero waits forever
	LockWait time.Duration
}

// Validate validates the PostgresConfig
func (cfg *PostgresConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.DB == nil {
		return errors.InvalidArgument("db cannot be nil")
	}
	if cfg.LockWait < 0 {
		return errors.InvalidArgument("lock wait cannot be negative")
	}
	return nil
}

// NewPostgres creates a Postgres-backed character repository that locks the
// character row with SELECT ... FOR UPDATE
func NewPostgres(cfg *PostgresConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}

	return &postgresRepository{db: cfg.DB, clock: c, lockWait: cfg.LockWait}, nil
}

func (r *postgresRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Character == nil {
		return nil, errors.InvalidArgument(errCharacterNil)
	}
	ch := input.Character
	if ch.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	stats, base, err := marshalStats(ch)
	if err != nil {
		return nil, err
	}

	q := `
		INSERT INTO characters (id, user_id, name, level, class_id, stats, base_stats, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = r.db.ExecContext(ctx, q, ch.ID, ch.UserID, ch.Name, ch.Level, nullString(ch.ClassID),
		stats, base, ch.CreatedAt, ch.UpdatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, errors.AlreadyExistsf("character with ID %s already exists", ch.ID)
		}
		return nil, errors.Wrap(err, "failed to create character")
	}

	return &CreateOutput{Character: ch}, nil
}

func (r *postgresRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	char, err := scanCharacter(r.db.QueryRowContext(ctx, selectCharacter, input.ID), input.ID)
	if err != nil {
		return nil, err
	}
	return &GetOutput{Character: char}, nil
}

func (r *postgresRepository) Transact(ctx context.Context, input TransactInput) (*TransactOutput, error) {
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}
	if input.Fn == nil {
		return nil, errors.InvalidArgument(errFnNil)
	}

	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to begin transaction")
	}
	// No-op once committed
	defer func() { _ = sqlTx.Rollback() }()

	if r.lockWait > 0 {
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockWait.Milliseconds())
		if _, err := sqlTx.ExecContext(ctx, stmt); err != nil {
			return nil, errors.Wrap(err, "failed to set lock timeout")
		}
	}

	char, err := scanCharacter(sqlTx.QueryRowContext(ctx, selectCharacter+" FOR UPDATE", input.CharacterID), input.CharacterID)
	if err != nil {
		return nil, err
	}

	tx := &postgresTx{
		tx:        sqlTx,
		clock:     r.clock,
		character: char,
		claimed:   make(map[string]bool),
	}
	if err := input.Fn(ctx, tx); err != nil {
		return nil, err
	}

	if err := sqlTx.Commit(); err != nil {
		return nil, translateConflict(err, input.CharacterID)
	}
	return &TransactOutput{Character: tx.character}, nil
}

type postgresTx struct {
	tx        *sql.Tx
	clock     clock.Clock
	character *entities.Character
	claimed   map[string]bool
}

func (t *postgresTx) Character() *entities.Character {
	cp := *t.character
	return &cp
}

func (t *postgresTx) EquippedItems(ctx context.Context) ([]entities.EquippedItem, error) {
	q := `
		SELECT item_id, slot
		FROM equipped_items
		WHERE character_id = $1 AND equipped
		ORDER BY item_id`
	rows, err := t.tx.QueryContext(ctx, q, t.character.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list equipment")
	}
	defer func() { _ = rows.Close() }()

	var items []entities.EquippedItem
	for rows.Next() {
		item := entities.EquippedItem{Equipped: true}
		if err := rows.Scan(&item.ItemID, &item.Slot); err != nil {
			return nil, errors.Wrap(err, "failed to scan equipped item")
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to list equipment")
	}
	return items, nil
}

func (t *postgresTx) ItemQuantity(ctx context.Context, itemID string) (int32, error) {
	if itemID == "" {
		return 0, errors.InvalidArgument(errItemIDEmpty)
	}

	var qty int64
	q := `SELECT COALESCE(SUM(quantity), 0) FROM inventory_items WHERE character_id = $1 AND item_id = $2`
	if err := t.tx.QueryRowContext(ctx, q, t.character.ID, itemID).Scan(&qty); err != nil {
		return 0, errors.Wrapf(err, "failed to read inventory for item %s", itemID)
	}
	return int32(qty), nil
}

type inventoryRow struct {
	id       int64
	quantity int32
}

func (t *postgresTx) ConsumeItem(ctx context.Context, itemID string, qty int32) error {
	if itemID == "" {
		return errors.InvalidArgument(errItemIDEmpty)
	}
	if qty <= 0 {
		return errors.InvalidArgumentf("quantity must be positive, got %d", qty)
	}

	q := `
		SELECT id, quantity
		FROM inventory_items
		WHERE character_id = $1 AND item_id = $2
		ORDER BY id
		FOR UPDATE`
	rows, err := t.tx.QueryContext(ctx, q, t.character.ID, itemID)
	if err != nil {
		return errors.Wrapf(err, "failed to lock inventory for item %s", itemID)
	}

	var (
		stacks []inventoryRow
		owned  int32
	)
	for rows.Next() {
		var row inventoryRow
		if err := rows.Scan(&row.id, &row.quantity); err != nil {
			_ = rows.Close()
			return errors.Wrap(err, "failed to scan inventory row")
		}
		stacks = append(stacks, row)
		owned += row.quantity
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return errors.Wrap(err, "failed to read inventory")
	}

	if owned < qty {
		return insufficientItem(itemID, qty, owned)
	}

	remaining := qty
	for _, row := range stacks {
		if remaining == 0 {
			break
		}
		take := min(row.quantity, remaining)
		if take == row.quantity {
			_, err = t.tx.ExecContext(ctx, `DELETE FROM inventory_items WHERE id = $1`, row.id)
		} else {
			_, err = t.tx.ExecContext(ctx, `UPDATE inventory_items SET quantity = quantity - $1 WHERE id = $2`, take, row.id)
		}
		if err != nil {
			return errors.Wrapf(err, "failed to consume item %s", itemID)
		}
		remaining -= take
	}
	return nil
}

func (t *postgresTx) Unequip(ctx context.Context, itemIDs []string) error {
	if len(itemIDs) == 0 {
		return nil
	}

	q := `UPDATE equipped_items SET equipped = FALSE WHERE character_id = $1 AND item_id = ANY($2)`
	res, err := t.tx.ExecContext(ctx, q, t.character.ID, pq.Array(itemIDs))
	if err != nil {
		return errors.Wrap(err, "failed to unequip items")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to unequip items")
	}
	if n != int64(len(itemIDs)) {
		return errors.NotFoundf("expected to unequip %d items, updated %d", len(itemIDs), n)
	}
	return nil
}

func (t *postgresTx) ClaimPending(ctx context.Context, pendingID string) error {
	if pendingID == "" {
		return errors.InvalidArgument(errPendingIDEmpty)
	}
	if t.claimed[pendingID] {
		return errors.InvalidStatef("pending advancement %s was already accepted", pendingID)
	}

	if _, err := pending.AcceptSQL(ctx, t.tx, t.character.ID, pendingID, t.clock.Now().Unix()); err != nil {
		return err
	}
	t.claimed[pendingID] = true
	return nil
}

func (t *postgresTx) ExpirePending(ctx context.Context) error {
	_, err := pending.ExpireSQL(ctx, t.tx, t.character.ID, t.clock.Now().Unix())
	return err
}

func (t *postgresTx) SaveCharacter(ctx context.Context, character *entities.Character) error {
	if character == nil {
		return errors.InvalidArgument(errCharacterNil)
	}
	if character.ID != t.character.ID {
		return errors.InvalidArgumentf("transaction is scoped to character %s", t.character.ID)
	}

	stats, base, err := marshalStats(character)
	if err != nil {
		return err
	}

	q := `
		UPDATE characters
		SET level = $2, class_id = $3, stats = $4, base_stats = $5, updated_at = $6
		WHERE id = $1`
	if _, err := t.tx.ExecContext(ctx, q, character.ID, character.Level, nullString(character.ClassID),
		stats, base, character.UpdatedAt); err != nil {
		return errors.Wrap(err, "failed to save character")
	}

	cp := *character
	t.character = &cp
	return nil
}

func (t *postgresTx) AppendHistory(ctx context.Context, history *entities.ClassHistory) error {
	if history == nil {
		return errors.InvalidArgument("history cannot be nil")
	}

	delta, err := json.Marshal(history.StatDelta)
	if err != nil {
		return errors.Wrap(err, "failed to marshal stat delta")
	}

	q := `
		INSERT INTO class_history
			(id, character_id, previous_class_id, new_class_id, reason, triggered_by_user_id, stat_delta, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = t.tx.ExecContext(ctx, q, history.ID, history.CharacterID, nullString(history.PreviousClassID),
		history.NewClassID, string(history.Reason), nullString(history.TriggeredByUserID), delta, history.CreatedAt)
	if err != nil {
		return errors.Wrap(err, "failed to append class history")
	}
	return nil
}

func scanCharacter(row *sql.Row, id string) (*entities.Character, error) {
	var (
		ch          entities.Character
		classID     sql.NullString
		stats, base []byte
	)
	err := row.Scan(&ch.ID, &ch.UserID, &ch.Name, &ch.Level, &classID, &stats, &base, &ch.CreatedAt, &ch.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFoundf("character with ID %s not found", id)
		}
		if postgres.IsConflict(err) {
			return nil, errors.Abortedf("character %s is locked by another advancement", id)
		}
		return nil, errors.Wrap(err, "failed to get character")
	}
	ch.ClassID = classID.String
	if err := json.Unmarshal(stats, &ch.Stats); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal stats")
	}
	if err := json.Unmarshal(base, &ch.BaseStats); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal base stats")
	}
	return &ch, nil
}

func marshalStats(ch *entities.Character) ([]byte, []byte, error) {
	stats, err := json.Marshal(ch.Stats)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to marshal stats")
	}
	base, err := json.Marshal(ch.BaseStats)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to marshal base stats")
	}
	return stats, base, nil
}

func translateConflict(err error, characterID string) error {
	if postgres.IsConflict(err) {
		return errors.Abortedf("character %s was modified concurrently", characterID)
	}
	return errors.Wrap(err, "failed to commit transaction")
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
