package pending

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/KirkDiggler/rpg-advancement/internal/entities"
	"github.com/KirkDiggler/rpg-advancement/internal/errors"
	"github.com/KirkDiggler/rpg-advancement/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-advancement/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-advancement/internal/postgres"
)

const pendingColumns = `id, character_id, user_id, options, status, created_at, updated_at, expires_at`

type postgresRepository struct {
	db          *sql.DB
	clock       clock.Clock
	idGenerator idgen.Generator
	ttl         time.Duration
}

// PostgresConfig contains configuration for the Postgres pending repository
type PostgresConfig struct {
	DB          *sql.DB
	Clock       clock.Clock
	IDGenerator idgen.Generator
	TTL         time.Duration
}

// Validate validates the PostgresConfig
func (cfg *PostgresConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	vb := errors.NewValidationBuilder()
	if cfg.DB == nil {
		vb.RequiredField("DB")
	}
	if cfg.TTL < 0 {
		vb.Field("TTL", "cannot be negative")
	}
	return vb.Build()
}

// NewPostgres creates a Postgres-backed pending repository
func NewPostgres(cfg *PostgresConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}
	gen := cfg.IDGenerator
	if gen == nil {
		gen = idgen.NewUUID("pending")
	}
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}

	return &postgresRepository{db: cfg.DB, clock: c, idGenerator: gen, ttl: ttl}, nil
}

func (r *postgresRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}
	if len(input.Options) == 0 {
		return nil, errors.InvalidArgument(errOptionsEmpty)
	}

	now := r.clock.Now()
	record := &entities.PendingAdvancement{
		ID:          r.idGenerator.Generate(),
		CharacterID: input.CharacterID,
		UserID:      input.UserID,
		Options:     input.Options,
		Status:      entities.PendingStatusAvailable,
		CreatedAt:   now.Unix(),
		UpdatedAt:   now.Unix(),
		ExpiresAt:   now.Add(r.ttl).Unix(),
	}
	options, err := json.Marshal(record.Options)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal options")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	replacedID, err := ExpireSQL(ctx, tx, record.CharacterID, record.UpdatedAt)
	if err != nil {
		return nil, errors.Wrap(err, "failed to expire prior pending advancement")
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO pending_advancements (`+pendingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		record.ID, record.CharacterID, record.UserID, options, string(record.Status),
		record.CreatedAt, record.UpdatedAt, record.ExpiresAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) || postgres.IsConflict(err) {
			return nil, errors.Aborted("pending advancement was modified concurrently")
		}
		return nil, errors.Wrap(err, "failed to create pending advancement")
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "failed to commit pending advancement")
	}
	return &CreateOutput{Pending: record, ReplacedID: replacedID}, nil
}

func (r *postgresRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errPendingIDEmpty)
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+pendingColumns+` FROM pending_advancements WHERE id = $1`, input.ID)
	record, err := scanPending(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFoundf("pending advancement %s not found", input.ID)
		}
		return nil, errors.Wrap(err, "failed to get pending advancement")
	}
	return &GetOutput{Pending: record}, nil
}

func (r *postgresRepository) ListAvailable(ctx context.Context, input ListAvailableInput) (*ListAvailableOutput, error) {
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+pendingColumns+`
		FROM pending_advancements
		WHERE character_id = $1 AND status = 'available' AND (expires_at = 0 OR expires_at > $2)
		ORDER BY created_at DESC`, input.CharacterID, r.clock.Now().Unix())
	if err != nil {
		return nil, errors.Wrap(err, "failed to list pending advancements")
	}
	defer func() { _ = rows.Close() }()

	out := &ListAvailableOutput{Pending: []*entities.PendingAdvancement{}}
	for rows.Next() {
		record, err := scanPending(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan pending advancement")
		}
		out.Pending = append(out.Pending, record)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to list pending advancements")
	}
	return out, nil
}

func (r *postgresRepository) GetLatest(ctx context.Context, input GetLatestInput) (*GetLatestOutput, error) {
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+pendingColumns+`
		FROM pending_advancements
		WHERE character_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, input.CharacterID)
	record, err := scanPending(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFoundf("character %s has no pending advancement", input.CharacterID)
		}
		return nil, errors.Wrap(err, "failed to get latest pending advancement")
	}
	return &GetLatestOutput{Pending: record}, nil
}

func (r *postgresRepository) MarkAccepted(ctx context.Context, input MarkAcceptedInput) (*MarkAcceptedOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errPendingIDEmpty)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	record, err := AcceptSQL(ctx, tx, "", input.ID, r.clock.Now().Unix())
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "failed to commit pending advancement")
	}
	return &MarkAcceptedOutput{Pending: record}, nil
}

func (r *postgresRepository) Clear(ctx context.Context, input ClearInput) (*ClearOutput, error) {
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM pending_advancements WHERE character_id = $1 AND status = 'available'`, input.CharacterID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to clear pending advancements")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, errors.Wrap(err, "failed to clear pending advancements")
	}
	return &ClearOutput{Cleared: int(n)}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPending(row scanner) (*entities.PendingAdvancement, error) {
	var (
		record  entities.PendingAdvancement
		options []byte
		status  string
	)
	err := row.Scan(&record.ID, &record.CharacterID, &record.UserID, &options, &status,
		&record.CreatedAt, &record.UpdatedAt, &record.ExpiresAt)
	if err != nil {
		return nil, err
	}
	record.Status = entities.PendingStatus(status)
	if err := json.Unmarshal(options, &record.Options); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal options")
	}
	return &record, nil
}
