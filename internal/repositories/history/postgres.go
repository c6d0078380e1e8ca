package history

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/KirkDiggler/rpg-advancement/internal/entities"
	"github.com/KirkDiggler/rpg-advancement/internal/errors"
)

type postgresRepository struct {
	db *sql.DB
}

// PostgresConfig contains configuration for the Postgres history repository
type PostgresConfig struct {
	DB *sql.DB
}

// Validate validates the PostgresConfig
func (cfg *PostgresConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.DB == nil {
		return errors.InvalidArgument("db cannot be nil")
	}
	return nil
}

// NewPostgres creates a Postgres-backed history reader
func NewPostgres(cfg *PostgresConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &postgresRepository{db: cfg.DB}, nil
}

func (r *postgresRepository) ListByCharacter(ctx context.Context, input ListByCharacterInput) (*ListByCharacterOutput, error) {
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, character_id, previous_class_id, new_class_id, reason, triggered_by_user_id, stat_delta, created_at
		FROM class_history
		WHERE character_id = $1
		ORDER BY created_at, id`, input.CharacterID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list class history")
	}
	defer func() { _ = rows.Close() }()

	out := &ListByCharacterOutput{History: []*entities.ClassHistory{}}
	for rows.Next() {
		var (
			row         entities.ClassHistory
			previous    sql.NullString
			triggeredBy sql.NullString
			reason      string
			delta       []byte
		)
		if err := rows.Scan(&row.ID, &row.CharacterID, &previous, &row.NewClassID, &reason,
			&triggeredBy, &delta, &row.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan class history")
		}
		row.PreviousClassID = previous.String
		row.TriggeredByUserID = triggeredBy.String
		row.Reason = entities.HistoryReason(reason)
		if err := json.Unmarshal(delta, &row.StatDelta); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal stat delta")
		}
		out.History = append(out.History, &row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to list class history")
	}
	return out, nil
}
