package inventory

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/KirkDiggler/rpg-advancement/internal/entities"
	"github.com/KirkDiggler/rpg-advancement/internal/errors"
)

type postgresRepository struct {
	db *sql.DB
}

// PostgresConfig contains configuration for the Postgres inventory repository
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

// NewPostgres creates a Postgres-backed inventory repository
func NewPostgres(cfg *PostgresConfig) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &postgresRepository{db: cfg.DB}, nil
}

func (r *postgresRepository) OwnedQuantity(ctx context.Context, input OwnedQuantityInput) (*OwnedQuantityOutput, error) {
	if err := validateOwned(input); err != nil {
		return nil, err
	}

	var qty int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM inventory_items WHERE character_id = $1 AND item_id = $2`,
		input.CharacterID, input.ItemID).Scan(&qty)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read inventory for item %s", input.ItemID)
	}
	return &OwnedQuantityOutput{Quantity: int32(qty)}, nil
}

func (r *postgresRepository) GetRestrictions(ctx context.Context, input GetRestrictionsInput) (*GetRestrictionsOutput, error) {
	if input.ItemID == "" {
		return nil, errors.InvalidArgument(errItemIDEmpty)
	}

	var (
		tier                int32
		allowed, restricted pq.StringArray
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT required_tier, allowed_class_types, restricted_class_types
		FROM item_restrictions
		WHERE item_id = $1`, input.ItemID).Scan(&tier, &allowed, &restricted)
	if err != nil {
		if err == sql.ErrNoRows {
			return &GetRestrictionsOutput{Restrictions: &entities.ItemRestrictions{}}, nil
		}
		return nil, errors.Wrapf(err, "failed to read restrictions for item %s", input.ItemID)
	}

	return &GetRestrictionsOutput{Restrictions: &entities.ItemRestrictions{
		RequiredTier:         tier,
		AllowedClassTypes:    toClassTypes(allowed),
		RestrictedClassTypes: toClassTypes(restricted),
	}}, nil
}

func (r *postgresRepository) SetRestrictions(ctx context.Context, input SetRestrictionsInput) (*SetRestrictionsOutput, error) {
	if input.ItemID == "" {
		return nil, errors.InvalidArgument(errItemIDEmpty)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO item_restrictions (item_id, required_tier, allowed_class_types, restricted_class_types)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (item_id) DO UPDATE
		SET required_tier = EXCLUDED.required_tier,
			allowed_class_types = EXCLUDED.allowed_class_types,
			restricted_class_types = EXCLUDED.restricted_class_types`,
		input.ItemID, input.Restrictions.RequiredTier,
		pq.Array(fromClassTypes(input.Restrictions.AllowedClassTypes)),
		pq.Array(fromClassTypes(input.Restrictions.RestrictedClassTypes)))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to write restrictions for item %s", input.ItemID)
	}
	return &SetRestrictionsOutput{}, nil
}

func toClassTypes(in []string) []entities.ClassType {
	if len(in) == 0 {
		return nil
	}
	out := make([]entities.ClassType, len(in))
	for i, s := range in {
		out[i] = entities.ClassType(s)
	}
	return out
}

func fromClassTypes(in []entities.ClassType) []string {
	out := make([]string, len(in))
	for i, t := range in {
		out[i] = string(t)
	}
	return out
}
