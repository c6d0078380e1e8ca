package main

import (
	"context"
	"database/sql"
	stderrors "errors"
	"log/slog"

	toolkitevents "github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/KirkDiggler/rpg-advancement/internal/config"
	"github.com/KirkDiggler/rpg-advancement/internal/engine/requirements"
	"github.com/KirkDiggler/rpg-advancement/internal/engine/transition"
	"github.com/KirkDiggler/rpg-advancement/internal/errors"
	"github.com/KirkDiggler/rpg-advancement/internal/events"
	"github.com/KirkDiggler/rpg-advancement/internal/orchestrators/advancement"
	"github.com/KirkDiggler/rpg-advancement/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-advancement/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-advancement/internal/postgres"
	redisclient "github.com/KirkDiggler/rpg-advancement/internal/redis"
	"github.com/KirkDiggler/rpg-advancement/internal/repositories/catalog"
	"github.com/KirkDiggler/rpg-advancement/internal/repositories/character"
	"github.com/KirkDiggler/rpg-advancement/internal/repositories/history"
	"github.com/KirkDiggler/rpg-advancement/internal/repositories/inventory"
	"github.com/KirkDiggler/rpg-advancement/internal/repositories/pending"
	"github.com/KirkDiggler/rpg-advancement/internal/repositories/progress"
)

// stores holds the repositories for the configured backend
type stores struct {
	redis      redisclient.Client
	db         *sql.DB
	catalog    catalog.Store
	inventory  inventory.Store
	characters character.Repository
	pending    pending.Repository
	history    history.Repository
	progress   progress.Repository
}

func (s *stores) Close() error {
	var errs []error
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	return stderrors.Join(errs...)
}

func openRedis(ctx context.Context, cfg *config.Config) (redisclient.Client, error) {
	client, err := redisclient.New(&redisclient.Config{
		Addr:         cfg.RedisAddr,
		ClusterAddrs: cfg.RedisClusterAddrs,
		PoolSize:     cfg.RedisPoolSize,
		UseTLS:       cfg.RedisTLS,
	})
	if err != nil {
		return nil, err
	}
	if err := redisclient.Ping(ctx, client); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func openPostgres(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	return postgres.Open(ctx, cfg.PostgresDSN, &postgres.Options{
		MaxOpenConns:    cfg.PostgresMaxOpenConns,
		MaxIdleConns:    max(cfg.PostgresMaxOpenConns/2, 1),
		ConnMaxLifetime: cfg.PostgresConnLifetime,
	})
}

// openStores connects the backends. The catalog and progress always live in
// Redis; the transactional state follows cfg.Backend.
func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	s := &stores{}
	c := clock.New()

	client, err := openRedis(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s.redis = client

	if s.catalog, err = catalog.NewRedis(&catalog.RedisConfig{Client: client}); err != nil {
		return nil, stderrors.Join(err, s.Close())
	}
	if s.progress, err = progress.NewRedis(&progress.RedisConfig{Client: client}); err != nil {
		return nil, stderrors.Join(err, s.Close())
	}

	pendingIDs := idgen.NewUUID("pend")

	switch cfg.Backend {
	case config.BackendPostgres:
		if s.db, err = openPostgres(ctx, cfg); err != nil {
			return nil, stderrors.Join(err, s.Close())
		}
		if s.characters, err = character.NewPostgres(&character.PostgresConfig{
			DB: s.db, Clock: c, LockWait: cfg.LockWait,
		}); err != nil {
			return nil, stderrors.Join(err, s.Close())
		}
		if s.pending, err = pending.NewPostgres(&pending.PostgresConfig{
			DB: s.db, Clock: c, IDGenerator: pendingIDs, TTL: cfg.PendingTTL,
		}); err != nil {
			return nil, stderrors.Join(err, s.Close())
		}
		if s.history, err = history.NewPostgres(&history.PostgresConfig{DB: s.db}); err != nil {
			return nil, stderrors.Join(err, s.Close())
		}
		if s.inventory, err = inventory.NewPostgres(&inventory.PostgresConfig{DB: s.db}); err != nil {
			return nil, stderrors.Join(err, s.Close())
		}

	default:
		if s.characters, err = character.NewRedis(&character.RedisConfig{
			Client: client, Clock: c, LockTTL: cfg.LockTTL, LockWait: cfg.LockWait,
		}); err != nil {
			return nil, stderrors.Join(err, s.Close())
		}
		if s.pending, err = pending.NewRedis(&pending.RedisConfig{
			Client: client, Clock: c, IDGenerator: pendingIDs, TTL: cfg.PendingTTL,
		}); err != nil {
			return nil, stderrors.Join(err, s.Close())
		}
		if s.history, err = history.NewRedis(&history.RedisConfig{Client: client}); err != nil {
			return nil, stderrors.Join(err, s.Close())
		}
		if s.inventory, err = inventory.NewRedis(&inventory.RedisConfig{Client: client}); err != nil {
			return nil, stderrors.Join(err, s.Close())
		}
	}

	return s, nil
}

// seedCatalog loads a catalog file into the catalog store and the item
// restrictions into the inventory store
func seedCatalog(ctx context.Context, s *stores, path string) error {
	doc, err := catalog.LoadDocument(path)
	if err != nil {
		return err
	}

	out, err := s.catalog.Seed(ctx, catalog.SeedInput{Document: doc})
	if err != nil {
		return errors.Wrap(err, "failed to seed catalog")
	}

	// The Redis seed already wrote restrictions next to the catalog; a
	// Postgres inventory reads its own table.
	if s.db != nil {
		for _, item := range doc.Items {
			if _, err := s.inventory.SetRestrictions(ctx, inventory.SetRestrictionsInput{
				ItemID:       item.ID,
				Restrictions: item.Restrictions,
			}); err != nil {
				return errors.Wrapf(err, "failed to store restrictions for %s", item.ID)
			}
		}
	}

	slog.InfoContext(ctx, "catalog seeded",
		"path", path,
		"classes", out.Classes,
		"mappings", out.Mappings,
		"items", out.Items)
	return nil
}

// buildNotifier fans out to the in-process event bus and, when brokers are
// configured, to Kafka. The returned closer releases the Kafka writer.
func buildNotifier(cfg *config.Config) (events.Notifier, func() error, error) {
	busNotifier, err := events.NewBusNotifier(toolkitevents.NewBus())
	if err != nil {
		return nil, nil, err
	}
	if !cfg.KafkaEnabled() {
		return busNotifier, func() error { return nil }, nil
	}

	kafkaNotifier, err := events.NewKafkaNotifier(&events.KafkaWriterConfig{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.KafkaNotificationTopic,
	})
	if err != nil {
		return nil, nil, err
	}
	return events.MultiNotifier{busNotifier, kafkaNotifier}, kafkaNotifier.Close, nil
}

// buildService wires the evaluator, applier and façade over the stores
func buildService(cfg *config.Config, s *stores, notifier events.Notifier) (advancement.Service, error) {
	evaluator, err := requirements.NewEvaluator(&requirements.Config{
		Characters: s.characters,
		Catalog:    s.catalog,
		Progress:   s.progress,
		Inventory:  s.inventory,
	})
	if err != nil {
		return nil, err
	}

	applier, err := transition.NewApplier(&transition.Config{
		Characters:  s.characters,
		Catalog:     s.catalog,
		Inventory:   s.inventory,
		Evaluator:   evaluator,
		IDGenerator: idgen.NewUUID("hist"),
	})
	if err != nil {
		return nil, err
	}

	return advancement.NewOrchestrator(&advancement.Config{
		Characters:         s.characters,
		Catalog:            s.catalog,
		Pending:            s.pending,
		History:            s.history,
		Evaluator:          evaluator,
		Applier:            applier,
		Notifier:           notifier,
		LateAwakeningLevel: cfg.LateAwakeningLevel,
	})
}
