package main

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-advancement/internal/config"
	"github.com/KirkDiggler/rpg-advancement/internal/errors"
	"github.com/KirkDiggler/rpg-advancement/internal/events"
	"github.com/KirkDiggler/rpg-advancement/internal/orchestrators/advancement"
	"github.com/KirkDiggler/rpg-advancement/internal/postgres"
)

var (
	catalogFile string

	characterID string
	oldLevel    int32
	newLevel    int32
	direct      bool
)

var seedCatalogCmd = &cobra.Command{
	Use:   "seed-catalog",
	Short: "Load a class catalog YAML file into the store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		path := catalogFile
		if path == "" {
			path = cfg.CatalogFile
		}
		if path == "" {
			return errors.InvalidArgument("--file or ADVANCEMENT_CATALOG_FILE is required")
		}

		st, err := openStores(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		return seedCatalog(cmd.Context(), st, path)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the Postgres schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Backend != config.BackendPostgres {
			return errors.FailedPreconditionf("migrate needs ADVANCEMENT_STORE_BACKEND=%s", config.BackendPostgres)
		}

		db, err := openPostgres(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		if err := postgres.Migrate(cmd.Context(), db); err != nil {
			return err
		}
		slog.InfoContext(cmd.Context(), "schema applied")
		return nil
	},
}

var levelUpCmd = &cobra.Command{
	Use:   "levelup",
	Short: "Publish a level-up event, or evaluate it in process with --direct",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		event := events.LevelUp{CharacterID: characterID, OldLevel: oldLevel, NewLevel: newLevel}
		if err := event.Validate(); err != nil {
			return err
		}

		if !direct {
			if !cfg.KafkaEnabled() {
				return errors.FailedPrecondition("ADVANCEMENT_KAFKA_BROKERS is required unless --direct is set")
			}
			publisher, err := events.NewKafkaPublisher(&events.KafkaWriterConfig{
				Brokers: cfg.KafkaBrokers,
				Topic:   cfg.KafkaLevelUpTopic,
			})
			if err != nil {
				return err
			}
			defer func() { _ = publisher.Close() }()

			if err := publisher.PublishLevelUp(cmd.Context(), event); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "published level-up for %s (%d -> %d)\n",
				event.CharacterID, event.OldLevel, event.NewLevel)
			return nil
		}

		st, err := openStores(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		svc, err := buildService(cfg, st, events.NopNotifier{})
		if err != nil {
			return err
		}

		out, err := svc.EvaluateLevelUp(cmd.Context(), &advancement.EvaluateLevelUpInput{
			CharacterID: event.CharacterID,
			OldLevel:    event.OldLevel,
			NewLevel:    event.NewLevel,
		})
		if err != nil {
			return err
		}
		return printJSON(cmd, out)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print a character's class history",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		st, err := openStores(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		svc, err := buildService(cfg, st, events.NopNotifier{})
		if err != nil {
			return err
		}

		out, err := svc.GetClassHistory(cmd.Context(), &advancement.GetClassHistoryInput{CharacterID: characterID})
		if err != nil {
			return err
		}
		return printJSON(cmd, out.History)
	},
}

func init() {
	seedCatalogCmd.Flags().StringVar(&catalogFile, "file", "", "catalog YAML file")

	levelUpCmd.Flags().StringVar(&characterID, "character", "", "character ID")
	levelUpCmd.Flags().Int32Var(&oldLevel, "old", 0, "level before the gain")
	levelUpCmd.Flags().Int32Var(&newLevel, "new", 0, "level after the gain")
	levelUpCmd.Flags().BoolVar(&direct, "direct", false, "evaluate in process instead of publishing")
	_ = levelUpCmd.MarkFlagRequired("character")
	_ = levelUpCmd.MarkFlagRequired("new")

	historyCmd.Flags().StringVar(&characterID, "character", "", "character ID")
	_ = historyCmd.MarkFlagRequired("character")
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
