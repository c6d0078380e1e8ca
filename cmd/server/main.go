// Package main is the entry point for the advancement engine
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-advancement/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "rpg-advancement",
	Short: "Character class advancement engine",
	Long: `rpg-advancement awakens and promotes characters along the class tree,
reacting to level-up events and serving player-driven advancement.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(seedCatalogCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(levelUpCmd)
	rootCmd.AddCommand(historyCmd)
}

// loadConfig reads the environment and installs the JSON logger
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))
	return cfg, nil
}
