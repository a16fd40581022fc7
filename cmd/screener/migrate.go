package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/candidate-screener/internal/config"
	"github.com/jonathan/candidate-screener/internal/db"
)

var migrateDatabaseURL string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long:  "Applies the embedded schema migrations to the PostgreSQL database and prints the resulting schema version.",
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&migrateDatabaseURL, "db-url", "", "PostgreSQL connection URL (default $DATABASE_URL)")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	flags := config.Config{DatabaseURL: migrateDatabaseURL}
	cfg, err := resolveConfig(flags.MergeWithDefaults(config.Config{DatabaseURL: os.Getenv("DATABASE_URL")}))
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("a database URL is required: set --db-url or DATABASE_URL")
	}

	ctx := cmd.Context()
	store, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return err
	}
	version, err := store.MigrationVersion(ctx)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(os.Stdout, "Database schema is at version %d\n", version)
	return nil
}
