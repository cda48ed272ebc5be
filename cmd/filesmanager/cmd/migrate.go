package cmd

import (
	"context"
	"database/sql"

	"github.com/spf13/cobra"
	"github.com/templui/filesmanager/internal/config"
	"github.com/templui/filesmanager/internal/db"
	"github.com/templui/filesmanager/internal/logger"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}

	cmd.AddCommand(migrateUpCmd())
	cmd.AddCommand(migrateDownCmd())
	return cmd
}

func migrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), db.RunMigrations)
		},
	}
}

func migrateDownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), db.MigrateDown)
		},
	}
}

func withDB(ctx context.Context, fn func(ctx context.Context, database *sql.DB, driver string) error) error {
	cfg := config.Load()
	logger.Init(cfg.IsDevelopment(), cfg.SentryDSN, "migrate")

	if ctx == nil {
		ctx = context.Background()
	}

	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return err
	}
	defer db.Close(database)

	return fn(ctx, database.DB, cfg.DBDriver)
}
