package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dokumi/ocr-service/internal/config"
	"github.com/dokumi/ocr-service/internal/store"
	"github.com/dokumi/ocr-service/pkg/log"
	"github.com/dokumi/ocr-service/pkg/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the db",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return fmt.Errorf("reading configuration: %w", err)
		}

		logger := log.InitLog(log.AtomicLevel(cfg.Service.LogLevel))
		defer func() { _ = logger.Sync() }()
		undo := zap.ReplaceGlobals(logger)
		defer undo()

		db, err := store.InitDB(cfg)
		if err != nil {
			return fmt.Errorf("initializing data store: %w", err)
		}

		s := store.NewStore(db)
		defer s.Close()

		pool, err := pgxpool.New(context.Background(), pgDSN(cfg))
		if err != nil {
			return fmt.Errorf("creating queue pool: %w", err)
		}
		defer pool.Close()

		if err := migrations.MigrateStore(db, cfg.Service.MigrationFolder, pool); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}

		zap.S().Named("migrate").Info("db migrated")
		return nil
	},
}
