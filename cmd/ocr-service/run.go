package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dokumi/ocr-service/internal/artifact"
	"github.com/dokumi/ocr-service/internal/callback"
	"github.com/dokumi/ocr-service/internal/config"
	"github.com/dokumi/ocr-service/internal/jobs"
	"github.com/dokumi/ocr-service/internal/ocr"
	"github.com/dokumi/ocr-service/internal/ocr/tesseract"
	"github.com/dokumi/ocr-service/internal/pdf"
	"github.com/dokumi/ocr-service/internal/store"
	"github.com/dokumi/ocr-service/pkg/log"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the OCR worker pool",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return fmt.Errorf("reading configuration: %w", err)
		}

		logger := log.InitLog(log.AtomicLevel(cfg.Service.LogLevel))
		defer func() { _ = logger.Sync() }()
		undo := zap.ReplaceGlobals(logger)
		defer undo()

		zap.S().Named("worker").Info("starting OCR worker service")
		defer zap.S().Named("worker").Info("OCR worker service stopped")

		db, err := store.InitDB(cfg)
		if err != nil {
			return fmt.Errorf("initializing data store: %w", err)
		}

		s := store.NewStore(db)
		defer s.Close()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
		defer cancel()

		pool, err := pgxpool.New(ctx, pgDSN(cfg))
		if err != nil {
			return fmt.Errorf("creating queue pool: %w", err)
		}
		defer pool.Close()

		artifacts, err := artifact.New(ctx, cfg)
		if err != nil {
			return fmt.Errorf("initializing artifact store: %w", err)
		}

		pipeline := ocr.NewPipeline(
			ocr.PipelineConfig{
				Languages:       cfg.Service.Languages,
				PageParallelism: cfg.Service.PageParallelism,
			},
			pdf.NewDecryptor(),
			pdf.NewRasterizer(cfg.Service.PdftoppmPath, cfg.Service.RenderDPI),
			pdf.NewTextProber(cfg.Service.PdftotextPath),
			tesseract.NewEngine(),
			artifacts,
		)

		notifier := callback.NewNotifier(cfg.Service.Callback.URL, cfg.Service.Callback.Token, cfg.Service.Callback.Timeout)
		policy := ocr.RetryPolicy{MaxAttempts: cfg.Service.MaxAttempts, Backoff: cfg.Service.RetryBackoff}
		worker := jobs.NewExtractWorker(pipeline, s, notifier, policy, cfg.Service.JobTimeout)

		client, err := jobs.NewClient(ctx, pool, worker, cfg.Service.MaxWorkers, cfg.Service.MaxAttempts)
		if err != nil {
			return fmt.Errorf("creating queue client: %w", err)
		}

		if err := client.Start(ctx); err != nil {
			return fmt.Errorf("starting queue client: %w", err)
		}

		<-ctx.Done()
		return client.Stop(context.Background())
	},
}

func pgDSN(cfg *config.Config) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		url.QueryEscape(cfg.Database.User),
		url.QueryEscape(cfg.Database.Password),
		cfg.Database.Hostname,
		cfg.Database.Port,
		cfg.Database.Name,
	)
}
