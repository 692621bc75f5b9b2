package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dokumi/ocr-service/internal/config"
	"github.com/dokumi/ocr-service/internal/jobs"
	"github.com/dokumi/ocr-service/internal/service"
	"github.com/dokumi/ocr-service/internal/store"
	"github.com/dokumi/ocr-service/pkg/log"
)

var (
	submitPassword    string
	submitLetterID    string
	submitDownloadURL string
)

var submitCmd = &cobra.Command{
	Use:   "submit <file>",
	Short: "Admit a document for OCR",
	Args:  cobra.ExactArgs(1),
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

		client, err := jobs.NewInsertOnlyClient(pool, cfg.Service.MaxAttempts)
		if err != nil {
			return fmt.Errorf("creating queue client: %w", err)
		}

		filePath := args[0]
		svc := service.NewOCRService(s, client)
		info, err := svc.Admit(cmd.Context(), service.AdmissionForm{
			FileName:    filepath.Base(filePath),
			FilePath:    filePath,
			FileType:    filepath.Ext(filePath),
			Password:    submitPassword,
			LetterID:    submitLetterID,
			DownloadURL: submitDownloadURL,
		})
		if err != nil {
			return err
		}

		fmt.Printf("job %s admitted (document %s, task %d, status %s)\n", info.JobID, info.DocumentID, info.TaskID, info.Status)
		return nil
	},
}

func init() {
	submitCmd.Flags().StringVar(&submitPassword, "password", "", "Password for encrypted PDFs")
	submitCmd.Flags().StringVar(&submitLetterID, "letter-id", "", "Correlator id for the terminal callback")
	submitCmd.Flags().StringVar(&submitDownloadURL, "download-url", "", "Download URL forwarded in the callback payload")
}
