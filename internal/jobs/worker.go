package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"go.uber.org/zap"

	"github.com/dokumi/ocr-service/internal/callback"
	"github.com/dokumi/ocr-service/internal/ocr"
	"github.com/dokumi/ocr-service/internal/store"
	"github.com/dokumi/ocr-service/internal/store/model"
)

const (
	DefaultQueue = "ocr"
	JobKind      = "ocr_extract"
)

// ExtractArgs is the job descriptor stored in river_job.args as JSON.
type ExtractArgs struct {
	DocumentID  uuid.UUID `json:"document_id"`
	JobID       uuid.UUID `json:"job_id"`
	FilePath    string    `json:"file_path"`
	Password    string    `json:"password,omitempty"`
	LetterID    string    `json:"letter_id,omitempty"`
	DownloadURL string    `json:"download_url,omitempty"`
}

func (ExtractArgs) Kind() string {
	return JobKind
}

func (ExtractArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue: DefaultQueue,
	}
}

// PipelineRunner is the extraction pipeline as seen from the worker.
type PipelineRunner interface {
	Run(ctx context.Context, req ocr.Request) (*ocr.Result, error)
}

// Notifier delivers terminal outcomes downstream. Errors are logged and
// swallowed here; callback delivery never influences job state.
type Notifier interface {
	Success(ctx context.Context, data callback.Data, extractedText string, hasProtection bool, totalPages int) error
	Failure(ctx context.Context, data callback.Data, errMsg string) error
}

// ExtractWorker drives one OCR job attempt: it runs the pipeline, persists
// the terminal outcome, and decides between retry and finalization using the
// retry policy. River redelivers the job after NextRetry for attempts that
// return an error.
type ExtractWorker struct {
	river.WorkerDefaults[ExtractArgs]
	pipeline PipelineRunner
	store    store.Store
	notifier Notifier
	policy   ocr.RetryPolicy
	timeout  time.Duration
}

func NewExtractWorker(pipeline PipelineRunner, s store.Store, notifier Notifier, policy ocr.RetryPolicy, timeout time.Duration) *ExtractWorker {
	return &ExtractWorker{
		pipeline: pipeline,
		store:    s,
		notifier: notifier,
		policy:   policy,
		timeout:  timeout,
	}
}

// Timeout is the wall-clock budget for one attempt. An attempt that exceeds
// it fails with a context error, which classifies as retryable.
func (w *ExtractWorker) Timeout(job *river.Job[ExtractArgs]) time.Duration {
	return w.timeout
}

func (w *ExtractWorker) NextRetry(job *river.Job[ExtractArgs]) time.Time {
	return time.Now().Add(w.policy.Backoff)
}

func (w *ExtractWorker) Work(ctx context.Context, job *river.Job[ExtractArgs]) error {
	args := job.Args
	logger := zap.S().Named("worker").With("job_id", args.JobID, "attempt", job.Attempt)
	data := callback.Data{LetterID: args.LetterID, DownloadURL: args.DownloadURL}

	// The queue guarantees at-least-once delivery; a redelivered descriptor
	// whose row already reached a terminal state is dropped, never re-run.
	current, err := w.store.OCRJob().Get(ctx, args.JobID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return river.JobCancel(err)
		}
		return err
	}
	if current.Status.Terminal() {
		logger.Infof("job already %s, dropping duplicate delivery", current.Status)
		return nil
	}

	if job.Attempt > 1 {
		if err := w.store.OCRJob().SetProcessing(ctx, args.JobID); err != nil {
			logger.Warnf("failed to mark retried job as processing: %v", err)
		}
	}

	result, runErr := w.pipeline.Run(ctx, ocr.Request{
		DocumentID: args.DocumentID,
		JobID:      args.JobID,
		FilePath:   args.FilePath,
		Password:   args.Password,
	})
	if runErr == nil {
		w.completeJob(ctx, job, data, result)
		return nil
	}

	if w.policy.ShouldRetry(runErr, job.Attempt) {
		logger.Warnf("attempt failed, retrying in %s: %v", w.policy.Backoff, runErr)
		return runErr
	}

	w.failJob(ctx, job, data, runErr)
	return river.JobCancel(runErr)
}

func (w *ExtractWorker) completeJob(ctx context.Context, job *river.Job[ExtractArgs], data callback.Data, result *ocr.Result) {
	args := job.Args
	logger := zap.S().Named("worker").With("job_id", args.JobID)

	metadata := model.MakeJSONField(model.JobMetadata{
		HasCopyProtection: result.HasCopyProtection,
		PagesProcessed:    result.TotalPages,
		Attempts:          job.Attempt,
		LetterID:          args.LetterID,
		OutputPath:        result.ArtifactPath,
	})

	// The OCR work itself succeeded. A store failure here leaves the row
	// lagging behind reality; that inconsistency is logged and accepted
	// rather than failing the job.
	if _, err := w.store.OCRJob().Finalize(ctx, args.JobID, model.JobStatusCompleted, result.Text, metadata); err != nil {
		if errors.Is(err, store.ErrJobFinalized) {
			logger.Infof("job finalized concurrently, keeping existing terminal state")
			return
		}
		logger.Errorf("failed to persist completed job: %v", err)
	}

	if err := w.notifier.Success(ctx, data, result.Text, result.HasCopyProtection, result.TotalPages); err != nil {
		logger.Errorf("success callback failed: %v", err)
	}

	logger.Infof("ocr completed, %d pages processed", result.TotalPages)
}

func (w *ExtractWorker) failJob(ctx context.Context, job *river.Job[ExtractArgs], data callback.Data, runErr error) {
	args := job.Args
	logger := zap.S().Named("worker").With("job_id", args.JobID)

	// The attempt context may already be expired (timeouts land here after
	// the last retry); finalization and the failure callback still have to
	// go out.
	ctx = context.WithoutCancel(ctx)

	metadata := model.MakeJSONField(model.JobMetadata{
		Attempts:  job.Attempt,
		LetterID:  args.LetterID,
		LastError: runErr.Error(),
	})

	if _, err := w.store.OCRJob().Finalize(ctx, args.JobID, model.JobStatusFailed, runErr.Error(), metadata); err != nil {
		if errors.Is(err, store.ErrJobFinalized) {
			logger.Infof("job finalized concurrently, keeping existing terminal state")
			return
		}
		logger.Errorf("failed to persist failed job: %v", err)
	}

	if err := w.notifier.Failure(ctx, data, runErr.Error()); err != nil {
		logger.Errorf("failure callback failed: %v", err)
	}

	logger.Errorf("ocr failed after %d attempt(s): %v", job.Attempt, runErr)
}
