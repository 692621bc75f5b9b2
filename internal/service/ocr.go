package service

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dokumi/ocr-service/internal/jobs"
	"github.com/dokumi/ocr-service/internal/pdf"
	"github.com/dokumi/ocr-service/internal/store"
	"github.com/dokumi/ocr-service/internal/store/model"
)

// JobEnqueuer is the queue as seen from admission.
type JobEnqueuer interface {
	InsertJob(ctx context.Context, args jobs.ExtractArgs) (int64, error)
}

type OCRService struct {
	store store.Store
	queue JobEnqueuer
}

func NewOCRService(s store.Store, queue JobEnqueuer) *OCRService {
	return &OCRService{store: s, queue: queue}
}

// AdmissionForm describes an already-uploaded file to be OCR'd. LetterID and
// DownloadURL are passed through to the terminal callback; LetterID empty
// means no callback is wanted.
type AdmissionForm struct {
	FileName    string
	FilePath    string
	FileType    string
	SizeBytes   int64
	Password    string
	LetterID    string
	DownloadURL string
}

// JobInfo is the admission response: enough to poll for status later.
type JobInfo struct {
	JobID      uuid.UUID
	DocumentID uuid.UUID
	TaskID     int64
	Status     model.JobStatus
}

// Admit registers a document and its OCR job, then hands the job descriptor
// to the queue. A missing file still produces Document and Job rows, but the
// job is finalized failed on the spot and never enqueued: a file that is not
// there will not appear on retry.
func (s *OCRService) Admit(ctx context.Context, form AdmissionForm) (*JobInfo, error) {
	logger := zap.S().Named("admission")

	fileInfo, statErr := os.Stat(form.FilePath)

	sizeBytes := form.SizeBytes
	totalPages := 0
	if statErr == nil {
		if sizeBytes == 0 {
			sizeBytes = fileInfo.Size()
		}
		totalPages = pdf.PageCount(form.FilePath)
	}

	txCtx, err := s.store.NewTransactionContext(ctx)
	if err != nil {
		return nil, err
	}

	document, err := s.store.Document().Create(txCtx, model.Document{
		ID:         uuid.New(),
		FileName:   form.FileName,
		FileType:   form.FileType,
		SizeBytes:  sizeBytes,
		TotalPages: totalPages,
		FilePath:   form.FilePath,
		UploadedAt: time.Now(),
	})
	if err != nil {
		_, _ = store.Rollback(txCtx)
		return nil, err
	}

	job, err := s.store.OCRJob().Create(txCtx, model.OCRJob{
		ID:         uuid.New(),
		DocumentID: document.ID,
		Status:     model.JobStatusProcessing,
		Metadata:   model.MakeJSONField(model.JobMetadata{LetterID: form.LetterID}),
	})
	if err != nil {
		_, _ = store.Rollback(txCtx)
		return nil, err
	}

	if _, err := store.Commit(txCtx); err != nil {
		return nil, err
	}

	if statErr != nil {
		missingErr := NewErrFileMissing(form.FilePath)
		s.finalizeUndispatchable(ctx, job.ID, form.LetterID, missingErr)
		return &JobInfo{JobID: job.ID, DocumentID: document.ID, Status: model.JobStatusFailed}, missingErr
	}

	taskID, err := s.queue.InsertJob(ctx, jobs.ExtractArgs{
		DocumentID:  document.ID,
		JobID:       job.ID,
		FilePath:    form.FilePath,
		Password:    form.Password,
		LetterID:    form.LetterID,
		DownloadURL: form.DownloadURL,
	})
	if err != nil {
		s.finalizeUndispatchable(ctx, job.ID, form.LetterID, err)
		return nil, err
	}

	logger.Infof("job %s admitted for document %s (task %d)", job.ID, document.ID, taskID)
	return &JobInfo{JobID: job.ID, DocumentID: document.ID, TaskID: taskID, Status: model.JobStatusProcessing}, nil
}

// finalizeUndispatchable fails a job that never made it onto the queue.
func (s *OCRService) finalizeUndispatchable(ctx context.Context, jobID uuid.UUID, letterID string, cause error) {
	metadata := model.MakeJSONField(model.JobMetadata{
		LetterID:  letterID,
		LastError: cause.Error(),
	})
	if _, err := s.store.OCRJob().Finalize(ctx, jobID, model.JobStatusFailed, cause.Error(), metadata); err != nil {
		zap.S().Named("admission").Errorf("failed to finalize undispatchable job %s: %v", jobID, err)
	}
}

// GetJob returns a job with its document for status polling.
func (s *OCRService) GetJob(ctx context.Context, id uuid.UUID) (*model.OCRJob, *model.Document, error) {
	job, err := s.store.OCRJob().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, nil, NewErrJobNotFound(id)
		}
		return nil, nil, err
	}

	document, err := s.store.Document().Get(ctx, job.DocumentID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, nil, NewErrDocumentNotFound(job.DocumentID)
		}
		return nil, nil, err
	}

	return job, document, nil
}

// ListJobs returns jobs newest-first with extracted text truncated for list
// views.
func (s *OCRService) ListJobs(ctx context.Context, filter *store.JobQueryFilter) (model.OCRJobList, error) {
	jobList, err := s.store.OCRJob().List(ctx, filter)
	if err != nil {
		return nil, err
	}

	for i := range jobList {
		jobList[i].ExtractedText = truncateForList(jobList[i].ExtractedText)
	}
	return jobList, nil
}

const listTextLimit = 200

func truncateForList(text string) string {
	if len(text) <= listTextLimit {
		return text
	}
	return text[:listTextLimit] + "..."
}
