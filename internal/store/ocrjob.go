package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dokumi/ocr-service/internal/store/model"
)

type OCRJob interface {
	Create(ctx context.Context, job model.OCRJob) (*model.OCRJob, error)
	Get(ctx context.Context, id uuid.UUID) (*model.OCRJob, error)
	List(ctx context.Context, filter *JobQueryFilter) (model.OCRJobList, error)
	SetProcessing(ctx context.Context, id uuid.UUID) error
	Finalize(ctx context.Context, id uuid.UUID, status model.JobStatus, extractedText string, metadata *model.JSONField[model.JobMetadata]) (*model.OCRJob, error)
}

type OCRJobStore struct {
	db *gorm.DB
}

// Make sure we conform to OCRJob interface
var _ OCRJob = (*OCRJobStore)(nil)

func NewOCRJobStore(db *gorm.DB) OCRJob {
	return &OCRJobStore{db: db}
}

func (s *OCRJobStore) Create(ctx context.Context, job model.OCRJob) (*model.OCRJob, error) {
	result := s.getDB(ctx).Clauses(clause.Returning{}).Create(&job)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, result.Error
	}
	return &job, nil
}

func (s *OCRJobStore) Get(ctx context.Context, id uuid.UUID) (*model.OCRJob, error) {
	var job model.OCRJob
	result := s.getDB(ctx).First(&job, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &job, nil
}

func (s *OCRJobStore) List(ctx context.Context, filter *JobQueryFilter) (model.OCRJobList, error) {
	var jobs model.OCRJobList
	tx := s.getDB(ctx).Model(&jobs).Order("created_at DESC")

	if filter != nil {
		for _, fn := range filter.QueryFn {
			tx = fn(tx)
		}
	}

	result := tx.Find(&jobs)
	if result.Error != nil {
		return nil, result.Error
	}
	return jobs, nil
}

// SetProcessing marks a job as processing. Used both at admission and when a
// retried attempt re-enters the pipeline. Terminal rows are left untouched.
func (s *OCRJobStore) SetProcessing(ctx context.Context, id uuid.UUID) error {
	result := s.getDB(ctx).Model(&model.OCRJob{}).
		Where("id = ? AND status IN ?", id, []model.JobStatus{model.JobStatusPending, model.JobStatusProcessing}).
		Update("status", model.JobStatusProcessing)
	if result.Error != nil {
		return fmt.Errorf("updating job status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return s.notUpdatedErr(ctx, id)
	}
	return nil
}

// Finalize writes the terminal outcome of a job. The guard on the current
// status makes terminal states sticky: a duplicate queue delivery or a late
// writer can never flip completed/failed back to processing or overwrite a
// previous terminal result.
func (s *OCRJobStore) Finalize(ctx context.Context, id uuid.UUID, status model.JobStatus, extractedText string, metadata *model.JSONField[model.JobMetadata]) (*model.OCRJob, error) {
	if !status.Terminal() {
		return nil, fmt.Errorf("status %q is not terminal", status)
	}

	updates := map[string]interface{}{
		"status":         status,
		"extracted_text": extractedText,
	}
	if metadata != nil {
		updates["metadata"] = metadata
	}

	result := s.getDB(ctx).Model(&model.OCRJob{}).
		Where("id = ? AND status IN ?", id, []model.JobStatus{model.JobStatusPending, model.JobStatusProcessing}).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("finalizing job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, s.notUpdatedErr(ctx, id)
	}

	return s.Get(ctx, id)
}

// notUpdatedErr distinguishes a missing row from a row already finalized.
func (s *OCRJobStore) notUpdatedErr(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return ErrJobFinalized
}

func (s *OCRJobStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return s.db
}
