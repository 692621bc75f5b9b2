package store

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dokumi/ocr-service/internal/store/model"
)

type JobQueryFilter struct {
	QueryFn []func(tx *gorm.DB) *gorm.DB
}

func NewJobQueryFilter() *JobQueryFilter {
	return &JobQueryFilter{}
}

func (f *JobQueryFilter) ByDocumentID(id uuid.UUID) *JobQueryFilter {
	f.QueryFn = append(f.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("document_id = ?", id)
	})
	return f
}

func (f *JobQueryFilter) ByStatus(status model.JobStatus) *JobQueryFilter {
	f.QueryFn = append(f.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("status = ?", status)
	})
	return f
}
