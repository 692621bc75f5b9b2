package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether no further status transitions are allowed.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// JobMetadata is the structured blob attached to a job row. It carries
// facts observed during processing that are not worth their own columns.
type JobMetadata struct {
	HasCopyProtection bool   `json:"has_copy_protection"`
	PagesProcessed    int    `json:"pages_processed"`
	Attempts          int    `json:"attempts"`
	LetterID          string `json:"letter_id,omitempty"`
	OutputPath        string `json:"output_path,omitempty"`
	LastError         string `json:"last_error,omitempty"`
}

// OCRJob tracks one text-extraction run over a document. Status moves
// pending -> processing -> {completed|failed} and never regresses; terminal
// rows are never reopened, a re-submission creates a new job instead.
type OCRJob struct {
	ID            uuid.UUID               `gorm:"primaryKey;column:id;type:VARCHAR(255);"`
	DocumentID    uuid.UUID               `gorm:"not null;type:VARCHAR(255);index:ocr_jobs_document_id_idx"`
	Status        JobStatus               `gorm:"not null;type:VARCHAR(50)"`
	ExtractedText string                  `gorm:"type:text"`
	Metadata      *JSONField[JobMetadata] `gorm:"type:jsonb"`
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

type OCRJobList []OCRJob

func (j OCRJob) String() string {
	val, _ := json.Marshal(j)
	return string(val)
}
