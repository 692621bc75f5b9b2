package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Document is the persisted record of an uploaded file. It is created once
// at admission and never mutated afterwards.
type Document struct {
	ID         uuid.UUID `gorm:"primaryKey;column:id;type:VARCHAR(255);"`
	FileName   string    `gorm:"not null;type:VARCHAR(255)"`
	FileType   string    `gorm:"type:VARCHAR(16)"`
	SizeBytes  int64     `gorm:"not null"`
	TotalPages int
	FilePath   string    `gorm:"not null;type:VARCHAR(500)"`
	UploadedAt time.Time `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  *time.Time
	Jobs       []OCRJob `gorm:"foreignKey:DocumentID;references:ID;constraint:OnDelete:CASCADE;"`
}

type DocumentList []Document

func (d Document) String() string {
	val, _ := json.Marshal(d)
	return string(val)
}
