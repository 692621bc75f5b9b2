package store

import (
	"context"

	"gorm.io/gorm"
)

type Store interface {
	NewTransactionContext(ctx context.Context) (context.Context, error)
	Document() Document
	OCRJob() OCRJob
	Close() error
}

type DataStore struct {
	db       *gorm.DB
	document Document
	ocrJob   OCRJob
}

func NewStore(db *gorm.DB) Store {
	return &DataStore{
		db:       db,
		document: NewDocumentStore(db),
		ocrJob:   NewOCRJobStore(db),
	}
}

func (s *DataStore) NewTransactionContext(ctx context.Context) (context.Context, error) {
	return newTransactionContext(ctx, s.db)
}

func (s *DataStore) Document() Document {
	return s.document
}

func (s *DataStore) OCRJob() OCRJob {
	return s.ocrJob
}

func (s *DataStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
