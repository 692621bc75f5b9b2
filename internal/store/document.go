package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dokumi/ocr-service/internal/store/model"
)

type Document interface {
	Create(ctx context.Context, document model.Document) (*model.Document, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Document, error)
	List(ctx context.Context) (model.DocumentList, error)
}

type DocumentStore struct {
	db *gorm.DB
}

// Make sure we conform to Document interface
var _ Document = (*DocumentStore)(nil)

func NewDocumentStore(db *gorm.DB) Document {
	return &DocumentStore{db: db}
}

func (d *DocumentStore) Create(ctx context.Context, document model.Document) (*model.Document, error) {
	result := d.getDB(ctx).Clauses(clause.Returning{}).Create(&document)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, result.Error
	}
	return &document, nil
}

func (d *DocumentStore) Get(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	var document model.Document
	result := d.getDB(ctx).First(&document, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &document, nil
}

func (d *DocumentStore) List(ctx context.Context) (model.DocumentList, error) {
	var documents model.DocumentList
	result := d.getDB(ctx).Model(&documents).Order("created_at DESC").Find(&documents)
	if result.Error != nil {
		return nil, result.Error
	}
	return documents, nil
}

func (d *DocumentStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return d.db
}
