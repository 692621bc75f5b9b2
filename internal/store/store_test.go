package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dokumi/ocr-service/internal/store"
	"github.com/dokumi/ocr-service/internal/store/model"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Document{}, &model.OCRJob{}))

	s := store.NewStore(db)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestDocument(t *testing.T, s store.Store) *model.Document {
	t.Helper()

	doc, err := s.Document().Create(context.Background(), model.Document{
		ID:         uuid.New(),
		FileName:   "letter.pdf",
		FileType:   ".pdf",
		SizeBytes:  2048,
		TotalPages: 3,
		FilePath:   "/data/uploads/letter.pdf",
		UploadedAt: time.Now(),
	})
	require.NoError(t, err)
	return doc
}

func newTestJob(t *testing.T, s store.Store, documentID uuid.UUID, status model.JobStatus) *model.OCRJob {
	t.Helper()

	job, err := s.OCRJob().Create(context.Background(), model.OCRJob{
		ID:         uuid.New(),
		DocumentID: documentID,
		Status:     status,
	})
	require.NoError(t, err)
	return job
}

func TestDocumentCreateAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc := newTestDocument(t, s)

	got, err := s.Document().Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)
	assert.Equal(t, "letter.pdf", got.FileName)
	assert.Equal(t, int64(2048), got.SizeBytes)
	assert.Equal(t, 3, got.TotalPages)
}

func TestDocumentGetNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Document().Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
}

func TestDocumentDuplicateKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc := newTestDocument(t, s)

	_, err := s.Document().Create(ctx, model.Document{
		ID:         doc.ID,
		FileName:   "other.pdf",
		FilePath:   "/data/uploads/other.pdf",
		UploadedAt: time.Now(),
	})
	assert.ErrorIs(t, err, store.ErrDuplicateKey)
}

func TestOCRJobCreateAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc := newTestDocument(t, s)
	job := newTestJob(t, s, doc.ID, model.JobStatusPending)

	got, err := s.OCRJob().Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, doc.ID, got.DocumentID)
	assert.Equal(t, model.JobStatusPending, got.Status)
}

func TestOCRJobGetNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.OCRJob().Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
}

func TestOCRJobListFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	docA := newTestDocument(t, s)
	docB := newTestDocument(t, s)
	newTestJob(t, s, docA.ID, model.JobStatusPending)
	newTestJob(t, s, docA.ID, model.JobStatusCompleted)
	newTestJob(t, s, docB.ID, model.JobStatusPending)

	all, err := s.OCRJob().List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byDoc, err := s.OCRJob().List(ctx, store.NewJobQueryFilter().ByDocumentID(docA.ID))
	require.NoError(t, err)
	assert.Len(t, byDoc, 2)

	byStatus, err := s.OCRJob().List(ctx, store.NewJobQueryFilter().ByStatus(model.JobStatusCompleted))
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, docA.ID, byStatus[0].DocumentID)

	both, err := s.OCRJob().List(ctx, store.NewJobQueryFilter().ByDocumentID(docB.ID).ByStatus(model.JobStatusCompleted))
	require.NoError(t, err)
	assert.Empty(t, both)
}

func TestOCRJobSetProcessing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc := newTestDocument(t, s)
	job := newTestJob(t, s, doc.ID, model.JobStatusPending)

	require.NoError(t, s.OCRJob().SetProcessing(ctx, job.ID))

	got, err := s.OCRJob().Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusProcessing, got.Status)

	// Re-entry of a retried attempt is a no-op transition, not an error.
	require.NoError(t, s.OCRJob().SetProcessing(ctx, job.ID))
}

func TestOCRJobSetProcessingOnTerminalRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc := newTestDocument(t, s)
	job := newTestJob(t, s, doc.ID, model.JobStatusProcessing)

	_, err := s.OCRJob().Finalize(ctx, job.ID, model.JobStatusCompleted, "text", nil)
	require.NoError(t, err)

	err = s.OCRJob().SetProcessing(ctx, job.ID)
	assert.ErrorIs(t, err, store.ErrJobFinalized)
}

func TestOCRJobSetProcessingNotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.OCRJob().SetProcessing(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
}

func TestOCRJobFinalizeCompleted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc := newTestDocument(t, s)
	job := newTestJob(t, s, doc.ID, model.JobStatusProcessing)

	metadata := model.MakeJSONField(model.JobMetadata{
		HasCopyProtection: true,
		PagesProcessed:    3,
		Attempts:          1,
		OutputPath:        "/data/output/abc_ocr.txt",
	})

	got, err := s.OCRJob().Finalize(ctx, job.ID, model.JobStatusCompleted, "extracted text", metadata)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCompleted, got.Status)
	assert.Equal(t, "extracted text", got.ExtractedText)
	require.NotNil(t, got.Metadata)
	assert.True(t, got.Metadata.Data.HasCopyProtection)
	assert.Equal(t, 3, got.Metadata.Data.PagesProcessed)
	assert.Equal(t, "/data/output/abc_ocr.txt", got.Metadata.Data.OutputPath)
}

func TestOCRJobFinalizeRejectsNonTerminalStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc := newTestDocument(t, s)
	job := newTestJob(t, s, doc.ID, model.JobStatusProcessing)

	_, err := s.OCRJob().Finalize(ctx, job.ID, model.JobStatusProcessing, "", nil)
	assert.Error(t, err)
}

func TestOCRJobFinalizeIsSticky(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc := newTestDocument(t, s)
	job := newTestJob(t, s, doc.ID, model.JobStatusProcessing)

	_, err := s.OCRJob().Finalize(ctx, job.ID, model.JobStatusFailed, "", model.MakeJSONField(model.JobMetadata{LastError: "boom"}))
	require.NoError(t, err)

	// A duplicate delivery must not overwrite the terminal outcome.
	_, err = s.OCRJob().Finalize(ctx, job.ID, model.JobStatusCompleted, "late text", nil)
	assert.ErrorIs(t, err, store.ErrJobFinalized)

	got, err := s.OCRJob().Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFailed, got.Status)
	assert.Empty(t, got.ExtractedText)
	require.NotNil(t, got.Metadata)
	assert.Equal(t, "boom", got.Metadata.Data.LastError)
}

func TestOCRJobFinalizeNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.OCRJob().Finalize(context.Background(), uuid.New(), model.JobStatusFailed, "", nil)
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
}

func TestTransactionCommit(t *testing.T) {
	s := newTestStore(t)

	doc := newTestDocument(t, s)

	ctx, err := s.NewTransactionContext(context.Background())
	require.NoError(t, err)

	job, err := s.OCRJob().Create(ctx, model.OCRJob{
		ID:         uuid.New(),
		DocumentID: doc.ID,
		Status:     model.JobStatusPending,
	})
	require.NoError(t, err)

	_, err = store.Commit(ctx)
	require.NoError(t, err)

	got, err := s.OCRJob().Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusPending, got.Status)
}

func TestTransactionRollback(t *testing.T) {
	s := newTestStore(t)

	doc := newTestDocument(t, s)

	ctx, err := s.NewTransactionContext(context.Background())
	require.NoError(t, err)

	job, err := s.OCRJob().Create(ctx, model.OCRJob{
		ID:         uuid.New(),
		DocumentID: doc.ID,
		Status:     model.JobStatusPending,
	})
	require.NoError(t, err)

	_, err = store.Rollback(ctx)
	require.NoError(t, err)

	_, err = s.OCRJob().Get(context.Background(), job.ID)
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
}
