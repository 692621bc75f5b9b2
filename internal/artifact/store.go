package artifact

import (
	"context"
	"io"

	"github.com/dokumi/ocr-service/internal/config"
)

// Store persists aggregated OCR text artifacts. Save returns the location of
// the stored object: an absolute path for the local store, an s3 URI for the
// object store.
type Store interface {
	Save(ctx context.Context, name string, r io.Reader, size int64) (string, error)
}

// New selects the artifact backend from configuration: minio/S3 when an
// endpoint is configured, the local output folder otherwise.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	if cfg.Service.Artifact.Endpoint != "" {
		return NewMinioStore(ctx, cfg)
	}
	return NewLocalStore(cfg.Service.OutputFolder)
}
