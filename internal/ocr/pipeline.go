package ocr

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dokumi/ocr-service/internal/artifact"
)

// Engine is the opaque text-recognition capability. Implementations receive
// the path of one rasterized page image and return the recognized text.
type Engine interface {
	Recognize(ctx context.Context, imagePath string, languages string) (string, error)
}

// Decryptor unlocks a password-protected document. It returns the path of a
// readable document (the input path itself when the document is not
// encrypted) and whether decryption took place.
type Decryptor interface {
	Decrypt(ctx context.Context, path, password string) (string, bool, error)
}

// Rasterizer converts every page of a document into an image, in original
// page order.
type Rasterizer interface {
	Rasterize(ctx context.Context, path, password, outDir string) ([]string, error)
}

// TextProber checks whether a document carries an extractable text layer.
// Documents without one are image-only or copy-protected.
type TextProber interface {
	HasText(ctx context.Context, path string) bool
}

type PipelineConfig struct {
	Languages       string
	PageParallelism int
}

// Request identifies one extraction attempt.
type Request struct {
	DocumentID uuid.UUID
	JobID      uuid.UUID
	FilePath   string
	Password   string
}

// Result is the in-memory outcome of a successful attempt. It is valid even
// when individual pages failed recognition.
type Result struct {
	Text              string
	Pages             []PageResult
	TotalPages        int
	HasCopyProtection bool
	ArtifactPath      string
}

// Pipeline runs one extraction attempt end to end: decryption,
// rasterization, per-page OCR, aggregation and the artifact write. Status
// persistence and callback delivery belong to the queue worker driving it.
type Pipeline struct {
	cfg        PipelineConfig
	decryptor  Decryptor
	rasterizer Rasterizer
	prober     TextProber
	engine     Engine
	artifacts  artifact.Store
}

func NewPipeline(cfg PipelineConfig, decryptor Decryptor, rasterizer Rasterizer, prober TextProber, engine Engine, artifacts artifact.Store) *Pipeline {
	if cfg.PageParallelism <= 0 {
		cfg.PageParallelism = 1
	}
	return &Pipeline{
		cfg:        cfg,
		decryptor:  decryptor,
		rasterizer: rasterizer,
		prober:     prober,
		engine:     engine,
		artifacts:  artifacts,
	}
}

func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	logger := zap.S().Named("pipeline").With("job_id", req.JobID, "document_id", req.DocumentID)

	if _, err := os.Stat(req.FilePath); err != nil {
		return nil, &FileMissingError{Path: req.FilePath}
	}

	readablePath, decrypted, err := p.decryptor.Decrypt(ctx, req.FilePath, req.Password)
	if err != nil {
		return nil, err
	}
	if decrypted {
		logger.Info("pdf decrypted successfully")
		defer os.Remove(readablePath)
	}

	// Image-only or copy-protected documents have no text layer; record the
	// fact, the caller reports it in metadata and the callback payload.
	hasText := p.prober.HasText(ctx, readablePath)

	workDir, err := os.MkdirTemp("", "ocr-pages-")
	if err != nil {
		return nil, fmt.Errorf("creating page workdir: %w", err)
	}
	defer os.RemoveAll(workDir)

	pages, err := p.rasterizer.Rasterize(ctx, readablePath, req.Password, workDir)
	if err != nil {
		return nil, err
	}
	logger.Infof("processing %d pages", len(pages))

	results := p.recognizePages(ctx, pages)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text := Aggregate(results)

	name := fmt.Sprintf("%s_ocr.txt", strings.ReplaceAll(uuid.NewString(), "-", ""))
	artifactPath, err := p.artifacts.Save(ctx, name, strings.NewReader(text), int64(len(text)))
	if err != nil {
		return nil, fmt.Errorf("saving extracted text: %w", err)
	}

	return &Result{
		Text:              text,
		Pages:             results,
		TotalPages:        len(pages),
		HasCopyProtection: !hasText,
		ArtifactPath:      artifactPath,
	}, nil
}

// recognizePages fans page OCR out over a bounded group. Every page yields
// exactly one PageResult: failures are recorded inline with a diagnostic
// marker and never interrupt the other pages. Results are collected by page
// index, so completion order cannot scramble the final ordering.
func (p *Pipeline) recognizePages(ctx context.Context, pages []string) []PageResult {
	logger := zap.S().Named("pipeline")

	results := make([]PageResult, len(pages))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.PageParallelism)

	for i, imagePath := range pages {
		pageNum := i + 1
		g.Go(func() error {
			text, err := p.engine.Recognize(gctx, imagePath, p.cfg.Languages)
			res := PageResult{Page: pageNum}
			if err != nil {
				logger.Warnf("page %d failed: %v", pageNum, err)
				res.Text = fmt.Sprintf("ERROR OCR: %v", err)
				res.Err = true
			} else {
				res.Text = strings.TrimSpace(text)
			}

			mu.Lock()
			results[pageNum-1] = res
			mu.Unlock()
			return nil
		})
	}

	// Workers never return errors, page failures are recorded inline.
	_ = g.Wait()
	return results
}
