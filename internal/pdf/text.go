package pdf

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/dokumi/ocr-service/internal/ocr"
)

// TextProber shells out to poppler's pdftotext to check whether a PDF has an
// extractable text layer. Documents without one are image-only scans or use
// copy protection; the pipeline records that in job metadata.
type TextProber struct {
	binPath string
}

var _ ocr.TextProber = (*TextProber)(nil)

func NewTextProber(binPath string) *TextProber {
	return &TextProber{binPath: binPath}
}

func (p *TextProber) HasText(ctx context.Context, path string) bool {
	cmd := exec.CommandContext(ctx, p.binPath, "-q", path, "-")
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	// Any probe failure counts as "no text layer": the document still goes
	// through OCR, only the protection flag is affected.
	if err := cmd.Run(); err != nil {
		return false
	}
	return strings.TrimSpace(stdout.String()) != ""
}
