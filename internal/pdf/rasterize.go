package pdf

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/dokumi/ocr-service/internal/ocr"
)

// Rasterizer shells out to poppler's pdftoppm to turn every page of a PDF
// into a PNG at a fixed resolution.
type Rasterizer struct {
	binPath string
	dpi     int
}

var _ ocr.Rasterizer = (*Rasterizer)(nil)

func NewRasterizer(binPath string, dpi int) *Rasterizer {
	if dpi <= 0 {
		dpi = 300
	}
	return &Rasterizer{binPath: binPath, dpi: dpi}
}

func (r *Rasterizer) Rasterize(ctx context.Context, path, password, outDir string) ([]string, error) {
	prefix := filepath.Join(outDir, "page")

	args := []string{"-png", "-r", strconv.Itoa(r.dpi)}
	if password != "" {
		args = append(args, "-upw", password)
	}
	args = append(args, path, prefix)

	cmd := exec.CommandContext(ctx, r.binPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &ocr.ConversionError{Err: fmt.Errorf("pdftoppm: %v: %s", err, strings.TrimSpace(stderr.String()))}
	}

	pages, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, &ocr.ConversionError{Err: err}
	}
	if len(pages) == 0 {
		return nil, &ocr.ConversionError{Err: fmt.Errorf("pdftoppm produced no pages for %s", path)}
	}

	sortPageFiles(pages)
	return pages, nil
}

// sortPageFiles orders pdftoppm output numerically. pdftoppm zero-pads page
// numbers to the width of the page count, so lexical order is wrong when a
// run crosses a width boundary or files from several widths mix.
func sortPageFiles(pages []string) {
	sort.Slice(pages, func(i, j int) bool {
		return pageFileNumber(pages[i]) < pageFileNumber(pages[j])
	})
}

func pageFileNumber(path string) int {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	idx := strings.LastIndex(base, "-")
	if idx < 0 {
		return 0
	}
	n, err := strconv.Atoi(base[idx+1:])
	if err != nil {
		return 0
	}
	return n
}
