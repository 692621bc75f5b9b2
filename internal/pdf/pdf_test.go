package pdf

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortPageFiles(t *testing.T) {
	pages := []string{
		"/tmp/work/page-10.png",
		"/tmp/work/page-2.png",
		"/tmp/work/page-1.png",
	}

	sortPageFiles(pages)

	assert.Equal(t, []string{
		"/tmp/work/page-1.png",
		"/tmp/work/page-2.png",
		"/tmp/work/page-10.png",
	}, pages)
}

func TestSortPageFilesZeroPadded(t *testing.T) {
	pages := []string{
		"/tmp/work/page-12.png",
		"/tmp/work/page-02.png",
		"/tmp/work/page-01.png",
	}

	sortPageFiles(pages)

	assert.Equal(t, 1, pageFileNumber(pages[0]))
	assert.Equal(t, 2, pageFileNumber(pages[1]))
	assert.Equal(t, 12, pageFileNumber(pages[2]))
}

func TestPageFileNumber(t *testing.T) {
	assert.Equal(t, 7, pageFileNumber("/tmp/work/page-7.png"))
	assert.Equal(t, 42, pageFileNumber(filepath.Join("out", "page-042.png")))
	assert.Equal(t, 0, pageFileNumber("/tmp/work/page.png"))
	assert.Equal(t, 0, pageFileNumber("/tmp/work/page-x.png"))
}

func TestPasswordCandidates(t *testing.T) {
	assert.Equal(t, []string{"hunter2", ""}, passwordCandidates("hunter2"))
	assert.Equal(t, []string{""}, passwordCandidates(""))
}

func TestLooksEncrypted(t *testing.T) {
	assert.True(t, looksEncrypted(errors.New("pdfcpu: please provide the correct password")))
	assert.True(t, looksEncrypted(errors.New("this file is Encrypted")))
	assert.False(t, looksEncrypted(errors.New("xref table corrupt")))
}

func TestNewRasterizerDefaultDPI(t *testing.T) {
	r := NewRasterizer("/usr/bin/pdftoppm", 0)
	assert.Equal(t, 300, r.dpi)

	r = NewRasterizer("/usr/bin/pdftoppm", 150)
	assert.Equal(t, 150, r.dpi)
}
