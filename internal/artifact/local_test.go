package artifact

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreSave(t *testing.T) {
	s, err := NewLocalStore(filepath.Join(t.TempDir(), "output"))
	require.NoError(t, err)

	text := "\n\n===== PAGE 1 =====\nhello\n"
	location, err := s.Save(context.Background(), "abc_ocr.txt", strings.NewReader(text), int64(len(text)))
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(location))
	assert.Equal(t, "abc_ocr.txt", filepath.Base(location))

	body, err := os.ReadFile(location)
	require.NoError(t, err)
	assert.Equal(t, text, string(body))
}

func TestLocalStoreCreatesFolder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "output")
	_, err := NewLocalStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLocalStoreStripsPathTraversal(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output")
	s, err := NewLocalStore(dir)
	require.NoError(t, err)

	location, err := s.Save(context.Background(), "../../escape.txt", strings.NewReader("x"), 1)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.dir, "escape.txt"), location)
}

func TestLocalStoreCancelledContext(t *testing.T) {
	s, err := NewLocalStore(filepath.Join(t.TempDir(), "output"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.Save(ctx, "abc_ocr.txt", strings.NewReader("x"), 1)
	assert.ErrorIs(t, err, context.Canceled)
}
