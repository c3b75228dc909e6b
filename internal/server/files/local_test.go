package files

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	l, err := NewLocal(dir)
	require.NoError(t, err)

	stored, err := l.Save(context.Background(), "photo.JPG", strings.NewReader("image-bytes"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stored, "uploads/"), "stored path starts with the public prefix: %s", stored)
	assert.True(t, strings.HasSuffix(stored, ".jpg"), "extension is preserved lowercased: %s", stored)

	data, err := os.ReadFile(filepath.Join(dir, filepath.Base(stored)))
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(data))
}

func TestLocalSaveUniqueNames(t *testing.T) {
	l, err := NewLocal(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	a, err := l.Save(context.Background(), "doc.pdf", strings.NewReader("a"))
	require.NoError(t, err)
	b, err := l.Save(context.Background(), "doc.pdf", strings.NewReader("b"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestNewLocalCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	_, err := NewLocal(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
