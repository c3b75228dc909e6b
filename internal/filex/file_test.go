package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureDir_CreatesNested(t *testing.T) {
	base := t.TempDir()

	dir, err := EnsureDir(filepath.Join(base, "a", "b"))
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestEnsureDir_Idempotent(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "uploads")

	first, err := EnsureDir(target)
	require.NoError(t, err)

	second, err := EnsureDir(target)
	require.NoError(t, err)
	require.Equal(t, first, second)
}
