package files

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/yzt-loan/loanadmin/internal/filex"
)

// Local stores uploads on disk under a single directory. Stored paths are
// returned relative to the public prefix, e.g. "uploads/<name>".
type Local struct {
	dir    string
	prefix string
}

// NewLocal ensures the uploads directory exists and returns a Local storage
// rooted there.
func NewLocal(dir string) (*Local, error) {
	resolved, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, err
	}
	return &Local{dir: resolved, prefix: filepath.Base(resolved)}, nil
}

func (l *Local) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	name := randName(originalName)

	f, err := os.Create(filepath.Join(l.dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write upload: %w", err)
	}

	return path.Join(l.prefix, name), nil
}
