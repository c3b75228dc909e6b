// Package files stores uploaded files. Two backends are available: local
// disk (the default) and an S3-compatible object store.
package files

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Storage persists an uploaded file and returns the path clients use to
// reference it afterwards.
type Storage interface {
	Save(ctx context.Context, originalName string, r io.Reader) (string, error)
}

// randName builds a collision-free file name, preserving the original
// extension.
func randName(originalName string) string {
	return uuid.NewString() + strings.ToLower(filepath.Ext(originalName))
}
