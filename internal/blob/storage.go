package blob

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
)

var ErrNotFound = errors.New("blob not found")

// Stored describes a saved blob. Name is what Open/Delete accept; FileID is
// the identifier handed to pipeline workers.
type Stored struct {
	Name   string
	FileID string
	Size   int64
}

// Storage persists uploaded blobs and picks a unique name for each one.
type Storage interface {
	Save(ctx context.Context, name string, r io.Reader) (Stored, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
	Exists(ctx context.Context, name string) (bool, error)
	Size(ctx context.Context, name string) (int64, error)
}

// BaseName strips any client supplied directories from an upload name.
func BaseName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	base := filepath.Base(name)
	if base == "." || base == "/" {
		return "blob"
	}
	return base
}
