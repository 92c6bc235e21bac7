// Package imagestore persists uploaded receipt images on local disk.
package imagestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"dukapos/internal/core/id"
	"dukapos/pkg/logger"
)

// Store saves and removes receipt images.
type Store interface {
	// Save writes the image and returns its storage path.
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	Remove(ctx context.Context, path string) error
}

// Local stores images under a single directory with generated names, so
// concurrent uploads of identically named files never collide.
type Local struct {
	dir string
}

// NewLocal creates the store, ensuring the directory exists.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{dir: dir}, nil
}

// Save writes the image under a generated unique name, keeping the
// original extension.
func (l *Local) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	name := id.New().String() + ext
	path := filepath.Join(l.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write image file: %w", err)
	}

	logger.Debug(ctx, "image stored", "path", path)
	return path, nil
}

// Remove deletes a stored image. Missing files are not an error.
func (l *Local) Remove(ctx context.Context, path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove image file: %w", err)
	}
	return nil
}
