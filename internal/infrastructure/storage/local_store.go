package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/erp/shopify-connector/internal/domain/integration"
)

// Storage errors
var (
	ErrEmptyKey      = errors.New("storage: key is required")
	ErrInvalidKey    = errors.New("storage: key escapes the storage root")
	ErrUnknownDriver = errors.New("storage: unknown driver")
)

var _ integration.ImageStore = (*LocalImageStore)(nil)

// LocalImageStore writes images below a directory on the local filesystem
type LocalImageStore struct {
	root string
}

// NewLocalImageStore creates the root directory if needed
func NewLocalImageStore(root string) (*LocalImageStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("storage: local directory is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve %s: %w", root, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create %s: %w", abs, err)
	}
	return &LocalImageStore{root: abs}, nil
}

// Root returns the absolute storage directory
func (s *LocalImageStore) Root() string {
	return s.root
}

// Put writes data to root/key atomically and returns the key.
// The content type is not persisted.
func (s *LocalImageStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	path, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("storage: create dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("storage: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("storage: write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("storage: close %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("storage: rename %s: %w", key, err)
	}
	return key, nil
}

func (s *LocalImageStore) path(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", ErrEmptyKey
	}
	path := filepath.Join(s.root, filepath.FromSlash(key))
	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", ErrInvalidKey
	}
	return path, nil
}
