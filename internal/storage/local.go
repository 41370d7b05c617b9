package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tablecheck/internal/domain"
)

// LocalStore keeps raw dataset files under a base directory,
// one subdirectory per dataset key prefix.
type LocalStore struct {
	baseDir string
}

var _ BlobStore = (*LocalStore)(nil)

func NewLocalStore(baseDir string) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", baseDir, err)
	}
	return &LocalStore{baseDir: baseDir}, nil
}

func (s *LocalStore) Put(ctx context.Context, key string, data []byte) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create blob dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return fmt.Errorf("write blob %s: %w", key, err)
	}
	return nil
}

func (s *LocalStore) Get(ctx context.Context, key string) ([]byte, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path) //nolint:gosec // path is validated by resolve
	if os.IsNotExist(err) {
		return nil, domain.ErrNotFound("blob %q not found", key)
	}
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", key, err)
	}
	return data, nil
}

func (s *LocalStore) Delete(ctx context.Context, key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob %s: %w", key, err)
	}
	// Best-effort: drop the dataset directory when it is now empty.
	_ = os.Remove(filepath.Dir(path))
	return nil
}

// LocalPath returns the on-disk location of the blob. No copy is needed.
func (s *LocalStore) LocalPath(ctx context.Context, key string) (string, error) {
	path, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", domain.ErrNotFound("blob %q not found", key)
	}
	return path, nil
}

// resolve maps a key to a path under baseDir and rejects traversal.
func (s *LocalStore) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", domain.ErrValidation("invalid blob key %q", key)
	}
	return filepath.Join(s.baseDir, clean), nil
}
