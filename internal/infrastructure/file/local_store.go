package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// LocalStore keeps uploaded files on local disk until their job has
// processed them.
type LocalStore struct {
	BaseDir string
}

func NewLocalStore(baseDir string) *LocalStore {
	if baseDir == "" {
		baseDir = "uploads"
	}
	return &LocalStore{BaseDir: baseDir}
}

// Save stores the upload under a fresh uuid name, preserving the
// original extension, and returns the stored name and path.
func (s *LocalStore) Save(ctx context.Context, originalName string, r io.Reader) (string, string, error) {
	_ = ctx

	if err := os.MkdirAll(s.BaseDir, 0o755); err != nil {
		return "", "", fmt.Errorf("create upload dir %s: %w", s.BaseDir, err)
	}

	name := uuid.NewString() + filepath.Ext(originalName)
	path := filepath.Join(s.BaseDir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", "", fmt.Errorf("create upload file %s: %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", "", fmt.Errorf("write upload file %s: %w", path, err)
	}
	return name, path, nil
}

func (s *LocalStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	_ = ctx

	if !filepath.IsAbs(path) {
		path = filepath.Join(s.BaseDir, filepath.Base(path))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file %s: %w", path, err)
	}
	return f, nil
}

func (s *LocalStore) Remove(ctx context.Context, path string) error {
	_ = ctx

	if !filepath.IsAbs(path) {
		path = filepath.Join(s.BaseDir, filepath.Base(path))
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove file %s: %w", path, err)
	}
	return nil
}
