package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// WebPrefix is the URL prefix the router serves local uploads under
const WebPrefix = "/uploads"

// LocalStore writes documents to a directory on local disk
type LocalStore struct {
	dir string
}

// NewLocalStore creates the upload directory if needed
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Dir returns the backing directory, for static file serving
func (s *LocalStore) Dir() string {
	return s.dir
}

// Save buffers the content to disk and returns its web path
func (s *LocalStore) Save(_ context.Context, name string, content io.Reader, _ int64) (string, error) {
	fileName := uuid.New().String() + strings.ToLower(path.Ext(name))
	dst := filepath.Join(s.dir, fileName)

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return WebPrefix + "/" + fileName, nil
}

// Remove deletes a stored file by its web path
func (s *LocalStore) Remove(_ context.Context, webPath string) error {
	name := path.Base(webPath)
	if name == "." || name == "/" {
		return fmt.Errorf("invalid path %q", webPath)
	}
	return os.Remove(filepath.Join(s.dir, name))
}
