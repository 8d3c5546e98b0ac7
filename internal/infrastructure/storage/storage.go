// Package storage persists uploaded KYC documents and returns the
// web-accessible path clients use to fetch them.
package storage

import (
	"context"
	"io"
)

// Store saves and removes uploaded documents
type Store interface {
	// Save writes the content under a generated name derived from name's
	// extension and returns the web path of the stored file
	Save(ctx context.Context, name string, content io.Reader, size int64) (string, error)
	// Remove deletes a previously saved file by its web path. Used to clean
	// up partial multi-file uploads when the overall request fails.
	Remove(ctx context.Context, webPath string) error
}
